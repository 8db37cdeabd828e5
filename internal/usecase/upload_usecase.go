package usecase

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/nguyentranbao-ct/shop-assistant/internal/models"
	"github.com/nguyentranbao-ct/shop-assistant/internal/repo/woocommerce"
	log "github.com/nguyentranbao-ct/shop-assistant/pkg/logger/log"
	"github.com/nguyentranbao-ct/shop-assistant/pkg/util"
	"github.com/prometheus/client_golang/prometheus"
)

// ProductCreator is the part of the catalog client the sequencer needs.
type ProductCreator interface {
	CreateProduct(ctx context.Context, record models.ProductRecord) (*woocommerce.Response, error)
}

// ProgressFunc is called after each record with the number processed so far.
type ProgressFunc func(done, total int)

// UploadUsecase pushes a batch of records to the catalog, one at a time and
// in order. Every record is attempted; a record succeeds only on 201 Created.
type UploadUsecase interface {
	Upload(ctx context.Context, records []models.ProductRecord, creator ProductCreator, progress ProgressFunc) models.UploadResult
}

type uploadUsecase struct {
	uploads  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewUploadUsecase() (UploadUsecase, error) {
	uploads, err := util.GetCounterVec("product_uploads_total", "Products pushed to the catalog", "status")
	if err != nil {
		return nil, fmt.Errorf("get counter vec: %w", err)
	}
	duration, err := util.GetHistogramVec("product_upload_duration_seconds", "status")
	if err != nil {
		return nil, fmt.Errorf("get histogram vec: %w", err)
	}
	return &uploadUsecase{
		uploads:  uploads,
		duration: duration,
	}, nil
}

func (u *uploadUsecase) Upload(ctx context.Context, records []models.ProductRecord, creator ProductCreator, progress ProgressFunc) models.UploadResult {
	result := models.UploadResult{
		Attempted: len(records),
		Outcomes:  make([]models.RecordOutcome, 0, len(records)),
	}

	for i, record := range records {
		start := time.Now()
		outcome := u.uploadOne(ctx, i, record, creator)
		status := "failed"
		if outcome.Success {
			result.Succeeded++
			status = "created"
		}
		result.Outcomes = append(result.Outcomes, outcome)
		u.uploads.WithLabelValues(status).Inc()
		u.duration.WithLabelValues(status).Observe(time.Since(start).Seconds())

		if !outcome.Success {
			log.Warnw(ctx, "product upload failed",
				"index", i,
				"name", outcome.Name,
				"status_code", outcome.StatusCode,
				"error", outcome.Error)
		}
		if progress != nil {
			progress(i+1, len(records))
		}
	}

	log.Infow(ctx, "upload batch finished",
		"attempted", result.Attempted,
		"succeeded", result.Succeeded)
	return result
}

func (u *uploadUsecase) uploadOne(ctx context.Context, index int, record models.ProductRecord, creator ProductCreator) (outcome models.RecordOutcome) {
	outcome = models.RecordOutcome{Index: index, Name: record.Name()}
	defer func() {
		if r := recover(); r != nil {
			outcome.Success = false
			outcome.Error = fmt.Sprintf("panic: %v", r)
		}
	}()

	resp, err := creator.CreateProduct(ctx, record)
	if err != nil {
		outcome.Error = err.Error()
		return outcome
	}
	if resp == nil {
		outcome.Error = "no response"
		return outcome
	}

	outcome.StatusCode = resp.StatusCode
	if resp.StatusCode != http.StatusCreated {
		outcome.Error = fmt.Sprintf("unexpected status %d", resp.StatusCode)
		if msg := resp.Message(); msg != "" {
			outcome.Error += ": " + msg
		}
		return outcome
	}

	outcome.Success = true
	outcome.ProductID = resp.ProductID()
	return outcome
}
