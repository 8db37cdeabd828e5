package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/nguyentranbao-ct/shop-assistant/internal/config"
	"github.com/nguyentranbao-ct/shop-assistant/internal/models"
	log "github.com/nguyentranbao-ct/shop-assistant/pkg/logger/log"
	"github.com/nguyentranbao-ct/shop-assistant/pkg/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const EventUploadCompleted = "upload.completed"

// Publisher emits upload events. Callers log publish failures and carry on.
type Publisher interface {
	PublishUploadCompleted(ctx context.Context, event models.UploadCompletedEvent) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaPublisher struct {
	writer         messageWriter
	topic          string
	publishTimeout time.Duration
	metrics        *prometheus.HistogramVec
}

// NewPublisher returns a no-op publisher when Kafka is disabled.
func NewPublisher(cfg *config.KafkaConfig) (Publisher, error) {
	if !cfg.Enabled {
		return &noopPublisher{}, nil
	}
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka enabled without brokers")
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return newPublisher(writer, cfg.Topic)
}

func newPublisher(writer messageWriter, topic string) (*kafkaPublisher, error) {
	metrics, err := util.GetHistogramVec("kafka_messages_published", "status", "topic")
	if err != nil {
		return nil, fmt.Errorf("get histogram vec: %w", err)
	}
	return &kafkaPublisher{
		writer:         writer,
		topic:          topic,
		publishTimeout: 10 * time.Second,
		metrics:        metrics,
	}, nil
}

type envelope struct {
	Pattern string                      `json:"pattern"`
	Data    models.UploadCompletedEvent `json:"data"`
}

func (p *kafkaPublisher) PublishUploadCompleted(ctx context.Context, event models.UploadCompletedEvent) error {
	value, err := json.Marshal(envelope{Pattern: EventUploadCompleted, Data: event})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := util.NewTimeoutContext(ctx, p.publishTimeout)
	defer cancel()

	start := time.Now()
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.SessionID),
		Value: value,
		Time:  event.CompletedAt,
	})
	duration := time.Since(start)

	code := getCode(err)
	content := "published"
	if err != nil {
		content = err.Error()
	}
	log.Logw(ctx, getLogLevel(code), content,
		"code", code,
		"duration_ms", duration.Milliseconds(),
		"topic", p.topic,
		"key", event.SessionID,
		"value", json.RawMessage(value),
	)
	p.metrics.
		WithLabelValues(code.String(), p.topic).
		Observe(duration.Seconds())

	if err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

func getCode(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return codes.DeadlineExceeded
	}
	if errors.Is(err, context.Canceled) {
		return codes.Canceled
	}
	if st, ok := status.FromError(err); ok {
		return st.Code()
	}
	return codes.Unknown
}

func getLogLevel(code codes.Code) zapcore.Level {
	switch code {
	case codes.OK:
		return zapcore.InfoLevel
	case codes.Canceled, codes.DeadlineExceeded:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

// noopPublisher is used when Kafka is disabled
type noopPublisher struct{}

func (n *noopPublisher) PublishUploadCompleted(ctx context.Context, event models.UploadCompletedEvent) error {
	log.Debugw(ctx, "Kafka publisher is disabled, dropping event", "session_id", event.SessionID)
	return nil
}

func (n *noopPublisher) Close() error {
	return nil
}
