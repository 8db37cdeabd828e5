package usecase

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/nguyentranbao-ct/shop-assistant/internal/models"
	"github.com/nguyentranbao-ct/shop-assistant/internal/repo/woocommerce"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// scriptedCreator answers CreateProduct from a per-call script.
type scriptedCreator struct {
	mu     sync.Mutex
	calls  []string
	script []func() (*woocommerce.Response, error)
}

func (s *scriptedCreator) CreateProduct(_ context.Context, record models.ProductRecord) (*woocommerce.Response, error) {
	s.mu.Lock()
	i := len(s.calls)
	s.calls = append(s.calls, record.Name())
	s.mu.Unlock()
	return s.script[i]()
}

func created(id string) func() (*woocommerce.Response, error) {
	return func() (*woocommerce.Response, error) {
		return &woocommerce.Response{StatusCode: http.StatusCreated, Body: `{"id":` + id + `}`}, nil
	}
}

func status(code int, body string) func() (*woocommerce.Response, error) {
	return func() (*woocommerce.Response, error) {
		return &woocommerce.Response{StatusCode: code, Body: body}, nil
	}
}

func records(names ...string) []models.ProductRecord {
	out := make([]models.ProductRecord, 0, len(names))
	for _, n := range names {
		out = append(out, models.ProductRecord{"name": n, "regular_price": "1.00"})
	}
	return out
}

func newTestUploadUsecase(t *testing.T) UploadUsecase {
	t.Helper()
	uc, err := NewUploadUsecase()
	require.NoError(t, err)
	return uc
}

func TestUpload_AllCreated(t *testing.T) {
	uc := newTestUploadUsecase(t)
	creator := &scriptedCreator{script: []func() (*woocommerce.Response, error){created("11"), created("12")}}

	result := uc.Upload(context.Background(), records("A", "B"), creator, nil)

	assert.Equal(t, 2, result.Attempted)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 0, result.Failed())
	require.Len(t, result.Outcomes, 2)
	assert.Equal(t, int64(11), result.Outcomes[0].ProductID)
	assert.Equal(t, int64(12), result.Outcomes[1].ProductID)
	assert.Equal(t, []string{"A", "B"}, creator.calls)
}

func TestUpload_FailuresDoNotStopBatch(t *testing.T) {
	uc := newTestUploadUsecase(t)
	creator := &scriptedCreator{script: []func() (*woocommerce.Response, error){
		created("1"),
		status(http.StatusBadRequest, `{"message":"Invalid price"}`),
		func() (*woocommerce.Response, error) { return nil, models.ErrTransport },
		func() (*woocommerce.Response, error) { panic("boom") },
		func() (*woocommerce.Response, error) { return nil, nil },
		status(http.StatusOK, `{"id":9}`),
		created("7"),
	}}

	var progress [][2]int
	result := uc.Upload(context.Background(), records("a", "b", "c", "d", "e", "f", "g"), creator, func(done, total int) {
		progress = append(progress, [2]int{done, total})
	})

	assert.Equal(t, 7, result.Attempted)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 5, result.Failed())
	assert.Len(t, creator.calls, 7)
	require.Len(t, result.Outcomes, 7)

	assert.True(t, result.Outcomes[0].Success)
	assert.Equal(t, http.StatusBadRequest, result.Outcomes[1].StatusCode)
	assert.Contains(t, result.Outcomes[1].Error, "Invalid price")
	assert.Equal(t, models.ErrTransport.Error(), result.Outcomes[2].Error)
	assert.Contains(t, result.Outcomes[3].Error, "panic: boom")
	assert.Equal(t, "no response", result.Outcomes[4].Error)
	assert.False(t, result.Outcomes[5].Success, "200 is not a creation")
	assert.True(t, result.Outcomes[6].Success)

	require.Len(t, progress, 7)
	for i, p := range progress {
		assert.Equal(t, [2]int{i + 1, 7}, p)
	}
}

func TestUpload_Empty(t *testing.T) {
	uc := newTestUploadUsecase(t)
	called := false
	result := uc.Upload(context.Background(), nil, &scriptedCreator{}, func(int, int) { called = true })

	assert.Equal(t, 0, result.Attempted)
	assert.Equal(t, 0, result.Succeeded)
	assert.Empty(t, result.Outcomes)
	assert.False(t, called)
}

func TestUpload_ErrorIsNotWrappedAway(t *testing.T) {
	uc := newTestUploadUsecase(t)
	wrapped := errors.Join(models.ErrTransport, errors.New("dial tcp: refused"))
	creator := &scriptedCreator{script: []func() (*woocommerce.Response, error){
		func() (*woocommerce.Response, error) { return nil, wrapped },
	}}

	result := uc.Upload(context.Background(), records("x"), creator, nil)
	require.Len(t, result.Outcomes, 1)
	assert.Contains(t, result.Outcomes[0].Error, "dial tcp: refused")
	assert.Equal(t, "x", result.Outcomes[0].Name)
}
