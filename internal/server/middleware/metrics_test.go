package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/nguyentranbao-ct/shop-assistant/internal/models"
	"github.com/nguyentranbao-ct/shop-assistant/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetHTTPMetrics(t *testing.T) {
	t.Helper()
	h, err := util.GetHistogramVec(httpRequestDuration, "code", "method", "path")
	require.NoError(t, err)
	h.Reset()
}

func serveN(e *echo.Echo, method, path string, n int) {
	for i := 0; i < n; i++ {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(method, path, nil))
	}
}

func scrape(t *testing.T, e *echo.Echo) string {
	t.Helper()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestMetrics(t *testing.T) {
	resetHTTPMetrics(t)
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler(nopLogger{})
	e.Use(Metrics())

	e.GET("/api/v1/sessions/:id", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.POST("/api/v1/sessions/:id/uploads", func(c echo.Context) error {
		return models.ErrNothingStaged
	})
	e.POST("/api/v1/sessions/:id/messages", func(c echo.Context) error {
		return errors.New("gateway exploded")
	})

	serveN(e, http.MethodGet, "/api/v1/sessions/a", 3)
	serveN(e, http.MethodGet, "/api/v1/sessions/b", 2)
	serveN(e, http.MethodPost, "/api/v1/sessions/a/uploads", 4)
	serveN(e, http.MethodPost, "/api/v1/sessions/a/messages", 1)
	serveN(e, http.MethodGet, "/random/1", 2)
	serveN(e, http.MethodGet, "/random/2", 2)

	body := scrape(t, e)
	assert.Contains(t, body, `http_request_duration_seconds_count{code="200",method="GET",path="/api/v1/sessions/:id"} 5`)
	assert.Contains(t, body, `http_request_duration_seconds_count{code="409",method="POST",path="/api/v1/sessions/:id/uploads"} 4`)
	assert.Contains(t, body, `http_request_duration_seconds_count{code="500",method="POST",path="/api/v1/sessions/:id/messages"} 1`)
	assert.Contains(t, body, `http_request_duration_seconds_count{code="404",method="GET",path="/not-found"} 4`)
	assert.NotContains(t, body, `path="/metrics"`)
}

func TestMetrics_StatusClass(t *testing.T) {
	resetHTTPMetrics(t)
	e := echo.New()
	e.Use(MetricsWithConfig(MetricsConfig{MetricsPath: "/metrics", StatusClass: true}))
	e.GET("/health", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})

	serveN(e, http.MethodGet, "/health", 2)
	assert.Contains(t, scrape(t, e), `http_request_duration_seconds_count{code="2xx",method="GET",path="/health"} 2`)
}

func TestStatusClass(t *testing.T) {
	for code, want := range map[int]string{101: "1xx", 201: "2xx", 302: "3xx", 413: "4xx", 502: "5xx"} {
		assert.Equal(t, want, statusClass(code))
	}
}
