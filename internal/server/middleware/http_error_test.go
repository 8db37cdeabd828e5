package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/nguyentranbao-ct/shop-assistant/internal/models"
	"github.com/nguyentranbao-ct/shop-assistant/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"echo http error", echo.NewHTTPError(http.StatusBadRequest, "bad body"), http.StatusBadRequest, ""},
		{"not found", fmt.Errorf("get session: %w", models.ErrNotFound), http.StatusNotFound, "not_found"},
		{"invalid input", fmt.Errorf("%w: empty message", models.ErrInvalidInput), http.StatusBadRequest, "invalid_input"},
		{"no credentials", models.ErrNoCredentials, http.StatusConflict, "no_credentials"},
		{"nothing staged", models.ErrNothingStaged, http.StatusConflict, "nothing_staged"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, ""},
		{"response error", &ResponseError{Status: http.StatusTeapot, ErrorCode: "teapot"}, http.StatusTeapot, "teapot"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			ErrorHandler(logger.MustNamed("test"))(tt.err, c)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body ResponseError
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.wantCode, body.ErrorCode)
		})
	}
}

func TestErrorHandler_CommittedResponse(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, c.String(http.StatusOK, "done"))

	ErrorHandler(logger.MustNamed("test"))(errors.New("late"), c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "done", rec.Body.String())
}
