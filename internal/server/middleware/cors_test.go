package middleware

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestCORS(t *testing.T) {
	e := echo.New()
	e.Use(CORS(regexp.MustCompile(`^https://admin\.shop\.example$`)))
	e.Any("/api/v1/sessions", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	serve := func(method, origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/api/v1/sessions", nil)
		if origin != "" {
			req.Header.Set(echo.HeaderOrigin, origin)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	t.Run("allowed origin", func(t *testing.T) {
		rec := serve(http.MethodPost, "https://admin.shop.example")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "https://admin.shop.example", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
		assert.Equal(t, XRequestID, rec.Header().Get(echo.HeaderAccessControlExposeHeaders))
	})

	t.Run("preflight", func(t *testing.T) {
		rec := serve(http.MethodOptions, "https://admin.shop.example")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Contains(t, rec.Header().Get(echo.HeaderAccessControlAllowMethods), http.MethodPut)
		assert.Contains(t, rec.Header().Get(echo.HeaderAccessControlAllowHeaders), echo.HeaderContentType)
	})

	t.Run("other origin", func(t *testing.T) {
		rec := serve(http.MethodPost, "https://evil.example")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
		assert.Equal(t, echo.HeaderOrigin, rec.Header().Get(echo.HeaderVary))
	})

	t.Run("no origin", func(t *testing.T) {
		rec := serve(http.MethodGet, "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	})
}
