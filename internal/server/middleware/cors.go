package middleware

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"
)

type CORSConfig struct {
	// Origins is matched against the Origin header; no match means no CORS headers.
	Origins      *regexp.Regexp
	AllowMethods []string
	AllowHeaders []string
	// ExposeHeaders are readable by browser code, e.g. the request id.
	ExposeHeaders []string
}

var DefaultCORSConfig = CORSConfig{
	AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
	AllowHeaders:  []string{echo.HeaderContentType, XRequestID},
	ExposeHeaders: []string{XRequestID},
}

// CORS allows browser clients whose origin matches pattern.
func CORS(pattern *regexp.Regexp) echo.MiddlewareFunc {
	conf := DefaultCORSConfig
	conf.Origins = pattern
	return CORSWithConfig(conf)
}

func CORSWithConfig(conf CORSConfig) echo.MiddlewareFunc {
	methods := strings.Join(conf.AllowMethods, ", ")
	headers := strings.Join(conf.AllowHeaders, ", ")
	expose := strings.Join(conf.ExposeHeaders, ", ")

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Add(echo.HeaderVary, echo.HeaderOrigin)

			origin := c.Request().Header.Get(echo.HeaderOrigin)
			if origin == "" || conf.Origins == nil || !conf.Origins.MatchString(origin) {
				return next(c)
			}
			h.Set(echo.HeaderAccessControlAllowOrigin, origin)
			if expose != "" {
				h.Set(echo.HeaderAccessControlExposeHeaders, expose)
			}

			if c.Request().Method != http.MethodOptions {
				return next(c)
			}
			// preflight
			h.Set(echo.HeaderAccessControlAllowMethods, methods)
			h.Set(echo.HeaderAccessControlAllowHeaders, headers)
			return c.NoContent(http.StatusNoContent)
		}
	}
}
