package middleware

import (
	"context"
	"regexp"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	log "github.com/nguyentranbao-ct/shop-assistant/pkg/logger/log"
)

// XRequestID is echoed back on every response so operators can quote it.
const XRequestID = echo.HeaderXRequestID

type requestIDKey struct{}

// Caller-supplied ids are kept only when they look like an id; anything else
// is replaced so log lines stay clean.
var validRequestID = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)

// RequestIDFromContext returns the id RequestID stored, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// GetRequestID is RequestIDFromContext for an echo context.
func GetRequestID(c echo.Context) string {
	return RequestIDFromContext(c.Request().Context())
}

type RequestIDConfig struct {
	Skipper  Skipper
	Generate func() string
}

var DefaultRequestIDConfig = RequestIDConfig{
	Skipper:  DefaultSkipper,
	Generate: uuid.NewString,
}

func RequestID() echo.MiddlewareFunc {
	return RequestIDWithConfig(DefaultRequestIDConfig)
}

// RequestIDWithConfig reuses a well-formed incoming X-Request-Id or mints a
// new one, then puts it on the request context, the log fields and the
// response header.
func RequestIDWithConfig(conf RequestIDConfig) echo.MiddlewareFunc {
	if conf.Skipper == nil {
		conf.Skipper = DefaultSkipper
	}
	if conf.Generate == nil {
		conf.Generate = DefaultRequestIDConfig.Generate
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if conf.Skipper(c) {
				return next(c)
			}
			req := c.Request()
			id := req.Header.Get(XRequestID)
			if !validRequestID.MatchString(id) {
				id = conf.Generate()
			}

			ctx := context.WithValue(req.Context(), requestIDKey{}, id)
			ctx = log.WithFields(ctx, "request_id", id)
			c.SetRequest(req.WithContext(ctx))
			c.Response().Header().Set(XRequestID, id)
			return next(c)
		}
	}
}
