package middleware

import (
	"net/http"
	"reflect"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nguyentranbao-ct/shop-assistant/pkg/util"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	httpRequestDuration = "http_request_duration_seconds"
	// unmatched routes share one label value so random URLs cannot blow up cardinality
	notFoundPath = "/not-found"
)

type MetricsConfig struct {
	Skipper Skipper
	// MetricsPath serves the Prometheus scrape endpoint; empty disables it.
	MetricsPath string
	// StatusClass records 2xx/4xx/... instead of exact codes.
	StatusClass bool
}

var DefaultMetricsConfig = MetricsConfig{
	Skipper:     DefaultSkipper,
	MetricsPath: "/metrics",
}

// Metrics observes request latency by status, method and route template.
func Metrics() echo.MiddlewareFunc {
	return MetricsWithConfig(DefaultMetricsConfig)
}

func MetricsWithConfig(conf MetricsConfig) echo.MiddlewareFunc {
	if conf.Skipper == nil {
		conf.Skipper = DefaultSkipper
	}
	duration, err := util.GetHistogramVec(httpRequestDuration, "code", "method", "path")
	if err != nil {
		panic(err)
	}
	scrape := echo.WrapHandler(promhttp.Handler())

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if conf.MetricsPath != "" && req.Method == http.MethodGet && req.URL.Path == conf.MetricsPath {
				return scrape(c)
			}
			if conf.Skipper(c) {
				return next(c)
			}

			path := c.Path()
			if isNotFoundHandler(c.Handler()) {
				path = notFoundPath
			}

			start := time.Now()
			err := next(c)
			if err != nil {
				// render now so the recorded status is the one the client sees
				c.Error(err)
			}

			code := c.Response().Status
			label := strconv.Itoa(code)
			if conf.StatusClass {
				label = statusClass(code)
			}
			duration.WithLabelValues(label, req.Method, path).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

func statusClass(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	}
	return "5xx"
}

func isNotFoundHandler(handler echo.HandlerFunc) bool {
	return reflect.ValueOf(handler).Pointer() == reflect.ValueOf(echo.NotFoundHandler).Pointer()
}
