package middleware

import (
	"net/http"
	"net/http/pprof"

	"github.com/labstack/echo/v4"
)

var pprofProfiles = []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"}

// Pprof mounts the runtime profiling endpoints under /debug/pprof. They are
// only wired when SERVER_PPROF is set.
func Pprof(e *echo.Echo, middlewares ...echo.MiddlewareFunc) {
	g := e.Group("/debug/pprof", middlewares...)
	g.GET("/", echo.WrapHandler(http.HandlerFunc(pprof.Index)))
	g.GET("/cmdline", echo.WrapHandler(http.HandlerFunc(pprof.Cmdline)))
	g.GET("/profile", echo.WrapHandler(http.HandlerFunc(pprof.Profile)))
	g.GET("/symbol", echo.WrapHandler(http.HandlerFunc(pprof.Symbol)))
	g.POST("/symbol", echo.WrapHandler(http.HandlerFunc(pprof.Symbol)))
	g.GET("/trace", echo.WrapHandler(http.HandlerFunc(pprof.Trace)))
	for _, name := range pprofProfiles {
		g.GET("/"+name, echo.WrapHandler(pprof.Handler(name)))
	}
}
