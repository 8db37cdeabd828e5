package server

import (
	"context"
	"errors"
	"net/http"
	"regexp"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/nguyentranbao-ct/shop-assistant/internal/config"
	pkgmdw "github.com/nguyentranbao-ct/shop-assistant/internal/server/middleware"
	"github.com/nguyentranbao-ct/shop-assistant/pkg/ctxval"
	"github.com/nguyentranbao-ct/shop-assistant/pkg/logger"
	log "github.com/nguyentranbao-ct/shop-assistant/pkg/logger/log"
	"go.uber.org/fx"
)

func NewEcho(conf *config.Config, handler Controller) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = pkgmdw.NewValidator()
	e.HTTPErrorHandler = pkgmdw.ErrorHandler(logger.MustNamed("http"))

	logConfig := pkgmdw.LogRequestConfig{
		Logger:  logger.MustNamed("http"),
		Skipper: pkgmdw.SkipPaths("/health", "/metrics"),
		KeyAndValues: func(c echo.Context) []any {
			return ctxval.Annotations(c.Request().Context())
		},
	}

	if conf.Server.CORSOrigins != "" {
		pattern, err := regexp.Compile(conf.Server.CORSOrigins)
		if err != nil {
			return nil, err
		}
		e.Use(pkgmdw.CORS(pattern))
	}
	e.Use(pkgmdw.Metrics())
	e.Use(pkgmdw.RequestID())
	e.Use(pkgmdw.LogRequest(logConfig))
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			log.Errorw(c.Request().Context(), "PANIC RECOVER", "error", err, "stack", string(stack))
			return err
		},
	}))

	if conf.Server.Pprof {
		pkgmdw.Pprof(e)
	}

	e.GET("/health", handler.Health)

	api := e.Group("/api/v1")
	api.POST("/sessions", pkgmdw.WrapHandler(handler.CreateSession))
	api.GET("/sessions/:id", pkgmdw.WrapHandler(handler.GetSession))
	api.DELETE("/sessions/:id", pkgmdw.WrapHandler(handler.DeleteSession))
	api.PUT("/sessions/:id/credentials", pkgmdw.WrapHandler(handler.SetCredentials))
	api.POST("/sessions/:id/connection", pkgmdw.WrapHandler(handler.CheckConnection))
	api.POST("/sessions/:id/files", handler.AttachFile)
	api.POST("/sessions/:id/messages", pkgmdw.WrapHandler(handler.Chat))
	api.DELETE("/sessions/:id/messages", pkgmdw.WrapHandler(handler.ClearMessages))
	api.POST("/sessions/:id/uploads", pkgmdw.WrapHandler(handler.ConfirmUpload))

	return e, nil
}

func StartServer(
	lc fx.Lifecycle,
	sd fx.Shutdowner,
	conf *config.Config,
	e *echo.Echo,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Infow(ctx, "starting HTTP server", "addr", conf.Server.Addr)
				if err := e.Start(conf.Server.Addr); !errors.Is(err, http.ErrServerClosed) {
					log.Errorw(ctx, "HTTP server stopped", "error", err)
					_ = sd.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return e.Shutdown(ctx)
		},
	})
}
