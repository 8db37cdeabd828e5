package app

import (
	"github.com/nguyentranbao-ct/shop-assistant/internal/config"
	"github.com/nguyentranbao-ct/shop-assistant/internal/repo/llm"
	"github.com/nguyentranbao-ct/shop-assistant/internal/repo/woocommerce"
	"github.com/nguyentranbao-ct/shop-assistant/internal/server"
	"github.com/nguyentranbao-ct/shop-assistant/internal/usecase"
	"github.com/nguyentranbao-ct/shop-assistant/pkg/logger"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap/zapcore"
)

func Invoke(funcs ...any) *fx.App {
	conf := config.MustLoad()
	if err := logger.Configure(conf.Log.Level, conf.Log.Production); err != nil {
		panic(err)
	}
	log := logger.MustNamed("app")
	log.Debugw("config loaded",
		"addr", conf.Server.Addr,
		"model", conf.LLM.Model,
		"mongodb", len(conf.Database.Hosts) > 0,
		"kafka", conf.Kafka.Enabled,
		log.Reflect("assistant", conf.Assistant),
	)
	return fx.New(
		fx.WithLogger(func() fxevent.Logger {
			l := &fxevent.ZapLogger{
				Logger: log.Unwrap().Desugar(),
			}
			l.UseLogLevel(zapcore.DebugLevel)
			return l
		}),
		fx.Provide(
			llm.NewGenkit,
			llm.NewGenkitGenerator,
			llm.NewGatewayFromConfig,
			woocommerce.NewFactory,

			newSessionStore,
			newUploadPublisher,

			usecase.NewUploadUsecase,
			usecase.NewAssistantUsecase,

			server.NewHandler,
			server.NewEcho,
		),
		fx.Supply(conf),
		fx.Invoke(funcs...),
	)
}
