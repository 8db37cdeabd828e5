package app

import (
	"context"
	"time"

	"github.com/nguyentranbao-ct/shop-assistant/internal/config"
	"github.com/nguyentranbao-ct/shop-assistant/internal/kafka"
	"github.com/nguyentranbao-ct/shop-assistant/internal/repo/memstore"
	"github.com/nguyentranbao-ct/shop-assistant/internal/repo/mongodb"
	"github.com/nguyentranbao-ct/shop-assistant/internal/usecase"
	"github.com/nguyentranbao-ct/shop-assistant/pkg/logger"
	"go.uber.org/fx"
)

// newSessionStore keeps sessions in memory unless MongoDB hosts are configured.
func newSessionStore(lc fx.Lifecycle, cfg *config.Config) (usecase.SessionStore, error) {
	if len(cfg.Database.Hosts) == 0 {
		logger.MustNamed("app").Infow("using in-memory session store")
		return memstore.NewSessionStore(), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	db, err := mongodb.NewConnection(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return db.Close(ctx)
		},
	})

	repo := mongodb.NewSessionRepository(db)
	if err := repo.EnsureIndexes(ctx, cfg.Database.SessionTTL); err != nil {
		return nil, err
	}
	return repo, nil
}

func newUploadPublisher(lc fx.Lifecycle, cfg *config.Config) (usecase.UploadPublisher, error) {
	publisher, err := kafka.NewPublisher(&cfg.Kafka)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return publisher.Close()
		},
	})
	return publisher, nil
}
