package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nguyentranbao-ct/shop-assistant/internal/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const appName = "shop-assistant"

type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// NewConnection connects and pings; a session store that cannot reach its
// database should fail startup rather than the first chat turn.
func NewConnection(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	opts, err := clientOptions(cfg)
	if err != nil {
		return nil, err
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return &DB{
		Client:   client,
		Database: client.Database(cfg.Database),
	}, nil
}

func clientOptions(cfg config.DatabaseConfig) (*options.ClientOptions, error) {
	if len(cfg.Hosts) == 0 {
		return nil, errors.New("mongodb: no hosts configured")
	}
	if cfg.Database == "" {
		return nil, errors.New("mongodb: no database name configured")
	}

	opts := options.Client().
		SetAppName(appName).
		SetHosts(cfg.Hosts).
		SetDirect(cfg.Direct).
		SetMaxPoolSize(10).
		SetMaxConnIdleTime(30 * time.Second).
		SetTimeout(10 * time.Second)
	if cfg.Password != "" {
		opts.SetAuth(options.Credential{
			AuthSource: cfg.AuthDB,
			Username:   cfg.Username,
			Password:   cfg.Password,
		})
	}
	return opts, opts.Validate()
}

func (db *DB) Close(ctx context.Context) error {
	return db.Client.Disconnect(ctx)
}
