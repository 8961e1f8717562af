package store

import (
	"context"
	"io"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/pageza/recipe-assistant/backend/config"
	"github.com/pageza/recipe-assistant/backend/internal/database"
)

// Backend is an opened store together with the resources it owns.
type Backend struct {
	KVStore
	Name    string
	closers []io.Closer
	health  func(ctx context.Context) error
}

// Close releases connections held by the backend.
func (b *Backend) Close() error {
	var first error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// HealthCheck pings the underlying connection when there is one.
func (b *Backend) HealthCheck(ctx context.Context) error {
	if b.health == nil {
		return nil
	}
	return b.health(ctx)
}

// Open builds the store selected by cfg.StoreBackend.
func Open(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*Backend, error) {
	log = log.WithField("store", cfg.StoreBackend)

	switch cfg.StoreBackend {
	case config.StoreMemory:
		log.Warn("using in-memory store, saved recipes are lost on restart")
		return &Backend{KVStore: NewMemory(), Name: cfg.StoreBackend}, nil

	case config.StoreSQLite:
		db, err := database.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, pkgerrors.Wrap(err, "sqlite handle")
		}
		log.WithField("path", cfg.SQLitePath).Info("opened sqlite store")
		return &Backend{
			KVStore: NewGorm(db),
			Name:    cfg.StoreBackend,
			closers: []io.Closer{sqlDB},
			health:  sqlDB.PingContext,
		}, nil

	case config.StorePostgres:
		pool, err := database.New(cfg, log)
		if err != nil {
			return nil, err
		}
		if err := database.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		db, err := pool.Gorm()
		if err != nil {
			pool.Close()
			return nil, pkgerrors.Wrap(err, "postgres gorm handle")
		}
		return &Backend{
			KVStore: NewGorm(db),
			Name:    cfg.StoreBackend,
			closers: []io.Closer{pool},
			health:  pool.HealthCheck,
		}, nil

	case config.StoreRedis:
		client, err := database.NewRedisClient(cfg, log)
		if err != nil {
			return nil, err
		}
		return &Backend{
			KVStore: NewRedis(client),
			Name:    cfg.StoreBackend,
			closers: []io.Closer{client},
			health: func(ctx context.Context) error {
				return client.Ping(ctx).Err()
			},
		}, nil

	case config.StoreS3:
		s3cfg, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			return nil, err
		}
		log.WithField("bucket", s3cfg.BucketName).Info("using s3 store")
		return &Backend{
			KVStore: NewS3(s3cfg.Client, s3cfg.BucketName, s3cfg.Prefix),
			Name:    cfg.StoreBackend,
		}, nil
	}

	return nil, pkgerrors.Errorf("unknown store backend %q", cfg.StoreBackend)
}
