package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/cultivation/internal/config"
	"github.com/cory-johannsen/cultivation/internal/server"
	"github.com/cory-johannsen/cultivation/internal/storage"
	"github.com/cory-johannsen/cultivation/internal/storage/postgres"
	"github.com/cory-johannsen/cultivation/internal/storage/sqlite"
)

// healthInterval is how often the postgres pool is pinged in service mode.
const healthInterval = 30 * time.Second

// openedStore is the configured snapshot store plus its teardown. health is
// non-nil when the driver has a connection worth monitoring.
type openedStore struct {
	store  storage.Store
	close  func()
	health server.Service
}

// openStore connects the storage driver named by cfg.Storage.Driver. The
// "none" driver yields a nil store.
//
// Postcondition: close is always non-nil.
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (openedStore, error) {
	start := time.Now()
	switch cfg.Storage.Driver {
	case config.DriverNone, "":
		logger.Info("persistence disabled")
		return openedStore{close: func() {}}, nil
	case config.DriverSQLite:
		s, err := sqlite.Open(cfg.Storage.SQLitePath)
		if err != nil {
			return openedStore{close: func() {}}, fmt.Errorf("opening sqlite store: %w", err)
		}
		logger.Info("sqlite store opened",
			zap.String("path", cfg.Storage.SQLitePath),
			zap.Duration("elapsed", time.Since(start)),
		)
		return openedStore{store: s, close: func() { _ = s.Close() }}, nil
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return openedStore{close: func() {}}, fmt.Errorf("connecting to database: %w", err)
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(start)),
		)
		return openedStore{
			store:  postgres.NewSnapshotRepository(pool.DB()),
			close:  pool.Close,
			health: poolHealth(ctx, pool, logger),
		}, nil
	default:
		return openedStore{close: func() {}}, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func poolHealth(ctx context.Context, pool *postgres.Pool, logger *zap.Logger) server.Service {
	done := make(chan struct{})
	return &server.FuncService{
		StartFn: func() error {
			ticker := time.NewTicker(healthInterval)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return nil
				case <-ticker.C:
					if err := pool.Health(ctx, 5*time.Second); err != nil {
						logger.Warn("database health check failed", zap.Error(err))
					}
				}
			}
		},
		StopFn: func() { close(done) },
	}
}
