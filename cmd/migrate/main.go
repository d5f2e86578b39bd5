// Package main applies the snapshot schema migrations to PostgreSQL.
package main

import (
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/cultivation/internal/config"
	"github.com/cory-johannsen/cultivation/internal/observability"
	"github.com/cory-johannsen/cultivation/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	direction := flag.String("direction", "up", "migration direction: up or down")
	steps := flag.Int("steps", 0, "number of steps (0 = all)")
	dir := flag.String("migrations", "migrations", "path to the migrations directory")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logging, "migrate")
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if cfg.Storage.Driver != config.DriverPostgres {
		logger.Warn("storage driver is not postgres; migrating the configured database anyway",
			zap.String("driver", cfg.Storage.Driver))
	}

	res, err := postgres.Migrate(cfg.Database, *dir, postgres.Direction(*direction), *steps)
	if err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}
	logger.Info("migration finished",
		zap.String("direction", *direction),
		zap.Bool("changed", res.Changed),
		zap.Uint("version", res.Version),
		zap.Bool("dirty", res.Dirty),
		zap.Duration("elapsed", time.Since(start)),
	)
}
