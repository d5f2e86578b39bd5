// Package postgres stores game snapshots in PostgreSQL through a pgx pool.
// The schema lives in the repository's migrations directory and is applied
// with Migrate.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/cultivation/internal/config"
)

// applicationName tags every connection in pg_stat_activity.
const applicationName = "cultivation"

// connectTimeout bounds the initial ping in NewPool.
const connectTimeout = 10 * time.Second

// Pool is a connected pgx pool.
type Pool struct {
	pool *pgxpool.Pool
}

// NewPool connects to the database described by cfg and verifies the
// connection with a ping.
//
// Precondition: cfg passes config validation for the postgres driver.
// Postcondition: Returns a reachable Pool or a wrapped error; no connections
// are left open on error.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.ConnConfig.RuntimeParams["application_name"] = applicationName
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	return &Pool{pool: pool}, nil
}

// Health pings the database, failing after timeout.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.pool.Ping(ctx)
}

// Close releases every pooled connection.
func (p *Pool) Close() {
	p.pool.Close()
}

// DB exposes the pgx pool to repositories.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}
