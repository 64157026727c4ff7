// Package store holds the bot's database connection.
//
// The database is not on the translation path. It is opened at startup so
// that readiness reflects whether the deployment's database is reachable.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nadzzz/sylliba/internal/config"
)

// Postgres wraps a connection pool.
type Postgres struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// Open parses cfg and creates a pool. Connections are established lazily,
// so Open succeeds even while the server is down; Ping reports reachability.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Postgres, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("creating database pool: %w", err)
	}

	logger := slog.With("component", "store")
	logger.Info("database pool created",
		"host", pcfg.ConnConfig.Host,
		"database", pcfg.ConnConfig.Database,
		"max_conns", pcfg.MaxConns)
	return &Postgres{pool: pool, logger: logger}, nil
}

// Ping checks that a connection can be acquired and used. It matches
// health.Check.
func (p *Postgres) Ping(ctx context.Context) error {
	if err := p.pool.Ping(ctx); err != nil {
		return fmt.Errorf("database ping: %w", err)
	}
	return nil
}

// Close releases every pooled connection.
func (p *Postgres) Close() {
	p.pool.Close()
	p.logger.Info("database pool closed")
}
