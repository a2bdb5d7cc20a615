// Package postgres opens the connection pool and applies the schema.
package postgres

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const applicationName = "bookkeeper"

// PoolConfig holds connection pool settings. Zero values keep the pgxpool
// defaults or whatever the URL specifies.
type PoolConfig struct {
	DatabaseURL      string
	MaxConns         int
	MinConns         int
	ConnectTimeout   time.Duration
	StatementTimeout time.Duration
}

func (c PoolConfig) pgxConfig() (*pgxpool.Config, error) {
	config, err := pgxpool.ParseConfig(c.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	if c.MaxConns > 0 {
		config.MaxConns = int32(c.MaxConns)
	}
	if c.MinConns > 0 {
		config.MinConns = min(int32(c.MinConns), config.MaxConns)
	}
	if c.ConnectTimeout > 0 {
		config.ConnConfig.ConnectTimeout = c.ConnectTimeout
	}

	params := config.ConnConfig.RuntimeParams
	if params["application_name"] == "" {
		params["application_name"] = applicationName
	}
	if c.StatementTimeout > 0 {
		params["statement_timeout"] = strconv.FormatInt(c.StatementTimeout.Milliseconds(), 10)
	}
	return config, nil
}

// NewPoolWithConfig creates a pool and verifies the connection.
func NewPoolWithConfig(ctx context.Context, cfg PoolConfig) (*pgxpool.Pool, error) {
	config, err := cfg.pgxConfig()
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database %s: %w", config.ConnConfig.Database, err)
	}
	return pool, nil
}
