package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolConfig(t *testing.T) {
	cfg, err := PoolConfig{
		DatabaseURL:      "postgres://ledger@localhost:5432/books?sslmode=disable",
		MaxConns:         8,
		MinConns:         20,
		ConnectTimeout:   3 * time.Second,
		StatementTimeout: 1500 * time.Millisecond,
	}.pgxConfig()
	require.NoError(t, err)

	assert.Equal(t, int32(8), cfg.MaxConns)
	assert.Equal(t, int32(8), cfg.MinConns, "min is capped at max")
	assert.Equal(t, 3*time.Second, cfg.ConnConfig.ConnectTimeout)
	assert.Equal(t, "books", cfg.ConnConfig.Database)
	assert.Equal(t, applicationName, cfg.ConnConfig.RuntimeParams["application_name"])
	assert.Equal(t, "1500", cfg.ConnConfig.RuntimeParams["statement_timeout"])
}

func TestPoolConfig_URLWins(t *testing.T) {
	cfg, err := PoolConfig{DatabaseURL: "postgres://ledger@localhost/books?application_name=reports&pool_max_conns=3"}.pgxConfig()
	require.NoError(t, err)

	assert.Equal(t, "reports", cfg.ConnConfig.RuntimeParams["application_name"])
	assert.Equal(t, int32(3), cfg.MaxConns)
	assert.NotContains(t, cfg.ConnConfig.RuntimeParams, "statement_timeout")
}

func TestNewPoolWithConfig_InvalidURL(t *testing.T) {
	_, err := NewPoolWithConfig(context.Background(), PoolConfig{DatabaseURL: "not a url ::"})
	assert.ErrorContains(t, err, "parse database URL")
}

func TestNewPoolWithConfig_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewPoolWithConfig(ctx, PoolConfig{
		DatabaseURL:    "postgres://ledger@127.0.0.1:1/ledger?sslmode=disable",
		MaxConns:       1,
		ConnectTimeout: 200 * time.Millisecond,
	})
	assert.ErrorContains(t, err, "failed to ping database ledger")
}

func TestMigrationsAreEmbedded(t *testing.T) {
	src, err := migrationSource()
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)
}
