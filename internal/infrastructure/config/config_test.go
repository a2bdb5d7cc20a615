package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/bookkeeper/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.StorageMemory, cfg.StorageDriver)
	assert.NotEmpty(t, cfg.DatabaseURL)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.False(t, cfg.RequireClosedPeriod)
	assert.False(t, cfg.RedisEnabled)
	assert.Equal(t, 5*time.Minute, cfg.BalanceCacheTTL)
	assert.Equal(t, 5*time.Second, cfg.LedgerLockWait)
	assert.Equal(t, "bookkeeper:events", cfg.EventStream)
	assert.Equal(t, 168*time.Hour, cfg.OutboxRetention)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DATABASE_TIMEOUT", "45s")
	t.Setenv("LEDGER_LOCK_WAIT", "250ms")
	t.Setenv("REQUIRE_CLOSED_PERIOD", "true")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("EVENT_STREAM_LEN", "0")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.StoragePostgres, cfg.StorageDriver)
	assert.Equal(t, "postgres://example", cfg.DatabaseURL)
	assert.Equal(t, "redis://example", cfg.RedisURL)
	assert.True(t, cfg.RedisEnabled)
	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, 45*time.Second, cfg.DatabaseTimeout)
	assert.Equal(t, 250*time.Millisecond, cfg.LedgerLockWait)
	assert.True(t, cfg.RequireClosedPeriod)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.Zero(t, cfg.EventStreamLen)
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"bad duration", map[string]string{"HTTP_READ_TIMEOUT": "soon"}, "parse environment"},
		{"unknown driver", map[string]string{"STORAGE_DRIVER": "sqlite"}, "STORAGE_DRIVER"},
		{"unknown log format", map[string]string{"LOG_FORMAT": "xml"}, "LOG_FORMAT"},
		{"negative rate", map[string]string{"RATE_LIMIT_RPS": "-1"}, "must not be negative"},
		{"zero burst", map[string]string{"RATE_LIMIT_BURST": "0"}, "RATE_LIMIT_BURST"},
		{"zero batch", map[string]string{"OUTBOX_BATCH_SIZE": "0"}, "OUTBOX_BATCH_SIZE"},
		{"negative lock wait", map[string]string{"LEDGER_LOCK_WAIT": "-1s"}, "LEDGER_LOCK_WAIT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := config.Load()
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	cfg.StorageDriver = "bolt"
	cfg.OutboxBatchSize = 0

	err = cfg.Validate()
	assert.ErrorContains(t, err, "STORAGE_DRIVER")
	assert.ErrorContains(t, err, "OUTBOX_BATCH_SIZE")
}
