package redis

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		wantName string
		wantDB   int
	}{
		{name: "defaults", path: "", wantName: clientName, wantDB: 0},
		{name: "explicit name and db", path: "/2?client_name=worker", wantName: "worker", wantDB: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mr := miniredis.RunT(t)
			ctx := context.Background()

			client, err := NewClient(ctx, "redis://"+mr.Addr()+tt.path)
			require.NoError(t, err)
			t.Cleanup(func() { _ = client.Close() })

			require.NoError(t, client.Ping(ctx).Err())
			assert.Equal(t, tt.wantName, client.Options().ClientName)
			assert.Equal(t, tt.wantDB, client.Options().DB)
		})
	}
}

func TestNewClient_InvalidURL(t *testing.T) {
	_, err := NewClient(context.Background(), "://bad-url")
	assert.ErrorContains(t, err, "parse redis URL")
}

func TestNewClient_ServerDown(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewClient(context.Background(), "redis://"+addr)
	assert.ErrorContains(t, err, "failed to ping redis at "+addr)
}

func TestNewClient_CancelledContext(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(ctx, "redis://"+mr.Addr())
	assert.ErrorIs(t, err, context.Canceled)
}
