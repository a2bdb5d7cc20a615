package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdempotencyStore_FirstClaimWins(t *testing.T) {
	client, mr := newTestRedisClient(t)
	store := NewIdempotencyStore(client)
	ctx := context.Background()

	held, resp, err := store.CheckAndSet(ctx, "entry-1", nil, time.Minute)
	require.NoError(t, err)
	assert.False(t, held)
	assert.Nil(t, resp)
	assert.True(t, mr.Exists(idempotencyPrefix+"entry-1"))

	held, resp, err = store.CheckAndSet(ctx, "entry-1", nil, time.Minute)
	require.NoError(t, err)
	assert.True(t, held)
	assert.Nil(t, resp, "in-flight claim must not leak the marker")
}

func TestIdempotencyStore_ReplaysStoredResponse(t *testing.T) {
	client, mr := newTestRedisClient(t)
	store := NewIdempotencyStore(client)
	ctx := context.Background()

	_, _, err := store.CheckAndSet(ctx, "entry-2", nil, time.Minute)
	require.NoError(t, err)
	require.NoError(t, store.Update(ctx, "entry-2", []byte(`{"status":201}`), time.Minute))

	held, resp, err := store.CheckAndSet(ctx, "entry-2", nil, time.Minute)
	require.NoError(t, err)
	assert.True(t, held)
	assert.JSONEq(t, `{"status":201}`, string(resp))

	mr.FastForward(2 * time.Minute)
	held, _, err = store.CheckAndSet(ctx, "entry-2", nil, time.Minute)
	require.NoError(t, err)
	assert.False(t, held, "expired key is claimable again")
}

func TestIdempotencyStore_StoresResponseOnClaim(t *testing.T) {
	client, _ := newTestRedisClient(t)
	store := NewIdempotencyStore(client)
	ctx := context.Background()

	held, _, err := store.CheckAndSet(ctx, "import", []byte("done"), time.Minute)
	require.NoError(t, err)
	assert.False(t, held)

	val, err := client.Get(ctx, idempotencyPrefix+"import").Result()
	require.NoError(t, err)
	assert.Equal(t, "done", val)
}

func TestIdempotencyStore_ReleaseOnFailure(t *testing.T) {
	client, mr := newTestRedisClient(t)
	store := NewIdempotencyStore(client)
	ctx := context.Background()

	_, _, err := store.CheckAndSet(ctx, "close-jan", nil, time.Minute)
	require.NoError(t, err)
	require.NoError(t, store.Update(ctx, "close-jan", nil, time.Minute))
	assert.False(t, mr.Exists(idempotencyPrefix+"close-jan"))

	held, _, err := store.CheckAndSet(ctx, "close-jan", nil, time.Minute)
	require.NoError(t, err)
	assert.False(t, held)
}

func TestIdempotencyStore_ConcurrentClaims(t *testing.T) {
	client, _ := newTestRedisClient(t)
	store := NewIdempotencyStore(client)
	ctx := context.Background()

	const callers = 16
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		owners int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			held, _, err := store.CheckAndSet(ctx, "race", nil, time.Minute)
			assert.NoError(t, err)
			if !held {
				mu.Lock()
				owners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, owners)
}

func TestIdempotencyStore_Unavailable(t *testing.T) {
	client, mr := newTestRedisClient(t)
	store := NewIdempotencyStore(client)
	mr.Close()

	_, _, err := store.CheckAndSet(context.Background(), "k", nil, time.Minute)
	assert.ErrorContains(t, err, "claim idempotency key")
}
