package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	idempotencyPrefix = "idem:"

	// pendingMarker occupies a key while the first request is still running.
	pendingMarker = "\x00pending"
)

// IdempotencyStore implements usecase.IdempotencyStore on redis. A key is
// claimed with SET NX so that two concurrent requests never both win.
type IdempotencyStore struct {
	client redis.UniversalClient
	prefix string
}

// NewIdempotencyStore creates a new IdempotencyStore.
func NewIdempotencyStore(client redis.UniversalClient) *IdempotencyStore {
	return &IdempotencyStore{client: client, prefix: idempotencyPrefix}
}

// CheckAndSet claims key. When the key is already held it reports true with
// the stored response, which is nil while the owner is still in flight.
// A non-nil response is stored immediately instead of the pending marker.
func (s *IdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	k := s.prefix + key

	var value any = pendingMarker
	if response != nil {
		value = response
	}

	claimed, err := s.client.SetNX(ctx, k, value, ttl).Result()
	if err != nil {
		return false, nil, fmt.Errorf("claim idempotency key: %w", err)
	}
	if claimed {
		return false, nil, nil
	}

	stored, err := s.client.Get(ctx, k).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		// Released between SETNX and GET; the caller may simply retry.
		return true, nil, nil
	case err != nil:
		return false, nil, fmt.Errorf("read idempotency key: %w", err)
	case string(stored) == pendingMarker:
		return true, nil, nil
	}
	return true, stored, nil
}

// Update stores the final response under key. A nil response releases the
// key so that a failed request can be retried.
func (s *IdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	k := s.prefix + key
	if response == nil {
		return s.client.Del(ctx, k).Err()
	}
	return s.client.Set(ctx, k, response, ttl).Err()
}
