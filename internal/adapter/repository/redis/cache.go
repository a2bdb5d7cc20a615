package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const cachePrefix = "cache:"

// ErrCacheMiss is returned by Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// CacheObserver is told about every lookup that reached redis.
type CacheObserver interface {
	CacheHit()
	CacheMiss()
}

// Cache implements usecase.Cache on redis. Balance keys embed the journal
// sequence they were computed at, so entries never need to invalidate
// them; stale keys simply age out.
type Cache struct {
	client   redis.UniversalClient
	prefix   string
	observer CacheObserver
}

// NewCache creates a new Cache.
func NewCache(client redis.UniversalClient) *Cache {
	return &Cache{client: client, prefix: cachePrefix}
}

// WithObserver sets an observer for hit and miss counts.
func (c *Cache) WithObserver(o CacheObserver) *Cache {
	c.observer = o
	return c
}

// Get returns the value under key or ErrCacheMiss.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		c.record(false)
		return nil, ErrCacheMiss
	case err != nil:
		return nil, fmt.Errorf("cache get %s: %w", key, err)
	}
	c.record(true)
	return val, nil
}

// Set stores value under key for ttl. A non-positive ttl stores nothing,
// since an unbounded balance key would never be reclaimed.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := c.client.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.prefix+key).Err()
}

func (c *Cache) record(hit bool) {
	switch {
	case c.observer == nil:
	case hit:
		c.observer.CacheHit()
	default:
		c.observer.CacheMiss()
	}
}
