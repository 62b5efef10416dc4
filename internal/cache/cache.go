// Package cache is an explicit get-or-compute cache over redis. Callers
// invalidate keys themselves from their mutation paths; nothing here is
// implicit interception.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(addr string, ttl time.Duration) *Cache {
	return &Cache{
		rdb: redis.NewClient(&redis.Options{Addr: addr}),
		ttl: ttl,
	}
}

// GetOrCompute returns the cached bytes for key, computing and storing them
// on a miss. Redis failures degrade to computing directly: the cache never
// turns a read into an error.
func (c *Cache) GetOrCompute(ctx context.Context, key string, compute func(context.Context) ([]byte, error)) ([]byte, error) {
	if c == nil || c.rdb == nil {
		return compute(ctx)
	}
	val, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil {
		return val, nil
	}
	if !errors.Is(err, redis.Nil) {
		return compute(ctx)
	}
	val, err = compute(ctx)
	if err != nil {
		return nil, err
	}
	_ = c.rdb.Set(ctx, key, val, c.ttl).Err()
	return val, nil
}

// Invalidate drops the given keys. Best effort.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || c.rdb == nil || len(keys) == 0 {
		return
	}
	_ = c.rdb.Del(ctx, keys...).Err()
}

// ProductKey is the cache key for a product read.
func ProductKey(productID string) string {
	return "product:" + productID
}

// StockKey is the cache key for a product's derived stock status.
func StockKey(productID string) string {
	return "stock:" + productID
}

func (c *Cache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
