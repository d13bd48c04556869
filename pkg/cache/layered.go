package cache

import (
	"context"
	"encoding/json"
	"time"
)

// LayeredCache implements a two-level cache (L1: memory, L2: Redis).
type LayeredCache struct {
	memCache   *MemoryCache
	redisCache *RedisCache
}

// NewLayeredCache creates a layered cache with memory in front of Redis.
func NewLayeredCache(redisCache *RedisCache, opts ...LayeredOption) *LayeredCache {
	cfg := &LayeredConfig{
		MemoryMaxSize: 1000,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return &LayeredCache{
		memCache:   NewMemoryCache(WithMemoryMaxSize(cfg.MemoryMaxSize)),
		redisCache: redisCache,
	}
}

func (lc *LayeredCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	// Write-through: Redis first, then memory.
	if err := lc.redisCache.Set(ctx, key, value, expiration); err != nil {
		return err
	}
	_ = lc.memCache.Set(ctx, key, value, expiration)
	return nil
}

func (lc *LayeredCache) Get(ctx context.Context, key string, dest interface{}) error {
	if err := lc.memCache.Get(ctx, key, dest); err == nil {
		return nil
	}

	if err := lc.redisCache.Get(ctx, key, dest); err != nil {
		return err
	}

	// Promote to memory for the next read.
	var raw json.RawMessage
	if data, err := json.Marshal(dest); err == nil {
		raw = data
		_ = lc.memCache.Set(ctx, key, raw, 0)
	}
	return nil
}

func (lc *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	_ = lc.memCache.Delete(ctx, keys...)
	return lc.redisCache.Delete(ctx, keys...)
}

func (lc *LayeredCache) DeleteByPattern(ctx context.Context, pattern string) error {
	_ = lc.memCache.DeleteByPattern(ctx, pattern)
	return lc.redisCache.DeleteByPattern(ctx, pattern)
}

func (lc *LayeredCache) Exists(ctx context.Context, keys ...string) (bool, error) {
	if ok, _ := lc.memCache.Exists(ctx, keys...); ok {
		return true, nil
	}
	return lc.redisCache.Exists(ctx, keys...)
}

// Close releases both layers.
func (lc *LayeredCache) Close() error {
	_ = lc.memCache.Close()
	return lc.redisCache.Close()
}
