package searchcache

import (
	"context"
	"fmt"
	"time"
)

// defaultBasePrefix namespaces every key this service writes.
const defaultBasePrefix = "prodex:"

// kvStore is the consumer interface for the Redis-backed cache (ISP).
type kvStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// RedisCache stores responses in Redis so all replicas share one cache.
type RedisCache struct {
	store  kvStore
	prefix string
}

// NewRedisCache creates a Redis-backed response cache. basePrefix is the
// service-wide key namespace; empty selects the default.
func NewRedisCache(s kvStore, basePrefix string) *RedisCache {
	if basePrefix == "" {
		basePrefix = defaultBasePrefix
	}
	return &RedisCache{store: s, prefix: basePrefix + "search_cache:"}
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	return r.store.Get(ctx, r.prefix+key)
}

func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.store.SetWithTTL(ctx, r.prefix+key, value, ttl)
}

// Check probes the backend with an EXISTS. The probe key is never
// written; a clean "absent" answer still proves connectivity.
func (r *RedisCache) Check(ctx context.Context) error {
	if _, err := r.store.Exists(ctx, r.prefix+"probe"); err != nil {
		return fmt.Errorf("cache probe: %w", err)
	}
	return nil
}

// Invalidate deletes every cached response key. Entries also expire by
// TTL, so a partial failure here only extends staleness.
func (r *RedisCache) Invalidate(ctx context.Context) error {
	keys, err := r.store.Scan(ctx, r.prefix+"*")
	if err != nil {
		return fmt.Errorf("scan cache keys: %w", err)
	}
	for _, key := range keys {
		if err := r.store.Del(ctx, key); err != nil {
			return fmt.Errorf("delete cache key %s: %w", key, err)
		}
	}
	return nil
}
