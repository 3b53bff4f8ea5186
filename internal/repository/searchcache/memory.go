package searchcache

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/merx-cloud/prodex/internal/db"
)

// MemoryCache keeps responses in process memory. Suited to single-replica
// deployments or as a fallback when Redis caching is disabled.
type MemoryCache struct {
	cache *ristretto.Cache[string, []byte]
}

// NewMemoryCache creates an in-process response cache bounded by
// maxBytes of stored payload.
func NewMemoryCache(maxBytes int64) (*MemoryCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: 10_000,
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create memory cache: %w", err)
	}
	return &MemoryCache{cache: c}, nil
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	data, ok := m.cache.Get(key)
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return data, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.cache.SetWithTTL(key, value, int64(len(value)), ttl)
	return nil
}

// Check always succeeds; the in-process cache has no remote dependency.
func (m *MemoryCache) Check(_ context.Context) error { return nil }

func (m *MemoryCache) Invalidate(_ context.Context) error {
	m.cache.Clear()
	return nil
}

// Close releases the cache's background resources.
func (m *MemoryCache) Close() {
	m.cache.Close()
}
