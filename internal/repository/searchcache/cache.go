// Package searchcache memoizes search engine responses. The engine is a
// pure function of the corpus snapshot, so identical calls can be served
// from a cache until the catalog changes and Invalidate is called.
package searchcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/merx-cloud/prodex/internal/db"
	"github.com/merx-cloud/prodex/internal/domain/search/facet"
	"github.com/merx-cloud/prodex/internal/domain/search/filter"
	"github.com/merx-cloud/prodex/internal/domain/search/request"
	"github.com/merx-cloud/prodex/internal/domain/search/result"
)

// DefaultTTL bounds staleness when an Invalidate call is missed.
const DefaultTTL = 5 * time.Minute

// Cache is the consumer interface for a response cache backend (ISP).
// Get returns db.ErrKeyNotFound for a missing key.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

// engine is the consumer interface for the wrapped search engine.
type engine interface {
	Search(ctx context.Context, req *request.Request) (result.Page, error)
	Similar(ctx context.Context, targetID string, limit int) ([]result.Similarity, error)
	Suggest(ctx context.Context, partial string, limit int) ([]string, error)
	CategoryFacets(ctx context.Context) ([]facet.CategoryBucket, error)
	PriceFacets(ctx context.Context) (facet.PriceSummary, error)
}

// CachedEngine is a caching decorator around the search engine. Responses
// are stored as JSON under a sha256 key of the operation and its
// arguments. Cache backend failures degrade to a miss, never to a request
// failure.
type CachedEngine struct {
	inner      engine
	cache      Cache
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner engine,
	c Cache,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedEngine {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedEngine{
		inner:      inner,
		cache:      c,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Search serves a cached page or delegates to the inner engine.
func (c *CachedEngine) Search(ctx context.Context, req *request.Request) (result.Page, error) {
	key := cacheKey("search", requestKey(req))
	return fetch(ctx, c, key, func(ctx context.Context) (result.Page, error) {
		return c.inner.Search(ctx, req)
	})
}

// Similar serves cached related items or delegates to the inner engine.
func (c *CachedEngine) Similar(ctx context.Context, targetID string, limit int) ([]result.Similarity, error) {
	key := cacheKey("similar", fmt.Sprintf("%s|%d", targetID, limit))
	return fetch(ctx, c, key, func(ctx context.Context) ([]result.Similarity, error) {
		return c.inner.Similar(ctx, targetID, limit)
	})
}

// Suggest serves cached completions or delegates to the inner engine.
func (c *CachedEngine) Suggest(ctx context.Context, partial string, limit int) ([]string, error) {
	key := cacheKey("suggest", fmt.Sprintf("%s|%d", partial, limit))
	return fetch(ctx, c, key, func(ctx context.Context) ([]string, error) {
		return c.inner.Suggest(ctx, partial, limit)
	})
}

// CategoryFacets serves cached category counts or delegates to the inner engine.
func (c *CachedEngine) CategoryFacets(ctx context.Context) ([]facet.CategoryBucket, error) {
	return fetch(ctx, c, cacheKey("category_facets", ""), c.inner.CategoryFacets)
}

// PriceFacets serves a cached price summary or delegates to the inner engine.
func (c *CachedEngine) PriceFacets(ctx context.Context) (facet.PriceSummary, error) {
	return fetch(ctx, c, cacheKey("price_facets", ""), c.inner.PriceFacets)
}

// Invalidate drops every cached response. Call it after catalog writes.
func (c *CachedEngine) Invalidate(ctx context.Context) error {
	if err := c.cache.Invalidate(ctx); err != nil {
		return fmt.Errorf("invalidate search cache: %w", err)
	}
	return nil
}

// fetch implements the read-through path shared by every operation.
func fetch[T any](ctx context.Context, c *CachedEngine, key string, load func(context.Context) (T, error)) (T, error) {
	var zero T

	if data, ok := c.getFromCache(ctx, key); ok {
		var cached T
		if err := json.Unmarshal(data, &cached); err == nil {
			c.incCache("hit")
			return cached, nil
		}
		c.logger.Warn("Dropping undecodable cache entry", zap.String("key", key))
	}
	c.incCache("miss")

	v, err := load(ctx)
	if err != nil {
		return zero, err
	}

	c.putToCache(ctx, key, v)
	return v, nil
}

func (c *CachedEngine) incCache(outcome string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(outcome).Inc()
	}
}

func (c *CachedEngine) getFromCache(ctx context.Context, key string) ([]byte, bool) {
	data, err := c.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached response", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return data, true
}

func (c *CachedEngine) putToCache(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("Failed to encode cache entry", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to store cache entry", zap.String("key", key), zap.Error(err))
	}
}

// cacheKey is opaque to the backend; each backend applies its own
// namespace prefix.
func cacheKey(op, args string) string {
	h := sha256.Sum256([]byte(op + "\x00" + args))
	return hex.EncodeToString(h[:])
}

// requestKey serializes every field that affects the response.
func requestKey(req *request.Request) string {
	f := req.Filters()
	return fmt.Sprintf("%s|%s|%d|%d|%s|%s|%s|%s",
		req.Query(), req.SortBy(), req.Page(), req.PageSize(),
		f.Category(), f.StorageArea(), rangeKey(f.Price()), rangeKey(f.Stock()))
}

func rangeKey(r *filter.Range) string {
	if r == nil {
		return "-"
	}
	return boundKey(r.Min()) + ".." + boundKey(r.Max())
}

func boundKey(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *v)
}
