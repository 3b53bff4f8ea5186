// Package prodex is the embedded client for the product search engine:
// the same catalog, scoring and faceting stack the HTTP server hosts,
// usable in-process against a Redis catalog.
package prodex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	dbRedis "github.com/merx-cloud/prodex/internal/db/redis"
	"github.com/merx-cloud/prodex/internal/domain"
	"github.com/merx-cloud/prodex/internal/repository/catalog"
	"github.com/merx-cloud/prodex/internal/text"
	searchuc "github.com/merx-cloud/prodex/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Client is the prodex SDK entry point.
type Client struct {
	store   *dbRedis.Store
	catalog *catalog.Repo
	engine  *searchuc.Engine
}

// Option configures the client.
type Option func(*clientConfig)

type clientConfig struct {
	addrs       []string
	username    string
	password    string
	db          int
	keyPrefix   string
	jaroWinkler bool
	logger      *zap.Logger
}

// WithRedis sets the Redis addresses to connect to.
func WithRedis(addrs ...string) Option {
	return func(c *clientConfig) { c.addrs = addrs }
}

// WithAuth sets Redis credentials.
func WithAuth(username, password string) Option {
	return func(c *clientConfig) {
		c.username = username
		c.password = password
	}
}

// WithDB selects a Redis logical database.
func WithDB(db int) Option {
	return func(c *clientConfig) { c.db = db }
}

// WithKeyPrefix overrides the key namespace catalog records live under.
func WithKeyPrefix(prefix string) Option {
	return func(c *clientConfig) { c.keyPrefix = prefix }
}

// WithJaroWinkler swaps the edit-distance scorer for a Jaro-Winkler one,
// which favors shared prefixes. Thresholds keep their 0..100 meaning.
func WithJaroWinkler() Option {
	return func(c *clientConfig) { c.jaroWinkler = true }
}

// WithLogger attaches a logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) { c.logger = l }
}

// New creates a prodex Client and connects to the catalog database.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o(cfg)
	}
	if len(cfg.addrs) == 0 {
		return nil, errors.New("prodex: database address required (use WithRedis)")
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Username: cfg.username,
		Password: cfg.password,
		DB:       cfg.db,
	})
	if err != nil {
		return nil, fmt.Errorf("prodex: create redis store: %w", err)
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("prodex: database not ready: %w", err)
	}

	var sim text.StringSimilarity = text.LevenshteinSimilarity{}
	if cfg.jaroWinkler {
		sim = text.JaroWinklerSimilarity{}
	}

	repo := catalog.New(store, cfg.keyPrefix, cfg.logger)
	engine := searchuc.New(repo, text.NewTokenizer(cfg.logger), sim, searchuc.Config{}, cfg.logger)

	return &Client{store: store, catalog: repo, engine: engine}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// AddProduct creates or replaces a catalog record.
func (c *Client) AddProduct(ctx context.Context, p Product) error {
	rec := p.toDomain()
	if err := c.catalog.Upsert(ctx, &rec); err != nil {
		return fmt.Errorf("add product: %w", err)
	}
	return nil
}

// AddProducts creates or replaces a batch of catalog records in one
// pipelined round-trip.
func (c *Client) AddProducts(ctx context.Context, products []Product) error {
	records := make([]domain.ProductRecord, len(products))
	for i, p := range products {
		records[i] = p.toDomain()
	}
	if err := c.catalog.UpsertMulti(ctx, records); err != nil {
		return fmt.Errorf("add products: %w", err)
	}
	return nil
}

// GetProduct fetches one catalog record by ID.
// Returns ErrProductNotFound when missing.
func (c *Client) GetProduct(ctx context.Context, id string) (Product, error) {
	rec, err := c.catalog.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	return fromDomain(rec), nil
}

// DeleteProduct removes a catalog record.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	if err := c.catalog.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// Search starts a fluent search query.
func (c *Client) Search(query string) *SearchBuilder {
	return &SearchBuilder{engine: c.engine, query: query}
}

// Similar returns products related to the target, best first.
func (c *Client) Similar(ctx context.Context, id string, limit int) ([]SimilarHit, error) {
	hits, err := c.engine.Similar(ctx, id, limit)
	if err != nil {
		return nil, err
	}
	out := make([]SimilarHit, len(hits))
	for i, h := range hits {
		out[i] = SimilarHit{Product: fromDomain(h.Product), Score: h.Score}
	}
	return out, nil
}

// Suggest returns query completions for a partial input.
func (c *Client) Suggest(ctx context.Context, partial string, limit int) ([]string, error) {
	return c.engine.Suggest(ctx, partial, limit)
}

// CategoryFacets returns per-category counts and price spreads over the
// active catalog.
func (c *Client) CategoryFacets(ctx context.Context) ([]CategoryFacet, error) {
	buckets, err := c.engine.CategoryFacets(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CategoryFacet, len(buckets))
	for i, b := range buckets {
		out[i] = CategoryFacet{
			Category: b.Category,
			Count:    b.Count,
			MinPrice: b.MinPrice,
			AvgPrice: b.AvgPrice,
			MaxPrice: b.MaxPrice,
		}
	}
	return out, nil
}

// PriceFacets returns the five-bucket price histogram over the active
// catalog.
func (c *Client) PriceFacets(ctx context.Context) (PriceFacets, error) {
	s, err := c.engine.PriceFacets(ctx)
	if err != nil {
		return PriceFacets{}, err
	}
	out := PriceFacets{
		Count:    s.Count,
		MinPrice: s.MinPrice,
		AvgPrice: s.AvgPrice,
		MaxPrice: s.MaxPrice,
		Buckets:  make([]PriceBucket, len(s.Buckets)),
	}
	for i, b := range s.Buckets {
		out.Buckets[i] = PriceBucket{Low: b.Low, High: b.High, Count: b.Count, Label: b.Label}
	}
	return out, nil
}
