// Package catalog implements the corpus provider over Redis product
// hashes: one hash per product under prodex:product:<id>.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/merx-cloud/prodex/internal/db"
	"github.com/merx-cloud/prodex/internal/domain"
	"github.com/merx-cloud/prodex/internal/domain/search/filter"
)

// defaultBasePrefix namespaces every key this service writes.
const defaultBasePrefix = "prodex:"

// store is the consumer interface for the catalog (ISP).
type store interface {
	Scan(ctx context.Context, pattern string) ([]string, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	Del(ctx context.Context, key string) error
}

// Repo implements usecase/search.CorpusProvider.
type Repo struct {
	store  store
	prefix string
	logger *zap.Logger
}

// New creates a catalog repository. basePrefix is the service-wide key
// namespace; empty selects the default.
func New(s store, basePrefix string, logger *zap.Logger) *Repo {
	if basePrefix == "" {
		basePrefix = defaultBasePrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repo{store: s, prefix: basePrefix + "product:", logger: logger}
}

// FetchActive returns every active product. The filters hint is accepted
// but not pushed down; the engine re-applies all filters itself.
// Malformed records are skipped with a warning rather than failing the
// whole snapshot.
func (r *Repo) FetchActive(ctx context.Context, _ filter.Filters) ([]domain.ProductRecord, error) {
	keys, err := r.store.Scan(ctx, r.prefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan products: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	products := make([]domain.ProductRecord, 0, len(hashes))
	for i, m := range hashes {
		if len(m) == 0 {
			continue // expired between SCAN and HGETALL
		}
		p, err := parseHashFields(r.productID(keys[i]), m)
		if err != nil {
			r.logger.Warn("Skipping malformed product record", zap.String("key", keys[i]), zap.Error(err))
			continue
		}
		if !p.IsActive() {
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

// Get returns one product by ID regardless of status, or
// domain.ErrProductNotFound.
func (r *Repo) Get(ctx context.Context, id string) (domain.ProductRecord, error) {
	m, err := r.store.HGetAll(ctx, r.prefix+id)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.ProductRecord{}, domain.ErrProductNotFound
		}
		return domain.ProductRecord{}, fmt.Errorf("load product %s: %w", id, err)
	}
	if len(m) == 0 {
		return domain.ProductRecord{}, domain.ErrProductNotFound
	}
	p, err := parseHashFields(id, m)
	if err != nil {
		return domain.ProductRecord{}, err
	}
	return p, nil
}

// Upsert creates or replaces a product record.
func (r *Repo) Upsert(ctx context.Context, p *domain.ProductRecord) error {
	if p.ID == "" {
		return fmt.Errorf("%w: product id is required", domain.ErrInvalidArgument)
	}
	if err := r.store.HSet(ctx, r.prefix+p.ID, buildHashFields(p)); err != nil {
		return fmt.Errorf("store product %s: %w", p.ID, err)
	}
	return nil
}

// UpsertMulti creates or replaces a batch of product records in a single
// pipelined round-trip.
func (r *Repo) UpsertMulti(ctx context.Context, records []domain.ProductRecord) error {
	if len(records) == 0 {
		return nil
	}
	items := make([]db.HashSetItem, 0, len(records))
	for i := range records {
		if records[i].ID == "" {
			return fmt.Errorf("%w: product id is required", domain.ErrInvalidArgument)
		}
		items = append(items, db.HashSetItem{
			Key:    r.prefix + records[i].ID,
			Fields: buildHashFields(&records[i]),
		})
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("store %d products: %w", len(items), err)
	}
	return nil
}

// Delete removes a product record.
func (r *Repo) Delete(ctx context.Context, id string) error {
	if err := r.store.Del(ctx, r.prefix+id); err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	return nil
}

func (r *Repo) productID(key string) string {
	return strings.TrimPrefix(key, r.prefix)
}
