package prodex

import (
	"context"
	"fmt"

	"github.com/merx-cloud/prodex/internal/domain/search/filter"
	"github.com/merx-cloud/prodex/internal/domain/search/request"
	"github.com/merx-cloud/prodex/internal/domain/search/sortmode"
	searchuc "github.com/merx-cloud/prodex/internal/usecase/search"
)

// SearchBuilder is a fluent builder for ranked catalog queries.
type SearchBuilder struct {
	engine *searchuc.Engine

	query       string
	category    string
	storageArea string

	minPrice, maxPrice *float64
	minStock, maxStock *float64

	sort     SortMode
	page     int
	pageSize int
}

// Category restricts results to one category (exact match).
func (b *SearchBuilder) Category(c string) *SearchBuilder {
	b.category = c
	return b
}

// StorageArea restricts results to one storage area (exact match).
func (b *SearchBuilder) StorageArea(a string) *SearchBuilder {
	b.storageArea = a
	return b
}

// PriceAtLeast sets the inclusive lower price bound.
func (b *SearchBuilder) PriceAtLeast(min float64) *SearchBuilder {
	b.minPrice = &min
	return b
}

// PriceAtMost sets the inclusive upper price bound.
func (b *SearchBuilder) PriceAtMost(max float64) *SearchBuilder {
	b.maxPrice = &max
	return b
}

// PriceBetween sets both price bounds (inclusive).
func (b *SearchBuilder) PriceBetween(min, max float64) *SearchBuilder {
	b.minPrice = &min
	b.maxPrice = &max
	return b
}

// StockAtLeast sets the inclusive lower stock bound.
func (b *SearchBuilder) StockAtLeast(min int) *SearchBuilder {
	v := float64(min)
	b.minStock = &v
	return b
}

// StockAtMost sets the inclusive upper stock bound.
func (b *SearchBuilder) StockAtMost(max int) *SearchBuilder {
	v := float64(max)
	b.maxStock = &v
	return b
}

// SortBy sets the result ordering. Defaults to relevance.
func (b *SearchBuilder) SortBy(m SortMode) *SearchBuilder {
	b.sort = m
	return b
}

// Page sets the 1-based page number and page size.
func (b *SearchBuilder) Page(page, size int) *SearchBuilder {
	b.page = page
	b.pageSize = size
	return b
}

// Do executes the search.
func (b *SearchBuilder) Do(ctx context.Context) (ResultPage, error) {
	req, err := b.buildRequest()
	if err != nil {
		return ResultPage{}, err
	}

	page, err := b.engine.Search(ctx, req)
	if err != nil {
		return ResultPage{}, fmt.Errorf("search: %w", err)
	}
	return fromPage(page), nil
}

func (b *SearchBuilder) buildRequest() (*request.Request, error) {
	price, err := buildRange(b.minPrice, b.maxPrice)
	if err != nil {
		return nil, fmt.Errorf("search: price %w", err)
	}
	stock, err := buildRange(b.minStock, b.maxStock)
	if err != nil {
		return nil, fmt.Errorf("search: stock %w", err)
	}

	f := filter.New(b.category, b.storageArea, price, stock)
	req, err := request.New(b.query, f, sortmode.Mode(b.sort), b.page, b.pageSize, 0)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return &req, nil
}

func buildRange(min, max *float64) (*filter.Range, error) {
	if min == nil && max == nil {
		return nil, nil
	}
	r, err := filter.NewRange(min, max)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
