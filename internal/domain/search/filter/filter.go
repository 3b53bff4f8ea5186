package filter

import (
	"fmt"

	"github.com/merx-cloud/prodex/internal/domain"
)

// Range is a closed numeric interval with optional bounds. An absent bound
// is unconstrained.
type Range struct {
	min *float64
	max *float64
}

// NewRange validates and creates a Range. Both bounds may be nil; when both
// are present the lower bound must not exceed the upper bound.
func NewRange(min, max *float64) (Range, error) {
	if min != nil && max != nil && *min > *max {
		return Range{}, fmt.Errorf("%w: range lower bound %v exceeds upper bound %v",
			domain.ErrInvalidArgument, *min, *max)
	}
	return Range{min: min, max: max}, nil
}

// Min returns the inclusive lower bound, or nil.
func (r Range) Min() *float64 { return r.min }

// Max returns the inclusive upper bound, or nil.
func (r Range) Max() *float64 { return r.max }

// Contains reports whether v falls inside the range (inclusive bounds).
func (r Range) Contains(v float64) bool {
	if r.min != nil && v < *r.min {
		return false
	}
	if r.max != nil && v > *r.max {
		return false
	}
	return true
}

// Filters are the structural constraints a candidate must satisfy to stay
// eligible, independent of text relevance.
type Filters struct {
	category    string
	storageArea string
	price       *Range
	stock       *Range
}

// New creates a filter set. Empty strings and nil ranges are unconstrained.
func New(category, storageArea string, price, stock *Range) Filters {
	return Filters{
		category:    category,
		storageArea: storageArea,
		price:       price,
		stock:       stock,
	}
}

// Category returns the category equality constraint ("" if unset).
func (f Filters) Category() string { return f.category }

// StorageArea returns the storage area equality constraint ("" if unset).
func (f Filters) StorageArea() string { return f.storageArea }

// Price returns the price range constraint (nil if unset).
func (f Filters) Price() *Range { return f.price }

// Stock returns the stock range constraint (nil if unset).
func (f Filters) Stock() *Range { return f.stock }

// IsEmpty reports whether no constraint is set.
func (f Filters) IsEmpty() bool {
	return f.category == "" && f.storageArea == "" && f.price == nil && f.stock == nil
}

// Matches reports whether the product satisfies every supplied constraint.
func (f Filters) Matches(p *domain.ProductRecord) bool {
	if f.category != "" && p.Category != f.category {
		return false
	}
	if f.storageArea != "" && p.StorageArea != f.storageArea {
		return false
	}
	if f.price != nil && !f.price.Contains(p.Price) {
		return false
	}
	if f.stock != nil && !f.stock.Contains(float64(p.Stock)) {
		return false
	}
	return true
}
