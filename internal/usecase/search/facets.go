package search

import (
	"context"
	"fmt"
	"sort"

	"github.com/merx-cloud/prodex/internal/domain/search/facet"
)

// priceBucketCount is the number of equal-width price facet buckets.
const priceBucketCount = 5

// CategoryFacets groups the active corpus by category and reports count
// plus min/avg/max price per category. Facets are computed over the whole
// active corpus, not a query-filtered set, so users can broaden as well as
// narrow. Products without a category are excluded; bucket counts
// therefore sum to the number of active products with a category.
func (e *Engine) CategoryFacets(ctx context.Context) ([]facet.CategoryBucket, error) {
	products, err := e.activeProducts(ctx)
	if err != nil {
		return nil, err
	}

	type agg struct {
		count    int
		sum      float64
		min, max float64
	}
	groups := make(map[string]*agg)
	for i := range products {
		p := &products[i]
		if p.Category == "" {
			continue
		}
		g, ok := groups[p.Category]
		if !ok {
			g = &agg{min: p.Price, max: p.Price}
			groups[p.Category] = g
		}
		g.count++
		g.sum += p.Price
		if p.Price < g.min {
			g.min = p.Price
		}
		if p.Price > g.max {
			g.max = p.Price
		}
	}

	buckets := make([]facet.CategoryBucket, 0, len(groups))
	for cat, g := range groups {
		buckets = append(buckets, facet.CategoryBucket{
			Category: cat,
			Count:    g.count,
			MinPrice: g.min,
			AvgPrice: g.sum / float64(g.count),
			MaxPrice: g.max,
		})
	}

	// count desc, then label asc, for a deterministic facet order
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Count != buckets[j].Count {
			return buckets[i].Count > buckets[j].Count
		}
		return buckets[i].Category < buckets[j].Category
	})

	return buckets, nil
}

// PriceFacets computes the global price aggregate over the active corpus
// and, when the price spread is non-zero, splits [min,max] into five equal
// contiguous buckets. Lower bounds are inclusive; upper bounds are
// exclusive except on the last bucket, so a boundary price lands in
// exactly one bucket.
func (e *Engine) PriceFacets(ctx context.Context) (facet.PriceSummary, error) {
	products, err := e.activeProducts(ctx)
	if err != nil {
		return facet.PriceSummary{}, err
	}
	if len(products) == 0 {
		return facet.PriceSummary{Buckets: []facet.PriceBucket{}}, nil
	}

	min, max, sum := products[0].Price, products[0].Price, 0.0
	for i := range products {
		p := products[i].Price
		sum += p
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
	}

	summary := facet.PriceSummary{
		Count:    len(products),
		MinPrice: min,
		AvgPrice: sum / float64(len(products)),
		MaxPrice: max,
	}

	if max <= min {
		// zero spread: one bucket holding the whole corpus
		summary.Buckets = []facet.PriceBucket{{
			Low: min, High: max, Count: len(products),
			Label: bucketLabel(min, max),
		}}
		return summary, nil
	}

	width := (max - min) / priceBucketCount
	buckets := make([]facet.PriceBucket, priceBucketCount)
	for i := range buckets {
		lo := min + float64(i)*width
		hi := lo + width
		if i == priceBucketCount-1 {
			hi = max
		}
		buckets[i] = facet.PriceBucket{Low: lo, High: hi, Label: bucketLabel(lo, hi)}
	}
	for i := range products {
		p := products[i].Price
		idx := int((p - min) / width)
		if idx >= priceBucketCount {
			idx = priceBucketCount - 1
		}
		buckets[idx].Count++
	}

	summary.Buckets = buckets
	return summary, nil
}

func bucketLabel(lo, hi float64) string {
	return fmt.Sprintf("%.2f - %.2f", lo, hi)
}
