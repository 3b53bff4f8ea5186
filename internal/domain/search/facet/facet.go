// Package facet holds the aggregate breakdowns computed over the active
// corpus for UI refinement controls.
package facet

// CategoryBucket is the per-category aggregate: product count and the
// price spread within that category.
type CategoryBucket struct {
	Category string  `json:"category"`
	Count    int     `json:"count"`
	MinPrice float64 `json:"min_price"`
	AvgPrice float64 `json:"avg_price"`
	MaxPrice float64 `json:"max_price"`
}

// PriceBucket is one contiguous price interval. Lower bounds are
// inclusive; the upper bound is exclusive except on the last bucket, so
// boundary values are never double-counted.
type PriceBucket struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
	Label string  `json:"label"`
}

// PriceSummary is the global price aggregate plus equal-width buckets
// covering [MinPrice, MaxPrice] of the active corpus.
type PriceSummary struct {
	Count    int           `json:"count"`
	MinPrice float64       `json:"min_price"`
	AvgPrice float64       `json:"avg_price"`
	MaxPrice float64       `json:"max_price"`
	Buckets  []PriceBucket `json:"buckets"`
}
