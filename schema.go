package prodex

import (
	"github.com/merx-cloud/prodex/internal/domain"
	"github.com/merx-cloud/prodex/internal/domain/search/result"
	"github.com/merx-cloud/prodex/internal/domain/search/sortmode"
)

// Sentinel errors callers can match with errors.Is.
var (
	// ErrProductNotFound signals an unknown product ID.
	ErrProductNotFound = domain.ErrProductNotFound
	// ErrInvalidArgument signals a rejected query parameter.
	ErrInvalidArgument = domain.ErrInvalidArgument
)

// SortMode orders search results.
type SortMode string

// Supported sort modes.
const (
	SortRelevance SortMode = SortMode(sortmode.Relevance)
	SortPriceAsc  SortMode = SortMode(sortmode.PriceAsc)
	SortPriceDesc SortMode = SortMode(sortmode.PriceDesc)
	SortStockAsc  SortMode = SortMode(sortmode.StockAsc)
	SortStockDesc SortMode = SortMode(sortmode.StockDesc)
	SortName      SortMode = SortMode(sortmode.Name)
)

// Product statuses.
const (
	StatusActive   = domain.StatusActive
	StatusInactive = domain.StatusInactive
)

// Product is a catalog record. Keywords is comma-delimited (ASCII or
// full-width commas). An empty Status defaults to active on write.
type Product struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	Specification string  `json:"specification"`
	Price         float64 `json:"price"`
	Unit          string  `json:"unit"`
	Stock         int     `json:"stock"`
	MinStock      int     `json:"min_stock"`
	Description   string  `json:"description"`
	Keywords      string  `json:"keywords"`
	Barcode       string  `json:"barcode"`
	StorageArea   string  `json:"storage_area"`
	Status        string  `json:"status"`
}

// Hit is one ranked search result.
type Hit struct {
	Product Product `json:"product"`
	// Score is the relevance score in [0,100].
	Score int `json:"score"`
	// FieldScores is the per-field breakdown (non-zero fields only).
	FieldScores map[string]int `json:"field_scores,omitempty"`
}

// ResultPage is one page of ranked results plus match-class counts over
// the whole filtered set.
type ResultPage struct {
	Items          []Hit `json:"items"`
	Total          int   `json:"total"`
	Page           int   `json:"page"`
	PageSize       int   `json:"page_size"`
	PageCount      int   `json:"page_count"`
	ExactMatches   int   `json:"exact_matches"`
	FuzzyMatches   int   `json:"fuzzy_matches"`
	PartialMatches int   `json:"partial_matches"`
}

// SimilarHit is a related product and its similarity score in [0,100].
type SimilarHit struct {
	Product Product `json:"product"`
	Score   int     `json:"score"`
}

// CategoryFacet aggregates one category over the active catalog.
type CategoryFacet struct {
	Category string  `json:"category"`
	Count    int     `json:"count"`
	MinPrice float64 `json:"min_price"`
	AvgPrice float64 `json:"avg_price"`
	MaxPrice float64 `json:"max_price"`
}

// PriceBucket is one interval of the price histogram.
type PriceBucket struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
	Label string  `json:"label"`
}

// PriceFacets is the price histogram over the active catalog.
type PriceFacets struct {
	Count    int           `json:"count"`
	MinPrice float64       `json:"min_price"`
	AvgPrice float64       `json:"avg_price"`
	MaxPrice float64       `json:"max_price"`
	Buckets  []PriceBucket `json:"buckets"`
}

func (p Product) toDomain() domain.ProductRecord {
	status := p.Status
	if status == "" {
		status = domain.StatusActive
	}
	return domain.ProductRecord{
		ID:            p.ID,
		Name:          p.Name,
		Category:      p.Category,
		Specification: p.Specification,
		Price:         p.Price,
		Unit:          p.Unit,
		Stock:         p.Stock,
		MinStock:      p.MinStock,
		Description:   p.Description,
		Keywords:      p.Keywords,
		Barcode:       p.Barcode,
		StorageArea:   p.StorageArea,
		Status:        status,
	}
}

func fromDomain(r domain.ProductRecord) Product {
	return Product{
		ID:            r.ID,
		Name:          r.Name,
		Category:      r.Category,
		Specification: r.Specification,
		Price:         r.Price,
		Unit:          r.Unit,
		Stock:         r.Stock,
		MinStock:      r.MinStock,
		Description:   r.Description,
		Keywords:      r.Keywords,
		Barcode:       r.Barcode,
		StorageArea:   r.StorageArea,
		Status:        r.Status,
	}
}

func fromPage(p result.Page) ResultPage {
	items := make([]Hit, len(p.Items))
	for i, c := range p.Items {
		items[i] = Hit{
			Product:     fromDomain(c.Product),
			Score:       c.Score,
			FieldScores: c.FieldScores,
		}
	}
	return ResultPage{
		Items:          items,
		Total:          p.Total,
		Page:           p.Page,
		PageSize:       p.PageSize,
		PageCount:      p.PageCount,
		ExactMatches:   p.ExactMatches,
		FuzzyMatches:   p.FuzzyMatches,
		PartialMatches: p.PartialMatches,
	}
}
