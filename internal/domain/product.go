package domain

import "strings"

// Product lifecycle statuses. Only active products are searchable.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// ProductRecord is a read-only snapshot of one catalog product. The engine
// never mutates a record; every search call works over an immutable slice
// of these supplied by the corpus provider.
type ProductRecord struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	Specification string  `json:"specification"`
	Price         float64 `json:"price"`
	Unit          string  `json:"unit"`
	Stock         int     `json:"stock"`
	MinStock      int     `json:"min_stock"`
	Description   string  `json:"description"`
	Keywords      string  `json:"keywords"` // comma-delimited
	Barcode       string  `json:"barcode"`
	StorageArea   string  `json:"storage_area"`
	Status        string  `json:"status"`
}

// IsActive reports whether the product is eligible for search.
func (p *ProductRecord) IsActive() bool {
	return p.Status == StatusActive
}

// KeywordList splits the comma-delimited keywords field into trimmed,
// non-empty entries. Both ASCII and fullwidth commas are accepted.
func (p *ProductRecord) KeywordList() []string {
	if p.Keywords == "" {
		return nil
	}
	raw := strings.FieldsFunc(p.Keywords, func(r rune) bool {
		return r == ',' || r == '，'
	})
	out := make([]string, 0, len(raw))
	for _, k := range raw {
		k = strings.TrimSpace(k)
		if k != "" {
			out = append(out, k)
		}
	}
	return out
}
