// Package result holds the plain, serializable structures a search call
// returns. Everything here is constructed per call and discarded after the
// response is written; nothing persists across calls.
package result

import "github.com/merx-cloud/prodex/internal/domain"

// Candidate is a scored product: the record, its relevance score in
// [0,100], and the per-field breakdown that produced it (field name to
// score, non-zero fields only) for explainability.
type Candidate struct {
	Product     domain.ProductRecord `json:"product"`
	Score       int                  `json:"score"`
	FieldScores map[string]int       `json:"field_scores,omitempty"`
}

// Page is one page of ranked search results plus the match-class summary
// computed over the entire filtered set, not just this slice.
type Page struct {
	Items     []Candidate `json:"items"`
	Total     int         `json:"total"`
	Page      int         `json:"page"`
	PageSize  int         `json:"page_size"`
	PageCount int         `json:"page_count"`
	// Match-class counts: exact is score>=95, fuzzy is 70..94, partial <70.
	ExactMatches   int `json:"exact_matches"`
	FuzzyMatches   int `json:"fuzzy_matches"`
	PartialMatches int `json:"partial_matches"`
}

// NewPage assembles a page, deriving the page count from total and size.
func NewPage(items []Candidate, total, page, pageSize, exact, fuzzy, partial int) Page {
	pageCount := 0
	if pageSize > 0 {
		pageCount = (total + pageSize - 1) / pageSize
	}
	if items == nil {
		items = []Candidate{}
	}
	return Page{
		Items:          items,
		Total:          total,
		Page:           page,
		PageSize:       pageSize,
		PageCount:      pageCount,
		ExactMatches:   exact,
		FuzzyMatches:   fuzzy,
		PartialMatches: partial,
	}
}

// Similarity is a related-items hit: a product and its similarity score to
// the target, in [0,100].
type Similarity struct {
	Product domain.ProductRecord `json:"product"`
	Score   int                  `json:"score"`
}
