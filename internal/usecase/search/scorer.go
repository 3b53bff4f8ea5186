package search

import (
	"math"
	"strings"

	"github.com/merx-cloud/prodex/internal/domain"
)

// Match-class score bands.
const (
	exactBand = 95
	fuzzyBand = 70
)

// Down-weighting factors for the non-exact match classes.
const (
	containsFactor = 0.8
	fuzzyFactor    = 0.7
	tokenFactor    = 0.6
)

// fieldValue returns the product's value for a searchable field.
func fieldValue(p *domain.ProductRecord, f Field) string {
	switch f {
	case FieldName:
		return p.Name
	case FieldBarcode:
		return p.Barcode
	case FieldKeywords:
		return p.Keywords
	case FieldDescription:
		return p.Description
	case FieldCategory:
		return p.Category
	case FieldSpecification:
		return p.Specification
	}
	return ""
}

// scoreField computes the 0-100 match score of a lowercased query against
// one field value. Rules are evaluated in precedence order and the first
// qualifying rule wins, so exact equality always dominates a saturated
// fuzzy ratio: near-duplicate names cannot outrank an exact hit.
func (e *Engine) scoreField(query string, queryTokens []string, value string, weight int) int {
	if value == "" {
		return 0
	}
	lv := strings.ToLower(value)

	if query == lv {
		return weight
	}

	if strings.Contains(lv, query) {
		return int(math.Round(float64(weight) * containsFactor))
	}

	if ratio := e.sim.PartialRatio(query, lv); ratio >= e.cfg.FuzzyThreshold {
		return int(math.Round(float64(weight) * float64(ratio) / 100 * fuzzyFactor))
	}

	if len(queryTokens) > 0 {
		fieldTokens := e.tok.Tokenize(lv)
		matched := 0
		for _, qt := range queryTokens {
			for _, ft := range fieldTokens {
				if strings.Contains(ft, qt) {
					matched++
					break
				}
			}
		}
		if matched > 0 {
			frac := float64(matched) / float64(len(queryTokens))
			return int(math.Round(float64(weight) * frac * tokenFactor))
		}
	}

	return 0
}

// scoreProduct aggregates per-field scores into one relevance score: the
// MAXIMUM across fields, not the sum. The score stays in [0,100] no matter
// how many fields match. The breakdown maps field names to their non-zero
// scores for explainability.
func (e *Engine) scoreProduct(query string, queryTokens []string, p *domain.ProductRecord) (int, map[string]int) {
	best := 0
	var breakdown map[string]int
	for _, fw := range e.cfg.Weights {
		s := e.scoreField(query, queryTokens, fieldValue(p, fw.Field), fw.Weight)
		if s == 0 {
			continue
		}
		if breakdown == nil {
			breakdown = make(map[string]int, len(e.cfg.Weights))
		}
		breakdown[string(fw.Field)] = s
		if s > best {
			best = s
		}
	}
	return best, breakdown
}
