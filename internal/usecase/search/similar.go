package search

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/merx-cloud/prodex/internal/domain"
	"github.com/merx-cloud/prodex/internal/domain/search/result"
)

// Similarity score composition.
const (
	sameCategoryPoints = 40.0
	pricePoints        = 20.0
	nameRatioFactor    = 0.3
	keywordRatioFactor = 0.2
)

// Similar scores pairwise similarity between the target product and the
// rest of the active corpus for "related items" queries. The candidate
// pool is every active product other than the target that shares its
// category or has keyword overlap with it. Scores are additive (category,
// price proximity, name ratio, keyword ratio), capped at 100; results
// under the minimum similarity threshold are discarded.
//
// Returns domain.ErrProductNotFound when the target does not exist. An
// empty result is not an error.
func (e *Engine) Similar(ctx context.Context, targetID string, limit int) ([]result.Similarity, error) {
	if limit <= 0 {
		limit = DefaultSimilarLimit
	}

	target, err := e.corpus.Get(ctx, targetID)
	if err != nil {
		return nil, err
	}

	products, err := e.activeProducts(ctx)
	if err != nil {
		return nil, err
	}

	targetKeywords := lowerAll(target.KeywordList())

	results := make([]result.Similarity, 0, len(products))
	for i := range products {
		p := &products[i]
		if p.ID == target.ID {
			continue
		}
		sameCategory := target.Category != "" && p.Category == target.Category
		if !sameCategory && !keywordOverlap(targetKeywords, p) {
			continue
		}

		score := e.similarityScore(&target, p, sameCategory)
		if score < e.cfg.SimilarityMinScore {
			continue
		}
		results = append(results, result.Similarity{Product: *p, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// similarityScore composes the additive similarity of two products.
func (e *Engine) similarityScore(a, b *domain.ProductRecord, sameCategory bool) int {
	score := 0.0
	if sameCategory {
		score += sameCategoryPoints
	}
	if a.Price > 0 && b.Price > 0 {
		maxPrice := math.Max(a.Price, b.Price)
		score += pricePoints * (1 - math.Abs(a.Price-b.Price)/maxPrice)
	}
	score += nameRatioFactor * float64(e.sim.Ratio(strings.ToLower(a.Name), strings.ToLower(b.Name)))
	if a.Keywords != "" && b.Keywords != "" {
		score += keywordRatioFactor * float64(e.sim.TokenSetRatio(
			strings.ToLower(a.Keywords), strings.ToLower(b.Keywords)))
	}

	s := int(math.Round(score))
	if s > 100 {
		s = 100
	}
	return s
}

// keywordOverlap reports whether any keyword of one product appears as a
// substring of the other's keyword string, case-insensitively.
func keywordOverlap(targetKeywords []string, p *domain.ProductRecord) bool {
	if len(targetKeywords) == 0 || p.Keywords == "" {
		return false
	}
	candidate := strings.ToLower(p.Keywords)
	for _, kw := range targetKeywords {
		if strings.Contains(candidate, kw) {
			return true
		}
	}
	return false
}

func lowerAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.ToLower(s)
	}
	return out
}
