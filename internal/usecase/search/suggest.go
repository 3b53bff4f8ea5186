package search

import (
	"context"
	"sort"
	"strings"
)

// minSuggestBytes is the minimum trimmed prefix length, in bytes. A single
// CJK ideograph (3 bytes) qualifies; a single Latin letter does not.
const minSuggestBytes = 2

// Suggest returns fuzzy-matched completion candidates for a partial query.
// The vocabulary is built from product names, split keywords, and
// categories of the active corpus; candidates scoring at least the
// suggestion threshold are deduplicated, sorted by descending score (term
// order breaking ties for determinism), and truncated to limit.
func (e *Engine) Suggest(ctx context.Context, partial string, limit int) ([]string, error) {
	q := strings.TrimSpace(partial)
	if len(q) < minSuggestBytes {
		return []string{}, nil
	}
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}

	products, err := e.activeProducts(ctx)
	if err != nil {
		return nil, err
	}

	vocab := make([]string, 0, len(products)*2)
	seen := make(map[string]struct{}, len(products)*2)
	add := func(term string) {
		term = strings.TrimSpace(term)
		if term == "" {
			return
		}
		if _, dup := seen[term]; dup {
			return
		}
		seen[term] = struct{}{}
		vocab = append(vocab, term)
	}
	for i := range products {
		add(products[i].Name)
		for _, kw := range products[i].KeywordList() {
			add(kw)
		}
		add(products[i].Category)
	}

	type scoredTerm struct {
		term  string
		score int
	}
	lq := strings.ToLower(q)
	matches := make([]scoredTerm, 0, len(vocab))
	for _, term := range vocab {
		score := e.sim.PartialRatio(lq, strings.ToLower(term))
		if score >= e.cfg.SuggestMinScore {
			matches = append(matches, scoredTerm{term, score})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].term < matches[j].term
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.term
	}
	return out, nil
}
