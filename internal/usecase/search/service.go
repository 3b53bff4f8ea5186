// Package search implements the product search and relevance ranking
// engine: weighted multi-field scoring, structural filtering, sorting and
// pagination, facet aggregation, related-item similarity, and query
// completion. Every entry point is a pure function of the corpus snapshot
// and its arguments, so concurrent calls need no coordination and results
// are safe to memoize externally.
package search

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/merx-cloud/prodex/internal/domain"
	"github.com/merx-cloud/prodex/internal/domain/search/filter"
	"github.com/merx-cloud/prodex/internal/domain/search/request"
	"github.com/merx-cloud/prodex/internal/domain/search/result"
	"github.com/merx-cloud/prodex/internal/domain/search/sortmode"
	"github.com/merx-cloud/prodex/internal/text"
)

// Engine ranks products against free-text queries and structural filters.
// It holds no cross-call state.
type Engine struct {
	corpus CorpusProvider
	tok    Tokenizer
	sim    text.StringSimilarity
	cfg    Config
	logger *zap.Logger
}

// New creates a search engine. Unset config fields get defaults.
func New(
	corpus CorpusProvider,
	tok Tokenizer,
	sim text.StringSimilarity,
	cfg Config,
	logger *zap.Logger,
) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		corpus: corpus,
		tok:    tok,
		sim:    sim,
		cfg:    cfg.withDefaults(),
		logger: logger,
	}
}

// Search executes a ranked, paginated product search.
//
// An empty (or whitespace/punctuation-only) query disables text scoring:
// structural filters still apply and every surviving candidate scores 100,
// preserving filter-only browsing. With a non-empty query, candidates
// scoring zero are dropped entirely: a product with no field match does
// not appear even if it passed the structural filters.
func (e *Engine) Search(ctx context.Context, req *request.Request) (result.Page, error) {
	products, err := e.corpus.FetchActive(ctx, req.Filters())
	if err != nil {
		return result.Page{}, fmt.Errorf("fetch active products: %w", err)
	}

	query := strings.ToLower(text.NormalizeQuery(req.Query()))

	var queryTokens []string
	if query != "" {
		queryTokens = e.tok.Tokenize(query)
	}

	scored := make([]result.Candidate, 0, len(products))
	for i := range products {
		p := &products[i]
		if !p.IsActive() || !req.Filters().Matches(p) {
			continue
		}
		if query == "" {
			scored = append(scored, result.Candidate{Product: *p, Score: 100})
			continue
		}
		s, breakdown := e.scoreProduct(query, queryTokens, p)
		if s == 0 {
			continue
		}
		scored = append(scored, result.Candidate{Product: *p, Score: s, FieldScores: breakdown})
	}

	sortCandidates(scored, req.SortBy())

	var exact, fuzzy, partial int
	for _, c := range scored {
		switch {
		case c.Score >= exactBand:
			exact++
		case c.Score >= fuzzyBand:
			fuzzy++
		default:
			partial++
		}
	}

	total := len(scored)
	start := (req.Page() - 1) * req.PageSize()
	if start > total {
		start = total
	}
	end := start + req.PageSize()
	if end > total {
		end = total
	}

	return result.NewPage(scored[start:end], total, req.Page(), req.PageSize(), exact, fuzzy, partial), nil
}

// sortCandidates orders the scored set in place. All sorts are stable so
// equal keys preserve corpus order, keeping results byte-identical for a
// fixed snapshot.
func sortCandidates(cs []result.Candidate, mode sortmode.Mode) {
	var less func(a, b *result.Candidate) bool
	switch mode {
	case sortmode.PriceAsc:
		less = func(a, b *result.Candidate) bool { return a.Product.Price < b.Product.Price }
	case sortmode.PriceDesc:
		less = func(a, b *result.Candidate) bool { return a.Product.Price > b.Product.Price }
	case sortmode.StockAsc:
		less = func(a, b *result.Candidate) bool { return a.Product.Stock < b.Product.Stock }
	case sortmode.StockDesc:
		less = func(a, b *result.Candidate) bool { return a.Product.Stock > b.Product.Stock }
	case sortmode.Name:
		less = func(a, b *result.Candidate) bool { return a.Product.Name < b.Product.Name }
	default: // relevance
		less = func(a, b *result.Candidate) bool { return a.Score > b.Score }
	}
	sort.SliceStable(cs, func(i, j int) bool { return less(&cs[i], &cs[j]) })
}

// activeProducts fetches the corpus and keeps only active records.
func (e *Engine) activeProducts(ctx context.Context) ([]domain.ProductRecord, error) {
	products, err := e.corpus.FetchActive(ctx, filter.Filters{})
	if err != nil {
		return nil, fmt.Errorf("fetch active products: %w", err)
	}
	active := products[:0]
	for _, p := range products {
		if p.IsActive() {
			active = append(active, p)
		}
	}
	return active, nil
}
