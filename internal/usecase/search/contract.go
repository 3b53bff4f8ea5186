package search

import (
	"context"

	"github.com/merx-cloud/prodex/internal/domain"
	"github.com/merx-cloud/prodex/internal/domain/search/filter"
)

// CorpusProvider supplies the product snapshot the engine scores over.
type CorpusProvider interface {
	// FetchActive returns all active products. The hint carries the
	// request's structural filters so a provider may push them down, but
	// the engine re-applies every filter itself and accepts an unfiltered
	// snapshot.
	FetchActive(ctx context.Context, hint filter.Filters) ([]domain.ProductRecord, error)

	// Get returns one product by ID, or domain.ErrProductNotFound.
	Get(ctx context.Context, id string) (domain.ProductRecord, error)
}

// Tokenizer splits normalized text into searchable tokens.
type Tokenizer interface {
	Tokenize(s string) []string
}
