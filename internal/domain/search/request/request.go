package request

import (
	"fmt"
	"unicode/utf8"

	"github.com/merx-cloud/prodex/internal/domain"
	"github.com/merx-cloud/prodex/internal/domain/search/filter"
	"github.com/merx-cloud/prodex/internal/domain/search/sortmode"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed query length in runes.
	MaxQueryLength  = 512
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Request is a validated search query. Page and page size are clamped on
// construction so the engine never produces unbounded payloads.
type Request struct {
	query    string
	filters  filter.Filters
	sortBy   sortmode.Mode
	page     int
	pageSize int
}

// New validates and normalizes search parameters.
// Defaults: sort=relevance, page=1, pageSize=DefaultPageSize. maxPageSize
// caps the page size server-side (0 means MaxPageSize). The query may be
// empty: structural filters still apply and every surviving candidate
// scores 100.
func New(
	query string,
	filters filter.Filters,
	sortBy sortmode.Mode,
	page, pageSize, maxPageSize int,
) (Request, error) {
	if utf8.RuneCountInString(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("%w: query too long (max %d chars)",
			domain.ErrInvalidArgument, MaxQueryLength)
	}
	if sortBy == "" {
		sortBy = sortmode.Relevance
	}
	if !sortBy.IsValid() {
		return Request{}, fmt.Errorf("%w: unknown sort mode %q", domain.ErrInvalidArgument, sortBy)
	}
	if maxPageSize <= 0 {
		maxPageSize = MaxPageSize
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	return Request{
		query:    query,
		filters:  filters,
		sortBy:   sortBy,
		page:     page,
		pageSize: pageSize,
	}, nil
}

// Query returns the raw query text (not yet normalized).
func (r *Request) Query() string { return r.query }

// Filters returns the structural constraints.
func (r *Request) Filters() filter.Filters { return r.filters }

// SortBy returns the result ordering strategy.
func (r *Request) SortBy() sortmode.Mode { return r.sortBy }

// Page returns the 1-based page number.
func (r *Request) Page() int { return r.page }

// PageSize returns the clamped page size.
func (r *Request) PageSize() int { return r.pageSize }
