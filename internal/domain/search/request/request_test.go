package request

import (
	"errors"
	"strings"
	"testing"

	"github.com/merx-cloud/prodex/internal/domain"
	"github.com/merx-cloud/prodex/internal/domain/search/filter"
	"github.com/merx-cloud/prodex/internal/domain/search/sortmode"
)

func TestNew_Defaults(t *testing.T) {
	r, err := New("苹果", filter.Filters{}, "", 0, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.SortBy() != sortmode.Relevance {
		t.Errorf("sort = %s, want relevance default", r.SortBy())
	}
	if r.Page() != 1 {
		t.Errorf("page = %d, want 1", r.Page())
	}
	if r.PageSize() != DefaultPageSize {
		t.Errorf("pageSize = %d, want %d", r.PageSize(), DefaultPageSize)
	}
}

func TestNew_EmptyQueryAllowed(t *testing.T) {
	r, err := New("", filter.Filters{}, sortmode.PriceAsc, 1, 20, 0)
	if err != nil {
		t.Fatalf("empty query must be allowed (filter-only browsing): %v", err)
	}
	if r.Query() != "" {
		t.Errorf("query = %q, want empty", r.Query())
	}
}

func TestNew_Clamping(t *testing.T) {
	tests := []struct {
		name               string
		page, size, max    int
		wantPage, wantSize int
	}{
		{"negative page", -3, 20, 0, 1, 20},
		{"zero page", 0, 20, 0, 1, 20},
		{"zero size", 1, 0, 0, 1, DefaultPageSize},
		{"size over max", 1, 500, 0, 1, MaxPageSize},
		{"size over custom max", 1, 80, 50, 1, 50},
		{"size within custom max", 1, 30, 50, 1, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New("q", filter.Filters{}, sortmode.Relevance, tt.page, tt.size, tt.max)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if r.Page() != tt.wantPage {
				t.Errorf("page = %d, want %d", r.Page(), tt.wantPage)
			}
			if r.PageSize() != tt.wantSize {
				t.Errorf("pageSize = %d, want %d", r.PageSize(), tt.wantSize)
			}
		})
	}
}

func TestNew_InvalidSortMode(t *testing.T) {
	_, err := New("q", filter.Filters{}, "popularity", 1, 20, 0)
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestNew_QueryTooLong(t *testing.T) {
	_, err := New(strings.Repeat("苹", MaxQueryLength+1), filter.Filters{}, sortmode.Relevance, 1, 20, 0)
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}
