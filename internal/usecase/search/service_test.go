package search

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/merx-cloud/prodex/internal/domain"
	"github.com/merx-cloud/prodex/internal/domain/search/filter"
	"github.com/merx-cloud/prodex/internal/domain/search/request"
	"github.com/merx-cloud/prodex/internal/domain/search/sortmode"
	"github.com/merx-cloud/prodex/internal/text"
)

// --- Mocks ---

type mockCorpus struct {
	products []domain.ProductRecord
	fetchErr error
}

func (m *mockCorpus) FetchActive(_ context.Context, _ filter.Filters) ([]domain.ProductRecord, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	// fresh copy per call: the engine filters its snapshot in place
	out := make([]domain.ProductRecord, len(m.products))
	copy(out, m.products)
	return out, nil
}

func (m *mockCorpus) Get(_ context.Context, id string) (domain.ProductRecord, error) {
	for _, p := range m.products {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.ProductRecord{}, domain.ErrProductNotFound
}

func fruitCorpus() *mockCorpus {
	return &mockCorpus{products: []domain.ProductRecord{
		{ID: "1", Name: "苹果", Category: "水果", Price: 8.5, Stock: 100,
			Keywords: "水果,新鲜", StorageArea: "A区", Status: domain.StatusActive},
		{ID: "2", Name: "苹果汁", Category: "饮料", Price: 6.0, Stock: 40,
			Keywords: "饮料,果汁", StorageArea: "B区", Status: domain.StatusActive},
		{ID: "3", Name: "香蕉", Category: "水果", Price: 3.2, Stock: 80,
			Keywords: "水果,热带", StorageArea: "A区", Status: domain.StatusActive},
		{ID: "4", Name: "梨", Category: "水果", Price: 12.0, Stock: 5,
			Keywords: "水果", StorageArea: "A区", Status: domain.StatusActive},
		{ID: "5", Name: "苹果醋", Category: "饮料", Price: 15.0, Stock: 20,
			Keywords: "饮料", StorageArea: "B区", Status: domain.StatusInactive},
	}}
}

func newTestEngine(t *testing.T, corpus CorpusProvider) *Engine {
	t.Helper()
	return New(corpus, text.NewTokenizer(zap.NewNop()), text.LevenshteinSimilarity{}, Config{}, zap.NewNop())
}

func newSearchRequest(t *testing.T, query string, f filter.Filters, mode sortmode.Mode, page, size int) *request.Request {
	t.Helper()
	req, err := request.New(query, f, mode, page, size, 0)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return &req
}

func floatPtr(f float64) *float64 { return &f }

func mustRange(t *testing.T, min, max *float64) *filter.Range {
	t.Helper()
	r, err := filter.NewRange(min, max)
	if err != nil {
		t.Fatalf("filter.NewRange: %v", err)
	}
	return &r
}

// --- Search ---

// Exact name hit ranks first with score 100; a substring hit follows with
// a strictly lower score.
func TestSearch_ExactBeforeSubstring(t *testing.T) {
	e := newTestEngine(t, fruitCorpus())
	req := newSearchRequest(t, "苹果", filter.Filters{}, sortmode.Relevance, 1, 20)

	page, err := e.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(page.Items) < 2 {
		t.Fatalf("got %d items, want at least 2", len(page.Items))
	}
	if page.Items[0].Product.Name != "苹果" || page.Items[0].Score != 100 {
		t.Errorf("first item = %s score %d, want 苹果 score 100",
			page.Items[0].Product.Name, page.Items[0].Score)
	}
	if page.Items[1].Product.Name != "苹果汁" {
		t.Errorf("second item = %s, want 苹果汁", page.Items[1].Product.Name)
	}
	if page.Items[1].Score > 80 {
		t.Errorf("substring hit score = %d, want <= 80", page.Items[1].Score)
	}
	// the inactive 苹果醋 must not appear
	for _, it := range page.Items {
		if it.Product.ID == "5" {
			t.Error("inactive product leaked into results")
		}
	}
}

// Normalization must keep non-ASCII letters, so a query equal to an
// accented product name still scores 100 as an exact hit.
func TestSearch_AccentedNameExactMatch(t *testing.T) {
	corpus := &mockCorpus{products: []domain.ProductRecord{
		{ID: "1", Name: "café", Category: "饮料", Price: 22.0, Stock: 10,
			Status: domain.StatusActive},
		{ID: "2", Name: "caffe latte", Category: "饮料", Price: 25.0, Stock: 10,
			Status: domain.StatusActive},
	}}
	e := newTestEngine(t, corpus)
	req := newSearchRequest(t, "café", filter.Filters{}, sortmode.Relevance, 1, 20)

	page, err := e.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(page.Items) == 0 {
		t.Fatal("got no items, want café ranked first")
	}
	if page.Items[0].Product.ID != "1" || page.Items[0].Score != 100 {
		t.Errorf("first item = %s score %d, want café score 100",
			page.Items[0].Product.Name, page.Items[0].Score)
	}
	if page.ExactMatches != 1 {
		t.Errorf("ExactMatches = %d, want 1", page.ExactMatches)
	}
}

// Empty query keeps filter-only browsing: every surviving candidate scores
// 100 and the requested field sort applies.
func TestSearch_EmptyQueryFilterBrowse(t *testing.T) {
	e := newTestEngine(t, fruitCorpus())
	f := filter.New("水果", "", nil, nil)
	req := newSearchRequest(t, "", f, sortmode.PriceAsc, 1, 20)

	page, err := e.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	wantOrder := []string{"香蕉", "苹果", "梨"}
	if len(page.Items) != len(wantOrder) {
		t.Fatalf("got %d items, want %d", len(page.Items), len(wantOrder))
	}
	for i, want := range wantOrder {
		if page.Items[i].Product.Name != want {
			t.Errorf("item[%d] = %s, want %s", i, page.Items[i].Product.Name, want)
		}
		if page.Items[i].Score != 100 {
			t.Errorf("item[%d] score = %d, want 100", i, page.Items[i].Score)
		}
	}
}

func TestSearch_PriceLowerBoundOnly(t *testing.T) {
	e := newTestEngine(t, fruitCorpus())
	f := filter.New("", "", mustRange(t, floatPtr(10.0), nil), nil)
	req := newSearchRequest(t, "", f, sortmode.Relevance, 1, 20)

	page, err := e.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(page.Items) == 0 {
		t.Fatal("expected matches with price >= 10")
	}
	for _, it := range page.Items {
		if it.Product.Price < 10.0 {
			t.Errorf("item %s price %.2f violates lower bound", it.Product.Name, it.Product.Price)
		}
	}
}

func TestSearch_StructuralFilters(t *testing.T) {
	e := newTestEngine(t, fruitCorpus())

	tests := []struct {
		name    string
		filters filter.Filters
		wantIDs []string
	}{
		{"storage area", filter.New("", "B区", nil, nil), []string{"2"}},
		{"category and storage", filter.New("水果", "A区", nil, nil), []string{"1", "3", "4"}},
		{"stock range", filter.New("", "", nil, mustRange(t, floatPtr(50), floatPtr(150))), []string{"1", "3"}},
		{"price range both bounds", filter.New("", "", mustRange(t, floatPtr(3.0), floatPtr(7.0)), nil), []string{"2", "3"}},
		{"no match", filter.New("海鲜", "", nil, nil), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newSearchRequest(t, "", tt.filters, sortmode.Relevance, 1, 20)
			page, err := e.Search(context.Background(), req)
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			var ids []string
			for _, it := range page.Items {
				ids = append(ids, it.Product.ID)
			}
			if !reflect.DeepEqual(ids, tt.wantIDs) {
				t.Errorf("ids = %v, want %v", ids, tt.wantIDs)
			}
			if page.Total != len(tt.wantIDs) {
				t.Errorf("total = %d, want %d", page.Total, len(tt.wantIDs))
			}
		})
	}
}

// A product with no field match at all is excluded from results even
// though it passed the structural filters.
func TestSearch_ZeroScoreExcluded(t *testing.T) {
	e := newTestEngine(t, fruitCorpus())
	req := newSearchRequest(t, "电视机", filter.Filters{}, sortmode.Relevance, 1, 20)

	page, err := e.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if page.Total != 0 || len(page.Items) != 0 {
		t.Errorf("total = %d items = %d, want empty result", page.Total, len(page.Items))
	}
}

func TestSearch_Pagination(t *testing.T) {
	corpus := &mockCorpus{}
	for i := 1; i <= 45; i++ {
		corpus.products = append(corpus.products, domain.ProductRecord{
			ID:     fmt.Sprintf("p%02d", i),
			Name:   fmt.Sprintf("商品%02d", i),
			Price:  float64(i),
			Status: domain.StatusActive,
		})
	}
	e := newTestEngine(t, corpus)

	req := newSearchRequest(t, "", filter.Filters{}, sortmode.Relevance, 3, 20)
	page, err := e.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if page.Total != 45 {
		t.Errorf("total = %d, want 45", page.Total)
	}
	if len(page.Items) != 5 {
		t.Errorf("items = %d, want 5 (items 41-45)", len(page.Items))
	}
	if page.PageCount != 3 {
		t.Errorf("page count = %d, want 3", page.PageCount)
	}
	if page.Items[0].Product.ID != "p41" {
		t.Errorf("first item on page 3 = %s, want p41", page.Items[0].Product.ID)
	}

	// page past the end: empty items, total intact
	req = newSearchRequest(t, "", filter.Filters{}, sortmode.Relevance, 9, 20)
	page, err = e.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(page.Items) != 0 || page.Total != 45 {
		t.Errorf("past-end page: items = %d total = %d, want 0 and 45", len(page.Items), page.Total)
	}
}

func TestSearch_PaginationInvariant(t *testing.T) {
	e := newTestEngine(t, fruitCorpus())
	for page := 1; page <= 4; page++ {
		for _, size := range []int{1, 2, 3, 10} {
			req := newSearchRequest(t, "", filter.Filters{}, sortmode.Relevance, page, size)
			res, err := e.Search(context.Background(), req)
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			want := res.Total - (page-1)*size
			if want < 0 {
				want = 0
			}
			if want > size {
				want = size
			}
			if len(res.Items) != want {
				t.Errorf("page=%d size=%d: items = %d, want %d", page, size, len(res.Items), want)
			}
		}
	}
}

func TestSearch_SortModes(t *testing.T) {
	e := newTestEngine(t, fruitCorpus())

	tests := []struct {
		mode      sortmode.Mode
		wantFirst string
		wantLast  string
	}{
		{sortmode.PriceAsc, "3", "4"},
		{sortmode.PriceDesc, "4", "3"},
		{sortmode.StockAsc, "4", "1"},
		{sortmode.StockDesc, "1", "4"},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			req := newSearchRequest(t, "", filter.Filters{}, tt.mode, 1, 20)
			page, err := e.Search(context.Background(), req)
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			if len(page.Items) == 0 {
				t.Fatal("no items")
			}
			first := page.Items[0].Product.ID
			last := page.Items[len(page.Items)-1].Product.ID
			if first != tt.wantFirst || last != tt.wantLast {
				t.Errorf("order first=%s last=%s, want first=%s last=%s",
					first, last, tt.wantFirst, tt.wantLast)
			}
		})
	}
}

// Relevance ties preserve corpus order (stable sort).
func TestSearch_StableTieBreak(t *testing.T) {
	corpus := &mockCorpus{products: []domain.ProductRecord{
		{ID: "a", Name: "绿茶", Price: 5, Status: domain.StatusActive},
		{ID: "b", Name: "红茶", Price: 4, Status: domain.StatusActive},
		{ID: "c", Name: "白茶", Price: 3, Status: domain.StatusActive},
	}}
	e := newTestEngine(t, corpus)
	req := newSearchRequest(t, "", filter.Filters{}, sortmode.Relevance, 1, 20)

	page, err := e.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	wantOrder := []string{"a", "b", "c"}
	for i, want := range wantOrder {
		if page.Items[i].Product.ID != want {
			t.Errorf("item[%d] = %s, want %s (corpus order on ties)", i, page.Items[i].Product.ID, want)
		}
	}
}

func TestSearch_MatchClassCounts(t *testing.T) {
	e := newTestEngine(t, fruitCorpus())
	req := newSearchRequest(t, "苹果", filter.Filters{}, sortmode.Relevance, 1, 1)

	page, err := e.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	// counts cover the entire filtered set, not just the single-item page
	if page.ExactMatches != 1 {
		t.Errorf("exact = %d, want 1 (苹果 at 100)", page.ExactMatches)
	}
	if page.FuzzyMatches != 1 {
		t.Errorf("fuzzy = %d, want 1 (苹果汁 at 80)", page.FuzzyMatches)
	}
	if got := page.ExactMatches + page.FuzzyMatches + page.PartialMatches; got != page.Total {
		t.Errorf("class counts sum to %d, want total %d", got, page.Total)
	}
}

func TestSearch_ScoreBounds(t *testing.T) {
	e := newTestEngine(t, fruitCorpus())
	for _, q := range []string{"", "苹果", "水果", "汁", "fresh"} {
		req := newSearchRequest(t, q, filter.Filters{}, sortmode.Relevance, 1, 100)
		page, err := e.Search(context.Background(), req)
		if err != nil {
			t.Fatalf("Search(%q): %v", q, err)
		}
		for _, it := range page.Items {
			if it.Score < 0 || it.Score > 100 {
				t.Errorf("query %q: score %d out of [0,100]", q, it.Score)
			}
		}
	}
}

// Identical input against a fixed snapshot yields identical output.
func TestSearch_Deterministic(t *testing.T) {
	e := newTestEngine(t, fruitCorpus())
	req := newSearchRequest(t, "苹果", filter.Filters{}, sortmode.Relevance, 1, 20)

	first, err := e.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	second, err := e.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("identical searches returned different results")
	}
}

func TestSearch_EmptyCorpus(t *testing.T) {
	e := newTestEngine(t, &mockCorpus{})
	req := newSearchRequest(t, "苹果", filter.Filters{}, sortmode.Relevance, 1, 20)

	page, err := e.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("Search on empty corpus: %v", err)
	}
	if page.Total != 0 || len(page.Items) != 0 {
		t.Errorf("total = %d items = %d, want empty page", page.Total, len(page.Items))
	}
}

func TestSearch_CorpusError(t *testing.T) {
	wantErr := errors.New("store unavailable")
	e := newTestEngine(t, &mockCorpus{fetchErr: wantErr})
	req := newSearchRequest(t, "苹果", filter.Filters{}, sortmode.Relevance, 1, 20)

	_, err := e.Search(context.Background(), req)
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want wrapped %v", err, wantErr)
	}
}
