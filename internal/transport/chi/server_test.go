package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/merx-cloud/prodex/internal/domain"
	"github.com/merx-cloud/prodex/internal/domain/search/facet"
	"github.com/merx-cloud/prodex/internal/domain/search/request"
	"github.com/merx-cloud/prodex/internal/domain/search/result"
	healthuc "github.com/merx-cloud/prodex/internal/usecase/health"
)

// --- Mocks ---

type stubSearch struct {
	lastRequest *request.Request
	page        result.Page
	similar     []result.Similarity
	suggestions []string
	err         error
}

func (s *stubSearch) Search(_ context.Context, req *request.Request) (result.Page, error) {
	s.lastRequest = req
	return s.page, s.err
}

func (s *stubSearch) Similar(_ context.Context, _ string, _ int) ([]result.Similarity, error) {
	return s.similar, s.err
}

func (s *stubSearch) Suggest(_ context.Context, _ string, _ int) ([]string, error) {
	return s.suggestions, s.err
}

func (s *stubSearch) CategoryFacets(_ context.Context) ([]facet.CategoryBucket, error) {
	return []facet.CategoryBucket{{Category: "水果", Count: 3}}, s.err
}

func (s *stubSearch) PriceFacets(_ context.Context) (facet.PriceSummary, error) {
	return facet.PriceSummary{Count: 3, MinPrice: 3.2, MaxPrice: 12}, s.err
}

type stubCatalog struct {
	products map[string]domain.ProductRecord
	upserted *domain.ProductRecord
	deleted  string
}

func (c *stubCatalog) Get(_ context.Context, id string) (domain.ProductRecord, error) {
	p, ok := c.products[id]
	if !ok {
		return domain.ProductRecord{}, domain.ErrProductNotFound
	}
	return p, nil
}

func (c *stubCatalog) Upsert(_ context.Context, p *domain.ProductRecord) error {
	c.upserted = p
	return nil
}

func (c *stubCatalog) Delete(_ context.Context, id string) error {
	c.deleted = id
	return nil
}

type stubInvalidator struct {
	calls int
}

func (i *stubInvalidator) Invalidate(_ context.Context) error {
	i.calls++
	return nil
}

type stubPinger struct {
	err error
}

func (p *stubPinger) Ping(_ context.Context) error { return p.err }

func newTestServer(search *stubSearch, catalog *stubCatalog, pingErr error) (*Server, *stubInvalidator) {
	inv := &stubInvalidator{}
	s := NewServer(
		search,
		catalog,
		inv,
		healthuc.New(&stubPinger{err: pingErr}, nil),
		Limits{},
		zap.NewNop(),
	)
	return s, inv
}

func doRequest(t *testing.T, handler http.Handler, method, target string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

// --- Tests ---

func TestSearchEndpoint(t *testing.T) {
	search := &stubSearch{page: result.Page{
		Items: []result.Candidate{{Product: domain.ProductRecord{ID: "1", Name: "苹果"}, Score: 100}},
		Total: 1, Page: 1, PageSize: 20, PageCount: 1, ExactMatches: 1,
	}}
	s, _ := newTestServer(search, &stubCatalog{}, nil)
	h := s.Routes(nil)

	rr := doRequest(t, h, "GET", "/search?q=苹果&category=水果&min_price=5&max_price=10&sort=price_asc&page=2&page_size=10", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rr.Code, rr.Body.String())
	}

	var page result.Page
	if err := json.NewDecoder(rr.Body).Decode(&page); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if page.Total != 1 || page.ExactMatches != 1 {
		t.Errorf("page = %+v, want total=1 exact=1", page)
	}

	req := search.lastRequest
	if req.Query() != "苹果" {
		t.Errorf("query = %q, want 苹果", req.Query())
	}
	if req.Page() != 2 || req.PageSize() != 10 {
		t.Errorf("page=%d size=%d, want 2/10", req.Page(), req.PageSize())
	}
	f := req.Filters()
	if f.Category() != "水果" {
		t.Errorf("category = %q, want 水果", f.Category())
	}
	if f.Price() == nil || *f.Price().Min() != 5 || *f.Price().Max() != 10 {
		t.Errorf("price range not parsed: %+v", f.Price())
	}
}

func TestSearchEndpoint_BadPriceParam(t *testing.T) {
	s, _ := newTestServer(&stubSearch{}, &stubCatalog{}, nil)
	h := s.Routes(nil)

	rr := doRequest(t, h, "GET", "/search?min_price=cheap", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}

	var errResp errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if errResp.Code != codeInvalidArgument {
		t.Errorf("code = %q, want %q", errResp.Code, codeInvalidArgument)
	}
}

func TestSearchEndpoint_InvertedRange(t *testing.T) {
	s, _ := newTestServer(&stubSearch{}, &stubCatalog{}, nil)
	h := s.Routes(nil)

	rr := doRequest(t, h, "GET", "/search?min_price=10&max_price=5", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestSearchEndpoint_InvalidSort(t *testing.T) {
	s, _ := newTestServer(&stubSearch{}, &stubCatalog{}, nil)
	h := s.Routes(nil)

	rr := doRequest(t, h, "GET", "/search?sort=alphabetical", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestSearchEndpoint_NonIntegerPage(t *testing.T) {
	s, _ := newTestServer(&stubSearch{}, &stubCatalog{}, nil)
	h := s.Routes(nil)

	rr := doRequest(t, h, "GET", "/search?page=two", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestSearchEndpoint_InternalError(t *testing.T) {
	s, _ := newTestServer(&stubSearch{err: errors.New("redis down")}, &stubCatalog{}, nil)
	h := s.Routes(nil)

	rr := doRequest(t, h, "GET", "/search?q=x", "")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}

	var errResp errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if errResp.Message != "internal error" {
		t.Errorf("message %q leaks internals", errResp.Message)
	}
}

func TestSimilarEndpoint(t *testing.T) {
	search := &stubSearch{similar: []result.Similarity{
		{Product: domain.ProductRecord{ID: "2", Name: "苹果汁"}, Score: 60},
	}}
	s, _ := newTestServer(search, &stubCatalog{}, nil)
	h := s.Routes(nil)

	rr := doRequest(t, h, "GET", "/products/1/similar?limit=5", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var resp struct {
		Items []result.Similarity `json:"items"`
		Total int                 `json:"total"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 1 || resp.Items[0].Product.ID != "2" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestSimilarEndpoint_UnknownProduct(t *testing.T) {
	s, _ := newTestServer(&stubSearch{err: domain.ErrProductNotFound}, &stubCatalog{}, nil)
	h := s.Routes(nil)

	rr := doRequest(t, h, "GET", "/products/999/similar", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}

	var errResp errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if errResp.Code != codeProductNotFound {
		t.Errorf("code = %q, want %q", errResp.Code, codeProductNotFound)
	}
}

func TestSuggestionsEndpoint(t *testing.T) {
	s, _ := newTestServer(&stubSearch{suggestions: []string{"苹果", "苹果汁"}}, &stubCatalog{}, nil)
	h := s.Routes(nil)

	rr := doRequest(t, h, "GET", "/suggestions?q=苹", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var resp struct {
		Suggestions []string `json:"suggestions"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Suggestions) != 2 {
		t.Errorf("suggestions = %v, want 2 entries", resp.Suggestions)
	}
}

func TestSuggestionsEndpoint_EmptyResultIsArray(t *testing.T) {
	s, _ := newTestServer(&stubSearch{}, &stubCatalog{}, nil)
	h := s.Routes(nil)

	rr := doRequest(t, h, "GET", "/suggestions?q=zzz", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"suggestions":[]`) {
		t.Errorf("body = %s, want empty array", rr.Body.String())
	}
}

func TestFacetEndpoints(t *testing.T) {
	s, _ := newTestServer(&stubSearch{}, &stubCatalog{}, nil)
	h := s.Routes(nil)

	rr := doRequest(t, h, "GET", "/facets/categories", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("categories status = %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "水果") {
		t.Errorf("categories body = %s", rr.Body.String())
	}

	rr = doRequest(t, h, "GET", "/facets/price", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("price status = %d, want 200", rr.Code)
	}

	var summary facet.PriceSummary
	if err := json.NewDecoder(rr.Body).Decode(&summary); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if summary.Count != 3 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestGetProductEndpoint(t *testing.T) {
	catalog := &stubCatalog{products: map[string]domain.ProductRecord{
		"1": {ID: "1", Name: "苹果", Status: domain.StatusActive},
	}}
	s, _ := newTestServer(&stubSearch{}, catalog, nil)
	h := s.Routes(nil)

	rr := doRequest(t, h, "GET", "/products/1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	rr = doRequest(t, h, "GET", "/products/404", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("missing product status = %d, want 404", rr.Code)
	}
}

func TestPutProductEndpoint(t *testing.T) {
	catalog := &stubCatalog{}
	s, inv := newTestServer(&stubSearch{}, catalog, nil)
	h := s.Routes(nil)

	body := `{"name":"苹果","category":"水果","price":8.5,"stock":100}`
	rr := doRequest(t, h, "PUT", "/products/42", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rr.Code, rr.Body.String())
	}

	if catalog.upserted == nil {
		t.Fatal("catalog.Upsert not called")
	}
	if catalog.upserted.ID != "42" {
		t.Errorf("upserted ID = %q, want path id 42", catalog.upserted.ID)
	}
	if catalog.upserted.Status != domain.StatusActive {
		t.Errorf("status = %q, want default active", catalog.upserted.Status)
	}
	if inv.calls != 1 {
		t.Errorf("cache invalidated %d times, want 1", inv.calls)
	}
}

func TestPutProductEndpoint_BadBody(t *testing.T) {
	s, inv := newTestServer(&stubSearch{}, &stubCatalog{}, nil)
	h := s.Routes(nil)

	rr := doRequest(t, h, "PUT", "/products/42", "{not json")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	if inv.calls != 0 {
		t.Error("cache invalidated on failed write")
	}
}

func TestDeleteProductEndpoint(t *testing.T) {
	catalog := &stubCatalog{}
	s, inv := newTestServer(&stubSearch{}, catalog, nil)
	h := s.Routes(nil)

	rr := doRequest(t, h, "DELETE", "/products/7", "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rr.Code)
	}
	if catalog.deleted != "7" {
		t.Errorf("deleted = %q, want 7", catalog.deleted)
	}
	if inv.calls != 1 {
		t.Errorf("cache invalidated %d times, want 1", inv.calls)
	}
}

func TestHealthEndpoint(t *testing.T) {
	s, _ := newTestServer(&stubSearch{}, &stubCatalog{}, nil)
	h := s.Routes(nil)

	rr := doRequest(t, h, "GET", "/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %s", rr.Body.String())
	}
}

func TestHealthEndpoint_Degraded(t *testing.T) {
	s, _ := newTestServer(&stubSearch{}, &stubCatalog{}, errors.New("conn refused"))
	h := s.Routes(nil)

	rr := doRequest(t, h, "GET", "/health", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}
}

func TestRoutesRequireAuth(t *testing.T) {
	s, _ := newTestServer(&stubSearch{}, &stubCatalog{}, nil)
	h := s.Routes([]string{"secret"})

	rr := doRequest(t, h, "GET", "/search", "")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated search status = %d, want 401", rr.Code)
	}

	rr = doRequest(t, h, "GET", "/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("health should bypass auth, got %d", rr.Code)
	}
}
