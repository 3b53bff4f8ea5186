// Package chi hosts the HTTP API: query parsing, JSON envelopes and
// domain-error to status mapping around the search engine.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/merx-cloud/prodex/internal/domain"
	"github.com/merx-cloud/prodex/internal/domain/search/facet"
	"github.com/merx-cloud/prodex/internal/domain/search/filter"
	"github.com/merx-cloud/prodex/internal/domain/search/request"
	"github.com/merx-cloud/prodex/internal/domain/search/result"
	"github.com/merx-cloud/prodex/internal/domain/search/sortmode"
	"github.com/merx-cloud/prodex/internal/metrics"
	healthuc "github.com/merx-cloud/prodex/internal/usecase/health"
)

// Error response codes.
const (
	codeBadRequest      = "bad_request"
	codeInvalidArgument = "invalid_argument"
	codeProductNotFound = "product_not_found"
	codeNotFound        = "not_found"
	codeUnauthorized    = "unauthorized"
	codeInternalError   = "internal_error"
)

// SearchService is the consumer interface over the (possibly cached)
// search engine.
type SearchService interface {
	Search(ctx context.Context, req *request.Request) (result.Page, error)
	Similar(ctx context.Context, targetID string, limit int) ([]result.Similarity, error)
	Suggest(ctx context.Context, partial string, limit int) ([]string, error)
	CategoryFacets(ctx context.Context) ([]facet.CategoryBucket, error)
	PriceFacets(ctx context.Context) (facet.PriceSummary, error)
}

// Catalog is the consumer interface for product record management.
type Catalog interface {
	Get(ctx context.Context, id string) (domain.ProductRecord, error)
	Upsert(ctx context.Context, p *domain.ProductRecord) error
	Delete(ctx context.Context, id string) error
}

// Invalidator drops memoized responses after catalog writes.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Limits carries per-endpoint defaults from configuration.
type Limits struct {
	MaxPageSize  int
	SimilarLimit int
	SuggestLimit int
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the search engine over HTTP.
type Server struct {
	search        SearchService
	catalog       Catalog
	cache         Invalidator
	health        *healthuc.Service
	limits        Limits
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. cache can be nil when response
// caching is off.
func NewServer(
	search SearchService,
	catalog Catalog,
	cache Invalidator,
	health *healthuc.Service,
	limits Limits,
	logger *zap.Logger,
) *Server {
	if limits.MaxPageSize <= 0 {
		limits.MaxPageSize = request.MaxPageSize
	}
	if limits.SimilarLimit <= 0 {
		limits.SimilarLimit = 10
	}
	if limits.SuggestLimit <= 0 {
		limits.SuggestLimit = 10
	}
	s := &Server{
		search:  search,
		catalog: catalog,
		cache:   cache,
		health:  health,
		limits:  limits,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrProductNotFound, http.StatusNotFound, codeProductNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrInvalidArgument, http.StatusBadRequest, codeInvalidArgument),
	}
	return s
}

// Routes builds the router with auth and metrics middleware.
func (s *Server) Routes(apiKeys []string) http.Handler {
	r := chi.NewRouter()
	r.Use(metrics.Middleware())
	r.Use(BearerAuthMiddleware(apiKeys))

	r.Get("/search", s.handleSearch)
	r.Get("/suggestions", s.handleSuggest)
	r.Get("/facets/categories", s.handleCategoryFacets)
	r.Get("/facets/price", s.handlePriceFacets)
	r.Route("/products/{id}", func(r chi.Router) {
		r.Get("/", s.handleGetProduct)
		r.Put("/", s.handlePutProduct)
		r.Delete("/", s.handleDeleteProduct)
		r.Get("/similar", s.handleSimilar)
	})
	r.Get("/health", s.handleHealth)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}

// handleSearch handles GET /search.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filters, err := filtersFromQuery(q.Get("category"), q.Get("storage_area"),
		q.Get("min_price"), q.Get("max_price"), q.Get("min_stock"), q.Get("max_stock"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	page, err := intParam(q.Get("page"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "page must be an integer")
		return
	}
	pageSize, err := intParam(q.Get("page_size"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "page_size must be an integer")
		return
	}

	req, err := request.New(q.Get("q"), filters, sortmode.Mode(q.Get("sort")),
		page, pageSize, s.limits.MaxPageSize)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	start := time.Now()
	res, err := s.search.Search(r.Context(), &req)
	metrics.SearchDuration.WithLabelValues("search").Observe(time.Since(start).Seconds())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	metrics.SearchResultsTotal.WithLabelValues("exact").Add(float64(res.ExactMatches))
	metrics.SearchResultsTotal.WithLabelValues("fuzzy").Add(float64(res.FuzzyMatches))
	metrics.SearchResultsTotal.WithLabelValues("partial").Add(float64(res.PartialMatches))

	writeJSON(w, http.StatusOK, res)
}

// handleSimilar handles GET /products/{id}/similar.
func (s *Server) handleSimilar(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	limit, err := intParam(r.URL.Query().Get("limit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "limit must be an integer")
		return
	}
	if limit <= 0 {
		limit = s.limits.SimilarLimit
	}

	start := time.Now()
	items, err := s.search.Similar(r.Context(), id, limit)
	metrics.SearchDuration.WithLabelValues("similar").Observe(time.Since(start).Seconds())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if items == nil {
		items = []result.Similarity{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"total": len(items),
	})
}

// handleSuggest handles GET /suggestions.
func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, err := intParam(q.Get("limit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "limit must be an integer")
		return
	}
	if limit <= 0 {
		limit = s.limits.SuggestLimit
	}

	start := time.Now()
	terms, err := s.search.Suggest(r.Context(), q.Get("q"), limit)
	metrics.SearchDuration.WithLabelValues("suggest").Observe(time.Since(start).Seconds())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if terms == nil {
		terms = []string{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"suggestions": terms})
}

// handleCategoryFacets handles GET /facets/categories.
func (s *Server) handleCategoryFacets(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	items, err := s.search.CategoryFacets(r.Context())
	metrics.SearchDuration.WithLabelValues("category_facets").Observe(time.Since(start).Seconds())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if items == nil {
		items = []facet.CategoryBucket{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// handlePriceFacets handles GET /facets/price.
func (s *Server) handlePriceFacets(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	summary, err := s.search.PriceFacets(r.Context())
	metrics.SearchDuration.WithLabelValues("price_facets").Observe(time.Since(start).Seconds())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// handleGetProduct handles GET /products/{id}.
func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// handlePutProduct handles PUT /products/{id}.
func (s *Server) handlePutProduct(w http.ResponseWriter, r *http.Request) {
	var p domain.ProductRecord
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	p.ID = chi.URLParam(r, "id")
	if p.Status == "" {
		p.Status = domain.StatusActive
	}

	if err := s.catalog.Upsert(r.Context(), &p); err != nil {
		s.handleDomainError(w, err)
		return
	}
	s.invalidateCache(r.Context())

	writeJSON(w, http.StatusOK, p)
}

// handleDeleteProduct handles DELETE /products/{id}.
func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err)
		return
	}
	s.invalidateCache(r.Context())

	w.WriteHeader(http.StatusNoContent)
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// invalidateCache is best-effort: cached pages expire by TTL anyway.
func (s *Server) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("Failed to invalidate search cache", zap.Error(err))
	}
}

func filtersFromQuery(category, storageArea, minPrice, maxPrice, minStock, maxStock string) (filter.Filters, error) {
	price, err := rangeFromQuery("price", minPrice, maxPrice)
	if err != nil {
		return filter.Filters{}, err
	}
	stock, err := rangeFromQuery("stock", minStock, maxStock)
	if err != nil {
		return filter.Filters{}, err
	}
	return filter.New(category, storageArea, price, stock), nil
}

func rangeFromQuery(name, minRaw, maxRaw string) (*filter.Range, error) {
	if minRaw == "" && maxRaw == "" {
		return nil, nil
	}
	var min, max *float64
	if minRaw != "" {
		v, err := strconv.ParseFloat(minRaw, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: min_%s must be a number", domain.ErrInvalidArgument, name)
		}
		min = &v
	}
	if maxRaw != "" {
		v, err := strconv.ParseFloat(maxRaw, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: max_%s must be a number", domain.ErrInvalidArgument, name)
		}
		max = &v
	}
	r, err := filter.NewRange(min, max)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func intParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrProductNotFound,
		domain.ErrNotFound,
		domain.ErrInvalidArgument,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
