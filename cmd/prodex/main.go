package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/merx-cloud/prodex/internal/config"
	dbRedis "github.com/merx-cloud/prodex/internal/db/redis"
	logpkg "github.com/merx-cloud/prodex/internal/logger"
	"github.com/merx-cloud/prodex/internal/metrics"
	"github.com/merx-cloud/prodex/internal/repository/catalog"
	"github.com/merx-cloud/prodex/internal/repository/searchcache"
	"github.com/merx-cloud/prodex/internal/text"
	chiTransport "github.com/merx-cloud/prodex/internal/transport/chi"
	healthuc "github.com/merx-cloud/prodex/internal/usecase/health"
	searchuc "github.com/merx-cloud/prodex/internal/usecase/search"
	"github.com/merx-cloud/prodex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting prodex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("cache_backend", cfg.Cache.Backend),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	catalogRepo := catalog.New(store, cfg.Storage.KeyPrefix, logger)

	engine := searchuc.New(
		catalogRepo,
		text.NewTokenizer(logger),
		text.LevenshteinSimilarity{},
		engineConfig(cfg.Search),
		logger,
	)

	// Wrap the engine with the configured memoization backend.
	searchSvc, cache := buildSearchService(engine, store, cfg.Cache, cfg.Storage.KeyPrefix, logger)

	var cacheChecker healthuc.CacheChecker
	if cc, ok := cache.(healthuc.CacheChecker); ok {
		cacheChecker = cc
	}
	healthSvc := healthuc.New(store, cacheChecker)

	server := chiTransport.NewServer(searchSvc, catalogRepo, invalidator(cache), healthSvc, chiTransport.Limits{
		MaxPageSize:  cfg.Search.MaxPageSize,
		SimilarLimit: cfg.Search.DefaultSimilar,
		SuggestLimit: cfg.Search.DefaultSuggest,
	}, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Mount("/", server.Routes(cfg.Auth.APIKeys))

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// engineConfig maps the YAML search section onto the engine's scoring config.
func engineConfig(sc config.SearchConfig) searchuc.Config {
	ec := searchuc.Config{
		FuzzyThreshold:     sc.FuzzyThreshold,
		SimilarityMinScore: sc.SimilarityMinScore,
		SuggestMinScore:    sc.SuggestMinScore,
		DefaultPageSize:    sc.DefaultPageSize,
		MaxPageSize:        sc.MaxPageSize,
	}
	if len(sc.FieldWeights) > 0 {
		// Keep the built-in precedence order, overriding only listed weights.
		weights := searchuc.DefaultWeights()
		for i, fw := range weights {
			if w, ok := sc.FieldWeights[string(fw.Field)]; ok {
				weights[i].Weight = w
			}
		}
		ec.Weights = weights
	}
	return ec
}

// buildSearchService wraps the engine with the configured cache backend.
// Returns the engine itself when caching is off.
func buildSearchService(
	engine *searchuc.Engine,
	store *dbRedis.Store,
	cfg config.CacheConfig,
	keyPrefix string,
	logger *zap.Logger,
) (chiTransport.SearchService, searchcache.Cache) {
	var backend searchcache.Cache
	switch cfg.Backend {
	case "redis":
		backend = searchcache.NewRedisCache(store, keyPrefix)
	case "memory":
		mc, err := searchcache.NewMemoryCache(cfg.MaxBytes)
		if err != nil {
			logger.Fatal("Failed to create memory cache", zap.Error(err))
		}
		backend = mc
	default: // off
		return engine, nil
	}

	ttl := time.Duration(cfg.TTLSec) * time.Second
	return searchcache.New(engine, backend, ttl, metrics.SearchCacheTotal, logger), backend
}

// invalidator avoids handing the transport a typed nil interface.
// Go gotcha: (searchcache.Cache)(nil-pointer) != nil as chiTransport.Invalidator.
func invalidator(cache searchcache.Cache) chiTransport.Invalidator {
	if cache == nil {
		return nil
	}
	return cache
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
