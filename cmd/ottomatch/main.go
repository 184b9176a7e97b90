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

	"github.com/JB5579/Otto-Match-V2-sub003/internal/config"
	dbRedis "github.com/JB5579/Otto-Match-V2-sub003/internal/db/redis"
	"github.com/JB5579/Otto-Match-V2-sub003/internal/domain"
	logpkg "github.com/JB5579/Otto-Match-V2-sub003/internal/logger"
	"github.com/JB5579/Otto-Match-V2-sub003/internal/metrics"
	"github.com/JB5579/Otto-Match-V2-sub003/internal/repository/embcache"
	vehiclerepo "github.com/JB5579/Otto-Match-V2-sub003/internal/repository/vehicle"
	chiTransport "github.com/JB5579/Otto-Match-V2-sub003/internal/transport/chi"
	openaiTransport "github.com/JB5579/Otto-Match-V2-sub003/internal/transport/openai"
	rerankTransport "github.com/JB5579/Otto-Match-V2-sub003/internal/transport/rerank"
	embeddinguc "github.com/JB5579/Otto-Match-V2-sub003/internal/usecase/embedding"
	expansionuc "github.com/JB5579/Otto-Match-V2-sub003/internal/usecase/expansion"
	healthuc "github.com/JB5579/Otto-Match-V2-sub003/internal/usecase/health"
	hybriduc "github.com/JB5579/Otto-Match-V2-sub003/internal/usecase/hybrid"
	rerankuc "github.com/JB5579/Otto-Match-V2-sub003/internal/usecase/rerank"
	searchuc "github.com/JB5579/Otto-Match-V2-sub003/internal/usecase/search"
	"github.com/JB5579/Otto-Match-V2-sub003/internal/version"
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

	logger.Info("Starting ottomatch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_host", cfg.Database.Host),
		zap.String("db_name", cfg.Database.Name),
	)

	ctx := context.Background()

	gormDB, err := vehiclerepo.Open(cfg.Database.DSN(), cfg.Database.MaxConns, logger)
	if err != nil {
		logger.Fatal("Failed to connect to postgres", zap.Error(err))
	}
	if err := vehiclerepo.EnsureSchema(ctx, gormDB, cfg.Embedding.Dimensions); err != nil {
		logger.Fatal("Failed to ensure schema", zap.Error(err))
	}
	vehicleRepo := vehiclerepo.New(gormDB, logger)
	logger.Info("Connected to postgres")

	// Redis is an optional accelerator: without it the embedding cache is
	// simply skipped, so a missing cache never blocks startup.
	var redisStore *dbRedis.Store
	if cfg.Redis.Addr != "" {
		redisStore, err = dbRedis.NewStore(dbRedis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
		})
		if err != nil {
			logger.Warn("Redis unavailable, embedding cache disabled", zap.Error(err))
			redisStore = nil
		} else {
			defer redisStore.Close()
			logger.Info("Connected to redis", zap.String("addr", cfg.Redis.Addr))
		}
	}

	// Register metrics explicitly (no init())
	metrics.RegisterPipelineMetrics()
	metrics.RegisterEmbeddingMetrics()

	// Embedder chain — OpenAI -> Cached -> Instrumented
	baseEmbedder := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   "openai",
		Logger:     logger,
	})

	var embedder domain.Embedder = baseEmbedder
	if redisStore != nil {
		embedder = embcache.New(baseEmbedder, redisStore, cfg.Redis.KeyPrefix, metrics.EmbeddingCacheTotal, logger)
	}
	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, "openai", cfg.Embedding.Model, logger)

	// Keep the interface nil when unconfigured; a typed nil pointer would
	// defeat the nil checks downstream.
	var contextual searchuc.Embedder
	if cfg.Embedding.ContextPrefix != "" {
		contextual = domain.NewContextualEmbedder(embedder, cfg.Embedding.ContextPrefix)
	}

	logger.Info("Embedders created",
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
		zap.Bool("redis_cache", redisStore != nil),
		zap.Bool("contextual", contextual != nil),
	)

	// Query expansion shares the embedding credentials unless overridden.
	expansionKey := cfg.Expansion.APIKey
	if expansionKey == "" {
		expansionKey = cfg.Embedding.APIKey
	}
	completer := openaiTransport.NewCompleter(&openaiTransport.CompleterConfig{
		APIKey:  expansionKey,
		BaseURL: cfg.Expansion.BaseURL,
		Model:   cfg.Expansion.Model,
		Logger:  logger,
	})
	expansionSvc, err := expansionuc.New(completer, expansionuc.Config{
		Timeout:   time.Duration(cfg.Expansion.TimeoutSec) * time.Second,
		CacheTTL:  time.Duration(cfg.Expansion.CacheTTLSec) * time.Second,
		CacheSize: cfg.Expansion.CacheSize,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create expansion service", zap.Error(err))
	}

	hybridSvc, err := hybriduc.New(vehicleRepo, hybriduc.Config{
		K:             cfg.Search.RRFK,
		VectorWeight:  cfg.Search.VectorWeight,
		KeywordWeight: cfg.Search.KeywordWeight,
		FilterWeight:  cfg.Search.FilterWeight,
		CacheTTL:      time.Duration(cfg.Search.CacheTTLSec) * time.Second,
		CacheSize:     cfg.Search.CacheSize,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create hybrid search service", zap.Error(err))
	}

	var scorer rerankuc.Scorer
	var rerankClient *rerankTransport.Client
	if cfg.Rerank.URL != "" {
		rerankClient = rerankTransport.NewClient(&rerankTransport.Config{
			URL:     cfg.Rerank.URL,
			APIKey:  cfg.Rerank.APIKey,
			Model:   cfg.Rerank.Model,
			Timeout: time.Duration(cfg.Rerank.TimeoutSec) * time.Second,
			Logger:  logger,
		})
		scorer = rerankClient
	}
	rerankSvc := rerankuc.New(scorer, rerankuc.Config{
		BatchSize: cfg.Rerank.BatchSize,
		Budget:    time.Duration(cfg.Rerank.BudgetMS) * time.Millisecond,
	}, logger)
	logger.Info("Reranker configured", zap.Bool("enabled", rerankSvc.Enabled()))

	searchSvc := searchuc.New(
		expansionSvc, embedder, contextual,
		hybridSvc, rerankSvc, vehicleRepo,
		searchuc.Config{
			CandidateMultiplier: cfg.Search.CandidateMultiplier,
			MaxCandidates:       cfg.Search.MaxCandidates,
		}, logger,
	)

	var rerankChecker healthuc.RerankChecker
	if rerankClient != nil {
		rerankChecker = rerankClient
	}
	var cachePinger healthuc.CachePinger
	if redisStore != nil {
		cachePinger = redisStore
	}
	healthSvc := healthuc.New(vehicleRepo, baseEmbedder, rerankChecker, cachePinger)

	server := chiTransport.NewServer(searchSvc, healthSvc, chiTransport.Defaults{
		ExpandQuery:         cfg.Expansion.DefaultEnabled,
		Rerank:              cfg.Rerank.DefaultEnabled,
		ContextualEmbedding: cfg.Embedding.ContextualDefault,
	}, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

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

			// Set X-Request-ID in response header
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
