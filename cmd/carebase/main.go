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

	"github.com/carebase/carebase/internal/config"
	dbRedis "github.com/carebase/carebase/internal/db/redis"
	dbSqlite "github.com/carebase/carebase/internal/db/sqlite"
	"github.com/carebase/carebase/internal/domain"
	logpkg "github.com/carebase/carebase/internal/logger"
	"github.com/carebase/carebase/internal/metrics"
	"github.com/carebase/carebase/internal/repository/documents"
	"github.com/carebase/carebase/internal/repository/embcache"
	chiTransport "github.com/carebase/carebase/internal/transport/chi"
	openaiT "github.com/carebase/carebase/internal/transport/openai"
	answeruc "github.com/carebase/carebase/internal/usecase/answer"
	corpusuc "github.com/carebase/carebase/internal/usecase/corpus"
	healthuc "github.com/carebase/carebase/internal/usecase/health"
	locatoruc "github.com/carebase/carebase/internal/usecase/locator"
	retrievaluc "github.com/carebase/carebase/internal/usecase/retrieval"
	"github.com/carebase/carebase/internal/version"
)

func main() {
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

	logger.Info("Starting carebase API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_path", cfg.Database.Path),
		zap.String("db_table", cfg.Database.Table),
	)

	sdb, err := dbSqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatal("Failed to open document store", zap.Error(err))
	}
	defer func() { _ = sdb.Close() }()
	logger.Info("Connected to document store")

	// Register domain metrics explicitly (no init())
	metrics.RegisterRetrievalMetrics()

	// Embedder chain: OpenAI -> Cached (when redis is configured)
	baseEmbedder := openaiT.NewEmbedder(&openaiT.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     logger,
	})

	var embedder domain.Embedder = baseEmbedder
	if len(cfg.Redis.Addrs) > 0 {
		kv, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Redis.Addrs,
			Password: cfg.Redis.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create embedding cache store", zap.Error(err))
		}
		defer kv.Close()

		ttl := time.Duration(cfg.Redis.TTLHours) * time.Hour
		embedder = embcache.New(baseEmbedder, kv, ttl, metrics.EmbeddingCacheTotal, logger)
		logger.Info("Query-embedding cache enabled", zap.Duration("ttl", ttl))
	}

	repo := documents.New(sdb, cfg.Database.Table, logger)
	corpusSvc := corpusuc.New(repo, logger)
	locatorSvc := locatoruc.New(logger)
	retrievalSvc := retrievaluc.New(corpusSvc, locatorSvc, embedder, cfg.Retrieval.DefaultTopK, logger)

	var answerer chiTransport.Answerer
	if cfg.Generation.Model != "" {
		generator := openaiT.NewGenerator(&openaiT.GeneratorConfig{
			APIKey:  cfg.Generation.APIKey,
			BaseURL: cfg.Generation.BaseURL,
			Model:   cfg.Generation.Model,
			Logger:  logger,
		})
		answerer = answeruc.New(retrievalSvc, generator, logger)
	} else {
		logger.Warn("No generation model configured, /v1/query disabled")
	}

	healthSvc := healthuc.New(repo, baseEmbedder)

	// Warm the corpus cache; a failure here is not fatal, the first query
	// retries the load.
	warmCtx, cancelWarm := context.WithTimeout(context.Background(), 30*time.Second)
	if snap, err := corpusSvc.Get(warmCtx); err != nil {
		logger.Warn("Initial corpus load failed", zap.Error(err))
	} else {
		logger.Info("Corpus cache warmed", zap.Int("documents", snap.Len()))
	}
	cancelWarm()

	server := chiTransport.NewServer(retrievalSvc, answerer, corpusSvc, healthSvc, logger)

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

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
