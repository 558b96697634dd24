// Package chi is the HTTP API: retrieval and answer endpoints plus corpus
// administration, served over a chi router.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/carebase/carebase/internal/domain"
	answeruc "github.com/carebase/carebase/internal/usecase/answer"
	corpusuc "github.com/carebase/carebase/internal/usecase/corpus"
	healthuc "github.com/carebase/carebase/internal/usecase/health"
)

// Retriever assembles a context block for a staff query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) (string, error)
}

// Answerer runs the full retrieve-and-generate pipeline.
type Answerer interface {
	Answer(ctx context.Context, query string, k int) (answeruc.Result, error)
}

// Corpus administers the document cache.
type Corpus interface {
	Refresh(ctx context.Context) (*domain.Snapshot, error)
	Stats(ctx context.Context) (corpusuc.Stats, error)
}

// Health reports component availability.
type Health interface {
	Check(ctx context.Context) healthuc.Report
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers.
type Server struct {
	retriever     Retriever
	answerer      Answerer
	corpus        Corpus
	health        Health
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates the HTTP API server. answerer may be nil when no
// generation backend is configured; /v1/query then returns 501.
func NewServer(retriever Retriever, answerer Answerer, corpus Corpus, health Health, logger *zap.Logger) *Server {
	s := &Server{
		retriever: retriever,
		answerer:  answerer,
		corpus:    corpus,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrStoreUnavailable, http.StatusServiceUnavailable, "store_unavailable"),
		sentinelHandler(domain.ErrCorruptDocument, http.StatusUnprocessableEntity, "corrupt_corpus"),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, "embedding_provider_error"),
		sentinelHandler(domain.ErrGenerationProviderError, http.StatusBadGateway, "generation_provider_error"),
	}
	return s
}

// Routes mounts all handlers on the router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/query", s.handleQuery)
		r.Post("/retrieve", s.handleRetrieve)
		r.Post("/corpus/refresh", s.handleCorpusRefresh)
		r.Get("/corpus/stats", s.handleCorpusStats)
	})
}

type queryRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

func (s *Server) decodeQuery(w http.ResponseWriter, r *http.Request) (queryRequest, bool) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return queryRequest{}, false
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "query is required")
		return queryRequest{}, false
	}
	return req, true
}

// handleQuery handles POST /v1/query: retrieve context and generate an
// answer from it.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if s.answerer == nil {
		writeError(w, http.StatusNotImplemented, "not_implemented", "no generation backend configured")
		return
	}

	req, ok := s.decodeQuery(w, r)
	if !ok {
		return
	}

	res, err := s.answerer.Answer(r.Context(), req.Query, req.TopK)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"answer":  res.Answer,
		"context": res.Context,
	})
}

// handleRetrieve handles POST /v1/retrieve: context block only, no
// generation.
func (s *Server) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeQuery(w, r)
	if !ok {
		return
	}

	contextBlock, err := s.retriever.Retrieve(r.Context(), req.Query, req.TopK)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"context": contextBlock})
}

// handleCorpusRefresh handles POST /v1/corpus/refresh: reload the corpus
// and report the new generation.
func (s *Server) handleCorpusRefresh(w http.ResponseWriter, r *http.Request) {
	snap, err := s.corpus.Refresh(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, corpusuc.StatsFor(snap))
}

// handleCorpusStats handles GET /v1/corpus/stats.
func (s *Server) handleCorpusStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.corpus.Stats(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// handleHealth handles GET /health. An unreachable document store reports
// 503; a degraded embedding provider still reports 200.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
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
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}

func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// safeDomainMessage returns the sentinel's message without exposing
// wrapped internals to the client.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrStoreUnavailable,
		domain.ErrCorruptDocument,
		domain.ErrEmbeddingProviderError,
		domain.ErrGenerationProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
