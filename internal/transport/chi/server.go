package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/JB5579/Otto-Match-V2-sub003/internal/domain"
	"github.com/JB5579/Otto-Match-V2-sub003/internal/domain/search/filter"
	"github.com/JB5579/Otto-Match-V2-sub003/internal/domain/search/request"
	healthuc "github.com/JB5579/Otto-Match-V2-sub003/internal/usecase/health"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Defaults are the flag values applied when a request leaves a pipeline
// toggle unset.
type Defaults struct {
	ExpandQuery         bool
	Rerank              bool
	ContextualEmbedding bool
}

// Server exposes the search pipeline over HTTP.
type Server struct {
	search        SearchService
	health        HealthService
	defaults      Defaults
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search SearchService, health HealthService, defaults Defaults, logger *zap.Logger) *Server {
	s := &Server{
		search:   search,
		health:   health,
		defaults: defaults,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidArgument, http.StatusBadRequest, codeInvalidArgument),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrUnauthorized, http.StatusUnauthorized, codeUnauthorized),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, codeRateLimited),
		sentinelHandler(domain.ErrEmbeddingUnavailable, http.StatusBadGateway, codeEmbeddingUnavailable),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingUnavailable),
		sentinelHandler(domain.ErrSearchUnavailable, http.StatusServiceUnavailable, codeSearchUnavailable),
	}
	return s
}

// Routes registers all endpoints on the router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/healthz", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/search", s.SearchPost)
		r.Get("/search", s.SearchGet)
		r.Get("/vehicles/{id}/similar", s.Similar)
	})
}

// SearchPost handles POST /v1/search.
func (s *Server) SearchPost(w http.ResponseWriter, r *http.Request) {
	var dto searchRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}
	s.runSearch(w, r, dto)
}

// SearchGet handles GET /v1/search.
func (s *Server) SearchGet(w http.ResponseWriter, r *http.Request) {
	params, err := bindSearchParams(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	s.runSearch(w, r, params.toRequestDTO())
}

func (s *Server) runSearch(w http.ResponseWriter, r *http.Request, dto searchRequestDTO) {
	req, err := s.searchRequestFromDTO(dto)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidArgument, err.Error())
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	resp, err := s.search.Search(ctx, req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, responseToDTO(resp))
}

// Similar handles GET /v1/vehicles/{id}/similar.
func (s *Server) Similar(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	limit, err := bindSimilarLimit(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	req, err := request.NewSimilar(id, limit)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidArgument, err.Error())
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	resp, err := s.search.Similar(ctx, req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, responseToDTO(resp))
}

// HealthCheck handles GET /healthz. Degraded still serves searches, so only
// a hard database failure reports unavailable.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponseDTO{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// searchRequestFromDTO validates the wire request and applies server
// defaults for unset flags. Invalid explicit filters are a caller error,
// unlike LLM-extracted ones which are dropped downstream.
func (s *Server) searchRequestFromDTO(dto searchRequestDTO) (request.Request, error) {
	filters, dropped := filter.FromMap(dto.Filters)
	if len(dropped) > 0 {
		return request.Request{}, fmt.Errorf("invalid filters: %s", strings.Join(dropped, ", "))
	}

	flags := request.Flags{
		ExpandQuery:         s.defaults.ExpandQuery,
		Rerank:              s.defaults.Rerank,
		ContextualEmbedding: s.defaults.ContextualEmbedding,
	}
	if dto.ExpandQuery != nil {
		flags.ExpandQuery = *dto.ExpandQuery
	}
	if dto.Rerank != nil {
		flags.Rerank = *dto.Rerank
	}
	if dto.ContextualEmbedding != nil {
		flags.ContextualEmbedding = *dto.ContextualEmbedding
	}

	return request.New(dto.Query, filters, dto.Limit, dto.Offset, flags)
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage != nil && usage.Used {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.TotalTokens))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidArgument,
		domain.ErrNotFound,
		domain.ErrUnauthorized,
		domain.ErrRateLimited,
		domain.ErrEmbeddingUnavailable,
		domain.ErrEmbeddingProviderError,
		domain.ErrSearchUnavailable,
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
