// Package search orchestrates the conversational search pipeline: query
// expansion, embedding, hybrid retrieval, and cross-encoder re-ranking.
// Optional stages degrade to passthrough; only a failed embedding or a
// total retrieval failure aborts a request.
package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JB5579/Otto-Match-V2-sub003/internal/domain"
	"github.com/JB5579/Otto-Match-V2-sub003/internal/domain/search/filter"
	"github.com/JB5579/Otto-Match-V2-sub003/internal/domain/search/request"
	"github.com/JB5579/Otto-Match-V2-sub003/internal/domain/search/result"
	"github.com/JB5579/Otto-Match-V2-sub003/internal/metrics"
	"github.com/JB5579/Otto-Match-V2-sub003/internal/usecase/hybrid"
)

// Defaults applied when Config fields are zero.
const (
	// DefaultCandidateMultiplier widens the fused candidate pool fed to the
	// cross-encoder relative to the requested page.
	DefaultCandidateMultiplier = 3
	// DefaultMaxCandidates caps the candidate pool regardless of page size.
	DefaultMaxCandidates = 300
)

// Config tunes how many fused candidates the pipeline works with.
type Config struct {
	CandidateMultiplier int
	MaxCandidates       int
}

// Service is the pipeline orchestrator.
type Service struct {
	expander   Expander
	embedder   Embedder
	contextual Embedder
	searcher   HybridSearcher
	reranker   Reranker
	vehicles   VehicleReader
	cfg        Config
	logger     *zap.Logger
}

// New creates the orchestrator. contextual may be nil; requests asking for
// contextual embedding then use the plain embedder.
func New(
	expander Expander, embedder, contextual Embedder,
	searcher HybridSearcher, reranker Reranker, vehicles VehicleReader,
	cfg Config, logger *zap.Logger,
) *Service {
	if cfg.CandidateMultiplier <= 0 {
		cfg.CandidateMultiplier = DefaultCandidateMultiplier
	}
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = DefaultMaxCandidates
	}
	return &Service{
		expander:   expander,
		embedder:   embedder,
		contextual: contextual,
		searcher:   searcher,
		reranker:   reranker,
		vehicles:   vehicles,
		cfg:        cfg,
		logger:     logger,
	}
}

// Search runs the full pipeline for one request and assembles the response:
// final ordering first, then the offset/limit window.
func (s *Service) Search(ctx context.Context, req request.Request) (result.Response, error) {
	started := time.Now()

	var timings result.Timings
	meta := result.Metadata{
		SearchID:         uuid.NewString(),
		ExpansionEnabled: req.ExpandQuery(),
		RerankingEnabled: req.Rerank() && s.reranker.Enabled(),
	}

	searchQuery := req.Query()
	filters := req.Filters()
	if req.ExpandQuery() {
		stageStart := time.Now()
		exp := s.expander.Expand(ctx, req.Query())
		timings.Expansion = time.Since(stageStart)
		observeStage(metrics.StageExpansion, timings.Expansion)

		if !exp.Degraded() {
			searchQuery = exp.Expanded()
			filters = filter.Merge(req.Filters(), exp.Filters())
			meta.ExpandedQuery = exp.Expanded()
			meta.Synonyms = exp.Synonyms()
			meta.ExpansionUsed = true
		}
	}
	meta.FiltersApplied = filters.ToMap()

	stageStart := time.Now()
	embRes, err := s.embedderFor(&req).Embed(ctx, searchQuery)
	timings.Embedding = time.Since(stageStart)
	observeStage(metrics.StageEmbedding, timings.Embedding)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
		return result.Response{}, fmt.Errorf("%w: embed query: %w", domain.ErrEmbeddingUnavailable, err)
	}
	domain.UsageFromContext(ctx).AddTokens(embRes.TotalTokens)

	candidateLimit := s.candidateLimit(&req, meta.RerankingEnabled)

	stageStart = time.Now()
	hres, err := s.searcher.Search(ctx, hybrid.Params{
		Query:     searchQuery,
		Embedding: embRes.Embedding,
		Filters:   filters,
		Limit:     candidateLimit,
	})
	timings.Search = time.Since(stageStart)
	observeStage(metrics.StageSearch, timings.Search)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
		return result.Response{}, fmt.Errorf("hybrid search: %w", err)
	}
	meta.SearchDegraded = hres.Degraded
	meta.CacheHit = hres.CacheHit

	var ranked []result.Ranked
	if meta.RerankingEnabled && len(hres.Candidates) > 0 {
		stageStart = time.Now()
		ranked = s.reranker.Rerank(ctx, searchQuery, hres.Candidates, candidateLimit)
		timings.Rerank = time.Since(stageStart)
		observeStage(metrics.StageRerank, timings.Rerank)

		for i := range ranked {
			if ranked[i].Reranked() {
				meta.RerankingUsed = true
				break
			}
		}
	} else {
		ranked = make([]result.Ranked, len(hres.Candidates))
		for i := range hres.Candidates {
			ranked[i] = result.Passthrough(hres.Candidates[i])
		}
	}

	window := paginate(ranked, req.Offset(), req.Limit())
	timings.Total = time.Since(started)
	metrics.SearchRequestsTotal.WithLabelValues(outcome(meta)).Inc()

	s.logger.Info("Search completed",
		zap.String("search_id", meta.SearchID),
		zap.String("query_hash", queryHash(req.Query())),
		zap.Int("results", len(window)),
		zap.Int("total_found", hres.TotalFound),
		zap.Bool("expansion_used", meta.ExpansionUsed),
		zap.Bool("reranking_used", meta.RerankingUsed),
		zap.Bool("search_degraded", meta.SearchDegraded),
		zap.Bool("cache_hit", meta.CacheHit),
		zap.Duration("expansion", timings.Expansion),
		zap.Duration("embedding", timings.Embedding),
		zap.Duration("search", timings.Search),
		zap.Duration("rerank", timings.Rerank),
		zap.Duration("total", timings.Total),
	)

	return result.Response{
		Results:    window,
		TotalFound: hres.TotalFound,
		Timings:    timings,
		Metadata:   meta,
	}, nil
}

// Similar returns listings nearest to a seed vehicle: stored embedding when
// available, otherwise the seed's document text is embedded on the fly.
// No expansion, no re-ranking.
func (s *Service) Similar(ctx context.Context, req request.SimilarRequest) (result.Response, error) {
	started := time.Now()

	seed, err := s.vehicles.GetByID(ctx, req.VehicleID())
	if err != nil {
		return result.Response{}, fmt.Errorf("load seed vehicle: %w", err)
	}

	embedding, err := s.vehicles.Embedding(ctx, req.VehicleID())
	if err != nil {
		return result.Response{}, fmt.Errorf("load seed embedding: %w", err)
	}

	var timings result.Timings
	if len(embedding) == 0 {
		stageStart := time.Now()
		embRes, err := s.embedder.Embed(ctx, seed.Document(0))
		timings.Embedding = time.Since(stageStart)
		observeStage(metrics.StageEmbedding, timings.Embedding)
		if err != nil {
			return result.Response{}, fmt.Errorf("%w: embed seed vehicle: %w", domain.ErrEmbeddingUnavailable, err)
		}
		domain.UsageFromContext(ctx).AddTokens(embRes.TotalTokens)
		embedding = embRes.Embedding
	}

	stageStart := time.Now()
	rows, err := s.searcher.Similar(ctx, embedding, req.Limit(), req.VehicleID())
	timings.Search = time.Since(stageStart)
	observeStage(metrics.StageSearch, timings.Search)
	if err != nil {
		return result.Response{}, err
	}

	ranked := make([]result.Ranked, len(rows))
	for i := range rows {
		ranked[i] = result.Passthrough(rows[i])
	}

	timings.Total = time.Since(started)
	meta := result.Metadata{SearchID: uuid.NewString()}

	s.logger.Info("Similar search completed",
		zap.String("search_id", meta.SearchID),
		zap.String("vehicle_id", req.VehicleID()),
		zap.Int("results", len(ranked)),
		zap.Duration("total", timings.Total),
	)

	return result.Response{
		Results:    ranked,
		TotalFound: len(ranked),
		Timings:    timings,
		Metadata:   meta,
	}, nil
}

func (s *Service) embedderFor(req *request.Request) Embedder {
	if req.ContextualEmbedding() && s.contextual != nil {
		return s.contextual
	}
	return s.embedder
}

// candidateLimit sizes the fused pool: enough rows to fill the page at the
// requested offset, widened when the cross-encoder gets to re-order them,
// and capped so deep pages cannot inflate retrieval cost.
func (s *Service) candidateLimit(req *request.Request, reranking bool) int {
	n := req.Limit() + req.Offset()
	if reranking {
		n *= s.cfg.CandidateMultiplier
	}
	if n > s.cfg.MaxCandidates {
		n = s.cfg.MaxCandidates
	}
	return n
}

// paginate applies the offset/limit window to the final ordered list.
func paginate(rows []result.Ranked, offset, limit int) []result.Ranked {
	if offset >= len(rows) {
		return []result.Ranked{}
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}

func observeStage(stage string, d time.Duration) {
	metrics.PipelineStageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// outcome labels a completed request for the request counter.
func outcome(meta result.Metadata) string {
	if meta.SearchDegraded {
		return "degraded"
	}
	return "ok"
}

// queryHash is the privacy-safe query identifier used in logs.
func queryHash(q string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(q))))
	return hex.EncodeToString(sum[:6])
}
