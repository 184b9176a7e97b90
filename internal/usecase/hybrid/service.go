// Package hybrid implements the multi-signal retrieval stage. The primary
// path is a single server-side fused call; any primary failure falls back
// to running the vector and keyword signals concurrently and fusing them
// client-side with weighted Reciprocal Rank Fusion.
package hybrid

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JB5579/Otto-Match-V2-sub003/internal/cache"
	"github.com/JB5579/Otto-Match-V2-sub003/internal/domain"
	"github.com/JB5579/Otto-Match-V2-sub003/internal/domain/search/filter"
	"github.com/JB5579/Otto-Match-V2-sub003/internal/domain/search/result"
	"github.com/JB5579/Otto-Match-V2-sub003/internal/metrics"
)

// Defaults applied when Config fields are zero. The RRF constant follows
// Cormack et al. 2009; the weights favor the vector signal slightly.
const (
	DefaultK             = 60
	DefaultVectorWeight  = 0.4
	DefaultKeywordWeight = 0.3
	DefaultFilterWeight  = 0.3
	DefaultCacheTTL      = 5 * time.Minute
	DefaultCacheSize     = 500
)

// fallbackFetchFactor over-fetches each fallback signal so fusion sees a
// wider candidate union than the requested limit.
const fallbackFetchFactor = 3

// Config tunes fusion and the result cache.
type Config struct {
	K             int
	VectorWeight  float64
	KeywordWeight float64
	FilterWeight  float64
	CacheTTL      time.Duration
	CacheSize     int
}

// Params carries one hybrid search invocation. Query feeds the keyword
// signal (the expanded query when expansion ran), Embedding the vector one.
type Params struct {
	Query     string
	Embedding []float32
	Filters   filter.Filters
	Limit     int
}

// Result is the hybrid stage outcome. Degraded marks fallback execution;
// the flag persists in cached entries.
type Result struct {
	Candidates []result.Hybrid
	TotalFound int
	Degraded   bool
	CacheHit   bool
}

// Service runs hybrid retrieval with an in-process result cache.
type Service struct {
	repo   Repository
	cfg    Config
	cache  *cache.Cache[[32]byte, Result]
	logger *zap.Logger
}

// New creates a hybrid search service.
func New(repo Repository, cfg Config, logger *zap.Logger) (*Service, error) {
	if cfg.K <= 0 {
		cfg.K = DefaultK
	}
	if cfg.VectorWeight <= 0 {
		cfg.VectorWeight = DefaultVectorWeight
	}
	if cfg.KeywordWeight <= 0 {
		cfg.KeywordWeight = DefaultKeywordWeight
	}
	if cfg.FilterWeight <= 0 {
		cfg.FilterWeight = DefaultFilterWeight
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultCacheSize
	}

	c, err := cache.New[[32]byte, Result](cfg.CacheSize, cfg.CacheTTL)
	if err != nil {
		return nil, fmt.Errorf("create hybrid cache: %w", err)
	}

	return &Service{repo: repo, cfg: cfg, cache: c, logger: logger}, nil
}

// Search returns up to p.Limit fused candidates. It fails only when every
// signal is down; a fused-path failure degrades to client-side fusion.
func (s *Service) Search(ctx context.Context, p Params) (Result, error) {
	key := cache.Key(
		strings.ToLower(strings.TrimSpace(p.Query)),
		p.Filters.CanonicalJSON(),
		strconv.Itoa(p.Limit),
	)

	if hit, ok := s.cache.Get(key); ok {
		metrics.SearchCacheTotal.WithLabelValues("hybrid", "hit").Inc()
		hit.CacheHit = true
		return hit, nil
	}
	metrics.SearchCacheTotal.WithLabelValues("hybrid", "miss").Inc()

	res, err := s.searchFused(ctx, p)
	if err != nil {
		metrics.PipelineDegradedTotal.WithLabelValues(metrics.StageSearch, "fused_unavailable").Inc()
		s.logger.Warn("Fused search failed, falling back to client-side fusion", zap.Error(err))

		res, err = s.searchFallback(ctx, p)
		if err != nil {
			return Result{}, err
		}
	}

	if ctx.Err() == nil {
		s.cache.Set(key, res)
	}
	return res, nil
}

// Similar returns the candidates nearest to the given embedding, excluding
// the seed listing. Vector signal only, no fusion, no cache.
func (s *Service) Similar(ctx context.Context, embedding []float32, limit int, excludeID string) ([]result.Hybrid, error) {
	rows, err := s.repo.SearchVector(ctx, embedding, filter.Filters{}, limit, excludeID)
	if err != nil {
		return nil, fmt.Errorf("%w: similar search: %w", domain.ErrSearchUnavailable, err)
	}
	return rows, nil
}

func (s *Service) searchFused(ctx context.Context, p Params) (Result, error) {
	rows, err := s.repo.SearchFused(
		ctx, p.Embedding, p.Query, p.Filters,
		s.cfg.K, s.cfg.VectorWeight, s.cfg.KeywordWeight, s.cfg.FilterWeight, p.Limit,
	)
	if err != nil {
		return Result{}, err
	}
	return Result{Candidates: rows, TotalFound: len(rows)}, nil
}

// searchFallback fans the two signals out concurrently. A single failing
// signal degrades to an empty slice for that signal; branch errors are kept
// out of the errgroup so one signal cannot cancel its sibling. Both signals
// failing is a hard error.
func (s *Service) searchFallback(ctx context.Context, p Params) (Result, error) {
	fetchLimit := p.Limit * fallbackFetchFactor

	var (
		vectorRows, keywordRows []result.Hybrid
		vectorErr, keywordErr   error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		vectorRows, vectorErr = s.repo.SearchVector(gctx, p.Embedding, p.Filters, fetchLimit, "")
		if vectorErr != nil {
			metrics.PipelineDegradedTotal.WithLabelValues(metrics.StageSearch, "vector_failed").Inc()
			s.logger.Warn("Vector signal failed", zap.Error(vectorErr))
			vectorRows = nil
		}
		return nil
	})
	g.Go(func() error {
		keywordRows, keywordErr = s.repo.SearchKeyword(gctx, p.Query, p.Filters, fetchLimit)
		if keywordErr != nil {
			metrics.PipelineDegradedTotal.WithLabelValues(metrics.StageSearch, "keyword_failed").Inc()
			s.logger.Warn("Keyword signal failed", zap.Error(keywordErr))
			keywordRows = nil
		}
		return nil
	})
	_ = g.Wait()

	if vectorErr != nil && keywordErr != nil {
		return Result{}, domain.NewSignalError(vectorErr, keywordErr)
	}

	fused := fuseRRF(
		vectorRows, keywordRows, !p.Filters.IsZero(),
		weights{vector: s.cfg.VectorWeight, keyword: s.cfg.KeywordWeight, filter: s.cfg.FilterWeight},
		s.cfg.K, p.Limit,
	)

	return Result{Candidates: fused, TotalFound: len(fused), Degraded: true}, nil
}
