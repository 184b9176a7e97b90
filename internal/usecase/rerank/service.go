// Package rerank implements the cross-encoder re-ranking stage. Candidates
// are scored in concurrent batches under a single shared latency budget;
// any failure degrades to the fused ordering instead of surfacing an error.
package rerank

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JB5579/Otto-Match-V2-sub003/internal/domain/search/result"
	"github.com/JB5579/Otto-Match-V2-sub003/internal/metrics"
)

// Defaults applied when Config fields are zero.
const (
	DefaultBatchSize = 10
	DefaultBudget    = 250 * time.Millisecond
)

// maxDocumentDescription bounds the description part of the text sent to
// the cross-encoder.
const maxDocumentDescription = 300

// Config tunes batching and the shared scoring budget.
type Config struct {
	BatchSize int
	Budget    time.Duration
}

// Service scores fused candidates with a cross-encoder. A nil scorer
// disables the stage: Rerank then returns the fused order unchanged.
type Service struct {
	scorer Scorer
	cfg    Config
	logger *zap.Logger
}

// New creates a re-ranking service. scorer may be nil when no cross-encoder
// is configured.
func New(scorer Scorer, cfg Config, logger *zap.Logger) *Service {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Budget <= 0 {
		cfg.Budget = DefaultBudget
	}
	return &Service{scorer: scorer, cfg: cfg, logger: logger}
}

// Enabled reports whether a cross-encoder is configured.
func (s *Service) Enabled() bool { return s.scorer != nil }

// Rerank re-orders candidates by cross-encoder relevance and returns the top
// topK. It never fails: a failed batch keeps the fused scores for its own
// candidates, and budget exhaustion aborts the whole stage to the fused order.
func (s *Service) Rerank(ctx context.Context, query string, candidates []result.Hybrid, topK int) []result.Ranked {
	if topK <= 0 || topK > len(candidates) {
		topK = len(candidates)
	}
	if len(candidates) == 0 || s.scorer == nil {
		return passthrough(candidates, topK)
	}

	scores := make([]float64, len(candidates))
	scored := make([]bool, len(candidates))

	bctx, cancel := context.WithTimeout(ctx, s.cfg.Budget)
	defer cancel()

	// Each goroutine writes a disjoint index range; Wait orders the reads
	// below after those writes. Batch errors stay out of the group so one
	// failed batch cannot cancel its siblings.
	g, gctx := errgroup.WithContext(bctx)
	for start := 0; start < len(candidates); start += s.cfg.BatchSize {
		end := start + s.cfg.BatchSize
		if end > len(candidates) {
			end = len(candidates)
		}
		batch := candidates[start:end]
		offset := start

		g.Go(func() error {
			docs := make([]string, len(batch))
			for i := range batch {
				v := batch[i].Vehicle()
				docs[i] = v.Document(maxDocumentDescription)
			}

			logits, err := s.scorer.Score(gctx, query, docs)
			if err == nil && len(logits) != len(docs) {
				err = fmt.Errorf("scorer returned %d scores for %d documents", len(logits), len(docs))
			}
			if err != nil {
				metrics.PipelineDegradedTotal.WithLabelValues(metrics.StageRerank, "batch_failed").Inc()
				s.logger.Warn("Rerank batch failed, keeping fused scores for its candidates",
					zap.Int("batch_offset", offset),
					zap.Int("batch_size", len(batch)),
					zap.Error(err),
				)
				return nil
			}

			for i := range logits {
				scores[offset+i] = sigmoid(logits[i])
				scored[offset+i] = true
			}
			return nil
		})
	}
	_ = g.Wait()

	if bctx.Err() != nil {
		metrics.PipelineDegradedTotal.WithLabelValues(metrics.StageRerank, "budget_exhausted").Inc()
		s.logger.Warn("Rerank budget exhausted, returning fused order",
			zap.Duration("budget", s.cfg.Budget),
			zap.Int("candidates", len(candidates)),
		)
		return passthrough(candidates, topK)
	}

	ranked := make([]result.Ranked, len(candidates))
	for i := range candidates {
		if scored[i] {
			ranked[i] = result.NewRanked(candidates[i], scores[i])
		} else {
			ranked[i] = result.Passthrough(candidates[i])
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].FinalScore() > ranked[j].FinalScore()
	})
	return ranked[:topK]
}

// passthrough converts candidates in fused order, without re-sorting.
func passthrough(candidates []result.Hybrid, topK int) []result.Ranked {
	out := make([]result.Ranked, topK)
	for i := 0; i < topK; i++ {
		out[i] = result.Passthrough(candidates[i])
	}
	return out
}

// sigmoid maps a raw model logit into (0, 1).
func sigmoid(x float64) float64 { return 1 / (1 + math.Exp(-x)) }
