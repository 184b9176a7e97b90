// Package result defines the records produced by the fusion and re-ranking
// stages, and the response shape the orchestrator assembles. Stages rebuild
// records rather than mutate them.
package result

import (
	"time"

	"github.com/JB5579/Otto-Match-V2-sub003/internal/domain/vehicle"
)

// Hybrid is a single fused search candidate. Slice order is the fusion order.
type Hybrid struct {
	vehicle      vehicle.Vehicle
	hybridScore  float64
	vectorScore  float64
	keywordScore float64
}

// NewHybrid creates a fused candidate.
func NewHybrid(v vehicle.Vehicle, hybridScore, vectorScore, keywordScore float64) Hybrid {
	return Hybrid{
		vehicle:      v,
		hybridScore:  hybridScore,
		vectorScore:  vectorScore,
		keywordScore: keywordScore,
	}
}

// Vehicle returns the listing this candidate refers to.
func (h *Hybrid) Vehicle() vehicle.Vehicle { return h.vehicle }

// HybridScore returns the fused (post-RRF) relevance score.
func (h *Hybrid) HybridScore() float64 { return h.hybridScore }

// VectorScore returns the raw vector similarity signal.
func (h *Hybrid) VectorScore() float64 { return h.vectorScore }

// KeywordScore returns the raw keyword/full-text rank signal.
func (h *Hybrid) KeywordScore() float64 { return h.keywordScore }

// Ranked is a candidate after the re-ranking stage (or its passthrough).
type Ranked struct {
	hybrid        Hybrid
	originalScore float64
	rerankScore   float64
	finalScore    float64
	reranked      bool
}

// NewRanked creates a cross-encoder scored result. rerankScore must already
// be sigmoid-normalized to [0,1]; it becomes the final score.
func NewRanked(h Hybrid, rerankScore float64) Ranked {
	return Ranked{
		hybrid:        h,
		originalScore: h.HybridScore(),
		rerankScore:   rerankScore,
		finalScore:    rerankScore,
		reranked:      true,
	}
}

// Passthrough creates a result that keeps the fused ordering: the rerank and
// final scores equal the original fused score.
func Passthrough(h Hybrid) Ranked {
	s := h.HybridScore()
	return Ranked{hybrid: h, originalScore: s, rerankScore: s, finalScore: s}
}

// Vehicle returns the listing this result refers to.
func (r *Ranked) Vehicle() vehicle.Vehicle { return r.hybrid.Vehicle() }

// Hybrid returns the pre-rerank candidate.
func (r *Ranked) Hybrid() Hybrid { return r.hybrid }

// OriginalScore returns the fused score the candidate entered re-ranking with.
func (r *Ranked) OriginalScore() float64 { return r.originalScore }

// RerankScore returns the normalized cross-encoder score, or the original
// score for passthrough results.
func (r *Ranked) RerankScore() float64 { return r.rerankScore }

// FinalScore returns the score the response ordering is based on.
func (r *Ranked) FinalScore() float64 { return r.finalScore }

// Reranked reports whether the cross-encoder actually scored this result.
func (r *Ranked) Reranked() bool { return r.reranked }

// Timings carries per-stage wall-clock durations. Each stage is measured
// independently; they are not cumulative.
type Timings struct {
	Expansion time.Duration
	Embedding time.Duration
	Search    time.Duration
	Rerank    time.Duration
	Total     time.Duration
}

// Metadata describes how a response was produced.
type Metadata struct {
	SearchID         string
	ExpandedQuery    string
	Synonyms         []string
	FiltersApplied   map[string]any
	ExpansionEnabled bool
	ExpansionUsed    bool
	RerankingEnabled bool
	RerankingUsed    bool
	SearchDegraded   bool
	CacheHit         bool
}

// Response is the final orchestrator output.
type Response struct {
	Results    []Ranked
	TotalFound int
	Timings    Timings
	Metadata   Metadata
}
