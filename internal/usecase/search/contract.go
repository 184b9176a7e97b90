package search

import (
	"context"

	"github.com/JB5579/Otto-Match-V2-sub003/internal/domain"
	"github.com/JB5579/Otto-Match-V2-sub003/internal/domain/search/expansion"
	"github.com/JB5579/Otto-Match-V2-sub003/internal/domain/search/result"
	"github.com/JB5579/Otto-Match-V2-sub003/internal/domain/vehicle"
	"github.com/JB5579/Otto-Match-V2-sub003/internal/usecase/hybrid"
)

// Expander enriches a raw query with synonyms and extracted filters.
// Implementations degrade internally and never fail.
type Expander interface {
	Expand(ctx context.Context, query string) expansion.Expansion
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// HybridSearcher runs the fused retrieval stage and vector-only lookups.
type HybridSearcher interface {
	Search(ctx context.Context, p hybrid.Params) (hybrid.Result, error)
	Similar(ctx context.Context, embedding []float32, limit int, excludeID string) ([]result.Hybrid, error)
}

// Reranker re-orders fused candidates with a cross-encoder. Rerank never
// fails; Enabled reports whether a scorer is configured at all.
type Reranker interface {
	Rerank(ctx context.Context, query string, candidates []result.Hybrid, topK int) []result.Ranked
	Enabled() bool
}

// VehicleReader loads listings and their stored embeddings, for seeding
// similar-vehicle searches.
type VehicleReader interface {
	GetByID(ctx context.Context, id string) (vehicle.Vehicle, error)
	Embedding(ctx context.Context, id string) ([]float32, error)
}
