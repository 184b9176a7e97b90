package hybrid

import (
	"context"

	"github.com/JB5579/Otto-Match-V2-sub003/internal/domain/search/filter"
	"github.com/JB5579/Otto-Match-V2-sub003/internal/domain/search/result"
)

// Repository is the storage contract for hybrid retrieval.
type Repository interface {
	// SearchFused runs the server-side fused search (primary path): signals
	// are scored and combined inside the store, rows arrive pre-limited.
	SearchFused(
		ctx context.Context, embedding []float32, query string, filters filter.Filters,
		k int, vectorWeight, keywordWeight, filterWeight float64, limit int,
	) ([]result.Hybrid, error)

	// SearchVector returns vector-similarity candidates, best-first.
	// Fallback signal; also serves similar-vehicle lookups.
	SearchVector(
		ctx context.Context, embedding []float32, filters filter.Filters, limit int, excludeID string,
	) ([]result.Hybrid, error)

	// SearchKeyword returns full-text candidates, best-first. Fallback signal.
	SearchKeyword(
		ctx context.Context, query string, filters filter.Filters, limit int,
	) ([]result.Hybrid, error)
}
