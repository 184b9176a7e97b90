package request

import (
	"fmt"
	"strings"

	"github.com/JB5579/Otto-Match-V2-sub003/internal/domain/search/filter"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 1000
	DefaultLimit   = 20
	MaxLimit       = 100
	MaxOffset      = 1000
)

// Flags toggle the optional pipeline stages per request.
type Flags struct {
	ExpandQuery         bool
	Rerank              bool
	ContextualEmbedding bool
}

// Request is a validated search query. Immutable once constructed.
type Request struct {
	query   string
	filters filter.Filters
	limit   int
	offset  int
	flags   Flags
}

// New validates and normalizes search parameters.
// Defaults: limit=20. Limit is clamped to MaxLimit.
func New(query string, filters filter.Filters, limit, offset int, flags Flags) (Request, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Request{}, fmt.Errorf("query is required")
	}
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		return Request{}, fmt.Errorf("offset must not be negative")
	}
	if offset > MaxOffset {
		return Request{}, fmt.Errorf("offset too large (max %d)", MaxOffset)
	}

	return Request{
		query:   query,
		filters: filters,
		limit:   limit,
		offset:  offset,
		flags:   flags,
	}, nil
}

// Query returns the search query text.
func (r *Request) Query() string { return r.query }

// Filters returns the explicit structured filters.
func (r *Request) Filters() filter.Filters { return r.filters }

// Limit returns the maximum results to return.
func (r *Request) Limit() int { return r.limit }

// Offset returns the pagination offset into the final ranked list.
func (r *Request) Offset() int { return r.offset }

// ExpandQuery reports whether LLM query expansion is requested.
func (r *Request) ExpandQuery() bool { return r.flags.ExpandQuery }

// Rerank reports whether cross-encoder re-ranking is requested.
func (r *Request) Rerank() bool { return r.flags.Rerank }

// ContextualEmbedding reports whether the contextual embedder is requested.
func (r *Request) ContextualEmbedding() bool { return r.flags.ContextualEmbedding }
