package chi

import (
	"github.com/JB5579/Otto-Match-V2-sub003/internal/domain/search/result"
	"github.com/JB5579/Otto-Match-V2-sub003/internal/domain/vehicle"
)

// Error codes returned in the error envelope.
const (
	codeBadRequest           = "bad_request"
	codeInvalidArgument      = "invalid_argument"
	codeNotFound             = "not_found"
	codeUnauthorized         = "unauthorized"
	codeRateLimited          = "rate_limited"
	codeEmbeddingUnavailable = "embedding_unavailable"
	codeSearchUnavailable    = "search_unavailable"
	codeInternalError        = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// searchRequestDTO is the POST /v1/search body. Flag pointers distinguish
// "not sent" (server default applies) from an explicit false.
type searchRequestDTO struct {
	Query               string         `json:"query"`
	Filters             map[string]any `json:"filters,omitempty"`
	Limit               int            `json:"limit,omitempty"`
	Offset              int            `json:"offset,omitempty"`
	ExpandQuery         *bool          `json:"expand_query,omitempty"`
	Rerank              *bool          `json:"rerank,omitempty"`
	ContextualEmbedding *bool          `json:"contextual_embedding,omitempty"`
}

type vehicleDTO struct {
	ID          string  `json:"id"`
	Year        int     `json:"year"`
	Make        string  `json:"make"`
	Model       string  `json:"model"`
	Trim        string  `json:"trim,omitempty"`
	VehicleType string  `json:"vehicle_type,omitempty"`
	FuelType    string  `json:"fuel_type,omitempty"`
	Price       float64 `json:"price,omitempty"`
	Mileage     int     `json:"mileage,omitempty"`
	Description string  `json:"description,omitempty"`
}

type searchResultDTO struct {
	Vehicle       vehicleDTO `json:"vehicle"`
	HybridScore   float64    `json:"hybrid_score"`
	VectorScore   float64    `json:"vector_score"`
	KeywordScore  float64    `json:"keyword_score"`
	OriginalScore float64    `json:"original_score"`
	RerankScore   float64    `json:"rerank_score"`
	FinalScore    float64    `json:"final_score"`
	Reranked      bool       `json:"reranked"`
}

type timingsDTO struct {
	ExpansionMS int64 `json:"expansion_ms"`
	EmbeddingMS int64 `json:"embedding_ms"`
	SearchMS    int64 `json:"search_ms"`
	RerankMS    int64 `json:"rerank_ms"`
	TotalMS     int64 `json:"total_ms"`
}

type metadataDTO struct {
	SearchID         string         `json:"search_id"`
	ExpandedQuery    string         `json:"expanded_query,omitempty"`
	Synonyms         []string       `json:"synonyms,omitempty"`
	FiltersApplied   map[string]any `json:"filters_applied,omitempty"`
	ExpansionEnabled bool           `json:"expansion_enabled"`
	ExpansionUsed    bool           `json:"expansion_used"`
	RerankingEnabled bool           `json:"reranking_enabled"`
	RerankingUsed    bool           `json:"reranking_used"`
	SearchDegraded   bool           `json:"search_degraded"`
	CacheHit         bool           `json:"cache_hit"`
}

type searchResponseDTO struct {
	Results    []searchResultDTO `json:"results"`
	TotalFound int               `json:"total_found"`
	Timings    timingsDTO        `json:"timings"`
	Metadata   metadataDTO       `json:"metadata"`
}

type healthResponseDTO struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func vehicleToDTO(v vehicle.Vehicle) vehicleDTO {
	return vehicleDTO{
		ID:          v.ID(),
		Year:        v.Year(),
		Make:        v.Make(),
		Model:       v.Model(),
		Trim:        v.Trim(),
		VehicleType: v.VehicleType(),
		FuelType:    v.FuelType(),
		Price:       v.Price(),
		Mileage:     v.Mileage(),
		Description: v.Description(),
	}
}

func responseToDTO(resp result.Response) searchResponseDTO {
	items := make([]searchResultDTO, len(resp.Results))
	for i := range resp.Results {
		r := &resp.Results[i]
		h := r.Hybrid()
		items[i] = searchResultDTO{
			Vehicle:       vehicleToDTO(r.Vehicle()),
			HybridScore:   h.HybridScore(),
			VectorScore:   h.VectorScore(),
			KeywordScore:  h.KeywordScore(),
			OriginalScore: r.OriginalScore(),
			RerankScore:   r.RerankScore(),
			FinalScore:    r.FinalScore(),
			Reranked:      r.Reranked(),
		}
	}

	return searchResponseDTO{
		Results:    items,
		TotalFound: resp.TotalFound,
		Timings: timingsDTO{
			ExpansionMS: resp.Timings.Expansion.Milliseconds(),
			EmbeddingMS: resp.Timings.Embedding.Milliseconds(),
			SearchMS:    resp.Timings.Search.Milliseconds(),
			RerankMS:    resp.Timings.Rerank.Milliseconds(),
			TotalMS:     resp.Timings.Total.Milliseconds(),
		},
		Metadata: metadataDTO{
			SearchID:         resp.Metadata.SearchID,
			ExpandedQuery:    resp.Metadata.ExpandedQuery,
			Synonyms:         resp.Metadata.Synonyms,
			FiltersApplied:   resp.Metadata.FiltersApplied,
			ExpansionEnabled: resp.Metadata.ExpansionEnabled,
			ExpansionUsed:    resp.Metadata.ExpansionUsed,
			RerankingEnabled: resp.Metadata.RerankingEnabled,
			RerankingUsed:    resp.Metadata.RerankingUsed,
			SearchDegraded:   resp.Metadata.SearchDegraded,
			CacheHit:         resp.Metadata.CacheHit,
		},
	}
}
