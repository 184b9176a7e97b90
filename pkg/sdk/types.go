package ottomatch

// SearchRequest is the body of POST /v1/search.
//
// The flag pointers distinguish "not sent" (server default applies) from
// an explicit false; use Bool to build them inline.
type SearchRequest struct {
	Query               string         `json:"query"`
	Filters             map[string]any `json:"filters,omitempty"`
	Limit               int            `json:"limit,omitempty"`
	Offset              int            `json:"offset,omitempty"`
	ExpandQuery         *bool          `json:"expand_query,omitempty"`
	Rerank              *bool          `json:"rerank,omitempty"`
	ContextualEmbedding *bool          `json:"contextual_embedding,omitempty"`
}

// Bool returns a pointer to v, for the optional request flags.
func Bool(v bool) *bool { return &v }

// Vehicle is a marketplace listing.
type Vehicle struct {
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

// SearchResult is a single ranked hit with its score breakdown.
// Rerank and final scores equal the hybrid score when the result
// skipped re-ranking (Reranked false).
type SearchResult struct {
	Vehicle       Vehicle `json:"vehicle"`
	HybridScore   float64 `json:"hybrid_score"`
	VectorScore   float64 `json:"vector_score"`
	KeywordScore  float64 `json:"keyword_score"`
	OriginalScore float64 `json:"original_score"`
	RerankScore   float64 `json:"rerank_score"`
	FinalScore    float64 `json:"final_score"`
	Reranked      bool    `json:"reranked"`
}

// Timings reports per-stage pipeline latency in milliseconds.
type Timings struct {
	ExpansionMS int64 `json:"expansion_ms"`
	EmbeddingMS int64 `json:"embedding_ms"`
	SearchMS    int64 `json:"search_ms"`
	RerankMS    int64 `json:"rerank_ms"`
	TotalMS     int64 `json:"total_ms"`
}

// Metadata describes how the pipeline processed the request: which
// optional stages ran, whether any degraded, and the filters applied.
type Metadata struct {
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

// SearchResponse is the result of a search or similar-vehicles call.
type SearchResponse struct {
	Results    []SearchResult `json:"results"`
	TotalFound int            `json:"total_found"`
	Timings    Timings        `json:"timings"`
	Metadata   Metadata       `json:"metadata"`
}

// HealthStatus is the aggregated component health of the service.
type HealthStatus struct {
	Status string            `json:"status"` // "ok", "degraded", "error"
	Checks map[string]string `json:"checks"` // component → "ok"/"error"
}
