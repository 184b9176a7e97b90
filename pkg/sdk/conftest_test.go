package ottomatch

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newTestClient spins up an httptest server around handler and returns
// a Client pointed at it.
func newTestClient(t *testing.T, handler http.Handler, opts ...Option) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(srv.URL, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func respondJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatalf("encode response: %v", err)
	}
}

func sampleResponse() SearchResponse {
	return SearchResponse{
		Results: []SearchResult{
			{
				Vehicle: Vehicle{
					ID:          "veh-1",
					Year:        2021,
					Make:        "Toyota",
					Model:       "Tacoma",
					Trim:        "TRD",
					VehicleType: "Truck",
					FuelType:    "Gasoline",
					Price:       32000,
					Mileage:     21000,
					Description: "well maintained",
				},
				HybridScore:   0.4,
				VectorScore:   0.91,
				KeywordScore:  0.016,
				OriginalScore: 0.4,
				RerankScore:   0.87,
				FinalScore:    0.87,
				Reranked:      true,
			},
		},
		TotalFound: 1,
		Timings: Timings{
			ExpansionMS: 12,
			EmbeddingMS: 40,
			SearchMS:    33,
			RerankMS:    110,
			TotalMS:     201,
		},
		Metadata: Metadata{
			SearchID:         "search-1",
			ExpandedQuery:    "reliable pickup truck",
			Synonyms:         []string{"pickup"},
			FiltersApplied:   map[string]any{"make": "Toyota"},
			ExpansionEnabled: true,
			ExpansionUsed:    true,
			RerankingEnabled: true,
			RerankingUsed:    true,
		},
	}
}
