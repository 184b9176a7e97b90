package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/JB5579/Otto-Match-V2-sub003/internal/domain/search/request"
	"github.com/JB5579/Otto-Match-V2-sub003/internal/domain/search/result"
	"github.com/JB5579/Otto-Match-V2-sub003/internal/domain/vehicle"
	healthuc "github.com/JB5579/Otto-Match-V2-sub003/internal/usecase/health"

	gochi "github.com/go-chi/chi/v5"
)

// --- Mocks ---

type mockSearchService struct {
	searchFn  func(ctx context.Context, req request.Request) (result.Response, error)
	similarFn func(ctx context.Context, req request.SimilarRequest) (result.Response, error)

	searchCalls  int
	similarCalls int
	lastRequest  request.Request
	lastSimilar  request.SimilarRequest
}

func (m *mockSearchService) Search(ctx context.Context, req request.Request) (result.Response, error) {
	m.searchCalls++
	m.lastRequest = req
	if m.searchFn != nil {
		return m.searchFn(ctx, req)
	}
	return result.Response{}, nil
}

func (m *mockSearchService) Similar(ctx context.Context, req request.SimilarRequest) (result.Response, error) {
	m.similarCalls++
	m.lastSimilar = req
	if m.similarFn != nil {
		return m.similarFn(ctx, req)
	}
	return result.Response{}, nil
}

type mockHealthService struct {
	report healthuc.Report
}

func (m *mockHealthService) Check(_ context.Context) healthuc.Report {
	if m.report.Status == "" {
		return healthuc.Report{
			Status: healthuc.Healthy,
			Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckOK},
		}
	}
	return m.report
}

// --- Helpers ---

func newTestServer(t *testing.T, search *mockSearchService, health *mockHealthService, defaults Defaults) http.Handler {
	t.Helper()
	if search == nil {
		search = &mockSearchService{}
	}
	if health == nil {
		health = &mockHealthService{}
	}
	srv := NewServer(search, health, defaults, zap.NewNop())
	r := gochi.NewRouter()
	srv.Routes(r)
	return r
}

func doRequest(t *testing.T, h http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader = http.NoBody
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeJSON[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func sampleResponse() result.Response {
	veh := vehicle.Reconstruct(
		"veh-1", 2021, "Toyota", "Tacoma",
		"TRD", "Truck", "Gasoline", 32000, 21000, "well maintained",
	)

	h := result.NewHybrid(veh, 0.016, 0.91, 0.4)
	ranked := result.NewRanked(h, 0.87)

	return result.Response{
		Results:    []result.Ranked{ranked},
		TotalFound: 1,
		Timings: result.Timings{
			Expansion: 12 * time.Millisecond,
			Embedding: 40 * time.Millisecond,
			Search:    33 * time.Millisecond,
			Rerank:    110 * time.Millisecond,
			Total:     201 * time.Millisecond,
		},
		Metadata: result.Metadata{
			SearchID:         "search-1",
			ExpandedQuery:    "affordable pickup truck",
			Synonyms:         []string{"pickup"},
			FiltersApplied:   map[string]any{"vehicle_type": "Truck"},
			ExpansionEnabled: true,
			ExpansionUsed:    true,
			RerankingEnabled: true,
			RerankingUsed:    true,
		},
	}
}
