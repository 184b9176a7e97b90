package search

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/JB5579/Otto-Match-V2-sub003/internal/domain"
	"github.com/JB5579/Otto-Match-V2-sub003/internal/domain/search/expansion"
	"github.com/JB5579/Otto-Match-V2-sub003/internal/domain/search/filter"
	"github.com/JB5579/Otto-Match-V2-sub003/internal/domain/search/request"
	"github.com/JB5579/Otto-Match-V2-sub003/internal/domain/search/result"
	"github.com/JB5579/Otto-Match-V2-sub003/internal/domain/vehicle"
	"github.com/JB5579/Otto-Match-V2-sub003/internal/usecase/hybrid"
)

// --- Mocks ---

type mockExpander struct {
	exp       expansion.Expansion
	calls     int
	lastQuery string
}

func (m *mockExpander) Expand(_ context.Context, query string) expansion.Expansion {
	m.calls++
	m.lastQuery = query
	return m.exp
}

type mockEmbedder struct {
	vec      []float32
	err      error
	calls    int
	lastText string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.calls++
	m.lastText = text
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec, PromptTokens: 3, TotalTokens: 3}, nil
}

type mockHybrid struct {
	res        hybrid.Result
	err        error
	calls      int
	lastParams hybrid.Params

	similarRows   []result.Hybrid
	similarErr    error
	similarCalls  int
	lastEmbedding []float32
	lastLimit     int
	lastExcludeID string
}

func (m *mockHybrid) Search(_ context.Context, p hybrid.Params) (hybrid.Result, error) {
	m.calls++
	m.lastParams = p
	return m.res, m.err
}

func (m *mockHybrid) Similar(_ context.Context, embedding []float32, limit int, excludeID string) ([]result.Hybrid, error) {
	m.similarCalls++
	m.lastEmbedding = embedding
	m.lastLimit = limit
	m.lastExcludeID = excludeID
	return m.similarRows, m.similarErr
}

// mockReranker marks every candidate reranked at its fused score unless an
// explicit result is configured.
type mockReranker struct {
	result         []result.Ranked
	enabled        bool
	calls          int
	lastQuery      string
	lastTopK       int
	lastCandidates []result.Hybrid
}

func (m *mockReranker) Rerank(_ context.Context, query string, candidates []result.Hybrid, topK int) []result.Ranked {
	m.calls++
	m.lastQuery = query
	m.lastCandidates = candidates
	m.lastTopK = topK

	if m.result != nil {
		return m.result
	}
	if topK > len(candidates) {
		topK = len(candidates)
	}
	out := make([]result.Ranked, topK)
	for i := 0; i < topK; i++ {
		out[i] = result.NewRanked(candidates[i], candidates[i].HybridScore())
	}
	return out
}

func (m *mockReranker) Enabled() bool { return m.enabled }

type mockVehicles struct {
	veh       vehicle.Vehicle
	getErr    error
	getCalls  int
	embedding []float32
	embErr    error
	embCalls  int
}

func (m *mockVehicles) GetByID(_ context.Context, _ string) (vehicle.Vehicle, error) {
	m.getCalls++
	return m.veh, m.getErr
}

func (m *mockVehicles) Embedding(_ context.Context, _ string) ([]float32, error) {
	m.embCalls++
	return m.embedding, m.embErr
}

// --- Helpers ---

type testDeps struct {
	expander   *mockExpander
	embedder   *mockEmbedder
	contextual *mockEmbedder
	searcher   *mockHybrid
	reranker   *mockReranker
	vehicles   *mockVehicles
}

func newTestService(t *testing.T, d *testDeps) *Service {
	t.Helper()
	if d.expander == nil {
		d.expander = &mockExpander{}
	}
	if d.embedder == nil {
		d.embedder = &mockEmbedder{vec: []float32{0.1, 0.2}}
	}
	if d.contextual == nil {
		d.contextual = &mockEmbedder{vec: []float32{0.3, 0.4}}
	}
	if d.searcher == nil {
		d.searcher = &mockHybrid{}
	}
	if d.reranker == nil {
		d.reranker = &mockReranker{enabled: true}
	}
	if d.vehicles == nil {
		d.vehicles = &mockVehicles{}
	}
	return New(
		d.expander, d.embedder, d.contextual,
		d.searcher, d.reranker, d.vehicles,
		Config{}, zap.NewNop(),
	)
}

func newRequest(t *testing.T, query string, f filter.Filters, limit, offset int, flags request.Flags) request.Request {
	t.Helper()
	req, err := request.New(query, f, limit, offset, flags)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return req
}

func newFilters(t *testing.T, raw map[string]any) filter.Filters {
	t.Helper()
	f, dropped := filter.FromMap(raw)
	if len(dropped) > 0 {
		t.Fatalf("filter fixture dropped fields: %v", dropped)
	}
	return f
}

func candidate(id string, score float64) result.Hybrid {
	v := vehicle.Reconstruct(id, 2020, "Toyota", "Tacoma", "", "Truck", "Gasoline",
		30000, 40000, "listing "+id)
	return result.NewHybrid(v, score, score, 0)
}

func candidates(n int) []result.Hybrid {
	out := make([]result.Hybrid, n)
	for i := range out {
		out[i] = candidate(string(rune('a'+i)), float64(n-i)/100)
	}
	return out
}

func rankedIDs(rows []result.Ranked) []string {
	out := make([]string, len(rows))
	for i := range rows {
		v := rows[i].Vehicle()
		out[i] = v.ID()
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
