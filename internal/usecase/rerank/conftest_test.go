package rerank

import (
	"context"
	"errors"
	"sync"

	"github.com/JB5579/Otto-Match-V2-sub003/internal/domain/search/result"
	"github.com/JB5579/Otto-Match-V2-sub003/internal/domain/vehicle"
)

// --- Mocks ---

// mockScorer answers Score calls from a per-document logit map. Behavior
// fields are set before Rerank runs; the mutex guards the call capture,
// since batches arrive concurrently.
type mockScorer struct {
	logits     map[string]float64
	err        error
	failOn     func(docs []string) bool
	block      bool
	truncateBy int

	mu      sync.Mutex
	calls   int
	batches [][]string
	queries []string
}

func (m *mockScorer) Score(ctx context.Context, query string, docs []string) ([]float64, error) {
	m.mu.Lock()
	m.calls++
	captured := make([]string, len(docs))
	copy(captured, docs)
	m.batches = append(m.batches, captured)
	m.queries = append(m.queries, query)
	m.mu.Unlock()

	if m.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if m.err != nil {
		return nil, m.err
	}
	if m.failOn != nil && m.failOn(docs) {
		return nil, errors.New("batch failed")
	}

	out := make([]float64, len(docs))
	for i, d := range docs {
		out[i] = m.logits[d]
	}
	if m.truncateBy > 0 && m.truncateBy <= len(out) {
		out = out[:len(out)-m.truncateBy]
	}
	return out, nil
}

func (m *mockScorer) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *mockScorer) batchSizes() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	sizes := make([]int, len(m.batches))
	for i := range m.batches {
		sizes[i] = len(m.batches[i])
	}
	return sizes
}

// --- Helpers ---

// candidate builds a fused candidate whose document text carries the id,
// so tests can address logits per candidate.
func candidate(id string, hybridScore float64) result.Hybrid {
	v := vehicle.Reconstruct(id, 2020, "Toyota", "Tacoma", "", "Truck", "Gasoline",
		30000, 40000, "listing "+id)
	return result.NewHybrid(v, hybridScore, hybridScore, 0)
}

func docOf(c result.Hybrid) string {
	v := c.Vehicle()
	return v.Document(maxDocumentDescription)
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
