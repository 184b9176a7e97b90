package hybrid

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/JB5579/Otto-Match-V2-sub003/internal/domain/search/filter"
	"github.com/JB5579/Otto-Match-V2-sub003/internal/domain/search/result"
	"github.com/JB5579/Otto-Match-V2-sub003/internal/domain/vehicle"
)

// --- Mocks ---

type mockRepo struct {
	fusedRows  []result.Hybrid
	fusedErr   error
	fusedCalls int

	vectorRows        []result.Hybrid
	vectorErr         error
	vectorCalls       int
	lastVectorLimit   int
	lastVectorFilters filter.Filters
	lastExcludeID     string

	keywordRows      []result.Hybrid
	keywordErr       error
	keywordCalls     int
	lastKeywordLimit int
	lastKeywordQuery string
}

func (m *mockRepo) SearchFused(
	_ context.Context, _ []float32, _ string, _ filter.Filters,
	_ int, _, _, _ float64, _ int,
) ([]result.Hybrid, error) {
	m.fusedCalls++
	return m.fusedRows, m.fusedErr
}

func (m *mockRepo) SearchVector(
	_ context.Context, _ []float32, filters filter.Filters, limit int, excludeID string,
) ([]result.Hybrid, error) {
	m.vectorCalls++
	m.lastVectorLimit = limit
	m.lastVectorFilters = filters
	m.lastExcludeID = excludeID
	return m.vectorRows, m.vectorErr
}

func (m *mockRepo) SearchKeyword(
	_ context.Context, query string, _ filter.Filters, limit int,
) ([]result.Hybrid, error) {
	m.keywordCalls++
	m.lastKeywordLimit = limit
	m.lastKeywordQuery = query
	return m.keywordRows, m.keywordErr
}

// --- Helpers ---

func testVehicle(id string) vehicle.Vehicle {
	return vehicle.Reconstruct(id, 2020, "Toyota", "Tacoma", "", "Truck", "Gasoline", 30000, 40000, "")
}

// vectorHit builds a vector-signal candidate: fused and vector slots carry
// the raw score, keyword is empty.
func vectorHit(id string, score float64) result.Hybrid {
	return result.NewHybrid(testVehicle(id), score, score, 0)
}

// keywordHit builds a keyword-signal candidate.
func keywordHit(id string, score float64) result.Hybrid {
	return result.NewHybrid(testVehicle(id), score, 0, score)
}

func newTestService(t *testing.T, repo Repository) *Service {
	t.Helper()
	svc, err := New(repo, Config{}, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return svc
}

func ids(rows []result.Hybrid) []string {
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
