package request

import (
	"strings"
	"testing"

	"github.com/JB5579/Otto-Match-V2-sub003/internal/domain/search/filter"
)

func TestNew_Defaults(t *testing.T) {
	r, err := New("cheap truck", filter.Filters{}, 0, 0, Flags{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Query() != "cheap truck" {
		t.Errorf("Query() = %q", r.Query())
	}
	if r.Limit() != DefaultLimit {
		t.Errorf("Limit() = %d, want %d", r.Limit(), DefaultLimit)
	}
	if r.Offset() != 0 {
		t.Errorf("Offset() = %d", r.Offset())
	}
	if r.ExpandQuery() || r.Rerank() || r.ContextualEmbedding() {
		t.Error("flags must default to false")
	}
}

func TestNew_ExplicitValues(t *testing.T) {
	flags := Flags{ExpandQuery: true, Rerank: true, ContextualEmbedding: true}
	r, err := New("awd wagon", filter.Filters{}, 50, 10, flags)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Limit() != 50 {
		t.Errorf("Limit() = %d", r.Limit())
	}
	if r.Offset() != 10 {
		t.Errorf("Offset() = %d", r.Offset())
	}
	if !r.ExpandQuery() || !r.Rerank() || !r.ContextualEmbedding() {
		t.Error("flags not carried through")
	}
}

func TestNew_TrimsQuery(t *testing.T) {
	r, err := New("  family suv  ", filter.Filters{}, 0, 0, Flags{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Query() != "family suv" {
		t.Errorf("Query() = %q", r.Query())
	}
}

func TestNew_EmptyQuery(t *testing.T) {
	for _, q := range []string{"", "   "} {
		_, err := New(q, filter.Filters{}, 10, 0, Flags{})
		if err == nil {
			t.Fatalf("expected error for query %q", q)
		}
		if !strings.Contains(err.Error(), "required") {
			t.Errorf("error = %q", err)
		}
	}
}

func TestNew_QueryTooLong(t *testing.T) {
	_, err := New(strings.Repeat("x", MaxQueryLength+1), filter.Filters{}, 10, 0, Flags{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "too long") {
		t.Errorf("error = %q", err)
	}
}

func TestNew_LimitClamped(t *testing.T) {
	r, err := New("truck", filter.Filters{}, MaxLimit+50, 0, Flags{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Limit() != MaxLimit {
		t.Errorf("Limit() = %d, want %d", r.Limit(), MaxLimit)
	}
}

func TestNew_InvalidOffset(t *testing.T) {
	if _, err := New("truck", filter.Filters{}, 10, -1, Flags{}); err == nil {
		t.Fatal("expected error for negative offset")
	}
	if _, err := New("truck", filter.Filters{}, 10, MaxOffset+1, Flags{}); err == nil {
		t.Fatal("expected error for oversized offset")
	}
}

func TestNewSimilar(t *testing.T) {
	r, err := NewSimilar("veh-1", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.VehicleID() != "veh-1" {
		t.Errorf("VehicleID() = %q", r.VehicleID())
	}
	if r.Limit() != DefaultLimit {
		t.Errorf("Limit() = %d, want %d", r.Limit(), DefaultLimit)
	}

	if _, err := NewSimilar("", 10); err == nil {
		t.Fatal("expected error for empty vehicle id")
	}

	r, err = NewSimilar("veh-2", MaxLimit*2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Limit() != MaxLimit {
		t.Errorf("Limit() = %d, want %d", r.Limit(), MaxLimit)
	}
}
