package hybrid

import (
	"testing"

	"github.com/JB5579/Otto-Match-V2-sub003/internal/domain/search/result"
)

var testWeights = weights{vector: 0.4, keyword: 0.3, filter: 0.3}

func TestFuseRRF_WeightedScores(t *testing.T) {
	vector := []result.Hybrid{vectorHit("a", 0.91), vectorHit("b", 0.88)}
	keyword := []result.Hybrid{keywordHit("b", 0.42), keywordHit("c", 0.17)}

	fused := fuseRRF(vector, keyword, false, testWeights, 60, 10)

	if len(fused) != 3 {
		t.Fatalf("expected 3 fused candidates, got %d", len(fused))
	}
	if got := ids(fused); !equalIDs(got, []string{"b", "a", "c"}) {
		t.Fatalf("unexpected fusion order: %v", got)
	}

	// b appears in both signals: rank 2 vector, rank 1 keyword.
	wantB := 0.4/float64(62) + 0.3/float64(61)
	if fused[0].HybridScore() != wantB {
		t.Errorf("expected b score %v, got %v", wantB, fused[0].HybridScore())
	}
	// a appears only in vector at rank 1; the missing signal contributes 0.
	wantA := 0.4 / float64(61)
	if fused[1].HybridScore() != wantA {
		t.Errorf("expected a score %v, got %v", wantA, fused[1].HybridScore())
	}
	wantC := 0.3 / float64(62)
	if fused[2].HybridScore() != wantC {
		t.Errorf("expected c score %v, got %v", wantC, fused[2].HybridScore())
	}
}

func TestFuseRRF_CarriesRawSignalScores(t *testing.T) {
	vector := []result.Hybrid{vectorHit("a", 0.91)}
	keyword := []result.Hybrid{keywordHit("a", 0.42), keywordHit("b", 0.17)}

	fused := fuseRRF(vector, keyword, false, testWeights, 60, 10)

	for i := range fused {
		v := fused[i].Vehicle()
		switch v.ID() {
		case "a":
			if fused[i].VectorScore() != 0.91 || fused[i].KeywordScore() != 0.42 {
				t.Errorf("expected a to carry both raw scores, got vector=%v keyword=%v",
					fused[i].VectorScore(), fused[i].KeywordScore())
			}
		case "b":
			if fused[i].VectorScore() != 0 || fused[i].KeywordScore() != 0.17 {
				t.Errorf("expected b to carry only the keyword raw score, got vector=%v keyword=%v",
					fused[i].VectorScore(), fused[i].KeywordScore())
			}
		}
	}
}

func TestFuseRRF_Deterministic(t *testing.T) {
	vector := []result.Hybrid{vectorHit("a", 0.9), vectorHit("b", 0.8), vectorHit("c", 0.7)}
	keyword := []result.Hybrid{keywordHit("c", 0.5), keywordHit("d", 0.4), keywordHit("a", 0.3)}

	first := fuseRRF(vector, keyword, true, testWeights, 60, 10)
	for run := 0; run < 20; run++ {
		again := fuseRRF(vector, keyword, true, testWeights, 60, 10)
		if !equalIDs(ids(first), ids(again)) {
			t.Fatalf("run %d: fusion order changed: %v vs %v", run, ids(first), ids(again))
		}
		for i := range first {
			if first[i].HybridScore() != again[i].HybridScore() {
				t.Fatalf("run %d: score changed for %v", run, ids(again))
			}
		}
	}
}

func TestFuseRRF_TieBrokenByFirstSeen(t *testing.T) {
	w := weights{vector: 0.5, keyword: 0.5, filter: 0}
	vector := []result.Hybrid{vectorHit("a", 0.9)}
	keyword := []result.Hybrid{keywordHit("b", 0.9)}

	fused := fuseRRF(vector, keyword, false, w, 60, 10)

	// Equal weights at equal rank produce a tie; the vector list was
	// consumed first, so a is first-seen and must win.
	if got := ids(fused); !equalIDs(got, []string{"a", "b"}) {
		t.Fatalf("expected tie broken by first-seen order, got %v", got)
	}
}

func TestFuseRRF_FilterTerm(t *testing.T) {
	vector := []result.Hybrid{vectorHit("a", 0.9)}
	keyword := []result.Hybrid{keywordHit("b", 0.5)}

	plain := fuseRRF(vector, keyword, false, testWeights, 60, 10)
	filtered := fuseRRF(vector, keyword, true, testWeights, 60, 10)

	// With filters active every survivor earns the filter term at its
	// first-seen rank.
	wantA := 0.4/float64(61) + 0.3/float64(61)
	wantB := 0.3/float64(61) + 0.3/float64(62)
	if filtered[0].HybridScore() != wantA {
		t.Errorf("expected a score %v, got %v", wantA, filtered[0].HybridScore())
	}
	if filtered[1].HybridScore() != wantB {
		t.Errorf("expected b score %v, got %v", wantB, filtered[1].HybridScore())
	}
	if plain[0].HybridScore() >= filtered[0].HybridScore() {
		t.Error("expected the filter term to raise scores")
	}
}

func TestFuseRRF_LimitAndOrdering(t *testing.T) {
	vector := []result.Hybrid{
		vectorHit("a", 0.9), vectorHit("b", 0.8), vectorHit("c", 0.7), vectorHit("d", 0.6),
	}
	keyword := []result.Hybrid{keywordHit("e", 0.5), keywordHit("f", 0.4)}

	fused := fuseRRF(vector, keyword, false, testWeights, 60, 3)

	if len(fused) != 3 {
		t.Fatalf("expected fusion truncated to 3, got %d", len(fused))
	}
	for i := 1; i < len(fused); i++ {
		if fused[i].HybridScore() > fused[i-1].HybridScore() {
			t.Fatalf("fused order not non-increasing at %d: %v > %v",
				i, fused[i].HybridScore(), fused[i-1].HybridScore())
		}
	}
}

func TestFuseRRF_Empty(t *testing.T) {
	fused := fuseRRF(nil, nil, false, testWeights, 60, 10)
	if len(fused) != 0 {
		t.Fatalf("expected empty fusion, got %d", len(fused))
	}
}
