package hybrid

import (
	"sort"

	"github.com/JB5579/Otto-Match-V2-sub003/internal/domain/search/result"
)

// weights holds the per-signal RRF multipliers.
type weights struct {
	vector  float64
	keyword float64
	filter  float64
}

// fuseRRF merges the vector and keyword candidate lists via weighted
// Reciprocal Rank Fusion:
//
//	score(id) = Σ over signals s: weight_s × 1 / (k + rank_s(id))
//
// rank_s is the 1-based position of id within signal s; an id missing from
// a signal contributes 0 for it. When structured filters gated the
// candidate set, every survivor matched them, so each also earns the filter
// term at its first-seen rank. Ties are broken by first-seen order, which
// makes fusion deterministic for fixed inputs.
func fuseRRF(vector, keyword []result.Hybrid, filtered bool, w weights, k, limit int) []result.Hybrid {
	type scored struct {
		h          result.Hybrid
		vectorRaw  float64
		keywordRaw float64
		score      float64
		firstSeen  int
	}

	merged := make(map[string]*scored, len(vector)+len(keyword))
	order := 0

	for rank, h := range vector {
		v := h.Vehicle()
		merged[v.ID()] = &scored{
			h:         h,
			vectorRaw: h.VectorScore(),
			score:     w.vector / float64(k+rank+1),
			firstSeen: order,
		}
		order++
	}

	for rank, h := range keyword {
		v := h.Vehicle()
		if existing, ok := merged[v.ID()]; ok {
			existing.score += w.keyword / float64(k+rank+1)
			existing.keywordRaw = h.KeywordScore()
			continue
		}
		merged[v.ID()] = &scored{
			h:          h,
			keywordRaw: h.KeywordScore(),
			score:      w.keyword / float64(k+rank+1),
			firstSeen:  order,
		}
		order++
	}

	fused := make([]*scored, 0, len(merged))
	for _, s := range merged {
		if filtered {
			s.score += w.filter / float64(k+s.firstSeen+1)
		}
		fused = append(fused, s)
	}

	sort.Slice(fused, func(i, j int) bool {
		if fused[i].score != fused[j].score {
			return fused[i].score > fused[j].score
		}
		return fused[i].firstSeen < fused[j].firstSeen
	})

	if len(fused) > limit {
		fused = fused[:limit]
	}

	results := make([]result.Hybrid, len(fused))
	for i, s := range fused {
		results[i] = result.NewHybrid(s.h.Vehicle(), s.score, s.vectorRaw, s.keywordRaw)
	}
	return results
}
