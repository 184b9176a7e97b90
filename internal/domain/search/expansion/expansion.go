// Package expansion defines the LLM query-expansion result value type.
package expansion

import (
	"time"

	"github.com/JB5579/Otto-Match-V2-sub003/internal/domain/search/filter"
)

// MaxSynonyms bounds the synonym list; extra terms are discarded in order.
const MaxSynonyms = 5

// Expansion is an immutable query-expansion outcome. A degraded expansion
// (LLM failure, parse failure) is still a legitimate value, not an error.
type Expansion struct {
	original   string
	expanded   string
	synonyms   []string
	filters    filter.Filters
	confidence float64
	cached     bool
	degraded   bool
	latency    time.Duration
}

// New creates an Expansion from parsed LLM output. Confidence is clamped to
// [0,1], synonyms truncated to MaxSynonyms, and an empty expanded query falls
// back to the original.
func New(original, expanded string, synonyms []string, filters filter.Filters, confidence float64) Expansion {
	if expanded == "" {
		expanded = original
	}
	if len(synonyms) > MaxSynonyms {
		synonyms = synonyms[:MaxSynonyms]
	}
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return Expansion{
		original:   original,
		expanded:   expanded,
		synonyms:   synonyms,
		filters:    filters,
		confidence: confidence,
	}
}

// Degraded creates the fallback expansion used when the LLM call or parse
// fails: the query passes through untouched.
func Degraded(original string) Expansion {
	return Expansion{original: original, expanded: original, degraded: true}
}

// Original returns the query as the user typed it.
func (e Expansion) Original() string { return e.original }

// Expanded returns the enriched query text.
func (e Expansion) Expanded() string { return e.expanded }

// Synonyms returns the ordered synonym terms (at most MaxSynonyms).
func (e Expansion) Synonyms() []string { return e.synonyms }

// Filters returns the validated filters extracted from the query.
func (e Expansion) Filters() filter.Filters { return e.filters }

// Confidence returns the model's self-reported confidence in [0,1].
func (e Expansion) Confidence() float64 { return e.confidence }

// Cached reports whether this value was served from the expansion cache.
func (e Expansion) Cached() bool { return e.cached }

// Degraded reports whether this is a fallback produced after an LLM failure.
func (e Expansion) Degraded() bool { return e.degraded }

// Latency returns the wall-clock duration of the expansion stage.
func (e Expansion) Latency() time.Duration { return e.latency }

// AsCached returns a copy marked as served from cache.
func (e Expansion) AsCached() Expansion {
	c := e
	c.cached = true
	return c
}

// WithLatency returns a copy with the stage latency set.
func (e Expansion) WithLatency(d time.Duration) Expansion {
	c := e
	c.latency = d
	return c
}
