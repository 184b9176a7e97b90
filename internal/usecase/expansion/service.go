// Package expansion implements the LLM query-expansion stage: the raw query
// is rewritten for retrieval, synonyms are collected, and structured filters
// are extracted. The stage never fails the pipeline; any LLM or parse
// problem degrades to a passthrough expansion.
package expansion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/JB5579/Otto-Match-V2-sub003/internal/cache"
	"github.com/JB5579/Otto-Match-V2-sub003/internal/domain/search/expansion"
	"github.com/JB5579/Otto-Match-V2-sub003/internal/domain/search/filter"
	"github.com/JB5579/Otto-Match-V2-sub003/internal/metrics"
)

// Defaults applied when Config fields are zero.
const (
	DefaultTimeout   = 10 * time.Second
	DefaultCacheTTL  = time.Hour
	DefaultCacheSize = 1000
)

const systemPrompt = `You are a search assistant for a used-vehicle marketplace.
Rewrite the user's query for retrieval over vehicle listings and extract
structured filters.

Respond with a single JSON object and nothing else:
{
  "expanded_query": "the query rewritten with concrete vehicle terms",
  "synonyms": ["up to 5 alternative terms buyers use for the same thing"],
  "extracted_filters": {
    "make": "manufacturer if stated",
    "model": "model if stated",
    "vehicle_type": "one of Truck, SUV, Sedan, Coupe, Hatchback, Wagon, Van, Minivan, Convertible",
    "fuel_type": "Gasoline, Diesel, Hybrid or Electric if stated",
    "year_min": 1900, "year_max": 2030,
    "price_min": 0, "price_max": 0,
    "mileage_max": 0
  },
  "confidence": 0.0
}

Only include filters the query states or strongly implies: "cheap" implies
price_max around 30000, "new" implies a recent year_min, "low miles" implies
mileage_max around 60000. Omit any filter you are not confident about.
confidence is your overall confidence in the extraction, between 0 and 1.`

// Config tunes the expansion stage.
type Config struct {
	Timeout   time.Duration
	CacheTTL  time.Duration
	CacheSize int
}

// Service expands queries through an LLM, with an in-process cache keyed by
// the normalized query text.
type Service struct {
	llm     Completer
	cache   *cache.Cache[[32]byte, expansion.Expansion]
	timeout time.Duration
	logger  *zap.Logger
}

// New creates an expansion service.
func New(llm Completer, cfg Config, logger *zap.Logger) (*Service, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultCacheSize
	}

	c, err := cache.New[[32]byte, expansion.Expansion](cfg.CacheSize, cfg.CacheTTL)
	if err != nil {
		return nil, fmt.Errorf("create expansion cache: %w", err)
	}

	return &Service{llm: llm, cache: c, timeout: cfg.Timeout, logger: logger}, nil
}

// Expand enriches a raw query. It never returns an error: an LLM failure or
// an unparseable response produces a degraded expansion that passes the
// query through untouched. Degraded expansions are not cached, so the next
// identical query retries the LLM.
func (s *Service) Expand(ctx context.Context, query string) expansion.Expansion {
	start := time.Now()
	key := cache.Key(strings.ToLower(strings.TrimSpace(query)))

	if hit, ok := s.cache.Get(key); ok {
		metrics.SearchCacheTotal.WithLabelValues("expansion", "hit").Inc()
		return hit.AsCached().WithLatency(time.Since(start))
	}
	metrics.SearchCacheTotal.WithLabelValues("expansion", "miss").Inc()

	llmCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.llm.Complete(llmCtx, systemPrompt, query)
	if err != nil {
		return s.degrade(query, "llm_error", err, start)
	}

	exp, ok := s.parse(query, raw)
	if !ok {
		return s.degrade(query, "parse_error", fmt.Errorf("unparseable response: %s", snippet(raw)), start)
	}

	exp = exp.WithLatency(time.Since(start))
	if ctx.Err() == nil {
		s.cache.Set(key, exp)
	}
	return exp
}

func (s *Service) degrade(query, reason string, err error, start time.Time) expansion.Expansion {
	metrics.PipelineDegradedTotal.WithLabelValues(metrics.StageExpansion, reason).Inc()
	s.logger.Warn("Query expansion degraded",
		zap.String("reason", reason),
		zap.Duration("duration", time.Since(start)),
		zap.Error(err),
	)
	return expansion.Degraded(query).WithLatency(time.Since(start))
}

// parse extracts the expansion fields from the LLM response. Extracted
// filters pass the filter.FromMap validation gate; invalid values are
// dropped, never fatal.
func (s *Service) parse(query, raw string) (expansion.Expansion, bool) {
	payload := extractJSON(raw)
	if !gjson.Valid(payload) {
		return expansion.Expansion{}, false
	}
	root := gjson.Parse(payload)
	if !root.IsObject() {
		return expansion.Expansion{}, false
	}

	expanded := strings.TrimSpace(root.Get("expanded_query").String())

	var synonyms []string
	for _, el := range root.Get("synonyms").Array() {
		if term := strings.TrimSpace(el.String()); term != "" {
			synonyms = append(synonyms, term)
		}
	}

	var filters filter.Filters
	if rawFilters, ok := root.Get("extracted_filters").Value().(map[string]any); ok {
		var dropped []string
		filters, dropped = filter.FromMap(rawFilters)
		if len(dropped) > 0 {
			s.logger.Debug("Dropped invalid extracted filters", zap.Strings("fields", dropped))
		}
	}

	confidence := root.Get("confidence").Float()

	return expansion.New(query, expanded, synonyms, filters, confidence), true
}

// extractJSON cuts the JSON object out of an LLM response that may wrap it
// in a fenced code block or surrounding prose.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+3:]
		s = strings.TrimPrefix(s, "json")
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
		s = strings.TrimSpace(s)
	}
	if i := strings.IndexByte(s, '{'); i >= 0 {
		if j := strings.LastIndexByte(s, '}'); j > i {
			return s[i : j+1]
		}
	}
	return s
}

func snippet(s string) string {
	if len(s) > 120 {
		return s[:120] + "..."
	}
	return s
}
