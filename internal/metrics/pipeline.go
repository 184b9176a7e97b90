package metrics

import "github.com/prometheus/client_golang/prometheus"

// Pipeline stage label values.
const (
	StageExpansion = "expansion"
	StageEmbedding = "embedding"
	StageSearch    = "search"
	StageRerank    = "rerank"
)

// Search pipeline Prometheus metrics.
var (
	PipelineStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ottomatch",
			Name:      "pipeline_stage_duration_seconds",
			Help:      "Wall-clock duration of each search pipeline stage",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"stage"},
	)

	PipelineDegradedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ottomatch",
			Name:      "pipeline_degraded_total",
			Help:      "Degraded stage executions by stage and reason",
		},
		[]string{"stage", "reason"},
	)

	SearchCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ottomatch",
			Name:      "search_cache_total",
			Help:      "Pipeline cache hits and misses by cache",
		},
		[]string{"cache", "result"}, // cache: "expansion" / "hybrid", result: "hit" / "miss"
	)

	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ottomatch",
			Name:      "search_requests_total",
			Help:      "Completed search requests by outcome",
		},
		[]string{"outcome"}, // "ok" / "degraded" / "error"
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers Prometheus pipeline metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(PipelineStageDuration)
	prometheus.MustRegister(PipelineDegradedTotal)
	prometheus.MustRegister(SearchCacheTotal)
	prometheus.MustRegister(SearchRequestsTotal)
	pipelineMetricsRegistered = true
}
