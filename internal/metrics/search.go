package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search engine Prometheus metrics.
var (
	EngineRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docsearch",
			Name:      "engine_requests_total",
			Help:      "Total number of search engine requests",
		},
		[]string{"kind", "status"}, // kind: primary / supplemental / autocomplete
	)

	EngineRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docsearch",
			Name:      "engine_request_duration_seconds",
			Help:      "Search engine request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"kind"},
	)

	DisjunctiveFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docsearch",
			Name:      "disjunctive_fallbacks_total",
			Help:      "Disjunctive facet queries that failed and fell back to filtered counts",
		},
		[]string{"field"},
	)

	ResponseCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docsearch",
			Name:      "response_cache_total",
			Help:      "Engine response cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss" / "error"
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(EngineRequestsTotal)
	prometheus.MustRegister(EngineRequestDuration)
	prometheus.MustRegister(DisjunctiveFallbacksTotal)
	prometheus.MustRegister(ResponseCacheTotal)
	searchMetricsRegistered = true
}
