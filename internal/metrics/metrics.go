package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for shelf searches and the result cache.
type Metrics struct {
	// Finished searches by operation and outcome
	Searches *prometheus.CounterVec

	// Wall-clock duration of searches by operation
	SearchDuration *prometheus.HistogramVec

	// Search nodes visited by operation
	SearchNodes *prometheus.HistogramVec

	// Cache lookups by result ("hit", "miss", "error")
	CacheLookups *prometheus.CounterVec
}

// New creates a Metrics instance registered with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Searches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shelf_planner_searches_total",
			Help: "Total finished shelf searches by operation and outcome",
		}, []string{"operation", "outcome"}),

		SearchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shelf_planner_search_duration_seconds",
			Help:    "Duration of shelf searches by operation",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}, []string{"operation"}),

		SearchNodes: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shelf_planner_search_nodes",
			Help:    "Search nodes visited per shelf search",
			Buckets: prometheus.ExponentialBuckets(16, 8, 9),
		}, []string{"operation"}),

		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shelf_planner_cache_lookups_total",
			Help: "Result cache lookups by result",
		}, []string{"result"}),
	}
}

// ObserveSearch records one finished search.
func (m *Metrics) ObserveSearch(operation, outcome string, seconds float64, nodes int64) {
	if m == nil {
		return
	}
	m.Searches.WithLabelValues(operation, outcome).Inc()
	m.SearchDuration.WithLabelValues(operation).Observe(seconds)
	m.SearchNodes.WithLabelValues(operation).Observe(float64(nodes))
}

// IncrementCacheLookup records a cache lookup result.
func (m *Metrics) IncrementCacheLookup(result string) {
	if m != nil {
		m.CacheLookups.WithLabelValues(result).Inc()
	}
}
