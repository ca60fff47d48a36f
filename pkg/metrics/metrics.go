package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Data service metrics
	FetchTotal      *prometheus.CounterVec
	FetchLatency    *prometheus.HistogramVec
	FetchSuperseded prometheus.Counter
	FetchInFlight   prometheus.Gauge

	// Memo cache metrics
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec
	CacheErrors *prometheus.CounterVec

	// Prefetch worker metrics
	PrefetchRuns    *prometheus.CounterVec
	PrefetchLatency prometheus.Histogram
	PrefetchRetries prometheus.Counter
}

// NewMetrics creates all application metrics and registers them with reg.
// A nil reg registers with the default registry.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		FetchTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_total",
			Help:      "Total number of appointment data fetches",
		}, []string{"operation", "status"}),
		FetchLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of appointment data fetches",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"operation"}),
		FetchSuperseded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_superseded_total",
			Help:      "Fetch results discarded because the parameters changed",
		}),
		FetchInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fetch_in_flight",
			Help:      "Fetches currently waiting on the data service",
		}),

		CacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Memo cache hits",
		}, []string{"backend"}),
		CacheMisses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Memo cache misses",
		}, []string{"backend"}),
		CacheErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_errors_total",
			Help:      "Memo cache backend errors",
		}, []string{"backend", "operation"}),

		PrefetchRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prefetch_runs_total",
			Help:      "Prefetch worker passes",
		}, []string{"status"}),
		PrefetchLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prefetch_duration_seconds",
			Help:      "Time spent warming the memo cache",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		PrefetchRetries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prefetch_retry_attempts_total",
			Help:      "Retry attempts made by the prefetch worker",
		}),
	}
}

// NewNop returns metrics registered with a throwaway registry, for tests
// and commands that never expose them.
func NewNop() *Metrics {
	return NewMetrics(prometheus.NewRegistry(), "scheduler")
}
