package metrics

import "github.com/prometheus/client_golang/prometheus"

// Job source Prometheus metrics.
var (
	SourceJobsFetchedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jobscout",
			Name:      "source_jobs_fetched_total",
			Help:      "Total job records returned by each source",
		},
		[]string{"source"},
	)

	SourceFetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jobscout",
			Name:      "source_fetch_duration_seconds",
			Help:      "Outbound source fetch duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"source"},
	)

	SourceErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jobscout",
			Name:      "source_errors_total",
			Help:      "Total failed source fetches",
		},
		[]string{"source"},
	)
)

var sourceMetricsRegistered bool

// RegisterSourceMetrics registers Prometheus source metrics. Must be called once from main.
func RegisterSourceMetrics() {
	if sourceMetricsRegistered {
		return
	}
	prometheus.MustRegister(SourceJobsFetchedTotal)
	prometheus.MustRegister(SourceFetchDuration)
	prometheus.MustRegister(SourceErrorsTotal)
	sourceMetricsRegistered = true
}
