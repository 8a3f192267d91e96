package metrics

import "github.com/prometheus/client_golang/prometheus"

// Corpus generation and experiment metrics.
var (
	GeneratedItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "generated_items_total",
			Help:      "Accepted generated items",
		},
		[]string{"kind"}, // "tool" / "query"
	)

	RejectedCandidatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "rejected_candidates_total",
			Help:      "Rejected generation candidates by reason",
		},
		[]string{"kind", "reason"}, // reason: "similar" / "name_collision" / "invalid" / "error"
	)

	QueriesProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "experiment_queries_total",
			Help:      "Processed experiment queries by outcome",
		},
		[]string{"outcome"}, // "correct" / "incorrect"
	)

	RunningAccuracy = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "experiment_running_accuracy",
			Help:      "Fraction of processed queries whose expected tool was selected",
		},
	)

	RetrievalDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "retrieval_duration_seconds",
			Help:      "Per-query duration of each selection condition",
			Buckets:   []float64{0.00001, 0.0001, 0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"condition"}, // "vector" / "full"
	)

	TokenProxyTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "token_proxy_total",
			Help:      "Character token proxy summed per condition",
		},
		[]string{"condition"},
	)
)

var experimentMetricsRegistered bool

// RegisterExperimentMetrics registers generation and experiment metrics. Must be called once from main.
func RegisterExperimentMetrics() {
	if experimentMetricsRegistered {
		return
	}
	prometheus.MustRegister(
		GeneratedItemsTotal,
		RejectedCandidatesTotal,
		QueriesProcessedTotal,
		RunningAccuracy,
		RetrievalDuration,
		TokenProxyTotal,
	)
	experimentMetricsRegistered = true
}
