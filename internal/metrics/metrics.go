// Package metrics holds the Prometheus collectors of the recommendation engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecommendationRequests counts engine calls by operation
	// ("recommendations", "guidance", "suggested").
	RecommendationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toolkit_recommendation_requests_total",
			Help: "Total number of recommendation engine calls",
		},
		[]string{"operation"},
	)

	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "toolkit_recommendation_duration_seconds",
			Help:    "Duration of recommendation engine calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// CandidatesScored observes how many tools each pass scored.
	CandidatesScored = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "toolkit_recommendation_candidates",
			Help:    "Number of candidate tools scored per recommendation pass",
			Buckets: []float64{0, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	// RotationPenalties counts candidates penalised for being recently shown.
	RotationPenalties = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "toolkit_rotation_penalties_total",
			Help: "Total number of recently-shown penalties applied",
		},
	)

	// DependencyDegradations counts reads that failed and fell back to empty data.
	DependencyDegradations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toolkit_dependency_degradations_total",
			Help: "Total number of external reads that degraded to empty data",
		},
		[]string{"dependency"}, // "activity", "reviews", "playbooks", "rotation"
	)

	ShownRecordsWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "toolkit_shown_records_written_total",
			Help: "Total number of recommendation_shown records appended",
		},
	)

	ShownRecordsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "toolkit_shown_records_dropped_total",
			Help: "Total number of recommendation_shown records dropped or failed",
		},
	)
)
