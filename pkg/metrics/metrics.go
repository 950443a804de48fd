// Package metrics expõe os contadores prometheus do pipeline de insights.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "insights"

var (
	// InferenceAttempts conta cada tentativa ao serviço de inferência
	InferenceAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inference_attempts_total",
			Help:      "Total inference attempts by insight type and result",
		},
		[]string{"insight_type", "result"}, // "success", "transient", "permanent"
	)

	InferenceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "inference_duration_seconds",
			Help:      "Duration of a single inference attempt in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
		},
		[]string{"insight_type"},
	)

	InferenceInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "inference_in_flight",
			Help:      "Inference calls currently holding a slot of the global limiter",
		},
	)

	// UnitsTotal conta o desfecho de cada unidade de trabalho
	UnitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "units_total",
			Help:      "Total pipeline units of work by insight type and outcome",
		},
		[]string{"insight_type", "outcome"},
	)

	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a whole pipeline run in seconds",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		},
	)
)
