package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Scheduler metrics
	SweepsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "harvester_sweeps_total",
			Help: "Total number of scheduler sweeps executed",
		},
	)

	JobsDispatched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "harvester_jobs_dispatched_total",
			Help: "Total number of due jobs dispatched onto the queue",
		},
	)

	IntervalAdjustments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvester_interval_adjustments_total",
			Help: "Total number of job interval adjustments by reason",
		},
		[]string{"reason"},
	)

	// Pipeline stage metrics
	IngestOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvester_ingest_outcomes_total",
			Help: "Total ingest stage invocations by outcome",
		},
		[]string{"outcome"},
	)

	EnrichOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvester_enrich_outcomes_total",
			Help: "Total enrich stage invocations by outcome",
		},
		[]string{"outcome"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "harvester_stage_duration_seconds",
			Help:    "Pipeline stage duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	// Inference metrics
	InferenceAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvester_inference_attempts_total",
			Help: "Total inference backend attempts by backend and status",
		},
		[]string{"backend", "status"},
	)
)
