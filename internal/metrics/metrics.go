package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Conversion outcomes.
const (
	OutcomeValid          = "valid"
	OutcomeErrorDocument  = "error_document"
	OutcomeUnprocessable  = "unprocessable"
	OutcomeExternalFailed = "external_failure"
	OutcomeInvalidInput   = "invalid_input"
)

// Generator call kinds.
const (
	CallGenerate = "generate"
	CallRepair   = "repair"
)

var (
	// ConversionsTotal counts finished conversions by source and outcome.
	ConversionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "banana_conversions_total",
			Help: "Total number of statement conversions",
		},
		[]string{"source", "outcome"},
	)

	// ConversionDuration observes end-to-end conversion latency.
	ConversionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "banana_conversion_duration_seconds",
			Help:    "Duration of statement conversions, including generator calls",
			Buckets: []float64{.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		},
		[]string{"source"},
	)

	// GeneratorCallsTotal counts outbound generator calls by kind.
	GeneratorCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "banana_generator_calls_total",
			Help: "Total number of calls to the ledger generator",
		},
		[]string{"kind"},
	)

	// CorrectionsSubmitted counts stored corrections by source.
	CorrectionsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "banana_corrections_submitted_total",
			Help: "Total number of corrections stored",
		},
		[]string{"source"},
	)

	// ArchiveFailures counts statements that could not be archived.
	ArchiveFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "banana_archive_failures_total",
			Help: "Total number of failed statement archive uploads",
		},
	)
)
