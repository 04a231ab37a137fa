// Package metrics holds the Prometheus collectors for rate calculations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CalculationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boqrate_calculations_total",
			Help: "Total number of rate calculations by outcome",
		},
		[]string{"outcome"},
	)

	CalculationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "boqrate_calculation_duration_seconds",
			Help:    "Time taken by a single rate calculation",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
		},
	)

	MissingOptionalData = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boqrate_missing_optional_data_total",
			Help: "Optional surcharge rows that were absent and resolved to zero",
		},
		[]string{"table"},
	)

	ExplanationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boqrate_explanations_total",
			Help: "Narrative explanation requests by provider and status",
		},
		[]string{"provider", "status"},
	)
)

// Outcome labels for CalculationsTotal.
const (
	OutcomeOK            = "ok"
	OutcomeInvalid       = "validation_error"
	OutcomeMissingConfig = "missing_configuration"
	OutcomeError         = "error"
)
