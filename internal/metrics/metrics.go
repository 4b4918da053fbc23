// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ExtractionAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nutrieye_extraction_attempts_total",
			Help: "Inference attempts by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	ExtractionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nutrieye_extraction_duration_seconds",
			Help:    "Wall time of a full extraction including retries",
			Buckets: []float64{0.5, 1, 2, 4, 8, 15, 30, 60, 120},
		},
		[]string{"provider", "result"},
	)

	SodiumClassificationMismatch = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nutrieye_sodium_classification_mismatch_total",
			Help: "Analyses whose sodium classification disagrees with the regulatory band",
		},
	)

	WorstAdditiveLevel = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nutrieye_analysis_worst_additive_level_total",
			Help: "Completed analyses by the most severe deep-dive warning level",
		},
		[]string{"level"},
	)

	ReplacementsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nutrieye_replacements_served_total",
			Help: "Curated replacements attached to an analysis, by category",
		},
		[]string{"category"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nutrieye_http_requests_total",
			Help: "HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "nutrieye_http_request_duration_seconds",
			Help: "HTTP request latency by route",
		},
		[]string{"method", "route"},
	)
)
