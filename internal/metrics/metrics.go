// Package metrics exposes Prometheus collectors for the translation
// pipeline. Collectors register on the default registry; the HTTP server
// serves them at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Unit outcome label values.
const (
	OutcomeMT       = "mt"
	OutcomeExact    = "exact"
	OutcomeFallback = "fuzzy_fallback"
	OutcomeFailed   = "failed"
)

var (
	UnitsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "transflow",
		Name:      "units_processed_total",
		Help:      "Translation units processed, by outcome.",
	}, []string{"outcome"})

	FilesCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "transflow",
		Name:      "files_completed_total",
		Help:      "Files that reached a terminal pipeline state.",
	}, []string{"stage", "status"})

	BatchesPersisted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "transflow",
		Name:      "unit_batches_persisted_total",
		Help:      "Unit batches written to the store during parsing.",
	})

	UnitDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "transflow",
		Name:      "unit_translate_seconds",
		Help:      "Wall time spent translating one unit, including retrieval.",
		Buckets:   prometheus.DefBuckets,
	})
)
