package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Batch outcomes recorded by variantBatchesTotal.
const (
	outcomeLabelImported = "imported"
	outcomeLabelRejected = "rejected"
	outcomeLabelFailed   = "failed"
	outcomeLabelEmpty    = "empty"
)

var (
	variantBatchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "variant_publisher_batches_total",
		Help: "Number of entity batches handled by outcome.",
	}, []string{"outcome"})

	variantsPublishedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "variant_publisher_variants_published_total",
		Help: "Number of variants accepted by the storefront variants service.",
	})

	variantImportDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "variant_publisher_import_duration_seconds",
		Help:    "Time taken by the storefront import call.",
		Buckets: prometheus.DefBuckets,
	})

	busMessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "variant_publisher_bus_messages_total",
		Help: "Number of bus messages dispatched by event type.",
	}, []string{"event_type"})
)
