// Package metrics registers the Prometheus collectors used across the
// build and serve paths.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Build metrics.

// RecordsScanned counts record files read by the aggregator.
var RecordsScanned = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "littlereviews_records_scanned_total",
		Help: "Total number of record files scanned by the aggregator",
	},
)

// RecordsSkipped counts record files left out of the artifact.
// Labels: reason (read, parse, shape, invalid)
var RecordsSkipped = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "littlereviews_records_skipped_total",
		Help: "Total number of record files skipped by the aggregator",
	},
	[]string{"reason"},
)

// RecordCollisions counts records dropped because a later file derived the
// same id.
var RecordCollisions = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "littlereviews_record_id_collisions_total",
		Help: "Total number of record id collisions seen by the aggregator",
	},
)

// BuildDuration observes full aggregator runs.
var BuildDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "littlereviews_build_duration_seconds",
		Help:    "Duration of aggregate artifact builds in seconds",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	},
)

// Serve metrics.

// CatalogRecords is the number of records in the current session.
var CatalogRecords = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "littlereviews_catalog_records",
		Help: "Number of records in the loaded catalog",
	},
)

// HTTPRequestsTotal counts HTTP requests.
// Labels: method, route, status
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "littlereviews_http_requests_total",
		Help: "Total number of HTTP requests",
	},
	[]string{"method", "route", "status"},
)

// HTTPRequestDuration observes request latency.
// Labels: method, route
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "littlereviews_http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	},
	[]string{"method", "route"},
)
