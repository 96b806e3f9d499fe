// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "minerals"

var (
	// HTTPRequests counts served requests by route pattern and status.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPDuration observes request latency by route pattern.
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// CatalogLookups counts catalog cache lookups by language and result (hit, miss).
	CatalogLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_lookups_total",
			Help:      "Catalog cache lookups",
		},
		[]string{"lang", "result"},
	)

	// CatalogScanSeconds observes full directory scans.
	CatalogScanSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "catalog_scan_seconds",
			Help:      "Duration of full record store scans",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// CatalogInvalidations counts full cache invalidations.
	CatalogInvalidations = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_invalidations_total",
			Help:      "Catalog cache invalidations",
		},
	)

	// Publishes counts publish attempts by result (ok, invalid, error).
	Publishes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publishes_total",
			Help:      "Publish attempts",
		},
		[]string{"result"},
	)

	// Translations counts per-language translation outcomes (translated, fallback).
	Translations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "translations_total",
			Help:      "Per-language translation outcomes",
		},
		[]string{"lang", "outcome"},
	)

	// AIRequests counts upstream AI calls by provider, operation and result.
	AIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ai_requests_total",
			Help:      "Upstream AI provider calls",
		},
		[]string{"provider", "operation", "result"},
	)

	// DraftsPending reports drafts awaiting publish.
	DraftsPending = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "drafts_pending",
			Help:      "Drafts awaiting publish",
		},
	)
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
