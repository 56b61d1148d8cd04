// ABOUTME: Prometheus collectors for the console, the catalog client and the fetch cache
// ABOUTME: Registered on the default registry and exposed through Handler

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CatalogRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookdesk_catalog_requests_total",
		Help: "Requests issued to the remote catalog service",
	}, []string{"op", "outcome"})

	CatalogRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bookdesk_catalog_request_duration_seconds",
		Help:    "Duration of catalog service requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})

	FetchCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookdesk_fetch_cache_lookups_total",
		Help: "Fetch cache lookups by result (hit, miss, shared)",
	}, []string{"cache", "result"})

	FetchCacheInvalidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookdesk_fetch_cache_invalidations_total",
		Help: "Explicit fetch cache invalidations",
	}, []string{"cache"})

	ConsoleRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookdesk_console_requests_total",
		Help: "HTTP requests served by the web console",
	}, []string{"method", "route", "status"})

	ConsoleRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bookdesk_console_request_duration_seconds",
		Help:    "Duration of web console requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	DeletesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookdesk_book_deletes_total",
		Help: "Confirmed book deletions by outcome",
	}, []string{"outcome"})
)

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
