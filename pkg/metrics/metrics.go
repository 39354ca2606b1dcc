// Package metrics exposes the Prometheus registry used by KrishiConnect.
// All metrics are defined in their respective packages (client, cache,
// ratelimit, pipeline) to maintain modularity and avoid circular
// dependencies.
//
// This package provides the scrape handler and documentation for all
// available metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the gatherer paired with Registry.
var Gatherer = prometheus.DefaultGatherer

// Handler returns the HTTP handler serving all registered metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Rate Limit Metrics (pkg/ratelimit):
//   - krishi_rate_limit_blocks_total (Counter): Requests refused during a 429 cooldown
//   - krishi_rate_limit_cooldowns_total (Counter): Cooldowns armed by 429 responses
//   - krishi_rate_limit_cooldown_seconds (Gauge): Length of the current cooldown
//
// Cache Metrics (pkg/cache):
//   - krishi_cache_hits_total{backend} (Counter): Cache hits by backend
//   - krishi_cache_misses_total{backend} (Counter): Cache misses by backend
//   - krishi_cache_size_bytes{backend} (Gauge): Size of the last written entry
//   - krishi_cache_errors_total{backend, operation} (Counter): Cache operation errors
//
// Request Metrics (pkg/client):
//   - krishi_requests_total{host, status} (Counter): Upstream requests by host and status
//   - krishi_request_duration_seconds{host} (Histogram): Upstream request duration
//   - krishi_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network)
//
// Retry Metrics (pkg/client):
//   - krishi_fetch_retries_total{error_class} (Counter): Retries by error class
//   - krishi_fetch_backoff_seconds (Histogram): Backoff waits
//   - krishi_fetch_exhausted_total{error_class} (Counter): Fetches that used every attempt
//   - krishi_fetch_canceled_total (Counter): Fetches canceled by the caller
//
// Pipeline Metrics (pkg/pipeline):
//   - krishi_pipeline_runs_total{outcome} (Counter): Runs by outcome (fresh, sample, fallback, canceled, stale)
//   - krishi_pipeline_stale_discards_total (Counter): Commits refused because a newer run started
//   - krishi_pipeline_fallbacks_total{source} (Counter): Degraded commits by source (cache, sample)
//   - krishi_fetch_attempts_total{outcome} (Counter): Attempts spent by fetch outcome
//
// Example Prometheus Queries:
//
//   # Share of runs served from fallback data
//   sum(rate(krishi_pipeline_runs_total{outcome="fallback"}[5m])) /
//   sum(rate(krishi_pipeline_runs_total[5m]))
//
//   # Cache Hit Rate
//   sum(rate(krishi_cache_hits_total[5m])) /
//   (sum(rate(krishi_cache_hits_total[5m])) + sum(rate(krishi_cache_misses_total[5m])))
//
//   # Upstream Error Rate
//   rate(krishi_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(krishi_request_duration_seconds_bucket[5m]))
