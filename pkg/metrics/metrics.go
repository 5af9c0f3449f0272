// Package metrics exposes the Prometheus registry shared by the Homi client
// packages. Metrics are defined with promauto next to the code that records
// them (client, cache, ratelimit, filter, pagination, analytics).
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the registerer every package registers its metrics with.
var Registry = prometheus.DefaultRegisterer

// Names lists every metric the module registers.
//
// Rate limit (pkg/ratelimit):
//   - homi_ratelimit_remaining (Gauge)
//   - homi_ratelimit_blocks_total (Counter)
//   - homi_ratelimit_throttles_total (Counter)
//
// Cache (pkg/cache):
//   - homi_cache_hits_total, homi_cache_misses_total (Counter)
//   - homi_cache_size_bytes (Gauge)
//   - homi_cache_not_modified_total, homi_cache_conditional_requests_total (Counter)
//   - homi_cache_errors_total{operation} (Counter)
//
// Requests and retries (pkg/client):
//   - homi_client_requests_total{resource, status} (Counter)
//   - homi_client_request_duration_seconds{resource} (Histogram)
//   - homi_client_errors_total{class} (Counter)
//   - homi_client_retries_total{error_class} (Counter)
//   - homi_client_retry_backoff_seconds{error_class} (Histogram)
//   - homi_client_retry_exhausted_total{error_class} (Counter)
//
// Listing pages (pkg/filter, pkg/pagination):
//   - homi_filter_changes_total (Counter)
//   - homi_page_fetches_total{resource, kind, result} (Counter)
//   - homi_page_fetch_duration_seconds{resource, kind} (Histogram)
//   - homi_stale_responses_total{resource} (Counter)
//   - homi_sentinel_triggers_total{outcome} (Counter)
//   - homi_batch_pages_total{result} (Counter)
//
// Analytics (pkg/analytics):
//   - homi_analytics_events_total{name, result} (Counter)
//
// Example queries:
//
//	# Cache hit rate
//	sum(rate(homi_cache_hits_total[5m])) /
//	(sum(rate(homi_cache_hits_total[5m])) + sum(rate(homi_cache_misses_total[5m])))
//
//	# Share of reset fetches superseded by a newer filter change
//	sum(rate(homi_stale_responses_total[5m])) /
//	sum(rate(homi_page_fetches_total{kind="reset"}[5m]))
//
//	# P95 page latency
//	histogram_quantile(0.95, rate(homi_page_fetch_duration_seconds_bucket[5m]))
var Names = []string{
	"homi_ratelimit_remaining",
	"homi_ratelimit_blocks_total",
	"homi_ratelimit_throttles_total",
	"homi_cache_hits_total",
	"homi_cache_misses_total",
	"homi_cache_size_bytes",
	"homi_cache_not_modified_total",
	"homi_cache_conditional_requests_total",
	"homi_cache_errors_total",
	"homi_client_requests_total",
	"homi_client_request_duration_seconds",
	"homi_client_errors_total",
	"homi_client_retries_total",
	"homi_client_retry_backoff_seconds",
	"homi_client_retry_exhausted_total",
	"homi_filter_changes_total",
	"homi_page_fetches_total",
	"homi_page_fetch_duration_seconds",
	"homi_stale_responses_total",
	"homi_sentinel_triggers_total",
	"homi_batch_pages_total",
	"homi_analytics_events_total",
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
