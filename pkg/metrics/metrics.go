// Package metrics provides the centralized Prometheus metrics registry for the
// feed core. All metrics are defined in their respective packages (cache, feed,
// client) to maintain modularity and avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the feed core.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Cache Metrics (pkg/cache):
//   - feed_cache_hits_total{layer} (Counter): Cache hits by layer (memory, redis)
//   - feed_cache_misses_total{layer} (Counter): Cache misses by layer
//   - feed_cache_evictions_total{layer, reason} (Counter): Evictions by reason (expired, invalidated, cleared)
//   - feed_cache_entries{layer} (Gauge): Current number of live entries
//   - feed_cache_errors_total{operation} (Counter): Redis cache operation errors
//
// Feed Manager Metrics (pkg/feed):
//   - feed_load_more_total{mode} (Counter): Load-more requests by pagination mode
//   - feed_auto_fetch_batches_total (Counter): Server batches fetched by the auto-fetch heuristic
//   - feed_stale_responses_total (Counter): Fetch responses discarded due to a criteria change
//   - feed_duplicate_requests_total (Counter): Load-more calls rejected while a fetch was in flight
//   - feed_fetch_errors_total (Counter): Failed load-more fetches
//
// Client Metrics (pkg/client):
//   - feed_backend_requests_total{resource, status} (Counter): Backend requests by resource and HTTP status
//   - feed_backend_request_duration_seconds{resource} (Histogram): Backend request duration
//   - feed_backend_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network)
//   - feed_backend_retries_total{error_class} (Counter): Retry attempts by error class
//   - feed_backend_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - feed_backend_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(feed_cache_hits_total[5m])) /
//   (sum(rate(feed_cache_hits_total[5m])) + sum(rate(feed_cache_misses_total[5m])))
//
//   # Auto-fetch pressure (high values mean filters routinely starve the buffer)
//   rate(feed_auto_fetch_batches_total[5m]) / rate(feed_load_more_total{mode="client"}[5m])
//
//   # Backend Error Rate
//   rate(feed_backend_errors_total[5m])
//
//   # P95 Backend Latency
//   histogram_quantile(0.95, rate(feed_backend_request_duration_seconds_bucket[5m]))
