// Package cache provides TTL key-value caching for the feed core.
//
// Two stores share the same key scheme:
//
//   - Store: process-local, generic values, lazy expiry on read. This is the
//     cache a feed session uses to avoid re-running repeated reads such as
//     analytics queries.
//   - RedisStore: JSON values in Redis with server-side TTL, for gateway
//     deployments where several instances should share cached pages.
//
// # Basic Usage
//
//	store := cache.NewStore(0) // 5 minute default TTL
//
//	store.Set("analytics:weekly", counts, 0)
//
//	if counts, ok := cache.GetAs[AnalyticsCounts](store, "analytics:weekly"); ok {
//		// cache hit
//	}
//
// # Keys
//
// Cached pages are keyed deterministically by resource, page, page size, and
// sorted query parameters:
//
//	key := cache.Key{
//		Resource: "posts",
//		Page:     2,
//		PageSize: 15,
//		Params:   map[string]string{"kind": "track"},
//	}
//	store.Set(key.String(), page, 0)
//
// Pattern invalidation drops a whole cached family, e.g. every page of one
// resource after a write:
//
//	store.InvalidatePattern(key.ResourcePrefix())
//
// # Metrics
//
// Both stores export Prometheus metrics:
//
//   - feed_cache_hits_total{layer} - Cache hits
//   - feed_cache_misses_total{layer} - Cache misses
//   - feed_cache_evictions_total{layer, reason} - Evictions
//   - feed_cache_entries{layer} - Live entries (memory layer)
//   - feed_cache_errors_total{operation} - Redis operation errors
package cache
