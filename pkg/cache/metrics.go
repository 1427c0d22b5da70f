package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cache layer labels.
const (
	layerMemory = "memory"
	layerRedis  = "redis"
)

// Eviction reason labels.
const (
	reasonExpired     = "expired"
	reasonInvalidated = "invalidated"
	reasonCleared     = "cleared"
)

var (
	// cacheHits tracks cache hits by layer (memory, redis)
	cacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_cache_hits_total",
			Help: "Total number of feed cache hits",
		},
		[]string{"layer"},
	)

	// cacheMisses tracks cache misses by layer
	cacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_cache_misses_total",
			Help: "Total number of feed cache misses",
		},
		[]string{"layer"},
	)

	// cacheEvictions tracks evictions by layer and reason
	cacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_cache_evictions_total",
			Help: "Total number of feed cache evictions",
		},
		[]string{"layer", "reason"},
	)

	// cacheEntries tracks the current number of live entries by layer
	cacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "feed_cache_entries",
			Help: "Current number of live feed cache entries",
		},
		[]string{"layer"},
	)

	// cacheErrors tracks Redis cache operation errors
	cacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete", "invalidate_pattern"
	)
)
