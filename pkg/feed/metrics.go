package feed

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// loadMoreTotal tracks load-more requests by pagination mode
	loadMoreTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_load_more_total",
			Help: "Total number of load-more requests by pagination mode",
		},
		[]string{"mode"}, // "server", "client"
	)

	// autoFetchBatches tracks server batches fetched by the auto-fetch heuristic
	autoFetchBatches = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_auto_fetch_batches_total",
			Help: "Total number of server batches fetched by the auto-fetch heuristic",
		},
	)

	// staleResponses tracks fetch responses discarded after a criteria change
	staleResponses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_stale_responses_total",
			Help: "Total number of fetch responses discarded because criteria changed mid-flight",
		},
	)

	// duplicateRequests tracks load-more calls rejected while a fetch was in flight
	duplicateRequests = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_duplicate_requests_total",
			Help: "Total number of load-more calls rejected while a fetch was in flight",
		},
	)

	// fetchErrors tracks failed load-more fetches
	fetchErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_fetch_errors_total",
			Help: "Total number of failed load-more fetches",
		},
	)
)
