package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/resonance-community/feed-core/pkg/cache"
	"github.com/resonance-community/feed-core/pkg/client"
	"github.com/resonance-community/feed-core/pkg/feed"
	"github.com/resonance-community/feed-core/pkg/logging"
)

func main() {
	// Configuration from environment
	backendURL := getEnv("BACKEND_URL", "http://localhost:9000")
	redisURL := getEnv("REDIS_URL", "")
	port := getEnv("PORT", "8080")
	userAgent := getEnv("USER_AGENT", "resonance-feed-gateway/0.1.0")
	logLevel := getEnv("LOG_LEVEL", "info")

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(logLevel),
		Output: os.Stderr,
	})

	cfg := client.DefaultConfig(backendURL, userAgent)
	cfg.PageCache = cache.NewStore(0)

	// Shared Redis cache is optional; without it each instance caches locally.
	if redisURL != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr: redisURL,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			cancel()
			logger.Fatal().Err(err).Str("redis_url", redisURL).Msg("Failed to connect to Redis")
		}
		cancel()

		cfg.SharedCache = cache.NewRedisStore(redisClient, 0)
		logger.Info().Str("redis_url", redisURL).Msg("Connected to Redis")
	}

	backendClient, err := client.New(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create backend client")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/api/feed/posts", postsHandler(backendClient))
	mux.HandleFunc("/api/feed/analytics", analyticsHandler(backendClient))

	addr := ":" + port
	logger.Info().
		Str("addr", addr).
		Str("backend_url", backendURL).
		Str("user_agent", userAgent).
		Msg("Starting feed gateway")

	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// postsHandler serves one page of posts through the caching client.
func postsHandler(c *client.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		page, _ := strconv.Atoi(query.Get("page"))
		if page < 1 {
			page = 1
		}
		pageSize, _ := strconv.Atoi(query.Get("page_size"))
		if pageSize < 1 || pageSize > 100 {
			pageSize = 15
		}

		filter := feed.Filter{
			Search:    query.Get("search"),
			Kind:      feed.PostKind(query.Get("kind")),
			SortBy:    feed.SortOrder(query.Get("sort")),
			TimeRange: feed.TimeRange(query.Get("range")),
		}

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		result, err := c.FetchPosts(ctx, page, pageSize, filter)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, result)
	}
}

// analyticsHandler serves the cached aggregate counters.
func analyticsHandler(c *client.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		window := r.URL.Query().Get("window")
		if window == "" {
			window = "week"
		}

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		summary, err := c.FetchAnalytics(ctx, window)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, summary)
	}
}

// writeError maps client errors to gateway status codes: backend 4xx pass
// through, exhausted retries become 504, everything else 502.
func writeError(w http.ResponseWriter, err error) {
	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.ErrorClass == client.ErrorClassClient:
		http.Error(w, apiErr.Message, apiErr.StatusCode)
	case errors.Is(err, client.ErrRetryExhausted):
		http.Error(w, "backend unavailable", http.StatusGatewayTimeout)
	default:
		http.Error(w, "backend request failed", http.StatusBadGateway)
	}
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, "encode response", http.StatusInternalServerError)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
