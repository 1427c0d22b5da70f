// Package client provides the HTTP data-access client for the community
// backend, with caching, retries, and error handling.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/resonance-community/feed-core/pkg/cache"
	"github.com/resonance-community/feed-core/pkg/feed"
	"github.com/resonance-community/feed-core/pkg/logging"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Prometheus metrics for backend requests.
var (
	backendRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feed_backend_requests_total",
		Help: "Total backend requests by resource and status",
	}, []string{"resource", "status"})

	backendRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "feed_backend_request_duration_seconds",
		Help:    "Backend request duration in seconds by resource",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"resource"})

	backendErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feed_backend_errors_total",
		Help: "Total backend errors by class",
	}, []string{"class"})
)

// Report is a moderation queue entry.
type Report struct {
	ID         string    `json:"id"`
	PostID     string    `json:"post_id"`
	ReporterID string    `json:"reporter_id"`
	Reason     string    `json:"reason"`
	Status     string    `json:"status"` // "open", "resolved", "dismissed"
	CreatedAt  time.Time `json:"created_at"`
}

// ReportPage is one fetched page of moderation reports.
type ReportPage struct {
	Reports    []Report `json:"items"`
	TotalCount int      `json:"total_count"`
}

// AnalyticsSummary holds the community-wide aggregate counters shown on the
// admin dashboard. The same window is queried repeatedly, so results are
// cached.
type AnalyticsSummary struct {
	TotalPosts  int `json:"total_posts"`
	TotalPlays  int `json:"total_plays"`
	TotalLikes  int `json:"total_likes"`
	ActiveUsers int `json:"active_users"`
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the community backend, e.g. "https://api.resonance.fm".
	BaseURL string

	// UserAgent header sent with every request.
	// Format: "AppName/Version (contact@example.com)"
	UserAgent string

	// Timeout per HTTP request.
	Timeout time.Duration

	// Retry configures backoff behaviour for retryable errors.
	Retry RetryConfig

	// PageCache is an optional process-local cache for fetched pages.
	PageCache *cache.Store

	// SharedCache is an optional Redis-backed cache consulted after
	// PageCache, for deployments where instances share cached pages.
	SharedCache *cache.RedisStore

	// CacheTTL is the TTL applied to cached pages (0 = the cache's default).
	CacheTTL time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(baseURL, userAgent string) Config {
	return Config{
		BaseURL:   baseURL,
		UserAgent: userAgent,
		Timeout:   15 * time.Second,
		Retry:     DefaultRetryConfig(),
	}
}

// Client is the community backend data-access client. It implements
// feed.Fetcher.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger

	// sf collapses concurrent identical fetches into one backend request,
	// e.g. two feed managers asking for the same page.
	sf singleflight.Group
}

// New creates a new backend client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = DefaultRetryConfig()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		config: cfg,
		logger: logging.NewLogger("backend-client"),
	}, nil
}

// FetchPosts fetches one page of community posts. Filter criteria are passed
// through to the backend so resource views outside the feed manager (which
// always fetches unfiltered) can query server-side.
func (c *Client) FetchPosts(ctx context.Context, page, pageSize int, filter feed.Filter) (feed.Page, error) {
	params := map[string]string{
		"search": filter.Search,
		"kind":   string(filter.Kind),
		"sort":   string(filter.SortBy),
		"range":  string(filter.TimeRange),
	}
	return c.fetchPage(ctx, "posts", page, pageSize, params)
}

// FetchAlbums fetches one page of published albums.
func (c *Client) FetchAlbums(ctx context.Context, page, pageSize int) (feed.Page, error) {
	return c.fetchPage(ctx, "albums", page, pageSize, nil)
}

// FetchPlaylists fetches one page of public playlists.
func (c *Client) FetchPlaylists(ctx context.Context, page, pageSize int) (feed.Page, error) {
	return c.fetchPage(ctx, "playlists", page, pageSize, nil)
}

// FetchReports fetches one page of the moderation queue. Reports are never
// cached; moderators need to see the live queue.
func (c *Client) FetchReports(ctx context.Context, page, pageSize int, status string) (ReportPage, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("page_size", strconv.Itoa(pageSize))
	if status != "" {
		query.Set("status", status)
	}

	var result ReportPage
	if err := c.getJSON(ctx, "/api/v1/reports", query, "reports", &result); err != nil {
		return ReportPage{}, err
	}
	return result, nil
}

// FetchAnalytics fetches the aggregate counters for the given window
// ("day", "week", "month"). Results are cached so dashboards re-rendering the
// same window do not hammer the backend.
func (c *Client) FetchAnalytics(ctx context.Context, window string) (AnalyticsSummary, error) {
	key := cache.Key{
		Resource: "analytics",
		Params:   map[string]string{"window": window},
	}
	keyStr := key.String()

	if c.config.PageCache != nil {
		if cached, ok := cache.GetAs[AnalyticsSummary](c.config.PageCache, keyStr); ok {
			c.logger.Debug().Str("key", keyStr).Bool("cache_hit", true).Msg("Analytics served from cache")
			return cached, nil
		}
	}
	if c.config.SharedCache != nil {
		var cached AnalyticsSummary
		err := c.config.SharedCache.Get(ctx, keyStr, &cached)
		if err == nil {
			return cached, nil
		}
		if err != cache.ErrCacheMiss {
			c.logger.Warn().Err(err).Msg("Shared cache get failed")
		}
	}

	v, err, _ := c.sf.Do(keyStr, func() (any, error) {
		query := url.Values{}
		if window != "" {
			query.Set("window", window)
		}
		var summary AnalyticsSummary
		if err := c.getJSON(ctx, "/api/v1/analytics/summary", query, "analytics", &summary); err != nil {
			return AnalyticsSummary{}, err
		}
		return summary, nil
	})
	if err != nil {
		return AnalyticsSummary{}, err
	}
	summary := v.(AnalyticsSummary)

	c.cacheResult(ctx, keyStr, summary)
	return summary, nil
}

// InvalidatePosts drops every cached page of the posts resource, in both
// cache layers. Called after a write (new post, moderation action) so
// subsequent fetches see fresh data.
func (c *Client) InvalidatePosts(ctx context.Context) {
	prefix := cache.Key{Resource: "posts"}.ResourcePrefix()

	if c.config.PageCache != nil {
		removed := c.config.PageCache.InvalidatePattern(prefix)
		c.logger.Debug().Int("removed", removed).Msg("Invalidated local post pages")
	}
	if c.config.SharedCache != nil {
		removed, err := c.config.SharedCache.InvalidatePattern(ctx, prefix)
		if err != nil {
			c.logger.Warn().Err(err).Msg("Shared cache invalidation failed")
			return
		}
		c.logger.Debug().Int("removed", removed).Msg("Invalidated shared post pages")
	}
}

// fetchPage fetches one page of a posts-shaped resource through both cache
// layers and singleflight.
func (c *Client) fetchPage(ctx context.Context, resource string, page, pageSize int, params map[string]string) (feed.Page, error) {
	key := cache.Key{
		Resource: resource,
		Page:     page,
		PageSize: pageSize,
		Params:   params,
	}
	keyStr := key.String()

	if c.config.PageCache != nil {
		if cached, ok := cache.GetAs[feed.Page](c.config.PageCache, keyStr); ok {
			c.logger.Debug().
				Str("resource", resource).
				Int("page", page).
				Bool("cache_hit", true).
				Msg("Page served from cache")
			return cached, nil
		}
	}
	if c.config.SharedCache != nil {
		var cached feed.Page
		err := c.config.SharedCache.Get(ctx, keyStr, &cached)
		if err == nil {
			return cached, nil
		}
		if err != cache.ErrCacheMiss {
			c.logger.Warn().Err(err).Str("resource", resource).Msg("Shared cache get failed")
		}
	}

	v, err, _ := c.sf.Do(keyStr, func() (any, error) {
		query := url.Values{}
		query.Set("page", strconv.Itoa(page))
		query.Set("page_size", strconv.Itoa(pageSize))
		for name, value := range params {
			if value != "" {
				query.Set(name, value)
			}
		}

		var result feed.Page
		if err := c.getJSON(ctx, "/api/v1/"+resource, query, resource, &result); err != nil {
			return feed.Page{}, err
		}
		return result, nil
	})
	if err != nil {
		return feed.Page{}, err
	}
	result := v.(feed.Page)

	c.cacheResult(ctx, keyStr, result)
	return result, nil
}

// cacheResult populates both cache layers. Cache write failures are logged,
// never surfaced; a response we already hold beats a consistent cache.
func (c *Client) cacheResult(ctx context.Context, key string, value any) {
	if c.config.PageCache != nil {
		c.config.PageCache.Set(key, value, c.config.CacheTTL)
	}
	if c.config.SharedCache != nil {
		if err := c.config.SharedCache.Set(ctx, key, value, c.config.CacheTTL); err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("Shared cache set failed")
		}
	}
}

// getJSON performs a GET request with retries and decodes the JSON response
// into dest.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, resource string, dest any) error {
	startTime := time.Now()
	defer func() {
		backendRequestDuration.WithLabelValues(resource).Observe(time.Since(startTime).Seconds())
	}()

	requestURL := c.config.BaseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var body []byte
	err := retryWithBackoff(ctx, c.config.Retry, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", c.config.UserAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			backendErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			backendRequestsTotal.WithLabelValues(resource, "network_error").Inc()
			c.logger.Error().Err(err).Str("resource", resource).Msg("Backend request failed")
			return err
		}
		defer resp.Body.Close()

		backendRequestsTotal.WithLabelValues(resource, strconv.Itoa(resp.StatusCode)).Inc()

		if resp.StatusCode >= 400 {
			errClass := classifyStatus(resp.StatusCode)
			backendErrorsTotal.WithLabelValues(string(errClass)).Inc()

			c.logger.Warn().
				Str("resource", resource).
				Int("status_code", resp.StatusCode).
				Str("error_class", string(errClass)).
				Msg("Backend request error")

			return &APIError{
				StatusCode: resp.StatusCode,
				ErrorClass: errClass,
				Resource:   resource,
				Message:    resp.Status,
			}
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			backendErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			return fmt.Errorf("read response: %w", err)
		}
		body = data
		return nil
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode %s response: %w", resource, err)
	}
	return nil
}
