// Package testutil provides testing utilities for the feed core.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/resonance-community/feed-core/pkg/feed"
)

// failure describes injected failures for one path.
type failure struct {
	status    int
	remaining int
}

// MockBackend is a configurable mock of the community REST backend.
type MockBackend struct {
	server *httptest.Server

	mu       sync.RWMutex
	posts    []feed.Post
	reports  []map[string]any
	failures map[string]*failure
	delay    time.Duration

	// Tracking
	RequestCount   int
	AnalyticsCalls int
}

// NewMockBackend creates a mock backend serving the given post corpus.
func NewMockBackend(posts []feed.Post) *MockBackend {
	mock := &MockBackend{
		posts:    posts,
		failures: make(map[string]*failure),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/posts", mock.handlePosts)
	mux.HandleFunc("/api/v1/albums", mock.handleKind(feed.KindAlbum))
	mux.HandleFunc("/api/v1/playlists", mock.handleKind(feed.KindPlaylist))
	mux.HandleFunc("/api/v1/reports", mock.handleReports)
	mux.HandleFunc("/api/v1/analytics/summary", mock.handleAnalytics)

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		delay := mock.delay
		f := mock.failures[r.URL.Path]
		inject := f != nil && f.remaining != 0
		if inject && f.remaining > 0 {
			f.remaining--
		}
		mock.mu.Unlock()

		if delay > 0 {
			time.Sleep(delay)
		}
		if inject {
			http.Error(w, "injected failure", f.status)
			return
		}

		mux.ServeHTTP(w, r)
	}))

	return mock
}

// URL returns the mock server's base URL.
func (m *MockBackend) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockBackend) Close() {
	m.server.Close()
}

// SetFailure makes the next count requests to path fail with the given
// status. A count of -1 fails every request until reset.
func (m *MockBackend) SetFailure(path string, status, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[path] = &failure{status: status, remaining: count}
}

// SetDelay adds an artificial delay to every response.
func (m *MockBackend) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// SetReports replaces the moderation queue corpus.
func (m *MockBackend) SetReports(reports []map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = reports
}

// Requests returns the number of requests served so far.
func (m *MockBackend) Requests() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

func (m *MockBackend) handlePosts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	m.mu.RLock()
	matched := make([]feed.Post, 0, len(m.posts))
	for _, p := range m.posts {
		if kind := query.Get("kind"); kind != "" && string(p.Kind) != kind {
			continue
		}
		if search := strings.ToLower(query.Get("search")); search != "" {
			if !strings.Contains(strings.ToLower(p.Title), search) &&
				!strings.Contains(strings.ToLower(p.AuthorName), search) &&
				!strings.Contains(strings.ToLower(p.Genre), search) {
				continue
			}
		}
		matched = append(matched, p)
	}
	m.mu.RUnlock()

	writePage(w, r, matched)
}

func (m *MockBackend) handleKind(kind feed.PostKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.mu.RLock()
		matched := make([]feed.Post, 0, len(m.posts))
		for _, p := range m.posts {
			if p.Kind == kind {
				matched = append(matched, p)
			}
		}
		m.mu.RUnlock()

		writePage(w, r, matched)
	}
}

func (m *MockBackend) handleReports(w http.ResponseWriter, r *http.Request) {
	m.mu.RLock()
	reports := m.reports
	m.mu.RUnlock()

	page, pageSize := pageParams(r)
	start, end := pageBounds(page, pageSize, len(reports))

	writeJSON(w, map[string]any{
		"items":       reports[start:end],
		"total_count": len(reports),
	})
}

func (m *MockBackend) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.AnalyticsCalls++
	totalPlays := 0
	totalLikes := 0
	for _, p := range m.posts {
		totalPlays += p.PlayCount
		totalLikes += p.LikeCount
	}
	totalPosts := len(m.posts)
	m.mu.Unlock()

	writeJSON(w, map[string]any{
		"total_posts":  totalPosts,
		"total_plays":  totalPlays,
		"total_likes":  totalLikes,
		"active_users": 42,
	})
}

func pageParams(r *http.Request) (page, pageSize int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(r.URL.Query().Get("page_size"))
	if pageSize < 1 {
		pageSize = 15
	}
	return page, pageSize
}

func pageBounds(page, pageSize, total int) (start, end int) {
	start = (page - 1) * pageSize
	if start > total {
		start = total
	}
	end = start + pageSize
	if end > total {
		end = total
	}
	return start, end
}

func writePage(w http.ResponseWriter, r *http.Request, posts []feed.Post) {
	page, pageSize := pageParams(r)
	start, end := pageBounds(page, pageSize, len(posts))

	writeJSON(w, map[string]any{
		"items":       posts[start:end],
		"total_count": len(posts),
	})
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// Connection-level failure; nothing sensible to do beyond logging.
		fmt.Printf("mock backend: encode response: %v\n", err)
	}
}
