package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/resonance-community/feed-core/pkg/logging"
	"github.com/rs/zerolog"
)

// Errors returned by the manager.
var (
	// ErrFetchInProgress is returned when LoadMore is called while a fetch is
	// outstanding. The call is rejected without touching state; callers may
	// treat it as a no-op.
	ErrFetchInProgress = errors.New("fetch already in progress")
)

// Config holds the manager configuration.
type Config struct {
	// PageSize is the number of posts per page (server fetch and client
	// reveal use the same size).
	PageSize int

	// MaxAutoFetchBatches bounds how many extra server batches one load-more
	// may trigger when the filtered view runs short.
	MaxAutoFetchBatches int

	// OnChange, if set, is invoked with a fresh Snapshot after every
	// committed transition. It is called synchronously with the manager's
	// lock held and must not call back into the Manager.
	OnChange func(Snapshot)
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		PageSize:            15,
		MaxAutoFetchBatches: 3,
	}
}

// Manager decides, per load-more request, whether to fetch the next page from
// the backend or to reveal more of the already-fetched, filtered buffer.
//
// Managers are constructed per session and hold no package-level state; create
// one per feed view and drop it on navigation. All methods are safe for
// concurrent use, and at most one backend fetch is in flight at a time.
type Manager struct {
	fetcher      Fetcher
	pageSize     int
	maxAutoFetch int
	onChange     func(Snapshot)
	logger       zerolog.Logger

	mu              sync.Mutex
	all             []Post
	seen            map[string]struct{}
	filter          Filter
	mode            Mode
	phase           Phase
	currentPage     int
	lastFetchedPage int
	totalServer     int // -1 until the first successful fetch
	lastErr         error
	lastFetchAt     time.Time

	// generation increments on every criteria change; fetches started under
	// an older generation are discarded when they complete.
	generation uint64
	inFlight   bool
}

// New creates a feed manager on top of the given fetcher.
func New(fetcher Fetcher, cfg Config) (*Manager, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 15
	}
	if cfg.MaxAutoFetchBatches <= 0 {
		cfg.MaxAutoFetchBatches = 3
	}

	return &Manager{
		fetcher:      fetcher,
		pageSize:     cfg.PageSize,
		maxAutoFetch: cfg.MaxAutoFetchBatches,
		onChange:     cfg.OnChange,
		logger:       logging.NewLogger("feed-manager"),
		seen:         make(map[string]struct{}),
		mode:         ModeServer,
		phase:        PhaseIdle,
		currentPage:  1,
		totalServer:  -1,
	}, nil
}

// LoadMore reveals the next page of posts. In server mode it fetches the next
// backend page; in client mode it reveals the next slice of the filtered
// buffer, auto-fetching more server data first if the filter has starved the
// remainder.
//
// A second LoadMore while one is outstanding returns ErrFetchInProgress and
// leaves state untouched. A failed fetch leaves the buffer and page cursor
// unchanged and parks the manager in PhaseError; calling LoadMore again
// retries the same page.
func (m *Manager) LoadMore(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.inFlight {
		duplicateRequests.Inc()
		m.logger.Debug().
			Str("phase", string(m.phase)).
			Msg("Load more rejected, fetch in flight")
		return ErrFetchInProgress
	}

	loadMoreTotal.WithLabelValues(string(m.mode)).Inc()

	if m.mode == ModeServer {
		return m.serverLoadMore(ctx)
	}
	return m.clientLoadMore(ctx)
}

// serverLoadMore fetches the next backend page and appends it to the buffer.
// m.mu must be held; it is released around the network call.
func (m *Manager) serverLoadMore(ctx context.Context) error {
	if !m.hasMoreServer() {
		m.phase = PhaseExhausted
		m.notify()
		return nil
	}

	page := m.lastFetchedPage + 1
	gen := m.generation
	m.inFlight = true
	m.phase = PhaseFetching
	m.notify()

	m.mu.Unlock()
	result, err := m.fetcher.FetchPosts(ctx, page, m.pageSize, Filter{})
	m.mu.Lock()

	m.inFlight = false

	if gen != m.generation {
		staleResponses.Inc()
		m.logger.Debug().
			Int("page", page).
			Msg("Discarding stale fetch response")
		m.recomputePhase()
		m.notify()
		return nil
	}

	if err != nil {
		fetchErrors.Inc()
		m.lastErr = err
		m.phase = PhaseError
		m.logger.Warn().Err(err).Int("page", page).Msg("Load more fetch failed")
		m.notify()
		return fmt.Errorf("fetch page %d: %w", page, err)
	}

	m.commitPage(page, result)
	m.currentPage = m.lastFetchedPage
	m.lastErr = nil
	m.recomputePhase()
	m.notify()

	m.logger.Debug().
		Int("page", page).
		Int("loaded", len(m.all)).
		Int("total", m.totalServer).
		Msg("Server page loaded")
	return nil
}

// clientLoadMore reveals the next slice of the filtered buffer, growing the
// buffer via auto-fetch first when the remainder cannot fill a page.
// m.mu must be held; auto-fetch releases it around network calls.
func (m *Manager) clientLoadMore(ctx context.Context) error {
	display := m.deriveDisplay()
	remaining := len(display) - m.visibleCount(len(display))

	if remaining < m.pageSize && m.hasMoreServer() {
		if stale := m.autoFetch(ctx, m.generation); stale {
			// Criteria changed under us; the newer criteria already
			// re-derived the view, nothing left to do here.
			m.recomputePhase()
			m.notify()
			return nil
		}
		display = m.deriveDisplay()
	}

	if m.currentPage*m.pageSize < len(display) {
		m.currentPage++
	}
	m.lastErr = nil
	m.recomputePhase()
	m.notify()
	return nil
}

// autoFetch grows the buffer by up to maxAutoFetch backend batches, stopping
// early once the filtered remainder can fill a page or the backend is
// exhausted. Fetch failures degrade gracefully: the loop stops and the caller
// reveals whatever is already loaded. Returns true if the results were
// discarded because criteria changed mid-flight.
// m.mu must be held; it is released around each network call.
func (m *Manager) autoFetch(ctx context.Context, gen uint64) (stale bool) {
	m.inFlight = true
	m.phase = PhaseAutoFetching
	m.notify()
	defer func() { m.inFlight = false }()

	for batch := 0; batch < m.maxAutoFetch; batch++ {
		display := m.deriveDisplay()
		remaining := len(display) - m.visibleCount(len(display))
		if remaining >= m.pageSize || !m.hasMoreServer() {
			break
		}

		page := m.lastFetchedPage + 1

		m.mu.Unlock()
		result, err := m.fetcher.FetchPosts(ctx, page, m.pageSize, Filter{})
		m.mu.Lock()

		if gen != m.generation {
			staleResponses.Inc()
			m.logger.Debug().
				Int("page", page).
				Msg("Discarding stale auto-fetch response")
			return true
		}

		if err != nil {
			fetchErrors.Inc()
			m.logger.Warn().
				Err(err).
				Int("page", page).
				Int("batch", batch+1).
				Msg("Auto-fetch failed, showing loaded posts")
			break
		}

		autoFetchBatches.Inc()
		m.commitPage(page, result)

		m.logger.Debug().
			Int("page", page).
			Int("batch", batch+1).
			Int("loaded", len(m.all)).
			Msg("Auto-fetch batch loaded")
	}

	return false
}

// commitPage appends one fetched page to the buffer. Pages other than the
// next expected one are rejected so that a retried request cannot append
// twice; posts already present are skipped by ID for the same reason.
// m.mu must be held.
func (m *Manager) commitPage(page int, result Page) {
	if page != m.lastFetchedPage+1 {
		duplicateRequests.Inc()
		m.logger.Debug().
			Int("page", page).
			Int("last_fetched", m.lastFetchedPage).
			Msg("Rejecting duplicate page commit")
		return
	}

	for _, p := range result.Posts {
		if _, dup := m.seen[p.ID]; dup {
			continue
		}
		m.seen[p.ID] = struct{}{}
		m.all = append(m.all, p)
	}

	m.totalServer = result.TotalCount
	m.lastFetchedPage = page
	m.lastFetchAt = time.Now()
}

// UpdateSearch sets the search term and switches to client mode (or back to
// server mode when the term is empty and no other criteria remain). The view
// is re-derived from the existing buffer; no refetch happens until the next
// LoadMore.
func (m *Manager) UpdateSearch(term string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.filter.Search = term
	m.criteriaChanged()
}

// ClearSearch removes the search term. The mode returns to server only if no
// other criteria remain active.
func (m *Manager) ClearSearch() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.filter.Search = ""
	m.criteriaChanged()
}

// UpdateFilters replaces the kind, sort, and time-range criteria. The search
// term is managed separately via UpdateSearch/ClearSearch.
func (m *Manager) UpdateFilters(f Filter) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.filter.Kind = f.Kind
	m.filter.SortBy = f.SortBy
	m.filter.TimeRange = f.TimeRange
	m.criteriaChanged()
}

// ClearFilters removes the kind, sort, and time-range criteria.
func (m *Manager) ClearFilters() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.filter.Kind = ""
	m.filter.SortBy = ""
	m.filter.TimeRange = ""
	m.criteriaChanged()
}

// criteriaChanged applies a filter/search transition: mode follows whether any
// criteria remain, the display page resets, and the generation counter is
// bumped so in-flight fetch results get discarded. The buffer itself is kept.
// m.mu must be held.
func (m *Manager) criteriaChanged() {
	m.generation++
	m.currentPage = 1
	m.lastErr = nil

	if m.filter.IsZero() {
		m.mode = ModeServer
	} else {
		m.mode = ModeClient
	}

	if !m.inFlight {
		m.recomputePhase()
	}

	m.logger.Debug().
		Str("mode", string(m.mode)).
		Str("search", m.filter.Search).
		Str("kind", string(m.filter.Kind)).
		Msg("Criteria changed")
	m.notify()
}

// Snapshot returns an immutable view of the current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

// snapshot builds a Snapshot. m.mu must be held.
func (m *Manager) snapshot() Snapshot {
	display := m.deriveDisplay()

	visible := display
	if m.mode == ModeClient {
		visible = display[:m.visibleCount(len(display))]
	}

	posts := make([]Post, len(visible))
	copy(posts, visible)

	return Snapshot{
		Mode:              m.mode,
		Phase:             m.phase,
		Posts:             posts,
		Filter:            m.filter,
		CurrentPage:       m.currentPage,
		PageSize:          m.pageSize,
		LoadedServerPosts: len(m.all),
		TotalServerPosts:  m.totalServer,
		HasMore:           m.hasMore(display),
		LastError:         m.lastErr,
		LastFetchAt:       m.lastFetchAt,
	}
}

// deriveDisplay computes the filtered view of the buffer. With no criteria
// active the buffer is shown in fetch order. m.mu must be held.
func (m *Manager) deriveDisplay() []Post {
	if m.filter.IsZero() {
		display := make([]Post, len(m.all))
		copy(display, m.all)
		return display
	}
	return m.filter.Apply(m.all)
}

// visibleCount bounds the revealed slice in client mode so the display page
// never reaches past the filtered view. m.mu must be held.
func (m *Manager) visibleCount(displayLen int) int {
	visible := m.currentPage * m.pageSize
	if visible > displayLen {
		return displayLen
	}
	return visible
}

// hasMoreServer reports whether the backend holds posts we have not fetched.
// Before the first fetch the total is unknown and assumed non-empty.
// m.mu must be held.
func (m *Manager) hasMoreServer() bool {
	if m.totalServer < 0 {
		return true
	}
	return len(m.all) < m.totalServer
}

// hasMore reports whether another LoadMore can reveal additional posts.
// m.mu must be held.
func (m *Manager) hasMore(display []Post) bool {
	if m.mode == ModeServer {
		return m.hasMoreServer()
	}
	return m.visibleCount(len(display)) < len(display) || m.hasMoreServer()
}

// recomputePhase settles the phase after a committed transition. Error and
// in-flight phases are set at their sites; this only decides idle vs
// exhausted. m.mu must be held.
func (m *Manager) recomputePhase() {
	if m.hasMore(m.deriveDisplay()) {
		m.phase = PhaseIdle
	} else {
		m.phase = PhaseExhausted
	}
}

// notify invokes the OnChange callback, if configured. m.mu must be held.
func (m *Manager) notify() {
	if m.onChange != nil {
		m.onChange(m.snapshot())
	}
}
