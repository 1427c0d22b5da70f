package feed

import (
	"time"
)

// Mode is the pagination mode of the manager.
type Mode string

const (
	// ModeServer fetches successive pages from the backend. Active while no
	// search or filter criteria are set.
	ModeServer Mode = "server"

	// ModeClient reveals more of the already-fetched buffer through the
	// active filter, without contacting the backend.
	ModeClient Mode = "client"
)

// Phase is the manager's position in its load-more state machine. Named
// phases replace ad-hoc boolean flags so that invalid transitions (fetching
// while a fetch is in flight) are checked in exactly one place.
type Phase string

const (
	// PhaseIdle means no request is outstanding and more posts may remain.
	PhaseIdle Phase = "idle"

	// PhaseFetching means a load-more fetch is in flight.
	PhaseFetching Phase = "fetching"

	// PhaseAutoFetching means the manager is growing the buffer on its own
	// because the filtered view ran short. Distinct from PhaseFetching so the
	// UI can show different feedback.
	PhaseAutoFetching Phase = "auto_fetching"

	// PhaseError means the last fetch failed; LoadMore may be retried.
	PhaseError Phase = "error"

	// PhaseExhausted means everything the backend has is loaded and revealed.
	PhaseExhausted Phase = "exhausted"
)

// Snapshot is an immutable view of the manager's state. The Posts slice is
// freshly derived on every call and safe to hold across later transitions.
type Snapshot struct {
	// Mode is the current pagination mode.
	Mode Mode

	// Phase is the current load-more phase.
	Phase Phase

	// Posts is the visible, filtered view.
	Posts []Post

	// Filter is the active criteria.
	Filter Filter

	// CurrentPage is the 1-based display page (visible slice bound in client
	// mode, last revealed server page in server mode).
	CurrentPage int

	// PageSize is the configured page size.
	PageSize int

	// LoadedServerPosts is the number of posts fetched from the backend so far.
	LoadedServerPosts int

	// TotalServerPosts is the backend's reported total (-1 before first fetch).
	TotalServerPosts int

	// HasMore is true if a further LoadMore can reveal additional posts.
	HasMore bool

	// LastError is the error of the most recent failed fetch, nil otherwise.
	LastError error

	// LastFetchAt is when the last successful backend fetch completed.
	LastFetchAt time.Time
}
