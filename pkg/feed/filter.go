package feed

import (
	"sort"
	"strings"
	"time"
)

// SortOrder selects how a filtered view is ordered.
type SortOrder string

const (
	// SortNewest orders by creation time, newest first. This is the default.
	SortNewest SortOrder = "newest"

	// SortOldest orders by creation time, oldest first.
	SortOldest SortOrder = "oldest"

	// SortMostLiked orders by like count, highest first.
	SortMostLiked SortOrder = "most_liked"

	// SortMostPlayed orders by play count, highest first.
	SortMostPlayed SortOrder = "most_played"
)

// TimeRange restricts a filtered view to recently created posts.
type TimeRange string

const (
	// RangeAll applies no time restriction. This is the default.
	RangeAll TimeRange = "all"

	// RangeDay keeps posts from the last 24 hours.
	RangeDay TimeRange = "day"

	// RangeWeek keeps posts from the last 7 days.
	RangeWeek TimeRange = "week"

	// RangeMonth keeps posts from the last 30 days.
	RangeMonth TimeRange = "month"
)

// Filter holds the search and filter criteria a feed view is derived from.
// The zero value matches everything.
type Filter struct {
	// Search is a case-insensitive substring match over title, author name,
	// and genre.
	Search string `json:"search,omitempty"`

	// Kind keeps only posts of one kind. Empty matches all kinds.
	Kind PostKind `json:"kind,omitempty"`

	// SortBy orders the result. Empty means SortNewest.
	SortBy SortOrder `json:"sort_by,omitempty"`

	// TimeRange restricts results by creation time. Empty means RangeAll.
	TimeRange TimeRange `json:"time_range,omitempty"`
}

// IsZero returns true if no criteria are active.
func (f Filter) IsZero() bool {
	return f.Search == "" &&
		f.Kind == "" &&
		(f.SortBy == "" || f.SortBy == SortNewest) &&
		(f.TimeRange == "" || f.TimeRange == RangeAll)
}

// cutoff returns the earliest creation time the filter admits and whether a
// time restriction is active.
func (f Filter) cutoff(now time.Time) (time.Time, bool) {
	switch f.TimeRange {
	case RangeDay:
		return now.Add(-24 * time.Hour), true
	case RangeWeek:
		return now.Add(-7 * 24 * time.Hour), true
	case RangeMonth:
		return now.Add(-30 * 24 * time.Hour), true
	default:
		return time.Time{}, false
	}
}

// matches reports whether a single post passes the filter criteria.
func (f Filter) matches(p Post, cutoff time.Time, hasCutoff bool) bool {
	if hasCutoff && p.CreatedAt.Before(cutoff) {
		return false
	}
	if f.Kind != "" && p.Kind != f.Kind {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Title), needle) &&
			!strings.Contains(strings.ToLower(p.AuthorName), needle) &&
			!strings.Contains(strings.ToLower(p.Genre), needle) {
			return false
		}
	}
	return true
}

// Apply derives the filtered, sorted view of posts.
//
// Apply is a pure function of its inputs: it never mutates posts and the same
// (posts, filter) pair always yields the same result. The sort is stable, so
// posts that compare equal keep their fetch order.
func (f Filter) Apply(posts []Post) []Post {
	cutoff, hasCutoff := f.cutoff(time.Now())

	result := make([]Post, 0, len(posts))
	for _, p := range posts {
		if f.matches(p, cutoff, hasCutoff) {
			result = append(result, p)
		}
	}

	switch f.SortBy {
	case SortOldest:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		})
	case SortMostLiked:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].LikeCount > result[j].LikeCount
		})
	case SortMostPlayed:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].PlayCount > result[j].PlayCount
		})
	default: // SortNewest
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		})
	}

	return result
}
