package feed

import (
	"context"
	"time"
)

// PostKind classifies a community post.
type PostKind string

const (
	// KindTrack is a single generated track.
	KindTrack PostKind = "track"

	// KindAlbum is a multi-track album.
	KindAlbum PostKind = "album"

	// KindPlaylist is a user-curated playlist.
	KindPlaylist PostKind = "playlist"

	// KindDiscussion is a text-only discussion post.
	KindDiscussion PostKind = "discussion"
)

// Post is a single community feed item.
type Post struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Title      string    `json:"title"`
	Kind       PostKind  `json:"kind"`
	Genre      string    `json:"genre,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	LikeCount  int       `json:"like_count"`
	PlayCount  int       `json:"play_count"`
}

// Page is one fetched page of posts together with the backend's total count.
type Page struct {
	Posts      []Post `json:"items"`
	TotalCount int    `json:"total_count"`
}

// Fetcher fetches pages of posts from the backing data layer.
// The Manager always fetches unfiltered pages (page is 1-based) and applies
// Filter criteria client-side; implementations may still use the filter
// argument for resource-specific fetches outside the manager.
type Fetcher interface {
	FetchPosts(ctx context.Context, page, pageSize int, filter Filter) (Page, error)
}
