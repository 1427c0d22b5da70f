package cache

import (
	"time"
)

// DefaultTTL is the expiration applied when a caller does not specify one.
const DefaultTTL = 5 * time.Minute

// Entry represents a cached value with its expiration deadline.
type Entry struct {
	// Value is the stored value.
	Value any `json:"value"`

	// ExpiresAt is when the entry becomes stale.
	ExpiresAt time.Time `json:"expires_at"`

	// CachedAt is when the entry was stored.
	CachedAt time.Time `json:"cached_at"`
}

// IsExpired returns true if the entry has expired.
func (e *Entry) IsExpired() bool {
	return time.Now().After(e.ExpiresAt)
}

// TTL returns the time until expiration.
// Returns 0 if already expired.
func (e *Entry) TTL() time.Duration {
	ttl := time.Until(e.ExpiresAt)
	if ttl < 0 {
		return 0
	}
	return ttl
}
