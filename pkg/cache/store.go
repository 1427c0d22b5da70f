package cache

import (
	"strings"
	"sync"
	"time"
)

// Stats describes the current contents of a Store.
type Stats struct {
	// Size is the number of live (non-expired) entries.
	Size int `json:"size"`

	// Keys lists the keys of live entries.
	Keys []string `json:"keys"`
}

// Store is a process-local key-value cache with per-entry TTL.
//
// Expiry is lazy: stale entries are evicted when they are next read, not by a
// background sweeper. Stores live for the lifetime of a session and stay small
// (a few hundred entries), so a sweeper would buy nothing.
//
// All methods are safe for concurrent use.
type Store struct {
	mu         sync.RWMutex
	entries    map[string]*Entry
	defaultTTL time.Duration
}

// NewStore creates a new in-memory cache store.
// A defaultTTL <= 0 falls back to DefaultTTL (5 minutes).
func NewStore(defaultTTL time.Duration) *Store {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &Store{
		entries:    make(map[string]*Entry),
		defaultTTL: defaultTTL,
	}
}

// Set stores a value under key with the given TTL.
// A ttl <= 0 uses the store's default. An existing entry for key is overwritten.
func (s *Store) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	now := time.Now()
	s.mu.Lock()
	s.entries[key] = &Entry{
		Value:     value,
		ExpiresAt: now.Add(ttl),
		CachedAt:  now,
	}
	size := len(s.entries)
	s.mu.Unlock()

	cacheEntries.WithLabelValues(layerMemory).Set(float64(size))
}

// Get returns the value stored under key and true on a hit.
// An expired entry behaves exactly like a miss and is evicted on the spot.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		cacheMisses.WithLabelValues(layerMemory).Inc()
		return nil, false
	}

	if entry.IsExpired() {
		s.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have replaced it.
		if current, still := s.entries[key]; still && current == entry {
			delete(s.entries, key)
			cacheEvictions.WithLabelValues(layerMemory, reasonExpired).Inc()
			cacheEntries.WithLabelValues(layerMemory).Set(float64(len(s.entries)))
		}
		s.mu.Unlock()

		cacheMisses.WithLabelValues(layerMemory).Inc()
		return nil, false
	}

	cacheHits.WithLabelValues(layerMemory).Inc()
	return entry.Value, true
}

// GetAs returns the value stored under key as type T.
// A stored value of a different type counts as a miss.
func GetAs[T any](s *Store, key string) (T, bool) {
	var zero T

	value, ok := s.Get(key)
	if !ok {
		return zero, false
	}

	typed, ok := value.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// Has returns true iff a non-expired entry exists for key.
func (s *Store) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Invalidate removes the entry for key. It is a no-op if the key is absent.
func (s *Store) Invalidate(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; !ok {
		return
	}
	delete(s.entries, key)
	cacheEvictions.WithLabelValues(layerMemory, reasonInvalidated).Inc()
	cacheEntries.WithLabelValues(layerMemory).Set(float64(len(s.entries)))
}

// InvalidatePattern removes every entry whose key contains substring and
// returns the number of entries removed. Used to drop related cache families,
// e.g. all cached pages of one resource.
func (s *Store) InvalidatePattern(substring string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key := range s.entries {
		if strings.Contains(key, substring) {
			delete(s.entries, key)
			removed++
		}
	}

	if removed > 0 {
		cacheEvictions.WithLabelValues(layerMemory, reasonInvalidated).Add(float64(removed))
		cacheEntries.WithLabelValues(layerMemory).Set(float64(len(s.entries)))
	}
	return removed
}

// Clear removes all entries.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) > 0 {
		cacheEvictions.WithLabelValues(layerMemory, reasonCleared).Add(float64(len(s.entries)))
	}
	s.entries = make(map[string]*Entry)
	cacheEntries.WithLabelValues(layerMemory).Set(0)
}

// GetStats returns a snapshot of the store's live entries.
// Expired-but-unswept entries are excluded so the numbers match what Get
// would report.
func (s *Store) GetStats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.entries))
	for key, entry := range s.entries {
		if entry.IsExpired() {
			continue
		}
		keys = append(keys, key)
	}

	return Stats{
		Size: len(keys),
		Keys: keys,
	}
}
