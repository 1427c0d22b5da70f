package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrCacheMiss indicates the requested key was not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the cache entry is invalid or corrupted
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// RedisStore is a shared cache backed by Redis, used by gateway deployments so
// that multiple instances see the same cached pages. Values are stored as JSON
// with a server-side TTL; Redis drops entries on expiry by itself, so unlike
// the in-memory Store there is no lazy eviction path.
type RedisStore struct {
	redis      *redis.Client
	defaultTTL time.Duration
}

// NewRedisStore creates a Redis-backed cache store.
// A defaultTTL <= 0 falls back to DefaultTTL (5 minutes).
func NewRedisStore(redisClient *redis.Client, defaultTTL time.Duration) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &RedisStore{
		redis:      redisClient,
		defaultTTL: defaultTTL,
	}
}

// Get retrieves the value stored under key and unmarshals it into dest.
// Returns ErrCacheMiss if the key doesn't exist.
func (s *RedisStore) Get(ctx context.Context, key string, dest any) error {
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			cacheMisses.WithLabelValues(layerRedis).Inc()
			return ErrCacheMiss
		}
		cacheErrors.WithLabelValues("get").Inc()
		return fmt.Errorf("redis get: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		cacheErrors.WithLabelValues("get").Inc()
		return fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	cacheHits.WithLabelValues(layerRedis).Inc()
	return nil
}

// Set stores a value under key with the given TTL.
// A ttl <= 0 uses the store's default.
func (s *RedisStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	data, err := json.Marshal(value)
	if err != nil {
		cacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("marshal cache value: %w", err)
	}

	if err := s.redis.Set(ctx, key, data, ttl).Err(); err != nil {
		cacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

// Delete removes the entry for key. Removing an absent key is not an error.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.redis.Del(ctx, key).Err(); err != nil {
		cacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// InvalidatePattern removes every entry whose key contains substring and
// returns the number of entries removed. Keys are discovered via SCAN to
// avoid blocking Redis the way KEYS would.
func (s *RedisStore) InvalidatePattern(ctx context.Context, substring string) (int, error) {
	var removed int

	iter := s.redis.Scan(ctx, 0, "*"+substring+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.redis.Del(ctx, iter.Val()).Err(); err != nil {
			cacheErrors.WithLabelValues("invalidate_pattern").Inc()
			return removed, fmt.Errorf("redis del %q: %w", iter.Val(), err)
		}
		removed++
	}
	if err := iter.Err(); err != nil {
		cacheErrors.WithLabelValues("invalidate_pattern").Inc()
		return removed, fmt.Errorf("redis scan: %w", err)
	}

	if removed > 0 {
		cacheEvictions.WithLabelValues(layerRedis, reasonInvalidated).Add(float64(removed))
	}
	return removed, nil
}
