package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// setupTestRedis creates a test Redis client. Unit tests skip when no local
// Redis is available; the integration suite runs against a container instead.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // Use a separate DB for tests
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for testing: %v", err)
	}

	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush test DB: %v", err)
	}

	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})

	return client
}

func TestNewRedisStore_Panic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("NewRedisStore should panic with nil redis client")
		}
	}()
	NewRedisStore(nil, 0)
}

func TestRedisStore_SetAndGet(t *testing.T) {
	client := setupTestRedis(t)
	store := NewRedisStore(client, 0)
	ctx := context.Background()

	type page struct {
		Titles []string `json:"titles"`
		Total  int      `json:"total"`
	}

	key := Key{Resource: "posts", Page: 1, PageSize: 15}.String()
	want := page{Titles: []string{"Neon Bloom", "Static Garden"}, Total: 2}

	if err := store.Set(ctx, key, want, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var got page
	if err := store.Get(ctx, key, &got); err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if got.Total != want.Total || len(got.Titles) != len(want.Titles) {
		t.Errorf("Round-trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestRedisStore_Get_CacheMiss(t *testing.T) {
	client := setupTestRedis(t)
	store := NewRedisStore(client, 0)
	ctx := context.Background()

	var dest map[string]int
	if err := store.Get(ctx, "resonance:nonexistent", &dest); err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss, got %v", err)
	}
}

func TestRedisStore_TTL(t *testing.T) {
	client := setupTestRedis(t)
	store := NewRedisStore(client, 0)
	ctx := context.Background()

	if err := store.Set(ctx, "short-lived", "value", 100*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	time.Sleep(200 * time.Millisecond)

	var dest string
	if err := store.Get(ctx, "short-lived", &dest); err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss after TTL, got %v", err)
	}
}

func TestRedisStore_Delete(t *testing.T) {
	client := setupTestRedis(t)
	store := NewRedisStore(client, 0)
	ctx := context.Background()

	if err := store.Set(ctx, "k", "value", time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var dest string
	if err := store.Get(ctx, "k", &dest); err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss after Delete, got %v", err)
	}

	// Deleting an absent key is not an error
	if err := store.Delete(ctx, "absent"); err != nil {
		t.Errorf("Delete of absent key failed: %v", err)
	}
}

func TestRedisStore_InvalidatePattern(t *testing.T) {
	client := setupTestRedis(t)
	store := NewRedisStore(client, 0)
	ctx := context.Background()

	entries := map[string]string{
		"resonance:posts:page=1:size=15":  "p1",
		"resonance:posts:page=2:size=15":  "p2",
		"resonance:albums:page=1:size=15": "a1",
	}
	for key, value := range entries {
		if err := store.Set(ctx, key, value, time.Minute); err != nil {
			t.Fatalf("Set %q failed: %v", key, err)
		}
	}

	removed, err := store.InvalidatePattern(ctx, ":posts:")
	if err != nil {
		t.Fatalf("InvalidatePattern failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("InvalidatePattern removed %d, want 2", removed)
	}

	var dest string
	if err := store.Get(ctx, "resonance:albums:page=1:size=15", &dest); err != nil {
		t.Errorf("Albums entry should survive posts invalidation: %v", err)
	}
}
