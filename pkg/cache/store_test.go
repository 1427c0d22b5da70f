package cache

import (
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"
)

func TestStore_SetAndGet(t *testing.T) {
	store := NewStore(0)

	store.Set("k", map[string]int{"a": 1}, 0)

	value, ok := store.Get("k")
	if !ok {
		t.Fatal("Expected cache hit after Set")
	}

	m, ok := value.(map[string]int)
	if !ok {
		t.Fatalf("Expected map[string]int, got %T", value)
	}
	if m["a"] != 1 {
		t.Errorf("Value mismatch: got %v, want map[a:1]", m)
	}
}

func TestStore_Get_Miss(t *testing.T) {
	store := NewStore(0)

	value, ok := store.Get("missing")
	if ok {
		t.Errorf("Expected miss for absent key, got value %v", value)
	}
}

func TestStore_Get_Expired(t *testing.T) {
	store := NewStore(0)

	store.Set("k", "value", 50*time.Millisecond)

	if _, ok := store.Get("k"); !ok {
		t.Fatal("Expected hit before expiry")
	}

	time.Sleep(100 * time.Millisecond)

	if value, ok := store.Get("k"); ok {
		t.Errorf("Expected miss after expiry, got %v", value)
	}

	// Expired entry must be evicted, not just hidden
	stats := store.GetStats()
	if stats.Size != 0 {
		t.Errorf("Expected stats size 0 after expiry, got %d", stats.Size)
	}
}

func TestStore_Set_Overwrite(t *testing.T) {
	store := NewStore(0)

	store.Set("k", "first", 0)
	store.Set("k", "second", 0)

	value, ok := store.Get("k")
	if !ok {
		t.Fatal("Expected hit")
	}
	if value != "second" {
		t.Errorf("Expected overwritten value, got %v", value)
	}

	stats := store.GetStats()
	if stats.Size != 1 {
		t.Errorf("Expected single entry after overwrite, got %d", stats.Size)
	}
}

func TestStore_DefaultTTL(t *testing.T) {
	store := NewStore(50 * time.Millisecond)

	store.Set("k", "value", 0) // use store default

	time.Sleep(100 * time.Millisecond)

	if _, ok := store.Get("k"); ok {
		t.Error("Expected default TTL to apply when ttl <= 0")
	}
}

func TestGetAs(t *testing.T) {
	type counts struct {
		Plays int
	}

	store := NewStore(0)
	store.Set("analytics", counts{Plays: 42}, 0)

	got, ok := GetAs[counts](store, "analytics")
	if !ok {
		t.Fatal("Expected typed hit")
	}
	if got.Plays != 42 {
		t.Errorf("Plays = %d, want 42", got.Plays)
	}

	// Wrong type counts as a miss
	if _, ok := GetAs[string](store, "analytics"); ok {
		t.Error("Expected miss for mismatched type")
	}

	if _, ok := GetAs[counts](store, "absent"); ok {
		t.Error("Expected miss for absent key")
	}
}

func TestStore_Has(t *testing.T) {
	store := NewStore(0)

	if store.Has("k") {
		t.Error("Has should be false for absent key")
	}

	store.Set("k", "value", 50*time.Millisecond)
	if !store.Has("k") {
		t.Error("Has should be true for live entry")
	}

	time.Sleep(100 * time.Millisecond)
	if store.Has("k") {
		t.Error("Has should be false for expired entry")
	}
}

func TestStore_Invalidate(t *testing.T) {
	store := NewStore(0)

	store.Set("k", "value", 0)
	store.Invalidate("k")

	if _, ok := store.Get("k"); ok {
		t.Error("Expected miss after Invalidate")
	}

	// No-op for absent keys
	store.Invalidate("absent")
}

func TestStore_InvalidatePattern(t *testing.T) {
	store := NewStore(0)

	store.Set("resonance:posts:page=1:size=15", "p1", 0)
	store.Set("resonance:posts:page=2:size=15", "p2", 0)
	store.Set("resonance:albums:page=1:size=15", "a1", 0)
	store.Set("resonance:analytics:weekly", "counts", 0)

	removed := store.InvalidatePattern(":posts:")
	if removed != 2 {
		t.Errorf("InvalidatePattern removed %d entries, want 2", removed)
	}

	// Exactly the matching entries are gone
	if store.Has("resonance:posts:page=1:size=15") || store.Has("resonance:posts:page=2:size=15") {
		t.Error("Expected posts pages to be invalidated")
	}
	if !store.Has("resonance:albums:page=1:size=15") {
		t.Error("Albums entry should survive posts invalidation")
	}
	if !store.Has("resonance:analytics:weekly") {
		t.Error("Analytics entry should survive posts invalidation")
	}
}

func TestStore_InvalidatePattern_NoMatch(t *testing.T) {
	store := NewStore(0)
	store.Set("k", "value", 0)

	if removed := store.InvalidatePattern("nomatch"); removed != 0 {
		t.Errorf("Expected 0 removals, got %d", removed)
	}
	if !store.Has("k") {
		t.Error("Unmatched entry should survive")
	}
}

func TestStore_Clear(t *testing.T) {
	store := NewStore(0)

	store.Set("a", 1, 0)
	store.Set("b", 2, 0)
	store.Clear()

	stats := store.GetStats()
	if stats.Size != 0 {
		t.Errorf("Expected empty store after Clear, got %d entries", stats.Size)
	}
	if _, ok := store.Get("a"); ok {
		t.Error("Expected miss after Clear")
	}
}

func TestStore_GetStats(t *testing.T) {
	store := NewStore(0)

	store.Set("a", 1, 0)
	store.Set("b", 2, 0)
	store.Set("expired", 3, 1*time.Millisecond)

	time.Sleep(10 * time.Millisecond)

	stats := store.GetStats()
	if stats.Size != 2 {
		t.Errorf("Expected 2 live entries, got %d", stats.Size)
	}

	sort.Strings(stats.Keys)
	want := []string{"a", "b"}
	for i, key := range want {
		if stats.Keys[i] != key {
			t.Errorf("Keys[%d] = %q, want %q", i, stats.Keys[i], key)
		}
	}
}

// Spec scenario: set with a 100ms TTL, read back immediately, then read after
// the TTL has passed.
func TestStore_TTLScenario(t *testing.T) {
	store := NewStore(0)

	store.Set("k", map[string]int{"a": 1}, 100*time.Millisecond)

	value, ok := store.Get("k")
	if !ok {
		t.Fatal("Expected immediate hit")
	}
	if value.(map[string]int)["a"] != 1 {
		t.Errorf("Value mismatch: got %v", value)
	}

	time.Sleep(150 * time.Millisecond)

	if _, ok := store.Get("k"); ok {
		t.Error("Expected miss after TTL elapsed")
	}
	if store.GetStats().Size != 0 {
		t.Error("Stats should no longer count the expired key")
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store := NewStore(0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("worker%d:item%d", worker, j)
				store.Set(key, j, 0)
				store.Get(key)
				if j%10 == 0 {
					store.InvalidatePattern(fmt.Sprintf("worker%d:", worker))
				}
			}
		}(i)
	}
	wg.Wait()
}
