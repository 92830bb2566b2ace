package core

import (
	"fmt"
	"testing"
	"time"
)

func testSessionData(userID string) *SessionData {
	return &SessionData{
		User:    &User{ID: userID, Email: userID + "@x.com"},
		Session: &Session{ID: "hash-" + userID, UserID: userID, ExpiresAt: time.Now().Add(time.Hour)},
	}
}

func TestInMemoryCache_GetSetDelete(t *testing.T) {
	cache := NewInMemoryCache(CacheConfig{TTL: time.Minute, MaxSize: 10})
	data := testSessionData("user1")

	if _, err := cache.Get("hash-user1"); err != ErrCacheNotFound {
		t.Fatalf("Get() on empty cache error = %v, want ErrCacheNotFound", err)
	}

	if err := cache.Set("hash-user1", data); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := cache.Get("hash-user1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.User.ID != "user1" {
		t.Errorf("Get() user = %q, want %q", got.User.ID, "user1")
	}

	if err := cache.Delete("hash-user1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := cache.Get("hash-user1"); err != ErrCacheNotFound {
		t.Errorf("Get() after delete error = %v, want ErrCacheNotFound", err)
	}
}

// Records must not be aliased across callers: the renewal path mutates
// Session.ExpiresAt on whatever Get handed out.
func TestInMemoryCache_CopiesOnGetAndSet(t *testing.T) {
	cache := NewInMemoryCache(CacheConfig{TTL: time.Minute, MaxSize: 10})
	original := testSessionData("user1")
	storedExpiry := original.Session.ExpiresAt

	if err := cache.Set("k", original); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	// Mutating the value passed to Set must not reach the cache.
	original.Session.ExpiresAt = storedExpiry.Add(time.Hour)
	got, err := cache.Get("k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !got.Session.ExpiresAt.Equal(storedExpiry) {
		t.Errorf("cached expiry = %v, want %v (Set aliased its input)", got.Session.ExpiresAt, storedExpiry)
	}

	// Mutating one Get result must not be visible to the next.
	got.Session.ExpiresAt = storedExpiry.Add(2 * time.Hour)
	again, err := cache.Get("k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !again.Session.ExpiresAt.Equal(storedExpiry) {
		t.Errorf("cached expiry = %v, want %v (Get aliased the record)", again.Session.ExpiresAt, storedExpiry)
	}
}

func TestInMemoryCache_TTLExpiry(t *testing.T) {
	cache := NewInMemoryCache(CacheConfig{TTL: 10 * time.Millisecond, MaxSize: 10})
	if err := cache.Set("k", testSessionData("user1")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	if _, err := cache.Get("k"); err != ErrCacheNotFound {
		t.Errorf("Get() after TTL error = %v, want ErrCacheNotFound", err)
	}
	if cache.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after expiry eviction", cache.Len())
	}
}

func TestInMemoryCache_EvictionWhenFull(t *testing.T) {
	cache := NewInMemoryCache(CacheConfig{TTL: time.Minute, MaxSize: 3})

	for i := 0; i < 5; i++ {
		key := fmt.Sprintf("hash-%d", i)
		if err := cache.Set(key, testSessionData(fmt.Sprintf("user%d", i))); err != nil {
			t.Fatalf("Set(%q) error = %v", key, err)
		}
	}

	if cache.Len() > 3 {
		t.Errorf("Len() = %d, want <= 3", cache.Len())
	}
	if stats := cache.Stats(); stats.Evictions != 2 {
		t.Errorf("Evictions = %d, want 2", stats.Evictions)
	}
}

func TestInMemoryCache_Clear(t *testing.T) {
	cache := NewInMemoryCache(CacheConfig{})
	_ = cache.Set("a", testSessionData("user1"))
	_ = cache.Set("b", testSessionData("user2"))

	if err := cache.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if cache.Len() != 0 {
		t.Errorf("Len() = %d, want 0", cache.Len())
	}
}

func TestInMemoryCache_Stats(t *testing.T) {
	cache := NewInMemoryCache(CacheConfig{TTL: time.Minute, MaxSize: 10})

	_ = cache.Set("a", testSessionData("user1"))
	_, _ = cache.Get("a")
	_, _ = cache.Get("missing")
	_ = cache.Delete("a")

	stats := cache.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Sets != 1 || stats.Deletes != 1 {
		t.Errorf("Stats() = %+v, want 1 hit, 1 miss, 1 set, 1 delete", stats)
	}
	if stats.TTL != time.Minute {
		t.Errorf("Stats().TTL = %v, want %v", stats.TTL, time.Minute)
	}
}
