package cache

import (
	"testing"
	"time"
)

// TestLRUCacheEviction tests size-based eviction
func TestLRUCacheEviction(t *testing.T) {
	c := NewLRUCache[string](3, time.Hour)

	c.Set("key1", "value1")
	c.Set("key2", "value2")
	c.Set("key3", "value3")
	c.Set("key4", "value4") // evicts key1

	if _, found := c.Get("key1"); found {
		t.Error("key1 should have been evicted")
	}
	for _, k := range []string{"key2", "key3", "key4"} {
		if _, found := c.Get(k); !found {
			t.Errorf("%s should still exist", k)
		}
	}
}

// TestLRUCacheAccessOrder checks that reads refresh recency
func TestLRUCacheAccessOrder(t *testing.T) {
	c := NewLRUCache[int](2, time.Hour)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3) // evicts b, not a

	if _, found := c.Get("a"); !found {
		t.Error("a was recently used and should survive")
	}
	if _, found := c.Get("b"); found {
		t.Error("b should have been evicted")
	}
}

func TestLRUCacheTTL(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRUCache[string](10, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("default", "v")
	c.SetWithTTL("short", "v", 10*time.Second)

	now = now.Add(10 * time.Second)
	if _, found := c.Get("short"); found {
		t.Error("entry must not be served at storedAt+ttl")
	}
	if _, found := c.Get("default"); !found {
		t.Error("default ttl entry should still be live")
	}

	now = now.Add(time.Minute)
	if removed := c.CleanExpired(); removed != 1 {
		t.Errorf("expected 1 expired entry removed, got %d", removed)
	}
	if c.Size() != 0 {
		t.Errorf("expected empty cache, got %d", c.Size())
	}
}

func TestLRUCacheDeletePrefix(t *testing.T) {
	c := NewLRUCache[string](10, time.Hour)
	c.Set("u1_GET_/api/v1/dashboard", "a")
	c.Set("u1_GET_/api/v1/budget", "b")
	c.Set("u10_GET_/api/v1/dashboard", "c")
	c.Set("u2_GET_/api/v1/dashboard", "d")

	if removed := c.DeletePrefix("u1_"); removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	if _, found := c.Get("u10_GET_/api/v1/dashboard"); !found {
		t.Error("u10 entries must not be touched by u1 invalidation")
	}
	if c.Size() != 2 {
		t.Errorf("expected 2 remaining entries, got %d", c.Size())
	}
}

func TestManagerCleanNow(t *testing.T) {
	c := NewLRUCache[string](10, time.Nanosecond)
	c.Set("k", "v")
	time.Sleep(time.Millisecond)

	m := NewManager(nil)
	m.Register(c)
	if n := m.CleanNow(); n != 1 {
		t.Fatalf("expected 1 cleaned entry, got %d", n)
	}

	m.StartCleanup(time.Millisecond)
	m.Stop()
	m.Stop() // second stop is a no-op
}
