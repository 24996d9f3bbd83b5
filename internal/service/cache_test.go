package service

import (
	"testing"
	"time"
)

func TestCacheSetGet(t *testing.T) {
	c := newTTLCache(time.Minute, 10)

	c.Set("a", 1)
	if v, ok := c.Get("a"); !ok || v.(int) != 1 {
		t.Fatalf("Get(a) = %v, %v, want 1, true", v, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Error("unknown key must miss")
	}

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("deleted key must miss")
	}
}

func TestCacheExpiry(t *testing.T) {
	c := newTTLCache(20*time.Millisecond, 10)

	c.Set("a", 1)
	time.Sleep(30 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Error("expired key must miss")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d after expiry, want 0", c.Len())
	}
}

func TestCacheEvictsOldestFirst(t *testing.T) {
	c := newTTLCache(time.Minute, 2)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	if _, ok := c.Get("a"); ok {
		t.Error("oldest key must be evicted at capacity")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("b must survive eviction")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("c must survive eviction")
	}
}

func TestCacheRefreshAfterExpiryKeepsEvictionOrder(t *testing.T) {
	c := newTTLCache(30*time.Millisecond, 2)

	c.Set("a", 1)
	time.Sleep(40 * time.Millisecond)
	if _, ok := c.Get("a"); ok {
		t.Fatal("first a must have expired")
	}

	// Re-set the expired key, then fill past capacity. The refreshed key
	// is newer than b, so eviction must drop b, not a stale duplicate
	// position left over from the first insertion.
	c.Set("b", 2)
	c.Set("a", 10)
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b is the oldest live entry and must be evicted")
	}
	if v, ok := c.Get("a"); !ok || v.(int) != 10 {
		t.Errorf("refreshed a must survive eviction, got %v, %v", v, ok)
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("c must survive eviction")
	}
}

func TestCacheClear(t *testing.T) {
	c := newTTLCache(time.Minute, 10)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() = %d after Clear, want 0", c.Len())
	}
}
