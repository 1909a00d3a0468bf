package cache

import (
	"testing"
	"time"
)

func TestTTLCacheGetSet(t *testing.T) {
	c := NewTTLCache[string, int](time.Minute, 4)
	c.Set("a", 1)

	got, ok := c.Get("a")
	if !ok || got != 1 {
		t.Fatalf("Get(a) = %d, %v; want 1, true", got, ok)
	}

	if _, ok := c.Get("missing"); ok {
		t.Fatalf("Get(missing) returned ok")
	}
}

func TestTTLCacheExpiry(t *testing.T) {
	c := NewTTLCache[string, int](time.Minute, 4).(*ttlCache[string, int])
	base := time.Now()
	c.now = func() time.Time { return base }
	c.Set("a", 1)

	c.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected expired entry to miss")
	}
	if c.Len() != 0 {
		t.Fatalf("Len() = %d after expiry read, want 0", c.Len())
	}
}

func TestTTLCacheEviction(t *testing.T) {
	c := NewTTLCache[int, int](time.Minute, 2)
	c.Set(1, 1)
	c.Set(2, 2)
	c.Set(3, 3)
	if c.Len() > 2 {
		t.Fatalf("Len() = %d, want <= 2", c.Len())
	}
}
