package cache

import (
	"testing"
	"time"
)

type fakeNow struct{ t time.Time }

func (f *fakeNow) now() time.Time { return f.t }

func newTestCache(size int, ttl time.Duration) (*LRUCache[int], *fakeNow) {
	clk := &fakeNow{t: time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)}
	c := NewLRUCache[int](size, ttl)
	c.now = clk.now
	return c, clk
}

func TestLRUCache_Eviction(t *testing.T) {
	c, _ := newTestCache(2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a should be cached")
	}
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b was least recently used and should be evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v", v, ok)
	}
	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}

	c.Set("a", 10)
	if v, _ := c.Get("a"); v != 10 {
		t.Errorf("overwrite: Get(a) = %d", v)
	}
	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("a should be deleted")
	}
}

func TestLRUCache_Expiry(t *testing.T) {
	c, clk := newTestCache(10, time.Minute)

	c.Set("a", 1)
	clk.t = clk.t.Add(30 * time.Second)
	c.Set("b", 2)
	clk.t = clk.t.Add(45 * time.Second)

	if _, ok := c.Get("a"); ok {
		t.Error("a should have expired")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("b should still be live")
	}

	clk.t = clk.t.Add(time.Minute)
	if n := c.CleanExpired(); n != 1 {
		t.Errorf("CleanExpired() = %d, want 1", n)
	}
	if c.Size() != 0 {
		t.Errorf("Size() = %d, want 0", c.Size())
	}
}

func TestManager(t *testing.T) {
	c, clk := newTestCache(10, time.Minute)
	c.Set("a", 1)
	clk.t = clk.t.Add(2 * time.Minute)

	m := NewManager(nil)
	m.Register(c)
	if n := m.CleanNow(); n != 1 {
		t.Errorf("CleanNow() = %d, want 1", n)
	}

	m.StartCleanup(time.Hour)
	m.Stop()
	m.Stop()

	NewManager(nil).Stop()
}
