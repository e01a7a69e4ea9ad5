package embedding

import "testing"

func TestCacheSetGet(t *testing.T) {
	c := NewCache(10)
	if _, ok := c.Get("missing"); ok {
		t.Error("Get(missing) = ok, want miss")
	}
	c.Set("key", []float32{1, 2, 3})
	got, ok := c.Get("key")
	if !ok {
		t.Fatal("Get(key) missed after Set")
	}
	if len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Errorf("Get(key) = %v, want [1 2 3]", got)
	}
}

func TestCacheEvictsLRU(t *testing.T) {
	c := NewCache(2)
	c.Set("a", []float32{1})
	c.Set("b", []float32{2})
	// Touch a so b becomes the eviction candidate.
	if _, ok := c.Get("a"); !ok {
		t.Fatal("Get(a) missed")
	}
	c.Set("c", []float32{3})

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should still be cached")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("c should be cached")
	}
}

func TestCacheUpdateExisting(t *testing.T) {
	c := NewCache(2)
	c.Set("k", []float32{1})
	c.Set("k", []float32{9})
	got, ok := c.Get("k")
	if !ok || got[0] != 9 {
		t.Errorf("Get(k) = %v %v, want [9] true", got, ok)
	}
}
