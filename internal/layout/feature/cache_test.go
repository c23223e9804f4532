package feature

import (
	"sync"
	"sync/atomic"
	"testing"

	"citylayout.ai/internal/layout/coord"
)

type desc struct {
	a, b, c int32
}

func TestCache_BuildsOncePerKey(t *testing.T) {
	c := NewCache[desc]("test")
	var builds atomic.Int64
	build := func(k coord.ChunkCoord) desc {
		builds.Add(1)
		return desc{a: k.X, b: k.Z, c: k.X + k.Z}
	}

	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := int32(0); i < 200; i++ {
				k := coord.ChunkCoord{Dim: 1, X: i % 20, Z: i % 7}
				v := c.Get(k, build)
				if v.a != k.X || v.b != k.Z || v.c != k.X+k.Z {
					t.Errorf("torn value for %v: %+v", k, v)
					return
				}
			}
		}()
	}
	wg.Wait()

	// i%20 and i%7 over 0..199 visit every pair of the 140 combinations.
	if got := c.Len(); got != 140 {
		t.Fatalf("Len=%d want 140", got)
	}
	if got := builds.Load(); got != 140 {
		t.Fatalf("builds=%d want 140", got)
	}
}

func TestCache_PeekAndKeys(t *testing.T) {
	c := NewCache[int]("n")
	if _, ok := c.Peek(coord.ChunkCoord{}); ok {
		t.Fatalf("empty cache should miss")
	}
	for _, k := range []coord.ChunkCoord{{Dim: 2, X: 1}, {Dim: 1, X: 5, Z: 2}, {Dim: 1, X: 5, Z: -1}} {
		c.Get(k, func(coord.ChunkCoord) int { return 1 })
	}
	keys := c.Keys()
	want := []coord.ChunkCoord{{Dim: 1, X: 5, Z: -1}, {Dim: 1, X: 5, Z: 2}, {Dim: 2, X: 1}}
	if len(keys) != len(want) {
		t.Fatalf("Keys len=%d", len(keys))
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("Keys[%d]=%v want %v", i, keys[i], want[i])
		}
	}
	if v, ok := c.Peek(coord.ChunkCoord{Dim: 2, X: 1}); !ok || v != 1 {
		t.Fatalf("Peek: %v %v", v, ok)
	}
}

func TestCache_ClearThenRebuild(t *testing.T) {
	c := NewCache[int]("n")
	k := coord.ChunkCoord{X: 3}
	c.Get(k, func(coord.ChunkCoord) int { return 1 })
	if n := c.Clear(); n != 1 {
		t.Fatalf("Clear=%d want 1", n)
	}
	if n := c.Clear(); n != 0 {
		t.Fatalf("second Clear=%d want 0", n)
	}
	if v := c.Get(k, func(coord.ChunkCoord) int { return 2 }); v != 2 {
		t.Fatalf("expected rebuild after clear, got %d", v)
	}
}

func TestCache_ClearRacingPopulate(t *testing.T) {
	c := NewCache[desc]("race")
	build := func(k coord.ChunkCoord) desc { return desc{a: k.X, b: k.Z, c: 7} }

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int32) {
			defer wg.Done()
			for i := int32(0); ; i++ {
				select {
				case <-stop:
					return
				default:
				}
				k := coord.ChunkCoord{X: g, Z: i % 64}
				if v := c.Get(k, build); v.c != 7 || v.a != g {
					t.Errorf("bad value %+v", v)
					return
				}
			}
		}(int32(g))
	}
	for i := 0; i < 100; i++ {
		c.Clear()
	}
	close(stop)
	wg.Wait()
	for _, k := range c.Keys() {
		if v, _ := c.Peek(k); v.c != 7 {
			t.Fatalf("partial entry survived clear: %v %+v", k, v)
		}
	}
}

func TestRegistry_ClearAllAndSizes(t *testing.T) {
	a := NewCache[int]("a")
	b := NewCache[string]("b")
	var r Registry
	r.Register(a, b)

	if got := r.ClearAll(); got["a"] != 0 || got["b"] != 0 {
		t.Fatalf("clearing empty caches: %v", got)
	}
	a.Get(coord.ChunkCoord{X: 1}, func(coord.ChunkCoord) int { return 1 })
	a.Get(coord.ChunkCoord{X: 2}, func(coord.ChunkCoord) int { return 1 })
	b.Get(coord.ChunkCoord{X: 1}, func(coord.ChunkCoord) string { return "x" })

	if s := r.Sizes(); s["a"] != 2 || s["b"] != 1 {
		t.Fatalf("Sizes=%v", s)
	}
	if got := r.ClearAll(); got["a"] != 2 || got["b"] != 1 {
		t.Fatalf("ClearAll=%v", got)
	}
	if a.Len() != 0 || b.Len() != 0 {
		t.Fatalf("caches not empty after ClearAll")
	}
}
