// Package feature holds the lazily populated per-feature caches shared by the
// generation workers of a loaded world.
package feature

import (
	"encoding/binary"
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"

	"citylayout.ai/internal/layout/coord"
)

const shardCount = 32

// Cache maps chunk coordinates to resolved descriptors. Values are built at most
// once per key and are never replaced until the cache is cleared.
type Cache[V any] struct {
	name   string
	shards [shardCount]shard[V]
}

type shard[V any] struct {
	mu sync.Mutex
	m  map[coord.ChunkCoord]V
}

func NewCache[V any](name string) *Cache[V] {
	c := &Cache[V]{name: name}
	for i := range c.shards {
		c.shards[i].m = map[coord.ChunkCoord]V{}
	}
	return c
}

func (c *Cache[V]) Name() string { return c.name }

func (c *Cache[V]) shardFor(k coord.ChunkCoord) *shard[V] {
	var b [12]byte
	binary.LittleEndian.PutUint32(b[0:], uint32(k.Dim))
	binary.LittleEndian.PutUint32(b[4:], uint32(k.X))
	binary.LittleEndian.PutUint32(b[8:], uint32(k.Z))
	return &c.shards[xxhash.Sum64(b[:])%shardCount]
}

// Get returns the value cached for k, building and inserting it first if needed.
// build runs with the shard lock held, so it must not call back into this cache.
func (c *Cache[V]) Get(k coord.ChunkCoord, build func(coord.ChunkCoord) V) V {
	s := c.shardFor(k)
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.m[k]; ok {
		return v
	}
	v := build(k)
	s.m[k] = v
	return v
}

func (c *Cache[V]) Peek(k coord.ChunkCoord) (V, bool) {
	s := c.shardFor(k)
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[k]
	return v, ok
}

func (c *Cache[V]) Len() int {
	n := 0
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		n += len(s.m)
		s.mu.Unlock()
	}
	return n
}

// Keys returns every cached key ordered by dimension, x, then z.
func (c *Cache[V]) Keys() []coord.ChunkCoord {
	var keys []coord.ChunkCoord
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		for k := range s.m {
			keys = append(keys, k)
		}
		s.mu.Unlock()
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Dim != keys[j].Dim {
			return keys[i].Dim < keys[j].Dim
		}
		if keys[i].X != keys[j].X {
			return keys[i].X < keys[j].X
		}
		return keys[i].Z < keys[j].Z
	})
	return keys
}

// Clear drops every entry and returns how many were removed. All shard locks
// are held together so no populate can interleave with the reset.
func (c *Cache[V]) Clear() int {
	for i := range c.shards {
		c.shards[i].mu.Lock()
	}
	n := 0
	for i := range c.shards {
		s := &c.shards[i]
		n += len(s.m)
		s.m = map[coord.ChunkCoord]V{}
	}
	for i := len(c.shards) - 1; i >= 0; i-- {
		c.shards[i].mu.Unlock()
	}
	return n
}
