package feature

import (
	"sort"
	"sync"
)

// Clearer is a cache that can be reset on world lifecycle transitions.
type Clearer interface {
	Name() string
	Len() int
	Clear() int
}

// Registry tracks every cache of a generation context so that one call resets
// all of them.
type Registry struct {
	mu     sync.Mutex
	caches []Clearer
}

func (r *Registry) Register(c ...Clearer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.caches = append(r.caches, c...)
}

func (r *Registry) snapshot() []Clearer {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Clearer, len(r.caches))
	copy(out, r.caches)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// ClearAll empties every registered cache and reports the number of entries
// dropped per cache name.
func (r *Registry) ClearAll() map[string]int {
	out := map[string]int{}
	for _, c := range r.snapshot() {
		out[c.Name()] += c.Clear()
	}
	return out
}

func (r *Registry) Sizes() map[string]int {
	out := map[string]int{}
	for _, c := range r.snapshot() {
		out[c.Name()] += c.Len()
	}
	return out
}
