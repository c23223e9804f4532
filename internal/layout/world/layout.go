// Package world owns the per-process layout state: one generation context per
// configured dimension and the lifecycle hooks that reset their caches.
package world

import (
	"fmt"
	"io"
	"log"
	"sort"
	"sync"
	"time"

	"citylayout.ai/internal/config"
	"citylayout.ai/internal/layout/feature"
)

const (
	PhaseStart = "START"
	PhaseStop  = "STOP"
)

// LifecycleEntry is written once per lifecycle transition.
type LifecycleEntry struct {
	Time       string         `json:"time"`
	Phase      string         `json:"phase"`
	Seed       int64          `json:"seed"`
	Dimensions []string       `json:"dimensions"`
	Cleared    map[string]int `json:"cleared"`
}

type LifecycleSink interface {
	WriteLifecycle(e LifecycleEntry) error
}

type Options struct {
	Logger *log.Logger
	Sink   LifecycleSink
}

type Layout struct {
	seed   int64
	logger *log.Logger
	sink   LifecycleSink

	dims     map[string]*Dimension
	byID     map[int32]*Dimension
	names    []string
	fallback string

	registry feature.Registry

	mu      sync.Mutex
	started bool
}

// New builds a context for every dimension of cfg. A dimension's seed is the
// world seed plus its seed offset.
func New(cfg config.Config, seed int64, opts Options) (*Layout, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	l := &Layout{
		seed:     seed,
		logger:   logger,
		sink:     opts.Sink,
		dims:     map[string]*Dimension{},
		byID:     map[int32]*Dimension{},
		fallback: cfg.DefaultDimension,
	}
	for _, spec := range cfg.Dimensions {
		p, ok := cfg.Profile(spec.Profile)
		if !ok {
			return nil, fmt.Errorf("dimension %s: unknown profile %q", spec.Name, spec.Profile)
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("dimension %s: %w", spec.Name, err)
		}
		if _, dup := l.dims[spec.Name]; dup {
			return nil, fmt.Errorf("duplicate dimension: %s", spec.Name)
		}
		d := newDimension(spec.Name, seed+spec.SeedOffset, p)
		if other, clash := l.byID[d.ID]; clash {
			return nil, fmt.Errorf("dimension %s: id %d collides with %s", spec.Name, d.ID, other.Name)
		}
		l.dims[spec.Name] = d
		l.byID[d.ID] = d
		l.names = append(l.names, spec.Name)
		l.registry.Register(d.caches()...)
	}
	if len(l.dims) == 0 {
		return nil, fmt.Errorf("no dimensions configured")
	}
	sort.Strings(l.names)
	if _, ok := l.dims[l.fallback]; !ok {
		l.fallback = l.names[0]
	}
	return l, nil
}

func (l *Layout) Seed() int64 { return l.seed }

// Dimensions lists the configured dimension names in sorted order.
func (l *Layout) Dimensions() []string {
	return append([]string(nil), l.names...)
}

// Dimension looks a context up by name; an empty name selects the default
// dimension.
func (l *Layout) Dimension(name string) (*Dimension, bool) {
	if name == "" {
		name = l.fallback
	}
	d, ok := l.dims[name]
	return d, ok
}

func (l *Layout) DimensionByID(id int32) (*Dimension, bool) {
	d, ok := l.byID[id]
	return d, ok
}

func (l *Layout) Default() *Dimension { return l.dims[l.fallback] }

// ClearAll empties every cache of every dimension and returns the number of
// entries dropped per cache name.
func (l *Layout) ClearAll() map[string]int {
	return l.registry.ClearAll()
}

func (l *Layout) Sizes() map[string]int {
	return l.registry.Sizes()
}

// Started reports whether OnStart ran more recently than OnStop.
func (l *Layout) Started() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.started
}

// OnStart resets every cache before a world starts serving.
func (l *Layout) OnStart() {
	l.transition(PhaseStart, true)
}

// OnStop resets every cache once a world stops.
func (l *Layout) OnStop() {
	l.transition(PhaseStop, false)
}

func (l *Layout) transition(phase string, started bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cleared := l.ClearAll()
	total := 0
	for _, n := range cleared {
		total += n
	}
	l.started = started
	l.logger.Printf("%s: cleared %d cached entries across %d dimensions", phase, total, len(l.names))

	if l.sink == nil {
		return
	}
	e := LifecycleEntry{
		Time:       time.Now().UTC().Format(time.RFC3339Nano),
		Phase:      phase,
		Seed:       l.seed,
		Dimensions: l.Dimensions(),
		Cleared:    cleared,
	}
	if err := l.sink.WriteLifecycle(e); err != nil {
		l.logger.Printf("%s: lifecycle sink: %v", phase, err)
	}
}
