package railway

import (
	"citylayout.ai/internal/layout/coord"
	"citylayout.ai/internal/layout/feature"
	"citylayout.ai/internal/layout/mathx"
	"citylayout.ai/internal/layout/profile"
)

type Type int

const (
	None Type = iota
	Horizontal
	Vertical
	Crossing
	Station
)

func (t Type) String() string {
	switch t {
	case Horizontal:
		return "HORIZONTAL"
	case Vertical:
		return "VERTICAL"
	case Crossing:
		return "CROSSING"
	case Station:
		return "STATION"
	default:
		return "NONE"
	}
}

type Rail struct {
	Coord coord.ChunkCoord
	Type  Type
}

// CenterFunc reports whether a chunk anchors a city.
type CenterFunc func(chunkX, chunkZ int32) bool

// Salts keep the x and z line hashes independent.
const (
	saltRow int64 = 0x5261696c526f77
	saltCol int64 = 0x5261696c436f6c
)

type Resolver struct {
	dim     int32
	seed    int64
	profile profile.Profile
	center  CenterFunc
	cache   *feature.Cache[Rail]
}

func NewResolver(dim int32, seed int64, p profile.Profile, center CenterFunc) *Resolver {
	return &Resolver{
		dim:     dim,
		seed:    seed,
		profile: p,
		center:  center,
		cache:   feature.NewCache[Rail]("railway"),
	}
}

func (r *Resolver) Cache() *feature.Cache[Rail] { return r.cache }

func (r *Resolver) At(chunkX, chunkZ int32) Rail {
	return r.cache.Get(coord.ChunkCoord{Dim: r.dim, X: chunkX, Z: chunkZ}, r.build)
}

func (r *Resolver) build(c coord.ChunkCoord) Rail {
	period := r.profile.RailwayPeriod
	row := mathx.Mod(c.Z, period) == 0 && r.present(r.seed^saltRow, mathx.FloorDiv(c.X, period), c.Z)
	col := mathx.Mod(c.X, period) == 0 && r.present(r.seed^saltCol, c.X, mathx.FloorDiv(c.Z, period))

	out := Rail{Coord: c}
	switch {
	case row && col:
		out.Type = Crossing
		if r.center != nil && r.center(c.X, c.Z) {
			out.Type = Station
		}
	case row:
		out.Type = Horizontal
	case col:
		out.Type = Vertical
	}
	return out
}

func (r *Resolver) present(seed int64, a, b int32) bool {
	return mathx.Hash2(seed, a, b)%1000 < r.profile.RailwayPermille
}
