package highway

import (
	"github.com/aquilax/go-perlin"

	"citylayout.ai/internal/layout/coord"
	"citylayout.ai/internal/layout/feature"
	"citylayout.ai/internal/layout/mathx"
	"citylayout.ai/internal/layout/profile"
)

// None marks the absence of a highway on an axis.
const None = -1

// Highway describes the highways crossing one chunk. XLevel is the level of the
// highway running along x (on a highway row), ZLevel the one along z.
type Highway struct {
	Coord  coord.ChunkCoord
	XLevel int
	ZLevel int
}

func (h Highway) HasX() bool { return h.XLevel != None }
func (h Highway) HasZ() bool { return h.ZLevel != None }

// EnclosedFunc reports whether a chunk sits inside a city, which lifts the
// highway to the elevated level.
type EnclosedFunc func(chunkX, chunkZ int32) bool

type Resolver struct {
	dim      int32
	profile  profile.Profile
	noise    *perlin.Perlin
	enclosed EnclosedFunc
	cache    *feature.Cache[Highway]
}

func NewResolver(dim int32, seed int64, p profile.Profile, enclosed EnclosedFunc) *Resolver {
	return &Resolver{
		dim:      dim,
		profile:  p,
		noise:    perlin.NewPerlin(2, 2, 3, seed),
		enclosed: enclosed,
		cache:    feature.NewCache[Highway]("highway"),
	}
}

func (r *Resolver) Cache() *feature.Cache[Highway] { return r.cache }

func (r *Resolver) At(chunkX, chunkZ int32) Highway {
	return r.cache.Get(coord.ChunkCoord{Dim: r.dim, X: chunkX, Z: chunkZ}, r.build)
}

func (r *Resolver) build(c coord.ChunkCoord) Highway {
	h := Highway{Coord: c, XLevel: None, ZLevel: None}
	period := r.profile.HighwayPeriod
	if mathx.Mod(c.Z, period) == 0 && r.segment(mathx.FloorDiv(c.X, period), mathx.FloorDiv(c.Z, period), 0) {
		h.XLevel = r.level(c)
	}
	if mathx.Mod(c.X, period) == 0 && r.segment(mathx.FloorDiv(c.X, period), mathx.FloorDiv(c.Z, period), 1) {
		h.ZLevel = r.level(c)
	}
	return h
}

// segment samples the noise between lattice points; Perlin noise is zero on them.
func (r *Resolver) segment(sx, sz int32, axis int) bool {
	scale := r.profile.HighwayNoiseScale
	x := (float64(sx) + 0.5) * scale
	z := (float64(sz)+0.5)*scale + float64(axis)*1000
	return r.noise.Noise2D(x, z) > r.profile.HighwayThreshold
}

func (r *Resolver) level(c coord.ChunkCoord) int {
	if r.enclosed != nil && r.enclosed(c.X, c.Z) {
		return 1
	}
	return 0
}
