// Package citysphere resolves floating city spheres: which cell centers host a
// sphere, which directions each sphere wants a monorail in, and which chunks lie
// fully inside a sphere.
package citysphere

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"citylayout.ai/internal/layout/coord"
	"citylayout.ai/internal/layout/feature"
	"citylayout.ai/internal/layout/jrand"
	"citylayout.ai/internal/layout/mathx"
	"citylayout.ai/internal/layout/profile"
)

// Sphere is the resolved description of one cell center. Direction flags are
// only ever true on enabled spheres.
type Sphere struct {
	Center  coord.ChunkCoord
	Enabled bool

	North bool
	South bool
	West  bool
	East  bool

	GlassBlock string
	BaseBlock  string
	SideBlock  string
}

// RadiusFunc supplies the base radius, in pixels, of the city anchored at a
// sphere center.
type RadiusFunc func(chunkX, chunkZ int32) float32

type Resolver struct {
	dim        int32
	seed       int64
	profile    profile.Profile
	tiling     coord.Tiling
	baseRadius RadiusFunc
	cache      *feature.Cache[Sphere]
}

func NewResolver(dim int32, seed int64, p profile.Profile, baseRadius RadiusFunc) *Resolver {
	return &Resolver{
		dim:        dim,
		seed:       seed,
		profile:    p,
		tiling:     p.Tiling(),
		baseRadius: baseRadius,
		cache:      feature.NewCache[Sphere]("citysphere"),
	}
}

func (r *Resolver) Cache() *feature.Cache[Sphere] { return r.cache }

func (r *Resolver) CenterFor(chunkX, chunkZ int32) coord.ChunkCoord {
	return r.tiling.CenterFor(r.dim, chunkX, chunkZ)
}

// Query returns the sphere governing the cell that contains the chunk.
func (r *Resolver) Query(chunkX, chunkZ int32) Sphere {
	return r.ResolveCenter(r.CenterFor(chunkX, chunkZ))
}

// ResolveCenter returns the (cached) sphere for a center coordinate. Coordinates
// that are not center candidates resolve to a disabled sphere.
func (r *Resolver) ResolveCenter(center coord.ChunkCoord) Sphere {
	return r.cache.Get(center, r.build)
}

func (r *Resolver) build(c coord.ChunkCoord) Sphere {
	s := Sphere{Center: c}
	if !r.tiling.IsCenterCandidate(c.X, c.Z) {
		return s
	}
	rnd := jrand.SphereStream(r.seed, c.X, c.Z)
	s.Enabled = rnd.Float32() < r.profile.SphereChance
	if !s.Enabled {
		return s
	}
	// Draw order is part of the world format.
	s.North = rnd.Float32() < r.profile.SphereMonorailChance
	s.South = rnd.Float32() < r.profile.SphereMonorailChance
	s.West = rnd.Float32() < r.profile.SphereMonorailChance
	s.East = rnd.Float32() < r.profile.SphereMonorailChance

	s.GlassBlock = pick(rnd, r.profile.SphereGlassBlocks)
	s.BaseBlock = pick(rnd, r.profile.SphereBaseBlocks)
	s.SideBlock = pick(rnd, r.profile.SphereSideBlocks)
	return s
}

func pick(rnd *jrand.Random, palette []string) string {
	if len(palette) == 0 {
		return ""
	}
	return palette[rnd.Int31n(int32(len(palette)))]
}

// Radius is the sphere radius in pixels for a center coordinate.
func (r *Resolver) Radius(center coord.ChunkCoord) float32 {
	return r.baseRadius(center.X, center.Z) * r.profile.SphereFactor
}

// IsFullyEnclosed reports whether all four corner pixels of the chunk lie within
// two pixels of the inside of its sphere.
func (r *Resolver) IsFullyEnclosed(chunkX, chunkZ int32) bool {
	center := r.CenterFor(chunkX, chunkZ)
	if !r.ResolveCenter(center).Enabled {
		return false
	}
	rad := r.Radius(center)
	limit := float64((rad - 2) * (rad - 2))
	cx, cz := center.PixelMid()
	px, pz := chunkX*coord.ChunkSize, chunkZ*coord.ChunkSize
	const last = coord.ChunkSize - 1
	corners := [4][2]int32{
		{px, pz},
		{px + last, pz},
		{px, pz + last},
		{px + last, pz + last},
	}
	for _, p := range corners {
		if float64(mathx.SquaredDistance(cx, cz, p[0], p[1])) > limit {
			return false
		}
	}
	return true
}

// EdgeDistance is the distance in pixels from the chunk's midpoint to the rim of
// its sphere; positive inside. Chunks of a disabled cell get -Inf.
func (r *Resolver) EdgeDistance(chunkX, chunkZ int32) float64 {
	center := r.CenterFor(chunkX, chunkZ)
	if !r.ResolveCenter(center).Enabled {
		return math.Inf(-1)
	}
	cx, cz := center.PixelMid()
	qx, qz := coord.ChunkCoord{X: chunkX, Z: chunkZ}.PixelMid()
	d := mgl64.Vec2{float64(qx), float64(qz)}.Sub(mgl64.Vec2{float64(cx), float64(cz)}).Len()
	return float64(r.Radius(center)) - d
}
