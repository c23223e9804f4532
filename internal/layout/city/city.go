// Package city resolves city centers and city radii. The sphere resolver uses
// Radius as its base radius.
package city

import (
	"citylayout.ai/internal/layout/coord"
	"citylayout.ai/internal/layout/feature"
	"citylayout.ai/internal/layout/jrand"
	"citylayout.ai/internal/layout/profile"
)

type City struct {
	Coord    coord.ChunkCoord
	IsCenter bool
	Radius   float32
}

type Resolver struct {
	dim     int32
	seed    int64
	profile profile.Profile
	cache   *feature.Cache[City]
}

func NewResolver(dim int32, seed int64, p profile.Profile) *Resolver {
	return &Resolver{
		dim:     dim,
		seed:    seed,
		profile: p,
		cache:   feature.NewCache[City]("city"),
	}
}

func (r *Resolver) Cache() *feature.Cache[City] { return r.cache }

func (r *Resolver) At(chunkX, chunkZ int32) City {
	return r.cache.Get(coord.ChunkCoord{Dim: r.dim, X: chunkX, Z: chunkZ}, r.build)
}

func (r *Resolver) build(c coord.ChunkCoord) City {
	center := jrand.Derive(r.seed, c.X, c.Z, jrand.CityMulX, jrand.CityMulZ)
	out := City{
		Coord:    c,
		IsCenter: center.Float32() < r.profile.CityChance,
	}

	rad := jrand.Derive(r.seed, c.X, c.Z, jrand.CityRadiusMulX, jrand.CityRadiusMulZ)
	out.Radius = float32(r.profile.CityMinRadius)
	if span := r.profile.CityMaxRadius - r.profile.CityMinRadius; span > 0 {
		out.Radius += float32(rad.Int31n(span))
	}
	return out
}

func (r *Resolver) IsCityCenter(chunkX, chunkZ int32) bool {
	return r.At(chunkX, chunkZ).IsCenter
}

// Radius is the city radius in pixels for the city anchored at (chunkX, chunkZ).
func (r *Resolver) Radius(chunkX, chunkZ int32) float32 {
	return r.At(chunkX, chunkZ).Radius
}
