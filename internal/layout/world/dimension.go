package world

import (
	"citylayout.ai/internal/layout/city"
	"citylayout.ai/internal/layout/citysphere"
	"citylayout.ai/internal/layout/coord"
	"citylayout.ai/internal/layout/feature"
	"citylayout.ai/internal/layout/highway"
	"citylayout.ai/internal/layout/profile"
	"citylayout.ai/internal/layout/railway"
)

// Dimension is the generation context of one dimension. Every resolver keeps
// its own cache; the dependencies between them only ever point from highway
// and railway to sphere and city, and from sphere to city.
type Dimension struct {
	Name    string
	ID      int32
	Seed    int64
	Profile profile.Profile

	cities   *city.Resolver
	spheres  *citysphere.Resolver
	highways *highway.Resolver
	railways *railway.Resolver
}

func newDimension(name string, seed int64, p profile.Profile) *Dimension {
	d := &Dimension{
		Name:    name,
		ID:      coord.DimensionID(name),
		Seed:    seed,
		Profile: p,
	}
	d.cities = city.NewResolver(d.ID, seed, p)
	d.spheres = citysphere.NewResolver(d.ID, seed, p, d.cities.Radius)
	d.highways = highway.NewResolver(d.ID, seed, p, d.spheres.IsFullyEnclosed)
	d.railways = railway.NewResolver(d.ID, seed, p, d.cities.IsCityCenter)
	return d
}

func (d *Dimension) caches() []feature.Clearer {
	return []feature.Clearer{
		d.cities.Cache(),
		d.spheres.Cache(),
		d.highways.Cache(),
		d.railways.Cache(),
	}
}

func (d *Dimension) CenterFor(chunkX, chunkZ int32) coord.ChunkCoord {
	return d.spheres.CenterFor(chunkX, chunkZ)
}

func (d *Dimension) Query(chunkX, chunkZ int32) citysphere.Sphere {
	return d.spheres.Query(chunkX, chunkZ)
}

func (d *Dimension) IsFullyEnclosed(chunkX, chunkZ int32) bool {
	return d.spheres.IsFullyEnclosed(chunkX, chunkZ)
}

func (d *Dimension) HasHorizontalConnectivity(chunkX, chunkZ int32) bool {
	return d.spheres.HasHorizontalConnectivity(chunkX, chunkZ)
}

func (d *Dimension) HasVerticalConnectivity(chunkX, chunkZ int32) bool {
	return d.spheres.HasVerticalConnectivity(chunkX, chunkZ)
}

func (d *Dimension) EdgeDistance(chunkX, chunkZ int32) float64 {
	return d.spheres.EdgeDistance(chunkX, chunkZ)
}

func (d *Dimension) SphereRadius(chunkX, chunkZ int32) float32 {
	return d.spheres.Radius(d.CenterFor(chunkX, chunkZ))
}

func (d *Dimension) City(chunkX, chunkZ int32) city.City {
	return d.cities.At(chunkX, chunkZ)
}

func (d *Dimension) Highway(chunkX, chunkZ int32) highway.Highway {
	return d.highways.At(chunkX, chunkZ)
}

func (d *Dimension) Railway(chunkX, chunkZ int32) railway.Rail {
	return d.railways.At(chunkX, chunkZ)
}

// Sizes reports the number of cached entries per cache of this dimension.
func (d *Dimension) Sizes() map[string]int {
	out := map[string]int{}
	for _, c := range d.caches() {
		out[c.Name()] = c.Len()
	}
	return out
}
