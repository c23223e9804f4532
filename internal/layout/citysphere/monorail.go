package citysphere

import "citylayout.ai/internal/layout/coord"

// HasHorizontalConnectivity reports whether a monorail runs along the x axis
// through the chunk. The chunk must lie on a row of centers; the nearest enabled
// sphere east of it must want a west link and the nearest one west of it must
// want an east link. Spheres beyond the scan window are never considered.
func (r *Resolver) HasHorizontalConnectivity(chunkX, chunkZ int32) bool {
	if !r.tiling.IsCenterLine(chunkZ) {
		return false
	}
	at := func(x int32) Sphere {
		return r.ResolveCenter(coord.ChunkCoord{Dim: r.dim, X: x, Z: chunkZ})
	}
	return r.scan(chunkX, at,
		func(s Sphere) bool { return s.West },
		func(s Sphere) bool { return s.East },
	)
}

// HasVerticalConnectivity is HasHorizontalConnectivity along the z axis, using
// the north flag of the sphere ahead and the south flag of the one behind.
func (r *Resolver) HasVerticalConnectivity(chunkX, chunkZ int32) bool {
	if !r.tiling.IsCenterLine(chunkX) {
		return false
	}
	at := func(z int32) Sphere {
		return r.ResolveCenter(coord.ChunkCoord{Dim: r.dim, X: chunkX, Z: z})
	}
	return r.scan(chunkZ, at,
		func(s Sphere) bool { return s.North },
		func(s Sphere) bool { return s.South },
	)
}

func (r *Resolver) scan(origin int32, at func(int32) Sphere, ahead, behind func(Sphere) bool) bool {
	s, ok := r.firstEnabled(origin, 1, at)
	if !ok || !ahead(s) {
		return false
	}
	s, ok = r.firstEnabled(origin, -1, at)
	return ok && behind(s)
}

// firstEnabled walks away from origin in the given direction, stopping at the
// first enabled sphere strictly inside the scan window. Disabled centers are
// skipped.
func (r *Resolver) firstEnabled(origin, step int32, at func(int32) Sphere) (Sphere, bool) {
	window := r.profile.ScanWindow()
	for i := int32(1); i < window; i++ {
		v := origin + step*i
		if !r.tiling.IsCenterLine(v) {
			continue
		}
		if s := at(v); s.Enabled {
			return s, true
		}
	}
	return Sphere{}, false
}
