package jrand

// Coordinate multipliers of the per-feature seed derivations.
const (
	SphereMulX int64 = 961744153
	SphereMulZ int64 = 837971201

	CityMulX int64 = 295075153
	CityMulZ int64 = 797003437

	CityRadiusMulX int64 = 295075153
	CityRadiusMulZ int64 = 100001653
)

// Derive returns the stream for a chunk: it is seeded with
// worldSeed + x*mulX + z*mulZ (wrapping int64 arithmetic) and two Float32
// draws are consumed before it is handed out.
func Derive(worldSeed int64, x, z int32, mulX, mulZ int64) *Random {
	r := New(worldSeed + int64(x)*mulX + int64(z)*mulZ)
	r.Float32()
	r.Float32()
	return r
}

// SphereStream is the stream a city sphere center draws its description from.
func SphereStream(worldSeed int64, x, z int32) *Random {
	return Derive(worldSeed, x, z, SphereMulX, SphereMulZ)
}
