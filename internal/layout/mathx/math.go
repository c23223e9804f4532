package mathx

func FloorDiv(a, b int32) int32 {
	// b > 0
	q := a / b
	if a%b < 0 {
		q--
	}
	return q
}

func Mod(a, b int32) int32 {
	// b > 0
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// Hash2 is a stateless per-cell hash for resolvers that do not need stream
// compatibility with older worlds.
func Hash2(seed int64, x, z int32) uint64 {
	ux := uint64(uint32(x))
	uz := uint64(uint32(z))
	v := uint64(seed) ^ (ux * 0x9e3779b97f4a7c15) ^ (uz * 0xbf58476d1ce4e5b9)
	return mix64(v)
}

// SquaredDistance wraps on overflow like 32-bit int arithmetic, so enclosure
// tests far from the origin stay identical to previously generated worlds.
func SquaredDistance(ax, az, bx, bz int32) int32 {
	dx := ax - bx
	dz := az - bz
	return dx*dx + dz*dz
}
