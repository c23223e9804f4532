// Package jrand implements the 48-bit linear congruential generator used by
// existing Lost-City style worlds. Every draw is specified bit for bit, so a
// stream seeded with the same value yields the same sequence on every platform
// and Go release.
package jrand

const (
	multiplier = 0x5DEECE66D
	addend     = 0xB
	mask       = (int64(1) << 48) - 1
)

// Random is a seeded pseudo-random stream. It is not safe for concurrent use;
// callers derive a fresh stream per resolution.
type Random struct {
	seed int64
}

func New(seed int64) *Random {
	r := &Random{}
	r.SetSeed(seed)
	return r
}

func (r *Random) SetSeed(seed int64) {
	r.seed = (seed ^ multiplier) & mask
}

// Next advances the generator and returns the top bits (1..32) of the new state.
func (r *Random) Next(bits uint) int32 {
	r.seed = (r.seed*multiplier + addend) & mask
	return int32(uint64(r.seed) >> (48 - bits))
}

// Float32 returns a value in [0,1) built from 24 random bits.
func (r *Random) Float32() float32 {
	return float32(r.Next(24)) / float32(1<<24)
}

// Float64 returns a value in [0,1) built from 53 random bits.
func (r *Random) Float64() float64 {
	hi := int64(r.Next(26)) << 27
	lo := int64(r.Next(27))
	return float64(hi+lo) * (1.0 / float64(int64(1)<<53))
}

// Int31n returns a value in [0,n). It panics if n <= 0.
func (r *Random) Int31n(n int32) int32 {
	if n <= 0 {
		panic("jrand: invalid argument to Int31n")
	}
	v := r.Next(31)
	m := n - 1
	if n&m == 0 {
		return int32((int64(n) * int64(v)) >> 31)
	}
	// u - v + m overflows to negative when u fell into the biased tail.
	for u := v; ; u = r.Next(31) {
		v = u % n
		if u-v+m >= 0 {
			return v
		}
	}
}

func (r *Random) Int63() int64 {
	return int64(r.Next(32))<<32 + int64(r.Next(32))
}

func (r *Random) Bool() bool {
	return r.Next(1) != 0
}
