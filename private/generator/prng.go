// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package generator

import "math/bits"

const golden = 0x9e3779b97f4a7c15

// splitmix advances the splitmix64 state x and returns the new state and
// its output.
func splitmix(x uint64) (next, out uint64) {
	x += golden
	z := x
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return x, z ^ (z >> 31)
}

// rng is xoshiro256** keyed by a domain seed and a symbol id. The algorithm
// is part of the symbol format and must not change.
type rng struct {
	s [4]uint64
}

func newRNG(seed uint64, id uint32) rng {
	var r rng
	x := seed ^ (uint64(id)+1)*golden
	for i := range r.s {
		x, r.s[i] = splitmix(x)
	}
	return r
}

func (r *rng) Uint64() uint64 {
	s := &r.s
	result := bits.RotateLeft64(s[1]*5, 7) * 9
	t := s[1] << 17
	s[2] ^= s[0]
	s[3] ^= s[1]
	s[1] ^= s[2]
	s[0] ^= s[3]
	s[2] ^= t
	s[3] = bits.RotateLeft64(s[3], 45)
	return result
}

func (r *rng) Uint32() uint32 { return uint32(r.Uint64() >> 32) }

// Intn returns a value in [0, n) by multiply-shift. n must fit in 32 bits.
func (r *rng) Intn(n int) int {
	return int((uint64(r.Uint32()) * uint64(n)) >> 32)
}
