// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package generator

import "math"

// SelfTest builds the lookup tables and checks the generator against known
// answers. A failure means symbols produced on this platform would not
// interoperate with other builds.
func SelfTest() error {
	r := newRNG(0, 0)
	for i, want := range []uint64{0x422ea740d0977210, 0xe062b061b42e2928, 0x5a071fc5930841b6} {
		if got := r.Uint64(); got != want {
			return Error.New("rng known answer %d: got %#x want %#x", i, got, want)
		}
	}

	r = newRNG(0x0123456789abcdef, 7)
	for i, want := range []uint64{0x65f00ceb2b938cc4, 0x9b2299108680df6e} {
		if got := r.Uint64(); got != want {
			return Error.New("keyed rng known answer %d: got %#x want %#x", i, got, want)
		}
	}

	cdf := degreeTable()
	for i := 1; i < len(cdf); i++ {
		if cdf[i] < cdf[i-1] {
			return Error.New("degree table not monotonic at %d", i)
		}
	}
	if cdf[len(cdf)-1] != math.MaxUint32 {
		return Error.New("degree table does not end at one")
	}

	return nil
}
