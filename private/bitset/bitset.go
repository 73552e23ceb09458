// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

// Package bitset implements the GF(2) coefficient vectors used by the
// fountain generator and solver.
package bitset

import (
	"math/bits"
	"strings"
)

// Bitset is a fixed length vector of bits. Bit i stands for source block i.
type Bitset struct {
	n int
	v []uint64
}

// New returns an empty bitset able to hold n bits.
func New(n int) Bitset {
	return Bitset{n: n, v: make([]uint64, (n+63)/64)}
}

// Len returns the number of bits in the vector.
func (b Bitset) Len() int { return b.n }

// Words exposes the backing words. Bits past Len are always zero.
func (b Bitset) Words() []uint64 { return b.v }

func (b Bitset) String() string {
	var s strings.Builder
	s.Grow(b.n)
	for i := 0; i < b.n; i++ {
		if b.Has(i) {
			s.WriteByte('1')
		} else {
			s.WriteByte('0')
		}
	}
	return s.String()
}

// Set sets bit i.
func (b Bitset) Set(i int) { b.v[i/64] |= 1 << (i % 64) }

// Unset clears bit i.
func (b Bitset) Unset(i int) { b.v[i/64] &^= 1 << (i % 64) }

// Flip toggles bit i.
func (b Bitset) Flip(i int) { b.v[i/64] ^= 1 << (i % 64) }

// Has reports whether bit i is set.
func (b Bitset) Has(i int) bool { return b.v[i/64]&(1<<(i%64)) != 0 }

// Fill sets every bit.
func (b Bitset) Fill() {
	for i := range b.v {
		b.v[i] = ^uint64(0)
	}
	b.trim()
}

// XorWords xors raw words into the vector, dropping anything past Len.
func (b Bitset) XorWords(words []uint64) {
	for i := range b.v {
		if i >= len(words) {
			break
		}
		b.v[i] ^= words[i]
	}
	b.trim()
}

// Xor sets b to b xor o. Both must have the same length.
func (b Bitset) Xor(o Bitset) {
	for i, w := range o.v {
		b.v[i] ^= w
	}
}

// Count returns the number of set bits.
func (b Bitset) Count() int {
	c := 0
	for _, w := range b.v {
		c += bits.OnesCount64(w)
	}
	return c
}

// IsZero reports whether no bit is set.
func (b Bitset) IsZero() bool {
	for _, w := range b.v {
		if w != 0 {
			return false
		}
	}
	return true
}

// First returns the lowest set bit, or -1 if the vector is zero.
func (b Bitset) First() int {
	for i, w := range b.v {
		if w != 0 {
			return 64*i + bits.TrailingZeros64(w)
		}
	}
	return -1
}

// Clone returns an independent copy.
func (b Bitset) Clone() Bitset {
	c := Bitset{n: b.n, v: make([]uint64, len(b.v))}
	copy(c.v, b.v)
	return c
}

// Equal reports whether both vectors hold the same bits.
func (b Bitset) Equal(o Bitset) bool {
	if b.n != o.n {
		return false
	}
	for i, w := range b.v {
		if o.v[i] != w {
			return false
		}
	}
	return true
}

// Iter calls cb with every set bit in increasing order until cb returns false.
func (b Bitset) Iter(cb func(i int) bool) {
	for i, v := range b.v {
		for v != 0 {
			if !cb(64*i + bits.TrailingZeros64(v)) {
				return
			}
			v &= v - 1
		}
	}
}

// IterFrom is Iter restricted to bits >= start.
func (b Bitset) IterFrom(start int, cb func(i int) bool) {
	if start >= b.n {
		return
	}
	if start < 0 {
		start = 0
	}
	w := start / 64
	v := b.v[w] &^ (1<<(start%64) - 1)
	for {
		for v != 0 {
			if !cb(64*w + bits.TrailingZeros64(v)) {
				return
			}
			v &= v - 1
		}
		w++
		if w >= len(b.v) {
			return
		}
		v = b.v[w]
	}
}

// Indices returns the set bits in increasing order.
func (b Bitset) Indices() []int {
	out := make([]int, 0, b.Count())
	for i := range b.Iter {
		out = append(out, i)
	}
	return out
}

func (b Bitset) trim() {
	if r := b.n % 64; r != 0 && len(b.v) > 0 {
		b.v[len(b.v)-1] &= 1<<r - 1
	}
}
