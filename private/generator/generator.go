// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package generator

import (
	"fmt"

	"storj.io/fountain/private/bitset"
)

// Kind describes how a symbol row was constructed. Every kind combines its
// participants with xor.
type Kind int

const (
	// Systematic rows carry a single source block verbatim.
	Systematic Kind = iota
	// Parity is the xor of every source block.
	Parity
	// Mixed rows xor a sparse peel component with a dense component.
	Mixed
)

func (k Kind) String() string {
	switch k {
	case Systematic:
		return "systematic"
	case Parity:
		return "parity"
	case Mixed:
		return "mixed"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Seeds are the validated generator parameters for a block count.
type Seeds struct {
	Peel  uint64
	Dense uint64
}

// Row is the equation of a single symbol over the source blocks.
type Row struct {
	ID     uint32
	Kind   Kind
	Coeffs bitset.Bitset
}

// Participants returns the source block indices combined into the symbol.
func (r Row) Participants() []int { return r.Coeffs.Indices() }

// Generate returns the row for symbol id over k blocks.
//
// Ids below k are the source blocks, id k is their parity and every later
// id mixes a soliton distributed peel set with a half density dense set.
// A mixed row is never empty.
//
// The dense set is uniform over all blocks, so a mixed row is uniform as
// well and the peel set only decorrelates rows that share a dense draw.
// Peeling therefore resolves systematic and parity rows; mixed rows are
// left to elimination.
func Generate(seeds Seeds, id uint32, k int) Row {
	coeffs := bitset.New(k)

	switch {
	case uint64(id) < uint64(k):
		coeffs.Set(int(id))
		return Row{ID: id, Kind: Systematic, Coeffs: coeffs}
	case uint64(id) == uint64(k):
		coeffs.Fill()
		return Row{ID: id, Kind: Parity, Coeffs: coeffs}
	}

	peel(coeffs, seeds.Peel, id)
	dense(coeffs, seeds.Dense, id)
	if coeffs.IsZero() {
		coeffs.Set(int(id % uint32(k)))
	}
	return Row{ID: id, Kind: Mixed, Coeffs: coeffs}
}

// peel toggles d distinct uniformly chosen blocks, d drawn from the peel
// degree table.
func peel(coeffs bitset.Bitset, seed uint64, id uint32) {
	k := coeffs.Len()
	r := newRNG(seed, id)

	d := peelDegree(r.Uint32(), k)
	if d >= k {
		for i := 0; i < k; i++ {
			coeffs.Flip(i)
		}
		return
	}

	picked := bitset.New(k)
	for n := 0; n < d; {
		i := r.Intn(k)
		if picked.Has(i) {
			continue
		}
		picked.Set(i)
		n++
	}
	coeffs.Xor(picked)
}

// dense toggles every block with probability one half.
func dense(coeffs bitset.Bitset, seed uint64, id uint32) {
	r := newRNG(seed, id)
	words := make([]uint64, len(coeffs.Words()))
	for i := range words {
		words[i] = r.Uint64()
	}
	coeffs.XorWords(words)
}
