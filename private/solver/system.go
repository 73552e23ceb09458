// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

// Package solver recovers source blocks from xor equations over GF(2).
package solver

import (
	"fmt"

	"storj.io/fountain/private/bitset"
	"storj.io/fountain/private/xorblock"
)

// Strategy selects when solved blocks are substituted into the rest of the
// system. Both strategies produce identical blocks.
type Strategy int

const (
	// StrategyPeel propagates every newly solved block into the pivots that
	// reference it as soon as it appears, cascading into further solves.
	StrategyPeel Strategy = iota
	// StrategyEliminate keeps the pivots triangular and back-substitutes
	// only in Solve.
	StrategyEliminate
)

func (s Strategy) String() string {
	switch s {
	case StrategyPeel:
		return "peel"
	case StrategyEliminate:
		return "eliminate"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// pivot is a row whose lowest set coefficient is its column.
type pivot struct {
	coeffs bitset.Bitset
	value  []byte
	weight int
}

// System is an incrementally triangularised set of equations over k blocks.
//
// Every column holds at most one pivot. A pivot of weight one is a solved
// block. Adding an equation reduces it against existing pivots until it
// either lands on an empty column, raising the rank, or vanishes.
type System struct {
	k         int
	blockSize int
	strategy  Strategy

	pivots []*pivot
	rank   int
	solved bool

	redundant    int
	inconsistent int
	peeled       int
}

// New returns an empty system over k blocks of blockSize bytes.
func New(k, blockSize int, strategy Strategy) *System {
	return &System{
		k:         k,
		blockSize: blockSize,
		strategy:  strategy,
		pivots:    make([]*pivot, k),
	}
}

// K returns the number of unknown blocks.
func (s *System) K() int { return s.k }

// Rank returns the number of independent equations added so far.
func (s *System) Rank() int { return s.rank }

// Determined reports whether the system has a unique solution.
func (s *System) Determined() bool { return s.rank == s.k }

// Redundant returns how many added equations were linear combinations of
// earlier ones.
func (s *System) Redundant() int { return s.redundant }

// Inconsistent returns how many redundant equations disagreed with the
// earlier ones on their payload.
func (s *System) Inconsistent() int { return s.inconsistent }

// Peeled returns how many blocks were solved by propagation.
func (s *System) Peeled() int { return s.peeled }

// Add incorporates the equation coeffs = value and reports whether it raised
// the rank. The system takes ownership of both arguments. value must be
// blockSize bytes long.
func (s *System) Add(coeffs bitset.Bitset, value []byte) bool {
	if s.strategy == StrategyPeel {
		s.substitute(coeffs, value)
	}

	for {
		p := coeffs.First()
		if p < 0 {
			s.redundant++
			mon.Counter("solver_redundant_rows").Inc(1)
			if !xorblock.IsZero(value) {
				s.inconsistent++
				mon.Event("solver_inconsistent_row")
			}
			return false
		}

		cur := s.pivots[p]
		if cur == nil {
			if s.strategy == StrategyPeel {
				s.substitute(coeffs, value)
			}
			s.install(p, &pivot{coeffs: coeffs, value: value, weight: coeffs.Count()})
			return true
		}

		if cur.weight == 1 {
			coeffs.Unset(p)
			xorblock.Into(value, cur.value)
			continue
		}

		if w := coeffs.Count(); w < cur.weight {
			// keep the sparser row in the matrix and reduce the old one.
			s.pivots[p] = &pivot{coeffs: coeffs, value: value, weight: w}
			coeffs, value = cur.coeffs, cur.value
			if w == 1 {
				s.propagate(p)
			}
			continue
		}

		coeffs.Xor(cur.coeffs)
		xorblock.Into(value, cur.value)
	}
}

func (s *System) install(p int, row *pivot) {
	s.pivots[p] = row
	s.rank++
	if row.weight == 1 {
		s.propagate(p)
	}
}

// substitute removes every solved block referenced by the equation.
func (s *System) substitute(coeffs bitset.Bitset, value []byte) {
	var known []int
	for c := range coeffs.Iter {
		if piv := s.pivots[c]; piv != nil && piv.weight == 1 {
			known = append(known, c)
		}
	}
	for _, c := range known {
		coeffs.Unset(c)
		xorblock.Into(value, s.pivots[c].value)
	}
}

// propagate pushes the solved block c into the pivots that reference it.
// Only pivots left of c can hold it. Newly solved pivots cascade.
func (s *System) propagate(c int) {
	if s.strategy != StrategyPeel {
		return
	}

	queue := []int{c}
	for len(queue) > 0 {
		c, queue = queue[len(queue)-1], queue[:len(queue)-1]
		solved := s.pivots[c].value

		for q := 0; q < c; q++ {
			piv := s.pivots[q]
			if piv == nil || piv.weight == 1 || !piv.coeffs.Has(c) {
				continue
			}
			piv.coeffs.Unset(c)
			piv.weight--
			xorblock.Into(piv.value, solved)
			if piv.weight == 1 {
				s.peeled++
				queue = append(queue, q)
			}
		}
	}
}

// Solve back-substitutes the triangular system so that every pivot holds
// its source block. It is a no-op once it has succeeded.
func (s *System) Solve() error {
	if s.solved {
		return nil
	}
	if !s.Determined() {
		return ErrNotDetermined.New("rank %d of %d", s.rank, s.k)
	}

	for p := s.k - 1; p >= 0; p-- {
		piv := s.pivots[p]
		if piv == nil {
			return Error.New("missing pivot %d in a determined system", p)
		}
		if piv.weight == 1 {
			continue
		}

		var failed error
		piv.coeffs.IterFrom(p+1, func(c int) bool {
			other := s.pivots[c]
			if other == nil || other.weight != 1 {
				failed = Error.New("pivot %d references unsolved block %d", p, c)
				return false
			}
			xorblock.Into(piv.value, other.value)
			piv.coeffs.Unset(c)
			return true
		})
		if failed != nil {
			return failed
		}
		piv.weight = 1
	}

	s.solved = true
	return nil
}

// Block returns source block i if it has been solved.
func (s *System) Block(i int) ([]byte, bool) {
	if i < 0 || i >= s.k {
		return nil, false
	}
	piv := s.pivots[i]
	if piv == nil || piv.weight != 1 {
		return nil, false
	}
	return piv.value, true
}

// SolvedCount returns how many blocks are currently known.
func (s *System) SolvedCount() int {
	n := 0
	for _, piv := range s.pivots {
		if piv != nil && piv.weight == 1 {
			n++
		}
	}
	return n
}

// Solved reports whether source block i is known.
func (s *System) Solved(i int) bool {
	_, ok := s.Block(i)
	return ok
}
