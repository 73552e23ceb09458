// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package generator

import (
	"math"

	"storj.io/fountain/private/bitset"
)

const (
	peelDomain  = 0x7065656c
	denseDomain = 0x64656e7365

	// probeRows is how many repair rows a seed check inspects.
	probeRows = 16
)

// swapped out by tests to reach the retry paths.
var (
	checkPeel  = validPeel
	checkDense = validDense
)

// derive returns the domain seed for a given selection attempt.
func derive(seed, domain uint64, attempt int) uint64 {
	_, a := splitmix(seed ^ domain)
	_, b := splitmix(a + uint64(attempt))
	return b
}

// Select derives the peel and dense seeds for k blocks from the caller seed.
// A derived seed that fails its check is replaced by the next attempt; after
// attempts failures the matching ErrBad*Seed class is returned.
func Select(seed uint64, k, attempts int) (Seeds, error) {
	if k < 1 || k > math.MaxUint32/2 {
		return Seeds{}, Error.New("invalid block count %d", k)
	}
	if attempts < 1 {
		attempts = 1
	}

	var seeds Seeds

	ok := false
	for a := 0; a < attempts && !ok; a++ {
		seeds.Peel = derive(seed, peelDomain, a)
		ok = checkPeel(seeds.Peel, k)
	}
	if !ok {
		return Seeds{}, ErrBadPeelSeed.New("k=%d after %d attempts", k, attempts)
	}

	ok = false
	for a := 0; a < attempts && !ok; a++ {
		seeds.Dense = derive(seed, denseDomain, a)
		ok = checkDense(seeds.Dense, k)
	}
	if !ok {
		return Seeds{}, ErrBadDenseSeed.New("k=%d after %d attempts", k, attempts)
	}

	return seeds, nil
}

// validPeel rejects a seed whose first repair rows all draw the same peel
// set. Below three blocks there is only one possible set.
func validPeel(seed uint64, k int) bool {
	if k < 3 {
		return true
	}
	first := bitset.New(k)
	peel(first, seed, uint32(k+1))
	for i := 1; i < probeRows; i++ {
		row := bitset.New(k)
		peel(row, seed, uint32(k+1+i))
		if !row.Equal(first) {
			return true
		}
	}
	return false
}

// validDense rejects a seed whose dense components are far from half
// density over the probe rows.
func validDense(seed uint64, k int) bool {
	total, ones := 0, 0
	for i := 0; i < probeRows; i++ {
		row := bitset.New(k)
		dense(row, seed, uint32(k+1+i))
		total += k
		ones += row.Count()
	}
	return ones >= total/4 && ones <= total-total/4
}
