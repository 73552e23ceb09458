// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package generator

import (
	"math"
	"sort"
	"sync"
)

const (
	minPeelDegree = 2
	maxPeelDegree = 64
)

var (
	degreeOnce sync.Once
	degreeCDF  []uint32
)

// degreeTable returns the cumulative peel degree distribution scaled to
// 32 bits. Degree d has weight 1/(d(d-1)) truncated to [2, 64], which
// telescopes to CDF(D) = 64(D-1) / (63D).
func degreeTable() []uint32 {
	degreeOnce.Do(func() {
		cdf := make([]uint32, maxPeelDegree-minPeelDegree+1)
		for i := range cdf {
			d := uint64(minPeelDegree + i)
			v := (uint64(1) << 32) * maxPeelDegree * (d - 1) / ((maxPeelDegree - 1) * d)
			if v > math.MaxUint32 {
				v = math.MaxUint32
			}
			cdf[i] = uint32(v)
		}
		cdf[len(cdf)-1] = math.MaxUint32
		degreeCDF = cdf
	})
	return degreeCDF
}

// peelDegree maps a uniform 32 bit value to a peel degree, capped at k.
func peelDegree(u uint32, k int) int {
	cdf := degreeTable()
	i := sort.Search(len(cdf), func(i int) bool { return u < cdf[i] })
	if i >= len(cdf) {
		i = len(cdf) - 1
	}
	return min(minPeelDegree+i, k)
}
