// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

// Package xorblock combines fixed size payloads with xor.
package xorblock

import (
	"crypto/subtle"

	"storj.io/common/sync2/race2"
)

// Into xors src into dst. Only the first min(len(dst), len(src)) bytes are
// touched; shorter inputs act as if zero padded.
func Into(dst, src []byte) {
	n := len(src)
	if len(dst) < n {
		n = len(dst)
	}
	if n == 0 {
		return
	}
	race2.ReadSlice(src[:n])
	race2.WriteSlice(dst[:n])
	subtle.XORBytes(dst[:n], dst[:n], src[:n])
}

// IsZero reports whether every byte of b is zero.
func IsZero(b []byte) bool {
	for len(b) >= 8 {
		if b[0]|b[1]|b[2]|b[3]|b[4]|b[5]|b[6]|b[7] != 0 {
			return false
		}
		b = b[8:]
	}
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// Clear zeroes b.
func Clear(b []byte) {
	race2.WriteSlice(b)
	clear(b)
}
