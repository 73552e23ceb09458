// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

// Package generator maps symbol ids to the source blocks they combine.
//
// The mapping is a pure function of the selected seeds, the symbol id and
// the block count, so independently built encoders and decoders agree on
// every symbol without exchanging anything but the caller seed.
package generator

import "github.com/zeebo/errs"

var (
	// Error is the default generator errs class.
	Error = errs.Class("generator")

	// ErrBadPeelSeed is returned when no usable peel seed was found.
	ErrBadPeelSeed = errs.Class("generator: bad peel seed")

	// ErrBadDenseSeed is returned when no usable dense seed was found.
	ErrBadDenseSeed = errs.Class("generator: bad dense seed")
)
