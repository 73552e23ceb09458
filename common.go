// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package fountain

import (
	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"

	"storj.io/eventkit"
)

var (
	mon = monkit.Package()
	evs = eventkit.Package()
)

var (
	// Error is default error class for fountain.
	Error = errs.Class("fountain")

	// ErrNeedMore is returned when the message is requested before enough
	// symbols were decoded. It is a progress signal, not a failure.
	ErrNeedMore = errs.Class("need more symbols")

	// ErrInvalidInput is returned when a parameter violates a precondition or
	// a closed handle is used.
	ErrInvalidInput = errs.Class("invalid input")

	// ErrBadDenseSeed is returned when no usable dense seed was found.
	ErrBadDenseSeed = errs.Class("bad dense seed")

	// ErrBadPeelSeed is returned when no usable peel seed was found.
	ErrBadPeelSeed = errs.Class("bad peel seed")

	// ErrSmallN is returned when the message splits into too few blocks.
	ErrSmallN = errs.Class("too few blocks")

	// ErrLargeN is returned when the message splits into too many blocks.
	ErrLargeN = errs.Class("too many blocks")

	// ErrExtraInsufficient is returned when a decoder that reported success
	// cannot solve its system. The decoder is unusable afterwards.
	ErrExtraInsufficient = errs.Class("extra insufficient")

	// ErrOOM is returned when a handle would exceed the configured memory.
	ErrOOM = errs.Class("out of memory")

	// ErrUnsupportedPlatform is returned when the library self test fails.
	ErrUnsupportedPlatform = errs.Class("unsupported platform")
)
