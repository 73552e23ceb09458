// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

// Package frame implements the self describing unit that carries one
// fountain symbol, and its optional Reed-Solomon byte error protection.
package frame

import (
	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"
)

var (
	mon = monkit.Package()

	// Error is the errs class of frame errors.
	Error = errs.Class("frame")

	// ErrCorrupt is returned when a protected frame has more damage than
	// its parity can repair.
	ErrCorrupt = errs.Class("corrupt frame")
)
