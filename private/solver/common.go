// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package solver

import (
	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"
)

var (
	// Error is the default solver errs class.
	Error = errs.Class("solver")

	// ErrNotDetermined is returned when solving a system below full rank.
	ErrNotDetermined = errs.Class("not determined")

	mon = monkit.Package()
)
