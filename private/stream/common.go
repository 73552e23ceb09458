// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

// Package stream turns messages into self describing frames and collects
// frames from many interleaved streams back into messages.
package stream

import (
	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"

	"storj.io/eventkit"
)

var (
	mon = monkit.Package()
	evs = eventkit.Package()

	// Error is the errs class of stream errors.
	Error = errs.Class("stream")

	// ErrChecksum is returned when a recovered message does not match the
	// checksum in its manifest.
	ErrChecksum = errs.Class("checksum mismatch")
)
