// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

// Package fountain implements a systematic rateless erasure code.
//
// An Encoder turns a message into an unbounded stream of fixed size
// symbols, each named by a uint32 id. A Decoder accepts any of those
// symbols in any order, ignoring duplicates, and reports StatusSuccess once
// the message is determined. A few symbols beyond the block count are
// almost always enough: every extra symbol halves the odds of needing
// another one.
//
// Ids below the block count carry the message verbatim, so a lossless
// channel needs no decoding work at all.
package fountain
