// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package stream

import (
	"storj.io/common/memory"
	"storj.io/eventkit"
	"storj.io/fountain"
	"storj.io/fountain/private/frame"
)

// Config contains configuration shared by stream encoders and sinks.
// Empty struct implies default values.
type Config struct {
	// BlockSize is the largest symbol payload in a frame. Short messages use
	// smaller symbols so they still split into at least two blocks.
	BlockSize memory.Size

	// Seed selects the symbol construction. Sinks read it from the manifest.
	Seed uint64

	// DisableCompression sends messages without the zstd stage.
	DisableCompression bool

	// CompressLevel is the zstd level.
	CompressLevel int

	// ParityShares enables Reed-Solomon protection of every frame when
	// positive. Encoder and sink must agree on it and on DataShares.
	ParityShares int

	// DataShares is the number of data shares a protected frame is split into.
	DataShares int

	// Fountain configures the underlying encoders and decoders.
	Fountain fountain.Config
}

// DefaultConfig provides default values.
var DefaultConfig = Config{
	BlockSize:     512 * memory.B,
	Seed:          fountain.DefaultSeed,
	CompressLevel: 3,
	DataShares:    16,
}

// maxCompressLevel is the strongest zstd level.
const maxCompressLevel = 22

// Setup updates the config values to their finals.
// Uses defaults when out of range or unassigned.
func (c *Config) Setup() {
	if c.BlockSize <= 0 {
		c.BlockSize = DefaultConfig.BlockSize
	}
	if c.CompressLevel < 1 || c.CompressLevel > maxCompressLevel {
		c.CompressLevel = DefaultConfig.CompressLevel
	}
	if c.ParityShares < 0 {
		c.ParityShares = 0
	}
	if c.DataShares < 1 {
		c.DataShares = DefaultConfig.DataShares
	}

	evs.Event("stream-config-setup",
		eventkit.Int64("block_size", c.BlockSize.Int64()),
		eventkit.Bool("compression", !c.DisableCompression),
		eventkit.Int64("compress_level", int64(c.CompressLevel)),
		eventkit.Int64("data_shares", int64(c.DataShares)),
		eventkit.Int64("parity_shares", int64(c.ParityShares)),
	)
}

func (c Config) protector() (*frame.Protector, error) {
	if c.ParityShares == 0 {
		return nil, nil
	}
	p, err := frame.NewProtector(c.DataShares, c.ParityShares)
	return p, Error.Wrap(err)
}

// blockSize picks the symbol size for a payload of n bytes so that the
// block count stays within the supported range.
func blockSize(n int, limit memory.Size) uint32 {
	size := uint64(limit.Int64())
	switch {
	case uint64(n) <= size:
		size = uint64(n+1) / 2
	case uint64(n) > size*fountain.MaxBlocks:
		size = (uint64(n) + fountain.MaxBlocks - 1) / fountain.MaxBlocks
	}
	return uint32(size)
}
