// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package fountain

import (
	"fmt"

	"storj.io/common/memory"
	"storj.io/eventkit"
	"storj.io/fountain/private/generator"
	"storj.io/fountain/private/solver"
)

const (
	// MinBlocks is the smallest supported block count.
	MinBlocks = 2
	// MaxBlocks is the largest supported block count.
	MaxBlocks = 64000

	// DefaultSeed is the seed used by NewDecoder. Encoders that talk to such
	// decoders must be created with it.
	DefaultSeed uint64 = 0
)

// Strategy selects how a decoder resolves its equations. The recovered
// message does not depend on it.
type Strategy int

const (
	// StrategyPeel substitutes solved blocks as soon as they appear, so
	// RecoverBlock can return them before the whole system is determined.
	StrategyPeel Strategy = iota
	// StrategyEliminate keeps the system triangular and back-substitutes
	// once, when the message is recovered.
	StrategyEliminate
)

func (s Strategy) String() string {
	switch s {
	case StrategyPeel:
		return "peel"
	case StrategyEliminate:
		return "eliminate"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

func (s Strategy) solver() solver.Strategy {
	if s == StrategyEliminate {
		return solver.StrategyEliminate
	}
	return solver.StrategyPeel
}

// Config defines configuration for encoders and decoders.
// Empty struct implies default values.
type Config struct {
	// SeedAttempts bounds how many alternate generator parameters are tried
	// before creation fails with ErrBadPeelSeed or ErrBadDenseSeed.
	SeedAttempts int

	// Strategy is the decoder solving strategy.
	Strategy Strategy

	// MaxMemory is the largest working set a single handle may allocate.
	MaxMemory memory.Size
}

// DefaultConfig provides default values.
var DefaultConfig = Config{
	SeedAttempts: 8,
	Strategy:     StrategyPeel,
	MaxMemory:    memory.GiB,
}

// Setup updates the config values to their finals.
// Uses defaults when out of range or unassigned.
func (c *Config) Setup() {
	if c.SeedAttempts < 1 {
		c.SeedAttempts = DefaultConfig.SeedAttempts
	}
	if c.Strategy != StrategyPeel && c.Strategy != StrategyEliminate {
		c.Strategy = DefaultConfig.Strategy
	}
	if c.MaxMemory <= 0 {
		c.MaxMemory = DefaultConfig.MaxMemory
	}

	evs.Event("config-setup",
		eventkit.Int64("seed_attempts", int64(c.SeedAttempts)),
		eventkit.String("strategy", c.Strategy.String()),
		eventkit.Int64("max_memory", c.MaxMemory.Int64()),
	)
}

// blockCount validates the sizes and returns the number of source blocks.
func blockCount(messageBytes uint64, blockBytes uint32) (int, error) {
	if messageBytes == 0 {
		return 0, ErrInvalidInput.New("empty message")
	}
	if blockBytes == 0 {
		return 0, ErrInvalidInput.New("zero block size")
	}

	k := messageBytes / uint64(blockBytes)
	if messageBytes%uint64(blockBytes) != 0 {
		k++
	}

	switch {
	case k < MinBlocks:
		return 0, ErrSmallN.New("%d blocks, minimum is %d", k, MinBlocks)
	case k > MaxBlocks:
		return 0, ErrLargeN.New("%d blocks, maximum is %d", k, MaxBlocks)
	}
	return int(k), nil
}

// reserve fails when a handle needs more than MaxMemory bytes.
func (c Config) reserve(need uint64) error {
	if need > uint64(c.MaxMemory) {
		return ErrOOM.New("need %v, limit %v", memory.Size(need), c.MaxMemory)
	}
	return nil
}

func (c Config) selectSeeds(seed uint64, k int) (generator.Seeds, error) {
	seeds, err := generator.Select(seed, k, c.SeedAttempts)
	switch {
	case err == nil:
		return seeds, nil
	case generator.ErrBadPeelSeed.Has(err):
		return seeds, ErrBadPeelSeed.Wrap(err)
	case generator.ErrBadDenseSeed.Has(err):
		return seeds, ErrBadDenseSeed.Wrap(err)
	default:
		return seeds, Error.Wrap(err)
	}
}
