// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package fountain

import (
	"bytes"
	"sync"

	"storj.io/fountain/private/bitset"
	"storj.io/fountain/private/generator"
	"storj.io/fountain/private/solver"
	"storj.io/fountain/private/xorblock"
)

var (
	initOnce sync.Once
	initErr  error
)

// Init prepares the process wide tables and runs a known answer self test.
// It is safe to call from many goroutines; only the first call does work.
// Constructors call it, so calling it directly only moves the cost earlier.
func Init() error {
	initOnce.Do(func() {
		initErr = selfTest()
		if initErr != nil {
			mon.Event("fountain_self_test_failed")
		}
	})
	return initErr
}

func selfTest() error {
	if err := generator.SelfTest(); err != nil {
		return ErrUnsupportedPlatform.Wrap(err)
	}

	a := []byte{0x0f, 0xf0, 0xaa, 0x55, 1, 2, 3, 4, 5}
	b := []byte{0xff, 0xff, 0x55, 0x55, 1, 2, 3, 4, 4}
	xorblock.Into(a, b)
	if !bytes.Equal(a, []byte{0xf0, 0x0f, 0xff, 0x00, 0, 0, 0, 0, 1}) {
		return ErrUnsupportedPlatform.New("xor kernel mismatch")
	}

	// x0^x1 = 3, x1 = 1 has the single solution x0 = 2.
	sys := solver.New(2, 1, solver.StrategyEliminate)
	both := bitset.New(2)
	both.Fill()
	second := bitset.New(2)
	second.Set(1)
	sys.Add(both, []byte{3})
	sys.Add(second, []byte{1})
	if err := sys.Solve(); err != nil {
		return ErrUnsupportedPlatform.Wrap(err)
	}
	if x0, _ := sys.Block(0); len(x0) != 1 || x0[0] != 2 {
		return ErrUnsupportedPlatform.New("solver mismatch")
	}
	return nil
}
