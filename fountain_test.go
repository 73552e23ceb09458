// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package fountain_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/mwc"
	"github.com/zeebo/sudo"

	"storj.io/common/memory"
	"storj.io/common/testcontext"
	"storj.io/common/testrand"
	"storj.io/fountain"
	"storj.io/fountain/private/generator"
)

// overhead is how many symbols past the block count a test may feed before
// expecting success. Failure odds are about 2^-overhead.
const overhead = 24

func shuffle(ids []uint32) {
	for i := len(ids) - 1; i > 0; i-- {
		j := mwc.Intn(i + 1)
		ids[i], ids[j] = ids[j], ids[i]
	}
}

// pickIDs returns n distinct ids drawn from [0, limit) in random order.
func pickIDs(n int, limit uint32) []uint32 {
	seen := make(map[uint32]bool, n)
	ids := make([]uint32, 0, n)
	for len(ids) < n {
		id := uint32(mwc.Intn(int(limit)))
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

func TestInit(t *testing.T) {
	require.NoError(t, fountain.Init())
	require.NoError(t, fountain.Init())
}

func TestConcreteScenario(t *testing.T) {
	message := testrand.BytesInt(64)

	enc, err := fountain.NewEncoder(fountain.DefaultSeed, message, 32)
	require.NoError(t, err)
	defer func() { _ = enc.Close() }()
	require.Equal(t, 2, enc.BlockCount())

	symbols := map[uint32][]byte{}
	for id := uint32(1); id <= 5; id++ {
		symbols[id], err = enc.Encode(id)
		require.NoError(t, err)
	}

	dec, err := fountain.NewDecoder(64, 32)
	require.NoError(t, err)
	defer func() { _ = dec.Close() }()

	var status fountain.Status
	for id := uint32(1); id <= 4; id++ {
		status, err = dec.Decode(id, symbols[id])
		require.NoError(t, err)
		if status == fountain.StatusSuccess {
			break
		}
		require.Equal(t, fountain.StatusNeedMore, status)
	}
	require.Equal(t, fountain.StatusSuccess, status)

	out := make([]byte, 64)
	require.NoError(t, dec.Recover(out))
	require.Equal(t, message, out)
}

func TestRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		size  int
		block uint32
	}{
		{2, 1},
		{33, 32},
		{64, 32},
		{1000, 7},
		{4096, 64},
		{10 * memory.KiB.Int(), 100},
		{30000, 100},
	} {
		for _, strategy := range []fountain.Strategy{fountain.StrategyPeel, fountain.StrategyEliminate} {
			config := fountain.Config{Strategy: strategy}
			message := testrand.BytesInt(tc.size)
			seed := uint64(mwc.Intn(1 << 30))

			enc, err := config.NewEncoder(seed, message, tc.block)
			require.NoError(t, err)

			dec, err := config.NewDecoder(seed, uint64(tc.size), tc.block)
			require.NoError(t, err)

			k := enc.BlockCount()
			ids := pickIDs(k+overhead, uint32(3*k+100))

			done := false
			for i, id := range ids {
				symbol, err := enc.Encode(id)
				require.NoError(t, err)

				status, err := dec.Decode(id, symbol)
				require.NoError(t, err)

				if i > 0 && mwc.Intn(4) == 0 {
					prev := ids[mwc.Intn(i)]
					dup, err := enc.Encode(prev)
					require.NoError(t, err)
					again, err := dec.Decode(prev, dup)
					require.NoError(t, err)
					require.Equal(t, status, again)
				}

				if status == fountain.StatusSuccess {
					done = true
					break
				}
				require.Equal(t, fountain.StatusNeedMore, status)
			}
			require.True(t, done, "size=%d block=%d strategy=%v", tc.size, tc.block, strategy)

			got, err := dec.Message()
			require.NoError(t, err)
			require.Equal(t, message, got)

			require.NoError(t, enc.Close())
			require.NoError(t, dec.Close())
		}
	}
}

func TestLossTolerance(t *testing.T) {
	message := testrand.BytesInt(3000)
	enc, err := fountain.NewEncoder(fountain.DefaultSeed, message, 50)
	require.NoError(t, err)
	k := enc.BlockCount()

	// drop every source symbol, only repair symbols arrive.
	dec, err := fountain.NewDecoder(3000, 50)
	require.NoError(t, err)

	status := fountain.StatusNeedMore
	for id := uint32(k + 1); status != fountain.StatusSuccess; id++ {
		require.Less(t, int(id), 2*k+1+overhead)
		symbol, err := enc.Encode(id)
		require.NoError(t, err)
		status, err = dec.Decode(id, symbol)
		require.NoError(t, err)
	}

	got, err := dec.Message()
	require.NoError(t, err)
	require.Equal(t, message, got)
}

func TestDeterminism(t *testing.T) {
	message := testrand.BytesInt(5000)
	a, err := fountain.NewEncoder(42, message, 128)
	require.NoError(t, err)
	b, err := fountain.NewEncoder(42, message, 128)
	require.NoError(t, err)
	other, err := fountain.NewEncoder(43, message, 128)
	require.NoError(t, err)

	differs := false
	for range 100 {
		id := uint32(mwc.Intn(1 << 31))

		first, err := a.Encode(id)
		require.NoError(t, err)
		second, err := a.Encode(id)
		require.NoError(t, err)
		third, err := b.Encode(id)
		require.NoError(t, err)
		require.Equal(t, first, second)
		require.Equal(t, first, third)

		seeded, err := other.Encode(id)
		require.NoError(t, err)
		if string(seeded) != string(first) {
			differs = true
		}
	}
	assert.True(t, differs)
}

func TestSystematicSymbols(t *testing.T) {
	message := testrand.BytesInt(100)
	enc, err := fountain.NewEncoder(1, message, 30)
	require.NoError(t, err)
	require.Equal(t, 4, enc.BlockCount())
	require.Equal(t, uint64(100), enc.MessageBytes())
	require.Equal(t, uint32(30), enc.BlockBytes())
	require.Equal(t, uint64(1), enc.Seed())

	for id := uint32(0); id < 4; id++ {
		symbol, err := enc.Encode(id)
		require.NoError(t, err)
		end := min(int(id+1)*30, 100)
		require.Equal(t, message[id*30:end], symbol)
		require.Equal(t, len(symbol), enc.SymbolBytes(id))
	}

	parity, err := enc.Encode(4)
	require.NoError(t, err)
	require.Len(t, parity, 30)
	want := make([]byte, 30)
	for i, b := range message {
		want[i%30] ^= b
	}
	require.Equal(t, want, parity)

	dst := make([]byte, 10)
	_, err = enc.EncodeTo(5, dst)
	require.True(t, fountain.ErrInvalidInput.Has(err))
}

func TestDuplicateTolerance(t *testing.T) {
	message := testrand.BytesInt(1024)
	enc, err := fountain.NewEncoder(fountain.DefaultSeed, message, 64)
	require.NoError(t, err)
	dec, err := fountain.NewDecoder(1024, 64)
	require.NoError(t, err)

	status := fountain.StatusNeedMore
	duplicates := 0
	for id := uint32(3); status != fountain.StatusSuccess; id++ {
		symbol, err := enc.Encode(id)
		require.NoError(t, err)

		status, err = dec.Decode(id, symbol)
		require.NoError(t, err)

		for range 2 {
			again, err := dec.Decode(id, symbol)
			require.NoError(t, err)
			require.Equal(t, status, again)
			if status == fountain.StatusNeedMore {
				duplicates++
			}
		}
	}

	progress := dec.Progress()
	require.Equal(t, fountain.DecoderReady, progress.State)
	require.Equal(t, duplicates, progress.Duplicates)
	require.Equal(t, 16, progress.Rank)
	require.Equal(t, 16, progress.Blocks)
	require.GreaterOrEqual(t, progress.Received, 16)

	// symbols after success are ignored.
	status, err = dec.Decode(1<<30, make([]byte, 64))
	require.NoError(t, err)
	require.Equal(t, fountain.StatusSuccess, status)

	got, err := dec.Message()
	require.NoError(t, err)
	require.Equal(t, message, got)
}

func TestBoundaries(t *testing.T) {
	for _, tc := range []struct {
		size  int
		block uint32
		want  fountain.Status
	}{
		{0, 10, fountain.StatusInvalidInput},
		{10, 0, fountain.StatusInvalidInput},
		{10, 10, fountain.StatusSmallN},
		{10, 100, fountain.StatusSmallN},
		{11, 10, fountain.StatusSuccess},
		{fountain.MaxBlocks, 1, fountain.StatusSuccess},
		{fountain.MaxBlocks + 1, 1, fountain.StatusLargeN},
	} {
		message := make([]byte, tc.size)

		enc, err := fountain.NewEncoder(0, message, tc.block)
		require.Equal(t, tc.want, fountain.StatusOf(err), "encoder %d/%d", tc.size, tc.block)
		dec, err := fountain.NewDecoder(uint64(tc.size), tc.block)
		require.Equal(t, tc.want, fountain.StatusOf(err), "decoder %d/%d", tc.size, tc.block)

		if tc.want == fountain.StatusSuccess {
			require.NoError(t, enc.Close())
			require.NoError(t, dec.Close())
		} else {
			require.Nil(t, enc)
			require.Nil(t, dec)
		}
	}
}

func TestMemoryLimit(t *testing.T) {
	config := fountain.Config{MaxMemory: memory.KiB}

	_, err := config.NewEncoder(0, make([]byte, 4*memory.KiB.Int()), 512)
	require.True(t, fountain.ErrOOM.Has(err))
	require.Equal(t, fountain.StatusOOM, fountain.StatusOf(err))

	_, err = config.NewDecoder(0, uint64(4*memory.KiB.Int()), 512)
	require.True(t, fountain.ErrOOM.Has(err))

	_, err = config.NewEncoder(0, make([]byte, 512), 256)
	require.NoError(t, err)
}

func TestConfigSetup(t *testing.T) {
	var config fountain.Config
	config.Setup()
	require.Equal(t, fountain.DefaultConfig, config)

	config = fountain.Config{SeedAttempts: 2, Strategy: fountain.StrategyEliminate, MaxMemory: memory.MiB}
	config.Setup()
	require.Equal(t, fountain.Config{SeedAttempts: 2, Strategy: fountain.StrategyEliminate, MaxMemory: memory.MiB}, config)

	config = fountain.Config{Strategy: 5, SeedAttempts: -1}
	config.Setup()
	require.Equal(t, fountain.DefaultConfig, config)

	require.Equal(t, "eliminate", fountain.StrategyEliminate.String())
	require.Equal(t, "Strategy(5)", fountain.Strategy(5).String())
}

func TestInvalidSymbols(t *testing.T) {
	message := testrand.BytesInt(100)
	enc, err := fountain.NewEncoder(fountain.DefaultSeed, message, 30)
	require.NoError(t, err)
	dec, err := fountain.NewDecoder(100, 30)
	require.NoError(t, err)

	for _, tc := range []struct {
		id      uint32
		payload []byte
	}{
		{0, nil},
		{0, make([]byte, 31)},
		{0, make([]byte, 29)},
		{9, make([]byte, 10)},
		{3, make([]byte, 9)},
	} {
		status, err := dec.Decode(tc.id, tc.payload)
		require.Equal(t, fountain.StatusInvalidInput, status)
		require.True(t, fountain.ErrInvalidInput.Has(err))
	}
	require.Equal(t, 0, dec.Progress().Received)
	require.Equal(t, fountain.DecoderCollecting, dec.State())

	// the last source symbol may arrive padded; the padding is dropped.
	tail, err := enc.Encode(3)
	require.NoError(t, err)
	padded := append(append([]byte(nil), tail...), 0xff, 0xff)
	for len(padded) < 30 {
		padded = append(padded, 0xee)
	}
	status, err := dec.Decode(3, padded)
	require.NoError(t, err)
	require.Equal(t, fountain.StatusNeedMore, status)

	for id := uint32(0); id < 3; id++ {
		symbol, err := enc.Encode(id)
		require.NoError(t, err)
		status, err = dec.Decode(id, symbol)
		require.NoError(t, err)
	}
	require.Equal(t, fountain.StatusSuccess, status)

	got, err := dec.Message()
	require.NoError(t, err)
	require.Equal(t, message, got)
}

func TestRecoverLifecycle(t *testing.T) {
	message := testrand.BytesInt(256)
	enc, err := fountain.NewEncoder(fountain.DefaultSeed, message, 32)
	require.NoError(t, err)
	dec, err := fountain.NewDecoder(256, 32)
	require.NoError(t, err)

	out := make([]byte, 256)
	err = dec.Recover(out)
	require.True(t, fountain.ErrNeedMore.Has(err))
	require.Equal(t, fountain.StatusNeedMore, fountain.StatusOf(err))
	require.Equal(t, fountain.DecoderCollecting, dec.State())
	require.Equal(t, fountain.StatusNeedMore, dec.Status())

	err = dec.Recover(make([]byte, 10))
	require.True(t, fountain.ErrInvalidInput.Has(err))

	for id := uint32(0); dec.State() == fountain.DecoderCollecting; id++ {
		symbol, err := enc.Encode(id)
		require.NoError(t, err)
		_, err = dec.Decode(id, symbol)
		require.NoError(t, err)
	}
	require.Equal(t, fountain.DecoderReady, dec.State())

	require.NoError(t, dec.Recover(out))
	require.Equal(t, message, out)
	require.Equal(t, fountain.DecoderRecovered, dec.State())

	again := make([]byte, 300)
	require.NoError(t, dec.Recover(again))
	require.Equal(t, message, again[:256])
	require.Equal(t, fountain.StatusSuccess, dec.Status())
}

func TestRecoverFailure(t *testing.T) {
	const k = 3
	message := testrand.BytesInt(k * 10)
	enc, err := fountain.NewEncoder(fountain.DefaultSeed, message, 10)
	require.NoError(t, err)
	dec, err := fountain.NewDecoder(uint64(len(message)), 10)
	require.NoError(t, err)

	seeds, err := generator.Select(fountain.DefaultSeed, k, fountain.DefaultConfig.SeedAttempts)
	require.NoError(t, err)

	// find a repair symbol that does not involve the last block, so it is
	// redundant once blocks 0 and 1 are known.
	repair := uint32(0)
	for id := uint32(k + 1); id < 1000; id++ {
		if !generator.Generate(seeds, id, k).Coeffs.Has(k - 1) {
			repair = id
			break
		}
	}
	require.NotZero(t, repair)

	for _, id := range []uint32{0, 1} {
		symbol, err := enc.Encode(id)
		require.NoError(t, err)
		status, err := dec.Decode(id, symbol)
		require.NoError(t, err)
		require.Equal(t, fountain.StatusNeedMore, status)
	}

	corrupt, err := enc.Encode(repair)
	require.NoError(t, err)
	corrupt[0] ^= 0xff
	status, err := dec.Decode(repair, corrupt)
	require.NoError(t, err)
	require.Equal(t, fountain.StatusNeedMore, status)

	last, err := enc.Encode(k - 1)
	require.NoError(t, err)
	status, err = dec.Decode(k-1, last)
	require.NoError(t, err)
	require.Equal(t, fountain.StatusSuccess, status)
	require.Equal(t, fountain.DecoderReady, dec.State())

	failure := dec.Recover(make([]byte, len(message)))
	require.True(t, fountain.ErrExtraInsufficient.Has(failure))
	require.Equal(t, fountain.StatusExtraInsufficient, fountain.StatusOf(failure))
	require.Equal(t, fountain.DecoderFailed, dec.State())
	require.Equal(t, fountain.StatusExtraInsufficient, dec.Status())

	more, err := enc.Encode(k + 7)
	require.NoError(t, err)
	status, err = dec.Decode(k+7, more)
	require.Equal(t, failure, err)
	require.Equal(t, fountain.StatusExtraInsufficient, status)

	require.Equal(t, failure, dec.Recover(make([]byte, len(message))))
	_, err = dec.RecoverBlock(0)
	require.Equal(t, failure, err)
	_, err = dec.BecomeEncoder()
	require.Equal(t, failure, err)
}

func TestRecoverBlock(t *testing.T) {
	message := testrand.BytesInt(250)
	enc, err := fountain.NewEncoder(fountain.DefaultSeed, message, 100)
	require.NoError(t, err)
	dec, err := fountain.NewDecoder(250, 100)
	require.NoError(t, err)

	_, err = dec.RecoverBlock(3)
	require.True(t, fountain.ErrInvalidInput.Has(err))
	_, err = dec.RecoverBlock(0)
	require.True(t, fountain.ErrNeedMore.Has(err))

	tail, err := enc.Encode(2)
	require.NoError(t, err)
	_, err = dec.Decode(2, tail)
	require.NoError(t, err)

	block, err := dec.RecoverBlock(2)
	require.NoError(t, err)
	require.Equal(t, message[200:], block)

	// parity plus block 2 is not enough for blocks 0 and 1.
	parity, err := enc.Encode(3)
	require.NoError(t, err)
	_, err = dec.Decode(3, parity)
	require.NoError(t, err)
	_, err = dec.RecoverBlock(1)
	require.True(t, fountain.ErrNeedMore.Has(err))

	// block 1 peels block 0 out of the parity.
	first, err := enc.Encode(1)
	require.NoError(t, err)
	status, err := dec.Decode(1, first)
	require.NoError(t, err)
	require.Equal(t, fountain.StatusSuccess, status)

	block, err = dec.RecoverBlock(0)
	require.NoError(t, err)
	require.Equal(t, message[:100], block)

	_, err = dec.Message()
	require.NoError(t, err)
	block, err = dec.RecoverBlock(1)
	require.NoError(t, err)
	require.Equal(t, message[100:200], block)
}

func TestBecomeEncoder(t *testing.T) {
	message := testrand.BytesInt(777)
	enc, err := fountain.NewEncoder(9, message, 40)
	require.NoError(t, err)
	dec, err := fountain.NewSeededDecoder(9, 777, 40)
	require.NoError(t, err)

	_, err = dec.BecomeEncoder()
	require.True(t, fountain.ErrNeedMore.Has(err))

	for id := uint32(1000); dec.State() == fountain.DecoderCollecting; id++ {
		symbol, err := enc.Encode(id)
		require.NoError(t, err)
		_, err = dec.Decode(id, symbol)
		require.NoError(t, err)
	}

	relay, err := dec.BecomeEncoder()
	require.NoError(t, err)
	require.Equal(t, enc.BlockCount(), relay.BlockCount())
	require.Equal(t, enc.Seed(), relay.Seed())

	for _, id := range []uint32{0, 5, 19, 20, 21, 500, 1 << 31} {
		want, err := enc.Encode(id)
		require.NoError(t, err)
		got, err := relay.Encode(id)
		require.NoError(t, err)
		require.Equal(t, want, got, id)
	}

	_, err = dec.Decode(0, make([]byte, 40))
	require.True(t, fountain.ErrInvalidInput.Has(err))
}

func TestStrategiesAgree(t *testing.T) {
	message := testrand.BytesInt(20 * memory.KiB.Int())
	enc, err := fountain.NewEncoder(5, message, 256)
	require.NoError(t, err)

	peel, err := fountain.Config{Strategy: fountain.StrategyPeel}.NewDecoder(5, uint64(len(message)), 256)
	require.NoError(t, err)
	elim, err := fountain.Config{Strategy: fountain.StrategyEliminate}.NewDecoder(5, uint64(len(message)), 256)
	require.NoError(t, err)

	ids := pickIDs(enc.BlockCount()+overhead, 1<<20)
	shuffle(ids)
	for _, id := range ids {
		symbol, err := enc.Encode(id)
		require.NoError(t, err)
		a, err := peel.Decode(id, symbol)
		require.NoError(t, err)
		b, err := elim.Decode(id, symbol)
		require.NoError(t, err)
		require.Equal(t, a, b)
	}
	require.Equal(t, peel.Progress().Rank, elim.Progress().Rank)

	a, err := peel.Message()
	require.NoError(t, err)
	b, err := elim.Message()
	require.NoError(t, err)
	require.Equal(t, message, a)
	require.Equal(t, a, b)
}

func TestClose(t *testing.T) {
	enc, err := fountain.NewEncoder(0, testrand.BytesInt(100), 10)
	require.NoError(t, err)

	require.NoError(t, enc.Close())
	require.NoError(t, enc.Close())
	require.Nil(t, sudo.Sudo(reflect.ValueOf(enc).Elem().FieldByName("blocks")).Interface().([]byte))

	_, err = enc.Encode(0)
	require.True(t, fountain.ErrInvalidInput.Has(err))

	dec, err := fountain.NewDecoder(100, 10)
	require.NoError(t, err)
	require.NoError(t, dec.Close())
	require.NoError(t, dec.Close())

	status, err := dec.Decode(0, make([]byte, 10))
	require.Equal(t, fountain.StatusInvalidInput, status)
	require.True(t, fountain.ErrInvalidInput.Has(err))
	require.True(t, fountain.ErrInvalidInput.Has(dec.Recover(make([]byte, 100))))
	_, err = dec.RecoverBlock(0)
	require.True(t, fountain.ErrInvalidInput.Has(err))
	require.Zero(t, dec.Progress().Rank)

	var nilEnc *fountain.Encoder
	require.NoError(t, nilEnc.Close())
	var nilDec *fountain.Decoder
	require.NoError(t, nilDec.Close())
}

func TestConcurrentEncode(t *testing.T) {
	ctx := testcontext.New(t)

	message := testrand.BytesInt(8 * memory.KiB.Int())
	enc, err := fountain.NewEncoder(3, message, 512)
	require.NoError(t, err)

	want := make([][]byte, 64)
	for id := range want {
		want[id], err = enc.Encode(uint32(id))
		require.NoError(t, err)
	}

	for range 8 {
		ctx.Go(func() error {
			for id := range want {
				got, err := enc.Encode(uint32(id))
				if err != nil {
					return err
				}
				if string(got) != string(want[id]) {
					return fountain.Error.New("symbol %d differs", id)
				}
			}
			return nil
		})
	}
	ctx.Wait()
}
