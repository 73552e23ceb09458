// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package fountain

import (
	"sync"

	"storj.io/fountain/private/generator"
	"storj.io/fountain/private/xorblock"
)

// Encoder produces symbols for a single message.
//
// Encode and EncodeTo may be called concurrently. Closing while other
// goroutines encode is safe: they either finish first or fail with
// ErrInvalidInput.
type Encoder struct {
	mu     sync.RWMutex
	closed bool

	seed         uint64
	seeds        generator.Seeds
	k            int
	blockBytes   int
	messageBytes uint64

	// blocks is the message zero padded to k*blockBytes.
	blocks []byte
}

// NewEncoder creates an encoder for message split into blockBytes sized
// blocks, using the default config.
func NewEncoder(seed uint64, message []byte, blockBytes uint32) (*Encoder, error) {
	return (Config{}).NewEncoder(seed, message, blockBytes)
}

// NewEncoder creates an encoder for message split into blockBytes sized
// blocks. The message is copied.
func (config Config) NewEncoder(seed uint64, message []byte, blockBytes uint32) (_ *Encoder, err error) {
	defer func() {
		if err != nil {
			mon.Event("fountain_encoder_rejected")
		}
	}()

	if err := Init(); err != nil {
		return nil, err
	}
	config.Setup()

	k, err := blockCount(uint64(len(message)), blockBytes)
	if err != nil {
		return nil, err
	}
	if err := config.reserve(uint64(k) * uint64(blockBytes)); err != nil {
		return nil, err
	}

	seeds, err := config.selectSeeds(seed, k)
	if err != nil {
		return nil, err
	}

	blocks := make([]byte, k*int(blockBytes))
	copy(blocks, message)

	return newEncoder(seed, seeds, k, int(blockBytes), blocks, uint64(len(message))), nil
}

func newEncoder(seed uint64, seeds generator.Seeds, k, blockBytes int, blocks []byte, messageBytes uint64) *Encoder {
	mon.Counter("fountain_encoders").Inc(1)
	return &Encoder{
		seed:         seed,
		seeds:        seeds,
		k:            k,
		blockBytes:   blockBytes,
		messageBytes: messageBytes,
		blocks:       blocks,
	}
}

// Seed returns the seed the encoder was created with.
func (enc *Encoder) Seed() uint64 { return enc.seed }

// BlockBytes returns the symbol size.
func (enc *Encoder) BlockBytes() uint32 { return uint32(enc.blockBytes) }

// MessageBytes returns the message length.
func (enc *Encoder) MessageBytes() uint64 { return enc.messageBytes }

// BlockCount returns the number of source blocks.
func (enc *Encoder) BlockCount() int { return enc.k }

// SymbolBytes returns the length of symbol id. Only the last source symbol
// is shorter than BlockBytes.
func (enc *Encoder) SymbolBytes(id uint32) int {
	return symbolBytes(id, enc.k, enc.blockBytes, enc.messageBytes)
}

func symbolBytes(id uint32, k, blockBytes int, messageBytes uint64) int {
	if uint64(id) == uint64(k-1) {
		return int(messageBytes - uint64(k-1)*uint64(blockBytes))
	}
	return blockBytes
}

// Encode returns a newly allocated symbol for id.
func (enc *Encoder) Encode(id uint32) ([]byte, error) {
	dst := make([]byte, enc.blockBytes)
	n, err := enc.EncodeTo(id, dst)
	if err != nil {
		return nil, err
	}
	return dst[:n], nil
}

// EncodeTo writes the symbol for id into dst and returns its length. dst
// must hold at least SymbolBytes(id) bytes.
func (enc *Encoder) EncodeTo(id uint32, dst []byte) (int, error) {
	enc.mu.RLock()
	defer enc.mu.RUnlock()

	if enc.closed {
		return 0, ErrInvalidInput.New("encoder closed")
	}

	n := enc.SymbolBytes(id)
	if len(dst) < n {
		return 0, ErrInvalidInput.New("destination holds %d bytes, need %d", len(dst), n)
	}
	dst = dst[:n]

	if uint64(id) < uint64(enc.k) {
		copy(dst, enc.block(int(id)))
	} else {
		xorblock.Clear(dst)
		row := generator.Generate(enc.seeds, id, enc.k)
		for i := range row.Coeffs.Iter {
			xorblock.Into(dst, enc.block(i))
		}
	}

	mon.Meter("fountain_encoded_bytes").Mark(n)
	return n, nil
}

func (enc *Encoder) block(i int) []byte {
	return enc.blocks[i*enc.blockBytes : (i+1)*enc.blockBytes]
}

// Close releases the message copy. It is safe to call more than once or on a
// nil encoder; any later Encode fails with ErrInvalidInput.
func (enc *Encoder) Close() error {
	if enc == nil {
		return nil
	}
	enc.mu.Lock()
	defer enc.mu.Unlock()

	enc.closed = true
	enc.blocks = nil
	return nil
}
