// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package fountain

import (
	"fmt"

	"storj.io/fountain/private/generator"
	"storj.io/fountain/private/solver"
)

// DecoderState is the position of a decoder in its lifecycle.
type DecoderState int

const (
	// DecoderCollecting accepts symbols until the system is determined.
	DecoderCollecting DecoderState = iota
	// DecoderReady has enough symbols and can recover the message.
	DecoderReady
	// DecoderRecovered holds the recovered message.
	DecoderRecovered
	// DecoderFailed could not solve its system. It must be discarded.
	DecoderFailed
)

func (s DecoderState) String() string {
	switch s {
	case DecoderCollecting:
		return "collecting"
	case DecoderReady:
		return "ready"
	case DecoderRecovered:
		return "recovered"
	case DecoderFailed:
		return "failed"
	default:
		return fmt.Sprintf("DecoderState(%d)", int(s))
	}
}

// Progress is a snapshot of a decoder.
type Progress struct {
	State DecoderState

	// Received counts distinct symbols incorporated.
	Received int
	// Duplicates counts symbols ignored because their id was seen before.
	Duplicates int
	// Redundant counts symbols that did not raise the rank.
	Redundant int

	Rank   int
	Solved int
	Blocks int
}

// Decoder reconstructs a message from symbols in any order.
//
// A decoder is not safe for concurrent use.
type Decoder struct {
	closed bool
	state  DecoderState
	err    error

	seed         uint64
	seeds        generator.Seeds
	k            int
	blockBytes   int
	messageBytes uint64

	seen       map[uint32]struct{}
	system     *solver.System
	received   int
	duplicates int

	message []byte
}

// NewDecoder creates a decoder for a message of messageBytes split into
// blockBytes sized blocks, produced by an encoder using DefaultSeed.
func NewDecoder(messageBytes uint64, blockBytes uint32) (*Decoder, error) {
	return (Config{}).NewDecoder(DefaultSeed, messageBytes, blockBytes)
}

// NewSeededDecoder is NewDecoder for an encoder created with seed.
func NewSeededDecoder(seed, messageBytes uint64, blockBytes uint32) (*Decoder, error) {
	return (Config{}).NewDecoder(seed, messageBytes, blockBytes)
}

// NewDecoder creates a decoder matching an encoder created with the same
// seed, message length and block size.
func (config Config) NewDecoder(seed, messageBytes uint64, blockBytes uint32) (_ *Decoder, err error) {
	defer func() {
		if err != nil {
			mon.Event("fountain_decoder_rejected")
		}
	}()

	if err := Init(); err != nil {
		return nil, err
	}
	config.Setup()

	k, err := blockCount(messageBytes, blockBytes)
	if err != nil {
		return nil, err
	}

	// payloads plus one coefficient row per pivot.
	need := uint64(k)*uint64(blockBytes) + uint64(k)*uint64((k+63)/64*8)
	if err := config.reserve(need); err != nil {
		return nil, err
	}

	seeds, err := config.selectSeeds(seed, k)
	if err != nil {
		return nil, err
	}

	mon.Counter("fountain_decoders").Inc(1)
	return &Decoder{
		seed:         seed,
		seeds:        seeds,
		k:            k,
		blockBytes:   int(blockBytes),
		messageBytes: messageBytes,
		seen:         make(map[uint32]struct{}, k),
		system:       solver.New(k, int(blockBytes), config.Strategy.solver()),
	}, nil
}

// Seed returns the seed the decoder expects symbols for.
func (dec *Decoder) Seed() uint64 { return dec.seed }

// BlockBytes returns the symbol size.
func (dec *Decoder) BlockBytes() uint32 { return uint32(dec.blockBytes) }

// MessageBytes returns the expected message length.
func (dec *Decoder) MessageBytes() uint64 { return dec.messageBytes }

// BlockCount returns the number of source blocks.
func (dec *Decoder) BlockCount() int { return dec.k }

// State returns the lifecycle state.
func (dec *Decoder) State() DecoderState { return dec.state }

// Status returns the code Decode would report for a duplicate symbol.
func (dec *Decoder) Status() Status {
	switch dec.state {
	case DecoderCollecting:
		return StatusNeedMore
	case DecoderFailed:
		return StatusOf(dec.err)
	default:
		return StatusSuccess
	}
}

// Progress returns a snapshot of the decoder counters.
func (dec *Decoder) Progress() Progress {
	p := Progress{
		State:      dec.state,
		Received:   dec.received,
		Duplicates: dec.duplicates,
		Blocks:     dec.k,
	}
	if dec.system != nil {
		p.Redundant = dec.system.Redundant()
		p.Rank = dec.system.Rank()
		p.Solved = dec.system.SolvedCount()
	}
	return p
}

// Decode incorporates the symbol id. It returns StatusNeedMore while more
// symbols are required and StatusSuccess once the message can be
// recovered. Duplicates and symbols arriving after success are ignored.
// A malformed symbol returns StatusInvalidInput and leaves the decoder
// unchanged.
func (dec *Decoder) Decode(id uint32, payload []byte) (Status, error) {
	if dec.closed {
		return StatusInvalidInput, ErrInvalidInput.New("decoder closed")
	}
	switch dec.state {
	case DecoderFailed:
		return dec.Status(), dec.err
	case DecoderReady, DecoderRecovered:
		return StatusSuccess, nil
	}

	if _, ok := dec.seen[id]; ok {
		dec.duplicates++
		mon.Counter("fountain_duplicate_symbols").Inc(1)
		return dec.Status(), nil
	}

	want := symbolBytes(id, dec.k, dec.blockBytes, dec.messageBytes)
	switch {
	case len(payload) == 0:
		return StatusInvalidInput, ErrInvalidInput.New("empty symbol %d", id)
	case len(payload) > dec.blockBytes:
		return StatusInvalidInput, ErrInvalidInput.New("symbol %d has %d bytes, block is %d", id, len(payload), dec.blockBytes)
	case len(payload) < want:
		return StatusInvalidInput, ErrInvalidInput.New("symbol %d has %d bytes, want %d", id, len(payload), want)
	}

	// the padding of the last source block is zero on the encoder side.
	value := make([]byte, dec.blockBytes)
	copy(value, payload[:want])

	row := generator.Generate(dec.seeds, id, dec.k)
	dec.seen[id] = struct{}{}
	dec.received++
	mon.Meter("fountain_decoded_bytes").Mark(len(payload))

	if !dec.system.Add(row.Coeffs, value) {
		mon.Counter("fountain_redundant_symbols").Inc(1)
	}

	if !dec.system.Determined() {
		return StatusNeedMore, nil
	}

	dec.state = DecoderReady
	mon.IntVal("fountain_symbols_needed").Observe(int64(dec.received))
	mon.IntVal("fountain_overhead_symbols").Observe(int64(dec.received - dec.k))
	return StatusSuccess, nil
}

// Recover writes the message into out, which must hold MessageBytes bytes.
// Before the decoder is ready it returns ErrNeedMore and nothing changes.
// If the system cannot be solved the decoder fails permanently with
// ErrExtraInsufficient. Calls after a successful recovery repeat the copy.
func (dec *Decoder) Recover(out []byte) error {
	if dec.closed {
		return ErrInvalidInput.New("decoder closed")
	}
	if uint64(len(out)) < dec.messageBytes {
		return ErrInvalidInput.New("output holds %d bytes, need %d", len(out), dec.messageBytes)
	}

	switch dec.state {
	case DecoderCollecting:
		return ErrNeedMore.New("rank %d of %d", dec.system.Rank(), dec.k)
	case DecoderFailed:
		return dec.err
	case DecoderReady:
		if err := dec.solve(); err != nil {
			return err
		}
	}

	copy(out, dec.message)
	return nil
}

func (dec *Decoder) solve() error {
	if err := dec.system.Solve(); err != nil {
		return dec.fail(ErrExtraInsufficient.Wrap(err))
	}
	if n := dec.system.Inconsistent(); n > 0 {
		return dec.fail(ErrExtraInsufficient.New("%d symbols disagree with the solution", n))
	}

	message := make([]byte, dec.messageBytes)
	for i := 0; i < dec.k; i++ {
		block, ok := dec.system.Block(i)
		if !ok {
			return dec.fail(ErrExtraInsufficient.New("block %d unsolved", i))
		}
		copy(message[i*dec.blockBytes:], block)
	}

	dec.message = message
	dec.state = DecoderRecovered
	mon.Counter("fountain_recovered_messages").Inc(1)
	return nil
}

func (dec *Decoder) fail(err error) error {
	dec.state = DecoderFailed
	dec.err = err
	mon.Event("fountain_decoder_failed")
	return err
}

// Message recovers the message into a new buffer.
func (dec *Decoder) Message() ([]byte, error) {
	out := make([]byte, dec.messageBytes)
	if err := dec.Recover(out); err != nil {
		return nil, err
	}
	return out, nil
}

// RecoverBlock returns a copy of source block i, trimmed like the
// matching source symbol. Blocks may become available before the whole
// message when the peel strategy is used; an unsolved block returns
// ErrNeedMore.
func (dec *Decoder) RecoverBlock(i uint32) ([]byte, error) {
	if dec.closed {
		return nil, ErrInvalidInput.New("decoder closed")
	}
	if uint64(i) >= uint64(dec.k) {
		return nil, ErrInvalidInput.New("block %d of %d", i, dec.k)
	}

	n := symbolBytes(i, dec.k, dec.blockBytes, dec.messageBytes)
	switch dec.state {
	case DecoderFailed:
		return nil, dec.err
	case DecoderRecovered:
		start := int(i) * dec.blockBytes
		return append([]byte(nil), dec.message[start:start+n]...), nil
	}

	block, ok := dec.system.Block(int(i))
	if !ok {
		return nil, ErrNeedMore.New("block %d unsolved", i)
	}
	return append([]byte(nil), block[:n]...), nil
}

// BecomeEncoder recovers the message and returns an encoder for it with the
// same parameters, so a receiver can relay symbols. The decoder is closed.
func (dec *Decoder) BecomeEncoder() (*Encoder, error) {
	if dec.closed {
		return nil, ErrInvalidInput.New("decoder closed")
	}
	if dec.state == DecoderReady {
		if err := dec.solve(); err != nil {
			return nil, err
		}
	}
	switch dec.state {
	case DecoderCollecting:
		return nil, ErrNeedMore.New("rank %d of %d", dec.system.Rank(), dec.k)
	case DecoderFailed:
		return nil, dec.err
	}

	blocks := make([]byte, dec.k*dec.blockBytes)
	copy(blocks, dec.message)
	enc := newEncoder(dec.seed, dec.seeds, dec.k, dec.blockBytes, blocks, dec.messageBytes)

	_ = dec.Close()
	return enc, nil
}

// Close releases the decoder state. It is safe to call more than once or on a
// nil decoder; any later call fails with ErrInvalidInput.
func (dec *Decoder) Close() error {
	if dec == nil {
		return nil
	}
	dec.closed = true
	dec.seen = nil
	dec.system = nil
	dec.message = nil
	return nil
}
