// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package stream

import (
	"context"
	"sync"

	"storj.io/fountain"
	"storj.io/fountain/private/compress"
	"storj.io/fountain/private/frame"
	"storj.io/fountain/private/manifest"
)

// Encoder produces an unbounded sequence of frames for one message.
type Encoder struct {
	manifest  *manifest.Manifest
	enc       *fountain.Encoder
	protector *frame.Protector

	mu      sync.Mutex
	next    uint32
	pending []byte
}

// NewEncoder prepares the frames of message for stream streamID.
func NewEncoder(ctx context.Context, streamID uint32, message []byte, config Config) (_ *Encoder, err error) {
	defer mon.Task()(&ctx)(&err)
	config.Setup()

	protector, err := config.protector()
	if err != nil {
		return nil, err
	}

	payload, compressed := message, false
	if !config.DisableCompression {
		packed, err := compress.Compress(message, config.CompressLevel)
		if err != nil {
			return nil, Error.Wrap(err)
		}
		if len(packed) < len(message) {
			payload, compressed = packed, true
		}
	}

	blockBytes := blockSize(len(payload), config.BlockSize)
	enc, err := config.Fountain.NewEncoder(config.Seed, payload, blockBytes)
	if err != nil {
		return nil, Error.Wrap(err)
	}

	return &Encoder{
		manifest: &manifest.Manifest{
			StreamID:     streamID,
			MessageBytes: uint64(len(payload)),
			BlockBytes:   blockBytes,
			Seed:         config.Seed,
			Compressed:   compressed,
			RawBytes:     uint64(len(message)),
			Checksum:     manifest.Checksum(message),
		},
		enc:       enc,
		protector: protector,
	}, nil
}

// Manifest returns the stream description carried by every frame.
func (e *Encoder) Manifest() manifest.Manifest { return *e.manifest }

// BlockCount is the number of frames a receiver needs at minimum.
func (e *Encoder) BlockCount() int { return e.enc.BlockCount() }

// Frame returns the frame for symbol id.
func (e *Encoder) Frame(id uint32) ([]byte, error) {
	payload, err := e.enc.Encode(id)
	if err != nil {
		return nil, Error.Wrap(err)
	}

	data, err := (&frame.Frame{Manifest: e.manifest, SymbolID: id, Payload: payload}).Marshal()
	if err != nil {
		return nil, Error.Wrap(err)
	}
	if e.protector != nil {
		data, err = e.protector.Protect(data)
		if err != nil {
			return nil, Error.Wrap(err)
		}
	}

	mon.Meter("stream_frame_bytes").Mark(len(data))
	return data, nil
}

// Next returns the frame after the one previously returned by Next.
func (e *Encoder) Next() ([]byte, error) {
	e.mu.Lock()
	id := e.next
	e.next++
	e.mu.Unlock()

	return e.Frame(id)
}

// Read fills data with length delimited frames. Frames never run out, so
// Read only fails when encoding does.
//
// See io.Reader for more details.
func (e *Encoder) Read(data []byte) (n int, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for n < len(data) {
		if len(e.pending) == 0 {
			f, err := e.Frame(e.next)
			if err != nil {
				return n, err
			}
			e.next++
			e.pending = frame.AppendDelimited(e.pending[:0], f)
		}
		copied := copy(data[n:], e.pending)
		e.pending = e.pending[copied:]
		n += copied
	}
	return n, nil
}

// Close releases the encoder.
func (e *Encoder) Close() error {
	return e.enc.Close()
}
