// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package stream

import (
	"context"

	"storj.io/eventkit"
	"storj.io/fountain"
	"storj.io/fountain/private/compress"
	"storj.io/fountain/private/frame"
	"storj.io/fountain/private/manifest"
)

// Store receives every message a sink recovers.
type Store interface {
	Store(ctx context.Context, m *manifest.Manifest, message []byte) error
}

// StoreFunc adapts a function to Store.
type StoreFunc func(ctx context.Context, m *manifest.Manifest, message []byte) error

// Store implements Store.
func (fn StoreFunc) Store(ctx context.Context, m *manifest.Manifest, message []byte) error {
	return fn(ctx, m, message)
}

// streamKey identifies a stream by id and message length, so a reused id
// with a different message starts a new stream.
type streamKey struct {
	id   uint32
	size uint64
}

func keyOf(m *manifest.Manifest) streamKey {
	return streamKey{id: m.StreamID, size: m.RawBytes}
}

type pendingStream struct {
	manifest *manifest.Manifest
	dec      *fountain.Decoder
}

// Sink decodes frames of many interleaved streams and hands every
// recovered message to a Store. It is not safe for concurrent use, see
// ConcurrentSink.
type Sink struct {
	config    Config
	protector *frame.Protector
	store     Store

	streams map[streamKey]*pendingStream
	done    map[streamKey]struct{}
}

// NewSink creates a sink delivering to store.
func NewSink(config Config, store Store) (*Sink, error) {
	config.Setup()

	protector, err := config.protector()
	if err != nil {
		return nil, err
	}

	return &Sink{
		config:    config,
		protector: protector,
		store:     store,
		streams:   map[streamKey]*pendingStream{},
		done:      map[streamKey]struct{}{},
	}, nil
}

// NumStreams returns how many streams are being decoded.
func (s *Sink) NumStreams() int { return len(s.streams) }

// NumDone returns how many streams were delivered.
func (s *Sink) NumDone() int { return len(s.done) }

// IsDone reports whether the stream was delivered.
func (s *Sink) IsDone(streamID uint32, rawBytes uint64) bool {
	_, ok := s.done[streamKey{id: streamID, size: rawBytes}]
	return ok
}

// Progress returns the decoder progress of a pending stream.
func (s *Sink) Progress(streamID uint32, rawBytes uint64) (fountain.Progress, bool) {
	st, ok := s.streams[streamKey{id: streamID, size: rawBytes}]
	if !ok {
		return fountain.Progress{}, false
	}
	return st.dec.Progress(), true
}

// Write consumes a single frame and reports whether it completed a stream.
// Frames of delivered streams are ignored.
func (s *Sink) Write(ctx context.Context, data []byte) (done bool, err error) {
	defer mon.Task()(&ctx)(&err)

	if s.protector != nil {
		data, err = s.protector.Unprotect(data)
		if err != nil {
			return false, Error.Wrap(err)
		}
	}

	f, err := frame.Parse(data)
	if err != nil {
		return false, Error.Wrap(err)
	}

	key := keyOf(f.Manifest)
	if _, ok := s.done[key]; ok {
		mon.Counter("stream_frames_after_done").Inc(1)
		return false, nil
	}

	st := s.streams[key]
	if st != nil && !st.manifest.Equal(f.Manifest) {
		// the sender restarted the stream with different parameters.
		_ = st.dec.Close()
		st = nil
	}
	if st == nil {
		m := f.Manifest
		dec, err := s.config.Fountain.NewDecoder(m.Seed, m.MessageBytes, m.BlockBytes)
		if err != nil {
			return false, Error.Wrap(err)
		}
		st = &pendingStream{manifest: m, dec: dec}
		s.streams[key] = st
	}

	status, err := st.dec.Decode(f.SymbolID, f.Payload)
	if err != nil {
		if !fountain.ErrInvalidInput.Has(err) {
			s.fail(key, st, err)
		}
		return false, Error.Wrap(err)
	}
	if status != fountain.StatusSuccess {
		return false, nil
	}

	if err := s.deliver(ctx, key, st); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Sink) deliver(ctx context.Context, key streamKey, st *pendingStream) error {
	m := st.manifest

	message, err := st.dec.Message()
	if err != nil {
		s.fail(key, st, err)
		return Error.Wrap(err)
	}
	if m.Compressed {
		message, err = compress.Decompress(message, int(m.RawBytes))
		if err != nil {
			s.fail(key, st, err)
			return Error.Wrap(err)
		}
	}
	if !m.Verify(message) {
		err := ErrChecksum.New("stream %d", m.StreamID)
		s.fail(key, st, err)
		return err
	}

	// a failed store keeps the recovered decoder, the next frame retries.
	if err := s.store.Store(ctx, m, message); err != nil {
		return Error.Wrap(err)
	}

	progress := st.dec.Progress()
	_ = st.dec.Close()
	delete(s.streams, key)
	s.done[key] = struct{}{}

	mon.Counter("stream_recovered").Inc(1)
	evs.Event("stream-recovered",
		eventkit.Int64("stream_id", int64(m.StreamID)),
		eventkit.Int64("raw_bytes", int64(m.RawBytes)),
		eventkit.Int64("blocks", int64(progress.Blocks)),
		eventkit.Int64("frames", int64(progress.Received+progress.Duplicates)),
		eventkit.Bool("compressed", m.Compressed),
	)
	return nil
}

// fail drops the decoder so that the next frame of the stream starts over.
func (s *Sink) fail(key streamKey, st *pendingStream, err error) {
	_ = st.dec.Close()
	delete(s.streams, key)

	mon.Counter("stream_failed").Inc(1)
	evs.Event("stream-failed",
		eventkit.Int64("stream_id", int64(st.manifest.StreamID)),
		eventkit.Int64("raw_bytes", int64(st.manifest.RawBytes)),
		eventkit.String("error", err.Error()),
	)
}
