// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

// Package compress implements the optional zstd stage applied to messages
// before they are fountain coded.
package compress

import (
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"
)

// MaxDecodedSize bounds the memory a single decompression may use.
const MaxDecodedSize = 256 << 20

var (
	mon = monkit.Package()

	// Error is the errs class of compression errors.
	Error = errs.Class("compress")

	zstdDecoder = func() *zstd.Decoder {
		decoder, err := zstd.NewReader(nil,
			zstd.WithDecoderMaxMemory(MaxDecodedSize),
		)
		if err != nil {
			panic(err)
		}
		return decoder
	}()

	encoders sync.Map // zstd level -> *zstd.Encoder
)

func encoder(level int) (*zstd.Encoder, error) {
	if enc, ok := encoders.Load(level); ok {
		return enc.(*zstd.Encoder), nil
	}

	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)),
	)
	if err != nil {
		return nil, Error.Wrap(err)
	}

	actual, loaded := encoders.LoadOrStore(level, enc)
	if loaded {
		_ = enc.Close()
	}
	return actual.(*zstd.Encoder), nil
}

// Compress returns data compressed at the given zstd level.
func Compress(data []byte, level int) ([]byte, error) {
	enc, err := encoder(level)
	if err != nil {
		return nil, err
	}

	out := enc.EncodeAll(data, make([]byte, 0, len(data)/2+64))
	mon.IntVal("compress_ratio_percent").Observe(int64(100 * len(out) / max(len(data), 1)))
	return out, nil
}

// Decompress reverses Compress. rawBytes is the expected output length.
func Decompress(data []byte, rawBytes int) ([]byte, error) {
	if rawBytes < 0 || rawBytes > MaxDecodedSize {
		return nil, Error.New("decoded size %d outside [0, %d]", rawBytes, MaxDecodedSize)
	}

	out, err := zstdDecoder.DecodeAll(data, make([]byte, 0, rawBytes))
	if err != nil {
		return nil, Error.Wrap(err)
	}
	if len(out) != rawBytes {
		return nil, Error.New("decoded %d bytes, expected %d", len(out), rawBytes)
	}
	return out, nil
}
