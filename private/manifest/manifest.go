// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

// Package manifest describes a fountain coded stream so that a receiver can
// build a matching decoder from any single frame.
package manifest

import (
	"bytes"

	"github.com/zeebo/blake3"
	"github.com/zeebo/errs"

	"storj.io/fountain/private/compress"
	"storj.io/picobuf"
)

// Error is the errs class of manifest errors.
var Error = errs.Class("manifest")

// ChecksumSize is the length of Manifest.Checksum.
const ChecksumSize = 32

// Manifest carries the parameters a decoder needs and the checksum of the
// original message.
type Manifest struct {
	StreamID uint32
	// MessageBytes is the length of the fountain coded payload.
	MessageBytes uint64
	BlockBytes   uint32
	Seed         uint64
	// Compressed is set when the payload is the zstd form of the message.
	Compressed bool
	// RawBytes is the length of the message before compression.
	RawBytes uint64
	Checksum []byte
}

// Checksum returns the blake3 digest of message.
func Checksum(message []byte) []byte {
	sum := blake3.Sum256(message)
	return sum[:]
}

// Verify reports whether message matches the checksum.
func (m *Manifest) Verify(message []byte) bool {
	return uint64(len(message)) == m.RawBytes && bytes.Equal(Checksum(message), m.Checksum)
}

// Validate checks that the manifest is internally consistent.
func (m *Manifest) Validate() error {
	switch {
	case m.MessageBytes == 0:
		return Error.New("empty payload")
	case m.BlockBytes == 0:
		return Error.New("zero block size")
	case len(m.Checksum) != ChecksumSize:
		return Error.New("checksum has %d bytes", len(m.Checksum))
	case !m.Compressed && m.RawBytes != m.MessageBytes:
		return Error.New("uncompressed payload of %d bytes describes %d raw bytes", m.MessageBytes, m.RawBytes)
	case m.Compressed && m.RawBytes > compress.MaxDecodedSize:
		return Error.New("compressed payload describes %d raw bytes, limit is %d", m.RawBytes, compress.MaxDecodedSize)
	}
	return nil
}

// Encode implements picobuf.Message.
func (m *Manifest) Encode(c *picobuf.Encoder) bool {
	if m == nil {
		return false
	}
	c.Uint32(1, &m.StreamID)
	c.Uint64(2, &m.MessageBytes)
	c.Uint32(3, &m.BlockBytes)
	c.Uint64(4, &m.Seed)
	c.Bool(5, &m.Compressed)
	c.Uint64(6, &m.RawBytes)
	c.Bytes(7, &m.Checksum)
	return true
}

// Decode implements picobuf.Message.
func (m *Manifest) Decode(c *picobuf.Decoder) {
	if m == nil {
		return
	}
	c.Loop(func(c *picobuf.Decoder) {
		c.Uint32(1, &m.StreamID)
		c.Uint64(2, &m.MessageBytes)
		c.Uint32(3, &m.BlockBytes)
		c.Uint64(4, &m.Seed)
		c.Bool(5, &m.Compressed)
		c.Uint64(6, &m.RawBytes)
		c.Bytes(7, &m.Checksum)
	})
}

// Marshal returns the wire form of the manifest.
func (m *Manifest) Marshal() ([]byte, error) {
	data, err := picobuf.Marshal(m)
	return data, Error.Wrap(err)
}

// Parse decodes and validates a manifest.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := picobuf.Unmarshal(data, &m); err != nil {
		return nil, Error.Wrap(err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Equal reports whether both manifests describe the same stream.
func (m *Manifest) Equal(o *Manifest) bool {
	return m.StreamID == o.StreamID &&
		m.MessageBytes == o.MessageBytes &&
		m.BlockBytes == o.BlockBytes &&
		m.Seed == o.Seed &&
		m.Compressed == o.Compressed &&
		m.RawBytes == o.RawBytes &&
		bytes.Equal(m.Checksum, o.Checksum)
}
