// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package frame

import (
	"math"

	"github.com/gogo/protobuf/proto"

	"storj.io/fountain/private/manifest"
)

const maxVarintLen = 10

// Frame is a single symbol together with the manifest of its stream.
//
// The wire layout is
//
//	varint len(manifest) | manifest | varint symbol id | varint len(payload) | payload
type Frame struct {
	Manifest *manifest.Manifest
	SymbolID uint32
	Payload  []byte
}

// Marshal returns the wire form of the frame.
func (f *Frame) Marshal() ([]byte, error) {
	if f.Manifest == nil {
		return nil, Error.New("missing manifest")
	}
	header, err := f.Manifest.Marshal()
	if err != nil {
		return nil, Error.Wrap(err)
	}

	out := make([]byte, 0, len(header)+len(f.Payload)+3*maxVarintLen)
	out = append(out, proto.EncodeVarint(uint64(len(header)))...)
	out = append(out, header...)
	out = append(out, proto.EncodeVarint(uint64(f.SymbolID))...)
	out = append(out, proto.EncodeVarint(uint64(len(f.Payload)))...)
	out = append(out, f.Payload...)
	return out, nil
}

// Parse decodes a frame. The payload aliases data.
func Parse(data []byte) (*Frame, error) {
	header, rest, err := readDelimited(data)
	if err != nil {
		return nil, err
	}
	m, err := manifest.Parse(header)
	if err != nil {
		return nil, Error.Wrap(err)
	}

	id, n := proto.DecodeVarint(rest)
	if n == 0 {
		return nil, Error.New("truncated symbol id")
	}
	if id > math.MaxUint32 {
		return nil, Error.New("symbol id %d out of range", id)
	}

	payload, rest, err := readDelimited(rest[n:])
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, Error.New("%d trailing bytes", len(rest))
	}

	return &Frame{Manifest: m, SymbolID: uint32(id), Payload: payload}, nil
}

// AppendDelimited appends data prefixed by its varint length.
func AppendDelimited(buf, data []byte) []byte {
	buf = append(buf, proto.EncodeVarint(uint64(len(data)))...)
	return append(buf, data...)
}

// SplitDelimited splits a concatenation of AppendDelimited records.
func SplitDelimited(buf []byte) ([][]byte, error) {
	var records [][]byte
	for len(buf) > 0 {
		record, rest, err := readDelimited(buf)
		if err != nil {
			return records, err
		}
		records = append(records, record)
		buf = rest
	}
	return records, nil
}

func readDelimited(buf []byte) (record, rest []byte, err error) {
	size, n := proto.DecodeVarint(buf)
	if n == 0 {
		return nil, nil, Error.New("truncated length")
	}
	buf = buf[n:]
	if size > uint64(len(buf)) {
		return nil, nil, Error.New("record of %d bytes, %d available", size, len(buf))
	}
	return buf[:size], buf[size:], nil
}
