// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package frame

import (
	"errors"

	"github.com/gogo/protobuf/proto"

	"storj.io/common/sync2/race2"
	"storj.io/infectious"
)

// Protector adds Reed-Solomon parity to frames so that byte errors in up to
// half of the parity shares worth of data can be corrected.
type Protector struct {
	fc *infectious.FEC
}

// NewProtector splits frames into data shares and adds parity shares.
func NewProtector(data, parity int) (*Protector, error) {
	if data < 1 || parity < 1 {
		return nil, Error.New("invalid share counts %d+%d", data, parity)
	}
	fc, err := infectious.NewFEC(data, data+parity)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return &Protector{fc: fc}, nil
}

// RequiredCount is the number of data shares.
func (p *Protector) RequiredCount() int { return p.fc.Required() }

// TotalCount is the number of shares in a protected frame.
func (p *Protector) TotalCount() int { return p.fc.Total() }

// ProtectedSize returns the length of a protected frame of n bytes.
func (p *Protector) ProtectedSize(n int) int {
	return p.shareSize(n) * p.fc.Total()
}

func (p *Protector) shareSize(n int) int {
	n += len(proto.EncodeVarint(uint64(n)))
	k := p.fc.Required()
	return (n + k - 1) / k
}

// Protect returns frame followed by its parity, as equally sized shares.
func (p *Protector) Protect(frame []byte) ([]byte, error) {
	shareSize := p.shareSize(len(frame))
	input := make([]byte, shareSize*p.fc.Required())
	copy(input[copy(input, proto.EncodeVarint(uint64(len(frame)))):], frame)

	out := make([]byte, shareSize*p.fc.Total())
	race2.WriteSlice(out)
	err := p.fc.Encode(input, func(s infectious.Share) {
		copy(out[s.Number*shareSize:], s.Data)
	})
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return out, nil
}

// Unprotect corrects and strips the parity of a protected frame.
func (p *Protector) Unprotect(data []byte) ([]byte, error) {
	total := p.fc.Total()
	if len(data) == 0 || len(data)%total != 0 {
		return nil, Error.New("protected frame of %d bytes is not %d shares", len(data), total)
	}
	race2.ReadSlice(data)

	shareSize := len(data) / total
	shares := make([]infectious.Share, total)
	for i := range shares {
		shares[i] = infectious.Share{
			Number: i,
			Data:   append([]byte(nil), data[i*shareSize:(i+1)*shareSize]...),
		}
	}

	out, err := p.fc.Decode(nil, shares)
	if err != nil {
		mon.Event("frame_uncorrectable")
		if errors.Is(err, infectious.NotEnoughShares) || errors.Is(err, infectious.TooManyErrors) {
			return nil, ErrCorrupt.Wrap(err)
		}
		return nil, Error.Wrap(err)
	}

	frame, _, err := readDelimited(out)
	if err != nil {
		return nil, ErrCorrupt.Wrap(err)
	}
	return frame, nil
}
