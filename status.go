// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package fountain

import "fmt"

// Status is the numeric result of a fountain operation. The values are
// stable and shared with compatible peers.
type Status int

// Status codes.
const (
	StatusSuccess             Status = 0
	StatusNeedMore            Status = 1
	StatusInvalidInput        Status = 2
	StatusBadDenseSeed        Status = 3
	StatusBadPeelSeed         Status = 4
	StatusSmallN              Status = 5
	StatusLargeN              Status = 6
	StatusExtraInsufficient   Status = 7
	StatusError               Status = 8
	StatusOOM                 Status = 9
	StatusUnsupportedPlatform Status = 10
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "Success"
	case StatusNeedMore:
		return "NeedMore"
	case StatusInvalidInput:
		return "InvalidInput"
	case StatusBadDenseSeed:
		return "BadDenseSeed"
	case StatusBadPeelSeed:
		return "BadPeelSeed"
	case StatusSmallN:
		return "SmallN"
	case StatusLargeN:
		return "LargeN"
	case StatusExtraInsufficient:
		return "ExtraInsufficient"
	case StatusError:
		return "Error"
	case StatusOOM:
		return "OOM"
	case StatusUnsupportedPlatform:
		return "UnsupportedPlatform"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// StatusOf maps an error returned by this package to its status code.
// A nil error is StatusSuccess; unknown errors are StatusError.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusSuccess
	case ErrNeedMore.Has(err):
		return StatusNeedMore
	case ErrInvalidInput.Has(err):
		return StatusInvalidInput
	case ErrBadDenseSeed.Has(err):
		return StatusBadDenseSeed
	case ErrBadPeelSeed.Has(err):
		return StatusBadPeelSeed
	case ErrSmallN.Has(err):
		return StatusSmallN
	case ErrLargeN.Has(err):
		return StatusLargeN
	case ErrExtraInsufficient.Has(err):
		return StatusExtraInsufficient
	case ErrOOM.Has(err):
		return StatusOOM
	case ErrUnsupportedPlatform.Has(err):
		return StatusUnsupportedPlatform
	default:
		return StatusError
	}
}
