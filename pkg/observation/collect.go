// Package observation collects the OBS block of a member and slices it into
// typed rows.
package observation

import (
	"errors"
	"io"

	"github.com/xpttools/xpt/pkg/card"
	"github.com/xpttools/xpt/pkg/header"
	"github.com/xpttools/xpt/pkg/types"
)

// Block is the raw observation data of one member.
type Block struct {
	Data    []byte
	Offset  int64 // file offset of Data[0]
	Partial int   // bytes at the end of Data that came from a trailing partial card
}

// Collect reads cards until the end of the stream or the first banner card
// that sits on a row boundary, which is pushed back for the next member.
// A banner-looking card in the middle of a row is kept as row data.
func Collect(s *card.Stream, width int) (*Block, error) {
	b := &Block{Offset: s.Offset()}
	for {
		c, err := s.Next()
		switch {
		case errors.Is(err, io.EOF):
			return b, nil
		case errors.Is(err, types.ErrTruncatedInput):
			tail := s.Tail()
			b.Data = append(b.Data, tail...)
			b.Partial = len(tail)
			return b, nil
		case err != nil:
			return nil, err
		}

		if header.IsBanner(&c) && atRowBoundary(b.Data, width) {
			if err := s.Unread(c); err != nil {
				return nil, err
			}
			return b, nil
		}
		b.Data = append(b.Data, c[:]...)
	}
}

// atRowBoundary reports whether data ends on a row boundary for either
// candidate stride, ignoring trailing filler.
func atRowBoundary(data []byte, width int) bool {
	for _, stride := range candidates(width) {
		rem := len(data) % stride
		if rem == 0 || card.IsFiller(data[len(data)-rem:]) {
			return true
		}
	}
	return false
}

func candidates(width int) []int {
	padded := roundUp8(width)
	if padded == width {
		return []int{width}
	}
	return []int{width, padded}
}

func roundUp8(n int) int {
	return (n + 7) &^ 7
}
