// Package card reads a transport file as a sequence of fixed 80-byte records.
package card

import (
	"bufio"
	"errors"
	"io"

	"github.com/xpttools/xpt/pkg/types"
)

// Size is the length of one card.
const Size = 80

// Card is one 80-byte record.
type Card [Size]byte

// IsZero reports whether every byte of c is 0x00.
func (c *Card) IsZero() bool {
	for _, b := range c {
		if b != 0 {
			return false
		}
	}
	return true
}

// IsFiller reports whether c holds only blanks and NULs.
func (c *Card) IsFiller() bool {
	return IsFiller(c[:])
}

// IsFiller reports whether b holds only 0x20 and 0x00 bytes.
func IsFiller(b []byte) bool {
	for _, v := range b {
		if v != ' ' && v != 0 {
			return false
		}
	}
	return true
}

// ErrPushbackFull is returned by Unread when a card is already pushed back.
var ErrPushbackFull = errors.New("card stream: pushback slot already in use")

// Stream yields cards from an underlying reader with one card of pushback.
type Stream struct {
	r       *bufio.Reader
	offset  int64 // bytes consumed from r
	pending *Card
	tail    []byte
	done    bool
}

// NewStream wraps r.
func NewStream(r io.Reader) *Stream {
	return &Stream{r: bufio.NewReaderSize(r, 64*Size)}
}

// Next returns the next card. It returns io.EOF at a clean card boundary and
// a *types.TruncatedInputError when the input ends inside a card; the
// partial bytes are then available from Tail.
func (s *Stream) Next() (Card, error) {
	if s.pending != nil {
		c := *s.pending
		s.pending = nil
		return c, nil
	}
	if s.done {
		return Card{}, io.EOF
	}

	var c Card
	n, err := io.ReadFull(s.r, c[:])
	start := s.offset
	s.offset += int64(n)
	switch {
	case err == nil:
		return c, nil
	case errors.Is(err, io.EOF):
		s.done = true
		return Card{}, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		s.done = true
		s.tail = append([]byte(nil), c[:n]...)
		return Card{}, &types.TruncatedInputError{Offset: start, Want: Size, Got: n}
	default:
		return Card{}, err
	}
}

// Peek returns the next card without consuming it.
func (s *Stream) Peek() (Card, error) {
	c, err := s.Next()
	if err != nil {
		return c, err
	}
	s.pending = &c
	return c, nil
}

// Unread pushes c back so the next call to Next returns it.
func (s *Stream) Unread(c Card) error {
	if s.pending != nil {
		return ErrPushbackFull
	}
	s.pending = &c
	return nil
}

// Offset returns the byte offset of the card the next Next call returns.
func (s *Stream) Offset() int64 {
	if s.pending != nil {
		return s.offset - Size
	}
	return s.offset
}

// Tail returns the bytes of a trailing partial card, if the input ended inside one.
func (s *Stream) Tail() []byte {
	return s.tail
}
