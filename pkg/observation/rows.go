package observation

import (
	"golang.org/x/text/encoding"

	"github.com/xpttools/xpt/pkg/card"
	"github.com/xpttools/xpt/pkg/ibm370"
	"github.com/xpttools/xpt/pkg/namestr"
	"github.com/xpttools/xpt/pkg/types"
)

// Stride is how a block divides into rows.
type Stride struct {
	Size   int // bytes from one row start to the next
	Rows   int // complete rows in the block
	Filler int // trailing blank/NUL bytes discarded
	Short  int // trailing rows cut off by the end of input
}

// Padded reports whether rows carry padding after the declared width.
func (s Stride) Padded(width int) bool {
	return s.Size != width
}

// ResolveStride picks the row stride for b: the declared width first, then
// the width rounded up to a multiple of 8. A stride fits when it divides
// the block or leaves only filler behind. When the input ended inside a
// card, a non-filler remainder is a row cut short instead of an error.
func ResolveStride(b *Block, width int) (Stride, error) {
	if width < 1 {
		return Stride{}, &types.UnresolvableRowWidthError{Offset: b.Offset, Width: width, Padded: roundUp8(width), Total: len(b.Data)}
	}
	total := len(b.Data)
	for _, size := range candidates(width) {
		rem := total % size
		if rem == 0 || card.IsFiller(b.Data[total-rem:]) {
			return Stride{Size: size, Rows: total / size, Filler: rem}, nil
		}
	}
	if b.Partial > 0 {
		return Stride{Size: width, Rows: total / width, Short: 1}, nil
	}
	return Stride{}, &types.UnresolvableRowWidthError{
		Offset: b.Offset,
		Width:  width,
		Padded: roundUp8(width),
		Total:  total,
	}
}

// TrimBlankRows drops trailing rows made only of spaces while they fit in
// the blank padding after the last row of a card. It returns the number of
// rows dropped. A genuinely blank last row cannot be told apart from that
// padding, so callers decide whether to trim.
func (s *Stride) TrimBlankRows(data []byte) int {
	dropped := 0
	for s.Rows > 0 && s.Filler+s.Size < card.Size {
		start := (s.Rows - 1) * s.Size
		if !allSpaces(data[start : start+s.Size]) {
			break
		}
		s.Rows--
		s.Filler += s.Size
		dropped++
	}
	return dropped
}

func allSpaces(b []byte) bool {
	for _, v := range b {
		if v != ' ' {
			return false
		}
	}
	return true
}

// Decoder turns row bytes into cells.
type Decoder struct {
	arr namestr.Arrangement
	dec *encoding.Decoder
}

// NewDecoder returns a decoder for rows laid out by arr. Character cells
// are decoded with enc, or namestr.DefaultCharset when enc is nil.
func NewDecoder(arr namestr.Arrangement, enc encoding.Encoding) *Decoder {
	if enc == nil {
		enc = namestr.DefaultCharset
	}
	return &Decoder{arr: arr, dec: enc.NewDecoder()}
}

// DecodeRow decodes one row. It returns false when row is too short for
// one of the variables.
func (d *Decoder) DecodeRow(row []byte) (types.Row, bool) {
	out := make(types.Row, len(d.arr.Variables))
	for i, v := range d.arr.Variables {
		start := d.arr.Offsets[i]
		end := start + v.Length
		if end > len(row) {
			return nil, false
		}
		field := row[start:end]
		if v.IsNumeric() {
			f, m := ibm370.DecodeField(field)
			if m != ibm370.NotMissing {
				out[i] = types.MissingCell(m)
			} else {
				out[i] = types.NumberCell(f)
			}
			continue
		}
		out[i] = types.StringCell(namestr.DecodeText(d.dec, field))
	}
	return out, true
}

// DecodeBlock decodes up to limit rows of b (all rows when limit <= 0).
// It returns the rows and the number of rows skipped because they were short.
func (d *Decoder) DecodeBlock(b *Block, st Stride, limit int) ([]types.Row, int) {
	n := st.Rows
	if limit > 0 && limit < n {
		n = limit
	}
	rows := make([]types.Row, 0, n)
	short := st.Short
	for i := 0; i < n; i++ {
		start := i * st.Size
		end := start + d.arr.Width
		if end > len(b.Data) {
			short++
			continue
		}
		row, ok := d.DecodeRow(b.Data[start:end])
		if !ok {
			short++
			continue
		}
		rows = append(rows, row)
	}
	return rows, short
}
