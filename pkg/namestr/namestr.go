// Package namestr decodes the 140-byte NAMESTR variable descriptors of a
// member and arranges the variables into a row layout.
package namestr

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/xpttools/xpt/pkg/card"
	"github.com/xpttools/xpt/pkg/types"
)

// RecordSize is the length of one descriptor record.
const RecordSize = 140

// DefaultCharset decodes names, labels and character cells.
var DefaultCharset encoding.Encoding = charmap.Windows1252

// DecodeText trims trailing blanks and NULs from b and decodes the rest.
func DecodeText(dec *encoding.Decoder, b []byte) string {
	b = bytes.TrimRight(b, " \x00")
	if len(b) == 0 {
		return ""
	}
	if dec == nil {
		return string(b)
	}
	out, err := dec.Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}

// Parse decodes one descriptor record. index is the zero-based record
// number, used in errors.
func Parse(dec *encoding.Decoder, rec []byte, index int, offset int64) (types.VarMeta, error) {
	if len(rec) < RecordSize {
		return types.VarMeta{}, &types.TruncatedInputError{Offset: offset, Want: RecordSize, Got: len(rec)}
	}
	u16 := func(at int) int { return int(binary.BigEndian.Uint16(rec[at:])) }

	v := types.VarMeta{
		Kind:     types.Character,
		Length:   u16(4),
		Number:   u16(6),
		Name:     DecodeText(dec, rec[8:16]),
		Label:    DecodeText(dec, rec[16:56]),
		Position: int(int32(binary.BigEndian.Uint32(rec[84:88]))),
		Format: types.Format{
			Name:     DecodeText(dec, rec[56:64]),
			Width:    u16(64),
			Decimals: u16(66),
			Justify:  u16(68),
		},
		Informat: types.Format{
			Name:     DecodeText(dec, rec[72:80]),
			Width:    u16(80),
			Decimals: u16(82),
		},
	}
	if u16(0) == 1 {
		v.Kind = types.Numeric
	}
	if v.Length < 1 {
		return v, &types.MalformedDescriptorError{
			Offset: offset,
			Index:  index,
			Reason: fmt.Sprintf("variable %q has length %d", v.Name, v.Length),
		}
	}
	return v, nil
}

// Resolution is the outcome of Resolve.
type Resolution struct {
	Variables   []types.VarMeta // declaration order
	Diagnostics []types.Diagnostic
}

// Resolve decodes every descriptor in block, the bytes between the first
// descriptor and the OBS banner. The record count is derived from the
// block length; hint, the count announced in the header, is only compared.
// base is the file offset of block.
func Resolve(block []byte, hint int, base int64, enc encoding.Encoding) (*Resolution, error) {
	if enc == nil {
		enc = DefaultCharset
	}
	dec := enc.NewDecoder()
	res := &Resolution{}

	count := len(block) / RecordSize
	blank := 0
	for count > 0 && card.IsFiller(block[(count-1)*RecordSize:count*RecordSize]) {
		count--
		blank++
	}
	if blank > 0 {
		res.Diagnostics = append(res.Diagnostics, types.Diagnostic{
			Kind:    types.DiagBlankDescriptors,
			Offset:  base + int64(count*RecordSize),
			Count:   blank,
			Message: fmt.Sprintf("dropped %d blank descriptor records", blank),
		})
	}
	if count == 0 {
		return nil, &types.NoVariablesError{Offset: base, Span: int64(len(block)), Hint: hint}
	}
	if hint > 0 && hint != count {
		res.Diagnostics = append(res.Diagnostics, types.Diagnostic{
			Kind:    types.DiagCountHintMismatch,
			Offset:  base,
			Count:   count,
			Message: fmt.Sprintf("header announces %d variables, descriptor block holds %d", hint, count),
		})
	}

	res.Variables = make([]types.VarMeta, 0, count)
	for i := 0; i < count; i++ {
		off := i * RecordSize
		v, err := Parse(dec, block[off:off+RecordSize], i, base+int64(off))
		if err != nil {
			return nil, err
		}
		res.Variables = append(res.Variables, v)
	}
	return res, nil
}
