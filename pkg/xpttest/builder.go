// Package xpttest builds synthetic SAS transport files for tests.
//
// The builder writes either the TS-140 layout produced by SAS itself
// (single-card NAMESTR and OBS banners, DSCRPTR banner directly after the
// MEMBER banner) or the two-card layout where every banner is followed by
// its own header data card. Knobs on Member inject the deviations the
// decoder has to tolerate.
package xpttest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/xpttools/xpt/pkg/ibm370"
)

// CardSize is the transport record size.
const CardSize = 80

// Dialect selects the header layout.
type Dialect int

const (
	// TS140 is the layout SAS writes: NAMESTR and OBS are single banner cards.
	TS140 Dialect = iota
	// TwoCard follows every NAMESTR and OBS banner with a header data card.
	TwoCard
)

// Stamp is the datetime written into header data cards.
const Stamp = "14MAR24:10:30:00"

// Var describes one variable.
type Var struct {
	Name     string
	Label    string
	Numeric  bool
	Length   int // defaults to 8 for numerics
	Position int // declared position; -1 computes the sequential offset
	Format   string
	FormatW  int
	FormatD  int
}

// Member describes one dataset and the deviations to inject into it.
type Member struct {
	Name  string
	Label string
	Vars  []Var
	Rows  [][]any // float64, int, nil (generic missing), ibm370.Missing, string

	CountHint      int  // value written into the NAMESTR count field; 0 writes the true count
	SkipDescriptor bool // omit the DSCRPTR section
	FillerCards    int  // all-zero cards inserted before the descriptors
	PadRowsTo8     bool // pad every row to a multiple of 8 bytes
	Trailer        []byte
	PadByte        byte // card padding after the rows; defaults to ' '
}

// File describes a whole transport file.
type File struct {
	Library bool
	Dialect Dialect
	Members []Member
}

// Bytes renders f.
func (f File) Bytes() []byte {
	var buf bytes.Buffer
	if f.Library {
		buf.Write(Banner("LIBRARY", ""))
		buf.Write(pad(fmt.Sprintf("SAS     SAS     SASLIB  %-8s%-8s%24s%s", "9.4", "X64_10PR", "", Stamp), ' '))
		buf.Write(pad(Stamp, ' '))
	}
	for _, m := range f.Members {
		f.writeMember(&buf, m)
	}
	return buf.Bytes()
}

func (f File) writeMember(buf *bytes.Buffer, m Member) {
	header1 := pad(fmt.Sprintf("SAS     %-8sSASDATA %-8s%-8s%24s%s", m.Name, "9.4", "X64_10PR", "", Stamp), ' ')
	header2 := pad(fmt.Sprintf("%s%16s%-40s%-8s", Stamp, "", m.Label, "DATA"), ' ')

	buf.Write(Banner("MEMBER", "000000000000000001600000000140"))
	if f.Dialect == TwoCard {
		buf.Write(pad("MEMBER HEADER DATA", ' '))
		buf.Write(header1)
		buf.Write(header2)
		if !m.SkipDescriptor {
			buf.Write(Banner("DSCRPTR", ""))
			buf.Write(pad("DSCRPTR HEADER DATA", ' '))
		}
	} else {
		if !m.SkipDescriptor {
			buf.Write(Banner("DSCRPTR", ""))
		}
		buf.Write(header1)
		buf.Write(header2)
	}

	count := len(m.Vars)
	if m.CountHint != 0 {
		count = m.CountHint
	}
	if f.Dialect == TwoCard {
		buf.Write(Banner("NAMESTR", ""))
		data := []byte(strings.Repeat(" ", CardSize))
		copy(data[54:58], fmt.Sprintf("%04d", count))
		buf.Write(data)
	} else {
		buf.Write(Banner("NAMESTR", fmt.Sprintf("000000%04d00000000000000000000", count)))
	}
	for i := 0; i < m.FillerCards; i++ {
		buf.Write(make([]byte, CardSize))
	}

	var descriptors []byte
	offset := 0
	for i, v := range m.Vars {
		pos := v.Position
		if pos < 0 {
			pos = offset
		}
		descriptors = append(descriptors, Descriptor(v, i+1, pos)...)
		offset += varLength(v)
	}
	buf.Write(padBytes(descriptors, ' '))

	buf.Write(Banner("OBS", ""))
	if f.Dialect == TwoCard {
		buf.Write(pad("OBS HEADER DATA", ' '))
	}

	var rows []byte
	for _, r := range m.Rows {
		row := EncodeRow(m.Vars, r)
		if m.PadRowsTo8 {
			for len(row)%8 != 0 {
				row = append(row, ' ')
			}
		}
		rows = append(rows, row...)
	}
	rows = append(rows, m.Trailer...)
	padByte := m.PadByte
	if padByte == 0 {
		padByte = ' '
	}
	buf.Write(padBytes(rows, padByte))
}

// Banner renders a banner card for section, e.g. "MEMBER" or "OBS".
// tail is the 30 character numeric field after the exclamation marks.
func Banner(section, tail string) []byte {
	if tail == "" {
		tail = strings.Repeat("0", 30)
	}
	return pad(fmt.Sprintf("HEADER RECORD*******%-8sHEADER RECORD!!!!!!!%s", section, tail), ' ')
}

// Descriptor renders one 140-byte NAMESTR record.
func Descriptor(v Var, number, position int) []byte {
	b := make([]byte, 140)
	typ := uint16(2)
	if v.Numeric {
		typ = 1
	}
	binary.BigEndian.PutUint16(b[0:2], typ)
	binary.BigEndian.PutUint16(b[4:6], uint16(varLength(v)))
	binary.BigEndian.PutUint16(b[6:8], uint16(number))
	copy(b[8:16], fmt.Sprintf("%-8s", v.Name))
	copy(b[16:56], fmt.Sprintf("%-40s", v.Label))
	copy(b[56:64], fmt.Sprintf("%-8s", v.Format))
	binary.BigEndian.PutUint16(b[64:66], uint16(v.FormatW))
	binary.BigEndian.PutUint16(b[66:68], uint16(v.FormatD))
	copy(b[72:80], fmt.Sprintf("%-8s", ""))
	binary.BigEndian.PutUint32(b[84:88], uint32(position))
	return b
}

// EncodeRow renders one observation in declaration order.
func EncodeRow(vars []Var, values []any) []byte {
	var row []byte
	for i, v := range vars {
		n := varLength(v)
		field := make([]byte, n)
		if v.Numeric {
			var enc [8]byte
			switch x := values[i].(type) {
			case nil:
				enc = MissingIBM(ibm370.Dot)
			case ibm370.Missing:
				enc = MissingIBM(x)
			case int:
				enc = EncodeIBM(float64(x))
			case float64:
				enc = EncodeIBM(x)
			default:
				panic(fmt.Sprintf("xpttest: unsupported numeric value %T", x))
			}
			if n < len(enc) {
				copy(field, enc[len(enc)-n:])
			} else {
				copy(field, enc[:])
			}
		} else {
			s, _ := values[i].(string)
			copy(field, fmt.Sprintf("%-*s", n, s))
		}
		row = append(row, field...)
	}
	return row
}

// EncodeIBM encodes f as an IBM/370 double.
func EncodeIBM(f float64) [8]byte {
	var b [8]byte
	if f == 0 {
		return b
	}
	var sign byte
	if f < 0 {
		sign = 0x80
		f = -f
	}
	m, k := math.Frexp(f) // f = m * 2^k, 0.5 <= m < 1
	e := int(math.Ceil(float64(k) / 4))
	fraction := uint64(math.Ldexp(math.Ldexp(m, k-4*e), 56))
	b[0] = sign | byte(e+64)
	for i := 7; i >= 1; i-- {
		b[i] = byte(fraction)
		fraction >>= 8
	}
	return b
}

// MissingIBM encodes the SAS missing value m.
func MissingIBM(m ibm370.Missing) [8]byte {
	return [8]byte{byte(m)}
}

func varLength(v Var) int {
	if v.Length > 0 {
		return v.Length
	}
	if v.Numeric {
		return 8
	}
	return 1
}

func pad(s string, fill byte) []byte {
	return padBytes([]byte(s), fill)
}

func padBytes(b []byte, fill byte) []byte {
	out := append([]byte(nil), b...)
	for len(out)%CardSize != 0 {
		out = append(out, fill)
	}
	return out
}
