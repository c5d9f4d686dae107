// Package ibm370 decodes IBM System/370 hexadecimal floating point numbers
// as stored in SAS transport files, including the SAS missing value codes.
//
// A double is 8 bytes, big-endian: bit 7 of byte 0 is the sign, bits 0-6 of
// byte 0 are a base-16 exponent biased by 64, and bytes 1-7 are a 56-bit
// fraction with no implicit leading digit.
package ibm370

import "math"

// Size is the width of an IBM/370 double in bytes.
const Size = 8

// Missing identifies a SAS missing value. The zero value means "not missing".
type Missing byte

const (
	// NotMissing marks an ordinary number.
	NotMissing Missing = 0
	// Dot is the generic missing value ".".
	Dot Missing = '.'
	// Underscore is the special missing value "._", treated as generic.
	Underscore Missing = '_'
)

// IsGeneric reports whether m is "." or "._".
func (m Missing) IsGeneric() bool {
	return m == Dot || m == Underscore
}

// IsLetter reports whether m is one of the named missing values .A through .Z.
func (m Missing) IsLetter() bool {
	return m >= 'A' && m <= 'Z'
}

// String renders m the way SAS prints it: ".", "._", ".A" ... ".Z", or "".
func (m Missing) String() string {
	switch {
	case m == NotMissing:
		return ""
	case m == Dot:
		return "."
	default:
		return "." + string(rune(m))
	}
}

// Decode converts one IBM/370 double. When the bytes encode a SAS missing
// value the float is 0 and the returned Missing is non-zero.
func Decode(b [Size]byte) (float64, Missing) {
	tailZero := b[1]|b[2]|b[3]|b[4]|b[5]|b[6]|b[7] == 0

	if tailZero {
		switch {
		case b[0] == '.':
			return 0, Dot
		case b[0] == '_':
			return 0, Underscore
		case b[0] >= 'A' && b[0] <= 'Z':
			return 0, Missing(b[0])
		case b[0] == 0:
			return 0, NotMissing
		}
	}

	negative := b[0]&0x80 != 0
	exponent := int(b[0]&0x7f) - 64

	var fraction uint64
	for _, v := range b[1:] {
		fraction = fraction<<8 | uint64(v)
	}

	// fraction holds 14 hex digits d1..d14; sum(dk/16^k) == fraction/2^56.
	value := math.Ldexp(float64(fraction), 4*exponent-56)
	if negative {
		value = -value
	}
	return value, NotMissing
}

// DecodeField decodes a numeric field of any stored width. A field
// narrower than 8 bytes is right-aligned in the double with zero bytes on
// the left; a wider field is cut to its first 8 bytes.
func DecodeField(field []byte) (float64, Missing) {
	var b [Size]byte
	if len(field) < Size {
		copy(b[Size-len(field):], field)
	} else {
		copy(b[:], field[:Size])
	}
	return Decode(b)
}
