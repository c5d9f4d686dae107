package ibm370

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Zero(t *testing.T) {
	v, m := Decode([Size]byte{})

	assert.Equal(t, 0.0, v)
	assert.Equal(t, NotMissing, m)
}

func TestDecode_KnownValues(t *testing.T) {
	tests := []struct {
		name  string
		bytes [Size]byte
		want  float64
	}{
		{"one", [Size]byte{0x41, 0x10}, 1.0},
		{"minus two and a half", [Size]byte{0xC1, 0x28}, -2.5},
		{"one hundred", [Size]byte{0x42, 0x64}, 100.0},
		{"one sixteenth", [Size]byte{0x40, 0x10}, 0.0625},
		{"tenth", [Size]byte{0x40, 0x19, 0x99, 0x99, 0x99, 0x99, 0x99, 0x9A}, 0.1},
		{"pi", [Size]byte{0x41, 0x32, 0x43, 0xF6, 0xA8, 0x88, 0x5A, 0x30}, math.Pi},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, m := Decode(tt.bytes)

			require.Equal(t, NotMissing, m)
			assert.InEpsilon(t, tt.want, v, 1e-9)
		})
	}
}

func TestDecode_GenericMissing(t *testing.T) {
	for _, b := range []byte{'.', '_'} {
		v, m := Decode([Size]byte{b})

		assert.Equal(t, 0.0, v)
		assert.True(t, m.IsGeneric(), "byte %q", b)
		assert.False(t, m.IsLetter())
	}
}

func TestDecode_LetterMissing(t *testing.T) {
	for b := byte('A'); b <= 'Z'; b++ {
		_, m := Decode([Size]byte{b})

		require.Equal(t, Missing(b), m)
		assert.True(t, m.IsLetter())
		assert.Equal(t, "."+string(rune(b)), m.String())
	}
}

func TestDecode_MissingNeedsZeroTail(t *testing.T) {
	// 'A' with a non-zero fraction is an ordinary (tiny) number.
	v, m := Decode([Size]byte{'A', 0x10})

	assert.Equal(t, NotMissing, m)
	assert.InEpsilon(t, 1.0, v, 1e-9)
}

func TestDecodeField_ShortFieldRightAligned(t *testing.T) {
	// 41 10 00 lands in bytes 5-7: exponent byte 0, fraction 0x411000.
	v, m := DecodeField([]byte{0x41, 0x10, 0x00})

	assert.Equal(t, NotMissing, m)
	assert.Equal(t, math.Ldexp(float64(0x411000), -64*4-56), v)
	assert.NotEqual(t, 1.0, v)
}

func TestDecodeField_ShortFieldMatchesFullDouble(t *testing.T) {
	full := [Size]byte{0, 0, 0, 0, 0, 0x42, 0x64, 0x00}
	want, _ := Decode(full)

	got, m := DecodeField(full[5:])

	assert.Equal(t, NotMissing, m)
	assert.Equal(t, want, got)
}

func TestDecodeField_ShortMissingMarkerIsNotLeading(t *testing.T) {
	// Right alignment moves the marker byte off byte 0.
	_, m := DecodeField([]byte{'.', 0, 0})

	assert.Equal(t, NotMissing, m)
}

func TestDecodeField_WideAndEmpty(t *testing.T) {
	v, m := DecodeField([]byte{0x41, 0x10, 0, 0, 0, 0, 0, 0, 0xFF, 0xFF})
	assert.Equal(t, NotMissing, m)
	assert.Equal(t, 1.0, v)

	v, m = DecodeField(nil)
	assert.Equal(t, NotMissing, m)
	assert.Equal(t, 0.0, v)
}

func TestMissing_String(t *testing.T) {
	assert.Equal(t, "", NotMissing.String())
	assert.Equal(t, ".", Dot.String())
	assert.Equal(t, "._", Underscore.String())
	assert.Equal(t, ".Z", Missing('Z').String())
}
