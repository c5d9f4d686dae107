package ibm370_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xpttools/xpt/pkg/ibm370"
	"github.com/xpttools/xpt/pkg/xpttest"
)

func TestDecode_RoundTrip(t *testing.T) {
	values := []float64{1, -1, 0.5, 3.14159, -2.5, 1e-10, 123456789.125, 1e30, -7.25e-5, 42}

	for _, want := range values {
		got, m := ibm370.Decode(xpttest.EncodeIBM(want))

		assert.Equal(t, ibm370.NotMissing, m)
		assert.InEpsilon(t, want, got, 1e-9, "value %v", want)
	}
}
