package cbor

import (
	"math"
	"testing"

	"github.com/x448/float16"
)

func TestHalfBitsAgainstFloat16Oracle(t *testing.T) {
	values := []float32{
		0, 1, -1, 0.5, 65504, -65504, 100000, -100000,
		1.0 / 3.0, math.SmallestNonzeroFloat32, 3.14159,
	}
	for _, v := range values {
		got := float32ToHalfBits(v)
		want := uint16(float16.Fromfloat32(v))
		if got != want {
			t.Errorf("float32ToHalfBits(%v) = %#04x, want %#04x (x448/float16 oracle)", v, got, want)
		}
	}
}

func TestHalfBitsInfAndNaN(t *testing.T) {
	if got := float32ToHalfBits(float32(math.Inf(1))); got != 0x7C00 {
		t.Errorf("+Inf -> %#04x, want 0x7C00", got)
	}
	if got := float32ToHalfBits(float32(math.Inf(-1))); got != 0xFC00 {
		t.Errorf("-Inf -> %#04x, want 0xFC00", got)
	}
	nanBits := float32ToHalfBits(float32(math.NaN()))
	if nanBits&0x7C00 != 0x7C00 || nanBits&0x03FF == 0 {
		t.Errorf("NaN -> %#04x, want exponent-all-ones with nonzero mantissa", nanBits)
	}
}

func TestHalfRoundTrip(t *testing.T) {
	for _, v := range []float32{0, 1, -2, 0.25, 65504} {
		bits := float32ToHalfBits(v)
		back := halfBitsToFloat32(bits)
		if back != v {
			t.Errorf("round trip %v -> %#04x -> %v", v, bits, back)
		}
	}
}
