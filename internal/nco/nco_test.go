package nco

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMixUpMixDownRoundTrip(t *testing.T) {
	t.Parallel()

	const sampleRate = 48000.0
	const offset = 1000.0

	in := make([]complex64, 64)
	for i := range in {
		in[i] = complex(float32(math.Cos(float64(i)*0.1)), float32(math.Sin(float64(i)*0.05)))
	}

	up := make([]complex64, len(in))
	New(offset, sampleRate).MixUp(up, in)

	down := make([]complex64, len(up))
	New(offset, sampleRate).MixDown(down, up)

	for i := range in {
		diff := complex128(down[i]) - complex128(in[i])
		assert.LessOrEqualf(t, math.Hypot(real(diff), imag(diff)), 1e-4, "sample %d: got %v, want %v", i, down[i], in[i])
	}
}

func TestZeroOffsetIsIdentity(t *testing.T) {
	t.Parallel()

	o := New(0, 48000)
	in := []complex64{1 + 2i, -3 + 0.5i}
	out := make([]complex64, len(in))
	o.MixUp(out, in)
	for i := range in {
		diff := complex128(out[i]) - complex128(in[i])
		assert.LessOrEqualf(t, math.Hypot(real(diff), imag(diff)), 1e-6, "sample %d: got %v, want %v", i, out[i], in[i])
	}
}

func TestSetFrequencyZeroSampleRate(t *testing.T) {
	t.Parallel()

	o := New(1000, 0)
	in := []complex64{1 + 0i}
	out := make([]complex64, 1)
	o.MixUp(out, in)
	assert.Equal(t, in[0], out[0], "zero sample rate should disable mixing")
}
