package resample

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatioAndDelay(t *testing.T) {
	t.Parallel()

	r := New(2.5, 60)
	assert.Equal(t, 2.5, r.Ratio())
	assert.Equal(t, defaultHalfWidth, r.Delay())
}

func TestNewRejectsNonPositiveRatio(t *testing.T) {
	t.Parallel()

	r := New(0, 60)
	assert.Equal(t, 1.0, r.Ratio(), "non-positive ratio should fall back to 1")
}

func TestUpsampleProducesMoreSamples(t *testing.T) {
	t.Parallel()

	r := New(2.0, 60)
	in := make([]complex64, 1000)
	for i := range in {
		in[i] = complex(float32(math.Sin(float64(i)*0.05)), 0)
	}
	out := r.Execute(in)
	assert.InDelta(t, len(in)*2, len(out), 2)
}

func TestDownsampleProducesFewerSamples(t *testing.T) {
	t.Parallel()

	r := New(0.5, 60)
	in := make([]complex64, 1000)
	for i := range in {
		in[i] = complex(float32(math.Sin(float64(i)*0.05)), 0)
	}
	out := r.Execute(in)
	assert.InDelta(t, len(in)/2, len(out), 2)
}

func TestUnityRatioPassesThroughApproximately(t *testing.T) {
	t.Parallel()

	r := New(1.0, 60)
	in := make([]complex64, 2000)
	for i := range in {
		in[i] = complex(float32(math.Sin(float64(i)*0.02)), float32(math.Cos(float64(i)*0.02)))
	}
	out := r.Execute(in)
	assert.Equal(t, len(in), len(out))

	// At ratio 1 each output sample is centered exactly on the input sample
	// Delay() steps earlier (frac==0 every step), so compare against that
	// delayed input and skip only the edges where the ring buffer hasn't
	// filled with real history yet.
	d := r.Delay()
	margin := d + 5
	for i := margin; i < len(in)-margin; i++ {
		diff := complex128(out[i]) - complex128(in[i-d])
		assert.LessOrEqualf(t, math.Hypot(real(diff), imag(diff)), 0.05, "sample %d: got %v want ~%v", i, out[i], in[i-d])
	}
}
