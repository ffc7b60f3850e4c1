package hilbert

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestInterpDCGain feeds a constant complex sample through Interp
// (enough times to flush the FIR's group delay) and checks the lowpass
// settles to roughly unity DC gain, matching the pair's stated contract.
func TestInterpDCGain(t *testing.T) {
	t.Parallel()

	p := New(25)
	x := complex64(0.6 + 0.3i)

	var re, im float32
	for i := 0; i < 200; i++ {
		re, im = p.Interp(x)
	}
	assert.InDelta(t, 0.6, float64(re), 0.02)
	assert.InDelta(t, 0.3, float64(im), 0.02)
}

func TestDecimDCGain(t *testing.T) {
	t.Parallel()

	p := New(25)

	var out complex64
	for i := 0; i < 200; i++ {
		out = p.Decim(0.25, -0.75)
	}
	assert.InDelta(t, 0.25, float64(real(out)), 0.02)
	assert.InDelta(t, -0.75, float64(imag(out)), 0.02)
}

func TestNewForcesOddTapCount(t *testing.T) {
	t.Parallel()

	p := New(24)
	assert.NotZero(t, len(p.taps)%2, "tap count %d should have been forced odd", len(p.taps))
}
