// Package nco implements a numerically controlled oscillator used to
// translate a complex baseband signal up or down by a fixed frequency
// offset, block at a time.
package nco

import "math/cmplx"

const tau = 2 * 3.14159265358979323846

// Oscillator is a complex NCO: a phase accumulator stepped by a fixed
// per-sample frequency, in radians/sample.
type Oscillator struct {
	phase float64
	freq  float64
}

// New creates an oscillator at phase 0 for the given offset (Hz) and
// sample rate (Hz), matching nco_crcf_set_frequency(2*pi*offset/rate).
func New(offsetHz float64, sampleRate float64) *Oscillator {
	o := &Oscillator{}
	o.SetFrequency(offsetHz, sampleRate)
	return o
}

// SetFrequency reprograms the oscillator's per-sample phase step.
func (o *Oscillator) SetFrequency(offsetHz, sampleRate float64) {
	if sampleRate == 0 {
		o.freq = 0
		return
	}
	o.freq = tau * (offsetHz / sampleRate)
}

// Reset returns the oscillator to phase 0 without changing its frequency.
func (o *Oscillator) Reset() {
	o.phase = 0
}

// MixUp multiplies in by exp(+j*phase) sample by sample, advancing the
// phase accumulator, and writes the result to out. in and out may alias.
func (o *Oscillator) MixUp(out, in []complex64) {
	for i, s := range in {
		out[i] = s * complex64(cmplx.Exp(complex(0, o.phase)))
		o.step()
	}
}

// MixDown multiplies in by exp(-j*phase) sample by sample, advancing the
// phase accumulator, and writes the result to out. in and out may alias.
func (o *Oscillator) MixDown(out, in []complex64) {
	for i, s := range in {
		out[i] = s * complex64(cmplx.Exp(complex(0, -o.phase)))
		o.step()
	}
}

func (o *Oscillator) step() {
	o.phase += o.freq
	if o.phase > tau {
		o.phase -= tau
	} else if o.phase < -tau {
		o.phase += tau
	}
}
