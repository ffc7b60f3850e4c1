// Package hilbert implements the interpolator/decimator pair used to bridge
// a complex baseband sample stream and a real-valued stereo audio stream,
// standing in for liquid-dsp's firhilbf in the original ofdm-transfer (see
// DESIGN.md: this is a DSP primitive the spec treats as an external
// contract, not part of the core pipeline).
package hilbert

import "math"

// Pair converts each complex sample to a (realOut, imagOut) pair on
// transmit, and reconstructs one complex sample from a (realIn, imagIn)
// pair on receive, matching the firhilbf_interp_execute/firhilbf_decim_execute
// contract. Each channel is bandlimited by a short symmetric FIR lowpass
// (Hamming-windowed sinc) so the pair behaves as an interpolation/decimation
// filter rather than a bare format conversion.
type Pair struct {
	taps   []float64
	delayI []float64
	delayQ []float64
	pos    int
}

// New builds a Hilbert pair with a windowed-sinc lowpass of the given
// (odd) tap count. 25 taps, 60dB stopband matches the original's
// firhilbf_create(25, 60) call.
func New(numTaps int) *Pair {
	if numTaps%2 == 0 {
		numTaps++
	}
	taps := make([]float64, numTaps)
	m := numTaps / 2
	cutoff := 0.45 // relative to Nyquist, leaves transition band for the window
	sum := 0.0
	for n := -m; n <= m; n++ {
		var h float64
		if n == 0 {
			h = 2 * cutoff
		} else {
			h = math.Sin(2*math.Pi*cutoff*float64(n)) / (math.Pi * float64(n))
		}
		// Hamming window
		w := 0.54 - 0.46*math.Cos(2*math.Pi*float64(n+m)/float64(numTaps-1))
		h *= w
		taps[n+m] = h
		sum += h
	}
	for i := range taps {
		taps[i] /= sum
	}
	return &Pair{
		taps:   taps,
		delayI: make([]float64, numTaps),
		delayQ: make([]float64, numTaps),
	}
}

func (p *Pair) pushAndFilter(delay []float64, x float64) float64 {
	n := len(delay)
	copy(delay[1:], delay[:n-1])
	delay[0] = x
	var acc float64
	for i, t := range p.taps {
		acc += t * delay[i]
	}
	return acc
}

// Interp converts one complex baseband sample into the (realOut, imagOut)
// pair written to the audio stream.
func (p *Pair) Interp(x complex64) (realOut, imagOut float32) {
	i := p.pushAndFilter(p.delayI, float64(real(x)))
	q := p.pushAndFilter(p.delayQ, float64(imag(x)))
	return float32(i), float32(q)
}

// Decim reconstructs one complex baseband sample from an audio (realIn,
// imagIn) pair.
func (p *Pair) Decim(realIn, imagIn float32) complex64 {
	i := p.pushAndFilter(p.delayI, float64(realIn))
	q := p.pushAndFilter(p.delayQ, float64(imagIn))
	return complex(float32(i), float32(q))
}
