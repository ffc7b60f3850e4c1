// Package resample implements a polyphase-style arbitrary-ratio resampler
// standing in for liquid-dsp's msresamp_crcf (the "Rate Converter" DSP
// primitive of spec.md §4.4 and §6, out of the core pipeline's scope).
package resample

import "math"

// Resampler converts a complex sample stream from one rate to another by
// a fixed ratio R = outputRate/inputRate, via windowed-sinc fractional
// interpolation. Half-kernel width is fixed at halfWidth taps, giving a
// reported group delay of halfWidth samples to flush transients, playing
// the same role as msresamp_crcf_get_delay's ceil'd delay.
type Resampler struct {
	ratio     float64
	halfWidth int
	history   []complex64 // ring buffer, oldest first
	writePos  int
	filled    int
	phase     float64
}

const defaultHalfWidth = 16

// New creates a resampler for the given ratio. stopbandAttenuationDB is
// accepted for contract parity with msresamp_crcf_create(ratio, 60) but is
// not used: the kernel is always the same Hamming-windowed sinc, whatever
// attenuation is requested (this module does not attempt bit-exact filter
// design, see DESIGN.md).
func New(ratio float64, stopbandAttenuationDB float64) *Resampler {
	if ratio <= 0 {
		ratio = 1
	}
	hw := defaultHalfWidth
	n := 2*hw + 1
	return &Resampler{
		ratio:     ratio,
		halfWidth: hw,
		history:   make([]complex64, n),
	}
}

// Delay returns the number of samples (at the resampler's internal rate)
// needed to flush the filter's transient response, analogous to
// ceilf(msresamp_crcf_get_delay(resampler)).
func (r *Resampler) Delay() int {
	return r.halfWidth
}

// Ratio returns the configured resampling ratio.
func (r *Resampler) Ratio() float64 {
	return r.ratio
}

func sincWindow(x float64, halfWidth int) float64 {
	var s float64
	if math.Abs(x) < 1e-9 {
		s = 1
	} else {
		px := math.Pi * x
		s = math.Sin(px) / px
	}
	// Hamming window over the support [-halfWidth, halfWidth]
	w := 0.54 + 0.46*math.Cos(math.Pi*x/float64(halfWidth))
	return s * w
}

func (r *Resampler) push(x complex64) {
	r.history[r.writePos] = x
	r.writePos = (r.writePos + 1) % len(r.history)
	if r.filled < len(r.history) {
		r.filled++
	}
}

// at returns the k-th most recent pushed sample, k=0 is the newest.
func (r *Resampler) at(k int) complex64 {
	idx := (r.writePos - 1 - k + len(r.history)*4) % len(r.history)
	return r.history[idx]
}

// Execute resamples in and returns the produced output block. The number
// of produced samples is approximately len(in) * ratio; the exact count
// depends on internal fractional phase carried across calls.
func (r *Resampler) Execute(in []complex64) []complex64 {
	out := make([]complex64, 0, int(float64(len(in))*r.ratio)+2)
	for _, x := range in {
		r.push(x)
		r.phase += r.ratio
		for r.phase >= 1 {
			r.phase--
			out = append(out, r.interpolate(r.phase))
		}
	}
	return out
}

// interpolate computes one output sample using a windowed-sinc kernel
// centered frac samples before the newest pushed input.
func (r *Resampler) interpolate(frac float64) complex64 {
	var acc complex128
	for k := -r.halfWidth; k <= r.halfWidth; k++ {
		w := sincWindow(float64(k)+frac, r.halfWidth)
		s := r.at(k + r.halfWidth)
		acc += complex(float64(real(s))*w, float64(imag(s))*w)
	}
	return complex64(acc)
}
