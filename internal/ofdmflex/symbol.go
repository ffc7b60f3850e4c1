package ofdmflex

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// symbolModem turns one vector of subcarrier values into a time-domain OFDM
// symbol (with cyclic prefix and edge taper) and back, via an IFFT/FFT
// pair. This is the one piece of actual OFDM signal processing this
// package performs; liquid-dsp's ofdmflexframe does the equivalent with
// its own FFT plans (spec.md §6 treats the modem as an external
// contract -- this is the concrete Go stand-in, see DESIGN.md).
type symbolModem struct {
	n      int
	cp     int
	taper  int
	fft    *fourier.CmplxFFT
	freq   []complex128
	time   []complex128
}

func newSymbolModem(subcarriers, cp, taper int) *symbolModem {
	return &symbolModem{
		n:     subcarriers,
		cp:    cp,
		taper: taper,
		fft:   fourier.NewCmplxFFT(subcarriers),
		freq:  make([]complex128, subcarriers),
		time:  make([]complex128, subcarriers),
	}
}

// symbolLen is the number of time-domain samples one OFDM symbol occupies
// on the air, including its cyclic prefix.
func (s *symbolModem) symbolLen() int {
	return s.n + s.cp
}

// modulate converts n subcarrier values into symbolLen() time-domain
// samples appended to dst.
func (s *symbolModem) modulate(dst []complex64, subcarriers []complex128) []complex64 {
	copy(s.freq, subcarriers)
	s.fft.Sequence(s.time, s.freq)
	// gonum's inverse transform is unnormalized; scale by 1/n so that
	// demodulate's forward transform returns the subcarrier values as given.
	for i := range s.time {
		s.time[i] /= complex(float64(s.n), 0)
	}
	out := make([]complex64, s.symbolLen())
	// cyclic prefix: tail of the symbol repeated at the front
	for i := 0; i < s.cp; i++ {
		out[i] = complex64(s.time[s.n-s.cp+i])
	}
	for i := 0; i < s.n; i++ {
		out[s.cp+i] = complex64(s.time[i])
	}
	applyTaper(out, s.taper)
	return append(dst, out...)
}

// demodulate reads exactly symbolLen() samples from src starting at off,
// strips the cyclic prefix and returns the recovered subcarrier values.
func (s *symbolModem) demodulate(src []complex64, off int) []complex128 {
	for i := 0; i < s.n; i++ {
		s.time[i] = complex128(src[off+s.cp+i])
	}
	out := make([]complex128, s.n)
	s.fft.Coefficients(out, s.time)
	return out
}

// applyTaper ramps the first and last taper samples of a symbol with a
// raised-cosine window to limit spectral leakage between symbols.
func applyTaper(samples []complex64, taper int) {
	if taper <= 0 || 2*taper >= len(samples) {
		return
	}
	for i := 0; i < taper; i++ {
		w := raisedCosine(i, taper)
		samples[i] = complex64(complex(float64(real(samples[i]))*w, float64(imag(samples[i]))*w))
		j := len(samples) - 1 - i
		samples[j] = complex64(complex(float64(real(samples[j]))*w, float64(imag(samples[j]))*w))
	}
}

func raisedCosine(i, taper int) float64 {
	x := (float64(i) + 0.5) / float64(taper)
	return 0.5 - 0.5*math.Cos(math.Pi*x)
}
