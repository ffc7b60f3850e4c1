package ofdmflex

import "math"

// generatePreamble returns a deterministic, fixed pseudo-random sequence of
// n unit-magnitude complex samples, used as a time-domain training
// sequence both the generator and the synchronizer can reproduce without
// exchanging anything out of band. liquid-dsp's ofdmflexframe uses fixed
// PLCP short/long training sequences for the same purpose; this is a
// simplified stand-in (see DESIGN.md).
func generatePreamble(n int) []complex64 {
	out := make([]complex64, n)
	// Simple linear congruential generator, fixed seed: deterministic and
	// reproducible on both ends without any shared state beyond n.
	state := uint32(0x2545F491)
	for i := range out {
		state = state*1664525 + 1013904223
		phase := (float64(state>>8) / float64(1<<24)) * 2 * math.Pi
		out[i] = complex64(complex(math.Cos(phase), math.Sin(phase)))
	}
	return out
}

// preambleEnergy is the known autocorrelation energy of a preamble of
// length n (each sample has unit magnitude).
func preambleEnergy(n int) float64 {
	return float64(n)
}

// correlate computes the normalized matched-filter correlation between
// buf[pos:pos+len(preamble)] and preamble, in [0,1] for a perfect match
// (up to an arbitrary phase rotation, since NCO mixing and resampling in
// the pipeline only rotate/scale samples rather than reorder them).
func correlate(buf []complex64, pos int, preamble []complex64) float64 {
	if pos < 0 || pos+len(preamble) > len(buf) {
		return 0
	}
	var acc complex128
	var energy float64
	for i, p := range preamble {
		s := buf[pos+i]
		acc += complex128(s) * complex(real(p), -imag(p))
		energy += float64(real(s))*float64(real(s)) + float64(imag(s))*float64(imag(s))
	}
	mag := math.Hypot(real(acc), imag(acc))
	denom := math.Sqrt(energy * preambleEnergy(len(preamble)))
	if denom == 0 {
		return 0
	}
	return mag / denom
}
