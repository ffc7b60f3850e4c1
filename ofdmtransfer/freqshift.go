package ofdmtransfer

import "github.com/glv2/ofdm-transfer/internal/nco"

// freqShifter wires the NCO-based Frequency Shifter (§4.3) into the
// pipeline: a no-op when frequency_offset is 0, otherwise mixes a block
// of samples up (transmit) or down (receive) in place.
type freqShifter struct {
	osc    *nco.Oscillator
	active bool
}

func newFreqShifter(offsetHz float64, sampleRate float64) *freqShifter {
	if offsetHz == 0 {
		return &freqShifter{active: false}
	}
	return &freqShifter{osc: nco.New(offsetHz, sampleRate), active: true}
}

func (f *freqShifter) mixUp(buf []complex64) {
	if !f.active {
		return
	}
	f.osc.MixUp(buf, buf)
}

func (f *freqShifter) mixDown(buf []complex64) {
	if !f.active {
		return
	}
	f.osc.MixDown(buf, buf)
}
