package ofdmflex

import (
	"fmt"
	"math"
)

// ModScheme names the subcarrier modulation, matching spec.md's
// {BPSK, QPSK, 8PSK, APSK16/32/64/128/256} list and liquid-dsp's naming.
type ModScheme string

const (
	BPSK    ModScheme = "bpsk"
	QPSK    ModScheme = "qpsk"
	PSK8    ModScheme = "psk8"
	APSK16  ModScheme = "apsk16"
	APSK32  ModScheme = "apsk32"
	APSK64  ModScheme = "apsk64"
	APSK128 ModScheme = "apsk128"
	APSK256 ModScheme = "apsk256"
)

// AvailableModulations lists the supported subcarrier modulations, in the
// order ofdm_transfer_print_available_subcarrier_modulations prints them.
var AvailableModulations = []ModScheme{
	BPSK, QPSK, PSK8, APSK16, APSK32, APSK64, APSK128, APSK256,
}

// BitsPerSymbol returns the number of bits carried by one modulated
// symbol, matching the original's bits_per_symbol() table.
func BitsPerSymbol(m ModScheme) (uint, error) {
	switch m {
	case BPSK:
		return 1, nil
	case QPSK:
		return 2, nil
	case PSK8:
		return 3, nil
	case APSK16:
		return 4, nil
	case APSK32:
		return 5, nil
	case APSK64:
		return 6, nil
	case APSK128:
		return 7, nil
	case APSK256:
		return 8, nil
	default:
		return 0, fmt.Errorf("ofdmflex: unknown subcarrier modulation %q", m)
	}
}

// ParseModScheme validates and normalizes a modulation name.
func ParseModScheme(s string) (ModScheme, error) {
	m := ModScheme(s)
	if _, err := BitsPerSymbol(m); err != nil {
		return "", err
	}
	return m, nil
}

// modulator maps groups of bits to complex constellation points and back.
//
// liquid-dsp's exact 8PSK/APSK constellation geometries are an external DSP
// primitive (spec.md §6); this stand-in uses a generic Gray-coded
// rectangular QAM constellation of the same order (2^bitsPerSymbol points)
// for every scheme above BPSK/QPSK. This keeps bits-per-symbol accounting,
// round-trip correctness, and noise-free demodulation identical to the
// real schemes without reproducing liquid's exact constellation points
// (not required by any testable property in spec.md §8).
type modulator struct {
	bits uint
	iBits, qBits uint
	iLevels, qLevels int
}

func newModulator(m ModScheme) (*modulator, error) {
	b, err := BitsPerSymbol(m)
	if err != nil {
		return nil, err
	}
	iBits := (b + 1) / 2
	qBits := b / 2
	return &modulator{
		bits:    b,
		iBits:   iBits,
		qBits:   qBits,
		iLevels: 1 << iBits,
		qLevels: 1 << qBits,
	}, nil
}

func grayEncode(v uint) uint { return v ^ (v >> 1) }

func grayDecode(g uint) uint {
	v := g
	for shift := uint(1); shift < 32; shift <<= 1 {
		v ^= g >> shift
		if shift >= 16 {
			break
		}
	}
	return v
}

// level maps a gray-coded value in [0,levels) to a symmetric amplitude
// level around 0, normalized to [-1,1].
func level(value, levels int) float64 {
	if levels <= 1 {
		return 0
	}
	return (2*float64(value) - float64(levels-1)) / float64(levels-1)
}

// modulate consumes up to m.bits bits (MSB first) from the bit reader and
// returns one constellation point, unit-scaled.
func (m *modulator) modulate(bits *bitReader) complex64 {
	iv := uint(0)
	for i := uint(0); i < m.iBits; i++ {
		iv = (iv << 1) | uint(bits.next())
	}
	qv := uint(0)
	for i := uint(0); i < m.qBits; i++ {
		qv = (qv << 1) | uint(bits.next())
	}
	ig := grayDecode(iv)
	qg := grayDecode(qv)
	re := level(int(ig), m.iLevels)
	var im float64
	if m.qLevels > 1 {
		im = level(int(qg), m.qLevels)
	}
	return complex(float32(re), float32(im))
}

// demodulate is the hard-decision inverse of modulate: given a received
// constellation point, recover m.bits bits and append them to the bit
// writer.
func (m *modulator) demodulate(sample complex64, bits *bitWriter) {
	re := float64(real(sample))
	im := float64(imag(sample))
	ig := nearestLevel(re, m.iLevels)
	bits.writeBits(grayEncode(uint(ig)), m.iBits)
	if m.qLevels > 1 {
		qg := nearestLevel(im, m.qLevels)
		bits.writeBits(grayEncode(uint(qg)), m.qBits)
	}
}

func nearestLevel(x float64, levels int) int {
	if levels <= 1 {
		return 0
	}
	v := int(math.Round((x*float64(levels-1) + float64(levels-1)) / 2))
	if v < 0 {
		v = 0
	}
	if v > levels-1 {
		v = levels - 1
	}
	return v
}
