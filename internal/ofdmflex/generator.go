package ofdmflex

import "fmt"

// headerUserLen is the fixed size of the caller-supplied frame header, per
// the 8-byte {id(4), counter(4)} contract.
const headerUserLen = 8

// Properties configures a Generator/Synchronizer pair. Both ends of a
// link must agree on every field.
type Properties struct {
	Subcarriers     int
	CyclicPrefixLen int
	TaperLen        int
	Modulation      ModScheme
	InnerFEC        FECScheme
	OuterFEC        FECScheme
}

// Generator assembles one frame (header + payload) into a stream of
// complex baseband samples, matching ofdmflexframegen_assemble /
// ofdmflexframegen_write_samples from the original ofdm-transfer's use of
// liquid-dsp.
type Generator struct {
	props Properties
	sym   *symbolModem

	headerMod *modulator // always QPSK: fixed, robust, independent of props.Modulation
	payloadMod *modulator

	preamble []complex64

	samples []complex64
	pos     int
}

// NewGenerator validates props and builds a Generator ready to Assemble
// frames.
func NewGenerator(props Properties) (*Generator, error) {
	if props.Subcarriers < 4 {
		return nil, fmt.Errorf("ofdmflex: subcarrier count must be at least 4")
	}
	payloadMod, err := newModulator(props.Modulation)
	if err != nil {
		return nil, err
	}
	headerMod, err := newModulator(QPSK)
	if err != nil {
		return nil, err
	}
	if _, err := ParseFECScheme(string(props.InnerFEC)); err != nil {
		return nil, err
	}
	if _, err := ParseFECScheme(string(props.OuterFEC)); err != nil {
		return nil, err
	}
	return &Generator{
		props:      props,
		sym:        newSymbolModem(props.Subcarriers, props.CyclicPrefixLen, props.TaperLen),
		headerMod:  headerMod,
		payloadMod: payloadMod,
		preamble:   generatePreamble(props.Subcarriers),
	}, nil
}

// FrameSamplesSize returns a reasonable chunk size for Write, matching the
// role of FRAME_SAMPLES_SIZE / ofdmflexframegen_getframelen in the
// original: callers pull samples in blocks of this size until the frame
// reports complete.
func (g *Generator) FrameSamplesSize() int {
	return g.sym.symbolLen() * 4
}

// Assemble prepares a new frame carrying header (must be exactly 8 bytes)
// and payload, ready to be pulled out via Write.
func (g *Generator) Assemble(header, payload []byte) error {
	if len(header) != headerUserLen {
		return fmt.Errorf("ofdmflex: frame header must be 8 bytes")
	}

	meta := make([]byte, 0, 2+headerUserLen)
	meta = append(meta, byte(len(payload)>>8), byte(len(payload)))
	meta = append(meta, header...)
	headerSection := appendCRC(meta)
	headerCoded := hamming74Encode(headerSection)

	payloadSection := appendCRC(payload)
	outerCoded, err := encode(g.props.OuterFEC, payloadSection)
	if err != nil {
		return err
	}
	innerCoded, err := encode(g.props.InnerFEC, outerCoded)
	if err != nil {
		return err
	}

	var samples []complex64
	samples = append(samples, g.preamble...)
	samples = append(samples, g.preamble...)
	samples = g.modulateSection(samples, headerCoded, g.headerMod)
	samples = g.modulateSection(samples, innerCoded, g.payloadMod)

	g.samples = samples
	g.pos = 0
	return nil
}

func (g *Generator) modulateSection(dst []complex64, coded []byte, mod *modulator) []complex64 {
	r := newBitReader(coded)
	totalBits := len(coded) * 8
	symbolsNeeded := (totalBits + int(mod.bits)*g.props.Subcarriers - 1) / (int(mod.bits) * g.props.Subcarriers)
	subcarriers := make([]complex128, g.props.Subcarriers)
	for s := 0; s < symbolsNeeded; s++ {
		for i := 0; i < g.props.Subcarriers; i++ {
			// bitReader.next() returns 0 past the end of coded, so the
			// final partial symbol is implicitly zero-padded.
			subcarriers[i] = complex128(mod.modulate(r))
		}
		dst = g.sym.modulate(dst, subcarriers)
	}
	return dst
}

// Write copies up to len(buf) samples of the current frame into buf,
// returning the number written and whether the frame has now been fully
// emitted, matching ofdmflexframegen_write_samples's frame_complete flag.
// Any part of buf past the samples written is zero-filled.
func (g *Generator) Write(buf []complex64) (n int, frameComplete bool) {
	remaining := len(g.samples) - g.pos
	if remaining <= 0 {
		for i := range buf {
			buf[i] = 0
		}
		return 0, true
	}
	n = len(buf)
	if n > remaining {
		n = remaining
	}
	copy(buf, g.samples[g.pos:g.pos+n])
	for i := n; i < len(buf); i++ {
		buf[i] = 0
	}
	g.pos += n
	return n, g.pos >= len(g.samples)
}
