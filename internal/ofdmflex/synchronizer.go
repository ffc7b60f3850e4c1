package ofdmflex

const detectThreshold = 0.55

type syncState int

const (
	stateSearching syncState = iota
	stateHeader
	statePayload
)

// FrameCallback receives one decoded frame. header is always the 8 bytes
// passed to the matching Generator.Assemble call when headerValid is true;
// payload and payloadValid are meaningless when headerValid is false,
// since the payload length itself comes from the header.
type FrameCallback func(header []byte, headerValid bool, payload []byte, payloadValid bool)

// Synchronizer recovers frames from a continuous complex baseband sample
// stream, matching ofdmflexframesync_execute's role in the original.
type Synchronizer struct {
	props Properties
	sym   *symbolModem

	headerMod  *modulator
	payloadMod *modulator
	preamble   []complex64
	cb         FrameCallback

	buf   []complex64
	state syncState

	headerSymbols int
	headerCodedLen int // bytes

	pendingHeader    []byte
	payloadDataLen   int
	payloadSymbols   int
	payloadCodedLen  int // bytes
}

// NewSynchronizer builds a Synchronizer matching props; cb is invoked once
// per recovered frame from within Execute.
func NewSynchronizer(props Properties, cb FrameCallback) (*Synchronizer, error) {
	payloadMod, err := newModulator(props.Modulation)
	if err != nil {
		return nil, err
	}
	headerMod, err := newModulator(QPSK)
	if err != nil {
		return nil, err
	}
	metaLen := 2 + headerUserLen + 4 // length(2) + header(8) + crc(4)
	headerCodedLen := hamming74EncodedLen(metaLen)
	headerBits := headerCodedLen * 8
	headerSymbols := ceilDiv(headerBits, int(headerMod.bits)*props.Subcarriers)

	s := &Synchronizer{
		props:          props,
		sym:            newSymbolModem(props.Subcarriers, props.CyclicPrefixLen, props.TaperLen),
		headerMod:      headerMod,
		payloadMod:     payloadMod,
		preamble:       generatePreamble(props.Subcarriers),
		cb:             cb,
		headerSymbols:  headerSymbols,
		headerCodedLen: headerCodedLen,
	}
	return s, nil
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

// IsFrameOpen reports whether a preamble has been detected and the
// synchronizer is still waiting on header or payload samples, matching
// the role of checking ofdmflexframesync_is_frame_open in the original's
// shutdown sequence (pump remaining samples until it clears).
func (s *Synchronizer) IsFrameOpen() bool {
	return s.state != stateSearching
}

// Execute appends samples to the internal buffer and advances the frame
// state machine as far as the available data allows, invoking cb for each
// frame fully recovered.
func (s *Synchronizer) Execute(samples []complex64) {
	s.buf = append(s.buf, samples...)
	for s.step() {
	}
}

func (s *Synchronizer) step() bool {
	switch s.state {
	case stateSearching:
		return s.searchPreamble()
	case stateHeader:
		return s.decodeHeader()
	case statePayload:
		return s.decodePayload()
	default:
		return false
	}
}

func (s *Synchronizer) searchPreamble() bool {
	n := s.props.Subcarriers
	need := 2 * n
	if len(s.buf) < need {
		return false
	}
	bestPos := -1
	bestScore := 0.0
	maxScan := len(s.buf) - need
	for pos := 0; pos <= maxScan; pos++ {
		score := (correlate(s.buf, pos, s.preamble) + correlate(s.buf, pos+n, s.preamble)) / 2
		if score > bestScore {
			bestScore = score
			bestPos = pos
		}
	}
	if bestScore >= detectThreshold {
		s.buf = s.buf[bestPos+need:]
		s.state = stateHeader
		return true
	}
	// Bound memory use: keep only enough trailing context to match a
	// preamble that starts in the next chunk.
	if len(s.buf) > need-1 {
		s.buf = s.buf[len(s.buf)-(need-1):]
	}
	return false
}

func (s *Synchronizer) decodeHeader() bool {
	need := s.headerSymbols * s.sym.symbolLen()
	if len(s.buf) < need {
		return false
	}
	bw := newBitWriter()
	off := 0
	for i := 0; i < s.headerSymbols; i++ {
		subcarriers := s.sym.demodulate(s.buf, off)
		for _, v := range subcarriers {
			s.headerMod.demodulate(complex64(v), bw)
		}
		off += s.sym.symbolLen()
	}
	s.buf = s.buf[need:]

	coded := bw.bytes()
	if len(coded) > s.headerCodedLen {
		coded = coded[:s.headerCodedLen]
	}
	meta := hamming74Decode(coded)
	metaPayload, ok := splitCRC(meta)
	if !ok || len(metaPayload) < 2+headerUserLen {
		s.cb(nil, false, nil, false)
		s.state = stateSearching
		return true
	}

	payloadLen := int(metaPayload[0])<<8 | int(metaPayload[1])
	header := append([]byte{}, metaPayload[2:2+headerUserLen]...)

	outerLen := encodedLen(s.props.OuterFEC, payloadLen+4)
	innerLen := encodedLen(s.props.InnerFEC, outerLen)
	payloadBits := innerLen * 8
	payloadSymbols := ceilDiv(payloadBits, int(s.payloadMod.bits)*s.props.Subcarriers)

	s.pendingHeader = header
	s.payloadDataLen = payloadLen
	s.payloadCodedLen = innerLen
	s.payloadSymbols = payloadSymbols
	s.state = statePayload
	return true
}

func (s *Synchronizer) decodePayload() bool {
	need := s.payloadSymbols * s.sym.symbolLen()
	if len(s.buf) < need {
		return false
	}
	bw := newBitWriter()
	off := 0
	for i := 0; i < s.payloadSymbols; i++ {
		subcarriers := s.sym.demodulate(s.buf, off)
		for _, v := range subcarriers {
			s.payloadMod.demodulate(complex64(v), bw)
		}
		off += s.sym.symbolLen()
	}
	s.buf = s.buf[need:]

	coded := bw.bytes()
	if len(coded) > s.payloadCodedLen {
		coded = coded[:s.payloadCodedLen]
	}

	inner, err := decode(s.props.InnerFEC, coded)
	var payload []byte
	valid := false
	if err == nil {
		outer, err2 := decode(s.props.OuterFEC, inner)
		if err2 == nil {
			var ok bool
			payload, ok = splitCRC(outer)
			valid = ok
		}
	}
	if len(payload) > s.payloadDataLen {
		payload = payload[:s.payloadDataLen]
	} else if len(payload) < s.payloadDataLen {
		padded := make([]byte, s.payloadDataLen)
		copy(padded, payload)
		payload = padded
	}

	s.cb(s.pendingHeader, true, payload, valid)
	s.pendingHeader = nil
	s.state = stateSearching
	return true
}
