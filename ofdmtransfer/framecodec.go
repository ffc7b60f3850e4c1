package ofdmtransfer

import (
	"encoding/binary"
	"math"
	"sync/atomic"
	"time"

	"github.com/glv2/ofdm-transfer/internal/ofdmflex"
)

const maxAmplitude = 0.75

// frameEncoder wraps the external OFDM flex-frame generator, owning the
// outgoing header/counter state (§4.5).
type frameEncoder struct {
	gen     *ofdmflex.Generator
	id      [4]byte
	counter uint32
	metrics *metricsCollector
}

func newFrameEncoder(props ofdmflex.Properties, id [4]byte) (*frameEncoder, error) {
	gen, err := ofdmflex.NewGenerator(props)
	if err != nil {
		return nil, wrapDSPError("create frame generator", err)
	}
	return &frameEncoder{gen: gen, id: id, metrics: globalMetrics}, nil
}

// assemble builds the 8-byte header {id, counter} and hands header+payload
// to the generator, then increments the counter modulo 2^32.
func (e *frameEncoder) assemble(payload []byte) error {
	header := make([]byte, 8)
	copy(header[0:4], e.id[:])
	binary.BigEndian.PutUint32(header[4:8], e.counter)
	if err := e.gen.Assemble(header, payload); err != nil {
		return wrapDSPError("assemble frame", err)
	}
	e.counter++
	if e.metrics != nil {
		e.metrics.framesTransmitted.Inc()
	}
	return nil
}

func (e *frameEncoder) frameSamplesSize() int {
	return e.gen.FrameSamplesSize()
}

// writeChunks pulls frame samples out of the generator in
// frameSamplesSize() chunks until it reports complete, trims trailing
// exact-zero padding from the final chunk, and scales the whole frame so
// no sample exceeds maxAmplitude in magnitude (§4.5).
func (e *frameEncoder) writeChunks() []complex64 {
	chunk := make([]complex64, e.frameSamplesSize())
	var out []complex64
	for {
		n, complete := e.gen.Write(chunk)
		out = append(out, chunk[:n]...)
		if complete {
			break
		}
	}
	out = trimTrailingZeros(out)
	scaleToAmplitude(out, maxAmplitude)
	return out
}

func trimTrailingZeros(samples []complex64) []complex64 {
	i := len(samples)
	for i > 0 && samples[i-1] == 0 {
		i--
	}
	return samples[:i]
}

func scaleToAmplitude(samples []complex64, target float32) {
	var max float32 = 1.0
	for _, s := range samples {
		m := complexAbs(s)
		if m > max {
			max = m
		}
	}
	scale := target / max
	for i, s := range samples {
		samples[i] = complex(real(s)*scale, imag(s)*scale)
	}
}

func complexAbs(c complex64) float32 {
	re, im := float64(real(c)), float64(imag(c))
	return float32(math.Sqrt(re*re + im*im))
}

// frameDecoder wraps the external OFDM flex-frame synchronizer, checking
// the recovered header's id against the configured id and tracking the
// timeout baseline (§4.5, §4.7).
type frameDecoder struct {
	sync      *ofdmflex.Synchronizer
	id        [4]byte
	verbose   bool
	lastFrame atomic.Int64 // unix nanos of the last delivered frame, valid or not
	deliver   func(payload []byte)
	metrics   *metricsCollector
}

func newFrameDecoder(props ofdmflex.Properties, id [4]byte, verbose bool, deliver func(payload []byte)) (*frameDecoder, error) {
	d := &frameDecoder{id: id, verbose: verbose, deliver: deliver, metrics: globalMetrics}
	sync, err := ofdmflex.NewSynchronizer(props, d.onFrame)
	if err != nil {
		return nil, wrapDSPError("create frame synchronizer", err)
	}
	d.sync = sync
	return d, nil
}

func (d *frameDecoder) onFrame(header []byte, headerValid bool, payload []byte, payloadValid bool) {
	d.lastFrame.Store(time.Now().UnixNano())

	if !headerValid {
		if d.verbose {
			errorLogf("corrupted frame header")
		}
		d.countDropped()
		return
	}
	if !payloadValid {
		if d.verbose {
			errorLogf("corrupted payload for frame with id %q", headerID(header))
		}
		d.countDropped()
		if d.metrics != nil {
			d.metrics.crcFailures.Inc()
		}
		return
	}
	if !idsEqual(header, d.id) {
		if d.verbose {
			errorLogf("frame for %q: ignored", headerID(header))
		}
		d.countDropped()
		if d.metrics != nil {
			d.metrics.idMismatches.Inc()
		}
		return
	}
	d.deliver(payload)
}

func (d *frameDecoder) countDropped() {
	if d.metrics != nil {
		d.metrics.framesDropped.Inc()
	}
}

func (d *frameDecoder) execute(samples []complex64) {
	d.sync.Execute(samples)
}

func (d *frameDecoder) isFrameOpen() bool {
	return d.sync.IsFrameOpen()
}

// lastFrameTime returns the wall-clock time of the last delivered frame
// (valid or not), used as the idle-timeout baseline in §4.7. Before the
// first frame it returns the zero value, meaning "since construction"
// must be seeded separately by the receive pipeline.
func (d *frameDecoder) lastFrameTime() time.Time {
	ns := d.lastFrame.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

func (d *frameDecoder) touch() {
	d.lastFrame.Store(time.Now().UnixNano())
}

func idsEqual(header []byte, id [4]byte) bool {
	return len(header) >= 4 && header[0] == id[0] && header[1] == id[1] && header[2] == id[2] && header[3] == id[3]
}

func headerID(header []byte) string {
	if len(header) < 4 {
		return ""
	}
	return string(header[0:4])
}
