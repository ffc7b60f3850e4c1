package ofdmtransfer

import (
	"io"
	"time"

	"github.com/glv2/ofdm-transfer/internal/ofdmflex"
)

// headerSize is the Frame Codec's fixed {id, counter} header, subtracted
// out of the per-frame byte budget the same way the original does.
const headerSize = 8

// payloadSize is the per-frame byte budget of §4.5/§4.6: bounded to
// roughly half a second of air time at the FEC-adjusted byte rate, minus
// the frame header, with an 8-byte floor, matching the original's
// byte_rate/payload_size computation.
func (t *Transfer) payloadSize() int {
	innerRate := ofdmflex.FECRate(t.cfg.params.InnerFEC)
	outerRate := ofdmflex.FECRate(t.cfg.params.OuterFEC)
	byteRate := float64(t.cfg.params.BitRate) * innerRate * outerRate / 8

	if byteRate/2 > float64(headerSize+8) {
		return int(byteRate/2) - headerSize
	}
	return 8
}

// runTransmit is the Transmit Pipeline of §4.6.
func (t *Transfer) runTransmit() error {
	buf := make([]byte, t.payloadSize())

	for !t.shouldStop() {
		n, err := t.dataSource.ReadPayload(buf)
		if err == io.EOF {
			break
		}
		if n == 0 {
			// Underrun: keep the hardware fed with one block of silence.
			t.writeSilenceBlock()
			time.Sleep(time.Millisecond)
			continue
		}
		if err := t.encoder.assemble(buf[:n]); err != nil {
			return err
		}
		t.sendFrame(false)
	}

	t.drainTransmit()
	return nil
}

// sendFrame pulls the encoder's pending frame samples through the Rate
// Converter and Frequency Shifter and writes them to the sink (§4.6 step
// 2).
func (t *Transfer) sendFrame(last bool) {
	samples := t.encoder.writeChunks()
	t.pushSamples(samples, last)
}

// pushSamples resamples up, mixes up, optionally dumps, and writes to the
// sink.
func (t *Transfer) pushSamples(samples []complex64, last bool) {
	resampled := t.rate.execute(samples)
	t.freqShift.mixUp(resampled)
	t.dump(resampled)
	t.sink.WriteSamples(resampled, last)
}

func (t *Transfer) writeSilenceBlock() {
	silence := make([]complex64, t.encoder.frameSamplesSize())
	t.pushSamples(silence, false)
}

// drainTransmit flushes the Rate Converter's group delay through as
// trailing zero samples, then writes a last=true block so the sink runs
// its burst-end protocol (§4.6 step 3).
func (t *Transfer) drainTransmit() {
	if t.shouldStop() {
		return
	}
	delay := t.rate.delay()
	if delay <= 0 {
		delay = 1
	}
	flush := make([]complex64, delay)
	t.pushSamples(flush, true)
}
