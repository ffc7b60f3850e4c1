package ofdmtransfer

import (
	"io"
	"time"
)

// samplesSize is the per-read/per-write block size of §4.6/§4.7's "Chunk
// sizing" note: enough samples, after resampling, to cover one frame plus
// the Rate Converter's group delay.
func (t *Transfer) samplesSize() int {
	n := ceilf(float64(t.cfg.frameSamplesSize+t.rate.delay()) * t.rate.ratio())
	size := int(n)
	if size < 1 {
		size = 1
	}
	return size
}

// runReceive is the Receive Pipeline of §4.7.
func (t *Transfer) runReceive() error {
	buf := make([]complex64, t.samplesSize())
	fileBacked := t.cfg.params.RadioDriver == "io" || isFileDriver(t.cfg.params.RadioDriver)

	for !t.shouldStop() {
		n, err := t.source.ReadSamples(buf)
		if fileBacked && n == 0 && err == io.EOF {
			break
		}

		if t.cfg.params.Timeout > 0 {
			idle := time.Since(t.decoder.lastFrameTime())
			if idle > time.Duration(t.cfg.params.Timeout*float64(time.Second)) {
				errorLogf("receive: no frame for %.1fs, stopping", idle.Seconds())
				break
			}
		}

		if n == 0 {
			continue
		}

		samples := buf[:n]
		t.dump(samples)
		t.freqShift.mixDown(samples)
		baseband := t.rate.execute(samples)
		t.decoder.execute(baseband)
	}

	t.drainReceive()
	return nil
}

// drainReceive flushes the Rate Converter's group delay through as
// trailing zero samples so any frame still synchronizing gets its
// remaining symbols, then pumps the synchronizer one sample at a time
// until it reports no frame in flight (§4.7 step 5).
func (t *Transfer) drainReceive() {
	delay := t.rate.delay()
	if delay <= 0 {
		delay = 1
	}
	flush := make([]complex64, delay)
	baseband := t.rate.execute(flush)
	t.decoder.execute(baseband)

	one := make([]complex64, 1)
	for t.decoder.isFrameOpen() {
		t.decoder.execute(one)
	}
}
