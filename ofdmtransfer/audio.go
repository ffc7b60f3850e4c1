package ofdmtransfer

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"os"

	"github.com/glv2/ofdm-transfer/internal/hilbert"
)

// hilbertTaps matches the original's firhilbf_create(25, 60) call: 25
// taps, ~60dB stopband attenuation.
const hilbertTaps = 25

// audioSampleSource implements sampleSource over a signed 16-bit stereo
// little-endian PCM stream, reconstructing one complex sample per stereo
// frame via a Hilbert decimator (§4.2).
type audioSampleSource struct {
	r    io.Reader
	pair *hilbert.Pair
}

func newAudioSampleSource(r io.Reader) *audioSampleSource {
	return &audioSampleSource{r: bufio.NewReaderSize(r, 1<<16), pair: hilbert.New(hilbertTaps)}
}

func (a *audioSampleSource) ReadSamples(buf []complex64) (int, error) {
	raw := make([]byte, len(buf)*4)
	n, err := io.ReadFull(a.r, raw)
	frames := n / 4
	for i := 0; i < frames; i++ {
		re := int16(binary.LittleEndian.Uint16(raw[i*4:]))
		im := int16(binary.LittleEndian.Uint16(raw[i*4+2:]))
		buf[i] = a.pair.Decim(pcmToFloat(re), pcmToFloat(im))
	}
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		return frames, io.EOF
	}
	return frames, err
}

func (a *audioSampleSource) Close() error { return nil }

// audioSampleSink implements sampleSink over the same stereo PCM format,
// converting each complex sample to a (real_out, imag_out) audio frame
// via a Hilbert interpolator (§4.2).
type audioSampleSink struct {
	w    io.Writer
	pair *hilbert.Pair
}

func newAudioSampleSink(w io.Writer) *audioSampleSink {
	return &audioSampleSink{w: bufio.NewWriterSize(w, 1<<16), pair: hilbert.New(hilbertTaps)}
}

func (a *audioSampleSink) WriteSamples(buf []complex64, last bool) error {
	raw := make([]byte, len(buf)*4)
	for i, c := range buf {
		re, im := a.pair.Interp(c)
		binary.LittleEndian.PutUint16(raw[i*4:], uint16(floatToPCM(re)))
		binary.LittleEndian.PutUint16(raw[i*4+2:], uint16(floatToPCM(im)))
	}
	if _, err := a.w.Write(raw); err != nil {
		return err
	}
	if last {
		if f, ok := a.w.(*bufio.Writer); ok {
			return f.Flush()
		}
	}
	return nil
}

func (a *audioSampleSink) Close() error {
	if f, ok := a.w.(*bufio.Writer); ok {
		return f.Flush()
	}
	return nil
}

func pcmToFloat(v int16) float32 {
	return float32(v) / 32768
}

func floatToPCM(v float32) int16 {
	f := float64(v) * 32768
	if f > math.MaxInt16 {
		return math.MaxInt16
	}
	if f < math.MinInt16 {
		return math.MinInt16
	}
	return int16(f)
}

type audioFileSampleSource struct {
	f *os.File
	*audioSampleSource
}

func (s *audioFileSampleSource) Close() error { return s.f.Close() }

type audioFileSampleSink struct {
	f *os.File
	*audioSampleSink
}

func (s *audioFileSampleSink) Close() error {
	if err := s.audioSampleSink.Close(); err != nil {
		return err
	}
	return s.f.Close()
}
