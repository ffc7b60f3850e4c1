package ofdmtransfer

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"os"
	"strings"

	"hz.tools/sdr"
)

// radioKind is the tagged union discriminant of §4.1 and §9's "Tagged
// union of radio backend" redesign note: stdio, a named file, or an SDR
// device, each owning its own backend state.
type radioKind int

const (
	radioStdio radioKind = iota
	radioFile
	radioSDR
)

// parseRadioSpec interprets a RadioDriver string per §6: "io", "file=PATH",
// or anything else (an SDR driver spec).
func parseRadioSpec(spec string) (kind radioKind, path string) {
	switch {
	case spec == "io":
		return radioStdio, ""
	case strings.HasPrefix(spec, "file="):
		return radioFile, spec[len("file="):]
	default:
		return radioSDR, spec
	}
}

// sampleSource is the receive-side half of the Sample I/O Sink/Source
// contract (§4.1). Read returns (0, nil) for "no samples this call, not
// EOF" (SDR timeout), and (n, io.EOF) when the backend is exhausted
// (file/stdio only; SDR streams never signal EOF).
type sampleSource interface {
	ReadSamples(buf []complex64) (n int, err error)
	Close() error
}

// sampleSink is the transmit-side half. last marks the final write of a
// transfer so SDR backends can run their burst-end drain protocol.
type sampleSink interface {
	WriteSamples(buf []complex64, last bool) error
	Close() error
}

// --- stdio / file backends, raw complex64 (8-byte LE real+imag pairs) ---

type streamSource struct {
	r io.Reader
}

func newStreamSource(r io.Reader) *streamSource { return &streamSource{r: bufio.NewReaderSize(r, 1<<16)} }

func (s *streamSource) ReadSamples(buf []complex64) (int, error) {
	raw := make([]byte, len(buf)*8)
	n, err := io.ReadFull(s.r, raw)
	samples := n / 8
	for i := 0; i < samples; i++ {
		re := math.Float32frombits(binary.LittleEndian.Uint32(raw[i*8:]))
		im := math.Float32frombits(binary.LittleEndian.Uint32(raw[i*8+4:]))
		buf[i] = complex(re, im)
	}
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		return samples, io.EOF
	}
	return samples, err
}

func (s *streamSource) Close() error { return nil }

type streamSink struct {
	w io.Writer
}

func newStreamSink(w io.Writer) *streamSink { return &streamSink{w: bufio.NewWriterSize(w, 1<<16)} }

func (s *streamSink) WriteSamples(buf []complex64, last bool) error {
	raw := make([]byte, len(buf)*8)
	for i, c := range buf {
		binary.LittleEndian.PutUint32(raw[i*8:], math.Float32bits(real(c)))
		binary.LittleEndian.PutUint32(raw[i*8+4:], math.Float32bits(imag(c)))
	}
	if _, err := s.w.Write(raw); err != nil {
		return err
	}
	if last {
		if f, ok := s.w.(*bufio.Writer); ok {
			return f.Flush()
		}
	}
	return nil
}

func (s *streamSink) Close() error {
	if f, ok := s.w.(*bufio.Writer); ok {
		return f.Flush()
	}
	return nil
}

type fileSampleSource struct {
	f *os.File
	*streamSource
}

func (s *fileSampleSource) Close() error { return s.f.Close() }

type fileSampleSink struct {
	f *os.File
	*streamSink
}

func (s *fileSampleSink) Close() error {
	if err := s.streamSink.Close(); err != nil {
		return err
	}
	return s.f.Close()
}

// --- SDR backend ---

const sdrMTU = 4096

type sdrSampleSource struct {
	dev sdr.Transceiver
	rd  sdr.ReadCloser
}

func (s *sdrSampleSource) ReadSamples(buf []complex64) (int, error) {
	n, err := s.rd.Read(sdr.SamplesC64(buf))
	if err != nil {
		return n, nil // transient read failure: "no samples this call", not EOF
	}
	return n, nil
}

func (s *sdrSampleSource) Close() error {
	if err := s.rd.Close(); err != nil {
		return err
	}
	return s.dev.Close()
}

type sdrSampleSink struct {
	dev        sdr.Transceiver
	wr         sdr.WriteCloser
	shouldStop func() bool
}

func (s *sdrSampleSink) WriteSamples(buf []complex64, last bool) error {
	for len(buf) > 0 {
		if s.shouldStop != nil && s.shouldStop() {
			return nil
		}
		n, err := s.wr.Write(sdr.SamplesC64(buf))
		if err != nil {
			continue // transient: device write loop retries per §4.1, but only while not stopped
		}
		buf = buf[n:]
	}
	if last {
		padded := make(sdr.SamplesC64, sdrMTU)
		if _, err := s.wr.Write(padded); err != nil {
			return wrapResourceError("sdr final burst write", err)
		}
	}
	return nil
}

func (s *sdrSampleSink) Close() error {
	if err := s.wr.Close(); err != nil {
		return err
	}
	return s.dev.Close()
}

// openSource builds the receive-side sample source for a resolved
// configuration.
func openSource(cfg *resolvedConfig) (sampleSource, error) {
	kind, path := parseRadioSpec(cfg.params.RadioDriver)
	switch kind {
	case radioStdio:
		if cfg.params.Audio {
			return newAudioSampleSource(os.Stdin), nil
		}
		return newStreamSource(os.Stdin), nil
	case radioFile:
		f, err := os.Open(path)
		if err != nil {
			return nil, wrapResourceError("open radio file", err)
		}
		if cfg.params.Audio {
			return &audioFileSampleSource{f: f, audioSampleSource: newAudioSampleSource(f)}, nil
		}
		return &fileSampleSource{f: f, streamSource: newStreamSource(f)}, nil
	case radioSDR:
		dev, err := openSDRDriver(path)
		if err != nil {
			return nil, err
		}
		if err := configureSDR(dev, uint(cfg.sampleRate), cfg.frequency, cfg.params.FrequencyOffset, cfg.params.Gain); err != nil {
			dev.Close()
			return nil, err
		}
		rd, err := dev.StartRx()
		if err != nil {
			dev.Close()
			return nil, wrapResourceError("sdr start rx", err)
		}
		return &sdrSampleSource{dev: dev, rd: rd}, nil
	default:
		return nil, newConfigErrorf("unknown radio driver %q", cfg.params.RadioDriver)
	}
}

// openSink builds the transmit-side sample sink for a resolved
// configuration. shouldStop is consulted by the SDR backend's blocking
// write-retry loop so it observes the cooperative-stop contract of §4.1.
func openSink(cfg *resolvedConfig, shouldStop func() bool) (sampleSink, error) {
	kind, path := parseRadioSpec(cfg.params.RadioDriver)
	switch kind {
	case radioStdio:
		if cfg.params.Audio {
			return newAudioSampleSink(os.Stdout), nil
		}
		return newStreamSink(os.Stdout), nil
	case radioFile:
		f, err := os.Create(path)
		if err != nil {
			return nil, wrapResourceError("create radio file", err)
		}
		if cfg.params.Audio {
			return &audioFileSampleSink{f: f, audioSampleSink: newAudioSampleSink(f)}, nil
		}
		return &fileSampleSink{f: f, streamSink: newStreamSink(f)}, nil
	case radioSDR:
		dev, err := openSDRDriver(path)
		if err != nil {
			return nil, err
		}
		if err := configureSDR(dev, uint(cfg.sampleRate), cfg.frequency, cfg.params.FrequencyOffset, cfg.params.Gain); err != nil {
			dev.Close()
			return nil, err
		}
		wr, err := dev.StartTx()
		if err != nil {
			dev.Close()
			return nil, wrapResourceError("sdr start tx", err)
		}
		return &sdrSampleSink{dev: dev, wr: wr, shouldStop: shouldStop}, nil
	default:
		return nil, newConfigErrorf("unknown radio driver %q", cfg.params.RadioDriver)
	}
}
