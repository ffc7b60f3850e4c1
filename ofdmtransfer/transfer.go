// Package ofdmtransfer implements the transmit/receive OFDM signal
// processing pipeline: byte stream <-> framed OFDM bursts <-> complex
// baseband samples <-> a radio (SDR, file, or stdio).
package ofdmtransfer

import (
	"encoding/binary"
	"math"
	"os"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/glv2/ofdm-transfer/internal/ofdmflex"
)

// globalStop is the process-wide stop flag of §3/§4.8/§9: any signal
// handler can set it to cancel every active Transfer. A single atomic
// word, observed (not locked) from every pipeline's block boundary.
var globalStop atomic.Bool

// verbose is the process-wide diagnostic logging toggle.
var verbose atomic.Bool

// StopAll sets the process-wide stop flag, cancelling every active
// Transfer at its next block boundary. Safe to call from a signal
// handler.
func StopAll() {
	globalStop.Store(true)
}

// SetVerbose toggles process-wide diagnostic logging.
func SetVerbose(v bool) {
	verbose.Store(v)
}

// IsVerbose reports the process-wide diagnostic logging state.
func IsVerbose() bool {
	return verbose.Load()
}

// PrintAvailableRadios writes the supported radio driver spec forms to
// standard output, matching ofdm_transfer_print_available_radios.
func PrintAvailableRadios() {
	for _, r := range []string{"io", "file=PATH", "<sdr driver spec>"} {
		fprintln(os.Stdout, r)
	}
}

// PrintAvailableSubcarrierModulations writes the supported subcarrier
// modulations to standard output.
func PrintAvailableSubcarrierModulations() {
	for _, m := range ofdmflex.AvailableModulations {
		fprintln(os.Stdout, string(m))
	}
}

// PrintAvailableForwardErrorCodes writes the supported FEC scheme names
// to standard output.
func PrintAvailableForwardErrorCodes() {
	for _, f := range ofdmflex.AvailableFECSchemes {
		fprintln(os.Stdout, string(f))
	}
}

func fprintln(f *os.File, s string) {
	f.WriteString(s)
	f.WriteString("\n")
}

// Transfer is one configured pipeline instance, matching §3's "Transfer"
// data model and §4.8's lifecycle.
type Transfer struct {
	params Params
	cfg    *resolvedConfig

	sessionID uuid.UUID
	stop      atomic.Bool

	source sampleSource
	sink   sampleSink

	dataSource DataSource
	dataSink   DataSink

	dumpFile *os.File

	freqShift *freqShifter
	rate      *rateConverter
	encoder   *frameEncoder
	decoder   *frameDecoder

	metrics *metricsCollector
	events  *eventPublisher

	closed bool
}

// Create builds a Transfer whose payload stream is the configured File
// (or standard input/output when File is empty), matching §6's create().
func Create(p Params) (*Transfer, error) {
	return newTransfer(p)
}

// CreateCallback builds a Transfer whose payload stream is the supplied
// DataSource/DataSink, matching §6's create_callback().
func CreateCallback(p Params, source DataSource, sink DataSink) (*Transfer, error) {
	p.DataSource = source
	p.DataSink = sink
	return newTransfer(p)
}

func newTransfer(p Params) (*Transfer, error) {
	cfg, err := resolve(p)
	if err != nil {
		return nil, err
	}

	t := &Transfer{
		params:    cfg.params,
		cfg:       cfg,
		sessionID: uuid.New(),
	}

	if cfg.params.DataSource != nil {
		t.dataSource = cfg.params.DataSource
	}
	if cfg.params.DataSink != nil {
		t.dataSink = cfg.params.DataSink
	}
	if t.dataSource == nil && t.dataSink == nil {
		if err := t.openDefaultDataStream(); err != nil {
			return nil, err
		}
	}

	if cfg.params.DumpPath != "" {
		f, err := os.Create(cfg.params.DumpPath)
		if err != nil {
			t.Close()
			return nil, wrapResourceError("open dump file", err)
		}
		t.dumpFile = f
	}

	props := ofdmflex.Properties{
		Subcarriers:     cfg.params.Subcarriers,
		CyclicPrefixLen: cfg.params.CyclicPrefixLength,
		TaperLen:        cfg.params.TaperLength,
		Modulation:      cfg.params.SubcarrierModulation,
		InnerFEC:        cfg.params.InnerFEC,
		OuterFEC:        cfg.params.OuterFEC,
	}

	switch cfg.params.Direction {
	case Transmit:
		sink, err := openSink(cfg, t.shouldStop)
		if err != nil {
			t.Close()
			return nil, err
		}
		t.sink = sink
		t.freqShift = newFreqShifter(float64(cfg.params.FrequencyOffset), cfg.sampleRate)
		t.rate = newTransmitRateConverter(cfg.sampleRate, float64(cfg.params.BitRate), cfg.samplesPerBit)
		enc, err := newFrameEncoder(props, cfg.headerID)
		if err != nil {
			t.Close()
			return nil, err
		}
		t.encoder = enc
	case Receive:
		source, err := openSource(cfg)
		if err != nil {
			t.Close()
			return nil, err
		}
		t.source = source
		t.freqShift = newFreqShifter(float64(cfg.params.FrequencyOffset), cfg.sampleRate)
		t.rate = newReceiveRateConverter(cfg.sampleRate, float64(cfg.params.BitRate), cfg.samplesPerBit)
		dec, err := newFrameDecoder(props, cfg.headerID, cfg.params.Verbose, t.deliverPayload)
		if err != nil {
			t.Close()
			return nil, err
		}
		t.decoder = dec
	}

	if m := globalMetrics; m != nil {
		t.metrics = m
	}
	t.events = globalEvents

	return t, nil
}

func (t *Transfer) openDefaultDataStream() error {
	switch t.cfg.params.Direction {
	case Transmit:
		if t.cfg.params.File == "" {
			t.dataSource = &fileDataSource{r: os.Stdin}
			return nil
		}
		f, err := os.Open(t.cfg.params.File)
		if err != nil {
			return wrapResourceError("open payload file", err)
		}
		t.dataSource = &fileDataSource{r: f}
	case Receive:
		if t.cfg.params.File == "" {
			t.dataSink = &fileDataSink{w: os.Stdout}
			return nil
		}
		f, err := os.Create(t.cfg.params.File)
		if err != nil {
			return wrapResourceError("create payload file", err)
		}
		t.dataSink = &fileDataSink{w: f}
	}
	return nil
}

// dump appends samples to the dump file in the same raw complex64 wire
// format as the stdio/file radio backend, when a dump path was configured
// (§4.6 step 2, §4.7 step 4). A no-op otherwise.
func (t *Transfer) dump(samples []complex64) {
	if t.dumpFile == nil {
		return
	}
	raw := make([]byte, len(samples)*8)
	for i, c := range samples {
		binary.LittleEndian.PutUint32(raw[i*8:], math.Float32bits(real(c)))
		binary.LittleEndian.PutUint32(raw[i*8+4:], math.Float32bits(imag(c)))
	}
	t.dumpFile.Write(raw)
}

func (t *Transfer) deliverPayload(payload []byte) {
	if t.metrics != nil {
		t.metrics.framesReceived.Inc()
	}
	if t.events != nil {
		t.events.publishReceived(t.sessionID, len(payload))
	}
	if t.dataSink != nil {
		t.dataSink.WritePayload(payload)
	}
}

// Start runs the configured pipeline synchronously to completion (input
// exhausted, idle timeout, or stop), matching §4.8's "(re)clears stop
// flags... then dispatches to transmit or receive pipeline".
func (t *Transfer) Start() error {
	globalStop.Store(false)
	t.stop.Store(false)

	if t.decoder != nil {
		t.decoder.touch()
	}

	switch t.cfg.params.Direction {
	case Transmit:
		return t.runTransmit()
	case Receive:
		return t.runReceive()
	default:
		return newConfigErrorf("unknown direction")
	}
}

// Stop sets this Transfer's per-instance stop flag.
func (t *Transfer) Stop() {
	t.stop.Store(true)
}

// shouldStop is the cooperative-cancellation check observed at every
// block boundary (§4.8, §5): both the per-transfer and process-wide
// flags.
func (t *Transfer) shouldStop() bool {
	return t.stop.Load() || globalStop.Load()
}

// Close releases every resource owned by the Transfer: file handles, the
// SDR stream, and DSP primitives. Safe to call once, after Stop has been
// observed if Start is still running on another goroutine.
func (t *Transfer) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true

	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if t.source != nil {
		record(t.source.Close())
	}
	if t.sink != nil {
		record(t.sink.Close())
	}
	if t.dumpFile != nil {
		record(t.dumpFile.Close())
	}
	if c, ok := t.dataSource.(interface{ Close() error }); ok {
		record(c.Close())
	}
	if c, ok := t.dataSink.(interface{ Close() error }); ok {
		record(c.Close())
	}
	return firstErr
}
