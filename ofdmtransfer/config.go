package ofdmtransfer

import (
	"fmt"

	"github.com/glv2/ofdm-transfer/internal/ofdmflex"
)

// Direction selects which pipeline a Transfer runs.
type Direction int

const (
	// Receive reads samples from the radio and emits decoded payloads.
	Receive Direction = iota
	// Transmit reads payload bytes and emits samples to the radio.
	Transmit
)

// Params fully describes one Transfer, matching §3's Transfer attribute
// list and the create/create_callback signature of §6.
type Params struct {
	Direction Direction

	// RadioDriver is a driver spec string: "io", "file=PATH", or an SDR
	// spec string handed to the SDR backend verbatim.
	RadioDriver string

	// File, when non-empty, names the payload file read from (transmit)
	// or written to (receive). Empty means standard input/output.
	File string

	SampleRate      uint
	BitRate         uint
	Frequency       uint64
	FrequencyOffset int64
	Gain            string
	PPM             float64

	SubcarrierModulation ofdmflex.ModScheme
	Subcarriers          int
	CyclicPrefixLength   int
	TaperLength          int
	InnerFEC             ofdmflex.FECScheme
	OuterFEC             ofdmflex.FECScheme

	// ID is 0..4 ASCII bytes; NUL-padded to 4 at construction.
	ID string

	// DumpPath, when non-empty, receives a verbatim copy of the IQ
	// stream actually sent to or read from the radio.
	DumpPath string

	// Timeout, in seconds; 0 disables the receive idle timeout.
	Timeout float64

	// Audio enables the stereo PCM <-> IQ conversion of §4.2. Valid only
	// with the stdio/file radio backends.
	Audio bool

	// Verbose gates diagnostic logging for this transfer.
	Verbose bool

	// DataSource/DataSink provide the payload byte stream. Exactly one
	// applies, matching Direction. If both are nil, File (or stdio when
	// File is empty) is used instead, matching create()'s file-backed
	// default versus create_callback()'s user-supplied callback.
	DataSource DataSource
	DataSink   DataSink
}

// resolvedConfig holds the post-validation, ppm-adjusted, derived values
// computed once at construction and used by every pipeline stage.
type resolvedConfig struct {
	params Params

	sampleRate float64
	frequency  float64

	bitsPerSymbol uint
	samplesPerBit float64

	headerID [4]byte

	frameSamplesSize int
}

func newConfigErrorf(format string, args ...interface{}) error {
	return newConfigError(fmt.Sprintf(format, args...))
}

// resolve validates p and derives the working configuration, applying
// ppm correction and the audio-mode halving described in §4.2/§4.8.
func resolve(p Params) (*resolvedConfig, error) {
	if p.SampleRate == 0 {
		return nil, newConfigErrorf("sample rate must be positive")
	}
	if p.BitRate == 0 {
		return nil, newConfigErrorf("bit rate must be positive")
	}
	if p.Frequency == 0 && p.RadioDriver != "io" && !isFileDriver(p.RadioDriver) {
		return nil, newConfigErrorf("frequency must be positive")
	}
	if len(p.ID) > 4 {
		return nil, newConfigErrorf("id must be at most 4 bytes, got %d", len(p.ID))
	}
	if p.Subcarriers <= 0 {
		return nil, newConfigErrorf("subcarrier count must be positive")
	}
	if p.CyclicPrefixLength < 0 || p.TaperLength < 0 {
		return nil, newConfigErrorf("cyclic prefix and taper lengths must be non-negative")
	}

	bps, err := ofdmflex.BitsPerSymbol(p.SubcarrierModulation)
	if err != nil {
		return nil, wrapConfigError("subcarrier modulation", err)
	}
	if _, err := ofdmflex.ParseFECScheme(string(p.InnerFEC)); err != nil {
		return nil, wrapConfigError("inner fec", err)
	}
	if _, err := ofdmflex.ParseFECScheme(string(p.OuterFEC)); err != nil {
		return nil, wrapConfigError("outer fec", err)
	}

	if p.Audio && !isFileDriver(p.RadioDriver) && p.RadioDriver != "io" {
		return nil, newConfigErrorf("audio mode is only valid with the stdio or file radio backend")
	}

	sampleRate := applyPPM(float64(p.SampleRate), p.PPM)
	frequency := applyPPM(float64(p.Frequency), p.PPM)
	frequencyOffset := float64(p.FrequencyOffset)

	if p.Audio {
		sampleRate /= 2
		frequencyOffset = frequency - sampleRate/2
	}

	samplesPerBit := 2 / float64(bps)
	if sampleRate < float64(p.BitRate)*samplesPerBit {
		return nil, newConfigErrorf(
			"sample rate %.0f too low for bit rate %d at %d bits/symbol (need >= %.0f)",
			sampleRate, p.BitRate, bps, float64(p.BitRate)*samplesPerBit)
	}

	var id [4]byte
	copy(id[:], p.ID)

	frameSamplesSize := int(ceilf(float64(p.BitRate) * samplesPerBit / 20))
	if frameSamplesSize < 1 {
		frameSamplesSize = 1
	}

	p.FrequencyOffset = int64(frequencyOffset)

	return &resolvedConfig{
		params:           p,
		sampleRate:       sampleRate,
		frequency:        frequency,
		bitsPerSymbol:    bps,
		samplesPerBit:    samplesPerBit,
		headerID:         id,
		frameSamplesSize: frameSamplesSize,
	}, nil
}

// applyPPM implements `x * (1 - ppm/1e6)` from §3.
func applyPPM(x, ppm float64) float64 {
	return x * (1e6 - ppm) / 1e6
}

func ceilf(x float64) float64 {
	i := float64(int64(x))
	if x > i {
		return i + 1
	}
	return i
}

func isFileDriver(driver string) bool {
	return len(driver) > 5 && driver[:5] == "file="
}
