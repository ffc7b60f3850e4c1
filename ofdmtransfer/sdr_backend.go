package ofdmtransfer

import (
	"strconv"
	"strings"

	"hz.tools/rf"
	"hz.tools/sdr"
)

// SDRDriverOpener constructs a concrete hz.tools/sdr Transceiver from the
// key=value arguments parsed out of a driver spec string (§6: "anything
// else [...] passed to the SDR abstraction verbatim"). Concrete hardware
// bindings (hackrf, uhd, rtl-sdr, ...) live in their own packages, the
// same way database/sql drivers or image.RegisterFormat codecs do; this
// project carries no hardware driver of its own, only the registry.
type SDRDriverOpener func(args map[string]string) (sdr.Transceiver, error)

var sdrDrivers = map[string]SDRDriverOpener{}

// RegisterSDRDriver makes a hardware backend available under the given
// "driver=" name for RadioDriver spec strings, matching how hz.tools' own
// sub-packages (uhd, hackrf, ...) each bind one physical device family.
func RegisterSDRDriver(name string, opener SDRDriverOpener) {
	sdrDrivers[name] = opener
}

// parseDriverArgs splits a comma-separated key=value spec, e.g.
// "driver=hackrf,serial=1234".
func parseDriverArgs(spec string) map[string]string {
	args := make(map[string]string)
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if i := strings.IndexByte(part, '='); i >= 0 {
			args[part[:i]] = part[i+1:]
		} else {
			args[part] = ""
		}
	}
	return args
}

// openSDRDriver resolves a driver spec string to a live device, matching
// §4.8's "opens the device" construction step.
func openSDRDriver(spec string) (sdr.Transceiver, error) {
	args := parseDriverArgs(spec)
	name := args["driver"]
	opener, ok := sdrDrivers[name]
	if !ok {
		return nil, wrapResourceError("sdr driver", newConfigErrorf("no SDR driver registered for %q (spec %q)", name, spec))
	}
	dev, err := opener(args)
	if err != nil {
		return nil, wrapResourceError("sdr open", err)
	}
	return dev, nil
}

// configureSDR applies sample rate, center frequency and gain, matching
// §4.8: "opens the device, configures sample rate and (frequency -
// frequency_offset) center frequency, applies gain".
func configureSDR(dev sdr.Transceiver, sampleRate uint, frequency float64, offset int64, gain string) error {
	if err := dev.SetSampleRate(sampleRate); err != nil {
		return wrapResourceError("sdr set sample rate", err)
	}
	center := frequency - float64(offset)
	if err := dev.SetCenterFrequency(rf.Hz(center)); err != nil {
		return wrapResourceError("sdr set frequency", err)
	}
	if err := applyGain(dev, gain); err != nil {
		return wrapResourceError("sdr set gain", err)
	}
	return nil
}

// applyGain accepts either a bare numeric gain (applied to every stage)
// or a "stage=value,stage=value" list, matching §3's "gain (numeric or
// element=value map string)".
func applyGain(dev sdr.Transceiver, gain string) error {
	if gain == "" {
		return nil
	}
	if !strings.Contains(gain, "=") {
		return setAllGainStages(dev, gain)
	}
	stages, err := dev.GetGainStages()
	if err != nil {
		return err
	}
	values := parseDriverArgs(gain)
	for name, v := range values {
		stage := findGainStage(stages, name)
		if stage == nil {
			continue
		}
		f, err := parseFloat(v)
		if err != nil {
			return err
		}
		if err := dev.SetGain(stage, f); err != nil {
			return err
		}
	}
	return nil
}

func setAllGainStages(dev sdr.Transceiver, value string) error {
	f, err := parseFloat(value)
	if err != nil {
		return err
	}
	stages, err := dev.GetGainStages()
	if err != nil {
		return err
	}
	for _, stage := range stages {
		if err := dev.SetGain(stage, f); err != nil {
			return err
		}
	}
	return nil
}

func findGainStage(stages sdr.GainStages, name string) sdr.GainStage {
	for _, s := range stages {
		if s.String() == name {
			return s
		}
	}
	return nil
}

func parseFloat(s string) (float32, error) {
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, newConfigErrorf("invalid gain value %q", s)
	}
	return float32(f), nil
}
