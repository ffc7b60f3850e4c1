package ofdmtransfer

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/glv2/ofdm-transfer/internal/ofdmflex"
)

// Profile is a named, file-loadable bundle of Params fields, supplementing
// the original CLI-only flag surface with a "-P profile.yaml" option so
// common configurations don't need to be repeated on every invocation.
type Profile struct {
	SampleRate           uint   `yaml:"sample_rate"`
	BitRate              uint   `yaml:"bit_rate"`
	Frequency            uint64 `yaml:"frequency"`
	FrequencyOffset      int64  `yaml:"frequency_offset"`
	Gain                 string `yaml:"gain"`
	PPM                  float64 `yaml:"ppm"`
	SubcarrierModulation string `yaml:"subcarrier_modulation"`
	Subcarriers          int    `yaml:"subcarriers"`
	CyclicPrefixLength   int    `yaml:"cyclic_prefix_length"`
	TaperLength          int    `yaml:"taper_length"`
	InnerFEC             string `yaml:"inner_fec"`
	OuterFEC             string `yaml:"outer_fec"`
	ID                   string `yaml:"id"`
	DumpPath             string `yaml:"dump"`
	Timeout              float64 `yaml:"timeout"`
	Audio                bool   `yaml:"audio"`
	Verbose              bool   `yaml:"verbose"`
}

// LoadProfile reads a YAML parameter profile from path.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapResourceError("read profile", err)
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, wrapConfigError("parse profile", err)
	}
	return &p, nil
}

// Apply overlays the profile onto base, returning the merged Params.
// Direction, radio driver, file, and callback fields are left to the
// caller since a profile never specifies them.
func (p *Profile) Apply(base Params) (Params, error) {
	out := base
	if p.SampleRate != 0 {
		out.SampleRate = p.SampleRate
	}
	if p.BitRate != 0 {
		out.BitRate = p.BitRate
	}
	if p.Frequency != 0 {
		out.Frequency = p.Frequency
	}
	if p.FrequencyOffset != 0 {
		out.FrequencyOffset = p.FrequencyOffset
	}
	if p.Gain != "" {
		out.Gain = p.Gain
	}
	if p.PPM != 0 {
		out.PPM = p.PPM
	}
	if p.SubcarrierModulation != "" {
		m, err := ofdmflex.ParseModScheme(p.SubcarrierModulation)
		if err != nil {
			return Params{}, wrapConfigError("profile subcarrier modulation", err)
		}
		out.SubcarrierModulation = m
	}
	if p.Subcarriers != 0 {
		out.Subcarriers = p.Subcarriers
	}
	if p.CyclicPrefixLength != 0 {
		out.CyclicPrefixLength = p.CyclicPrefixLength
	}
	if p.TaperLength != 0 {
		out.TaperLength = p.TaperLength
	}
	if p.InnerFEC != "" {
		f, err := ofdmflex.ParseFECScheme(p.InnerFEC)
		if err != nil {
			return Params{}, wrapConfigError("profile inner fec", err)
		}
		out.InnerFEC = f
	}
	if p.OuterFEC != "" {
		f, err := ofdmflex.ParseFECScheme(p.OuterFEC)
		if err != nil {
			return Params{}, wrapConfigError("profile outer fec", err)
		}
		out.OuterFEC = f
	}
	if p.ID != "" {
		out.ID = p.ID
	}
	if p.DumpPath != "" {
		out.DumpPath = p.DumpPath
	}
	if p.Timeout != 0 {
		out.Timeout = p.Timeout
	}
	out.Audio = out.Audio || p.Audio
	out.Verbose = out.Verbose || p.Verbose
	return out, nil
}
