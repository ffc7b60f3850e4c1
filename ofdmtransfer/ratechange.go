package ofdmtransfer

import "github.com/glv2/ofdm-transfer/internal/resample"

const resamplerStopbandDB = 60

// rateConverter wires the polyphase Rate Converter (§4.4) into the
// pipeline with the transmit/receive ratio convention of §4.4:
//
//	transmit: R = sample_rate / (bit_rate * samples_per_bit)  (upsample)
//	receive:  R = (bit_rate * samples_per_bit) / sample_rate  (downsample)
type rateConverter struct {
	r *resample.Resampler
}

func newTransmitRateConverter(sampleRate, bitRate, samplesPerBit float64) *rateConverter {
	ratio := sampleRate / (bitRate * samplesPerBit)
	return &rateConverter{r: resample.New(ratio, resamplerStopbandDB)}
}

func newReceiveRateConverter(sampleRate, bitRate, samplesPerBit float64) *rateConverter {
	ratio := (bitRate * samplesPerBit) / sampleRate
	return &rateConverter{r: resample.New(ratio, resamplerStopbandDB)}
}

func (c *rateConverter) execute(in []complex64) []complex64 {
	return c.r.Execute(in)
}

// delay is the ceil'd group delay (§4.4) used to flush transients on
// shutdown.
func (c *rateConverter) delay() int {
	return c.r.Delay()
}

func (c *rateConverter) ratio() float64 {
	return c.r.Ratio()
}
