package ofdmflex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProperties() Properties {
	return Properties{
		Subcarriers:     16,
		CyclicPrefixLen: 4,
		TaperLen:        2,
		Modulation:      QPSK,
		InnerFEC:        FECHamming74,
		OuterFEC:        FECNone,
	}
}

// pumpFrame drains a Generator into a Synchronizer in FrameSamplesSize()
// chunks, matching the way Transmit/Receive Pipeline pull samples block by
// block rather than all at once.
func pumpFrame(t *testing.T, gen *Generator, sync *Synchronizer) {
	t.Helper()
	chunk := make([]complex64, gen.FrameSamplesSize())
	for {
		n, complete := gen.Write(chunk)
		sync.Execute(chunk[:n])
		if complete {
			break
		}
	}
	// Keep pumping zero samples until the synchronizer has consumed
	// everything it needs, matching the receive pipeline's shutdown drain.
	for sync.IsFrameOpen() {
		zero := make([]complex64, gen.FrameSamplesSize())
		sync.Execute(zero)
	}
}

func TestGeneratorSynchronizerRoundTrip(t *testing.T) {
	t.Parallel()

	props := testProperties()
	header := []byte{1, 2, 3, 4, 0, 0, 0, 7}
	payload := []byte("hello over the air")

	gen, err := NewGenerator(props)
	require.NoError(t, err)
	require.NoError(t, gen.Assemble(header, payload))

	var gotHeader, gotPayload []byte
	var headerValid, payloadValid bool
	calls := 0
	sync, err := NewSynchronizer(props, func(h []byte, hv bool, p []byte, pv bool) {
		calls++
		gotHeader, headerValid = h, hv
		gotPayload, payloadValid = p, pv
	})
	require.NoError(t, err)

	pumpFrame(t, gen, sync)

	require.Equal(t, 1, calls)
	assert.True(t, headerValid, "header reported invalid")
	assert.Equal(t, header, gotHeader)
	assert.True(t, payloadValid, "payload reported invalid")
	assert.Equal(t, payload, gotPayload)
}

func TestSynchronizerFlagsCorruptedPayload(t *testing.T) {
	t.Parallel()

	props := testProperties()
	header := []byte{9, 9, 9, 9, 0, 0, 0, 1}
	payload := []byte("a payload long enough to span several ofdm symbols")

	gen, err := NewGenerator(props)
	require.NoError(t, err)
	require.NoError(t, gen.Assemble(header, payload))

	samples := make([]complex64, 0, gen.FrameSamplesSize()*4)
	for {
		chunk := make([]complex64, gen.FrameSamplesSize())
		n, complete := gen.Write(chunk)
		samples = append(samples, chunk[:n]...)
		if complete {
			break
		}
	}

	// Corrupt a sample well past the preamble and header section so the
	// payload section decodes with a CRC mismatch but the header still
	// decodes fine.
	corruptAt := len(samples) - 5
	samples[corruptAt] += complex(3, -3)

	var headerValid, payloadValid bool
	calls := 0
	sync, err := NewSynchronizer(props, func(h []byte, hv bool, p []byte, pv bool) {
		calls++
		headerValid, payloadValid = hv, pv
	})
	require.NoError(t, err)

	sync.Execute(samples)
	for sync.IsFrameOpen() {
		sync.Execute(make([]complex64, gen.FrameSamplesSize()))
	}

	require.Equal(t, 1, calls)
	assert.True(t, headerValid, "header should still decode correctly when only the payload tail is corrupted")
	assert.False(t, payloadValid, "payload should have been flagged invalid after corruption")
}

func TestSynchronizerIgnoresSilence(t *testing.T) {
	t.Parallel()

	props := testProperties()
	calls := 0
	sync, err := NewSynchronizer(props, func([]byte, bool, []byte, bool) {
		calls++
	})
	require.NoError(t, err)

	sync.Execute(make([]complex64, 4096))
	assert.Equal(t, 0, calls, "callback invoked on pure silence")
	assert.False(t, sync.IsFrameOpen(), "synchronizer should remain in the searching state on silence")
}
