package ofdmtransfer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glv2/ofdm-transfer/internal/ofdmflex"
)

func testFrameProps() ofdmflex.Properties {
	return ofdmflex.Properties{
		Subcarriers:     16,
		CyclicPrefixLen: 4,
		TaperLen:        2,
		Modulation:      ofdmflex.QPSK,
		InnerFEC:        ofdmflex.FECHamming74,
		OuterFEC:        ofdmflex.FECNone,
	}
}

func TestFrameEncoderAssembleIncrementsCounter(t *testing.T) {
	t.Parallel()

	enc, err := newFrameEncoder(testFrameProps(), [4]byte{'t', 'e', 's', 't'})
	require.NoError(t, err)
	require.Equal(t, uint32(0), enc.counter)

	require.NoError(t, enc.assemble([]byte("hello")))
	assert.Equal(t, uint32(1), enc.counter)

	require.NoError(t, enc.assemble([]byte("world")))
	assert.Equal(t, uint32(2), enc.counter)
}

func TestFrameEncoderWriteChunksClipsAmplitude(t *testing.T) {
	t.Parallel()

	enc, err := newFrameEncoder(testFrameProps(), [4]byte{'i', 'd', 0, 0})
	require.NoError(t, err)
	require.NoError(t, enc.assemble([]byte("amplitude bounded payload")))

	samples := enc.writeChunks()
	require.NotEmpty(t, samples)
	for i, s := range samples {
		assert.LessOrEqualf(t, complexAbs(s), float32(maxAmplitude+1e-6), "sample %d amplitude", i)
	}
}

func TestFrameEncoderDecoderRoundTrip(t *testing.T) {
	t.Parallel()

	props := testFrameProps()
	id := [4]byte{'a', 'b', 'c', 'd'}

	enc, err := newFrameEncoder(props, id)
	require.NoError(t, err)
	payload := []byte("round trip through the frame codec")
	require.NoError(t, enc.assemble(payload))
	samples := enc.writeChunks()

	var delivered []byte
	dec, err := newFrameDecoder(props, id, false, func(p []byte) {
		delivered = append([]byte{}, p...)
	})
	require.NoError(t, err)

	dec.execute(samples)
	for dec.isFrameOpen() {
		dec.execute(make([]complex64, enc.frameSamplesSize()))
	}

	assert.Equal(t, payload, delivered)
}

func TestFrameDecoderDropsMismatchedID(t *testing.T) {
	t.Parallel()

	props := testFrameProps()
	enc, err := newFrameEncoder(props, [4]byte{'a', 'a', 'a', 'a'})
	require.NoError(t, err)
	require.NoError(t, enc.assemble([]byte("not for you")))
	samples := enc.writeChunks()

	delivered := false
	dec, err := newFrameDecoder(props, [4]byte{'b', 'b', 'b', 'b'}, false, func([]byte) {
		delivered = true
	})
	require.NoError(t, err)

	dec.execute(samples)
	for dec.isFrameOpen() {
		dec.execute(make([]complex64, enc.frameSamplesSize()))
	}

	assert.False(t, delivered, "payload should not have been delivered for a mismatched id")
}

func TestIdsEqual(t *testing.T) {
	t.Parallel()

	id := [4]byte{'w', 'x', 'y', 'z'}
	assert.True(t, idsEqual([]byte{'w', 'x', 'y', 'z', 0, 0}, id))
	assert.False(t, idsEqual([]byte{'w', 'x', 'y', 'Z'}, id))
	assert.False(t, idsEqual([]byte{'w', 'x'}, id), "a too-short header should not compare equal")
}
