package ofdmtransfer

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glv2/ofdm-transfer/internal/ofdmflex"
)

// onceDataSource hands out a single payload, then reports io.EOF forever
// after.
type onceDataSource struct {
	payload []byte
	sent    bool
}

func (s *onceDataSource) ReadPayload(buf []byte) (int, error) {
	if s.sent {
		return 0, io.EOF
	}
	n := copy(buf, s.payload)
	s.sent = true
	return n, nil
}

// collectingDataSink accumulates every payload handed to it by the
// Receive Pipeline.
type collectingDataSink struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (s *collectingDataSink) WritePayload(buf []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads = append(s.payloads, append([]byte{}, buf...))
	return len(buf), nil
}

func (s *collectingDataSink) first() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.payloads) == 0 {
		return nil
	}
	return s.payloads[0]
}

func endToEndParams(direction Direction, radioDriver string) Params {
	return Params{
		Direction:            direction,
		RadioDriver:          radioDriver,
		SampleRate:           48000,
		BitRate:              8000,
		SubcarrierModulation: ofdmflex.QPSK,
		Subcarriers:          32,
		CyclicPrefixLength:   8,
		TaperLength:          2,
		InnerFEC:             ofdmflex.FECHamming74,
		OuterFEC:             ofdmflex.FECNone,
		ID:                   "abcd",
	}
}

func transmitPayload(t *testing.T, params Params, payload []byte) {
	t.Helper()
	source := &onceDataSource{payload: payload}
	tx, err := CreateCallback(params, source, nil)
	require.NoError(t, err)
	require.NoError(t, tx.Start())
	require.NoError(t, tx.Close())
}

func TestTransferTransmitReceiveRoundTrip(t *testing.T) {
	t.Parallel()

	iqPath := filepath.Join(t.TempDir(), "air.iq")
	payload := []byte("a message sent over the simulated air interface")

	transmitPayload(t, endToEndParams(Transmit, "file="+iqPath), payload)

	sink := &collectingDataSink{}
	rx, err := CreateCallback(endToEndParams(Receive, "file="+iqPath), nil, sink)
	require.NoError(t, err)
	require.NoError(t, rx.Start())
	require.NoError(t, rx.Close())

	assert.Equal(t, payload, sink.first())
}

func TestTransferDropsPayloadForMismatchedID(t *testing.T) {
	t.Parallel()

	iqPath := filepath.Join(t.TempDir(), "air.iq")
	payload := []byte("not meant for this receiver")

	txParams := endToEndParams(Transmit, "file="+iqPath)
	txParams.ID = "wxyz"
	transmitPayload(t, txParams, payload)

	rxParams := endToEndParams(Receive, "file="+iqPath)
	rxParams.ID = "abcd"
	sink := &collectingDataSink{}
	rx, err := CreateCallback(rxParams, nil, sink)
	require.NoError(t, err)
	require.NoError(t, rx.Start())
	require.NoError(t, rx.Close())

	assert.Nil(t, sink.first(), "payload with mismatched id should have been dropped")
}

func TestTransferReceiveOnEmptyFileReturnsImmediately(t *testing.T) {
	t.Parallel()

	iqPath := filepath.Join(t.TempDir(), "air.iq")
	f, err := os.Create(iqPath)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	sink := &collectingDataSink{}
	rx, err := CreateCallback(endToEndParams(Receive, "file="+iqPath), nil, sink)
	require.NoError(t, err)

	// An empty file: ReadSamples returns (0, io.EOF) on the first call, so
	// Start should return without ever decoding a frame.
	require.NoError(t, rx.Start())
	require.NoError(t, rx.Close())

	assert.Nil(t, sink.first(), "expected no payload from an empty radio file")
}

func TestTransferStopFlagResetOnStart(t *testing.T) {
	t.Parallel()

	iqPath := filepath.Join(t.TempDir(), "air.iq")
	payload := []byte("start clears a previously set stop flag")

	transmitPayload(t, endToEndParams(Transmit, "file="+iqPath), payload)

	sink := &collectingDataSink{}
	rx, err := CreateCallback(endToEndParams(Receive, "file="+iqPath), nil, sink)
	require.NoError(t, err)

	// Stop called before Start must not wedge the next Start: Start
	// unconditionally clears both the per-transfer and process-wide flag.
	rx.Stop()
	require.NoError(t, rx.Start())
	require.NoError(t, rx.Close())

	assert.Equal(t, payload, sink.first())
}
