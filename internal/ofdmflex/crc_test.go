package ofdmflex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCRCRoundTrip(t *testing.T) {
	t.Parallel()

	data := []byte("payload bytes for crc check")
	withCRC := appendCRC(data)
	assert.Len(t, withCRC, len(data)+4)

	payload, ok := splitCRC(withCRC)
	assert.True(t, ok, "splitCRC reported invalid for an untouched frame")
	assert.Equal(t, data, payload)
}

func TestCRCDetectsCorruption(t *testing.T) {
	t.Parallel()

	data := []byte("another payload")
	withCRC := appendCRC(data)
	withCRC[0] ^= 0xFF

	_, ok := splitCRC(withCRC)
	assert.False(t, ok, "splitCRC should have reported invalid after corruption")
}

func TestSplitCRCTooShort(t *testing.T) {
	t.Parallel()

	_, ok := splitCRC([]byte{1, 2, 3})
	assert.False(t, ok, "splitCRC should reject input shorter than the CRC itself")
}
