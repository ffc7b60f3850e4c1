package ofdmflex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBitReaderWriterRoundTrip(t *testing.T) {
	t.Parallel()

	data := []byte{0xA5, 0x3C, 0xFF, 0x00, 0x81}

	r := newBitReader(data)
	w := newBitWriter()
	for r.len() > 0 {
		w.writeBit(r.next())
	}
	assert.Equal(t, data, w.bytes())
}

func TestBitReaderMSBFirst(t *testing.T) {
	t.Parallel()

	r := newBitReader([]byte{0x80})
	assert.Equal(t, byte(1), r.next(), "first bit of 0x80 should be 1")
	for i := 0; i < 7; i++ {
		assert.Equalf(t, byte(0), r.next(), "bit %d of 0x80 should be 0", i+1)
	}
}

func TestBitReaderPastEndReturnsZero(t *testing.T) {
	t.Parallel()

	r := newBitReader([]byte{0xFF})
	for i := 0; i < 8; i++ {
		r.next()
	}
	assert.Equal(t, byte(0), r.next(), "reading past end should return 0")
	assert.Equal(t, 0, r.len())
}

func TestBitWriterWriteBits(t *testing.T) {
	t.Parallel()

	w := newBitWriter()
	w.writeBits(0x5, 4) // 0101
	w.writeBits(0xA, 4) // 1010
	assert.Equal(t, []byte{0x5A}, w.bytes())
}

func TestBitWriterPartialByteZeroPadded(t *testing.T) {
	t.Parallel()

	w := newBitWriter()
	w.writeBits(0x3, 3) // 011
	assert.Equal(t, []byte{0x60}, w.bytes())
}
