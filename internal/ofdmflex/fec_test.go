package ofdmflex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFECScheme(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"none", "rep3", "h74", "h128", "secded3932"} {
		_, err := ParseFECScheme(name)
		assert.NoErrorf(t, err, "ParseFECScheme(%q)", name)
	}
	_, err := ParseFECScheme("rs8")
	assert.Error(t, err, "ParseFECScheme(%q) should have failed", "rs8")
}

func TestFECRoundTrip(t *testing.T) {
	t.Parallel()

	data := []byte("the quick brown fox jumps over the lazy dog")
	for _, scheme := range AvailableFECSchemes {
		scheme := scheme
		t.Run(string(scheme), func(t *testing.T) {
			t.Parallel()

			coded, err := encode(scheme, data)
			require.NoError(t, err)
			assert.Equal(t, encodedLen(scheme, len(data)), len(coded))
			assert.Equal(t, len(data), decodedLen(scheme, len(coded)))

			decoded, err := decode(scheme, coded)
			require.NoError(t, err)
			assert.Equal(t, data, decoded[:len(data)])
		})
	}
}

func TestHamming74CorrectsSingleBitError(t *testing.T) {
	t.Parallel()

	data := []byte{0x5A}
	coded := hamming74Encode(data)

	// Flip one bit in the first coded nibble's codeword.
	coded[0] ^= 0x04

	decoded := hamming74Decode(coded)
	require.NotEmpty(t, decoded)
	assert.Equal(t, data[0], decoded[0])
}

func TestHamming74EncodeDecodeNibble(t *testing.T) {
	t.Parallel()

	for d := byte(0); d < 16; d++ {
		c := hamming74EncodeNibble(d)
		assert.Equalf(t, d, hamming74DecodeNibble(c), "nibble %#x", d)
	}
}

func TestRep3MajorityCorrection(t *testing.T) {
	t.Parallel()

	data := []byte{0xF0}
	coded := repeatEncode(data, 3)
	// Corrupt one of the three copies entirely.
	coded[0] = ^coded[0]
	decoded := repeatDecode(coded, 3)
	assert.Equal(t, data[0], decoded[0], "majority vote failed")
}
