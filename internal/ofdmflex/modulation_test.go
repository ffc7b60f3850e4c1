package ofdmflex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitsPerSymbolAndParse(t *testing.T) {
	t.Parallel()

	for _, m := range AvailableModulations {
		m := m
		t.Run(string(m), func(t *testing.T) {
			t.Parallel()

			b, err := BitsPerSymbol(m)
			require.NoError(t, err)
			assert.NotZero(t, b)

			_, err = ParseModScheme(string(m))
			assert.NoError(t, err)
		})
	}
	_, err := ParseModScheme("qam16")
	assert.Error(t, err, "ParseModScheme should reject an unsupported name")
}

func TestModulateDemodulateRoundTrip(t *testing.T) {
	t.Parallel()

	for _, m := range AvailableModulations {
		m := m
		t.Run(string(m), func(t *testing.T) {
			t.Parallel()

			mod, err := newModulator(m)
			require.NoError(t, err)

			// Enough bits for several symbols, including a partial
			// trailing group padded with zero by bitReader.next() past
			// the end.
			data := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x12, 0x34, 0x56, 0x78}
			r := newBitReader(data)
			var points []complex64
			for r.len() > 0 {
				points = append(points, mod.modulate(r))
			}

			w := newBitWriter()
			for _, p := range points {
				mod.demodulate(p, w)
			}
			got := w.bytes()

			totalBits := len(data) * 8
			gotBits := newBitReader(got)
			wantBits := newBitReader(data)
			for i := 0; i < totalBits; i++ {
				assert.Equalf(t, wantBits.next(), gotBits.next(), "bit %d mismatch after round trip", i)
			}
		})
	}
}

func TestGrayEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	for v := uint(0); v < 256; v++ {
		g := grayEncode(v)
		assert.Equal(t, v, grayDecode(g))
	}
}
