package ofdmflex

import (
	"encoding/binary"
	"hash/crc32"
)

// No ecosystem CRC-32 library appears anywhere in the corpus this project
// draws on, so this uses the standard library's hash/crc32 (see DESIGN.md).

func appendCRC(data []byte) []byte {
	sum := crc32.ChecksumIEEE(data)
	out := make([]byte, len(data)+4)
	copy(out, data)
	binary.BigEndian.PutUint32(out[len(data):], sum)
	return out
}

// splitCRC separates the trailing 4-byte CRC-32 from data and reports
// whether it matches the preceding bytes. If data is too short to hold a
// CRC, it is treated as invalid.
func splitCRC(data []byte) (payload []byte, ok bool) {
	if len(data) < 4 {
		return nil, false
	}
	payload = data[:len(data)-4]
	want := binary.BigEndian.Uint32(data[len(data)-4:])
	got := crc32.ChecksumIEEE(payload)
	return payload, want == got
}
