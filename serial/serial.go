// Package serial holds the shared little-endian primitive encodings used
// across metadata, bin metadata, LUTs and history records: fixed-width
// unsigned integers and length-prefixed strings.
package serial

import (
	"encoding/binary"
	"fmt"
)

// PutUint64 appends v to buf in little-endian order.
func PutUint64(buf []byte, v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return append(buf, b[:]...)
}

// GetUint64 reads a little-endian uint64 from the front of buf and
// returns the value plus the remaining bytes.
func GetUint64(buf []byte) (uint64, []byte, error) {
	if len(buf) < 8 {
		return 0, nil, fmt.Errorf("serial: short buffer reading uint64 (have %d bytes)", len(buf))
	}
	return binary.LittleEndian.Uint64(buf), buf[8:], nil
}

// PutString appends a u64 length prefix followed by the raw ASCII bytes.
func PutString(buf []byte, s string) []byte {
	buf = PutUint64(buf, uint64(len(s)))
	return append(buf, s...)
}

// GetString reads a length-prefixed string from the front of buf and
// returns it plus the remaining bytes.
func GetString(buf []byte) (string, []byte, error) {
	n, rest, err := GetUint64(buf)
	if err != nil {
		return "", nil, fmt.Errorf("serial: reading string length: %w", err)
	}
	if uint64(len(rest)) < n {
		return "", nil, fmt.Errorf("serial: short buffer reading string of length %d (have %d bytes)", n, len(rest))
	}
	return string(rest[:n]), rest[n:], nil
}

// PutUint64Array appends a LUT-style array of u64 values, little-endian,
// with no length prefix (the caller already knows the expected count).
func PutUint64Array(buf []byte, vals []uint64) []byte {
	for _, v := range vals {
		buf = PutUint64(buf, v)
	}
	return buf
}

// GetUint64Array decodes n little-endian uint64 values from buf.
func GetUint64Array(buf []byte, n int) ([]uint64, error) {
	if len(buf) < n*8 {
		return nil, fmt.Errorf("serial: short buffer reading %d uint64 values (have %d bytes)", n, len(buf))
	}
	out := make([]uint64, n)
	for i := 0; i < n; i++ {
		out[i] = binary.LittleEndian.Uint64(buf[i*8 : i*8+8])
	}
	return out, nil
}
