// Package codec implements the primitive encoders used everywhere else in
// the store: fixed-width big-endian integers, a minimal-bytes variable-width
// integer, and the (field-id, length) TLV header used by the wire protocol
// and the data-block map.
package codec

import "encoding/binary"

// PutU16 writes v as 2 big-endian bytes into b[0:2].
func PutU16(b []byte, v uint16) { binary.BigEndian.PutUint16(b, v) }

// GetU16 reads 2 big-endian bytes from b[0:2].
func GetU16(b []byte) uint16 { return binary.BigEndian.Uint16(b) }

// PutU32 writes v as 4 big-endian bytes into b[0:4].
func PutU32(b []byte, v uint32) { binary.BigEndian.PutUint32(b, v) }

// GetU32 reads 4 big-endian bytes from b[0:4].
func GetU32(b []byte) uint32 { return binary.BigEndian.Uint32(b) }

// PutU64 writes v as 8 big-endian bytes into b[0:8].
func PutU64(b []byte, v uint64) { binary.BigEndian.PutUint64(b, v) }

// GetU64 reads 8 big-endian bytes from b[0:8].
func GetU64(b []byte) uint64 { return binary.BigEndian.Uint64(b) }

// PutUintN writes the low n bytes of v, big-endian, into b[0:n]. n must be
// in [1,8].
func PutUintN(b []byte, v uint64, n int) {
	for i := 0; i < n; i++ {
		b[n-1-i] = byte(v >> (8 * i))
	}
}

// GetUintN reads n big-endian bytes from b[0:n]. n must be in [1,8].
func GetUintN(b []byte, n int) uint64 {
	var v uint64
	for i := 0; i < n; i++ {
		v = v<<8 | uint64(b[i])
	}
	return v
}
