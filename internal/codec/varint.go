package codec

// UintSize returns the number of bytes needed to encode v in the
// minimal-bytes variable-width scheme: 0..=255 takes 1 byte, 256..=65535
// takes 2, and so on. uint_size(v) = max(1, ceil(log256(v+1))).
func UintSize(v uint64) int {
	n := 1
	for v >= 1<<8 {
		v >>= 8
		n++
	}
	return n
}

// EncodeUint encodes v using the minimal number of big-endian bytes.
func EncodeUint(v uint64) []byte {
	n := UintSize(v)
	b := make([]byte, n)
	PutUintN(b, v, n)
	return b
}

// DecodeUint decodes a minimal-bytes big-endian integer of width n from the
// front of b. Callers must already know n (it travels alongside the value
// in a field header, see DecodeField).
func DecodeUint(b []byte, n int) (uint64, error) {
	if len(b) < n {
		return 0, ErrNeedMore(n - len(b))
	}
	return GetUintN(b, n), nil
}
