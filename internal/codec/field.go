package codec

import "fmt"

// ErrNeedMore signals that a decode call stopped short of a complete value
// because the input was truncated. It carries the number of additional
// bytes the caller should read before retrying — decoders never treat a
// short buffer as fatal (spec §4.1, §7: Truncated is transient and never
// user-visible).
type ErrNeedMore int

func (e ErrNeedMore) Error() string {
	return fmt.Sprintf("codec: need %d more byte(s)", int(e))
}

// fieldHeaderByte packs (id_bytes-1)<<5 | (len_bytes-1)<<2 into one byte,
// matching the teacher's ioctl-encoding bit-packing style in
// internal/uapi/constants.go's IoctlEncode.
func fieldHeaderByte(idBytes, lenBytes int) byte {
	return byte((idBytes-1)<<5 | (lenBytes-1)<<2)
}

// EncodeField encodes a (field_id, length) pair: a header byte followed by
// id in id_bytes and length in len_bytes, each using the minimal-bytes
// scheme of UintSize.
func EncodeField(id uint16, length uint64) []byte {
	idBytes := UintSize(uint64(id))
	lenBytes := UintSize(length)

	out := make([]byte, 1+idBytes+lenBytes)
	out[0] = fieldHeaderByte(idBytes, lenBytes)
	PutUintN(out[1:1+idBytes], uint64(id), idBytes)
	PutUintN(out[1+idBytes:1+idBytes+lenBytes], length, lenBytes)
	return out
}

// DecodeField decodes a (field_id, length) pair from the front of b.
// Returns the number of bytes consumed. If b is too short to contain a
// complete field header, it returns ErrNeedMore with the number of
// additional bytes required — never a fatal error.
func DecodeField(b []byte) (id uint16, length uint64, consumed int, err error) {
	if len(b) < 1 {
		return 0, 0, 0, ErrNeedMore(1)
	}

	idBytes := int(b[0]>>5) + 1
	lenBytes := int((b[0]>>2)&0x7) + 1
	need := 1 + idBytes + lenBytes

	if len(b) < need {
		return 0, 0, 0, ErrNeedMore(need - len(b))
	}

	idVal := GetUintN(b[1:1+idBytes], idBytes)
	lenVal := GetUintN(b[1+idBytes:1+idBytes+lenBytes], lenBytes)
	return uint16(idVal), lenVal, need, nil
}
