package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUintSizeAndRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		v    uint64
		size int
	}{
		{"zero", 0, 1},
		{"one byte max", 255, 1},
		{"two bytes min", 256, 2},
		{"two bytes max", 65535, 2},
		{"three bytes min", 65536, 3},
		{"eight bytes", 1 << 56, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.size, UintSize(tt.v))

			enc := EncodeUint(tt.v)
			require.Len(t, enc, tt.size)

			got, err := DecodeUint(enc, tt.size)
			require.NoError(t, err)
			require.Equal(t, tt.v, got)
		})
	}
}

func TestDecodeUintNeedsMore(t *testing.T) {
	_, err := DecodeUint([]byte{0x01}, 4)
	require.Error(t, err)
	var needMore ErrNeedMore
	require.ErrorAs(t, err, &needMore)
	require.Equal(t, ErrNeedMore(3), needMore)
}

func TestFieldRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		id     uint16
		length uint64
	}{
		{"zero length", 1, 0},
		{"small", 7, 42},
		{"big id", 65000, 5},
		{"big length", 3, 1 << 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := EncodeField(tt.id, tt.length)

			id, length, consumed, err := DecodeField(enc)
			require.NoError(t, err)
			require.Equal(t, tt.id, id)
			require.Equal(t, tt.length, length)
			require.Equal(t, len(enc), consumed)
		})
	}
}

func TestDecodeFieldTruncated(t *testing.T) {
	enc := EncodeField(300, 1<<20)

	for n := 0; n < len(enc); n++ {
		_, _, _, err := DecodeField(enc[:n])
		require.Error(t, err, "prefix of length %d should be truncated", n)
		var needMore ErrNeedMore
		require.ErrorAs(t, err, &needMore)
	}
}
