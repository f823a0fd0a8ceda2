package rpc

import (
	"testing"

	"github.com/ehrlich-b/raleighsl/internal/codec"
	"github.com/stretchr/testify/require"
)

func TestFrameHeaderRoundTrip(t *testing.T) {
	cases := []FrameHeader{
		{PkgType: 3, FrameLen: 0, FwdLen: 0},
		{PkgType: 1, FrameLen: 200, FwdLen: 0},
		{PkgType: 7, FrameLen: 70000, FwdLen: 12},
		{PkgType: 15, FrameLen: 1 << 24, FwdLen: 1 << 16},
	}
	for _, c := range cases {
		enc, err := EncodeFrameHeader(c)
		require.NoError(t, err)

		got, n, err := DecodeFrameHeader(enc)
		require.NoError(t, err)
		require.Equal(t, len(enc), n)
		require.Equal(t, c, got)
	}
}

func TestFrameHeaderNeedsMore(t *testing.T) {
	hdr := FrameHeader{PkgType: 2, FrameLen: 70000, FwdLen: 500}
	enc, err := EncodeFrameHeader(hdr)
	require.NoError(t, err)

	for i := 0; i < len(enc); i++ {
		_, _, err := DecodeFrameHeader(enc[:i])
		require.Error(t, err)
		_, ok := err.(codec.ErrNeedMore)
		require.True(t, ok, "byte %d should report need-more, got %v", i, err)
	}
}

func TestMessageHeadRoundTrip(t *testing.T) {
	cases := []MessageHead{
		{MsgType: 0, ReqID: 0, ReqType: 0},
		{MsgType: 5, ReqID: 99999, ReqType: 3},
		{MsgType: 1 << 20, ReqID: 1 << 30, ReqType: 15},
	}
	for _, c := range cases {
		enc, err := EncodeMessageHead(c)
		require.NoError(t, err)
		got, n, err := DecodeMessageHead(enc)
		require.NoError(t, err)
		require.Equal(t, len(enc), n)
		require.Equal(t, c, got)
	}
}
