package rpc

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildFrame assembles one complete wire frame with no forward-data.
func buildFrame(t *testing.T, msgType, reqID uint64, reqType byte, payload []byte) []byte {
	t.Helper()
	head, err := EncodeMessageHead(MessageHead{MsgType: msgType, ReqID: reqID, ReqType: reqType})
	require.NoError(t, err)

	frameLen := uint64(len(head) + len(payload))
	hdr, err := EncodeFrameHeader(FrameHeader{PkgType: 1, FrameLen: frameLen})
	require.NoError(t, err)

	var buf bytes.Buffer
	buf.Write(hdr)
	buf.Write(head)
	buf.Write(payload)
	return buf.Bytes()
}

func TestInboundReaderSingleFrame(t *testing.T) {
	var gotHead MessageHead
	var gotPayload []byte
	executed := false

	h := Handlers{
		Alloc: func(head MessageHead) (any, error) {
			gotHead = head
			return &gotPayload, nil
		},
		Parse: func(ctx any, slice []byte) (ParseResult, error) {
			p := ctx.(*[]byte)
			*p = append(*p, slice...)
			return ParseOK, nil
		},
		Exec: func(ctx any) { executed = true },
	}

	r := NewInboundReader(h)
	frame := buildFrame(t, 7, 42, 1, []byte("hello world"))
	require.NoError(t, r.Feed(frame))

	require.True(t, executed)
	require.Equal(t, uint64(7), gotHead.MsgType)
	require.Equal(t, uint64(42), gotHead.ReqID)
	require.Equal(t, "hello world", string(gotPayload))
	require.False(t, r.InFrame())
}

func TestInboundReaderByteAtATime(t *testing.T) {
	var gotPayload []byte
	execCount := 0

	h := Handlers{
		Alloc: func(head MessageHead) (any, error) { return &gotPayload, nil },
		Parse: func(ctx any, slice []byte) (ParseResult, error) {
			p := ctx.(*[]byte)
			*p = append(*p, slice...)
			return ParseOK, nil
		},
		Exec: func(ctx any) { execCount++ },
	}

	r := NewInboundReader(h)
	frame := buildFrame(t, 1, 1, 0, []byte("streamed-payload"))
	for _, b := range frame {
		require.NoError(t, r.Feed([]byte{b}))
	}

	require.Equal(t, 1, execCount)
	require.Equal(t, "streamed-payload", string(gotPayload))
}

func TestInboundReaderTwoFramesInOneChunk(t *testing.T) {
	var payloads []string
	h := Handlers{
		Alloc: func(head MessageHead) (any, error) {
			var buf []byte
			return &buf, nil
		},
		Parse: func(ctx any, slice []byte) (ParseResult, error) {
			p := ctx.(*[]byte)
			*p = append(*p, slice...)
			return ParseOK, nil
		},
		Exec: func(ctx any) {
			p := ctx.(*[]byte)
			payloads = append(payloads, string(*p))
		},
	}

	r := NewInboundReader(h)
	a := buildFrame(t, 1, 1, 0, []byte("first"))
	b := buildFrame(t, 1, 2, 0, []byte("second"))
	require.NoError(t, r.Feed(append(a, b...)))

	require.Equal(t, []string{"first", "second"}, payloads)
}

func TestInboundReaderAllocErrorIsFatal(t *testing.T) {
	h := Handlers{
		Alloc: func(head MessageHead) (any, error) { return nil, errAllocBoom },
		Parse: func(ctx any, slice []byte) (ParseResult, error) { return ParseOK, nil },
		Exec:  func(ctx any) {},
	}
	r := NewInboundReader(h)
	frame := buildFrame(t, 1, 1, 0, []byte("x"))
	err := r.Feed(frame)
	require.Error(t, err)
	var fatal *ErrFatal
	require.ErrorAs(t, err, &fatal)
}

func TestInboundReaderZeroLengthPayload(t *testing.T) {
	parseCalls := 0
	executed := false
	h := Handlers{
		Alloc: func(head MessageHead) (any, error) { return nil, nil },
		Parse: func(ctx any, slice []byte) (ParseResult, error) {
			parseCalls++
			require.Empty(t, slice)
			return ParseOK, nil
		},
		Exec: func(ctx any) { executed = true },
	}
	r := NewInboundReader(h)
	frame := buildFrame(t, 1, 1, 0, nil)
	require.NoError(t, r.Feed(frame))
	require.Equal(t, 1, parseCalls)
	require.True(t, executed)
}

type boomError struct{}

func (boomError) Error() string { return "alloc boom" }

var errAllocBoom = boomError{}
