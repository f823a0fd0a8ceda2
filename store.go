// Package raleighsl is the top-level façade: it wires a configured
// object store to a TCP listener speaking the length-prefixed RPC
// frame protocol, dispatching each decoded request through
// internal/dispatch.
package raleighsl

import (
	"context"
	"net"
	"sync"

	"github.com/ehrlich-b/raleighsl/internal/buffer"
	"github.com/ehrlich-b/raleighsl/internal/dispatch"
	"github.com/ehrlich-b/raleighsl/internal/logging"
	"github.com/ehrlich-b/raleighsl/internal/rpc"
	"github.com/ehrlich-b/raleighsl/internal/store"
)

// StoreParams configures the object store backing a Server.
type StoreParams struct {
	Semantic store.SemanticPlugin
	Key      store.KeyPlugin
	Device   store.DevicePlugin
	Space    store.SpacePlugin
}

// DefaultParams returns a StoreParams using the flat semantic/key
// plugins and an in-memory device/space pair of the given size.
func DefaultParams(deviceSize int64) StoreParams {
	return StoreParams{
		Semantic: store.NewFlatSemantic(),
		Key:      store.NewFlatKey(),
		Device:   store.NewMemoryDevice(deviceSize),
		Space:    store.NewFreeListSpace(uint64(deviceSize)),
	}
}

// Options contains additional options for server construction.
type Options struct {
	Logger   Logger
	Observer Observer
}

// Logger is the minimal logging surface CreateAndServe accepts,
// matching the teacher's own Logger interface shape.
type Logger interface {
	Printf(format string, args ...any)
}

// Server listens for client connections and dispatches their requests
// against one store.Store.
type Server struct {
	listener   net.Listener
	dispatcher *dispatch.Dispatcher
	st         *store.Store
	metrics    *Metrics

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// Listen opens addr and returns a Server ready to Serve, mounting the
// store described by params.
func Listen(addr string, params StoreParams, options *Options) (*Server, error) {
	if options == nil {
		options = &Options{}
	}

	st, err := store.Open(store.Config{
		Semantic: params.Semantic,
		Key:      params.Key,
		Device:   params.Device,
		Space:    params.Space,
	})
	if err != nil {
		return nil, WrapError("server.listen", CodeIO, err)
	}

	metrics := NewMetrics()
	observer := options.Observer
	if observer == nil {
		observer = NewMetricsObserver(metrics)
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		st.Close()
		return nil, WrapError("server.listen", CodeIO, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		listener:   ln,
		dispatcher: dispatch.New(st, observer),
		st:         st,
		metrics:    metrics,
		ctx:        ctx,
		cancel:     cancel,
	}
	if options.Logger != nil {
		options.Logger.Printf("raleighsl: listening on %s", ln.Addr())
	} else {
		logging.Info("raleighsl: listening on %s", ln.Addr())
	}
	return s, nil
}

// Addr returns the server's bound network address.
func (s *Server) Addr() net.Addr { return s.listener.Addr() }

// Metrics returns the server's metrics instance.
func (s *Server) Metrics() *Metrics { return s.metrics }

// Serve accepts connections until the server is closed, handling each
// on its own goroutine. Returns nil on a clean shutdown via Close.
func (s *Server) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.ctx.Done():
				return nil
			default:
				return WrapError("server.serve", CodeIO, err)
			}
		}
		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(socket net.Conn) {
	defer s.wg.Done()

	var rc *rpc.Conn
	handlers := rpc.Handlers{
		Alloc: func(head rpc.MessageHead) (any, error) {
			return &bodyBuf{head: head, queue: buffer.NewChunkQueue()}, nil
		},
		Parse: func(ctx any, slice []byte) (rpc.ParseResult, error) {
			bb := ctx.(*bodyBuf)
			bb.queue.Append(slice)
			return rpc.ParseOK, nil
		},
		Exec: func(ctx any) {
			bb := ctx.(*bodyBuf)
			bb.data = bb.queue.Pop(bb.queue.Size())
			s.execRequest(rc, bb)
		},
	}
	rc = rpc.NewConn(socket, handlers)
	rc.MarkConnected()
	defer rc.Disconnect(nil)

	buf := make([]byte, 4096)
	for {
		n, err := socket.Read(buf)
		if n > 0 {
			if ferr := rc.Reader.Feed(buf[:n]); ferr != nil {
				return
			}
		}
		if err != nil {
			return
		}
	}
}

type bodyBuf struct {
	head  rpc.MessageHead
	queue *buffer.ChunkQueue
	data  []byte
}

func (s *Server) execRequest(rc *rpc.Conn, bb *bodyBuf) {
	req, err := dispatch.DecodeRequest(bb.data)
	var resp dispatch.Response
	if err != nil {
		resp = dispatch.Response{ErrCode: string(CodeInvalidArgument)}
	} else {
		resp = s.dispatcher.Handle(req)
	}

	payload := dispatch.EncodeResponse(resp)
	head, herr := rpc.EncodeMessageHead(rpc.MessageHead{MsgType: bb.head.MsgType, ReqID: bb.head.ReqID, ReqType: bb.head.ReqType})
	if herr != nil {
		return
	}
	frameLen := uint64(len(head) + len(payload))
	frameHdr, ferr := rpc.EncodeFrameHeader(rpc.FrameHeader{PkgType: 1, FrameLen: frameLen})
	if ferr != nil {
		return
	}

	full := append(frameHdr, head...)
	full = append(full, payload...)
	rc.Writer.Enqueue(full)
	rc.Writer.Flush(rc.Socket)
}

// Close stops accepting connections, waits for in-flight handlers to
// finish, and closes the underlying store.
func (s *Server) Close() error {
	s.cancel()
	s.listener.Close()
	s.wg.Wait()
	s.metrics.Stop()
	return s.st.Close()
}
