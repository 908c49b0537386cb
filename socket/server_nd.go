package socket

import (
	"fmt"
	"sync"
	"time"

	"github.com/NVIDIA/aisnet/cmn/nlog"
	"github.com/NVIDIA/aisnet/netdata"
	"github.com/NVIDIA/aisnet/status"
)

// RequestHandler processes one decoded NetData request and writes its
// reply, returning the status to report back to the caller in the reply
// header.
type RequestHandler func(req, reply *netdata.NetData) status.Status

// DefaultHandlerID is the object id a bare ServerNd registers its echo
// handler at by default. It carries no fallback meaning: a request for
// any other id with no registered handler gets a NotImplemented reply.
const DefaultHandlerID netdata.ID = 0

// ServerNd is a Server whose connections exchange framed NetData messages
// instead of (or, on a port configured with Mode CharStream, in addition
// to) character streams: each connection is read in a loop, every frame is
// decompressed, dispatched by Header.ID to a registered RequestHandler,
// and the reply is compressed and written back.
type ServerNd struct {
	*Server

	compressor *netdata.Compressor

	mu       sync.RWMutex
	handlers map[netdata.ID]RequestHandler
}

// NewServerNd returns a ServerNd. A default echo handler is installed at
// DefaultHandlerID; callers override it with Register if they want
// different id-0 behavior.
func NewServerNd(params ServerParams) *ServerNd {
	s := &ServerNd{
		compressor: netdata.NewCompressorWith(params.Compression, params.CompressionLevel, nonZero(params.CompressionMinSize, netdata.DefaultMinSize)),
		handlers:   make(map[netdata.ID]RequestHandler),
	}
	s.handlers[DefaultHandlerID] = echoND
	s.Server = NewServer(params, s.handleConn)
	return s
}

func nonZero(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func echoND(req, reply *netdata.NetData) status.Status {
	reply.CopyFrom(req)
	return status.New()
}

// Register installs handler for requests carrying object id id, replacing
// any previous handler for that id.
func (s *ServerNd) Register(id netdata.ID, handler RequestHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[id] = handler
}

// Unregister removes the handler for id. Requests for an id with no
// handler get a NotImplemented reply; there is no fallback to
// DefaultHandlerID's handler for other ids.
func (s *ServerNd) Unregister(id netdata.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.handlers, id)
}

func (s *ServerNd) lookup(id netdata.ID) (RequestHandler, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.handlers[id]
	return h, ok
}

// handleConn is the connection handler wired into the embedded Server: on
// a connection configured for NetData it loops decode/dispatch/encode
// until the peer disconnects or sends a frame with an invalid header. On
// a port whose Mode is CharStream but whose first frame fails the NetData
// header check, it falls back to the character-stream echo handler,
// supporting a single listener serving both protocols.
func (s *ServerNd) handleConn(c *Conn) {
	if s.Server.params.Mode == CharStream {
		valid, st := c.PeekHeaderValid()
		if !st.Ok() || !valid {
			DefaultCharStreamHandler(c)
			return
		}
	}

	for {
		req := netdata.New()
		if st := c.RecvND(req); !st.Ok() {
			return
		}

		reply := netdata.New()
		st := s.dispatch(req, reply)
		reply.Header.ID = req.Header.ID
		if !st.Ok() {
			s.replyError(reply, st)
			c.SendND(reply)
			return
		}
		if st := c.SendND(reply); !st.Ok() {
			return
		}
	}
}

func (s *ServerNd) dispatch(req, reply *netdata.NetData) (st status.Status) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			st = status.FromDesc(fmt.Sprintf("socket: handler panic: %v", r), status.RuntimeErr)
			nlog.Errorf("socket: recovered panic dispatching id=%d: %v", req.Header.ID, r)
		}
		if m := s.Server.params.Metrics; m != nil {
			m.DispatchSeconds.Observe(time.Since(start).Seconds())
		}
	}()

	if st := s.compressor.Uncompress(req); !st.Ok() {
		return st
	}
	handler, ok := s.lookup(req.Header.ID)
	if !ok {
		return status.FromDesc(fmt.Sprintf("socket: no handler for id %d", req.Header.ID), status.NotImplemented)
	}
	if st := handler(req, reply); !st.Ok() {
		return st
	}
	uncompressedOut := reply.Size()
	st = s.compressor.Compress(reply)
	if m := s.Server.params.Metrics; m != nil {
		if compressed := reply.Size(); compressed > 0 && reply.Header.Compression() != netdata.AlgoNone {
			m.CompressionRatio.Observe(float64(uncompressedOut) / float64(compressed))
		}
	}
	return st
}

// replyError overwrites reply's header status with st's code (or
// Unspecified if st carries none), leaving whatever body the handler may
// have partially written — callers read the header status first and
// should not trust the body when it is non-zero.
func (s *ServerNd) replyError(reply *netdata.NetData, st status.Status) {
	reply.Header.Status = int16(st.Code())
}
