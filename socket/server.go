package socket

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/NVIDIA/aisnet/cmn/cos"
	"github.com/NVIDIA/aisnet/cmn/nlog"
	"github.com/NVIDIA/aisnet/hk"
	"github.com/NVIDIA/aisnet/pool"
	"github.com/NVIDIA/aisnet/status"
	"github.com/NVIDIA/aisnet/sys"
	"github.com/NVIDIA/aisnet/xsync"
)

// statsInterval is how often a running Server logs accept/connection
// counters through the shared housekeeper.
const statsInterval = 30 * time.Second

// Handler processes one accepted connection. The default, installed when
// no override is given, is an echo handler for char-stream connections;
// ServerNd installs its own NetData-dispatching handler instead.
type Handler func(c *Conn)

// Server implements actor.Actor: Start resolves and binds the listening
// socket and spawns the accept loop; Shutdown stops accepting and closes
// the listener. It is the base every mode-specific server (currently
// ServerNd) builds on; ProcessRequest is not implemented directly on
// Server itself.
type Server struct {
	params ServerParams

	handler Handler

	hkName string

	mu       sync.Mutex
	listener net.Listener
	conns    map[*Conn]struct{}

	stopPolling    atomic.Bool
	pollingStopped *xsync.Signal

	threadPool *pool.SocketThreadPool

	accepts atomic.Uint64
	active  atomic.Int64
}

// NewServer returns a Server that will dispatch accepted connections to
// handler. A nil handler installs DefaultCharStreamHandler.
func NewServer(params ServerParams, handler Handler) *Server {
	if handler == nil {
		handler = DefaultCharStreamHandler
	}
	s := &Server{
		params:         params,
		handler:        handler,
		hkName:         "socket-server-" + cos.GenUUID(),
		conns:          make(map[*Conn]struct{}),
		pollingStopped: xsync.NewSignal(),
	}
	if params.UseThreadPool {
		n := params.ThreadPoolSize
		if n <= 0 {
			n = sys.NumCPU()
		}
		s.threadPool = pool.NewSocket(params.bufferSize(), n)
	}
	return s
}

// DefaultCharStreamHandler echoes back every NUL-terminated string it
// receives until the peer closes the connection.
func DefaultCharStreamHandler(c *Conn) {
	for {
		s, st := c.RecvChars()
		if !st.Ok() {
			return
		}
		if st := c.SendChars(s); !st.Ok() {
			return
		}
	}
}

// Addr returns the listener's bound address, valid only after Start has
// signaled success.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Start implements actor.Actor: it binds and listens, then spawns the
// accept loop on its own goroutine, signaling sigStarted once listening
// has either succeeded or failed.
func (s *Server) Start(sigStarted *xsync.Signal, st *status.Status) {
	defer sigStarted.Set()

	addr := net.JoinHostPort(s.params.Addr, fmt.Sprintf("%d", s.params.Port))
	ctx, cancel := context.WithTimeout(context.Background(), nonZeroDuration(s.params.StartTimeout, defaultStartTimeout))
	defer cancel()
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, s.params.network(), addr)
	if err != nil {
		*st = status.FromDesc(fmt.Sprintf("socket: listen %s: %v", addr, err), status.NetErr)
		return
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	hk.DefaultHK.RegisterCB(s.hkName, s.reportAndReap, statsInterval)

	go s.acceptLoop()
	*st = status.New()
}

// reportAndReap is the housekeeping callback: it logs accept/connection
// counters and, when ServerParams.IdleTimeout is set, closes any
// connection that has had no successful Recv/Send for longer than that.
func (s *Server) reportAndReap() time.Duration {
	nlog.Infof("socket: %s: accepts=%d active=%d", s.hkName, s.accepts.Load(), s.active.Load())

	if s.params.IdleTimeout > 0 {
		s.mu.Lock()
		var idle []*Conn
		for c := range s.conns {
			if c.Idle() > s.params.IdleTimeout {
				idle = append(idle, c)
			}
		}
		s.mu.Unlock()
		for _, c := range idle {
			c.Close() // unblocks the handler's next Recv, which then returns
		}
	}
	return statsInterval
}

// Shutdown implements actor.Actor: it flags the accept loop to stop,
// closes the listener to unblock a pending Accept, and waits for the
// accept loop to confirm it has returned.
func (s *Server) Shutdown(sigStopped *xsync.Signal) {
	defer sigStopped.Set()

	hk.DefaultHK.Unreg(s.hkName)

	s.stopPolling.Store(true)
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln != nil {
		ln.Close()
	}
	if !s.pollingStopped.WaitFor(s.params.shutdownTimeout()) {
		nlog.Warningf("socket: %s: accept loop did not stop within %s, proceeding anyway", s.hkName, s.params.shutdownTimeout())
	}

	if s.threadPool != nil {
		s.threadPool.Close()
	}
}

// ProcessRequest is not implemented on the base Server; ServerNd provides
// the dispatchable surface a caller actually talks to.
func (s *Server) ProcessRequest(_, _ any) status.Status {
	return status.FromDesc("socket: Server does not implement ProcessRequest", status.NotImplemented)
}

func (s *Server) acceptLoop() {
	defer s.pollingStopped.Set()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.stopPolling.Load() {
				return
			}
			nlog.Errorf("socket: accept: %v", err)
			continue
		}
		s.accepts.Add(1)
		if m := s.params.Metrics; m != nil {
			m.AcceptsTotal.Inc()
		}
		c := NewConn(conn, s.params.bufferSize())

		if s.threadPool != nil {
			if !s.threadPool.Enqueue(func() { s.serve(c) }) {
				c.Close()
			}
			continue
		}
		s.serve(c)
	}
}

func (s *Server) serve(c *Conn) {
	s.active.Add(1)
	s.mu.Lock()
	s.conns[c] = struct{}{}
	s.mu.Unlock()
	if m := s.params.Metrics; m != nil {
		m.ActiveConnections.Inc()
	}

	defer func() {
		s.mu.Lock()
		delete(s.conns, c)
		s.mu.Unlock()
		s.active.Add(-1)
		if m := s.params.Metrics; m != nil {
			m.ActiveConnections.Dec()
		}
		c.Close()
	}()
	s.handler(c)
}

// Accepts returns the total number of connections accepted so far.
func (s *Server) Accepts() uint64 { return s.accepts.Load() }

// ActiveConnections returns the number of connections currently being
// served.
func (s *Server) ActiveConnections() int64 { return s.active.Load() }
