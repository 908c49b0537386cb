package socket

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/NVIDIA/aisnet/cmn/cos"
	"github.com/NVIDIA/aisnet/status"
	"github.com/NVIDIA/aisnet/xsync"
)

// Client implements actor.Actor over a single outbound connection: Start
// dials the configured address, Shutdown closes it, and ProcessRequest
// sends a string request and waits for a string reply on the character
// stream. reply must be a *string.
type Client struct {
	params ClientParams

	mu   sync.Mutex
	conn *Conn
}

// NewClient returns a Client that will dial the address in params when
// Start is invoked (directly or via actor.Run).
func NewClient(params ClientParams) *Client {
	return &Client{params: params}
}

// Start implements actor.Actor: it resolves the configured address to one
// or more candidate endpoints and dials them in turn within ConnectTimeout,
// signaling sigStarted once a connection succeeds or every candidate has
// failed.
func (cl *Client) Start(sigStarted *xsync.Signal, st *status.Status) {
	defer sigStarted.Set()

	timeout := nonZeroDuration(cl.params.ConnectTimeout, defaultConnectTimeout)
	network := cl.params.network()
	port := fmt.Sprintf("%d", cl.params.Port)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	hosts, err := net.DefaultResolver.LookupHost(ctx, cl.params.Addr)
	cancel()
	if err != nil {
		*st = wrapIOErr(fmt.Sprintf("resolve %s", cl.params.Addr), err)
		return
	}

	var errs cos.Errs
	for _, host := range hosts {
		addr := net.JoinHostPort(host, port)
		nc, dialErr := net.DialTimeout(network, addr, timeout)
		if dialErr != nil {
			errs.Add(fmt.Errorf("dial %s: %w", addr, dialErr))
			continue
		}
		cl.mu.Lock()
		cl.conn = NewConn(nc, cl.params.bufferSize())
		cl.mu.Unlock()
		*st = status.New()
		return
	}

	_, joined := errs.JoinErr()
	*st = status.FromDesc(fmt.Sprintf("socket: no endpoint for %s reachable: %v", cl.params.Addr, joined), status.NetErr)
}

// Shutdown implements actor.Actor: it closes the connection, if any.
func (cl *Client) Shutdown(sigStopped *xsync.Signal) {
	defer sigStopped.Set()

	cl.mu.Lock()
	c := cl.conn
	cl.conn = nil
	cl.mu.Unlock()
	if c != nil {
		c.Close()
	}
}

// ProcessRequest implements actor.Actor for character-stream requests.
// request must be a string; reply must be a *string.
func (cl *Client) ProcessRequest(request, reply any) status.Status {
	s, ok := request.(string)
	if !ok {
		return status.FromDesc("socket: Client.ProcessRequest: request must be a string", status.Invalid)
	}
	out, ok := reply.(*string)
	if !ok {
		return status.FromDesc("socket: Client.ProcessRequest: reply must be a *string", status.Invalid)
	}
	return cl.RequestStr(s, out)
}

// RequestStr sends s terminated by NUL and blocks for the matching
// NUL-terminated reply, writing it into out. A send failure terminates
// the connection: the caller must Start a new Client to retry.
func (cl *Client) RequestStr(s string, out *string) status.Status {
	cl.mu.Lock()
	c := cl.conn
	cl.mu.Unlock()
	if c == nil {
		return status.FromDesc("socket: client is not connected", status.RuntimeErr)
	}

	if st := c.SendChars(s); !st.Ok() {
		c.Close()
		return st
	}
	reply, st := c.RecvChars()
	if !st.Ok() {
		c.Close()
		return st
	}
	*out = reply
	return status.New()
}

// currentConn returns the active connection, or nil if not started/connected.
func (cl *Client) currentConn() *Conn {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return cl.conn
}
