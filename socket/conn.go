package socket

import (
	"bufio"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/NVIDIA/aisnet/netdata"
	"github.com/NVIDIA/aisnet/status"
)

// Conn wraps a net.Conn with a buffered reader so the NetData header can be
// peeked without consuming it, and provides the char-stream and NetData
// framing helpers every socket actor sends and receives through.
type Conn struct {
	nc net.Conn
	br *bufio.Reader
	bw int // write buffer hint, currently unused beyond documentation

	lastActive atomic.Int64 // unix nanos, touched by every Recv/Send
}

// NewConn wraps nc with a bufio.Reader sized bufSize.
func NewConn(nc net.Conn, bufSize int) *Conn {
	if bufSize <= 0 {
		bufSize = DefaultBufSize
	}
	c := &Conn{nc: nc, br: bufio.NewReaderSize(nc, bufSize), bw: bufSize}
	c.touch()
	return c
}

func (c *Conn) touch() { c.lastActive.Store(time.Now().UnixNano()) }

// Idle reports how long it has been since the last successful Recv/Send on
// this connection.
func (c *Conn) Idle() time.Duration {
	return time.Since(time.Unix(0, c.lastActive.Load()))
}

// Raw returns the underlying net.Conn, for Close/SetDeadline/etc.
func (c *Conn) Raw() net.Conn { return c.nc }

// Close closes the underlying connection.
func (c *Conn) Close() error { return c.nc.Close() }

// SendChars writes s terminated by a single NUL byte, the char-stream
// protocol's end-of-transmission sentinel. s must not itself contain a NUL
// byte.
func (c *Conn) SendChars(s string) status.Status {
	buf := make([]byte, len(s)+1)
	copy(buf, s)
	buf[len(s)] = 0
	if _, err := c.nc.Write(buf); err != nil {
		return wrapIOErr("send", err)
	}
	c.touch()
	return status.New()
}

// RecvChars reads bytes up to and including the next NUL byte and returns
// them as a string with the terminator stripped.
func (c *Conn) RecvChars() (string, status.Status) {
	line, err := c.br.ReadBytes(0)
	if err != nil {
		return "", wrapIOErr("recv", err)
	}
	c.touch()
	return string(line[:len(line)-1]), status.New()
}

// SendND writes nd's Header and body to the connection.
func (c *Conn) SendND(nd *netdata.NetData) status.Status {
	if _, err := nd.WriteTo(c.nc); err != nil {
		return wrapIOErr("send", err)
	}
	c.touch()
	return status.New()
}

// PeekHeaderValid non-destructively inspects the next netdata.HeaderSize
// bytes and reports whether they form a header with a recognized magic
// number and version, without consuming them from the stream. Used by a
// dual-mode server to decide whether an accepted connection speaks NetData
// or falls back to the character-stream protocol.
func (c *Conn) PeekHeaderValid() (bool, status.Status) {
	peek, err := c.br.Peek(netdata.HeaderSize)
	if err != nil {
		return false, wrapIOErr("peek", err)
	}
	magic := netdata.ByteOrder.Uint32(peek[0:4])
	version := netdata.ByteOrder.Uint16(peek[8:10])
	return magic == netdata.Magic && version >= netdata.DefaultVersion, status.New()
}

// RecvND reads one full NetData frame, which must already be known to be
// available (e.g. via a prior PeekHeaderValid) — it consumes the header
// and exactly Header.Size payload bytes from the stream.
func (c *Conn) RecvND(nd *netdata.NetData) status.Status {
	if peek, err := c.br.Peek(netdata.HeaderSize); err == nil {
		if total := int64(netdata.ByteOrder.Uint32(peek[4:8])) + netdata.HeaderSize; total > MaxMessageSize {
			return status.FromDesc(fmt.Sprintf("socket: recv: frame size %d exceeds %d", total, MaxMessageSize), status.Invalid)
		}
	}
	if _, err := nd.ReadFrom(c.br); err != nil {
		return status.FromDesc(fmt.Sprintf("socket: recv: %v", err), status.Invalid)
	}
	c.touch()
	return status.New()
}
