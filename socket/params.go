// Package socket implements the TCP transport that carries both raw
// character streams and framed NetData messages: connection primitives,
// a pooled accept-loop server with an id-keyed RPC handler registry, and
// an Actor-based client with the matching request/reply helpers.
package socket

import "time"

// Mode selects how a Server (and the Conn it hands a handler) interprets
// bytes on the wire.
type Mode int

const (
	// CharStream treats the connection as a NUL-terminated string
	// protocol; ModeNetData connections exchange framed NetData messages.
	CharStream Mode = iota
	ModeNetData
)

const (
	// AnyAddr binds to all interfaces; LocalAddr is the client default.
	AnyAddr   = "0.0.0.0"
	LocalAddr = "127.0.0.1"

	// DefaultPort is shared by SocketParams::kDefaultPort in the original.
	DefaultPort = 4321

	// DefaultBufSize matches stdio.h's BUFSIZ on most libc implementations.
	DefaultBufSize = 8192

	// MaxMessageSize bounds a single NetData frame's total size (header +
	// payload), guarding against a corrupted or hostile Header.Size field.
	MaxMessageSize = 4 << 20
)

// Params holds the configuration common to both client and server
// connections.
type Params struct {
	Addr    string
	Port    int
	Network string // "tcp", "tcp4", or "tcp6"; empty defaults to "tcp"

	BufferSize int

	Compression        int // netdata.AlgoNone / netdata.AlgoZlib
	CompressionLevel   int
	CompressionMinSize int
}

// DefaultParams returns Params with the library defaults: localhost,
// DefaultPort, an 8 KiB buffer, no compression.
func DefaultParams() Params {
	return Params{
		Addr:       LocalAddr,
		Port:       DefaultPort,
		Network:    "tcp",
		BufferSize: DefaultBufSize,
	}
}

func (p Params) network() string {
	if p.Network == "" {
		return "tcp"
	}
	return p.Network
}

func (p Params) bufferSize() int {
	if p.BufferSize <= 0 {
		return DefaultBufSize
	}
	return p.BufferSize
}

// ClientParams configures a Client/ClientNd.
type ClientParams struct {
	Params

	ConnectTimeout time.Duration
	CloseTimeout   time.Duration
}

// DefaultClientParams returns client defaults per spec.md §6's
// ClientParams table.
func DefaultClientParams() ClientParams {
	return ClientParams{
		Params:         DefaultParams(),
		ConnectTimeout: defaultConnectTimeout,
		CloseTimeout:   defaultCloseTimeout,
	}
}

// ServerParams configures a Server/ServerNd.
type ServerParams struct {
	Params

	Mode Mode

	Backlog int // unused by net.Listen directly; kept for parity/logging

	UseThreadPool  bool
	ThreadPoolSize int

	StartTimeout    time.Duration
	ShutdownTimeout time.Duration

	// IdleTimeout, when > 0, is an ambient hk-driven reaper threshold for
	// the server's open connections, in either mode (see DESIGN.md C14);
	// zero disables it.
	IdleTimeout time.Duration

	// Metrics, when non-nil, receives per-server Prometheus instrumentation.
	Metrics *Metrics
}

func (p ServerParams) shutdownTimeout() time.Duration {
	return nonZeroDuration(p.ShutdownTimeout, defaultShutdownTimeout)
}

// DefaultServerParams returns server defaults: bind-any, character-stream
// mode, no pool (serial dispatch on the accept goroutine).
func DefaultServerParams() ServerParams {
	p := DefaultParams()
	p.Addr = AnyAddr
	return ServerParams{
		Params:          p,
		Mode:            CharStream,
		StartTimeout:    defaultStartTimeout,
		ShutdownTimeout: defaultShutdownTimeout,
	}
}
