package socket_test

import (
	"testing"

	"github.com/NVIDIA/aisnet/socket"
)

func TestDefaultParams(t *testing.T) {
	p := socket.DefaultParams()
	if p.Port != socket.DefaultPort {
		t.Fatalf("Port = %d, want %d", p.Port, socket.DefaultPort)
	}
	if p.BufferSize != socket.DefaultBufSize {
		t.Fatalf("BufferSize = %d, want %d", p.BufferSize, socket.DefaultBufSize)
	}

	sp := socket.DefaultServerParams()
	if sp.Addr != socket.AnyAddr {
		t.Fatalf("ServerParams.Addr = %q, want %q", sp.Addr, socket.AnyAddr)
	}
	if sp.Mode != socket.CharStream {
		t.Fatalf("ServerParams.Mode = %v, want CharStream", sp.Mode)
	}

	cp := socket.DefaultClientParams()
	if cp.Addr != socket.LocalAddr {
		t.Fatalf("ClientParams.Addr = %q, want %q", cp.Addr, socket.LocalAddr)
	}
	if cp.ConnectTimeout <= 0 {
		t.Fatal("ClientParams.ConnectTimeout should be positive")
	}
}
