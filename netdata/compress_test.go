package netdata_test

import (
	"strings"
	"testing"

	"github.com/NVIDIA/aisnet/netdata"
)

func TestCompressUncompressRoundTrip(t *testing.T) {
	nd := netdata.New()
	enc := netdata.NewEncoder(nd)
	payload := strings.Repeat("compress me please ", 50) // well over the default threshold
	if err := enc.WriteString(payload); err != nil {
		t.Fatal(err)
	}
	uncompressedSize := nd.Size()

	c := netdata.NewCompressorWith(netdata.AlgoZlib, 6, netdata.DefaultMinSize)
	if st := c.Compress(nd); !st.Ok() {
		t.Fatalf("Compress() = %v", st)
	}
	if nd.Header.Compression() != netdata.AlgoZlib {
		t.Fatalf("Header.Compression() = %d, want AlgoZlib", nd.Header.Compression())
	}
	if int(nd.Header.SizeUncompressed) != uncompressedSize {
		t.Fatalf("SizeUncompressed = %d, want %d", nd.Header.SizeUncompressed, uncompressedSize)
	}

	if st := c.Uncompress(nd); !st.Ok() {
		t.Fatalf("Uncompress() = %v", st)
	}
	if nd.Header.Compression() != netdata.AlgoNone {
		t.Fatalf("Header.Compression() after uncompress = %d, want AlgoNone", nd.Header.Compression())
	}

	nd.Rewind()
	dec := netdata.NewDecoder(nd)
	got, err := dec.ReadString()
	if err != nil || got != payload {
		t.Fatalf("round-trip payload mismatch: err=%v", err)
	}
}

func TestCompressSkipsSmallPayload(t *testing.T) {
	nd := netdata.New()
	enc := netdata.NewEncoder(nd)
	if err := enc.WriteString("tiny"); err != nil {
		t.Fatal(err)
	}

	c := netdata.NewCompressorWith(netdata.AlgoZlib, 6, netdata.DefaultMinSize)
	if st := c.Compress(nd); !st.Ok() {
		t.Fatalf("Compress() = %v", st)
	}
	if nd.Header.Compression() != netdata.AlgoNone {
		t.Fatalf("Header.Compression() = %d, want AlgoNone for small payload", nd.Header.Compression())
	}
}

func TestSetCompressionOverwritesNotOrs(t *testing.T) {
	var h netdata.Header
	h.SetCompression(netdata.AlgoZlib)
	h.SetCompressionLevel(9)
	h.SetCompression(netdata.AlgoNone) // must clear, not OR, the algo nibble
	if got := h.Compression(); got != netdata.AlgoNone {
		t.Fatalf("Compression() = %d, want AlgoNone after overwrite", got)
	}
	if got := h.CompressionLevel(); got != 9 {
		t.Fatalf("CompressionLevel() = %d, want 9 (untouched by SetCompression)", got)
	}
	h.SetCompressionLevel(3)
	if got := h.CompressionLevel(); got != 3 {
		t.Fatalf("CompressionLevel() = %d, want 3 after overwrite", got)
	}
}
