package netdata

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/zlib"

	"github.com/NVIDIA/aisnet/status"
)

// Compression algorithm ids, stored in the low nibble of Header.CompressionFlags.
const (
	AlgoNone int = 0
	AlgoZlib int = 1
)

// Compression level bounds and the library defaults.
const (
	LevelMin       = 0
	LevelMax       = 9
	DefaultLevel   = 4
	DefaultAlgo    = AlgoNone
	DefaultMinSize = 128 // payloads smaller than this are never compressed
)

// Compressor wraps a NetData body with a pluggable compression backend.
// Every method is read-only on the Compressor itself; all state lives in
// the NetData it operates on. The zero value is not usable; construct with
// NewCompressor or NewCompressorWith.
type Compressor struct {
	algo    int
	level   int
	minSize int
}

// NewCompressor returns a Compressor using the library defaults: no
// compression, level 4, 128-byte threshold.
func NewCompressor() *Compressor {
	return &Compressor{algo: DefaultAlgo, level: DefaultLevel, minSize: DefaultMinSize}
}

// NewCompressorWith returns a Compressor with explicit settings.
func NewCompressorWith(algo, level, minSize int) *Compressor {
	return &Compressor{algo: algo, level: level, minSize: minSize}
}

// Compress compresses nd's body in place if its size meets the configured
// threshold and an algorithm other than AlgoNone is configured. On
// failure, nd is left unchanged.
func (c *Compressor) Compress(nd *NetData) status.Status {
	if nd.Size() < c.minSize {
		nd.Header.SetCompression(AlgoNone)
		return status.New()
	}
	switch c.algo {
	case AlgoZlib:
		return c.compressZlib(nd)
	default:
		nd.Header.SetCompression(AlgoNone)
		return status.New()
	}
}

// Uncompress restores nd's body to its pre-compression form if the header
// indicates it was compressed; a no-op otherwise.
func (c *Compressor) Uncompress(nd *NetData) status.Status {
	nd.Rewind()
	switch nd.Header.Compression() {
	case AlgoNone:
		return status.New()
	case AlgoZlib:
		return c.uncompressZlib(nd)
	default:
		return status.FromDesc("netdata: unsupported compression algorithm", status.Unsupported)
	}
}

func (c *Compressor) compressZlib(nd *NetData) status.Status {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, c.level)
	if err != nil {
		return status.FromDesc(fmt.Sprintf("netdata: zlib writer: %v", err), status.RuntimeErr)
	}
	if _, err := w.Write(nd.Bytes()); err != nil {
		return status.FromDesc(fmt.Sprintf("netdata: zlib compress: %v", err), status.RuntimeErr)
	}
	if err := w.Close(); err != nil {
		return status.FromDesc(fmt.Sprintf("netdata: zlib close: %v", err), status.RuntimeErr)
	}

	uncompressedSize := nd.Size()
	nd.Header.SizeUncompressed = uint32(uncompressedSize)
	nd.Header.SetCompression(c.algo)
	nd.Header.SetCompressionLevel(c.level)
	nd.replaceBody(buf.Bytes())
	nd.syncHeaderSize()
	return status.New()
}

func (c *Compressor) uncompressZlib(nd *NetData) status.Status {
	r, err := zlib.NewReader(bytes.NewReader(nd.Bytes()))
	if err != nil {
		return status.FromDesc(fmt.Sprintf("netdata: zlib reader: %v", err), status.RuntimeErr)
	}
	defer r.Close()

	out := make([]byte, 0, nd.Header.SizeUncompressed)
	buf := bytes.NewBuffer(out)
	if _, err := buf.ReadFrom(r); err != nil {
		return status.FromDesc(fmt.Sprintf("netdata: zlib decompress: %v", err), status.RuntimeErr)
	}

	nd.Header.SetCompression(AlgoNone)
	nd.Header.SizeUncompressed = 0
	nd.replaceBody(buf.Bytes())
	nd.syncHeaderSize()
	return status.New()
}
