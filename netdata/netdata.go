package netdata

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/NVIDIA/aisnet/memfile"
)

// ByteOrder is the wire byte order for every multi-byte field, matching the
// original's raw-memcpy (host-endian) behavior; see DESIGN.md for the
// cross-endianness trade-off this makes.
var ByteOrder = binary.NativeEndian

// NetData is a single serialized message: a Header plus a body of
// Tag-prefixed elements. The zero value is not usable; construct with New.
type NetData struct {
	Header Header
	data   *memfile.MemFile
}

// New returns an empty NetData with a freshly-initialized Header.
func New() *NetData {
	return &NetData{Header: NewHeader(), data: memfile.New()}
}

// Bytes returns the serialized body (everything after the Header).
func (nd *NetData) Bytes() []byte { return nd.data.Bytes() }

// Rewind resets the body's read/write position to the start, for a second
// pass of Load calls over an already-decoded message.
func (nd *NetData) Rewind() { nd.data.Rewind() }

// Size returns the body size in bytes (excluding the Header).
func (nd *NetData) Size() int { return nd.data.Size() }

// syncHeaderSize recomputes Header.Size from the current body size; called
// after every top-level encode so the header always reflects what WriteTo
// would produce.
func (nd *NetData) syncHeaderSize() {
	nd.Header.Size = uint32(nd.data.Size())
}

// CopyFrom deep-copies src's header and body into nd.
func (nd *NetData) CopyFrom(src *NetData) {
	nd.Header = src.Header
	nd.data.CopyFrom(src.data)
}

// MoveFrom transfers src's header and body into nd, optionally shrinking
// the body to bodySize bytes (0 = don't shrink). src is left empty.
func (nd *NetData) MoveFrom(src *NetData, bodySize int) {
	nd.Header = src.Header
	nd.data.MoveFrom(src.data, bodySize)
}

// replaceBody swaps in a new body buffer wholesale, used by the compressor
// to install a freshly (de)compressed buffer without going through
// MoveFrom's NetData-to-NetData contract.
func (nd *NetData) replaceBody(buf []byte) {
	nd.data = memfile.NewBytes(buf)
}

// WriteTo serializes the Header followed by the body to w, the form the
// socket transport sends on the wire. It syncs Header.Size first.
func (nd *NetData) WriteTo(w io.Writer) (int64, error) {
	nd.syncHeaderSize()
	if err := binary.Write(w, ByteOrder, nd.Header); err != nil {
		return 0, fmt.Errorf("netdata: write header: %w", err)
	}
	n, err := w.Write(nd.data.Bytes())
	if err != nil {
		return int64(HeaderSize + n), fmt.Errorf("netdata: write body: %w", err)
	}
	return int64(HeaderSize + n), nil
}

// ReadFrom reads a Header from r, validates it, and reads exactly the
// Header.Size payload bytes that follow. It is the receive-side
// counterpart of WriteTo, used once the caller already knows (e.g. via a
// non-destructive peek) that a full frame is available.
func (nd *NetData) ReadFrom(r io.Reader) (int64, error) {
	var h Header
	if err := binary.Read(r, ByteOrder, &h); err != nil {
		return 0, fmt.Errorf("netdata: read header: %w", err)
	}
	if !h.IsValid() {
		return HeaderSize, fmt.Errorf("netdata: invalid frame header (magic=%#x version=%#x)", h.MagicNum, h.Version)
	}
	nd.Header = h
	bodyLen := int(h.Size)
	if bodyLen < 0 {
		return HeaderSize, fmt.Errorf("netdata: invalid payload size %d", h.Size)
	}
	body := make([]byte, bodyLen)
	if bodyLen > 0 {
		if _, err := io.ReadFull(r, body); err != nil {
			return HeaderSize, fmt.Errorf("netdata: read body: %w", err)
		}
	}
	nd.data = memfile.NewBytes(body)
	return int64(HeaderSize + bodyLen), nil
}
