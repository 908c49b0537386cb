package netdata

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/NVIDIA/aisnet/status"
)

// Loadable is implemented by types NetData can restore from an Object
// element; Load must consume fields in exactly the order Store wrote them.
type Loadable interface {
	Load(dec *Decoder) error
}

// Decoder deserializes values out of a NetData's body, in the order an
// Encoder wrote them.
type Decoder struct {
	nd *NetData
}

// NewDecoder returns a Decoder reading from nd's body, starting at its
// current position (Rewind first for a message just received off the
// wire).
func NewDecoder(nd *NetData) *Decoder {
	return &Decoder{nd: nd}
}

func (d *Decoder) readElemHeader() (ElemHeader, error) {
	var h ElemHeader
	err := binary.Read(d.nd.data, ByteOrder, &h)
	return h, err
}

func wrongTag(want, got Tag) error {
	return status.FromDesc(fmt.Sprintf("netdata: expected tag %#x, got %#x", want, got), status.Invalid)
}

// --- scalars ---

func (d *Decoder) ReadInt8() (int8, error) {
	h, err := d.readElemHeader()
	if err != nil {
		return 0, err
	}
	if h.Tag != TagI8|MetaSigned {
		return 0, wrongTag(TagI8|MetaSigned, h.Tag)
	}
	var v int8
	err = binary.Read(d.nd.data, ByteOrder, &v)
	return v, err
}

func (d *Decoder) ReadUint8() (uint8, error) {
	h, err := d.readElemHeader()
	if err != nil {
		return 0, err
	}
	if h.Tag != TagI8 {
		return 0, wrongTag(TagI8, h.Tag)
	}
	var v uint8
	err = binary.Read(d.nd.data, ByteOrder, &v)
	return v, err
}

func (d *Decoder) ReadInt16() (int16, error) {
	h, err := d.readElemHeader()
	if err != nil {
		return 0, err
	}
	if h.Tag != TagI16|MetaSigned {
		return 0, wrongTag(TagI16|MetaSigned, h.Tag)
	}
	var v int16
	err = binary.Read(d.nd.data, ByteOrder, &v)
	return v, err
}

func (d *Decoder) ReadUint16() (uint16, error) {
	h, err := d.readElemHeader()
	if err != nil {
		return 0, err
	}
	if h.Tag != TagI16 {
		return 0, wrongTag(TagI16, h.Tag)
	}
	var v uint16
	err = binary.Read(d.nd.data, ByteOrder, &v)
	return v, err
}

func (d *Decoder) ReadInt32() (int32, error) {
	h, err := d.readElemHeader()
	if err != nil {
		return 0, err
	}
	if h.Tag != TagI32|MetaSigned {
		return 0, wrongTag(TagI32|MetaSigned, h.Tag)
	}
	var v int32
	err = binary.Read(d.nd.data, ByteOrder, &v)
	return v, err
}

func (d *Decoder) ReadUint32() (uint32, error) {
	h, err := d.readElemHeader()
	if err != nil {
		return 0, err
	}
	if h.Tag != TagI32 {
		return 0, wrongTag(TagI32, h.Tag)
	}
	var v uint32
	err = binary.Read(d.nd.data, ByteOrder, &v)
	return v, err
}

func (d *Decoder) ReadInt64() (int64, error) {
	h, err := d.readElemHeader()
	if err != nil {
		return 0, err
	}
	if h.Tag != TagI64|MetaSigned {
		return 0, wrongTag(TagI64|MetaSigned, h.Tag)
	}
	var v int64
	err = binary.Read(d.nd.data, ByteOrder, &v)
	return v, err
}

func (d *Decoder) ReadUint64() (uint64, error) {
	h, err := d.readElemHeader()
	if err != nil {
		return 0, err
	}
	if h.Tag != TagI64 {
		return 0, wrongTag(TagI64, h.Tag)
	}
	var v uint64
	err = binary.Read(d.nd.data, ByteOrder, &v)
	return v, err
}

func (d *Decoder) ReadBool() (bool, error) {
	h, err := d.readElemHeader()
	if err != nil {
		return false, err
	}
	if h.Tag != TagIBool {
		return false, wrongTag(TagIBool, h.Tag)
	}
	var v uint8
	if err := binary.Read(d.nd.data, ByteOrder, &v); err != nil {
		return false, err
	}
	return v != 0, nil
}

func (d *Decoder) ReadFloat32() (float32, error) {
	h, err := d.readElemHeader()
	if err != nil {
		return 0, err
	}
	if h.Tag != TagF32|MetaSigned {
		return 0, wrongTag(TagF32|MetaSigned, h.Tag)
	}
	var v float32
	err = binary.Read(d.nd.data, ByteOrder, &v)
	return v, err
}

func (d *Decoder) ReadFloat64() (float64, error) {
	h, err := d.readElemHeader()
	if err != nil {
		return 0, err
	}
	if h.Tag != TagF64|MetaSigned {
		return 0, wrongTag(TagF64|MetaSigned, h.Tag)
	}
	var v float64
	err = binary.Read(d.nd.data, ByteOrder, &v)
	return v, err
}

// --- sequences ---

func (d *Decoder) ReadString() (string, error) {
	h, err := d.readElemHeader()
	if err != nil {
		return "", err
	}
	if h.Tag != TagSChar {
		return "", wrongTag(TagSChar, h.Tag)
	}
	if h.Size == 0 {
		return "", nil
	}
	buf := make([]byte, h.Size)
	if _, err := io.ReadFull(d.nd.data, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func (d *Decoder) ReadBytes() ([]byte, error) {
	h, err := d.readElemHeader()
	if err != nil {
		return nil, err
	}
	if h.Tag != TagSByte {
		return nil, wrongTag(TagSByte, h.Tag)
	}
	if h.Size == 0 {
		return []byte{}, nil
	}
	buf := make([]byte, h.Size)
	if _, err := io.ReadFull(d.nd.data, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// --- compound ---

// ReadSlice deserializes a Container element previously written by
// WriteSlice, calling readElem once per entry.
func ReadSlice[T any](d *Decoder, readElem func(*Decoder) (T, error)) ([]T, error) {
	h, err := d.readElemHeader()
	if err != nil {
		return nil, err
	}
	if h.Tag != TagContainer {
		return nil, wrongTag(TagContainer, h.Tag)
	}
	out := make([]T, 0, h.Count)
	for i := Count(0); i < h.Count; i++ {
		v, err := readElem(d)
		if err != nil {
			return nil, fmt.Errorf("netdata: read container element %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// ReadMap deserializes a Map element previously written by WriteMap.
func ReadMap[K comparable, V any](d *Decoder, readKey func(*Decoder) (K, error), readVal func(*Decoder) (V, error)) (map[K]V, error) {
	h, err := d.readElemHeader()
	if err != nil {
		return nil, err
	}
	if h.Tag != TagMap {
		return nil, wrongTag(TagMap, h.Tag)
	}
	out := make(map[K]V, h.Count)
	for i := Count(0); i < h.Count; i++ {
		k, err := readKey(d)
		if err != nil {
			return nil, fmt.Errorf("netdata: read map key %d: %w", i, err)
		}
		v, err := readVal(d)
		if err != nil {
			return nil, fmt.Errorf("netdata: read map value %d: %w", i, err)
		}
		out[k] = v
	}
	return out, nil
}

// ReadObject deserializes an Object element previously written by
// WriteObject, delegating the body to obj.Load.
func (d *Decoder) ReadObject(obj Loadable) error {
	h, err := d.readElemHeader()
	if err != nil {
		return err
	}
	if h.Tag != TagObject {
		return wrongTag(TagObject, h.Tag)
	}
	return obj.Load(d)
}

// Skip discards the next element without interpreting its payload, using
// the element header's own Size — the Go analogue of the original's
// unknown-tag seek-past fallback.
func (d *Decoder) Skip() error {
	h, err := d.readElemHeader()
	if err != nil {
		return err
	}
	if h.Size == 0 {
		return nil
	}
	_, err = d.nd.data.Seek(int64(h.Size), io.SeekCurrent)
	return err
}
