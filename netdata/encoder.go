package netdata

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Serializable is implemented by types NetData can store as an Object
// element; Store is called with an Encoder positioned to receive the
// object's fields in whatever order Load later expects them back in.
type Serializable interface {
	Store(enc *Encoder) error
}

// Identifiable is implemented by root message types that stamp their own
// id onto the frame's Header.ID when encoded at the top level.
type Identifiable interface {
	ObjectID() ID
}

// Encoder serializes values into a NetData's body, backpatching
// container/object ElemHeader.Size fields once their contents are known.
type Encoder struct {
	nd *NetData
}

// NewEncoder returns an Encoder that appends to nd's body.
func NewEncoder(nd *NetData) *Encoder {
	return &Encoder{nd: nd}
}

func (e *Encoder) writeElemHeader(h ElemHeader) error {
	return binary.Write(e.nd.data, ByteOrder, h)
}

// patchSize rewrites the Size field of the ElemHeader recorded at
// headerOffset now that its contents (written starting at bodyStart) are
// complete. Because memfile.MemFile.Write overwrites in place when the
// current position is still within the logical size, this is a seek,
// write, seek-back — not a pointer held across the intervening writes,
// which would be unsafe once the backing slice has reallocated.
func (e *Encoder) patchSize(headerOffset, bodyStart int) error {
	end := e.nd.data.Tell()
	size := uint32(int(end) - bodyStart)
	if _, err := e.nd.data.Seek(int64(headerOffset)+2, io.SeekStart); err != nil {
		return err
	}
	if err := binary.Write(e.nd.data, ByteOrder, size); err != nil {
		return err
	}
	_, err := e.nd.data.Seek(end, io.SeekStart)
	return err
}

func (e *Encoder) finish() {
	e.nd.syncHeaderSize()
}

// --- scalars ---

func (e *Encoder) WriteInt8(v int8) error {
	defer e.finish()
	if err := e.writeElemHeader(ElemHeader{Tag: TagI8 | MetaSigned, Size: 1, Count: 1}); err != nil {
		return err
	}
	return binary.Write(e.nd.data, ByteOrder, v)
}

func (e *Encoder) WriteUint8(v uint8) error {
	defer e.finish()
	if err := e.writeElemHeader(ElemHeader{Tag: TagI8, Size: 1, Count: 1}); err != nil {
		return err
	}
	return binary.Write(e.nd.data, ByteOrder, v)
}

func (e *Encoder) WriteInt16(v int16) error {
	defer e.finish()
	if err := e.writeElemHeader(ElemHeader{Tag: TagI16 | MetaSigned, Size: 2, Count: 1}); err != nil {
		return err
	}
	return binary.Write(e.nd.data, ByteOrder, v)
}

func (e *Encoder) WriteUint16(v uint16) error {
	defer e.finish()
	if err := e.writeElemHeader(ElemHeader{Tag: TagI16, Size: 2, Count: 1}); err != nil {
		return err
	}
	return binary.Write(e.nd.data, ByteOrder, v)
}

func (e *Encoder) WriteInt32(v int32) error {
	defer e.finish()
	if err := e.writeElemHeader(ElemHeader{Tag: TagI32 | MetaSigned, Size: 4, Count: 1}); err != nil {
		return err
	}
	return binary.Write(e.nd.data, ByteOrder, v)
}

func (e *Encoder) WriteUint32(v uint32) error {
	defer e.finish()
	if err := e.writeElemHeader(ElemHeader{Tag: TagI32, Size: 4, Count: 1}); err != nil {
		return err
	}
	return binary.Write(e.nd.data, ByteOrder, v)
}

func (e *Encoder) WriteInt64(v int64) error {
	defer e.finish()
	if err := e.writeElemHeader(ElemHeader{Tag: TagI64 | MetaSigned, Size: 8, Count: 1}); err != nil {
		return err
	}
	return binary.Write(e.nd.data, ByteOrder, v)
}

func (e *Encoder) WriteUint64(v uint64) error {
	defer e.finish()
	if err := e.writeElemHeader(ElemHeader{Tag: TagI64, Size: 8, Count: 1}); err != nil {
		return err
	}
	return binary.Write(e.nd.data, ByteOrder, v)
}

func (e *Encoder) WriteBool(v bool) error {
	defer e.finish()
	if err := e.writeElemHeader(ElemHeader{Tag: TagIBool, Size: 1, Count: 1}); err != nil {
		return err
	}
	var b uint8
	if v {
		b = 1
	}
	return binary.Write(e.nd.data, ByteOrder, b)
}

func (e *Encoder) WriteFloat32(v float32) error {
	defer e.finish()
	if err := e.writeElemHeader(ElemHeader{Tag: TagF32 | MetaSigned, Size: 4, Count: 1}); err != nil {
		return err
	}
	return binary.Write(e.nd.data, ByteOrder, v)
}

func (e *Encoder) WriteFloat64(v float64) error {
	defer e.finish()
	if err := e.writeElemHeader(ElemHeader{Tag: TagF64 | MetaSigned, Size: 8, Count: 1}); err != nil {
		return err
	}
	return binary.Write(e.nd.data, ByteOrder, v)
}

// --- sequences ---

func (e *Encoder) WriteString(s string) error {
	defer e.finish()
	if err := e.writeElemHeader(ElemHeader{Tag: TagSChar, Size: Size(len(s)), Count: 1}); err != nil {
		return err
	}
	if len(s) == 0 {
		return nil
	}
	_, err := e.nd.data.Write([]byte(s))
	return err
}

func (e *Encoder) WriteBytes(b []byte) error {
	defer e.finish()
	if err := e.writeElemHeader(ElemHeader{Tag: TagSByte, Size: Size(len(b)), Count: 1}); err != nil {
		return err
	}
	if len(b) == 0 {
		return nil
	}
	_, err := e.nd.data.Write(b)
	return err
}

// --- compound ---

// WriteSlice serializes s as a Container element, calling writeElem for
// each item and backpatching the element header's Size once the count is
// known to have been fully written.
func WriteSlice[T any](e *Encoder, s []T, writeElem func(*Encoder, T) error) error {
	defer e.finish()
	offset := int(e.nd.data.Tell())
	if err := e.writeElemHeader(ElemHeader{Tag: TagContainer, Count: toCount(len(s))}); err != nil {
		return err
	}
	start := int(e.nd.data.Tell())
	for _, v := range s {
		if err := writeElem(e, v); err != nil {
			return fmt.Errorf("netdata: write container element: %w", err)
		}
	}
	return e.patchSize(offset, start)
}

// WriteMap serializes m as a Map element (key, value, key, value, ...),
// backpatching the element header's Size once written.
func WriteMap[K comparable, V any](e *Encoder, m map[K]V, writeKey func(*Encoder, K) error, writeVal func(*Encoder, V) error) error {
	defer e.finish()
	offset := int(e.nd.data.Tell())
	if err := e.writeElemHeader(ElemHeader{Tag: TagMap, Count: toCount(len(m))}); err != nil {
		return err
	}
	start := int(e.nd.data.Tell())
	for k, v := range m {
		if err := writeKey(e, k); err != nil {
			return fmt.Errorf("netdata: write map key: %w", err)
		}
		if err := writeVal(e, v); err != nil {
			return fmt.Errorf("netdata: write map value: %w", err)
		}
	}
	return e.patchSize(offset, start)
}

// WriteObject serializes obj as an Object element. If obj also implements
// Identifiable, its ObjectID is stamped onto the frame's Header.ID — the
// Go analogue of the original's is_root_v<T> compile-time trait.
func (e *Encoder) WriteObject(obj Serializable) error {
	defer e.finish()
	if root, ok := obj.(Identifiable); ok {
		e.nd.Header.ID = root.ObjectID()
	}
	offset := int(e.nd.data.Tell())
	if err := e.writeElemHeader(ElemHeader{Tag: TagObject, Count: 1}); err != nil {
		return err
	}
	start := int(e.nd.data.Tell())
	if err := obj.Store(e); err != nil {
		return fmt.Errorf("netdata: store object: %w", err)
	}
	return e.patchSize(offset, start)
}
