package netdata_test

import (
	"bytes"
	"testing"

	"github.com/NVIDIA/aisnet/netdata"
)

func TestScalarRoundTrip(t *testing.T) {
	nd := netdata.New()
	enc := netdata.NewEncoder(nd)
	if err := enc.WriteInt32(-42); err != nil {
		t.Fatal(err)
	}
	if err := enc.WriteUint64(7); err != nil {
		t.Fatal(err)
	}
	if err := enc.WriteString("hello"); err != nil {
		t.Fatal(err)
	}
	if err := enc.WriteBool(true); err != nil {
		t.Fatal(err)
	}

	nd.Rewind()
	dec := netdata.NewDecoder(nd)
	i, err := dec.ReadInt32()
	if err != nil || i != -42 {
		t.Fatalf("ReadInt32() = (%d, %v)", i, err)
	}
	u, err := dec.ReadUint64()
	if err != nil || u != 7 {
		t.Fatalf("ReadUint64() = (%d, %v)", u, err)
	}
	s, err := dec.ReadString()
	if err != nil || s != "hello" {
		t.Fatalf("ReadString() = (%q, %v)", s, err)
	}
	b, err := dec.ReadBool()
	if err != nil || !b {
		t.Fatalf("ReadBool() = (%v, %v)", b, err)
	}
}

func TestContainerRoundTrip(t *testing.T) {
	nd := netdata.New()
	enc := netdata.NewEncoder(nd)
	in := []int32{1, 2, 3, 4, 5}
	err := netdata.WriteSlice(enc, in, func(e *netdata.Encoder, v int32) error {
		return e.WriteInt32(v)
	})
	if err != nil {
		t.Fatal(err)
	}

	nd.Rewind()
	dec := netdata.NewDecoder(nd)
	out, err := netdata.ReadSlice(dec, func(d *netdata.Decoder) (int32, error) {
		return d.ReadInt32()
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != len(in) {
		t.Fatalf("len(out) = %d, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("out[%d] = %d, want %d", i, out[i], in[i])
		}
	}
}

func TestMapRoundTrip(t *testing.T) {
	nd := netdata.New()
	enc := netdata.NewEncoder(nd)
	in := map[string]int32{"a": 1, "b": 2}
	err := netdata.WriteMap(enc, in,
		func(e *netdata.Encoder, k string) error { return e.WriteString(k) },
		func(e *netdata.Encoder, v int32) error { return e.WriteInt32(v) },
	)
	if err != nil {
		t.Fatal(err)
	}

	nd.Rewind()
	dec := netdata.NewDecoder(nd)
	out, err := netdata.ReadMap(dec,
		func(d *netdata.Decoder) (string, error) { return d.ReadString() },
		func(d *netdata.Decoder) (int32, error) { return d.ReadInt32() },
	)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != len(in) {
		t.Fatalf("len(out) = %d, want %d", len(out), len(in))
	}
	for k, v := range in {
		if out[k] != v {
			t.Fatalf("out[%q] = %d, want %d", k, out[k], v)
		}
	}
}

type point struct {
	X, Y int32
}

func (p *point) ObjectID() netdata.ID { return 7 }

func (p *point) Store(e *netdata.Encoder) error {
	if err := e.WriteInt32(p.X); err != nil {
		return err
	}
	return e.WriteInt32(p.Y)
}

func (p *point) Load(d *netdata.Decoder) error {
	var err error
	if p.X, err = d.ReadInt32(); err != nil {
		return err
	}
	p.Y, err = d.ReadInt32()
	return err
}

func TestObjectRoundTripAndRootID(t *testing.T) {
	nd := netdata.New()
	enc := netdata.NewEncoder(nd)
	p := &point{X: 3, Y: 4}
	if err := enc.WriteObject(p); err != nil {
		t.Fatal(err)
	}
	if nd.Header.ID != 7 {
		t.Fatalf("Header.ID = %d, want 7", nd.Header.ID)
	}

	nd.Rewind()
	dec := netdata.NewDecoder(nd)
	var got point
	if err := dec.ReadObject(&got); err != nil {
		t.Fatal(err)
	}
	if got != *p {
		t.Fatalf("got %+v, want %+v", got, *p)
	}
}

func TestWireRoundTrip(t *testing.T) {
	nd := netdata.New()
	enc := netdata.NewEncoder(nd)
	if err := enc.WriteString("frame body"); err != nil {
		t.Fatal(err)
	}

	var wire bytes.Buffer
	if _, err := nd.WriteTo(&wire); err != nil {
		t.Fatal(err)
	}

	var got netdata.NetData
	if _, err := got.ReadFrom(&wire); err != nil {
		t.Fatal(err)
	}
	if got.Header.Size != nd.Header.Size {
		t.Fatalf("Size = %d, want %d", got.Header.Size, nd.Header.Size)
	}
	if got.Header.Size != uint32(len("frame body")+8) { // tag+size/count prefix plus the string bytes
		t.Fatalf("Size = %d, want payload-only byte count (excludes the 24-byte header)", got.Header.Size)
	}
	got.Rewind()
	dec := netdata.NewDecoder(&got)
	s, err := dec.ReadString()
	if err != nil || s != "frame body" {
		t.Fatalf("ReadString() = (%q, %v)", s, err)
	}
}

func TestReadFromRejectsBadMagic(t *testing.T) {
	var wire bytes.Buffer
	wire.Write(make([]byte, netdata.HeaderSize)) // all zero -> bad magic
	var got netdata.NetData
	if _, err := got.ReadFrom(&wire); err == nil {
		t.Fatal("expected error for invalid magic")
	}
}

func TestWrongTagError(t *testing.T) {
	nd := netdata.New()
	enc := netdata.NewEncoder(nd)
	if err := enc.WriteString("not an int"); err != nil {
		t.Fatal(err)
	}
	nd.Rewind()
	dec := netdata.NewDecoder(nd)
	if _, err := dec.ReadInt32(); err == nil {
		t.Fatal("expected tag mismatch error")
	}
}
