package memfile_test

import (
	"io"
	"testing"

	"github.com/NVIDIA/aisnet/memfile"
)

func TestWriteReadRoundTrip(t *testing.T) {
	mf := memfile.New()
	n, err := mf.Write([]byte("hello"))
	if err != nil || n != 5 {
		t.Fatalf("Write() = (%d, %v), want (5, nil)", n, err)
	}
	if got := mf.Size(); got != 5 {
		t.Fatalf("Size() = %d, want 5", got)
	}
	mf.Rewind()
	buf := make([]byte, 5)
	n, err = mf.Read(buf)
	if err != nil || n != 5 || string(buf) != "hello" {
		t.Fatalf("Read() = (%q, %d, %v)", buf, n, err)
	}
	if _, err := mf.Read(buf); err != io.EOF {
		t.Fatalf("Read() at end = %v, want io.EOF", err)
	}
}

func TestSeek(t *testing.T) {
	mf := memfile.NewBytes([]byte("0123456789"))
	if _, err := mf.Seek(3, io.SeekStart); err != nil {
		t.Fatal(err)
	}
	one := make([]byte, 1)
	if _, err := mf.Read(one); err != nil || one[0] != '3' {
		t.Fatalf("Read after Seek = %q, %v", one, err)
	}
	if _, err := mf.Seek(-100, io.SeekCurrent); err == nil {
		t.Fatal("expected error seeking before start")
	}
	if _, err := mf.Seek(100, io.SeekEnd); err == nil {
		t.Fatal("expected error seeking past end")
	}
}

func TestGrowthAcrossBlocks(t *testing.T) {
	mf := memfile.NewSize(4)
	payload := []byte("0123456789abcdef") // 16 bytes, 4 blocks
	mf.Write(payload)
	if got := mf.Size(); got != len(payload) {
		t.Fatalf("Size() = %d, want %d", got, len(payload))
	}
	if mf.Cap() < len(payload) {
		t.Fatalf("Cap() = %d smaller than Size() = %d", mf.Cap(), len(payload))
	}
	mf.Rewind()
	got := make([]byte, len(payload))
	io.ReadFull(mf, got)
	if string(got) != string(payload) {
		t.Fatalf("round trip = %q, want %q", got, payload)
	}
}

func TestCopyFromMoveFrom(t *testing.T) {
	src := memfile.NewBytes([]byte("source data"))
	dst := memfile.New()
	dst.CopyFrom(src)
	if string(dst.Bytes()) != "source data" {
		t.Fatalf("CopyFrom: got %q", dst.Bytes())
	}

	moved := memfile.New()
	src2 := memfile.NewBytes([]byte("move me"))
	moved.MoveFrom(src2, 0)
	if string(moved.Bytes()) != "move me" {
		t.Fatalf("MoveFrom: got %q", moved.Bytes())
	}
	if src2.Size() != 0 {
		t.Fatalf("MoveFrom should empty source, got size %d", src2.Size())
	}
}

func TestAsHex(t *testing.T) {
	mf := memfile.NewBytes([]byte("A "))
	want := " A20"
	if got := mf.AsHex(); got != want {
		t.Fatalf("AsHex() = %q, want %q", got, want)
	}
}
