package pool_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/NVIDIA/aisnet/pool"
)

func TestEnqueueRunsEveryTask(t *testing.T) {
	p := pool.New(4)
	defer p.Close()

	const n = 100
	var wg sync.WaitGroup
	var count int64
	wg.Add(n)
	for i := 0; i < n; i++ {
		p.Enqueue(func() {
			atomic.AddInt64(&count, 1)
			wg.Done()
		})
	}
	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for tasks")
	}
	if atomic.LoadInt64(&count) != n {
		t.Fatalf("count = %d, want %d", count, n)
	}
}

func TestCloseRejectsFurtherEnqueue(t *testing.T) {
	p := pool.New(2)
	p.Close()
	if p.Enqueue(func() {}) {
		t.Fatal("Enqueue() after Close() should return false")
	}
}

func TestSocketThreadPoolBuffersAreDistinctAndStable(t *testing.T) {
	sp := pool.NewSocket(64, 3)
	defer sp.Close()

	if sp.BufferSize() != 64 {
		t.Fatalf("BufferSize() = %d, want 64", sp.BufferSize())
	}
	b0 := sp.Buffer(0)
	b1 := sp.Buffer(1)
	if len(b0) != 64 || len(b1) != 64 {
		t.Fatalf("buffer lengths = %d, %d, want 64", len(b0), len(b1))
	}
	b0[0] = 0xAB
	if sp.Buffer(0)[0] != 0xAB {
		t.Fatal("Buffer(0) did not return the same backing slice across calls")
	}
	if sp.Buffer(3)[0] != 0xAB {
		t.Fatal("Buffer(3) should wrap to the same slot as Buffer(0) (3 % 3 == 0)")
	}

	seen := make(map[int]bool)
	for i := 0; i < 6; i++ {
		seen[sp.NextWorkerIndex()] = true
	}
	if len(seen) != 3 {
		t.Fatalf("NextWorkerIndex() visited %d distinct slots, want 3", len(seen))
	}
}
