// Package pool implements a fixed-size worker pool for dispatching
// independent tasks off the accept thread, plus a socket-oriented
// variant that hands each worker a dedicated scratch buffer.
package pool

import (
	"sync"
	"sync/atomic"
)

// Task is a unit of work submitted to a ThreadPool.
type Task func()

// ThreadPool runs a fixed number of goroutines draining one shared task
// queue. Close stops accepting new tasks and waits for in-flight ones to
// finish; tasks that never made it off the queue are discarded.
type ThreadPool struct {
	tasks     chan Task
	stop      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
	size      int
}

// New starts a ThreadPool with numThreads workers.
func New(numThreads int) *ThreadPool {
	p := &ThreadPool{
		tasks: make(chan Task),
		stop:  make(chan struct{}),
		size:  numThreads,
	}
	p.wg.Add(numThreads)
	for i := 0; i < numThreads; i++ {
		go p.worker()
	}
	return p
}

func (p *ThreadPool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stop:
			return
		case task := <-p.tasks:
			task()
		}
	}
}

// Enqueue submits task to the pool, blocking until a worker is free to
// accept it or the pool is closing. It reports false if the pool is
// already closed, in which case task never runs.
func (p *ThreadPool) Enqueue(task Task) bool {
	select {
	case p.tasks <- task:
		return true
	case <-p.stop:
		return false
	}
}

// NumThreads returns the number of worker goroutines the pool was
// constructed with.
func (p *ThreadPool) NumThreads() int { return p.size }

// Close stops accepting new tasks and blocks until every worker has
// finished its current task (if any) and exited. Safe to call more than
// once.
func (p *ThreadPool) Close() {
	p.closeOnce.Do(func() { close(p.stop) })
	p.wg.Wait()
}

// SocketThreadPool is a ThreadPool where every worker has a pre-allocated,
// fixed-size scratch buffer for the lifetime of the pool — avoiding a
// per-connection allocation on the socket read/write path.
type SocketThreadPool struct {
	*ThreadPool
	bufSize int
	buffers [][]byte
	next    atomic.Uint64
}

// NewSocket starts a SocketThreadPool with numThreads workers, each
// holding a dedicated bufSize-byte buffer.
func NewSocket(bufSize, numThreads int) *SocketThreadPool {
	buffers := make([][]byte, numThreads)
	for i := range buffers {
		buffers[i] = make([]byte, bufSize)
	}
	return &SocketThreadPool{
		ThreadPool: New(numThreads),
		bufSize:    bufSize,
		buffers:    buffers,
	}
}

// Buffer returns the scratch buffer belonging to worker idx; idx is taken
// modulo the number of workers so any value is safe to pass.
func (p *SocketThreadPool) Buffer(idx int) []byte {
	return p.buffers[idx%len(p.buffers)]
}

// BufferSize returns the size of each worker's scratch buffer.
func (p *SocketThreadPool) BufferSize() int { return p.bufSize }

// NextWorkerIndex returns a round-robin index into [0, NumThreads), used
// only as a buffer-slot hint — callers still dispatch through Enqueue,
// which may run the task on a different goroutine than the one owning the
// hinted buffer's slot number.
func (p *SocketThreadPool) NextWorkerIndex() int {
	return int(p.next.Add(1)-1) % len(p.buffers)
}
