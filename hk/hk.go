// Package hk provides mechanism for registering cleanup
// functions which are invoked at specified intervals.
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package hk

import (
	"container/heap"
	"sync"
	"time"

	"github.com/NVIDIA/aisnet/cmn/nlog"
	"github.com/NVIDIA/aisnet/xsync"
)

// CleanupFunc runs a registered callback and returns the delay until it
// should run again. A return value <= 0 unregisters it.
type CleanupFunc func() time.Duration

type request struct {
	name string
	f    CleanupFunc
	due  time.Time
	idx  int // heap index, maintained by container/heap
}

type dueHeap []*request

func (h dueHeap) Len() int            { return len(h) }
func (h dueHeap) Less(i, j int) bool  { return h[i].due.Before(h[j].due) }
func (h dueHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].idx, h[j].idx = i, j }
func (h *dueHeap) Push(x any)         { r := x.(*request); r.idx = len(*h); *h = append(*h, r) }
func (h *dueHeap) Pop() any {
	old := *h
	n := len(old)
	r := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return r
}

// tickInterval bounds how long Run ever sleeps with nothing registered, so
// a registration that arrives while the loop is idle is picked up promptly.
const tickInterval = time.Second

// HK ticks a min-heap of registered callbacks, each due at its own time,
// running one goroutine for the lifetime of the process (or test).
type HK struct {
	mu         sync.Mutex
	byName     map[string]*request
	heap       dueHeap
	sigStarted *xsync.Signal
	stopCh     chan struct{}
}

// New returns an HK with nothing registered, not yet running.
func New() *HK {
	return &HK{
		byName:     make(map[string]*request),
		sigStarted: xsync.NewSignal(),
		stopCh:     make(chan struct{}),
	}
}

// DefaultHK is the process-wide housekeeper; socket.Server registers its
// stats/idle-reaper callback against it.
var DefaultHK = New()

// TestInit points DefaultHK at a fresh, unstarted instance so each test
// file can Run/WaitStarted its own housekeeper without leaking state
// across tests.
func TestInit() {
	DefaultHK = New()
}

// WaitStarted blocks until DefaultHK.Run's loop has started.
func WaitStarted() { DefaultHK.sigStarted.Wait() }

// RegisterCB registers f to run after interval, and again after whatever
// interval it returns, until it returns <= 0 or Unreg is called. A second
// registration under the same name replaces the first.
func (hk *HK) RegisterCB(name string, f CleanupFunc, interval time.Duration) {
	hk.mu.Lock()
	defer hk.mu.Unlock()
	if old, ok := hk.byName[name]; ok {
		heap.Remove(&hk.heap, old.idx)
	}
	r := &request{name: name, f: f, due: time.Now().Add(interval)}
	hk.byName[name] = r
	heap.Push(&hk.heap, r)
}

// Unreg removes a previously registered callback; a no-op if name isn't
// registered.
func (hk *HK) Unreg(name string) {
	hk.mu.Lock()
	defer hk.mu.Unlock()
	r, ok := hk.byName[name]
	if !ok {
		return
	}
	heap.Remove(&hk.heap, r.idx)
	delete(hk.byName, name)
}

// Stop ends the Run loop. Safe to call more than once.
func (hk *HK) Stop() {
	hk.mu.Lock()
	select {
	case <-hk.stopCh:
	default:
		close(hk.stopCh)
	}
	hk.mu.Unlock()
}

// Run drains due callbacks until Stop is called; meant to be launched as
// `go hk.DefaultHK.Run()` once at process (or test) startup.
func (hk *HK) Run() {
	hk.sigStarted.Set()
	for {
		select {
		case <-hk.stopCh:
			return
		default:
		}

		hk.mu.Lock()
		var next *request
		if hk.heap.Len() > 0 {
			next = hk.heap[0]
		}
		hk.mu.Unlock()

		wait := tickInterval
		if next != nil {
			if d := time.Until(next.due); d < wait {
				wait = d
			}
		}
		if wait > 0 {
			select {
			case <-hk.stopCh:
				return
			case <-time.After(wait):
			}
		}

		hk.runDue()
	}
}

func (hk *HK) runDue() {
	now := time.Now()
	for {
		hk.mu.Lock()
		if hk.heap.Len() == 0 || hk.heap[0].due.After(now) {
			hk.mu.Unlock()
			return
		}
		r := heap.Pop(&hk.heap).(*request)
		delete(hk.byName, r.name)
		hk.mu.Unlock()

		next := hk.call(r)
		if next > 0 {
			hk.mu.Lock()
			r.due = now.Add(next)
			hk.byName[r.name] = r
			heap.Push(&hk.heap, r)
			hk.mu.Unlock()
		}
	}
}

func (hk *HK) call(r *request) (next time.Duration) {
	defer func() {
		if p := recover(); p != nil {
			nlog.Errorf("hk: callback %q panicked: %v", r.name, p)
			next = 0
		}
	}()
	return r.f()
}
