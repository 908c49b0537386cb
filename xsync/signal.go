// Package xsync provides low-level thread-safe primitives used throughout
// the actor/worker runtime: a one-shot latch (Signal) and an unbounded
// blocking FIFO (SafeQueue).
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package xsync

import (
	"sync"
	"time"
)

// Signal is a one-shot, thread-safe latch: once Set, it stays set, and any
// number of goroutines may Wait/WaitFor on it before or after that happens.
// A closed channel is the idiomatic stand-in for the mutex+condvar pair the
// original relies on: Wait/WaitFor reduce to a select, with no risk of a
// missed wakeup and no goroutine left behind on timeout.
type Signal struct {
	once sync.Once
	ch   chan struct{}
}

// NewSignal returns a Signal in the unsignaled state.
func NewSignal() *Signal {
	return &Signal{ch: make(chan struct{})}
}

// Set puts the signal into the signaled state. Safe to call more than once
// or concurrently; only the first call has an effect.
func (s *Signal) Set() {
	s.once.Do(func() { close(s.ch) })
}

// IsSet reports whether the signal has been set, without blocking.
func (s *Signal) IsSet() bool {
	select {
	case <-s.ch:
		return true
	default:
		return false
	}
}

// Wait blocks until the signal is set.
func (s *Signal) Wait() {
	<-s.ch
}

// WaitFor blocks until the signal is set or dur elapses, reporting which.
func (s *Signal) WaitFor(dur time.Duration) bool {
	select {
	case <-s.ch:
		return true
	case <-time.After(dur):
		return false
	}
}

// OnExit returns a closure that sets sig, meant to be deferred at the top
// of a function so the signal fires on every return path:
// `defer xsync.OnExit(sig)()`.
func OnExit(sig *Signal) func() {
	return sig.Set
}
