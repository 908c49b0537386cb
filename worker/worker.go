// Package worker implements a generic message-driven background worker:
// a typed mailbox, a type-keyed callback registry, and a goroutine-based
// run/terminate lifecycle with init/exit hooks.
package worker

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/NVIDIA/aisnet/status"
	"github.com/NVIDIA/aisnet/xsync"
)

// nilMsg is the poison-pill value enqueued by Terminate to end the
// dispatch loop. A plain nil any is ambiguous with a handler that legally
// sends nil (e.g. *Payload pointers boxed via an interface with a nil
// value but non-nil type), so the sentinel is its own concrete type.
type nilMsg struct{}

func isNull(msg any) bool {
	_, ok := msg.(nilMsg)
	return ok || msg == nil
}

// Hooks lets a Worker's owner observe the init/exit edges of the
// dispatch loop. DefaultHooks is used when none is supplied; ActorWorker
// implements Hooks to start/stop its owned Actor around the loop.
type Hooks interface {
	OnInit() status.Status
	OnExit() status.Status
}

type defaultHooks struct{}

func (defaultHooks) OnInit() status.Status { return status.New() }
func (defaultHooks) OnExit() status.Status { return status.New() }

// Handler reacts to a dispatched message of type T.
type Handler[P any, T any] func(w *Worker[P], msg T)

// Worker runs a single background goroutine draining a mailbox and
// dispatching each message by its dynamic type to a registered callback.
// Params carries whatever configuration the owner needs; Worker itself
// does not interpret it.
type Worker[P any] struct {
	Params P
	Hooks  Hooks

	mu    sync.Mutex
	slots map[reflect.Type]func(*Worker[P], any)

	mq *xsync.SafeQueue[any]

	sigRunning    *xsync.Signal
	sigInited     *xsync.Signal
	sigTerminated *xsync.Signal

	lifecycleMu sync.Mutex
	started     bool

	running atomic.Bool
	exited  atomic.Bool

	st status.Status
}

// New returns a Worker ready to have callbacks registered on it. Run must
// be called before Send has any effect.
func New[P any](params P) *Worker[P] {
	return &Worker[P]{
		Params:        params,
		Hooks:         defaultHooks{},
		slots:         make(map[reflect.Type]func(*Worker[P], any)),
		mq:            xsync.NewSafeQueue[any](),
		sigRunning:    xsync.NewSignal(),
		sigInited:     xsync.NewSignal(),
		sigTerminated: xsync.NewSignal(),
	}
}

// RegisterCallback binds handler to every message whose dynamic type is
// T. Registering a second handler for the same T replaces the first.
// Must be called before Run.
func RegisterCallback[P any, T any](w *Worker[P], handler Handler[P, T]) {
	var zero T
	key := reflect.TypeOf(zero)
	w.mu.Lock()
	defer w.mu.Unlock()
	w.slots[key] = func(w *Worker[P], msg any) {
		handler(w, msg.(T))
	}
}

// Send enqueues msg for dispatch. It returns false if the worker's
// goroutine has never been started via Run.
func (w *Worker[P]) Send(msg any) bool {
	w.lifecycleMu.Lock()
	started := w.started
	w.lifecycleMu.Unlock()
	if !started {
		return false
	}
	w.mq.Enqueue(msg)
	return true
}

func (w *Worker[P]) dispatch(msg any) {
	w.mu.Lock()
	handler, ok := w.slots[reflect.TypeOf(msg)]
	w.mu.Unlock()
	if ok {
		handler(w, msg)
	}
}

// Run starts the worker's goroutine if it has not already been started,
// then blocks until OnInit has run and the loop is ready to dispatch. The
// returned status is whatever OnInit returned; a non-Ok status means the
// loop exited immediately without entering its dispatch phase.
func (w *Worker[P]) Run() status.Status {
	w.lifecycleMu.Lock()
	if w.started {
		w.lifecycleMu.Unlock()
		return w.st
	}
	w.started = true
	w.lifecycleMu.Unlock()

	go w.threadProc()

	w.running.Store(true)
	w.sigRunning.Set()
	w.sigInited.Wait()
	return w.st
}

// Terminate asks the loop to drain and exit, then blocks until it has.
// Calling Terminate before Run, or more than once, is safe.
func (w *Worker[P]) Terminate() status.Status {
	w.lifecycleMu.Lock()
	started := w.started
	w.lifecycleMu.Unlock()
	if !started {
		// Run was never called: there is no goroutine to set
		// sigTerminated, so latch it here — a caller that waits on it
		// after this Terminate must not block forever.
		w.sigTerminated.Set()
		return w.st
	}

	if !w.running.Load() {
		// Run() was never reached far enough to release sigRunning; let
		// the loop fall through on_init without ever dispatching.
		w.exited.Store(true)
		w.sigRunning.Set()
	} else if w.exited.CompareAndSwap(false, true) {
		w.mq.Enqueue(nilMsg{})
	}
	w.sigTerminated.Wait()
	return w.st
}

// threadProc is the goroutine body: wait to be released, run OnInit, drain
// the mailbox until the poison pill, run OnExit. A panic anywhere past
// sigRunning is recovered and converted to a RuntimeErr status rather than
// crashing the process — the loop still reaches its normal exit path and
// sigTerminated is still set, mirroring a catchable-abort recovery around
// the original's thread-proc.
func (w *Worker[P]) threadProc() {
	defer w.sigTerminated.Set()
	defer func() {
		if r := recover(); r != nil {
			w.st = status.FromDesc(fmt.Sprintf("worker: panic: %v", r), status.RuntimeErr)
		}
	}()

	w.sigRunning.Wait()
	if w.exited.Load() {
		w.sigInited.Set()
		return
	}

	w.st = w.Hooks.OnInit()
	w.sigInited.Set()
	if !w.st.Ok() {
		return
	}

	for {
		msg := w.mq.Dequeue()
		if isNull(msg) {
			break
		}
		w.dispatch(msg)
	}

	w.st = w.Hooks.OnExit()
}
