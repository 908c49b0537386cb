// Package actor layers a start/stop/request-reply lifecycle on top of
// worker: an Actor owns its own background activity, while ActorWorker
// hosts one inside a worker.Worker so it can be driven through the same
// mailbox-based Run/Terminate/Send surface as any other worker.
package actor

import (
	"fmt"

	"github.com/NVIDIA/aisnet/status"
	"github.com/NVIDIA/aisnet/worker"
	"github.com/NVIDIA/aisnet/xsync"
)

// Actor is implemented by long-lived background activity that needs an
// explicit start and shutdown edge plus a synchronous request/reply call.
// Start and Shutdown must each set sig before returning, even on error, so
// a caller waiting on the signal never blocks forever.
type Actor interface {
	Start(sigStarted *xsync.Signal, st *status.Status)
	Shutdown(sigStopped *xsync.Signal)
	ProcessRequest(request, reply any) status.Status
}

// Run drives a through a single start cycle and blocks until it reports
// started, returning whatever status Start recorded. This mirrors the
// default run() every Actor gets for free in the original design; actors
// with extra lifecycle needs are expected to be driven via ActorWorker
// instead.
func Run(a Actor) status.Status {
	sig := xsync.NewSignal()
	var st status.Status
	a.Start(sig, &st)
	sig.Wait()
	return st
}

// Terminate drives a through a single shutdown cycle and blocks until it
// reports stopped.
func Terminate(a Actor) status.Status {
	sig := xsync.NewSignal()
	a.Shutdown(sig)
	sig.Wait()
	return status.New()
}

// Payload is the envelope a caller sends through an ActorWorker's mailbox
// to make a synchronous request of the actor it hosts. Reply is expected
// to be a pointer (or otherwise reference) type: ProcessRequest has no way
// to hand back a new value, so it writes results through Reply in place.
// Ready is set exactly once, after Status has been written, regardless of
// whether ProcessRequest succeeds.
type Payload struct {
	Ready   *xsync.Signal
	Status  *status.Status
	Request any
	Reply   any
}

// NewPayload returns a Payload wired with a fresh Ready signal, ready to
// hand to ActorWorker.Worker().Send.
func NewPayload(request, reply any) *Payload {
	var st status.Status
	return &Payload{
		Ready:   xsync.NewSignal(),
		Status:  &st,
		Request: request,
		Reply:   reply,
	}
}

// ActorWorker hosts an Actor inside a worker.Worker: on_init starts the
// actor on its own goroutine and waits for it to report started; on_exit
// shuts it down and waits for it to report stopped. A *Payload sent
// through the worker's mailbox is routed straight to the actor's
// ProcessRequest; because the mailbox is drained by the single worker
// goroutine, requests are already serialized with no separate lock
// required.
type ActorWorker[P any] struct {
	w     *worker.Worker[P]
	actor Actor

	sigStarted    *xsync.Signal
	sigStopped    *xsync.Signal
	statusStarted status.Status

	actorDone chan struct{}
}

// New returns an ActorWorker hosting act. Run must be called before any
// request sent through Worker().Send reaches act.
func New[P any](params P, act Actor) *ActorWorker[P] {
	aw := &ActorWorker[P]{
		actor:      act,
		sigStarted: xsync.NewSignal(),
		sigStopped: xsync.NewSignal(),
	}
	aw.w = worker.New(params)
	aw.w.Hooks = aw
	worker.RegisterCallback(aw.w, func(_ *worker.Worker[P], p *Payload) {
		aw.onRequest(p)
	})
	return aw
}

// Worker exposes the underlying worker.Worker for Run/Terminate/Send.
func (aw *ActorWorker[P]) Worker() *worker.Worker[P] { return aw.w }

// Request sends a synchronous request to the hosted actor and blocks for
// the reply. reply, if non-nil, should be a pointer the actor's
// ProcessRequest will populate.
func (aw *ActorWorker[P]) Request(request, reply any) status.Status {
	p := NewPayload(request, reply)
	if !aw.w.Send(p) {
		return status.FromDesc("actor worker is not running", status.RuntimeErr)
	}
	p.Ready.Wait()
	return *p.Status
}

func (aw *ActorWorker[P]) onRequest(p *Payload) {
	defer p.Ready.Set()
	*p.Status = aw.actor.ProcessRequest(p.Request, p.Reply)
}

// OnInit implements worker.Hooks: it starts the actor on a dedicated
// goroutine and waits for Start to report ready.
func (aw *ActorWorker[P]) OnInit() status.Status {
	if aw.actorDone != nil {
		return status.FromDesc("actor worker already initialized", status.RuntimeErr)
	}
	aw.actorDone = make(chan struct{})
	go func() {
		defer close(aw.actorDone)
		aw.actor.Start(aw.sigStarted, &aw.statusStarted)
	}()
	aw.sigStarted.Wait()
	return aw.statusStarted
}

// OnExit implements worker.Hooks: it shuts the actor down on a dedicated
// goroutine, waits for Shutdown to report stopped, and joins the start
// goroutine. It always returns Ok, matching the original design's stance
// that a failed shutdown is logged by the actor itself, not surfaced as a
// worker error.
func (aw *ActorWorker[P]) OnExit() status.Status {
	if aw.actorDone == nil {
		return status.New()
	}
	go aw.actor.Shutdown(aw.sigStopped)
	aw.sigStopped.Wait()
	<-aw.actorDone
	return status.New()
}

// String is a convenience for logging which actor type an ActorWorker
// hosts.
func (aw *ActorWorker[P]) String() string {
	return fmt.Sprintf("ActorWorker[%T]", aw.actor)
}
