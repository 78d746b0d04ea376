package worker

import (
	"time"

	"github.com/fkzrh/signal-collect/graph"
)

// Request is a control-plane operation delivered through the inbox.
// The original closure-based WorkerRequest(f: Worker -> Unit) is
// expressed here as the tagged ControlOp variant (see control.go)
// rather than a closure, so Request carries a ControlOp, not a
// function value.
type Request[Id comparable, State any, Sig any] struct {
	Op ControlOp[Id, State, Sig]
}

// inboxItem is the sum type the inbox actually queues: a Signal, a
// Request, or an unrecognized payload that gets logged and dropped.
type inboxItem[Id comparable, State any, Sig any] struct {
	signal  *graph.Signal[Id, Sig]
	request *Request[Id, State, Sig]
	other   bool
}

// Inbox is the worker's single-consumer blocking queue. It is
// unbounded: nothing here throttles senders.
type Inbox[Id comparable, State any, Sig any] struct {
	items chan inboxItem[Id, State, Sig]
}

func NewInbox[Id comparable, State any, Sig any]() *Inbox[Id, State, Sig] {
	return &Inbox[Id, State, Sig]{
		items: make(chan inboxItem[Id, State, Sig], 4096),
	}
}

func (b *Inbox[Id, State, Sig]) PushSignal(s graph.Signal[Id, Sig]) {
	b.items <- inboxItem[Id, State, Sig]{signal: &s}
}

func (b *Inbox[Id, State, Sig]) PushRequest(r Request[Id, State, Sig]) {
	b.items <- inboxItem[Id, State, Sig]{request: &r}
}

// PushOther enqueues a payload the worker does not recognize; process
// logs a warning and drops it. Exists so transports can deliver
// whatever they receive without pre-validating it.
func (b *Inbox[Id, State, Sig]) PushOther() {
	b.items <- inboxItem[Id, State, Sig]{other: true}
}

// poll waits up to timeout for one item. ok is false on timeout.
func (b *Inbox[Id, State, Sig]) poll(timeout time.Duration) (inboxItem[Id, State, Sig], bool) {
	select {
	case item := <-b.items:
		return item, true
	case <-time.After(timeout):
		return inboxItem[Id, State, Sig]{}, false
	}
}

// tryPop returns one item without blocking.
func (b *Inbox[Id, State, Sig]) tryPop() (inboxItem[Id, State, Sig], bool) {
	select {
	case item := <-b.items:
		return item, true
	default:
		return inboxItem[Id, State, Sig]{}, false
	}
}
