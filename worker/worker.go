// Package worker implements the per-worker compute core of the
// signal/collect engine: a single cooperative event loop that drives a
// shard of the vertex set through alternating signal and collect
// phases until the shard converges, while answering control-plane
// requests from an external coordinator.
package worker

import (
	"log"
	"time"

	"github.com/fkzrh/signal-collect/graph"
)

const (
	DefaultSignalThreshold  = 0.001
	DefaultCollectThreshold = 0.0
	DefaultIdleTimeout      = 5 * time.Millisecond
)

// Config is consumed at construction.
type Config[Id comparable, State any, Sig any] struct {
	WorkerID        uint32
	NumberOfWorkers uint32

	// Store defaults to a fresh InMemoryVertexStore when nil. The
	// store is built eagerly here, not lazily on first use, so
	// misconfiguration surfaces before Run is ever called, not during
	// an in-flight computation.
	Store VertexStore[Id, State, Sig]
	Bus   MessageBus[Id, Sig]

	StatusSink            StatusSink
	UndeliverableHandler   UndeliverableSignalHandler[Id, State, Sig]

	SignalThreshold  float64
	CollectThreshold float64
	IdleTimeout      time.Duration
}

// Worker is the single-threaded runtime owning one shard. Every field
// below is read and written exclusively from the goroutine running Run
// (or, for tests, from whichever single goroutine calls the direct
// control-plane methods) — no locks guard any of it.
type Worker[Id comparable, State any, Sig any] struct {
	id         uint32
	numWorkers uint32

	store     VertexStore[Id, State, Sig]
	toSignal  *ToSignal[Id]
	toCollect *ToCollect[Id, Sig]
	inbox     *Inbox[Id, State, Sig]

	bus           MessageBus[Id, Sig]
	signalBus     graph.SignalBus[Id, Sig]
	statusSink    StatusSink
	undeliverable UndeliverableSignalHandler[Id, State, Sig]

	signalThreshold  float64
	collectThreshold float64
	idleTimeout      time.Duration

	counters Counters

	isIdle          bool
	isPaused        bool
	shouldStart     bool
	shouldPause     bool
	shouldShutdown  bool
}

func New[Id comparable, State any, Sig any](cfg Config[Id, State, Sig]) *Worker[Id, State, Sig] {
	store := cfg.Store
	if store == nil {
		store = NewInMemoryVertexStore[Id, State, Sig]()
	}

	undeliverable := cfg.UndeliverableHandler
	if undeliverable == nil {
		undeliverable = noopUndeliverableHandler[Id, State, Sig]
	}

	signalThreshold := cfg.SignalThreshold
	if signalThreshold == 0 {
		signalThreshold = DefaultSignalThreshold
	}
	idleTimeout := cfg.IdleTimeout
	if idleTimeout == 0 {
		idleTimeout = DefaultIdleTimeout
	}

	w := &Worker[Id, State, Sig]{
		id:               cfg.WorkerID,
		numWorkers:       cfg.NumberOfWorkers,
		store:            store,
		toSignal:         NewToSignal[Id](),
		toCollect:        NewToCollect[Id, Sig](),
		inbox:            NewInbox[Id, State, Sig](),
		bus:              cfg.Bus,
		statusSink:       cfg.StatusSink,
		undeliverable:    undeliverable,
		signalThreshold:  signalThreshold,
		collectThreshold: cfg.CollectThreshold,
		idleTimeout:      idleTimeout,
		isPaused:         true,
	}
	if cfg.Bus != nil {
		w.signalBus = localSignalBus[Id, Sig]{bus: cfg.Bus}
	}
	return w
}

// Inbox exposes the worker's inbox so transports (package bus) can
// push signals and requests into it from other goroutines/processes.
func (w *Worker[Id, State, Sig]) Inbox() *Inbox[Id, State, Sig] {
	return w.inbox
}

// SetBus attaches the worker's outbound transport after construction.
// It exists because a transport like bus.RPCBus needs the worker's
// Inbox (via SignalReceiver) to be built itself — New can't hand a
// not-yet-constructed bus to the worker, and a bus can't be built
// before the worker it delivers into exists. Call it once, before Run.
func (w *Worker[Id, State, Sig]) SetBus(b MessageBus[Id, Sig]) {
	w.bus = b
	w.signalBus = localSignalBus[Id, Sig]{bus: b}
}

// SetStatusSink attaches the coordinator-facing status/statistics
// reporter after construction, for the same reason SetBus exists: a
// coordclient.Client dials the coordinator, and the coordinator's
// JoinWorker response is often what a bus needs before Run should
// start, so the sink is rarely available at worker.New time either.
func (w *Worker[Id, State, Sig]) SetStatusSink(sink StatusSink) {
	w.statusSink = sink
}

func (w *Worker[Id, State, Sig]) WorkerID() uint32 {
	return w.id
}

// Submit enqueues a control-plane operation to run on the worker's own
// goroutine. Safe to call from any goroutine.
func (w *Worker[Id, State, Sig]) Submit(op ControlOp[Id, State, Sig]) {
	w.inbox.PushRequest(Request[Id, State, Sig]{Op: op})
}

// Run is the worker's main loop. It blocks until a Shutdown control op
// is processed.
func (w *Worker[Id, State, Sig]) Run() {
	for !w.shouldShutdown {
		w.handleIdling()
		if !w.isPaused {
			w.toSignal.Foreach(func(id Id) {
				w.executeSignalOfVertex(id)
			})
			w.toCollect.Foreach(func(id Id, uncollected []graph.Signal[Id, Sig]) {
				w.processInbox()
				collected := w.executeCollectOfVertex(id, uncollected)
				if collected {
					w.executeSignalOfVertex(id)
				}
			})
		}
	}
	w.store.Cleanup()
}

func (w *Worker[Id, State, Sig]) isConverged() bool {
	return w.toSignal.IsEmpty() && w.toCollect.IsEmpty()
}

func (w *Worker[Id, State, Sig]) handleIdling() {
	if w.shouldStart {
		w.shouldStart = false
		w.setPaused(false)
	} else if w.shouldPause {
		w.shouldPause = false
		w.setPaused(true)
	}

	if w.isConverged() || w.isPaused {
		w.processInboxOrIdle(w.idleTimeout)
	} else {
		w.processInbox()
	}
}

// processInbox drains every item currently available without blocking.
func (w *Worker[Id, State, Sig]) processInbox() {
	for {
		item, ok := w.inbox.tryPop()
		if !ok {
			return
		}
		w.process(item)
	}
}

// processInboxOrIdle polls for up to timeout. A message within timeout
// is dispatched and followed by a full non-blocking drain. On timeout
// the worker reports idle, blocks for exactly one message, dispatches
// it, then reports not-idle — unless that message was a Shutdown, in
// which case is_idle stays true: the coordinator's last observed
// status for a worker shut down while idle should still show it idle,
// not idle-then-briefly-not-idle-then-gone.
func (w *Worker[Id, State, Sig]) processInboxOrIdle(timeout time.Duration) {
	item, ok := w.inbox.poll(timeout)
	if ok {
		w.process(item)
		w.processInbox()
		return
	}

	w.setIdle(true)
	blocking := <-w.inbox.items
	w.process(blocking)
	if !w.shouldShutdown {
		w.setIdle(false)
	}
}

func (w *Worker[Id, State, Sig]) process(item inboxItem[Id, State, Sig]) {
	w.counters.MessagesReceived++
	switch {
	case item.signal != nil:
		w.toCollect.AddSignal(*item.signal)
	case item.request != nil:
		w.applyControlOp(item.request.Op)
	default:
		log.Printf("worker %d: process: dropping unrecognized inbox item\n", w.id)
	}
}

func (w *Worker[Id, State, Sig]) setIdle(idle bool) {
	if w.isIdle == idle {
		return
	}
	w.isIdle = idle
	w.emitStatus()
}

func (w *Worker[Id, State, Sig]) setPaused(paused bool) {
	if w.isPaused == paused {
		return
	}
	w.isPaused = paused
	w.emitStatus()
}

func (w *Worker[Id, State, Sig]) emitStatus() {
	status := WorkerStatus{
		WorkerID:         w.id,
		IsIdle:           w.isIdle,
		IsPaused:         w.isPaused,
		MessagesReceived: w.counters.MessagesReceived,
	}
	if w.bus != nil {
		status.MessagesSent = w.bus.MessagesSent()
	}
	if w.statusSink == nil {
		log.Printf("worker %d: status: idle=%v paused=%v\n", w.id, status.IsIdle, status.IsPaused)
		return
	}
	if err := w.statusSink.ReportStatus(status); err != nil {
		log.Printf("worker %d: emitStatus: failed to report status: %v\n", w.id, err)
	}
}

// executeSignalOfVertex is the sole gate for ExecuteSignal: the vertex
// must exist and score above signalThreshold.
func (w *Worker[Id, State, Sig]) executeSignalOfVertex(id Id) bool {
	v, ok := w.store.Get(id)
	if !ok {
		return false
	}
	if v.ScoreSignal() > w.signalThreshold {
		w.counters.SignalOperationsRun++
		v.ExecuteSignal(w.signalBus)
		w.store.UpdateStateOfVertex(v)
		return true
	}
	return false
}

// executeCollectOfVertex routes uncollected signals to the
// undeliverable handler if the target vertex is gone, otherwise gates
// ExecuteCollect on collectThreshold exactly like executeSignalOfVertex
// gates ExecuteSignal.
func (w *Worker[Id, State, Sig]) executeCollectOfVertex(id Id, uncollected []graph.Signal[Id, Sig]) bool {
	v, ok := w.store.Get(id)
	if !ok {
		for _, s := range uncollected {
			w.undeliverable(s, w)
		}
		return false
	}
	if v.ScoreCollect(uncollected) > w.collectThreshold {
		w.counters.CollectOperationsRun++
		v.ExecuteCollect(uncollected, w.signalBus)
		w.store.UpdateStateOfVertex(v)
		return true
	}
	return false
}

// SignalStep and CollectStep are the explicit BSP-style driver entry
// points. A given Worker instance should be driven
// either by Run (asynchronous mode) or by alternating SignalStep and
// CollectStep (synchronous mode) — not both; see DESIGN.md.
func (w *Worker[Id, State, Sig]) SignalStep() {
	w.counters.SignalSteps++
	w.toSignal.Foreach(func(id Id) {
		w.executeSignalOfVertex(id)
	})
}

// CollectStep processes every pending collect entry, unconditionally
// re-arming each processed id for the next signal step, then reports
// whether the shard is now fully converged with respect to the signal
// set.
func (w *Worker[Id, State, Sig]) CollectStep() bool {
	w.counters.CollectSteps++
	w.toCollect.Foreach(func(id Id, uncollected []graph.Signal[Id, Sig]) {
		w.executeCollectOfVertex(id, uncollected)
		w.toSignal.Add(id)
	})
	w.toCollect.Clear()
	return w.toSignal.IsEmpty()
}
