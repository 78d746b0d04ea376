package worker

import "github.com/fkzrh/signal-collect/graph"

// MessageBus is the external transport the worker uses to deliver
// signals that target a vertex owned by another worker. Status and
// statistics go to the coordinator through StatusSink instead. This is
// an external collaborator — the core only depends on the interface.
// Concrete adapters live in package bus (in-process and net/rpc);
// package coordclient implements StatusSink.
type MessageBus[Id comparable, Sig any] interface {
	// Send routes a signal to whichever worker owns TargetID, per the
	// bus's vertex_to_worker_mapper. Implementations increment their
	// own messages_sent counter.
	Send(s graph.Signal[Id, Sig])
	MessagesSent() uint64
}

// localSignalBus adapts a MessageBus (worker-external) to the narrower
// graph.SignalBus a Vertex's ExecuteSignal/ExecuteCollect sees, so
// application vertex code never has to know about worker routing.
type localSignalBus[Id comparable, Sig any] struct {
	bus MessageBus[Id, Sig]
}

func (l localSignalBus[Id, Sig]) Send(s graph.Signal[Id, Sig]) {
	l.bus.Send(s)
}

// StatusSink is the coordinator-facing half of the control protocol:
// WorkerStatus on every is_idle/is_paused transition, WorkerStatistics
// on demand.
type StatusSink interface {
	ReportStatus(WorkerStatus) error
	ReportStatistics(Statistics) error
}

// WorkerStatus is emitted exactly once per transition of
// (is_idle, is_paused).
type WorkerStatus struct {
	WorkerID         uint32
	IsIdle           bool
	IsPaused         bool
	MessagesSent     uint64
	MessagesReceived uint64
}

// UndeliverableSignalHandler receives signals whose target vertex is
// absent from the store at collect time. GraphAPI gives
// the handler enough of the worker to react (e.g. to drop a dangling
// edge) without exposing the whole Worker type.
type UndeliverableSignalHandler[Id comparable, State any, Sig any] func(
	s graph.Signal[Id, Sig], api GraphAPI[Id, State, Sig],
)

// GraphAPI is the restricted view of a Worker passed to an
// UndeliverableSignalHandler.
type GraphAPI[Id comparable, State any, Sig any] interface {
	RemoveOutgoingEdge(sourceID Id, e graph.Edge[Id])
}

// noopUndeliverableHandler silently drops the signal.
func noopUndeliverableHandler[Id comparable, State any, Sig any](
	graph.Signal[Id, Sig], GraphAPI[Id, State, Sig],
) {
}
