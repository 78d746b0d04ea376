package worker

import "github.com/fkzrh/signal-collect/graph"

// ControlKind enumerates the fixed set of control-plane operations a
// coordinator (or any other caller) can ask a worker to perform. This
// replaces a closure-based WorkerRequest(f: Worker -> Unit): a closure
// can't cross a serialization boundary, a tagged variant can.
type ControlKind int

const (
	OpAddVertex ControlKind = iota
	OpRemoveVertex
	OpAddEdge
	OpRemoveOutgoingEdge
	OpAddPatternEdge
	OpRemoveVertices
	OpSetSignalThreshold
	OpSetCollectThreshold
	OpRecalculateScores
	OpRecalculateScoresFor
	OpAggregate
	OpPause
	OpStart
	OpShutdown
	OpGetStatistics
)

// ControlOp is the tagged request payload. Only the fields relevant to
// Kind are set; the rest are the type's zero value. Predicate
// and EdgeFactory stay as Go function values (not serialized data)
// because a ControlOp never leaves the process it was built in — it
// travels over the worker's in-process inbox channel, not the wire.
type ControlOp[Id comparable, State any, Sig any] struct {
	Kind ControlKind

	Vertex graph.Vertex[Id, State, Sig]
	Edge   graph.Edge[Id]
	ID     Id

	// OpAddPatternEdge: for every vertex matching Predicate, add
	// EdgeFactory(vertex) as an outgoing edge.
	Predicate   func(graph.Vertex[Id, State, Sig]) bool
	EdgeFactory func(graph.Vertex[Id, State, Sig]) graph.Edge[Id]

	SignalThreshold  float64
	CollectThreshold float64

	// OpAggregate.
	Aggregate *AggregateRequest[Id, State, Sig]

	// OpGetStatistics: StatisticsResult receives the snapshot before the
	// request is considered complete. A buffered channel of size 1
	// lets the caller block on the answer without stalling the
	// worker loop if nobody is listening.
	StatisticsResult chan Statistics
}

// AggregateRequest folds over every vertex in the store. Combine must
// be associative and commutative if the caller needs a reproducible
// result — iteration order over the store is not guaranteed.
type AggregateRequest[Id comparable, State any, Sig any] struct {
	Neutral State
	Combine func(acc State, v graph.Vertex[Id, State, Sig]) State
	Result  chan State
}
