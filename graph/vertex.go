// Package graph defines the data model the worker core operates on:
// vertices, edges and signals, generic over the vertex id type and the
// signal payload type chosen by a deployment.
package graph

// Vertex is the application-defined entity driven through alternating
// signal and collect phases. Id must be stable for the vertex's
// lifetime; State is mutated in place by ExecuteSignal/ExecuteCollect.
type Vertex[Id comparable, State any, Sig any] interface {
	ID() Id
	State() State
	SetState(State)

	ScoreSignal() float64
	ScoreCollect(uncollected []Signal[Id, Sig]) float64

	ExecuteSignal(bus SignalBus[Id, Sig])
	ExecuteCollect(uncollected []Signal[Id, Sig], bus SignalBus[Id, Sig])

	// AfterInitialization runs once, right after the vertex is inserted
	// into the store.
	AfterInitialization(bus SignalBus[Id, Sig])

	AddOutgoingEdge(e Edge[Id]) bool
	RemoveOutgoingEdge(targetID Id) bool
	RemoveAllOutgoingEdges() int
	OutgoingEdgeCount() int
	OutgoingEdges() []Edge[Id]
}

// SignalBus is the narrow slice of the message bus a vertex needs to
// emit signals during ExecuteSignal/ExecuteCollect. The full transport
// contract (routing, counters) is worker.MessageBus; its
// implementations, with their registration, live in package bus.
type SignalBus[Id comparable, Sig any] interface {
	Send(s Signal[Id, Sig])
}

// Edge is owned by its source vertex; Kind is an application tag
// (edge type, weight class, ...) carried opaquely by the core.
type Edge[Id comparable] struct {
	SourceID Id
	TargetID Id
	Kind     string
}

// Signal is a payload emitted from SourceID, addressed to TargetID.
type Signal[Id comparable, Sig any] struct {
	SourceID Id
	TargetID Id
	Payload  Sig
}

// Base implements the edge bookkeeping (AddOutgoingEdge,
// RemoveOutgoingEdge, RemoveAllOutgoingEdges, OutgoingEdgeCount,
// OutgoingEdges) that nearly every concrete Vertex needs verbatim.
// Embed it and supply the rest (ID, State, scoring, execute).
type Base[Id comparable] struct {
	edges []Edge[Id]
}

func (b *Base[Id]) AddOutgoingEdge(e Edge[Id]) bool {
	for _, existing := range b.edges {
		if existing.TargetID == e.TargetID && existing.Kind == e.Kind {
			return false
		}
	}
	b.edges = append(b.edges, e)
	return true
}

func (b *Base[Id]) RemoveOutgoingEdge(targetID Id) bool {
	for i, e := range b.edges {
		if e.TargetID == targetID {
			b.edges = append(b.edges[:i], b.edges[i+1:]...)
			return true
		}
	}
	return false
}

func (b *Base[Id]) RemoveAllOutgoingEdges() int {
	n := len(b.edges)
	b.edges = nil
	return n
}

func (b *Base[Id]) OutgoingEdgeCount() int {
	return len(b.edges)
}

func (b *Base[Id]) OutgoingEdges() []Edge[Id] {
	return b.edges
}
