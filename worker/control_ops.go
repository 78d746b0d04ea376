package worker

import (
	"log"

	"github.com/fkzrh/signal-collect/graph"
)

// applyControlOp dispatches a Request delivered through the inbox to
// the matching direct method below. Every method here assumes it runs
// on the worker's own goroutine: applyControlOp is the only caller
// that matters for cross-goroutine callers, which must go through
// Submit/Inbox rather than calling these methods directly.
func (w *Worker[Id, State, Sig]) applyControlOp(op ControlOp[Id, State, Sig]) {
	switch op.Kind {
	case OpAddVertex:
		w.AddVertex(op.Vertex)
	case OpRemoveVertex:
		w.RemoveVertex(op.ID)
	case OpAddEdge:
		w.AddEdge(op.Edge)
	case OpRemoveOutgoingEdge:
		w.RemoveOutgoingEdge(op.ID, op.Edge)
	case OpAddPatternEdge:
		w.AddPatternEdge(op.Predicate, op.EdgeFactory)
	case OpRemoveVertices:
		w.RemoveVertices(op.Predicate)
	case OpSetSignalThreshold:
		w.SetSignalThreshold(op.SignalThreshold)
	case OpSetCollectThreshold:
		w.SetCollectThreshold(op.CollectThreshold)
	case OpRecalculateScores:
		w.RecalculateScores()
	case OpRecalculateScoresFor:
		w.RecalculateScoresFor(op.ID)
	case OpAggregate:
		w.runAggregate(op.Aggregate)
	case OpPause:
		w.Pause()
	case OpStart:
		w.Start()
	case OpShutdown:
		w.Shutdown()
	case OpGetStatistics:
		w.runGetStatistics(op.StatisticsResult)
	default:
		log.Printf("worker %d: applyControlOp: unrecognized kind %d\n", w.id, op.Kind)
	}
}

// AddVertex inserts v if its id is not already present, wiring it into
// the store and running its initialization hook. A duplicate id is a
// silent no-op.
func (w *Worker[Id, State, Sig]) AddVertex(v graph.Vertex[Id, State, Sig]) {
	if v == nil {
		return
	}
	if w.store.Insert(v) {
		w.counters.VerticesAdded++
		v.AfterInitialization(w.signalBus)
	}
}

// RemoveVertex drops id from the store, after detaching its outgoing
// edges. Absent ids are logged and ignored.
func (w *Worker[Id, State, Sig]) RemoveVertex(id Id) {
	v, ok := w.store.Get(id)
	if !ok {
		log.Printf("worker %d: RemoveVertex: vertex %v not found\n", w.id, id)
		return
	}
	edgeCount := v.OutgoingEdgeCount()
	removed := v.RemoveAllOutgoingEdges()
	w.counters.OutgoingEdgesRemoved += uint64(edgeCount + removed)
	w.counters.VerticesRemoved++
	w.toSignal.Remove(id)
	w.toCollect.Remove(id)
	w.store.Remove(id)
}

// AddEdge attaches e to its source vertex and schedules that vertex
// for both collect and signal passes so the new edge is exercised on
// the next step. A missing source or a duplicate (target, kind) pair
// is a no-op.
func (w *Worker[Id, State, Sig]) AddEdge(e graph.Edge[Id]) {
	v, ok := w.store.Get(e.SourceID)
	if !ok {
		log.Printf("worker %d: AddEdge: source vertex %v not found, dropping edge to %v\n", w.id, e.SourceID, e.TargetID)
		return
	}
	if v.AddOutgoingEdge(e) {
		w.counters.EdgesAdded++
		w.store.UpdateStateOfVertex(v)
		w.toCollect.AddVertex(v.ID())
		w.toSignal.Add(v.ID())
	}
}

// RemoveOutgoingEdge detaches the edge with e's TargetID from
// sourceID's outgoing set. Implements GraphAPI so an
// UndeliverableSignalHandler can call it.
func (w *Worker[Id, State, Sig]) RemoveOutgoingEdge(sourceID Id, e graph.Edge[Id]) {
	v, ok := w.store.Get(sourceID)
	if !ok {
		log.Printf("worker %d: RemoveOutgoingEdge: source vertex %v not found\n", w.id, sourceID)
		return
	}
	if v.RemoveOutgoingEdge(e.TargetID) {
		w.counters.OutgoingEdgesRemoved++
		w.store.UpdateStateOfVertex(v)
	}
}

// AddPatternEdge adds EdgeFactory(v) as an outgoing edge of every
// vertex currently in the store for which Predicate(v) holds.
func (w *Worker[Id, State, Sig]) AddPatternEdge(
	predicate func(graph.Vertex[Id, State, Sig]) bool,
	edgeFactory func(graph.Vertex[Id, State, Sig]) graph.Edge[Id],
) {
	if predicate == nil || edgeFactory == nil {
		return
	}
	w.store.Foreach(func(v graph.Vertex[Id, State, Sig]) {
		if predicate(v) {
			w.AddEdge(edgeFactory(v))
		}
	})
}

// RemoveVertices removes every vertex currently in the store for which
// predicate holds. Matches are collected before any removal runs, so
// the predicate always sees the pre-removal store.
func (w *Worker[Id, State, Sig]) RemoveVertices(predicate func(graph.Vertex[Id, State, Sig]) bool) {
	if predicate == nil {
		return
	}
	var matched []Id
	w.store.Foreach(func(v graph.Vertex[Id, State, Sig]) {
		if predicate(v) {
			matched = append(matched, v.ID())
		}
	})
	for _, id := range matched {
		w.RemoveVertex(id)
	}
}

func (w *Worker[Id, State, Sig]) SetSignalThreshold(threshold float64) {
	w.signalThreshold = threshold
}

func (w *Worker[Id, State, Sig]) SetCollectThreshold(threshold float64) {
	w.collectThreshold = threshold
}

// RecalculateScores schedules every vertex in the store for both the
// next collect and the next signal pass, forcing its score functions
// to be re-evaluated regardless of their previous value.
func (w *Worker[Id, State, Sig]) RecalculateScores() {
	w.store.Foreach(func(v graph.Vertex[Id, State, Sig]) {
		w.toCollect.AddVertex(v.ID())
		w.toSignal.Add(v.ID())
	})
}

// RecalculateScoresFor is RecalculateScores restricted to a single id.
// A missing id is a silent no-op.
func (w *Worker[Id, State, Sig]) RecalculateScoresFor(id Id) {
	if _, ok := w.store.Get(id); !ok {
		return
	}
	w.toCollect.AddVertex(id)
	w.toSignal.Add(id)
}

// Aggregate folds over every vertex currently in the store. Intended
// for direct, same-goroutine calls (e.g. from tests or from
// synchronous BSP-mode drivers); cross-goroutine callers should submit
// an OpAggregate ControlOp and read the result off its channel
// instead.
func (w *Worker[Id, State, Sig]) Aggregate(
	neutral State,
	combine func(acc State, v graph.Vertex[Id, State, Sig]) State,
) State {
	acc := neutral
	w.store.Foreach(func(v graph.Vertex[Id, State, Sig]) {
		acc = combine(acc, v)
	})
	return acc
}

func (w *Worker[Id, State, Sig]) runAggregate(req *AggregateRequest[Id, State, Sig]) {
	if req == nil {
		return
	}
	result := w.Aggregate(req.Neutral, req.Combine)
	if req.Result != nil {
		req.Result <- result
	}
}

// Pause and Start set the flags handleIdling consumes at the top of
// the next loop iteration; setPaused's change check makes repeated
// calls with no intervening opposite call idempotent with respect to
// status emission.
func (w *Worker[Id, State, Sig]) Pause() {
	w.shouldPause = true
}

func (w *Worker[Id, State, Sig]) Start() {
	w.shouldStart = true
}

// Shutdown requests that Run exit at the next top-of-loop check, after
// the loop releases the store.
func (w *Worker[Id, State, Sig]) Shutdown() {
	w.shouldShutdown = true
}

// Statistics returns a snapshot for direct, same-goroutine callers.
func (w *Worker[Id, State, Sig]) Statistics() Statistics {
	return Statistics{
		WorkerID:             w.id,
		VertexCount:          w.store.Size(),
		OutgoingEdgeCount:    w.outgoingEdgeCount(),
		MessagesSent:         w.messagesSent(),
		MessagesReceived:     w.counters.MessagesReceived,
		SignalOperationsRun:  w.counters.SignalOperationsRun,
		CollectOperationsRun: w.counters.CollectOperationsRun,
	}
}

func (w *Worker[Id, State, Sig]) runGetStatistics(result chan Statistics) {
	if result == nil {
		return
	}
	result <- w.Statistics()
}

func (w *Worker[Id, State, Sig]) outgoingEdgeCount() int {
	count := 0
	w.store.Foreach(func(v graph.Vertex[Id, State, Sig]) {
		count += v.OutgoingEdgeCount()
	})
	return count
}

func (w *Worker[Id, State, Sig]) messagesSent() uint64 {
	if w.bus == nil {
		return 0
	}
	return w.bus.MessagesSent()
}
