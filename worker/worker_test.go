package worker

import (
	"testing"
	"time"

	"github.com/fkzrh/signal-collect/graph"
)

func TestAddVertexIsNoOpForDuplicateID(t *testing.T) {
	w, _, _ := newTestWorker()

	var inits int
	v1 := &fakeVertex{id: 1, onInit: func(graph.SignalBus[int, int]) { inits++ }}
	v2 := &fakeVertex{id: 1, onInit: func(graph.SignalBus[int, int]) { inits++ }}

	w.AddVertex(v1)
	w.AddVertex(v2)

	if w.store.Size() != 1 {
		t.Fatalf("store size = %d, want 1", w.store.Size())
	}
	if w.counters.VerticesAdded != 1 {
		t.Fatalf("VerticesAdded = %d, want 1", w.counters.VerticesAdded)
	}
	if inits != 1 {
		t.Fatalf("AfterInitialization ran %d times, want 1", inits)
	}
}

func TestStoreSizeInvariant(t *testing.T) {
	w, _, _ := newTestWorker()

	w.AddVertex(&fakeVertex{id: 1})
	w.AddVertex(&fakeVertex{id: 2})
	w.AddVertex(&fakeVertex{id: 3})
	w.RemoveVertex(2)

	if got, want := w.store.Size(), int(w.counters.VerticesAdded-w.counters.VerticesRemoved); got != want {
		t.Fatalf("store size = %d, want %d (added - removed)", got, want)
	}
}

func TestAddEdgeSchedulesVertexForSignalAndCollect(t *testing.T) {
	w, _, _ := newTestWorker()
	w.AddVertex(&fakeVertex{id: 1})

	w.AddEdge(graph.Edge[int]{SourceID: 1, TargetID: 2, Kind: "link"})

	if !w.toSignal.Contains(1) {
		t.Fatal("ToSignal does not contain the edge's source vertex")
	}
	if w.toCollect.IsEmpty() {
		t.Fatal("ToCollect is empty after AddEdge")
	}
}

func TestAddEdgeMissingSourceIsNoOp(t *testing.T) {
	w, _, _ := newTestWorker()

	w.AddEdge(graph.Edge[int]{SourceID: 99, TargetID: 2})

	if w.counters.EdgesAdded != 0 {
		t.Fatalf("EdgesAdded = %d, want 0", w.counters.EdgesAdded)
	}
}

func TestAddEdgeDuplicateIsNoOp(t *testing.T) {
	w, _, _ := newTestWorker()
	w.AddVertex(&fakeVertex{id: 1})

	e := graph.Edge[int]{SourceID: 1, TargetID: 2, Kind: "link"}
	w.AddEdge(e)
	w.AddEdge(e)

	if w.counters.EdgesAdded != 1 {
		t.Fatalf("EdgesAdded = %d, want 1", w.counters.EdgesAdded)
	}
}

func TestExecuteSignalOfVertexGatedByThreshold(t *testing.T) {
	w, bus, _ := newTestWorker()
	var ran bool
	v := &fakeVertex{
		id:          1,
		scoreSignal: func() float64 { return 0.1 },
		onSignal:    func(graph.SignalBus[int, int]) { ran = true },
	}
	w.AddVertex(v)

	if w.executeSignalOfVertex(1) {
		t.Fatal("executeSignalOfVertex ran below threshold")
	}
	if ran {
		t.Fatal("ExecuteSignal invoked despite score below threshold")
	}

	v.scoreSignal = func() float64 { return 10 }
	if !w.executeSignalOfVertex(1) {
		t.Fatal("executeSignalOfVertex did not run above threshold")
	}
	if !ran {
		t.Fatal("ExecuteSignal not invoked despite score above threshold")
	}
	if w.counters.SignalOperationsRun != 1 {
		t.Fatalf("SignalOperationsRun = %d, want 1", w.counters.SignalOperationsRun)
	}
	_ = bus
}

func TestExecuteSignalOfVertexMissingReturnsFalse(t *testing.T) {
	w, _, _ := newTestWorker()
	if w.executeSignalOfVertex(404) {
		t.Fatal("executeSignalOfVertex returned true for a missing vertex")
	}
}

func TestExecuteCollectRoutesUndeliverableSignalsWhenVertexMissing(t *testing.T) {
	var routed []graph.Signal[int, int]
	bus := &recordingBus{}
	sink := &recordingStatusSink{}
	w := New(Config[int, int, int]{
		WorkerID:   1,
		Bus:        bus,
		StatusSink: sink,
		UndeliverableHandler: func(s graph.Signal[int, int], api GraphAPI[int, int, int]) {
			routed = append(routed, s)
		},
	})

	uncollected := []graph.Signal[int, int]{{SourceID: 1, TargetID: 404, Payload: 7}}
	if w.executeCollectOfVertex(404, uncollected) {
		t.Fatal("executeCollectOfVertex returned true for a missing vertex")
	}
	if len(routed) != 1 {
		t.Fatalf("undeliverable handler ran %d times, want 1", len(routed))
	}
}

func TestAggregateFoldsOverEveryVertex(t *testing.T) {
	w, _, _ := newTestWorker()
	w.AddVertex(&fakeVertex{id: 1, state: 10})
	w.AddVertex(&fakeVertex{id: 2, state: 20})
	w.AddVertex(&fakeVertex{id: 3, state: 30})

	total := w.Aggregate(0, func(acc int, v graph.Vertex[int, int, int]) int {
		return acc + v.State()
	})

	if total != 60 {
		t.Fatalf("Aggregate total = %d, want 60", total)
	}
}

func TestAddPatternEdgeMatchesPredicateOnly(t *testing.T) {
	w, _, _ := newTestWorker()
	w.AddVertex(&fakeVertex{id: 1, state: 1})
	w.AddVertex(&fakeVertex{id: 2, state: 2})
	w.AddVertex(&fakeVertex{id: 3, state: 1})

	w.AddPatternEdge(
		func(v graph.Vertex[int, int, int]) bool { return v.State() == 1 },
		func(v graph.Vertex[int, int, int]) graph.Edge[int] {
			return graph.Edge[int]{SourceID: v.ID(), TargetID: 99, Kind: "matched"}
		},
	)

	if w.counters.EdgesAdded != 2 {
		t.Fatalf("EdgesAdded = %d, want 2", w.counters.EdgesAdded)
	}
}

func TestRemoveVerticesRemovesAllMatches(t *testing.T) {
	w, _, _ := newTestWorker()
	w.AddVertex(&fakeVertex{id: 1, state: 0})
	w.AddVertex(&fakeVertex{id: 2, state: 1})
	w.AddVertex(&fakeVertex{id: 3, state: 0})

	w.RemoveVertices(func(v graph.Vertex[int, int, int]) bool { return v.State() == 0 })

	if w.store.Size() != 1 {
		t.Fatalf("store size = %d, want 1", w.store.Size())
	}
	if _, ok := w.store.Get(2); !ok {
		t.Fatal("the non-matching vertex was removed")
	}
}

func TestPauseStartIdempotentStatusEmission(t *testing.T) {
	w, _, sink := newTestWorker()

	// handleIdling falls into processInboxOrIdle whenever the worker is
	// converged (true here: no vertices at all), which blocks
	// indefinitely past its timeout waiting for a real message. Prime
	// the inbox with a harmless op before each call so the initial
	// non-blocking poll always has something to consume.
	primeInbox := func() {
		w.inbox.PushRequest(Request[int, int, int]{Op: ControlOp[int, int, int]{
			Kind:             OpGetStatistics,
			StatisticsResult: make(chan Statistics, 1),
		}})
	}

	primeInbox()
	w.Start()
	w.handleIdling()

	primeInbox()
	w.Start() // already running: should not re-emit
	w.handleIdling()

	var pausedFalseCount int
	for _, st := range sink.statuses {
		if !st.IsPaused {
			pausedFalseCount++
		}
	}
	if pausedFalseCount != 1 {
		t.Fatalf("is_paused=false reported %d times, want 1", pausedFalseCount)
	}
}

func TestPauseTransitionsRunningWorkerBackToPaused(t *testing.T) {
	w, _, sink := newTestWorker()

	primeInbox := func() {
		w.inbox.PushRequest(Request[int, int, int]{Op: ControlOp[int, int, int]{
			Kind:             OpGetStatistics,
			StatisticsResult: make(chan Statistics, 1),
		}})
	}

	primeInbox()
	w.Start()
	w.handleIdling()

	primeInbox()
	w.Pause()
	w.handleIdling()

	if !w.isPaused {
		t.Fatal("worker is not paused after Pause() and a handleIdling pass")
	}

	var pausedTrueCount int
	for _, st := range sink.statuses {
		if st.IsPaused {
			pausedTrueCount++
		}
	}
	if pausedTrueCount != 1 {
		t.Fatalf("is_paused=true reported %d times, want 1", pausedTrueCount)
	}
}

func TestSetSignalThresholdAffectsGating(t *testing.T) {
	w, _, _ := newTestWorker()
	v := &fakeVertex{id: 1, scoreSignal: func() float64 { return 0.2 }}
	w.AddVertex(v)

	if w.executeSignalOfVertex(1) {
		t.Fatal("ran with the test worker's 0.5 threshold above score")
	}

	w.SetSignalThreshold(0.1)
	if !w.executeSignalOfVertex(1) {
		t.Fatal("did not run after lowering threshold below score")
	}
}

func TestCollectStepRearmsSignalUnconditionally(t *testing.T) {
	w, _, _ := newTestWorker()
	w.AddVertex(&fakeVertex{id: 1, scoreCollect: func([]graph.Signal[int, int]) float64 { return 0 }})
	w.toCollect.AddVertex(1)

	converged := w.CollectStep()

	if converged {
		t.Fatal("CollectStep reported convergence despite scheduling a signal pass")
	}
	if !w.toSignal.Contains(1) {
		t.Fatal("CollectStep did not re-arm the processed vertex for signal")
	}
	if !w.toCollect.IsEmpty() {
		t.Fatal("CollectStep did not clear ToCollect")
	}
}

func TestSignalStepCountsAndRunsThroughToSignal(t *testing.T) {
	w, _, _ := newTestWorker()
	var ran bool
	w.AddVertex(&fakeVertex{
		id:          1,
		scoreSignal: func() float64 { return 10 },
		onSignal:    func(graph.SignalBus[int, int]) { ran = true },
	})
	w.toSignal.Add(1)

	w.SignalStep()

	if !ran {
		t.Fatal("SignalStep did not execute the scheduled vertex's signal")
	}
	if w.counters.SignalSteps != 1 {
		t.Fatalf("SignalSteps = %d, want 1", w.counters.SignalSteps)
	}
	if !w.toSignal.IsEmpty() {
		t.Fatal("SignalStep did not drain ToSignal")
	}
}

func TestSubmitAndProcessInboxRunsControlOp(t *testing.T) {
	w, _, _ := newTestWorker()
	w.Submit(ControlOp[int, int, int]{Kind: OpAddVertex, Vertex: &fakeVertex{id: 7}})

	w.processInbox()

	if _, ok := w.store.Get(7); !ok {
		t.Fatal("AddVertex submitted through the inbox was not applied")
	}
}

func TestProcessInboxRoutesSignalsToToCollect(t *testing.T) {
	w, _, _ := newTestWorker()
	w.inbox.PushSignal(graph.Signal[int, int]{SourceID: 1, TargetID: 2, Payload: 5})

	w.processInbox()

	if w.toCollect.IsEmpty() {
		t.Fatal("a signal delivered through the inbox did not land in ToCollect")
	}
	if w.counters.MessagesReceived != 1 {
		t.Fatalf("MessagesReceived = %d, want 1", w.counters.MessagesReceived)
	}
}

func TestGetStatisticsReflectsStoreAndCounters(t *testing.T) {
	w, _, _ := newTestWorker()
	w.AddVertex(&fakeVertex{id: 1})
	w.AddVertex(&fakeVertex{id: 2})

	stats := w.Statistics()

	if stats.VertexCount != 2 {
		t.Fatalf("VertexCount = %d, want 2", stats.VertexCount)
	}
	if stats.WorkerID != w.id {
		t.Fatalf("WorkerID = %d, want %d", stats.WorkerID, w.id)
	}
}

func TestRecalculateScoresSchedulesEveryVertex(t *testing.T) {
	w, _, _ := newTestWorker()
	w.AddVertex(&fakeVertex{id: 1})
	w.AddVertex(&fakeVertex{id: 2})

	w.RecalculateScores()

	if !w.toSignal.Contains(1) || !w.toSignal.Contains(2) {
		t.Fatal("RecalculateScores did not schedule every vertex for signal")
	}
	if w.toCollect.IsEmpty() {
		t.Fatal("RecalculateScores did not schedule any vertex for collect")
	}
}

func TestRecalculateScoresForSchedulesOnlyTheGivenVertex(t *testing.T) {
	w, _, _ := newTestWorker()
	w.AddVertex(&fakeVertex{id: 1})
	w.AddVertex(&fakeVertex{id: 2})

	w.RecalculateScoresFor(1)

	if !w.toSignal.Contains(1) {
		t.Fatal("RecalculateScoresFor did not schedule the target vertex for signal")
	}
	if w.toSignal.Contains(2) {
		t.Fatal("RecalculateScoresFor scheduled a vertex it wasn't asked to")
	}
}

func TestRecalculateScoresForMissingVertexIsNoOp(t *testing.T) {
	w, _, _ := newTestWorker()

	w.RecalculateScoresFor(404)

	if !w.toSignal.IsEmpty() || !w.toCollect.IsEmpty() {
		t.Fatal("RecalculateScoresFor scheduled work for a vertex that doesn't exist")
	}
}

// idleWaitSink is a StatusSink used only to drive
// TestShutdownFromIdlePreservesFinalIdleStatus: it records every status
// like recordingStatusSink, but also signals idleOnce the first time it
// sees is_idle=true, so the test can submit Shutdown only once the
// worker has actually reached the blocking receive in
// processInboxOrIdle rather than racing it. ReportStatus only ever runs
// on the worker's own goroutine, so the appends here are safe as long
// as the test only reads statuses after Run has returned.
type idleWaitSink struct {
	statuses []WorkerStatus
	idleOnce chan struct{}
	signaled bool
}

func (s *idleWaitSink) ReportStatus(st WorkerStatus) error {
	s.statuses = append(s.statuses, st)
	if st.IsIdle && !s.signaled {
		s.signaled = true
		close(s.idleOnce)
	}
	return nil
}

func (s *idleWaitSink) ReportStatistics(Statistics) error {
	return nil
}

// TestShutdownFromIdlePreservesFinalIdleStatus drives Run end to end
// through its real entry points (Submit + Run, not the unexported
// helpers other tests call directly), covering the "shutdown while
// idle" path: a worker that never receives Start sits paused, and
// once the queued AddVertex has been applied it goes idle in
// processInboxOrIdle; a Shutdown
// delivered while it's blocked on the inbox must not flip is_idle back
// to false before Run exits and the store is cleaned up.
func TestShutdownFromIdlePreservesFinalIdleStatus(t *testing.T) {
	bus := &recordingBus{}
	sink := &idleWaitSink{idleOnce: make(chan struct{})}
	w := New(Config[int, int, int]{
		WorkerID:    1,
		Bus:         bus,
		StatusSink:  sink,
		IdleTimeout: time.Millisecond,
	})
	w.Submit(ControlOp[int, int, int]{Kind: OpAddVertex, Vertex: &fakeVertex{id: 1}})

	done := make(chan struct{})
	go func() {
		w.Run()
		close(done)
	}()

	select {
	case <-sink.idleOnce:
	case <-time.After(5 * time.Second):
		t.Fatal("worker never reported is_idle=true")
	}

	w.Submit(ControlOp[int, int, int]{Kind: OpShutdown})

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Shutdown was delivered")
	}

	if len(sink.statuses) == 0 {
		t.Fatal("no statuses were reported")
	}
	final := sink.statuses[len(sink.statuses)-1]
	if !final.IsIdle {
		t.Fatalf("final status IsIdle = %v, want true: shutdown delivered while idle must not re-flip is_idle to false", final.IsIdle)
	}
	if !final.IsPaused {
		t.Fatalf("final status IsPaused = %v, want true", final.IsPaused)
	}
	if got := w.store.Size(); got != 0 {
		t.Fatalf("store.Size() after Run returned = %d, want 0 (Cleanup should have run)", got)
	}
}
