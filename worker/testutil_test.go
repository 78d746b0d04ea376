package worker

import (
	"github.com/fkzrh/signal-collect/graph"
)

// fakeVertex is a minimal graph.Vertex[int, int, int] whose behavior is
// supplied by the test via function fields, so each test can exercise
// a specific scoring/execution path without a family of near-identical
// concrete vertex types.
type fakeVertex struct {
	graph.Base[int]

	id    int
	state int

	scoreSignal  func() float64
	scoreCollect func([]graph.Signal[int, int]) float64

	onSignal  func(bus graph.SignalBus[int, int])
	onCollect func(uncollected []graph.Signal[int, int], bus graph.SignalBus[int, int])
	onInit    func(bus graph.SignalBus[int, int])
}

func (v *fakeVertex) ID() int       { return v.id }
func (v *fakeVertex) State() int    { return v.state }
func (v *fakeVertex) SetState(s int) { v.state = s }

func (v *fakeVertex) ScoreSignal() float64 {
	if v.scoreSignal == nil {
		return 0
	}
	return v.scoreSignal()
}

func (v *fakeVertex) ScoreCollect(uncollected []graph.Signal[int, int]) float64 {
	if v.scoreCollect == nil {
		return 0
	}
	return v.scoreCollect(uncollected)
}

func (v *fakeVertex) ExecuteSignal(bus graph.SignalBus[int, int]) {
	if v.onSignal != nil {
		v.onSignal(bus)
	}
}

func (v *fakeVertex) ExecuteCollect(uncollected []graph.Signal[int, int], bus graph.SignalBus[int, int]) {
	if v.onCollect != nil {
		v.onCollect(uncollected, bus)
	}
}

func (v *fakeVertex) AfterInitialization(bus graph.SignalBus[int, int]) {
	if v.onInit != nil {
		v.onInit(bus)
	}
}

// recordingBus is a MessageBus[int, int] that records every signal
// sent and counts them, standing in for an actual cross-worker
// transport in tests that only care about the worker's own behavior.
type recordingBus struct {
	sent []graph.Signal[int, int]
}

func (b *recordingBus) Send(s graph.Signal[int, int]) {
	b.sent = append(b.sent, s)
}

func (b *recordingBus) MessagesSent() uint64 {
	return uint64(len(b.sent))
}

// recordingStatusSink captures every WorkerStatus reported, so tests
// can assert on the exact sequence of is_idle/is_paused transitions.
type recordingStatusSink struct {
	statuses []WorkerStatus
}

func (s *recordingStatusSink) ReportStatus(st WorkerStatus) error {
	s.statuses = append(s.statuses, st)
	return nil
}

func (s *recordingStatusSink) ReportStatistics(Statistics) error {
	return nil
}

func newTestWorker() (*Worker[int, int, int], *recordingBus, *recordingStatusSink) {
	bus := &recordingBus{}
	sink := &recordingStatusSink{}
	w := New(Config[int, int, int]{
		WorkerID:         1,
		NumberOfWorkers:  1,
		Bus:              bus,
		StatusSink:       sink,
		SignalThreshold:  0.5,
		CollectThreshold: 0.5,
	})
	return w, bus, sink
}
