// Package bus provides worker.MessageBus implementations: Local for
// running several workers in one process (simulation, tests) and
// RPCBus for routing signals between worker processes over net/rpc,
// matching the Worker<->Coord net/rpc style this module uses for its
// control plane (see package coordclient, package coord).
package bus

import (
	"log"

	"github.com/fkzrh/signal-collect/graph"
)

// SignalReceiver is the inbound half of signal delivery: worker.Inbox
// satisfies it via PushSignal, and neither bus implementation needs to
// know a worker's State type to route signals into it.
type SignalReceiver[Id comparable, Sig any] interface {
	PushSignal(s graph.Signal[Id, Sig])
}

// Local routes signals directly between in-process workers by their
// registered SignalReceiver, skipping serialization entirely. Useful
// for running a multi-worker computation inside a single process, or
// for tests that want real cross-worker signal delivery without a
// network.
type Local[Id comparable, Sig any] struct {
	mapper     func(id Id, numWorkers uint32) uint32
	numWorkers uint32
	receivers  map[uint32]SignalReceiver[Id, Sig]
	sent       uint64
}

func NewLocal[Id comparable, Sig any](numWorkers uint32, mapper func(id Id, numWorkers uint32) uint32) *Local[Id, Sig] {
	return &Local[Id, Sig]{
		mapper:     mapper,
		numWorkers: numWorkers,
		receivers:  make(map[uint32]SignalReceiver[Id, Sig]),
	}
}

// Register associates a worker id with the receiver that owns it.
// Call once per worker before any Send can target it.
func (l *Local[Id, Sig]) Register(workerID uint32, receiver SignalReceiver[Id, Sig]) {
	l.receivers[workerID] = receiver
}

func (l *Local[Id, Sig]) Send(s graph.Signal[Id, Sig]) {
	owner := l.mapper(s.TargetID, l.numWorkers)
	receiver, ok := l.receivers[owner]
	if !ok {
		log.Printf("bus: no receiver registered for worker %d (signal to %v)\n", owner, s.TargetID)
		return
	}
	receiver.PushSignal(s)
	l.sent++
}

func (l *Local[Id, Sig]) MessagesSent() uint64 {
	return l.sent
}
