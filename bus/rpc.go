package bus

import (
	"fmt"
	"log"
	"net"
	"net/rpc"
	"sync"

	"github.com/fkzrh/signal-collect/graph"
	"github.com/fkzrh/signal-collect/util"
)

// Envelope is the wire payload for a single signal delivery RPC.
type Envelope[Id comparable, Sig any] struct {
	Signal graph.Signal[Id, Sig]
}

// Ack is the empty reply every RPC in this package uses; net/rpc
// requires a reply pointer even when there is nothing to say back.
type Ack struct{}

// signalService is the RPC receiver registered on a worker's listener.
// Its exported method name becomes "SignalService.Deliver" on the
// wire, following the same Service.Method net/rpc naming this module
// uses elsewhere ("Coord.JoinWorker").
type signalService[Id comparable, Sig any] struct {
	receiver SignalReceiver[Id, Sig]
}

func (s *signalService[Id, Sig]) Deliver(args Envelope[Id, Sig], reply *Ack) error {
	s.receiver.PushSignal(args.Signal)
	return nil
}

// RPCBus routes a signal to whichever worker process owns its target,
// dialing that worker's listener the first time and reusing the
// connection afterward. Grounded in bagel/worker.go's Start (dial via
// util.DialTCPCustom, wrap in rpc.NewClient) and bagel/coord.go's
// listenWorkers (net.Listen + rpc.ServeConn per accepted connection).
type RPCBus[Id comparable, Sig any] struct {
	mapper       func(id Id, numWorkers uint32) uint32
	numWorkers   uint32
	selfWorkerID uint32
	local        SignalReceiver[Id, Sig]

	mu        sync.Mutex
	peerAddrs map[uint32]string
	peers     map[uint32]*rpc.Client

	sent uint64
}

func NewRPCBus[Id comparable, Sig any](
	selfWorkerID, numWorkers uint32,
	mapper func(id Id, numWorkers uint32) uint32,
	local SignalReceiver[Id, Sig],
) *RPCBus[Id, Sig] {
	return &RPCBus[Id, Sig]{
		mapper:       mapper,
		numWorkers:   numWorkers,
		selfWorkerID: selfWorkerID,
		local:        local,
		peerAddrs:    make(map[uint32]string),
		peers:        make(map[uint32]*rpc.Client),
	}
}

// SetPeerAddr records the listen address of another worker's
// signal-delivery service. A coordinator hands out this directory at
// JoinWorker time (package coordclient); RPCBus only consumes it.
func (b *RPCBus[Id, Sig]) SetPeerAddr(workerID uint32, addr string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.peerAddrs[workerID] = addr
}

// Send routes s to its owner. A signal addressed to this worker's own
// shard is delivered in-process, without a wire round trip.
func (b *RPCBus[Id, Sig]) Send(s graph.Signal[Id, Sig]) {
	owner := b.mapper(s.TargetID, b.numWorkers)
	if owner == b.selfWorkerID {
		b.local.PushSignal(s)
		b.sent++
		return
	}

	client, err := b.dial(owner)
	if err != nil {
		log.Printf("bus: dialing worker %d: %v\n", owner, err)
		return
	}
	var reply Ack
	if err := client.Call("SignalService.Deliver", Envelope[Id, Sig]{Signal: s}, &reply); err != nil {
		log.Printf("bus: delivering signal to worker %d: %v\n", owner, err)
		return
	}
	b.sent++
}

func (b *RPCBus[Id, Sig]) dial(workerID uint32) (*rpc.Client, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if client, ok := b.peers[workerID]; ok {
		return client, nil
	}
	addr, ok := b.peerAddrs[workerID]
	if !ok {
		return nil, fmt.Errorf("no address registered for worker %d", workerID)
	}
	conn, err := util.DialTCPCustom("", addr)
	if err != nil {
		return nil, err
	}
	client := rpc.NewClient(conn)
	b.peers[workerID] = client
	return client, nil
}

func (b *RPCBus[Id, Sig]) MessagesSent() uint64 {
	return b.sent
}

// Serve registers this bus's signal-delivery receiver under
// "SignalService" and accepts peer connections until addr stops
// listening or the process exits — mirrors bagel/coord.go's
// listenWorkers.
func (b *RPCBus[Id, Sig]) Serve(addr string) error {
	server := rpc.NewServer()
	if err := server.RegisterName("SignalService", &signalService[Id, Sig]{receiver: b.local}); err != nil {
		return err
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	for {
		conn, err := listener.Accept()
		if err != nil {
			log.Printf("bus: accept: %v\n", err)
			continue
		}
		go server.ServeConn(conn)
	}
}
