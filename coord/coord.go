// Package coord is the worker-facing surface of a coordinator: worker
// registration and status/statistics reporting, grounded in
// bagel/coord.go's JoinWorker and listenWorkers. Everything else a
// production coordinator would do — checkpoint scheduling, failure
// detection and worker restart, client-facing query dispatch — is out
// of scope — the coordinator is an external collaborator the worker
// core is defined against, not something this module fully
// implements.
package coord

import (
	"log"
	"net"
	"net/rpc"
	"sync"

	"github.com/fkzrh/signal-collect/coordclient"
	"github.com/fkzrh/signal-collect/worker"
)

// Coord tracks the workers that have joined and the most recent status
// and statistics each has reported.
type Coord struct {
	mu        sync.Mutex
	workers   map[uint32]coordclient.WorkerInfo
	statuses  map[uint32]worker.WorkerStatus
	lastStats map[uint32]worker.Statistics
}

func New() *Coord {
	return &Coord{
		workers:   make(map[uint32]coordclient.WorkerInfo),
		statuses:  make(map[uint32]worker.WorkerStatus),
		lastStats: make(map[uint32]worker.Statistics),
	}
}

// JoinWorker registers info.WorkerID and hands back the signal-delivery
// addresses of every worker that joined before it, mirroring
// bagel/coord.go's JoinWorker.
func (c *Coord) JoinWorker(info coordclient.WorkerInfo, reply *coordclient.Directory) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	log.Printf("coord: JoinWorker: worker %d at %s\n", info.WorkerID, info.SignalAddr)

	directory := coordclient.Directory{Peers: make(map[uint32]string, len(c.workers))}
	for id, w := range c.workers {
		directory.Peers[id] = w.SignalAddr
	}
	c.workers[info.WorkerID] = info
	*reply = directory
	return nil
}

func (c *Coord) ReportWorkerStatus(status worker.WorkerStatus, reply *coordclient.Ack) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statuses[status.WorkerID] = status
	*reply = coordclient.Ack{}
	return nil
}

func (c *Coord) ReportWorkerStatistics(stats worker.Statistics, reply *coordclient.Ack) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastStats[stats.WorkerID] = stats
	*reply = coordclient.Ack{}
	return nil
}

// Converged reports whether every joined worker has reported status and
// every reported status is idle — a coordinator's cue to advance a superstep or
// declare the computation finished, applied here across the whole
// worker set rather than per superstep.
func (c *Coord) Converged() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.statuses) == 0 || len(c.statuses) != len(c.workers) {
		return false
	}
	for _, s := range c.statuses {
		if !s.IsIdle {
			return false
		}
	}
	return true
}

// ListenAndServe registers c under the "Coord" RPC service name and
// accepts worker connections until addr stops listening, mirroring
// bagel/coord.go's listenWorkers.
func (c *Coord) ListenAndServe(addr string) error {
	server := rpc.NewServer()
	if err := server.RegisterName("Coord", c); err != nil {
		return err
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	log.Printf("coord: listening for workers on %s\n", addr)
	for {
		conn, err := listener.Accept()
		if err != nil {
			log.Printf("coord: accept: %v\n", err)
			continue
		}
		go server.ServeConn(conn)
	}
}
