// Package coordclient is the worker-facing half of the Worker<->Coord
// control protocol: registering with the coordinator at startup (dial
// + "Coord.JoinWorker" call) and reporting status/statistics during a
// run ("Coord.ReportWorkerStatus"/"Coord.ReportWorkerStatistics" calls); the
// coordinator's own side (failover, checkpoint scheduling) is out of
// scope here — only the RPC surface a worker needs to speak exists.
package coordclient

import (
	"net/rpc"

	"github.com/fkzrh/signal-collect/util"
	"github.com/fkzrh/signal-collect/worker"
)

// WorkerInfo is what a worker announces when it joins.
type WorkerInfo struct {
	WorkerID   uint32
	SignalAddr string // where this worker's bus.RPCBus listens for peer signal deliveries
}

// Directory is what the coordinator hands back: the signal-delivery
// address of every worker that joined before this one, keyed by worker
// id, so the joining worker can populate its RPCBus's peer table.
// Workers that join later are not in it.
type Directory struct {
	Peers map[uint32]string
}

// Ack is the empty reply for calls that have nothing to report back.
type Ack struct{}

// Client is the worker-side RPC connection to the coordinator.
type Client struct {
	rpc *rpc.Client
}

// Dial connects to a coordinator's worker-facing listener the same way
// bagel/worker.go's Start does: util.DialTCPCustom followed by
// rpc.NewClient over the resulting connection.
func Dial(coordAddr string) (*Client, error) {
	conn, err := util.DialTCPCustom("", coordAddr)
	if err != nil {
		return nil, err
	}
	return &Client{rpc: rpc.NewClient(conn)}, nil
}

// Join registers this worker with the coordinator and receives back
// the directory of peer workers already known.
func (c *Client) Join(info WorkerInfo) (Directory, error) {
	var directory Directory
	err := c.rpc.Call("Coord.JoinWorker", info, &directory)
	return directory, err
}

// ReportStatus implements worker.StatusSink, forwarding every
// is_idle/is_paused transition to the coordinator.
func (c *Client) ReportStatus(status worker.WorkerStatus) error {
	var ack Ack
	return c.rpc.Call("Coord.ReportWorkerStatus", status, &ack)
}

// ReportStatistics implements worker.StatusSink's on-demand half.
func (c *Client) ReportStatistics(stats worker.Statistics) error {
	var ack Ack
	return c.rpc.Call("Coord.ReportWorkerStatistics", stats, &ack)
}

func (c *Client) Close() error {
	return c.rpc.Close()
}
