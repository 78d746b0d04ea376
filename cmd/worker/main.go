// cmd/worker runs one shard of a PageRank computation: it loads its
// partition of the graph, joins the coordinator, and drives the
// signal/collect loop to convergence. Grounded in bagel/worker.go's
// Start (read config, dial coordinator, join, serve), rewritten
// against the package boundaries this module settled on (worker, bus,
// coordclient, loader, statusapi) instead of bagel's closure-based
// WorkerRequest and monolithic Worker struct.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/fkzrh/signal-collect/bus"
	"github.com/fkzrh/signal-collect/coordclient"
	"github.com/fkzrh/signal-collect/examples/pagerank"
	"github.com/fkzrh/signal-collect/graph"
	"github.com/fkzrh/signal-collect/loader"
	"github.com/fkzrh/signal-collect/statusapi"
	"github.com/fkzrh/signal-collect/util"
	"github.com/fkzrh/signal-collect/worker"
)

func parseID(token string) (uint64, error) {
	var id uint64
	_, err := fmt.Sscan(token, &id)
	return id, err
}

func main() {
	configPath := flag.String("config", "", "path to this worker's JSON config file")
	flag.Parse()
	if *configPath == "" {
		log.Fatal("worker: -config is required")
	}

	var cfg util.WorkerConfig
	util.CheckErr(util.ReadJSONConfig(*configPath, &cfg), "worker: reading config %s\n", *configPath)

	w := worker.New(worker.Config[uint64, pagerank.State, float64]{
		WorkerID:        cfg.WorkerID,
		NumberOfWorkers: cfg.NumberOfWorkers,
	})

	rpcBus := bus.NewRPCBus[uint64, float64](cfg.WorkerID, cfg.NumberOfWorkers, util.DefaultMapper, w.Inbox())
	w.SetBus(rpcBus)

	coordClient, err := coordclient.Dial(cfg.CoordAddr)
	util.CheckErr(err, "worker: dialing coordinator %s\n", cfg.CoordAddr)
	defer coordClient.Close()
	w.SetStatusSink(coordClient)

	directory, err := coordClient.Join(coordclient.WorkerInfo{WorkerID: cfg.WorkerID, SignalAddr: cfg.SignalListenAddr})
	util.CheckErr(err, "worker: joining coordinator at %s\n", cfg.CoordAddr)
	for peerID, addr := range directory.Peers {
		rpcBus.SetPeerAddr(peerID, addr)
	}

	go func() {
		if err := rpcBus.Serve(cfg.SignalListenAddr); err != nil {
			log.Fatalf("worker %d: signal service: %v\n", cfg.WorkerID, err)
		}
	}()

	staticLoader := &loader.StaticLoader[uint64, pagerank.State, float64]{
		Path:    cfg.GraphPath,
		ParseID: parseID,
		OwnerOf: util.DefaultMapper,
		NewVertex: func(id uint64) graph.Vertex[uint64, pagerank.State, float64] {
			return pagerank.New(id)
		},
	}
	util.CheckErr(
		staticLoader.Load(loaderSink[uint64, pagerank.State, float64]{w}, cfg.WorkerID, cfg.NumberOfWorkers),
		"worker %d: loading graph partition\n", cfg.WorkerID,
	)

	go func() {
		router := statusapi.New(func() (interface{}, error) {
			return requestStatistics(w), nil
		})
		if err := router.Run(cfg.StatsListenAddr); err != nil {
			log.Printf("worker %d: status api: %v\n", cfg.WorkerID, err)
		}
	}()

	w.Submit(worker.ControlOp[uint64, pagerank.State, float64]{Kind: worker.OpStart})
	log.Printf("worker %d: starting\n", cfg.WorkerID)
	w.Run()
}

// requestStatistics asks the worker's own goroutine for a snapshot via
// OpGetStatistics rather than calling w.Statistics() directly — that
// method (like every other Worker method) assumes its caller *is* the
// goroutine running Run, and statusapi's handler runs on its own.
func requestStatistics[Id comparable, State any, Sig any](w *worker.Worker[Id, State, Sig]) worker.Statistics {
	result := make(chan worker.Statistics, 1)
	w.Submit(worker.ControlOp[Id, State, Sig]{Kind: worker.OpGetStatistics, StatisticsResult: result})
	return <-result
}

// loaderSink adapts *worker.Worker to loader.Sink by submitting
// ControlOps rather than mutating the store directly, since Load runs
// before w.Run's goroutine starts consuming the inbox — Submit's
// buffered channel write still succeeds, and AddVertex/AddEdge apply
// the moment Run starts draining it.
type loaderSink[Id comparable, State any, Sig any] struct {
	w *worker.Worker[Id, State, Sig]
}

func (s loaderSink[Id, State, Sig]) AddVertex(v graph.Vertex[Id, State, Sig]) {
	s.w.Submit(worker.ControlOp[Id, State, Sig]{Kind: worker.OpAddVertex, Vertex: v})
}

func (s loaderSink[Id, State, Sig]) AddEdge(e graph.Edge[Id]) {
	s.w.Submit(worker.ControlOp[Id, State, Sig]{Kind: worker.OpAddEdge, Edge: e})
}
