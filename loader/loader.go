// Package loader builds the initial vertex set a worker starts with.
// A Loader is purely a bootstrap collaborator: it runs once, before
// Run, and hands the worker AddVertex/AddEdge calls to apply — it has
// no further role once computation starts, unlike the externalized
// stores in package storage which stay wired in for the whole run.
package loader

import "github.com/fkzrh/signal-collect/graph"

// Sink is the narrow slice of worker.Worker a Loader needs: enough to
// populate a shard, nothing that would let a loader drive computation.
type Sink[Id comparable, State any, Sig any] interface {
	AddVertex(v graph.Vertex[Id, State, Sig])
	AddEdge(e graph.Edge[Id])
}

// Loader populates sink with this worker's partition of the graph.
// workerID/numWorkers let a Loader implementation decide which vertices
// belong to this worker without the worker core knowing how
// partitioning is done (the vertex_to_worker_mapper concern, applied
// at load time rather than at signal-routing time).
type Loader[Id comparable, State any, Sig any] interface {
	Load(sink Sink[Id, State, Sig], workerID, numWorkers uint32) error
}
