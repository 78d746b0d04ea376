package worker

import "github.com/fkzrh/signal-collect/graph"

// VertexStore owns a worker's vertex shard. The contract: modifications
// to a vertex handed out by Get are persisted iff
// UpdateStateOfVertex is subsequently called with it — this is what
// lets an externalized store (package storage) keep an out-of-process
// copy without the core caring which representation backs it.
type VertexStore[Id comparable, State any, Sig any] interface {
	Get(id Id) (graph.Vertex[Id, State, Sig], bool)
	// Insert reports whether the vertex was newly added; inserting an
	// id that already exists is a no-op and returns false.
	Insert(v graph.Vertex[Id, State, Sig]) bool
	Remove(id Id)
	Size() int
	Foreach(f func(graph.Vertex[Id, State, Sig]))
	UpdateStateOfVertex(v graph.Vertex[Id, State, Sig])
	Cleanup()
}

// InMemoryVertexStore is the default VertexStore: a plain map owned
// exclusively by the worker goroutine, no locking.
type InMemoryVertexStore[Id comparable, State any, Sig any] struct {
	vertices map[Id]graph.Vertex[Id, State, Sig]
}

func NewInMemoryVertexStore[Id comparable, State any, Sig any]() *InMemoryVertexStore[Id, State, Sig] {
	return &InMemoryVertexStore[Id, State, Sig]{
		vertices: make(map[Id]graph.Vertex[Id, State, Sig]),
	}
}

func (s *InMemoryVertexStore[Id, State, Sig]) Get(id Id) (graph.Vertex[Id, State, Sig], bool) {
	v, ok := s.vertices[id]
	return v, ok
}

func (s *InMemoryVertexStore[Id, State, Sig]) Insert(v graph.Vertex[Id, State, Sig]) bool {
	if _, exists := s.vertices[v.ID()]; exists {
		return false
	}
	s.vertices[v.ID()] = v
	return true
}

func (s *InMemoryVertexStore[Id, State, Sig]) Remove(id Id) {
	delete(s.vertices, id)
}

func (s *InMemoryVertexStore[Id, State, Sig]) Size() int {
	return len(s.vertices)
}

func (s *InMemoryVertexStore[Id, State, Sig]) Foreach(f func(graph.Vertex[Id, State, Sig])) {
	for _, v := range s.vertices {
		f(v)
	}
}

// UpdateStateOfVertex is a no-op: the map already holds the live
// pointer/value handed out by Get, so mutations are visible without a
// write-back. Externalized stores (package storage) override this.
func (s *InMemoryVertexStore[Id, State, Sig]) UpdateStateOfVertex(graph.Vertex[Id, State, Sig]) {
}

func (s *InMemoryVertexStore[Id, State, Sig]) Cleanup() {
	s.vertices = make(map[Id]graph.Vertex[Id, State, Sig])
}
