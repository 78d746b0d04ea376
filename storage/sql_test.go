package storage

import (
	"strconv"
	"testing"

	"github.com/fkzrh/signal-collect/graph"
)

// plainState is a minimal BinaryState using a trivial decimal-text
// encoding, exercising SQLVertexStore without depending on GobState.
type plainState int

func (s plainState) MarshalBinary() ([]byte, error) {
	return []byte(strconv.Itoa(int(s))), nil
}

func (s *plainState) UnmarshalBinary(data []byte) error {
	n, err := strconv.Atoi(string(data))
	if err != nil {
		return err
	}
	*s = plainState(n)
	return nil
}

type sqlTestVertex struct {
	graph.Base[int]
	id    int
	state plainState
}

func (v *sqlTestVertex) ID() int               { return v.id }
func (v *sqlTestVertex) State() plainState     { return v.state }
func (v *sqlTestVertex) SetState(s plainState) { v.state = s }
func (v *sqlTestVertex) ScoreSignal() float64  { return 0 }
func (v *sqlTestVertex) ScoreCollect([]graph.Signal[int, int]) float64 {
	return 0
}
func (v *sqlTestVertex) ExecuteSignal(graph.SignalBus[int, int])                          {}
func (v *sqlTestVertex) ExecuteCollect([]graph.Signal[int, int], graph.SignalBus[int, int]) {}
func (v *sqlTestVertex) AfterInitialization(graph.SignalBus[int, int])                    {}

func newSQLTestVertex(id int, state plainState, edges []graph.Edge[int]) graph.Vertex[int, plainState, int] {
	v := &sqlTestVertex{id: id, state: state}
	for _, e := range edges {
		v.AddOutgoingEdge(e)
	}
	return v
}

func intIDCodec() SQLIDCodec[int] {
	return SQLIDCodec[int]{
		Encode: func(id int) string { return strconv.Itoa(id) },
		Decode: func(s string) (int, error) { return strconv.Atoi(s) },
	}
}

func TestSQLVertexStoreRoundTrip(t *testing.T) {
	store, err := NewSQLiteVertexStore[int, plainState, int, *plainState](
		":memory:", "vertices", intIDCodec(), newSQLTestVertex,
	)
	if err != nil {
		t.Fatalf("NewSQLiteVertexStore: %v", err)
	}

	v := newSQLTestVertex(1, plainState(42), nil)
	if !store.Insert(v) {
		t.Fatal("Insert reported failure for a new vertex")
	}
	if store.Insert(v) {
		t.Fatal("Insert reported success for a duplicate id")
	}

	got, ok := store.Get(1)
	if !ok {
		t.Fatal("Get did not find the inserted vertex")
	}
	if got.State() != 42 {
		t.Fatalf("State = %v, want 42", got.State())
	}

	got.SetState(100)
	store.UpdateStateOfVertex(got)

	reread, _ := store.Get(1)
	if reread.State() != 100 {
		t.Fatalf("State after UpdateStateOfVertex = %v, want 100", reread.State())
	}

	if store.Size() != 1 {
		t.Fatalf("Size = %d, want 1", store.Size())
	}

	store.Remove(1)
	if _, ok := store.Get(1); ok {
		t.Fatal("vertex still present after Remove")
	}
	if store.Size() != 0 {
		t.Fatalf("Size after Remove = %d, want 0", store.Size())
	}
}

func TestSQLVertexStorePreservesEdges(t *testing.T) {
	store, err := NewSQLiteVertexStore[int, plainState, int, *plainState](
		":memory:", "vertices", intIDCodec(), newSQLTestVertex,
	)
	if err != nil {
		t.Fatalf("NewSQLiteVertexStore: %v", err)
	}

	v := newSQLTestVertex(1, plainState(0), nil)
	v.AddOutgoingEdge(graph.Edge[int]{SourceID: 1, TargetID: 2, Kind: "link"})
	store.Insert(v)

	got, ok := store.Get(1)
	if !ok {
		t.Fatal("Get did not find the inserted vertex")
	}
	if got.OutgoingEdgeCount() != 1 {
		t.Fatalf("OutgoingEdgeCount = %d, want 1", got.OutgoingEdgeCount())
	}
}

func TestSQLVertexStoreForeachVisitsEveryVertex(t *testing.T) {
	store, err := NewSQLiteVertexStore[int, plainState, int, *plainState](
		":memory:", "vertices", intIDCodec(), newSQLTestVertex,
	)
	if err != nil {
		t.Fatalf("NewSQLiteVertexStore: %v", err)
	}
	store.Insert(newSQLTestVertex(1, plainState(1), nil))
	store.Insert(newSQLTestVertex(2, plainState(2), nil))
	store.Insert(newSQLTestVertex(3, plainState(3), nil))

	seen := map[int]bool{}
	store.Foreach(func(v graph.Vertex[int, plainState, int]) {
		seen[v.ID()] = true
	})

	if len(seen) != 3 {
		t.Fatalf("Foreach visited %d vertices, want 3", len(seen))
	}
}
