package graph

import "testing"

func TestBaseAddOutgoingEdgeRejectsDuplicate(t *testing.T) {
	var b Base[uint64]

	if !b.AddOutgoingEdge(Edge[uint64]{SourceID: 1, TargetID: 2, Kind: "k"}) {
		t.Fatalf("expected first add to succeed")
	}
	if b.AddOutgoingEdge(Edge[uint64]{SourceID: 1, TargetID: 2, Kind: "k"}) {
		t.Fatalf("expected duplicate add to fail")
	}
	if b.OutgoingEdgeCount() != 1 {
		t.Fatalf("expected 1 edge, got %d", b.OutgoingEdgeCount())
	}
}

func TestBaseRemoveOutgoingEdge(t *testing.T) {
	var b Base[uint64]
	b.AddOutgoingEdge(Edge[uint64]{SourceID: 1, TargetID: 2, Kind: "k"})
	b.AddOutgoingEdge(Edge[uint64]{SourceID: 1, TargetID: 3, Kind: "k"})

	if !b.RemoveOutgoingEdge(2) {
		t.Fatalf("expected removal of existing edge to succeed")
	}
	if b.RemoveOutgoingEdge(2) {
		t.Fatalf("expected removal of already-removed edge to fail")
	}
	if b.OutgoingEdgeCount() != 1 {
		t.Fatalf("expected 1 edge remaining, got %d", b.OutgoingEdgeCount())
	}
}

func TestBaseRemoveAllOutgoingEdges(t *testing.T) {
	var b Base[uint64]
	b.AddOutgoingEdge(Edge[uint64]{SourceID: 1, TargetID: 2})
	b.AddOutgoingEdge(Edge[uint64]{SourceID: 1, TargetID: 3})
	b.AddOutgoingEdge(Edge[uint64]{SourceID: 1, TargetID: 4})

	removed := b.RemoveAllOutgoingEdges()
	if removed != 3 {
		t.Fatalf("expected 3 removed, got %d", removed)
	}
	if b.OutgoingEdgeCount() != 0 {
		t.Fatalf("expected 0 edges remaining, got %d", b.OutgoingEdgeCount())
	}
}
