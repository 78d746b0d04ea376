// Package storage adapts the worker's VertexStore interface to
// externally-backed shard representations: relational databases (via
// database/sql) and DynamoDB. Both are write-through — every mutation
// the worker core makes through UpdateStateOfVertex is persisted
// immediately, matching the "externalized VertexStore" collaborator
// the core is defined against. Neither implementation persists the
// engine's own computation state (superstep number, convergence
// bookkeeping): that remains the coordinator's concern.
package storage

import (
	"bytes"
	"encoding/gob"
)

// BinaryState is the constraint a State type must satisfy to be stored
// by SQLVertexStore or DynamoDBVertexStore: both serialize state to a
// byte column/attribute rather than assume a fixed schema, so any
// State usable with them must know how to marshal itself.
type BinaryState interface {
	MarshalBinary() ([]byte, error)
}

// BinaryStatePtr is the pointer-receiver half of BinaryState:
// UnmarshalBinary must be callable on a zero-value *State to
// reconstruct a State read back from storage.
type BinaryStatePtr[S any] interface {
	*S
	MarshalBinary() ([]byte, error)
	UnmarshalBinary([]byte) error
}

// GobState wraps an arbitrary State in gob encoding so deployments that
// don't want to hand-write MarshalBinary/UnmarshalBinary can still use
// the SQL/DynamoDB stores. Store State as GobState[T] and unwrap with
// Value when handing a vertex its state.
type GobState[T any] struct {
	Value T
}

func (g GobState[T]) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(g.Value); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *GobState[T]) UnmarshalBinary(data []byte) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(&g.Value)
}
