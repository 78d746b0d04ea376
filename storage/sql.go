package storage

import (
	"bytes"
	"database/sql"
	"encoding/gob"
	"fmt"
	"log"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"github.com/fkzrh/signal-collect/graph"
)

// SQLVertexStore is a worker.VertexStore backed by any database/sql
// driver: sqlite3, MySQL and SQL Server are wired in, selected by the
// constructor used, not by a runtime driver-name switch. All three
// share this one implementation because the schema and queries below
// stick to the ANSI SQL subset (and the `?` placeholder syntax) that
// sql.DB's driver layer translates for each of them.
//
// State is read and written as an opaque blob via PS's
// MarshalBinary/UnmarshalBinary (see BinaryStatePtr) rather than
// mapped onto columns, so the store never needs to know the shape of
// a deployment's vertex state — unlike a hand-rolled fixed schema per
// use case.
type SQLVertexStore[Id comparable, State any, Sig any, PS BinaryStatePtr[State]] struct {
	db        *sql.DB
	table     string
	encodeID  func(Id) string
	decodeID  func(string) (Id, error)
	newVertex func(id Id, state State, edges []graph.Edge[Id]) graph.Vertex[Id, State, Sig]
}

// SQLIDCodec bundles the Id<->string conversion a deployment must
// supply: Id is only constrained to be comparable, so the store cannot
// assume it can format or parse one on its own.
type SQLIDCodec[Id comparable] struct {
	Encode func(Id) string
	Decode func(string) (Id, error)
}

func NewSQLiteVertexStore[Id comparable, State any, Sig any, PS BinaryStatePtr[State]](
	dsn, table string,
	idCodec SQLIDCodec[Id],
	newVertex func(id Id, state State, edges []graph.Edge[Id]) graph.Vertex[Id, State, Sig],
) (*SQLVertexStore[Id, State, Sig, PS], error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	return newSQLVertexStore[Id, State, Sig, PS](db, table, idCodec, newVertex)
}

func NewMySQLVertexStore[Id comparable, State any, Sig any, PS BinaryStatePtr[State]](
	dsn, table string,
	idCodec SQLIDCodec[Id],
	newVertex func(id Id, state State, edges []graph.Edge[Id]) graph.Vertex[Id, State, Sig],
) (*SQLVertexStore[Id, State, Sig, PS], error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	return newSQLVertexStore[Id, State, Sig, PS](db, table, idCodec, newVertex)
}

func NewMSSQLVertexStore[Id comparable, State any, Sig any, PS BinaryStatePtr[State]](
	dsn, table string,
	idCodec SQLIDCodec[Id],
	newVertex func(id Id, state State, edges []graph.Edge[Id]) graph.Vertex[Id, State, Sig],
) (*SQLVertexStore[Id, State, Sig, PS], error) {
	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, err
	}
	return newSQLVertexStore[Id, State, Sig, PS](db, table, idCodec, newVertex)
}

func newSQLVertexStore[Id comparable, State any, Sig any, PS BinaryStatePtr[State]](
	db *sql.DB,
	table string,
	idCodec SQLIDCodec[Id],
	newVertex func(id Id, state State, edges []graph.Edge[Id]) graph.Vertex[Id, State, Sig],
) (*SQLVertexStore[Id, State, Sig, PS], error) {
	s := &SQLVertexStore[Id, State, Sig, PS]{
		db:        db,
		table:     table,
		encodeID:  idCodec.Encode,
		decodeID:  idCodec.Decode,
		newVertex: newVertex,
	}
	// table is operator-supplied configuration, not request data, so
	// interpolating it into DDL carries none of the injection risk
	// string-concatenated WHERE clauses do.
	_, err := s.db.Exec(fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (id TEXT PRIMARY KEY, state BLOB, edges BLOB)`,
		s.table,
	))
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLVertexStore[Id, State, Sig, PS]) Get(id Id) (graph.Vertex[Id, State, Sig], bool) {
	row := s.db.QueryRow(
		fmt.Sprintf("SELECT state, edges FROM %s WHERE id = ?", s.table),
		s.encodeID(id),
	)
	var stateBytes, edgeBytes []byte
	if err := row.Scan(&stateBytes, &edgeBytes); err != nil {
		return nil, false
	}
	v, err := s.decodeVertex(id, stateBytes, edgeBytes)
	if err != nil {
		log.Printf("storage: Get(%v): %v\n", id, err)
		return nil, false
	}
	return v, true
}

func (s *SQLVertexStore[Id, State, Sig, PS]) Insert(v graph.Vertex[Id, State, Sig]) bool {
	if _, exists := s.Get(v.ID()); exists {
		return false
	}
	if err := s.writeVertex(v); err != nil {
		log.Printf("storage: Insert(%v): %v\n", v.ID(), err)
		return false
	}
	return true
}

func (s *SQLVertexStore[Id, State, Sig, PS]) Remove(id Id) {
	if _, err := s.db.Exec(fmt.Sprintf("DELETE FROM %s WHERE id = ?", s.table), s.encodeID(id)); err != nil {
		log.Printf("storage: Remove(%v): %v\n", id, err)
	}
}

func (s *SQLVertexStore[Id, State, Sig, PS]) Size() int {
	var n int
	if err := s.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", s.table)).Scan(&n); err != nil {
		log.Printf("storage: Size: %v\n", err)
		return 0
	}
	return n
}

func (s *SQLVertexStore[Id, State, Sig, PS]) Foreach(f func(graph.Vertex[Id, State, Sig])) {
	rows, err := s.db.Query(fmt.Sprintf("SELECT id, state, edges FROM %s", s.table))
	if err != nil {
		log.Printf("storage: Foreach: %v\n", err)
		return
	}
	defer rows.Close()

	for rows.Next() {
		var idStr string
		var stateBytes, edgeBytes []byte
		if err := rows.Scan(&idStr, &stateBytes, &edgeBytes); err != nil {
			log.Printf("storage: Foreach: scan: %v\n", err)
			continue
		}
		id, err := s.decodeID(idStr)
		if err != nil {
			log.Printf("storage: Foreach: decode id %q: %v\n", idStr, err)
			continue
		}
		v, err := s.decodeVertex(id, stateBytes, edgeBytes)
		if err != nil {
			log.Printf("storage: Foreach(%v): %v\n", id, err)
			continue
		}
		f(v)
	}
}

// UpdateStateOfVertex writes v's current state and edges back, unlike
// InMemoryVertexStore's no-op: the store here holds its own decoded
// copy, not the live pointer the worker mutated.
func (s *SQLVertexStore[Id, State, Sig, PS]) UpdateStateOfVertex(v graph.Vertex[Id, State, Sig]) {
	if err := s.writeVertex(v); err != nil {
		log.Printf("storage: UpdateStateOfVertex(%v): %v\n", v.ID(), err)
	}
}

// Cleanup is a no-op: the point of an externalized store is that its
// contents outlive any one worker process, so Run's shutdown path must
// not delete them. Closing the underlying *sql.DB is the embedder's
// responsibility.
func (s *SQLVertexStore[Id, State, Sig, PS]) Cleanup() {}

func (s *SQLVertexStore[Id, State, Sig, PS]) writeVertex(v graph.Vertex[Id, State, Sig]) error {
	state := v.State()
	stateBytes, err := PS(&state).MarshalBinary()
	if err != nil {
		return err
	}
	edgeBytes, err := encodeEdges(v.OutgoingEdges())
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(fmt.Sprintf("DELETE FROM %s WHERE id = ?", s.table), s.encodeID(v.ID())); err != nil {
		return err
	}
	_, err = s.db.Exec(
		fmt.Sprintf("INSERT INTO %s (id, state, edges) VALUES (?, ?, ?)", s.table),
		s.encodeID(v.ID()), stateBytes, edgeBytes,
	)
	return err
}

func (s *SQLVertexStore[Id, State, Sig, PS]) decodeVertex(id Id, stateBytes, edgeBytes []byte) (graph.Vertex[Id, State, Sig], error) {
	var state State
	if err := PS(&state).UnmarshalBinary(stateBytes); err != nil {
		return nil, err
	}
	edges, err := decodeEdges[Id](edgeBytes)
	if err != nil {
		return nil, err
	}
	return s.newVertex(id, state, edges), nil
}

func encodeEdges[Id comparable](edges []graph.Edge[Id]) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(edges); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeEdges[Id comparable](data []byte) ([]graph.Edge[Id], error) {
	if len(data) == 0 {
		return nil, nil
	}
	var edges []graph.Edge[Id]
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&edges); err != nil {
		return nil, err
	}
	return edges, nil
}
