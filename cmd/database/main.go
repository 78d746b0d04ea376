// cmd/database seeds a DynamoDB table from a plain edge-list file, the
// same fixture format loader.StaticLoader reads at worker startup.
// Grounded in database.GetDynamoClient/BatchInsertVertices, rewritten
// against storage.DynamoDBVertexStore so seeding and the worker's own
// externalized-store path share one encoding (see DESIGN.md).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/fkzrh/signal-collect/examples/pagerank"
	"github.com/fkzrh/signal-collect/graph"
	"github.com/fkzrh/signal-collect/loader"
	"github.com/fkzrh/signal-collect/storage"
)

func main() {
	table := flag.String("table", "", "DynamoDB table name")
	graphPath := flag.String("graph", "", "path to a tab-separated edge-list file")
	region := flag.String("region", storage.DefaultDynamoDBRegion, "AWS region")
	flag.Parse()
	if *table == "" || *graphPath == "" {
		fmt.Println("usage: ./bin/database -table TABLE_NAME -graph PATH_TO_GRAPH.txt")
		os.Exit(1)
	}

	ctx := context.Background()
	client, err := storage.NewDynamoClient(ctx, *region)
	if err != nil {
		log.Fatalf("database: connecting to dynamodb: %v\n", err)
	}

	store := storage.NewDynamoDBVertexStore[uint64, pagerank.State, float64, *pagerank.State](
		client, *table,
		storage.SQLIDCodec[uint64]{
			Encode: func(id uint64) string { return fmt.Sprintf("%d", id) },
			Decode: func(s string) (uint64, error) {
				var id uint64
				_, err := fmt.Sscan(s, &id)
				return id, err
			},
		},
		pagerank.FromStored,
	)

	staticLoader := &loader.StaticLoader[uint64, pagerank.State, float64]{
		Path: *graphPath,
		ParseID: func(token string) (uint64, error) {
			var id uint64
			_, err := fmt.Sscan(token, &id)
			return id, err
		},
		OwnerOf:   func(uint64, uint32) uint32 { return 0 }, // seed the whole file, no sharding
		NewVertex: func(id uint64) graph.Vertex[uint64, pagerank.State, float64] { return pagerank.New(id) },
	}

	if err := staticLoader.Load(dynamoSink{store}, 0, 1); err != nil {
		log.Fatalf("database: seeding from %s: %v\n", *graphPath, err)
	}
	log.Printf("database: seeded %d vertices into table %s\n", store.Size(), *table)
}

// dynamoSink adapts storage.DynamoDBVertexStore to loader.Sink: Insert
// for a fresh vertex, Get+AddOutgoingEdge+UpdateStateOfVertex for an
// edge landing on a vertex the loader already created earlier in the
// same file.
type dynamoSink struct {
	store *storage.DynamoDBVertexStore[uint64, pagerank.State, float64, *pagerank.State]
}

func (s dynamoSink) AddVertex(v graph.Vertex[uint64, pagerank.State, float64]) {
	s.store.Insert(v)
}

func (s dynamoSink) AddEdge(e graph.Edge[uint64]) {
	v, ok := s.store.Get(e.SourceID)
	if !ok {
		return
	}
	if v.AddOutgoingEdge(e) {
		s.store.UpdateStateOfVertex(v)
	}
}
