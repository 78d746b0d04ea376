package loader

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fkzrh/signal-collect/graph"
)

// MongoDocument is the shape a MongoLoader expects each vertex document
// to already have been partitioned into, following the same "Pn"
// partition-field convention as database/mongodb's create.go/read.go:
// a load-time batch job stamps each document with the worker id that
// owns it, and MongoLoader just reads that field back rather than
// recomputing partitioning against the live collection on every run.
type MongoDocument struct {
	ID       string   `bson:"ID"`
	Edges    []string `bson:"Edges"`
	WorkerID uint32   `bson:"WorkerID"`
}

// MongoLoader loads a worker's partition straight out of a MongoDB
// collection, grounded in database/mongodb's GetDatabaseClient (Atlas
// URI built from a .env-sourced password) and GetPartitionForWorkerX.
type MongoLoader[Id comparable, State any, Sig any] struct {
	URI        string
	Database   string
	Collection string

	ParseID   func(string) (Id, error)
	NewVertex func(id Id) graph.Vertex[Id, State, Sig]
}

// DialMongo loads DB_PASSWORD from .env (via godotenv) if uri is empty
// and builds the Atlas connection string from it; a non-empty uri is
// used verbatim, letting deployments outside this module's own Atlas
// cluster point elsewhere.
func DialMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	if uri == "" {
		if err := godotenv.Load(".env"); err != nil {
			log.Printf("loader: no .env file loaded: %v\n", err)
		}
		password := os.Getenv("DB_PASSWORD")
		uri = fmt.Sprintf(
			"mongodb+srv://bagel:%s@bagel.gd7kkby.mongodb.net/?retryWrites=true&w=majority",
			password,
		)
	}
	opts := options.Client().ApplyURI(uri).SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return mongo.Connect(dialCtx, opts)
}

func (l *MongoLoader[Id, State, Sig]) Load(sink Sink[Id, State, Sig], workerID, numWorkers uint32) error {
	client, err := DialMongo(context.Background(), l.URI)
	if err != nil {
		return fmt.Errorf("loader: dialing mongo: %w", err)
	}
	defer client.Disconnect(context.Background())

	collection := client.Database(l.Database).Collection(l.Collection)
	cursor, err := collection.Find(context.Background(), bson.M{"WorkerID": workerID})
	if err != nil {
		return fmt.Errorf("loader: querying partition %d: %w", workerID, err)
	}
	defer cursor.Close(context.Background())

	var docs []MongoDocument
	if err := cursor.All(context.Background(), &docs); err != nil {
		return fmt.Errorf("loader: reading partition %d: %w", workerID, err)
	}

	for _, doc := range docs {
		id, err := l.ParseID(doc.ID)
		if err != nil {
			return fmt.Errorf("loader: parsing vertex id %q: %w", doc.ID, err)
		}
		sink.AddVertex(l.NewVertex(id))
		for _, edgeTarget := range doc.Edges {
			targetID, err := l.ParseID(edgeTarget)
			if err != nil {
				return fmt.Errorf("loader: parsing edge target %q of vertex %q: %w", edgeTarget, doc.ID, err)
			}
			sink.AddEdge(graph.Edge[Id]{SourceID: id, TargetID: targetID})
		}
	}
	return nil
}
