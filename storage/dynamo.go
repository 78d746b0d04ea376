package storage

import (
	"context"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/fkzrh/signal-collect/graph"
)

// DynamoDBVertexStore is the second externalized worker.VertexStore.
// Unlike a handler that marshals one fixed Vertex shape per attribute,
// this store keeps the same opaque-blob approach as SQLVertexStore:
// state and edges are serialized once via PS and stored as a single
// binary attribute each.
type DynamoDBVertexStore[Id comparable, State any, Sig any, PS BinaryStatePtr[State]] struct {
	client    *dynamodb.Client
	table     string
	encodeID  func(Id) string
	decodeID  func(string) (Id, error)
	newVertex func(id Id, state State, edges []graph.Edge[Id]) graph.Vertex[Id, State, Sig]
}

const DefaultDynamoDBRegion = "us-east-2"

// NewDynamoClient loads credentials the way the AWS SDK always does
// (environment, shared config, IAM role) rather than requiring the
// caller to assemble a Config by hand.
func NewDynamoClient(ctx context.Context, region string) (*dynamodb.Client, error) {
	if region == "" {
		region = DefaultDynamoDBRegion
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return dynamodb.NewFromConfig(cfg), nil
}

func NewDynamoDBVertexStore[Id comparable, State any, Sig any, PS BinaryStatePtr[State]](
	client *dynamodb.Client,
	table string,
	idCodec SQLIDCodec[Id],
	newVertex func(id Id, state State, edges []graph.Edge[Id]) graph.Vertex[Id, State, Sig],
) *DynamoDBVertexStore[Id, State, Sig, PS] {
	return &DynamoDBVertexStore[Id, State, Sig, PS]{
		client:    client,
		table:     table,
		encodeID:  idCodec.Encode,
		decodeID:  idCodec.Decode,
		newVertex: newVertex,
	}
}

func (s *DynamoDBVertexStore[Id, State, Sig, PS]) Get(id Id) (graph.Vertex[Id, State, Sig], bool) {
	out, err := s.client.GetItem(context.TODO(), &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"ID": &types.AttributeValueMemberS{Value: s.encodeID(id)},
		},
	})
	if err != nil || out.Item == nil {
		if err != nil {
			log.Printf("storage: dynamodb Get(%v): %v\n", id, err)
		}
		return nil, false
	}
	v, err := s.decodeItem(id, out.Item)
	if err != nil {
		log.Printf("storage: dynamodb Get(%v): %v\n", id, err)
		return nil, false
	}
	return v, true
}

func (s *DynamoDBVertexStore[Id, State, Sig, PS]) Insert(v graph.Vertex[Id, State, Sig]) bool {
	if _, exists := s.Get(v.ID()); exists {
		return false
	}
	if err := s.putVertex(v); err != nil {
		log.Printf("storage: dynamodb Insert(%v): %v\n", v.ID(), err)
		return false
	}
	return true
}

func (s *DynamoDBVertexStore[Id, State, Sig, PS]) Remove(id Id) {
	_, err := s.client.DeleteItem(context.TODO(), &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"ID": &types.AttributeValueMemberS{Value: s.encodeID(id)},
		},
	})
	if err != nil {
		log.Printf("storage: dynamodb Remove(%v): %v\n", id, err)
	}
}

func (s *DynamoDBVertexStore[Id, State, Sig, PS]) Size() int {
	count := 0
	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName: aws.String(s.table),
		Select:    types.SelectCount,
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(context.TODO())
		if err != nil {
			log.Printf("storage: dynamodb Size: %v\n", err)
			return count
		}
		count += int(page.Count)
	}
	return count
}

func (s *DynamoDBVertexStore[Id, State, Sig, PS]) Foreach(f func(graph.Vertex[Id, State, Sig])) {
	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName: aws.String(s.table),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(context.TODO())
		if err != nil {
			log.Printf("storage: dynamodb Foreach: %v\n", err)
			return
		}
		for _, item := range page.Items {
			idAttr, ok := item["ID"].(*types.AttributeValueMemberS)
			if !ok {
				continue
			}
			id, err := s.decodeID(idAttr.Value)
			if err != nil {
				log.Printf("storage: dynamodb Foreach: decode id %q: %v\n", idAttr.Value, err)
				continue
			}
			v, err := s.decodeItem(id, item)
			if err != nil {
				log.Printf("storage: dynamodb Foreach(%v): %v\n", id, err)
				continue
			}
			f(v)
		}
	}
}

func (s *DynamoDBVertexStore[Id, State, Sig, PS]) UpdateStateOfVertex(v graph.Vertex[Id, State, Sig]) {
	if err := s.putVertex(v); err != nil {
		log.Printf("storage: dynamodb UpdateStateOfVertex(%v): %v\n", v.ID(), err)
	}
}

// Cleanup is a no-op for the same reason as SQLVertexStore.Cleanup.
func (s *DynamoDBVertexStore[Id, State, Sig, PS]) Cleanup() {}

func (s *DynamoDBVertexStore[Id, State, Sig, PS]) putVertex(v graph.Vertex[Id, State, Sig]) error {
	state := v.State()
	stateBytes, err := PS(&state).MarshalBinary()
	if err != nil {
		return err
	}
	edgeBytes, err := encodeEdges(v.OutgoingEdges())
	if err != nil {
		return err
	}
	_, err = s.client.PutItem(context.TODO(), &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item: map[string]types.AttributeValue{
			"ID":    &types.AttributeValueMemberS{Value: s.encodeID(v.ID())},
			"State": &types.AttributeValueMemberB{Value: stateBytes},
			"Edges": &types.AttributeValueMemberB{Value: edgeBytes},
		},
	})
	return err
}

func (s *DynamoDBVertexStore[Id, State, Sig, PS]) decodeItem(id Id, item map[string]types.AttributeValue) (graph.Vertex[Id, State, Sig], error) {
	stateAttr, _ := item["State"].(*types.AttributeValueMemberB)
	edgesAttr, _ := item["Edges"].(*types.AttributeValueMemberB)

	var state State
	if stateAttr != nil {
		if err := PS(&state).UnmarshalBinary(stateAttr.Value); err != nil {
			return nil, err
		}
	}
	var edgeBytes []byte
	if edgesAttr != nil {
		edgeBytes = edgesAttr.Value
	}
	edges, err := decodeEdges[Id](edgeBytes)
	if err != nil {
		return nil, err
	}
	return s.newVertex(id, state, edges), nil
}
