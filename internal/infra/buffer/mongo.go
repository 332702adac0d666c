package buffer

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const batchCollection = "segment_batches"

// MongoBuffer stores one document per session queue:
//
//	{_id: <session key>, segments: [<raw payload>, ...]}
//
// Enqueue pushes onto the array; DrainAndClear uses FindOneAndDelete so the
// snapshot and the clear are a single atomic operation on the server.
type MongoBuffer struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func NewMongoBuffer(client *mongo.Client, database string) *MongoBuffer {
	return &MongoBuffer{
		client:     client,
		collection: client.Database(database).Collection(batchCollection),
	}
}

type batchDocument struct {
	SessionKey string   `bson:"_id"`
	Segments   [][]byte `bson:"segments"`
}

func (b *MongoBuffer) Enqueue(ctx context.Context, sessionKey string, payload []byte) error {
	filter := bson.M{"_id": sessionKey}
	update := bson.M{"$push": bson.M{"segments": payload}}

	_, err := b.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("enqueue segment for session %s: %w", sessionKey, err)
	}
	return nil
}

func (b *MongoBuffer) DrainAndClear(ctx context.Context, sessionKey string) ([][]byte, error) {
	var document batchDocument
	err := b.collection.FindOneAndDelete(ctx, bson.M{"_id": sessionKey}).Decode(&document)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("drain session %s: %w", sessionKey, err)
	}
	return document.Segments, nil
}

func (b *MongoBuffer) ListSessions(ctx context.Context) ([]string, error) {
	ids, err := b.collection.Distinct(ctx, "_id", bson.D{})
	if err != nil {
		return nil, fmt.Errorf("list pending sessions: %w", err)
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		if key, ok := id.(string); ok {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (b *MongoBuffer) Ping(ctx context.Context) error {
	return b.client.Ping(ctx, nil)
}
