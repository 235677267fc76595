package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wigowatch/wigowatch/internal/types"
)

// sampleIndexes cover the history lookups: one subject over time, and
// everything at a given level over time.
func sampleIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "kind", Value: 1},
				{Key: "host", Value: 1},
				{Key: "probe", Value: 1},
				{Key: "timestamp", Value: -1},
			},
			Options: options.Index().SetName("subject_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "level", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("level_timestamp"),
		},
	}
}

// MongoStorage writes samples to a MongoDB collection.
type MongoStorage struct {
	client     *mongo.Client
	collection *mongo.Collection
	mu         sync.Mutex
	count      int
	logger     *slog.Logger
}

// NewMongoStorage connects to uri, verifies the connection and ensures the
// sample indexes exist.
func NewMongoStorage(uri, database, collection string, logger *slog.Logger) (*MongoStorage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}

	coll := client.Database(database).Collection(collection)
	if _, err := coll.Indexes().CreateMany(ctx, sampleIndexes()); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("mongodb create indexes: %w", err)
	}

	return &MongoStorage{
		client:     client,
		collection: coll,
		logger:     logger.With("component", "mongo_storage", "collection", collection),
	}, nil
}

func (s *MongoStorage) Name() string { return "mongodb" }

func (s *MongoStorage) Store(samples []*types.Sample) error {
	if len(samples) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	docs := make([]any, len(samples))
	for i, sample := range samples {
		docs[i] = sample
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Unordered so one rejected sample does not drop the rest of the overview.
	if _, err := s.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false)); err != nil {
		return fmt.Errorf("mongodb insert %d samples: %w", len(samples), err)
	}

	s.count += len(samples)
	s.logger.Debug("samples stored in mongodb", "count", len(samples), "total", s.count)
	return nil
}

func (s *MongoStorage) Close() error {
	s.logger.Info("mongodb storage closing", "total_samples", s.count)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
