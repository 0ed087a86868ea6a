package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/IshaanNene/marsboard/internal/types"
)

// MongoSink keeps the current document in a MongoDB collection.
type MongoSink struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *slog.Logger
}

// NewMongoSink connects to MongoDB and verifies the connection.
func NewMongoSink(ctx context.Context, uri, database, collection string, logger *slog.Logger) (*MongoSink, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, &types.StorageError{Backend: "mongodb", Err: fmt.Errorf("connect: %w", err)}
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, &types.StorageError{Backend: "mongodb", Err: fmt.Errorf("ping: %w", err)}
	}

	return &MongoSink{
		client:     client,
		collection: client.Database(database).Collection(collection),
		logger:     logger.With("component", "mongo_sink", "collection", collection),
	}, nil
}

func (s *MongoSink) Name() string { return "mongodb" }

// Replace upserts the document with an always-true filter.
func (s *MongoSink) Replace(ctx context.Context, result *types.ScrapeResult) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	res, err := s.collection.ReplaceOne(ctx, bson.D{}, result, options.Replace().SetUpsert(true))
	if err != nil {
		return &types.StorageError{Backend: s.Name(), Err: fmt.Errorf("replace: %w", err)}
	}

	s.logger.Debug("document replaced",
		"matched", res.MatchedCount,
		"upserted", res.UpsertedCount > 0,
		"hemispheres", len(result.HemispheresImages),
	)
	return nil
}

// Read returns the current document.
func (s *MongoSink) Read(ctx context.Context) (*types.ScrapeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var result types.ScrapeResult
	err := s.collection.FindOne(ctx, bson.D{}).Decode(&result)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, types.ErrNoDocument
	}
	if err != nil {
		return nil, &types.StorageError{Backend: s.Name(), Err: fmt.Errorf("find: %w", err)}
	}
	if result.HemispheresImages == nil {
		result.HemispheresImages = []types.HemisphereRecord{}
	}
	return &result, nil
}

func (s *MongoSink) Close() error {
	s.logger.Info("mongodb sink closing")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
