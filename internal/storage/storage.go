package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/IshaanNene/marsboard/internal/config"
	"github.com/IshaanNene/marsboard/internal/types"
)

// Sink stores the single current ScrapeResult.
type Sink interface {
	// Replace unconditionally overwrites the stored document.
	Replace(ctx context.Context, result *types.ScrapeResult) error

	// Read returns the stored document, or types.ErrNoDocument.
	Read(ctx context.Context) (*types.ScrapeResult, error)

	// Close releases resources.
	Close() error

	// Name returns the storage backend identifier.
	Name() string
}

// New creates the sink selected by storage.type.
func New(ctx context.Context, cfg *config.StorageConfig, logger *slog.Logger) (Sink, error) {
	switch cfg.Type {
	case "mongo":
		return NewMongoSink(ctx, cfg.MongoURI, cfg.Database, cfg.Collection, logger)
	case "json":
		return NewJSONSink(cfg.OutputPath, logger)
	case "memory":
		return NewMemorySink(), nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
