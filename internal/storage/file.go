package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/IshaanNene/marsboard/internal/types"
)

// JSONSink keeps the current document in a single JSON file. Writes go
// to a temporary file that is renamed over the old one.
type JSONSink struct {
	path   string
	mu     sync.RWMutex
	logger *slog.Logger
}

// NewJSONSink creates a new JSON file sink.
func NewJSONSink(outputPath string, logger *slog.Logger) (*JSONSink, error) {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &types.StorageError{Backend: "json", Err: fmt.Errorf("create output dir: %w", err)}
	}

	return &JSONSink{
		path:   outputPath,
		logger: logger.With("component", "json_sink"),
	}, nil
}

func (s *JSONSink) Name() string { return "json" }

func (s *JSONSink) Replace(ctx context.Context, result *types.ScrapeResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".mars-*.json")
	if err != nil {
		return &types.StorageError{Backend: s.Name(), Err: fmt.Errorf("create temp file: %w", err)}
	}
	defer os.Remove(tmp.Name())

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		tmp.Close()
		return &types.StorageError{Backend: s.Name(), Err: fmt.Errorf("encode JSON: %w", err)}
	}
	if err := tmp.Close(); err != nil {
		return &types.StorageError{Backend: s.Name(), Err: err}
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return &types.StorageError{Backend: s.Name(), Err: fmt.Errorf("rename: %w", err)}
	}

	s.logger.Debug("document written", "path", s.path, "hemispheres", len(result.HemispheresImages))
	return nil
}

func (s *JSONSink) Read(ctx context.Context) (*types.ScrapeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, types.ErrNoDocument
	}
	if err != nil {
		return nil, &types.StorageError{Backend: s.Name(), Err: err}
	}

	var result types.ScrapeResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, &types.StorageError{Backend: s.Name(), Err: fmt.Errorf("decode JSON: %w", err)}
	}
	if result.HemispheresImages == nil {
		result.HemispheresImages = []types.HemisphereRecord{}
	}
	return &result, nil
}

func (s *JSONSink) Close() error { return nil }
