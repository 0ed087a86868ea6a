package storage

import (
	"context"
	"sync"

	"github.com/IshaanNene/marsboard/internal/types"
)

// MemorySink keeps the current document in process memory.
type MemorySink struct {
	mu      sync.RWMutex
	current *types.ScrapeResult
	writes  int
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Name() string { return "memory" }

func (s *MemorySink) Replace(_ context.Context, result *types.ScrapeResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = result.Clone()
	s.writes++
	return nil
}

func (s *MemorySink) Read(_ context.Context) (*types.ScrapeResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, types.ErrNoDocument
	}
	return s.current.Clone(), nil
}

// Writes returns how many times Replace succeeded.
func (s *MemorySink) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

func (s *MemorySink) Close() error { return nil }
