package pipeline

import (
	"errors"
	"log/slog"

	"github.com/IshaanNene/marsboard/internal/types"
)

var errDropped = errors.New("result dropped")

// Middleware processes an aggregated result and returns the (possibly
// modified) result. Returning an error aborts the scrape.
type Middleware interface {
	// Name returns the middleware's identifier.
	Name() string

	// Process transforms a result.
	Process(result *types.ScrapeResult) (*types.ScrapeResult, error)
}

// Pipeline chains middleware processors together.
type Pipeline struct {
	middlewares []Middleware
	logger      *slog.Logger
}

// New creates a new Pipeline.
func New(logger *slog.Logger) *Pipeline {
	return &Pipeline{
		logger: logger.With("component", "pipeline"),
	}
}

// Default returns the pipeline every scrape runs through: whitespace
// trimming, news text cleanup and URL validation.
func Default(logger *slog.Logger) *Pipeline {
	p := New(logger)
	p.Use(&TrimMiddleware{})
	p.Use(NewHTMLSanitizeMiddleware())
	p.Use(&URLValidateMiddleware{})
	return p
}

// Use adds a middleware to the pipeline chain.
func (p *Pipeline) Use(mw Middleware) {
	p.middlewares = append(p.middlewares, mw)
	p.logger.Debug("middleware added", "name", mw.Name(), "position", len(p.middlewares))
}

// Process runs the result through all middleware in order.
func (p *Pipeline) Process(result *types.ScrapeResult) (*types.ScrapeResult, error) {
	current := result

	for _, mw := range p.middlewares {
		next, err := mw.Process(current)
		if err != nil {
			return nil, &types.PipelineError{Stage: mw.Name(), Err: err}
		}
		if next == nil {
			return nil, &types.PipelineError{Stage: mw.Name(), Err: errDropped}
		}
		current = next
	}

	return current, nil
}

// Len returns the number of middleware in the chain.
func (p *Pipeline) Len() int {
	return len(p.middlewares)
}
