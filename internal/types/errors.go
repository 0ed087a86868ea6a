package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrNoMatch         = errors.New("no matching nodes")
	ErrNoFeaturedImage = errors.New("no featured image candidate yielded a URL")
	ErrNoTable         = errors.New("page contains no tables")
	ErrColumnCount     = errors.New("table does not have exactly three columns")
	ErrEmptyPage       = errors.New("empty page body")
	ErrNoDocument      = errors.New("no document stored")
	ErrInvalidURL      = errors.New("invalid URL")
)

// NavigationError wraps failures to load a page, whether from the
// network or from the browser driver.
type NavigationError struct {
	URL    string
	Driver string
	Err    error
}

func (e *NavigationError) Error() string {
	if e.Driver != "" {
		return fmt.Sprintf("navigation error for %s (%s): %v", e.URL, e.Driver, e.Err)
	}
	return fmt.Sprintf("navigation error for %s: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// ExtractionError wraps markup-shape mismatches found while extracting
// a fragment from a page.
type ExtractionError struct {
	URL      string
	Step     string
	Selector string
	Err      error
}

func (e *ExtractionError) Error() string {
	if e.Selector != "" {
		return fmt.Sprintf("extraction error in %s for %s (selector=%q): %v", e.Step, e.URL, e.Selector, e.Err)
	}
	return fmt.Sprintf("extraction error in %s for %s: %v", e.Step, e.URL, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// StorageError wraps errors that occur in a persistence sink.
type StorageError struct {
	Backend string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error (%s): %v", e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// PipelineError wraps errors raised by a post-processing middleware.
type PipelineError struct {
	Stage string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline error at stage %q: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// IsNavigation reports whether err carries a NavigationError.
func IsNavigation(err error) bool {
	var navErr *NavigationError
	return errors.As(err, &navErr)
}

// IsExtraction reports whether err carries an ExtractionError.
func IsExtraction(err error) bool {
	var extErr *ExtractionError
	return errors.As(err, &extErr)
}
