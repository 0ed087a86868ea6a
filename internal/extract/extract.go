// Package extract turns rendered source pages into the fragments of a
// ScrapeResult. Every extractor is a pure function of its input page;
// the selectors it relies on come from configuration so that markup
// changes on a source page stay in one place.
package extract

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/marsboard/internal/config"
	"github.com/IshaanNene/marsboard/internal/types"
)

// Step names, used in errors, logs and metrics.
const (
	StepNews        = "news"
	StepImage       = "featured_image"
	StepFacts       = "facts"
	StepHemispheres = "hemispheres"
)

// Extractor holds the selectors and logger shared by the four extractors.
type Extractor struct {
	sel    config.SelectorsConfig
	logger *slog.Logger

	// OnSkip, when set, is called for every candidate node an extractor
	// skipped because it did not have the expected shape.
	OnSkip func(step string, err error)
}

// New creates an Extractor using the given selectors.
func New(sel config.SelectorsConfig, logger *slog.Logger) *Extractor {
	return &Extractor{
		sel:    sel,
		logger: logger.With("component", "extractor"),
	}
}

// document parses the page, wrapping failures as extraction errors.
func document(page *types.Page, step string) (*goquery.Document, error) {
	doc, err := page.Document()
	if err != nil {
		return nil, &types.ExtractionError{URL: page.URL(), Step: step, Err: err}
	}
	return doc, nil
}

// first returns the first node matching selector inside sel.
func first(sel *goquery.Selection, selector string) (*goquery.Selection, bool) {
	match := sel.Find(selector).First()
	return match, match.Length() > 0
}

// attr returns a non-empty attribute of the first node matching selector.
func attr(sel *goquery.Selection, selector, name string) (string, bool) {
	match, ok := first(sel, selector)
	if !ok {
		return "", false
	}
	val, exists := match.Attr(name)
	val = strings.TrimSpace(val)
	return val, exists && val != ""
}

// JoinURL concatenates a base URL and a page-relative path with exactly
// one slash between them.
func JoinURL(base, ref string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(ref, "/")
}

func (e *Extractor) skipped(step string, err error) {
	if e.OnSkip != nil {
		e.OnSkip(step, err)
	}
}
