package types

import (
	"bytes"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Page is the fully rendered markup of one URL at one point in time.
// It is produced by a single fetch and consumed by a single extractor.
type Page struct {
	// Request is a reference to the original request.
	Request *Request

	// StatusCode is the HTTP status code, 200 for browser captures.
	StatusCode int

	// Body is the captured markup.
	Body []byte

	// ContentType is the MIME type of the page.
	ContentType string

	// FinalURL is the URL after any redirects.
	FinalURL string

	// FetchDuration covers launch, navigation, settle and capture.
	FetchDuration time.Duration

	// FetchedAt is when the markup was captured.
	FetchedAt time.Time

	doc *goquery.Document
}

// NewPage creates a Page from captured markup.
func NewPage(req *Request, statusCode int, body []byte, finalURL string, duration time.Duration) *Page {
	if finalURL == "" {
		finalURL = req.URLString()
	}
	return &Page{
		Request:       req,
		StatusCode:    statusCode,
		Body:          body,
		ContentType:   "text/html",
		FinalURL:      finalURL,
		FetchDuration: duration,
		FetchedAt:     time.Now(),
	}
}

// URL returns the requested URL of the page.
func (p *Page) URL() string {
	if p.Request == nil {
		return p.FinalURL
	}
	return p.Request.URLString()
}

// Document returns a parsed goquery document, lazily initializing it.
func (p *Page) Document() (*goquery.Document, error) {
	if p.doc != nil {
		return p.doc, nil
	}
	if len(p.Body) == 0 {
		return nil, ErrEmptyPage
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(p.Body))
	if err != nil {
		return nil, err
	}
	p.doc = doc
	return doc, nil
}

// IsSuccess returns true if the status is 2xx.
func (p *Page) IsSuccess() bool {
	return p.StatusCode >= 200 && p.StatusCode < 300
}
