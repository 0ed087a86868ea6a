package pipeline

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/IshaanNene/marsboard/internal/config"
	"github.com/IshaanNene/marsboard/internal/types"
)

// TrimMiddleware trims whitespace from every text field. The facts HTML
// is left alone.
type TrimMiddleware struct{}

func (m *TrimMiddleware) Name() string { return "trim" }

func (m *TrimMiddleware) Process(result *types.ScrapeResult) (*types.ScrapeResult, error) {
	result.NewsTitle = strings.TrimSpace(result.NewsTitle)
	result.NewsP = strings.TrimSpace(result.NewsP)
	result.FeaturedImageURL = strings.TrimSpace(result.FeaturedImageURL)
	for i := range result.HemispheresImages {
		h := &result.HemispheresImages[i]
		h.Title = strings.TrimSpace(h.Title)
		h.ImgURL = strings.TrimSpace(h.ImgURL)
		h.ImgSrcURL = strings.TrimSpace(h.ImgSrcURL)
	}
	return result, nil
}

// HTMLSanitizeMiddleware strips stray markup tags from the news text and
// collapses internal whitespace. Input is already entity-decoded text, so
// bare '<' and '>' and entity-like sequences are kept as written.
type HTMLSanitizeMiddleware struct {
	stripRe *regexp.Regexp
}

func NewHTMLSanitizeMiddleware() *HTMLSanitizeMiddleware {
	return &HTMLSanitizeMiddleware{
		stripRe: regexp.MustCompile(`</?[a-zA-Z][a-zA-Z0-9-]*(?:\s[^<>]*)?/?>`),
	}
}

func (m *HTMLSanitizeMiddleware) Name() string { return "html_sanitize" }

func (m *HTMLSanitizeMiddleware) Process(result *types.ScrapeResult) (*types.ScrapeResult, error) {
	result.NewsTitle = m.clean(result.NewsTitle)
	result.NewsP = m.clean(result.NewsP)
	for i := range result.HemispheresImages {
		result.HemispheresImages[i].Title = m.clean(result.HemispheresImages[i].Title)
	}
	return result, nil
}

func (m *HTMLSanitizeMiddleware) clean(s string) string {
	if s == "" {
		return s
	}
	cleaned := m.stripRe.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(cleaned), " ")
}

// URLValidateMiddleware rejects results whose image URLs are not
// absolute http(s) URLs.
type URLValidateMiddleware struct{}

func (m *URLValidateMiddleware) Name() string { return "url_validate" }

func (m *URLValidateMiddleware) Process(result *types.ScrapeResult) (*types.ScrapeResult, error) {
	if err := config.ValidateURL(result.FeaturedImageURL); err != nil {
		return nil, fmt.Errorf("featured_image_url %q: %w", result.FeaturedImageURL, err)
	}
	for i, h := range result.HemispheresImages {
		if err := config.ValidateURL(h.ImgURL); err != nil {
			return nil, fmt.Errorf("hemispheres_images[%d].img_url %q: %w", i, h.ImgURL, err)
		}
		if err := config.ValidateURL(h.ImgSrcURL); err != nil {
			return nil, fmt.Errorf("hemispheres_images[%d].img_src_url %q: %w", i, h.ImgSrcURL, err)
		}
	}
	return result, nil
}
