package extract

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/marsboard/internal/types"
)

// Hemispheres returns one record per gallery item, in document order.
// Items missing a heading, a link or an image are logged and skipped;
// a page with no usable items yields an empty slice, not an error.
func (e *Extractor) Hemispheres(page *types.Page, baseURL string) ([]types.HemisphereRecord, error) {
	doc, err := document(page, StepHemispheres)
	if err != nil {
		return nil, err
	}

	records := []types.HemisphereRecord{}
	doc.Find(e.sel.HemisphereItem).Each(func(i int, item *goquery.Selection) {
		record, err := e.hemisphere(item, baseURL)
		if err != nil {
			err = fmt.Errorf("item %d: %w", i, err)
			e.logger.Warn("hemisphere item skipped", "url", page.URL(), "index", i, "error", err)
			e.skipped(StepHemispheres, err)
			return
		}
		records = append(records, record)
	})

	return records, nil
}

func (e *Extractor) hemisphere(item *goquery.Selection, baseURL string) (types.HemisphereRecord, error) {
	heading, ok := first(item, e.sel.HemisphereTitle)
	if !ok {
		return types.HemisphereRecord{}, fmt.Errorf("%w (selector=%q)", types.ErrNoMatch, e.sel.HemisphereTitle)
	}
	href, ok := attr(item, e.sel.HemisphereLink, "href")
	if !ok {
		return types.HemisphereRecord{}, fmt.Errorf("%w (selector=%q attr=href)", types.ErrNoMatch, e.sel.HemisphereLink)
	}
	src, ok := attr(item, e.sel.HemisphereImage, "src")
	if !ok {
		return types.HemisphereRecord{}, fmt.Errorf("%w (selector=%q attr=src)", types.ErrNoMatch, e.sel.HemisphereImage)
	}

	return types.HemisphereRecord{
		Title:     heading.Text(),
		ImgURL:    JoinURL(baseURL, href),
		ImgSrcURL: JoinURL(baseURL, src),
	}, nil
}
