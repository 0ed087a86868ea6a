package extract

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/marsboard/internal/types"
)

// FeaturedImage scans every floating text area and builds baseURL/href
// from its anchor. All candidates are visited and the last usable one
// wins; candidates without an anchor href are logged and skipped.
func (e *Extractor) FeaturedImage(page *types.Page, baseURL string) (types.FeaturedImage, error) {
	doc, err := document(page, StepImage)
	if err != nil {
		return types.FeaturedImage{}, err
	}

	var image types.FeaturedImage
	doc.Find(e.sel.ImageArea).Each(func(i int, area *goquery.Selection) {
		href, ok := attr(area, e.sel.ImageLink, "href")
		if !ok {
			err := fmt.Errorf("candidate %d: %w (selector=%q)", i, types.ErrNoMatch, e.sel.ImageLink)
			e.logger.Warn("featured image candidate skipped", "url", page.URL(), "index", i, "error", err)
			e.skipped(StepImage, err)
			return
		}
		image.URL = JoinURL(baseURL, href)
	})

	if image.URL == "" {
		return types.FeaturedImage{}, &types.ExtractionError{
			URL: page.URL(), Step: StepImage, Selector: e.sel.ImageArea, Err: types.ErrNoFeaturedImage,
		}
	}
	return image, nil
}
