package extract

import (
	"github.com/IshaanNene/marsboard/internal/types"
)

// News returns the title and teaser of the first entry on the news
// listing. A listing without entries is an extraction error.
func (e *Extractor) News(page *types.Page) (types.NewsItem, error) {
	doc, err := document(page, StepNews)
	if err != nil {
		return types.NewsItem{}, err
	}

	latest, ok := first(doc.Selection, e.sel.NewsItem)
	if !ok {
		return types.NewsItem{}, &types.ExtractionError{
			URL: page.URL(), Step: StepNews, Selector: e.sel.NewsItem, Err: types.ErrNoMatch,
		}
	}

	title, ok := first(latest, e.sel.NewsTitle)
	if !ok {
		return types.NewsItem{}, &types.ExtractionError{
			URL: page.URL(), Step: StepNews, Selector: e.sel.NewsTitle, Err: types.ErrNoMatch,
		}
	}
	teaser, ok := first(latest, e.sel.NewsTeaser)
	if !ok {
		return types.NewsItem{}, &types.ExtractionError{
			URL: page.URL(), Step: StepNews, Selector: e.sel.NewsTeaser, Err: types.ErrNoMatch,
		}
	}

	return types.NewsItem{
		Title:   title.Text(),
		Summary: teaser.Text(),
	}, nil
}
