package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/IshaanNene/marsboard/internal/types"
)

// factsColumns is the fixed width of the facts table.
const factsColumns = 3

// Facts reads the first table of the page and renames its three columns
// positionally to Description, Mars and Earth. The source column order
// is assumed to be label, Mars, Earth; header text is not consulted.
func (e *Extractor) Facts(page *types.Page) (types.FactsTable, error) {
	fail := func(err error) (types.FactsTable, error) {
		return types.FactsTable{}, &types.ExtractionError{
			URL: page.URL(), Step: StepFacts, Selector: e.sel.FactsTable, Err: err,
		}
	}

	if len(page.Body) == 0 {
		return fail(types.ErrEmptyPage)
	}
	doc, err := htmlquery.Parse(bytes.NewReader(page.Body))
	if err != nil {
		return fail(err)
	}

	tables, err := htmlquery.QueryAll(doc, e.sel.FactsTable)
	if err != nil {
		return fail(fmt.Errorf("invalid xpath: %w", err))
	}
	if len(tables) == 0 {
		return fail(types.ErrNoTable)
	}

	rows := dataRows(tables[0])
	if len(rows) == 0 {
		return fail(fmt.Errorf("%w: no data rows", types.ErrColumnCount))
	}

	if width := len(rows[0]); width != factsColumns {
		return fail(fmt.Errorf("%w: got %d", types.ErrColumnCount, width))
	}

	facts := types.FactsTable{Rows: make([]types.FactRow, 0, len(rows))}
	for i, cells := range rows {
		if len(cells) != factsColumns {
			return fail(fmt.Errorf("%w: row %d has %d cells", types.ErrColumnCount, i, len(cells)))
		}
		facts.Rows = append(facts.Rows, types.FactRow{
			Description: cells[0],
			Mars:        cells[1],
			Earth:       cells[2],
		})
	}
	return facts, nil
}

// dataRows returns the cell text of every data row. Header rows are those
// inside <thead>, or leading rows made only of <th>, and are dropped.
func dataRows(table *html.Node) (rows [][]string) {
	for _, tr := range htmlquery.Find(table, ".//tr") {
		var cells []string
		allTH := true
		for _, cell := range htmlquery.Find(tr, "./th|./td") {
			if cell.Data != "th" {
				allTH = false
			}
			cells = append(cells, strings.TrimSpace(htmlquery.InnerText(cell)))
		}
		if len(cells) == 0 {
			continue
		}

		inHead := tr.Parent != nil && tr.Parent.Type == html.ElementNode && tr.Parent.Data == "thead"
		if inHead || (allTH && len(rows) == 0) {
			continue
		}
		rows = append(rows, cells)
	}
	return rows
}
