package types

import (
	"html"
	"strings"
)

// Fact table column names. Source columns are renamed by position.
const (
	ColumnDescription = "Description"
	ColumnMars        = "Mars"
	ColumnEarth       = "Earth"
)

// NewsItem is the most recent entry on the news listing.
type NewsItem struct {
	Title   string `json:"title"   bson:"title"`
	Summary string `json:"summary" bson:"summary"`
}

// FeaturedImage is the absolute URL of the current featured image.
type FeaturedImage struct {
	URL string `json:"url" bson:"url"`
}

// FactRow is one indexed row of the facts table.
type FactRow struct {
	Description string `json:"description" bson:"description"`
	Mars        string `json:"mars"        bson:"mars"`
	Earth       string `json:"earth"       bson:"earth"`
}

// FactsTable is the first table of the facts page, keyed by Description.
type FactsTable struct {
	Rows []FactRow `json:"rows" bson:"rows"`
}

// HTML renders the table the way an indexed data frame is rendered:
// Mars and Earth as data columns, Description as the row index.
func (t FactsTable) HTML() string {
	var b strings.Builder
	b.WriteString(`<table border="1" class="dataframe">` + "\n")
	b.WriteString("  <thead>\n")
	b.WriteString(`    <tr style="text-align: right;">` + "\n")
	b.WriteString("      <th></th>\n")
	b.WriteString("      <th>" + ColumnMars + "</th>\n")
	b.WriteString("      <th>" + ColumnEarth + "</th>\n")
	b.WriteString("    </tr>\n")
	b.WriteString("    <tr>\n")
	b.WriteString("      <th>" + ColumnDescription + "</th>\n")
	b.WriteString("      <th></th>\n")
	b.WriteString("      <th></th>\n")
	b.WriteString("    </tr>\n")
	b.WriteString("  </thead>\n")
	b.WriteString("  <tbody>\n")
	for _, row := range t.Rows {
		b.WriteString("    <tr>\n")
		b.WriteString("      <th>" + html.EscapeString(row.Description) + "</th>\n")
		b.WriteString("      <td>" + html.EscapeString(row.Mars) + "</td>\n")
		b.WriteString("      <td>" + html.EscapeString(row.Earth) + "</td>\n")
		b.WriteString("    </tr>\n")
	}
	b.WriteString("  </tbody>\n")
	b.WriteString("</table>")
	return b.String()
}

// HemisphereRecord is one gallery item of the hemisphere page.
type HemisphereRecord struct {
	Title     string `json:"title"       bson:"title"`
	ImgURL    string `json:"img_url"     bson:"img_url"`
	ImgSrcURL string `json:"img_src_url" bson:"img_src_url"`
}

// ScrapeResult is the aggregate document. Exactly one is stored at a
// time and every scrape replaces it whole.
type ScrapeResult struct {
	NewsTitle         string             `json:"news_title"         bson:"news_title"`
	NewsP             string             `json:"news_p"             bson:"news_p"`
	FeaturedImageURL  string             `json:"featured_image_url" bson:"featured_image_url"`
	FactsHTML         string             `json:"facts_html"         bson:"facts_html"`
	HemispheresImages []HemisphereRecord `json:"hemispheres_images" bson:"hemispheres_images"`
}

// NewScrapeResult composes the aggregate from the four fragments.
func NewScrapeResult(news NewsItem, image FeaturedImage, facts FactsTable, hemispheres []HemisphereRecord) *ScrapeResult {
	if hemispheres == nil {
		hemispheres = []HemisphereRecord{}
	}
	return &ScrapeResult{
		NewsTitle:         news.Title,
		NewsP:             news.Summary,
		FeaturedImageURL:  image.URL,
		FactsHTML:         facts.HTML(),
		HemispheresImages: hemispheres,
	}
}

// Clone creates a deep copy of the result.
func (r *ScrapeResult) Clone() *ScrapeResult {
	clone := *r
	clone.HemispheresImages = append([]HemisphereRecord{}, r.HemispheresImages...)
	return &clone
}
