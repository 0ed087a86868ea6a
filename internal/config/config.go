package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for marsboard.
type Config struct {
	Sources   SourcesConfig   `mapstructure:"sources"   yaml:"sources"`
	Selectors SelectorsConfig `mapstructure:"selectors" yaml:"selectors"`
	Browser   BrowserConfig   `mapstructure:"browser"   yaml:"browser"`
	Fetcher   FetcherConfig   `mapstructure:"fetcher"   yaml:"fetcher"`
	Scrape    ScrapeConfig    `mapstructure:"scrape"    yaml:"scrape"`
	Storage   StorageConfig   `mapstructure:"storage"   yaml:"storage"`
	Server    ServerConfig    `mapstructure:"server"    yaml:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"   yaml:"metrics"`
}

// SourcesConfig holds the four fixed source pages.
type SourcesConfig struct {
	NewsURL        string `mapstructure:"news_url"        yaml:"news_url"`
	ImageURL       string `mapstructure:"image_url"       yaml:"image_url"`
	FactsURL       string `mapstructure:"facts_url"       yaml:"facts_url"`
	HemispheresURL string `mapstructure:"hemispheres_url" yaml:"hemispheres_url"`
}

// SelectorsConfig holds the CSS selectors the extractors rely on.
// Markup changes on a source page should only need edits here.
type SelectorsConfig struct {
	NewsItem        string `mapstructure:"news_item"        yaml:"news_item"`
	NewsTitle       string `mapstructure:"news_title"       yaml:"news_title"`
	NewsTeaser      string `mapstructure:"news_teaser"      yaml:"news_teaser"`
	ImageArea       string `mapstructure:"image_area"       yaml:"image_area"`
	ImageLink       string `mapstructure:"image_link"       yaml:"image_link"`
	HemisphereItem  string `mapstructure:"hemisphere_item"  yaml:"hemisphere_item"`
	HemisphereTitle string `mapstructure:"hemisphere_title" yaml:"hemisphere_title"`
	HemisphereLink  string `mapstructure:"hemisphere_link"  yaml:"hemisphere_link"`
	HemisphereImage string `mapstructure:"hemisphere_image" yaml:"hemisphere_image"`
	FactsTable      string `mapstructure:"facts_table"      yaml:"facts_table"` // xpath
}

// BrowserConfig controls the rendered-page fetcher.
type BrowserConfig struct {
	Driver            string        `mapstructure:"driver"             yaml:"driver"`
	Headless          bool          `mapstructure:"headless"           yaml:"headless"`
	Bin               string        `mapstructure:"bin"                yaml:"bin"`
	SettleDelay       time.Duration `mapstructure:"settle_delay"       yaml:"settle_delay"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	NoSandbox         bool          `mapstructure:"no_sandbox"         yaml:"no_sandbox"`
	Stealth           bool          `mapstructure:"stealth"            yaml:"stealth"`
}

// FetcherConfig controls the raw HTTP fetcher used for the facts page.
type FetcherConfig struct {
	Timeout     time.Duration `mapstructure:"timeout"       yaml:"timeout"`
	UserAgent   string        `mapstructure:"user_agent"    yaml:"user_agent"`
	MaxBodySize int64         `mapstructure:"max_body_size" yaml:"max_body_size"`
}

// ScrapeConfig controls the aggregator.
type ScrapeConfig struct {
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency"`
}

// StorageConfig controls the persistence sink.
type StorageConfig struct {
	Type       string `mapstructure:"type"        yaml:"type"`
	MongoURI   string `mapstructure:"mongo_uri"   yaml:"mongo_uri"`
	Database   string `mapstructure:"database"    yaml:"database"`
	Collection string `mapstructure:"collection"  yaml:"collection"`
	OutputPath string `mapstructure:"output_path" yaml:"output_path"`
}

// ServerConfig controls the web frontend.
type ServerConfig struct {
	Addr          string        `mapstructure:"addr"           yaml:"addr"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout"   yaml:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"  yaml:"write_timeout"`
	ScrapeTimeout time.Duration `mapstructure:"scrape_timeout" yaml:"scrape_timeout"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// MetricsConfig controls the metrics endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path"    yaml:"path"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Sources: SourcesConfig{
			NewsURL:        "https://redplanetscience.com/",
			ImageURL:       "https://spaceimages-mars.com",
			FactsURL:       "https://galaxyfacts-mars.com",
			HemispheresURL: "https://marshemispheres.com/",
		},
		Selectors: SelectorsConfig{
			NewsItem:        "div.list_text",
			NewsTitle:       "div.content_title",
			NewsTeaser:      "div.article_teaser_body",
			ImageArea:       "div.floating_text_area",
			ImageLink:       "a",
			HemisphereItem:  "div.item",
			HemisphereTitle: "h3",
			HemisphereLink:  "a",
			HemisphereImage: "img",
			FactsTable:      "//table",
		},
		Browser: BrowserConfig{
			Driver:            "rod",
			Headless:          true,
			SettleDelay:       1 * time.Second,
			NavigationTimeout: 30 * time.Second,
			NoSandbox:         true,
		},
		Fetcher: FetcherConfig{
			Timeout:     30 * time.Second,
			UserAgent:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			MaxBodySize: 10 * 1024 * 1024, // 10MB
		},
		Scrape: ScrapeConfig{
			Concurrency: 4,
		},
		Storage: StorageConfig{
			Type:       "mongo",
			MongoURI:   "mongodb://localhost:27017",
			Database:   "mars_app",
			Collection: "mars_info",
			OutputPath: "./output/mars_info.json",
		},
		Server: ServerConfig{
			Addr:          ":5000",
			ReadTimeout:   15 * time.Second,
			WriteTimeout:  3 * time.Minute,
			ScrapeTimeout: 2 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}
