package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	sources := map[string]string{
		"sources.news_url":        cfg.Sources.NewsURL,
		"sources.image_url":       cfg.Sources.ImageURL,
		"sources.facts_url":       cfg.Sources.FactsURL,
		"sources.hemispheres_url": cfg.Sources.HemispheresURL,
	}
	for key, rawURL := range sources {
		if err := ValidateURL(rawURL); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}

	selectors := map[string]string{
		"selectors.news_item":        cfg.Selectors.NewsItem,
		"selectors.news_title":       cfg.Selectors.NewsTitle,
		"selectors.news_teaser":      cfg.Selectors.NewsTeaser,
		"selectors.image_area":       cfg.Selectors.ImageArea,
		"selectors.image_link":       cfg.Selectors.ImageLink,
		"selectors.hemisphere_item":  cfg.Selectors.HemisphereItem,
		"selectors.hemisphere_title": cfg.Selectors.HemisphereTitle,
		"selectors.hemisphere_link":  cfg.Selectors.HemisphereLink,
		"selectors.hemisphere_image": cfg.Selectors.HemisphereImage,
		"selectors.facts_table":      cfg.Selectors.FactsTable,
	}
	for key, sel := range selectors {
		if strings.TrimSpace(sel) == "" {
			return fmt.Errorf("%s must not be empty", key)
		}
	}

	if cfg.Browser.Driver != "rod" && cfg.Browser.Driver != "chromedp" {
		return fmt.Errorf("browser.driver must be 'rod' or 'chromedp', got %q", cfg.Browser.Driver)
	}
	if cfg.Browser.SettleDelay < 0 {
		return fmt.Errorf("browser.settle_delay must be >= 0")
	}
	if cfg.Browser.NavigationTimeout <= 0 {
		return fmt.Errorf("browser.navigation_timeout must be > 0")
	}

	if cfg.Fetcher.Timeout <= 0 {
		return fmt.Errorf("fetcher.timeout must be > 0")
	}
	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}

	if cfg.Scrape.Concurrency < 1 || cfg.Scrape.Concurrency > 16 {
		return fmt.Errorf("scrape.concurrency must be 1-16, got %d", cfg.Scrape.Concurrency)
	}

	switch cfg.Storage.Type {
	case "mongo":
		if cfg.Storage.MongoURI == "" {
			return fmt.Errorf("storage.mongo_uri is required for mongo storage")
		}
		if cfg.Storage.Database == "" || cfg.Storage.Collection == "" {
			return fmt.Errorf("storage.database and storage.collection are required for mongo storage")
		}
	case "json":
		if cfg.Storage.OutputPath == "" {
			return fmt.Errorf("storage.output_path is required for json storage")
		}
	case "memory":
	default:
		return fmt.Errorf("storage.type %q is not supported (valid: mongo, json, memory)", cfg.Storage.Type)
	}

	if cfg.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if cfg.Server.ScrapeTimeout <= 0 {
		return fmt.Errorf("server.scrape_timeout must be > 0")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with '/', got %q", cfg.Metrics.Path)
	}

	return nil
}

// ValidateURL checks if a URL string is usable as a source page.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
