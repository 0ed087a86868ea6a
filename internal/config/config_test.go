package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := Validate(DefaultConfig()); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad driver", func(c *Config) { c.Browser.Driver = "selenium" }},
		{"negative settle", func(c *Config) { c.Browser.SettleDelay = -time.Second }},
		{"zero concurrency", func(c *Config) { c.Scrape.Concurrency = 0 }},
		{"huge concurrency", func(c *Config) { c.Scrape.Concurrency = 64 }},
		{"bad storage", func(c *Config) { c.Storage.Type = "redis" }},
		{"mongo without uri", func(c *Config) { c.Storage.MongoURI = "" }},
		{"json without path", func(c *Config) { c.Storage.Type = "json"; c.Storage.OutputPath = "" }},
		{"ftp source", func(c *Config) { c.Sources.FactsURL = "ftp://galaxyfacts-mars.com" }},
		{"empty selector", func(c *Config) { c.Selectors.NewsItem = " " }},
		{"bad log level", func(c *Config) { c.Logging.Level = "trace" }},
		{"bad metrics path", func(c *Config) { c.Metrics.Path = "metrics" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := Validate(cfg); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	if err := ValidateURL("https://marshemispheres.com/"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateURL("marshemispheres.com"); err == nil {
		t.Error("expected error for URL without scheme")
	}
	if err := ValidateURL("https://"); err == nil {
		t.Error("expected error for URL without host")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marsboard.yaml")
	data := []byte(`
storage:
  type: json
  output_path: /tmp/mars.json
browser:
  driver: chromedp
  settle_delay: 250ms
scrape:
  concurrency: 2
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Type != "json" || cfg.Storage.OutputPath != "/tmp/mars.json" {
		t.Errorf("storage not loaded: %+v", cfg.Storage)
	}
	if cfg.Browser.Driver != "chromedp" {
		t.Errorf("expected chromedp driver, got %q", cfg.Browser.Driver)
	}
	if cfg.Browser.SettleDelay != 250*time.Millisecond {
		t.Errorf("expected 250ms settle delay, got %s", cfg.Browser.SettleDelay)
	}
	if cfg.Scrape.Concurrency != 2 {
		t.Errorf("expected concurrency 2, got %d", cfg.Scrape.Concurrency)
	}
	// Untouched keys keep their defaults.
	if cfg.Sources.NewsURL != DefaultConfig().Sources.NewsURL {
		t.Errorf("expected default news url, got %q", cfg.Sources.NewsURL)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("MARSBOARD_STORAGE_DATABASE", "mars_test")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for explicit missing config file")
	}

	cfg, err = Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Database != "mars_test" {
		t.Errorf("expected env override, got %q", cfg.Storage.Database)
	}
}
