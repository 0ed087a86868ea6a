package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/IshaanNene/marsboard/internal/config"
	"github.com/IshaanNene/marsboard/internal/fetcher"
	"github.com/IshaanNene/marsboard/internal/observability"
	"github.com/IshaanNene/marsboard/internal/scrape"
	"github.com/IshaanNene/marsboard/internal/storage"
)

var (
	cfgFile     string
	verbose     bool
	logFormat   string
	driver      string
	storageType string
	concurrency int
	headful     bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "marsboard",
		Short: "Marsboard: scrape the latest Mars data and serve it",
		Long: `Marsboard scrapes four public Mars sites (latest news, featured image,
planetary facts, hemisphere gallery), stores the combined result as a
single document and serves it as a web page.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text, json")
	rootCmd.PersistentFlags().StringVar(&driver, "driver", "", "browser driver: rod, chromedp")
	rootCmd.PersistentFlags().StringVar(&storageType, "storage", "", "storage backend: mongo, json, memory")
	rootCmd.PersistentFlags().IntVarP(&concurrency, "concurrency", "n", 0, "pages fetched in parallel")
	rootCmd.PersistentFlags().BoolVar(&headful, "headful", false, "show the browser window")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(scrapeCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig loads, overrides and validates the configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	applyCLIOverrides(cfg)
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// app holds the wired components shared by the commands.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
	store   storage.Sink
	scraper *scrape.Scraper
	raw     *fetcher.HTTPFetcher
}

// newApp wires fetchers, storage and the scraper from the config.
// withStore=false leaves the scraper without a sink.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, withStore bool) (*app, error) {
	a := &app{
		cfg:     cfg,
		logger:  logger,
		metrics: observability.NewMetrics(),
	}

	browser, err := fetcher.NewBrowserFetcher(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create browser fetcher: %w", err)
	}
	a.raw = fetcher.NewHTTPFetcher(&cfg.Fetcher, logger)

	opts := []scrape.Option{scrape.WithMetrics(a.metrics)}
	if withStore {
		a.store, err = storage.New(ctx, &cfg.Storage, logger)
		if err != nil {
			return nil, fmt.Errorf("create storage: %w", err)
		}
		opts = append(opts, scrape.WithSink(a.store))
	}

	a.scraper = scrape.New(cfg, browser, a.raw, logger, opts...)
	return a, nil
}

func (a *app) Close() {
	a.raw.Close()
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("close storage", "error", err)
		}
	}
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("marsboard %s\n", config.Version)
		},
	}
}

// configCmd prints the effective configuration as YAML.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			applyCLIOverrides(cfg)

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(cfg)
		},
	}
}

// setupLogger creates a structured logger.
func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// applyCLIOverrides applies command-line flag values to the config.
func applyCLIOverrides(cfg *config.Config) {
	if logFormat != "" {
		cfg.Logging.Format = strings.ToLower(logFormat)
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if driver != "" {
		cfg.Browser.Driver = strings.ToLower(driver)
	}
	if headful {
		cfg.Browser.Headless = false
	}
	if storageType != "" {
		cfg.Storage.Type = strings.ToLower(storageType)
	}
	if concurrency > 0 {
		cfg.Scrape.Concurrency = concurrency
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
}
