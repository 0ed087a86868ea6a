package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/IshaanNene/marsboard/internal/config"
	"github.com/IshaanNene/marsboard/internal/storage"
	"github.com/IshaanNene/marsboard/internal/types"
)

var (
	storeResult bool
	scrapeJSON  bool
	showJSON    bool
)

// scrapeCmd creates the "scrape" subcommand.
func scrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Run one scrape and print the result",
		Long: `Fetch the four source pages, compose the Mars document and print it.
With --store the document replaces the stored one; on failure nothing is written.`,
		RunE: runScrape,
	}
	cmd.Flags().BoolVar(&storeResult, "store", false, "replace the stored document with the result")
	cmd.Flags().BoolVar(&scrapeJSON, "json", false, "print the result as JSON")
	return cmd
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.Server.ScrapeTimeout)
	defer cancel()

	a, err := newApp(ctx, cfg, logger, storeResult)
	if err != nil {
		return err
	}
	defer a.Close()

	logger.Info("starting scrape",
		"driver", cfg.Browser.Driver,
		"concurrency", cfg.Scrape.Concurrency,
		"store", storeResult,
	)

	start := time.Now()
	var result *types.ScrapeResult
	if storeResult {
		result, err = a.scraper.Refresh(ctx)
	} else {
		result, err = a.scraper.Run(ctx)
	}
	if err != nil {
		return fmt.Errorf("scrape: %w", err)
	}

	if err := printResult(cmd.OutOrStdout(), result, scrapeJSON); err != nil {
		return err
	}

	stats := a.metrics.Snapshot()
	fmt.Fprintf(cmd.ErrOrStderr(), "\n✅ Scrape complete in %s\n", time.Since(start).Round(time.Millisecond))
	fmt.Fprintf(cmd.ErrOrStderr(), "   Pages:     %d fetched, %d bytes\n", stats["pages_fetched"], stats["bytes_downloaded"])
	fmt.Fprintf(cmd.ErrOrStderr(), "   Skipped:   %d hemisphere items\n", stats["items_skipped"])
	if storeResult {
		fmt.Fprintf(cmd.ErrOrStderr(), "   Stored:    %s\n", storageTarget(cfg))
	}
	return nil
}

// showCmd creates the "show" subcommand.
func showCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the stored Mars document",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := setupLogger(cfg.Logging)

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			store, err := storage.New(ctx, &cfg.Storage, logger)
			if err != nil {
				return fmt.Errorf("create storage: %w", err)
			}
			defer store.Close()

			doc, err := store.Read(ctx)
			if errors.Is(err, types.ErrNoDocument) {
				fmt.Fprintln(cmd.ErrOrStderr(), "No document stored yet. Run `marsboard scrape --store` first.")
				return nil
			}
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), doc, showJSON)
		},
	}
	cmd.Flags().BoolVar(&showJSON, "json", false, "print the document as JSON")
	return cmd
}

func printResult(w io.Writer, result *types.ScrapeResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	summary := table.NewWriter()
	summary.SetOutputMirror(w)
	summary.SetTitle("Mars")
	summary.AppendRows([]table.Row{
		{"News title", result.NewsTitle},
		{"News teaser", result.NewsP},
		{"Featured image", result.FeaturedImageURL},
	})
	summary.SetStyle(table.StyleRounded)
	summary.Render()

	rows, err := factRows(result.FactsHTML)
	if err != nil {
		return fmt.Errorf("read facts table: %w", err)
	}
	facts := table.NewWriter()
	facts.SetOutputMirror(w)
	facts.SetTitle("Mars Facts")
	facts.AppendHeader(table.Row{types.ColumnDescription, types.ColumnMars, types.ColumnEarth})
	facts.AppendRows(rows)
	facts.SetStyle(table.StyleRounded)
	facts.Render()

	hemispheres := table.NewWriter()
	hemispheres.SetOutputMirror(w)
	hemispheres.SetTitle("Hemispheres")
	hemispheres.AppendHeader(table.Row{"#", "Title", "Image"})
	for i, h := range result.HemispheresImages {
		hemispheres.AppendRow(table.Row{i + 1, h.Title, h.ImgSrcURL})
	}
	hemispheres.SetStyle(table.StyleRounded)
	hemispheres.Render()
	return nil
}

// factRows reads the body rows back out of the rendered facts table.
func factRows(factsHTML string) ([]table.Row, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(factsHTML))
	if err != nil {
		return nil, err
	}
	var rows []table.Row
	doc.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		row := table.Row{strings.TrimSpace(tr.Find("th").First().Text())}
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			row = append(row, strings.TrimSpace(td.Text()))
		})
		rows = append(rows, row)
	})
	return rows, nil
}

func storageTarget(cfg *config.Config) string {
	switch cfg.Storage.Type {
	case "mongo":
		return fmt.Sprintf("%s/%s.%s", cfg.Storage.MongoURI, cfg.Storage.Database, cfg.Storage.Collection)
	case "json":
		return cfg.Storage.OutputPath
	default:
		return cfg.Storage.Type
	}
}
