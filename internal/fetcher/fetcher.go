package fetcher

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/IshaanNene/marsboard/internal/config"
	"github.com/IshaanNene/marsboard/internal/types"
)

// Fetcher is the interface for all page fetcher implementations.
type Fetcher interface {
	// Fetch retrieves the content at the given request's URL.
	Fetch(ctx context.Context, req *types.Request) (*types.Page, error)

	// Type returns the fetcher type identifier.
	Type() string
}

// NewBrowserFetcher returns the rendered-page fetcher selected by
// browser.driver.
func NewBrowserFetcher(cfg *config.Config, logger *slog.Logger) (Fetcher, error) {
	switch cfg.Browser.Driver {
	case "rod", "":
		return NewRodFetcher(&cfg.Browser, logger), nil
	case "chromedp":
		return NewChromedpFetcher(&cfg.Browser, logger), nil
	default:
		return nil, fmt.Errorf("unsupported browser driver: %s", cfg.Browser.Driver)
	}
}
