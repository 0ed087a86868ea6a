package fetcher

import (
	"context"
	"log/slog"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/IshaanNene/marsboard/internal/config"
	"github.com/IshaanNene/marsboard/internal/types"
)

// ChromedpFetcher implements Fetcher on top of chromedp. Like RodFetcher
// it allocates one browser per Fetch and releases it on return.
type ChromedpFetcher struct {
	cfg    *config.BrowserConfig
	logger *slog.Logger
}

// NewChromedpFetcher creates a new chromedp-backed fetcher.
func NewChromedpFetcher(cfg *config.BrowserConfig, logger *slog.Logger) *ChromedpFetcher {
	return &ChromedpFetcher{
		cfg:    cfg,
		logger: logger.With("component", "chromedp_fetcher"),
	}
}

func (f *ChromedpFetcher) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", f.cfg.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	if f.cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if f.cfg.Bin != "" {
		opts = append(opts, chromedp.ExecPath(f.cfg.Bin))
	}
	return opts
}

// Fetch navigates to the URL, sleeps the settle delay and captures the
// outer HTML of the document.
func (f *ChromedpFetcher) Fetch(ctx context.Context, req *types.Request) (*types.Page, error) {
	start := time.Now()
	url := req.URLString()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, f.allocatorOptions()...)
	defer cancelAlloc()

	taskCtx, cancelTask := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			f.logger.Debug("chromedp", "msg", format, "args", args)
		}),
	)
	defer cancelTask()

	timeout := f.cfg.NavigationTimeout
	if req.Timeout > 0 {
		timeout = req.Timeout
	}
	// The settle delay runs inside the same deadline.
	runCtx, cancelRun := context.WithTimeout(taskCtx, timeout+f.cfg.SettleDelay)
	defer cancelRun()

	var html, finalURL string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.Sleep(f.cfg.SettleDelay),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		chromedp.Location(&finalURL),
	)
	if err != nil {
		return nil, &types.NavigationError{URL: url, Driver: f.Type(), Err: err}
	}

	duration := time.Since(start)
	f.logger.Debug("browser fetch complete",
		"url", url,
		"final_url", finalURL,
		"size", len(html),
		"duration", duration,
	)

	return types.NewPage(req, 200, []byte(html), finalURL, duration), nil
}

// Type returns the fetcher type identifier.
func (f *ChromedpFetcher) Type() string {
	return "chromedp"
}
