package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/IshaanNene/marsboard/internal/config"
	"github.com/IshaanNene/marsboard/internal/types"
)

// RodFetcher implements Fetcher with a Chromium instance driven by Rod.
// Every Fetch launches its own browser process and tears it down before
// returning, so concurrent fetches never share a session.
type RodFetcher struct {
	cfg    *config.BrowserConfig
	logger *slog.Logger
}

// NewRodFetcher creates a new Rod-backed fetcher.
func NewRodFetcher(cfg *config.BrowserConfig, logger *slog.Logger) *RodFetcher {
	return &RodFetcher{
		cfg:    cfg,
		logger: logger.With("component", "rod_fetcher"),
	}
}

// newLauncher builds a Chromium launcher with appropriate flags.
func (f *RodFetcher) newLauncher(ctx context.Context) *launcher.Launcher {
	l := launcher.New().
		Context(ctx).
		Headless(f.cfg.Headless).
		Leakless(true).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("disable-blink-features", "AutomationControlled")

	if f.cfg.NoSandbox {
		l = l.NoSandbox(true)
	}
	if f.cfg.Bin != "" {
		l = l.Bin(f.cfg.Bin)
	}
	return l
}

// Fetch launches a browser, navigates to the URL, waits the settle delay
// and returns the rendered markup.
func (f *RodFetcher) Fetch(ctx context.Context, req *types.Request) (*types.Page, error) {
	start := time.Now()
	url := req.URLString()

	l := f.newLauncher(ctx)
	controlURL, err := l.Launch()
	if err != nil {
		return nil, &types.NavigationError{URL: url, Driver: f.Type(), Err: fmt.Errorf("launch browser: %w", err)}
	}
	defer l.Cleanup()
	defer l.Kill()

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, &types.NavigationError{URL: url, Driver: f.Type(), Err: fmt.Errorf("connect browser: %w", err)}
	}
	defer func() {
		if err := browser.Close(); err != nil {
			f.logger.Debug("browser close", "url", url, "error", err)
		}
	}()

	var page *rod.Page
	if f.cfg.Stealth {
		page, err = stealth.Page(browser)
	} else {
		page, err = browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	}
	if err != nil {
		return nil, &types.NavigationError{URL: url, Driver: f.Type(), Err: fmt.Errorf("open page: %w", err)}
	}

	timeout := f.cfg.NavigationTimeout
	if req.Timeout > 0 {
		timeout = req.Timeout
	}

	if err := page.Timeout(timeout).Navigate(url); err != nil {
		return nil, &types.NavigationError{URL: url, Driver: f.Type(), Err: err}
	}
	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		f.logger.Warn("page load wait failed, continuing", "url", url, "error", err)
	}

	// Fixed settle delay for client-side rendering.
	if err := sleepContext(ctx, f.cfg.SettleDelay); err != nil {
		return nil, &types.NavigationError{URL: url, Driver: f.Type(), Err: err}
	}

	html, err := page.HTML()
	if err != nil {
		return nil, &types.NavigationError{URL: url, Driver: f.Type(), Err: fmt.Errorf("capture html: %w", err)}
	}

	finalURL := url
	if info, err := page.Info(); err == nil && info != nil {
		finalURL = info.URL
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
func (f *RodFetcher) Type() string {
	return "rod"
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
