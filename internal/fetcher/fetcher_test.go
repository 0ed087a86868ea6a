package fetcher

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/IshaanNene/marsboard/internal/config"
	"github.com/IshaanNene/marsboard/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

const factsHTML = `<html><body><table><tr><th>Diameter:</th><td>6,779 km</td><td>12,742 km</td></tr></table></body></html>`

func newTestFetcher() *HTTPFetcher {
	cfg := config.DefaultConfig()
	return NewHTTPFetcher(&cfg.Fetcher, testLogger)
}

func mustRequest(t *testing.T, rawURL string) *types.Request {
	t.Helper()
	req, err := types.NewRequest(rawURL)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	return req
}

func TestHTTPFetcherPlain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua == "" {
			t.Error("expected a User-Agent header")
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(factsHTML))
	}))
	defer srv.Close()

	f := newTestFetcher()
	defer f.Close()

	page, err := f.Fetch(context.Background(), mustRequest(t, srv.URL))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(page.Body) != factsHTML {
		t.Errorf("unexpected body %q", page.Body)
	}
	if page.ContentType != "text/html; charset=utf-8" {
		t.Errorf("unexpected content type %q", page.ContentType)
	}
	if !page.IsSuccess() {
		t.Errorf("expected success status, got %d", page.StatusCode)
	}
}

func TestHTTPFetcherDecompress(t *testing.T) {
	tests := []struct {
		encoding string
		encode   func([]byte) []byte
	}{
		{"gzip", func(b []byte) []byte {
			var buf bytes.Buffer
			zw := gzip.NewWriter(&buf)
			zw.Write(b)
			zw.Close()
			return buf.Bytes()
		}},
		{"br", func(b []byte) []byte {
			var buf bytes.Buffer
			bw := brotli.NewWriter(&buf)
			bw.Write(b)
			bw.Close()
			return buf.Bytes()
		}},
	}

	for _, tt := range tests {
		t.Run(tt.encoding, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Encoding", tt.encoding)
				w.Write(tt.encode([]byte(factsHTML)))
			}))
			defer srv.Close()

			page, err := newTestFetcher().Fetch(context.Background(), mustRequest(t, srv.URL))
			if err != nil {
				t.Fatalf("fetch: %v", err)
			}
			if string(page.Body) != factsHTML {
				t.Errorf("decompressed body mismatch: %q", page.Body)
			}
		})
	}
}

func TestHTTPFetcherErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestFetcher().Fetch(context.Background(), mustRequest(t, srv.URL))
	if err == nil {
		t.Fatal("expected error for 404")
	}
	var navErr *types.NavigationError
	if !errors.As(err, &navErr) {
		t.Fatalf("expected NavigationError, got %T", err)
	}
	if navErr.Driver != "http" {
		t.Errorf("expected http driver, got %q", navErr.Driver)
	}
}

func TestHTTPFetcherUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newTestFetcher().Fetch(context.Background(), mustRequest(t, url))
	if !types.IsNavigation(err) {
		t.Fatalf("expected navigation error, got %v", err)
	}
}

func TestNewBrowserFetcherDriver(t *testing.T) {
	cfg := config.DefaultConfig()

	f, err := NewBrowserFetcher(cfg, testLogger)
	if err != nil || f.Type() != "rod" {
		t.Fatalf("expected rod fetcher, got %v (%v)", f, err)
	}

	cfg.Browser.Driver = "chromedp"
	f, err = NewBrowserFetcher(cfg, testLogger)
	if err != nil || f.Type() != "chromedp" {
		t.Fatalf("expected chromedp fetcher, got %v (%v)", f, err)
	}

	cfg.Browser.Driver = "selenium"
	if _, err := NewBrowserFetcher(cfg, testLogger); err == nil {
		t.Error("expected error for unknown driver")
	}
}

func TestSleepContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleepContext(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

// TestLiveBrowserFetch launches a real browser.
func TestLiveBrowserFetch(t *testing.T) {
	if testing.Short() || os.Getenv("MARSBOARD_LIVE") == "" {
		t.Skip("skipping live browser test")
	}

	cfg := config.DefaultConfig()
	f, err := NewBrowserFetcher(cfg, testLogger)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	page, err := f.Fetch(ctx, mustRequest(t, cfg.Sources.NewsURL))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	t.Logf("Body size: %d bytes", len(page.Body))
	t.Logf("Duration: %s", page.FetchDuration)
}
