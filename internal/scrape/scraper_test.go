package scrape

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/IshaanNene/marsboard/internal/config"
	"github.com/IshaanNene/marsboard/internal/extract"
	"github.com/IshaanNene/marsboard/internal/fetcher"
	"github.com/IshaanNene/marsboard/internal/storage"
	"github.com/IshaanNene/marsboard/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

var fixtures = map[string]string{
	extract.StepNews: `<html><body>
<div class="list_text">
  <div class="content_title">  Dust Storm Season Begins  </div>
  <div class="article_teaser_body">Orbiters are watching the southern hemisphere.</div>
</div>
<div class="list_text">
  <div class="content_title">Older</div>
  <div class="article_teaser_body">Older teaser.</div>
</div>
</body></html>`,
	extract.StepImage: `<html><body>
<div class="floating_text_area"><a class="showimg" href="image/featured/mars3.jpg">FULL IMAGE</a></div>
</body></html>`,
	extract.StepFacts: `<html><body><table>
<tr><th>Mars - Earth Comparison</th><th>Mars</th><th>Earth</th></tr>
<tr><td>Diameter:</td><td>6,779 km</td><td>12,742 km</td></tr>
<tr><td>Moons:</td><td>2</td><td>1</td></tr>
</table></body></html>`,
	extract.StepHemispheres: `<html><body>
<div class="item"><a href="cerberus.html"><img src="images/cerberus.png"></a><h3>Cerberus Hemisphere Enhanced</h3></div>
<div class="item"><a href="schiaparelli.html"><img src="images/schiaparelli.png"></a><h3>Schiaparelli Hemisphere Enhanced</h3></div>
<div class="item"><a href="syrtis.html"></a><h3>Syrtis Major Hemisphere Enhanced</h3></div>
<div class="item"><a href="valles.html"><img src="images/valles.png"></a><h3>Valles Marineris Hemisphere Enhanced</h3></div>
</body></html>`,
}

// fakeFetcher serves canned markup keyed by the request's step.
type fakeFetcher struct {
	name   string
	bodies map[string]string
	errs   map[string]error
	block  map[string]bool
	gate   chan struct{}
	calls  atomic.Int64
}

func (f *fakeFetcher) Type() string { return f.name }

func (f *fakeFetcher) Fetch(ctx context.Context, req *types.Request) (*types.Page, error) {
	f.calls.Add(1)
	if f.block[req.Source] {
		<-ctx.Done()
		return nil, &types.NavigationError{URL: req.URLString(), Driver: f.name, Err: ctx.Err()}
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, &types.NavigationError{URL: req.URLString(), Driver: f.name, Err: ctx.Err()}
		}
	}
	if err, ok := f.errs[req.Source]; ok {
		return nil, &types.NavigationError{URL: req.URLString(), Driver: f.name, Err: err}
	}
	return types.NewPage(req, 200, []byte(f.bodies[req.Source]), req.URLString(), time.Millisecond), nil
}

var _ fetcher.Fetcher = (*fakeFetcher)(nil)

func newFake() *fakeFetcher {
	return &fakeFetcher{name: "fake", bodies: fixtures, errs: map[string]error{}, block: map[string]bool{}}
}

func newScraper(t *testing.T, f *fakeFetcher, opts ...Option) *Scraper {
	t.Helper()
	return New(config.DefaultConfig(), f, f, testLogger, opts...)
}

func TestRunComposesResult(t *testing.T) {
	f := newFake()
	s := newScraper(t, f)

	result, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if result.NewsTitle != "Dust Storm Season Begins" {
		t.Errorf("unexpected news title %q", result.NewsTitle)
	}
	if result.NewsP != "Orbiters are watching the southern hemisphere." {
		t.Errorf("unexpected news paragraph %q", result.NewsP)
	}
	if result.FeaturedImageURL != "https://spaceimages-mars.com/image/featured/mars3.jpg" {
		t.Errorf("unexpected featured image %q", result.FeaturedImageURL)
	}
	if !strings.Contains(result.FactsHTML, "<th>Diameter:</th>") {
		t.Errorf("facts html missing row key:\n%s", result.FactsHTML)
	}

	want := []types.HemisphereRecord{
		{Title: "Cerberus Hemisphere Enhanced", ImgURL: "https://marshemispheres.com/cerberus.html", ImgSrcURL: "https://marshemispheres.com/images/cerberus.png"},
		{Title: "Schiaparelli Hemisphere Enhanced", ImgURL: "https://marshemispheres.com/schiaparelli.html", ImgSrcURL: "https://marshemispheres.com/images/schiaparelli.png"},
		{Title: "Valles Marineris Hemisphere Enhanced", ImgURL: "https://marshemispheres.com/valles.html", ImgSrcURL: "https://marshemispheres.com/images/valles.png"},
	}
	if diff := cmp.Diff(want, result.HemispheresImages); diff != "" {
		t.Errorf("hemispheres mismatch (-want +got):\n%s", diff)
	}

	if got := f.calls.Load(); got != 4 {
		t.Errorf("expected 4 fetches, got %d", got)
	}
	snap := s.Metrics().Snapshot()
	if snap["items_skipped"] != 1 {
		t.Errorf("expected 1 skipped item, got %d", snap["items_skipped"])
	}
	if snap["scrapes_total"] != 1 || snap["scrapes_failed"] != 0 {
		t.Errorf("unexpected scrape counters %v", snap)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	s := newScraper(t, newFake())

	first, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("runs over unchanged pages differ (-first +second):\n%s", diff)
	}
}

func TestRunFailsFast(t *testing.T) {
	f := newFake()
	f.errs[extract.StepFacts] = errors.New("connection refused")
	f.block[extract.StepNews] = true
	f.block[extract.StepHemispheres] = true

	s := newScraper(t, f)

	done := make(chan struct{})
	var (
		result *types.ScrapeResult
		err    error
	)
	go func() {
		result, err = s.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("run did not cancel blocked steps after a failure")
	}

	if result != nil {
		t.Fatal("expected no result on failure")
	}
	if !types.IsNavigation(err) {
		t.Fatalf("expected navigation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("expected the first failure to surface, got %v", err)
	}
}

func TestRunExtractionFailure(t *testing.T) {
	f := newFake()
	f.bodies = map[string]string{
		extract.StepNews:        fixtures[extract.StepNews],
		extract.StepImage:       `<html><body><div class="floating_text_area"><span>no link</span></div></body></html>`,
		extract.StepFacts:       fixtures[extract.StepFacts],
		extract.StepHemispheres: fixtures[extract.StepHemispheres],
	}

	_, err := newScraper(t, f).Run(context.Background())
	if !errors.Is(err, types.ErrNoFeaturedImage) {
		t.Fatalf("expected ErrNoFeaturedImage, got %v", err)
	}
	var extErr *types.ExtractionError
	if !errors.As(err, &extErr) || extErr.Step != extract.StepImage {
		t.Errorf("expected extraction error for the image step, got %v", err)
	}
}

func TestRefreshStoresOnSuccess(t *testing.T) {
	sink := storage.NewMemorySink()
	s := newScraper(t, newFake(), WithSink(sink))

	result, err := s.Refresh(context.Background())
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}

	stored, err := sink.Read(context.Background())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if diff := cmp.Diff(result, stored); diff != "" {
		t.Errorf("stored document differs (-returned +stored):\n%s", diff)
	}
	if s.Metrics().Snapshot()["documents_stored"] != 1 {
		t.Error("expected documents_stored to be 1")
	}
}

func TestRefreshLeavesStoreUntouchedOnFailure(t *testing.T) {
	ctx := context.Background()
	sink := storage.NewMemorySink()

	previous := types.NewScrapeResult(
		types.NewsItem{Title: "previous", Summary: "kept"},
		types.FeaturedImage{URL: "https://spaceimages-mars.com/image/old.jpg"},
		types.FactsTable{},
		nil,
	)
	if err := sink.Replace(ctx, previous); err != nil {
		t.Fatalf("seed: %v", err)
	}

	f := newFake()
	f.errs[extract.StepHemispheres] = errors.New("timeout")
	s := newScraper(t, f, WithSink(sink))

	if _, err := s.Refresh(ctx); err == nil {
		t.Fatal("expected refresh to fail")
	}

	stored, err := sink.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if diff := cmp.Diff(previous, stored); diff != "" {
		t.Errorf("store changed after failed refresh (-want +got):\n%s", diff)
	}
	if sink.Writes() != 1 {
		t.Errorf("expected only the seed write, got %d", sink.Writes())
	}
}

func TestRefreshWithoutSink(t *testing.T) {
	_, err := newScraper(t, newFake()).Refresh(context.Background())
	if !errors.Is(err, ErrNoSink) {
		t.Fatalf("expected ErrNoSink, got %v", err)
	}
}

func TestRefreshConcurrentCallers(t *testing.T) {
	sink := storage.NewMemorySink()
	s := newScraper(t, newFake(), WithSink(sink))

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Refresh(context.Background())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("refresh: %v", err)
		}
	}
	if sink.Writes() < 1 || sink.Writes() > 8 {
		t.Errorf("unexpected write count %d", sink.Writes())
	}
}

func TestRunZeroConcurrency(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Scrape.Concurrency = 0
	f := newFake()
	s := New(cfg, f, f, testLogger)

	done := make(chan error, 1)
	go func() {
		_, err := s.Run(context.Background())
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run blocked with zero concurrency")
	}
}

func TestRefreshOutlivesCancelledCaller(t *testing.T) {
	sink := storage.NewMemorySink()
	f := newFake()
	f.gate = make(chan struct{})
	s := newScraper(t, f, WithSink(sink))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := s.Refresh(ctx)
		errCh <- err
	}()

	deadline := time.Now().Add(5 * time.Second)
	for f.calls.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("refresh never started fetching")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected the cancelled caller to get context.Canceled, got %v", err)
	}

	close(f.gate)
	for sink.Writes() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("shared run was cancelled with its first caller")
		}
		time.Sleep(5 * time.Millisecond)
	}

	stored, err := sink.Read(context.Background())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if stored.NewsTitle != "Dust Storm Season Begins" {
		t.Errorf("unexpected stored title %q", stored.NewsTitle)
	}
}

func TestRefreshSharedRunServesLaterCaller(t *testing.T) {
	sink := storage.NewMemorySink()
	f := newFake()
	f.gate = make(chan struct{})
	s := newScraper(t, f, WithSink(sink))

	first, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := s.Refresh(first)
		firstErr <- err
	}()

	deadline := time.Now().Add(5 * time.Second)
	for f.calls.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("refresh never started fetching")
		}
		time.Sleep(5 * time.Millisecond)
	}

	secondDone := make(chan error, 1)
	go func() {
		_, err := s.Refresh(context.Background())
		secondDone <- err
	}()

	cancelFirst()
	<-firstErr
	close(f.gate)

	select {
	case err := <-secondDone:
		if err != nil {
			t.Fatalf("second caller failed after the first disconnected: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("second caller never returned")
	}
}

// TestRunLive scrapes the real source sites when MARSBOARD_LIVE is set.
func TestRunLive(t *testing.T) {
	if testing.Short() || os.Getenv("MARSBOARD_LIVE") == "" {
		t.Skip("skipping live scrape")
	}

	cfg := config.DefaultConfig()
	browser, err := fetcher.NewBrowserFetcher(cfg, testLogger)
	if err != nil {
		t.Fatalf("browser fetcher: %v", err)
	}
	raw := fetcher.NewHTTPFetcher(&cfg.Fetcher, testLogger)
	defer raw.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	result, err := New(cfg, browser, raw, testLogger).Run(ctx)
	if err != nil {
		t.Fatalf("live run: %v", err)
	}
	if result.NewsTitle == "" || result.FeaturedImageURL == "" || result.FactsHTML == "" {
		t.Errorf("incomplete live result: %+v", result)
	}
	if len(result.HemispheresImages) == 0 {
		t.Error("expected at least one hemisphere")
	}
}
