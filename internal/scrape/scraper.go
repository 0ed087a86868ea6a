// Package scrape aggregates the four extraction steps into one
// ScrapeResult and, on full success only, hands it to the sink.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/IshaanNene/marsboard/internal/config"
	"github.com/IshaanNene/marsboard/internal/extract"
	"github.com/IshaanNene/marsboard/internal/fetcher"
	"github.com/IshaanNene/marsboard/internal/observability"
	"github.com/IshaanNene/marsboard/internal/pipeline"
	"github.com/IshaanNene/marsboard/internal/storage"
	"github.com/IshaanNene/marsboard/internal/types"
)

// ErrNoSink is returned by Refresh when the scraper has no sink.
var ErrNoSink = errors.New("scraper has no storage sink")

// Scraper runs the extraction steps and composes their fragments.
type Scraper struct {
	cfg       *config.Config
	browser   fetcher.Fetcher
	raw       fetcher.Fetcher
	extractor *extract.Extractor
	pipeline  *pipeline.Pipeline
	sink      storage.Sink
	metrics   *observability.Metrics
	logger    *slog.Logger

	concurrency int
	timeout     time.Duration
	refresh     singleflight.Group
}

// Option configures the Scraper.
type Option func(*Scraper)

// WithSink sets the sink Refresh writes to.
func WithSink(sink storage.Sink) Option {
	return func(s *Scraper) { s.sink = sink }
}

// WithMetrics sets the metrics the scraper reports to.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Scraper) { s.metrics = m }
}

// WithPipeline replaces the default post-processing pipeline.
func WithPipeline(p *pipeline.Pipeline) Option {
	return func(s *Scraper) { s.pipeline = p }
}

// New creates a Scraper. browser renders the news, image and hemisphere
// pages; raw fetches the facts page without rendering.
func New(cfg *config.Config, browser, raw fetcher.Fetcher, logger *slog.Logger, opts ...Option) *Scraper {
	s := &Scraper{
		cfg:         cfg,
		browser:     browser,
		raw:         raw,
		logger:      logger.With("component", "scraper"),
		concurrency: cfg.Scrape.Concurrency,
		timeout:     cfg.Server.ScrapeTimeout,
	}
	if s.concurrency < 1 {
		s.concurrency = 1
	}
	if s.timeout <= 0 {
		s.timeout = config.DefaultConfig().Server.ScrapeTimeout
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = observability.NewMetrics()
	}
	if s.pipeline == nil {
		s.pipeline = pipeline.Default(logger)
	}

	s.extractor = extract.New(cfg.Selectors, logger)
	s.extractor.OnSkip = func(step string, err error) {
		s.metrics.ItemsSkipped.Add(1)
	}
	return s
}

// Metrics returns the metrics the scraper reports to.
func (s *Scraper) Metrics() *observability.Metrics {
	return s.metrics
}

// Run fetches the four source pages with bounded concurrency and returns
// the composed result. The first failing step cancels the others and its
// error is returned; no partial result is ever produced.
func (s *Scraper) Run(ctx context.Context) (*types.ScrapeResult, error) {
	start := time.Now()
	src := s.cfg.Sources

	var (
		news        types.NewsItem
		image       types.FeaturedImage
		facts       types.FactsTable
		hemispheres []types.HemisphereRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	g.Go(func() error {
		page, err := s.fetch(gctx, s.browser, extract.StepNews, src.NewsURL)
		if err != nil {
			return err
		}
		news, err = s.extractor.News(page)
		return s.observeExtraction(err)
	})
	g.Go(func() error {
		page, err := s.fetch(gctx, s.browser, extract.StepImage, src.ImageURL)
		if err != nil {
			return err
		}
		image, err = s.extractor.FeaturedImage(page, src.ImageURL)
		return s.observeExtraction(err)
	})
	g.Go(func() error {
		page, err := s.fetch(gctx, s.raw, extract.StepFacts, src.FactsURL)
		if err != nil {
			return err
		}
		facts, err = s.extractor.Facts(page)
		return s.observeExtraction(err)
	})
	g.Go(func() error {
		page, err := s.fetch(gctx, s.browser, extract.StepHemispheres, src.HemispheresURL)
		if err != nil {
			return err
		}
		hemispheres, err = s.extractor.Hemispheres(page, src.HemispheresURL)
		return s.observeExtraction(err)
	})

	if err := g.Wait(); err != nil {
		s.metrics.ObserveScrape(time.Since(start), err)
		s.logger.Error("scrape failed", "error", err, "duration", time.Since(start))
		return nil, err
	}

	result, err := s.pipeline.Process(types.NewScrapeResult(news, image, facts, hemispheres))
	if err != nil {
		s.metrics.ObserveScrape(time.Since(start), err)
		s.logger.Error("scrape post-processing failed", "error", err)
		return nil, err
	}

	duration := time.Since(start)
	s.metrics.ObserveScrape(duration, nil)
	s.logger.Info("scrape complete",
		"duration", duration,
		"news_title", result.NewsTitle,
		"hemispheres", len(result.HemispheresImages),
	)
	return result, nil
}

// Refresh runs the aggregation and replaces the stored document with the
// result. On any failure the stored document is left untouched.
// Overlapping calls share a single run. The shared run is detached from
// the caller's cancellation and bounded by the scrape timeout; each
// caller still stops waiting when its own ctx is done.
func (s *Scraper) Refresh(ctx context.Context) (*types.ScrapeResult, error) {
	if s.sink == nil {
		return nil, ErrNoSink
	}

	ch := s.refresh.DoChan("refresh", func() (any, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()

		result, err := s.Run(runCtx)
		if err != nil {
			return nil, err
		}
		if err := s.sink.Replace(runCtx, result); err != nil {
			s.metrics.StorageErrors.Add(1)
			return nil, fmt.Errorf("store result: %w", err)
		}
		s.metrics.DocumentsStored.Add(1)
		return result, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			s.logger.Debug("refresh shared with a concurrent caller")
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*types.ScrapeResult), nil
	}
}

// fetch builds the request for one source page and fetches it.
func (s *Scraper) fetch(ctx context.Context, f fetcher.Fetcher, step, rawURL string) (*types.Page, error) {
	req, err := types.NewRequest(rawURL)
	if err != nil {
		return nil, &types.NavigationError{URL: rawURL, Driver: f.Type(), Err: err}
	}
	req.Source = step

	s.logger.Debug("fetching source page", "step", step, "url", rawURL, "fetcher", f.Type())
	page, err := f.Fetch(ctx, req)
	if err != nil {
		s.metrics.FetchErrors.Add(1)
		return nil, err
	}
	s.metrics.PagesFetched.Add(1)
	s.metrics.BytesDownloaded.Add(int64(len(page.Body)))
	return page, nil
}

func (s *Scraper) observeExtraction(err error) error {
	if err != nil {
		s.metrics.ExtractionErrors.Add(1)
	}
	return err
}
