package observability

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Metrics tracks operational metrics for the scrape pipeline.
type Metrics struct {
	// Scrape metrics
	ScrapesTotal  atomic.Int64
	ScrapesFailed atomic.Int64

	// Fetch metrics
	PagesFetched    atomic.Int64
	FetchErrors     atomic.Int64
	BytesDownloaded atomic.Int64

	// Extraction metrics
	ExtractionErrors atomic.Int64
	ItemsSkipped     atomic.Int64

	// Storage metrics
	DocumentsStored atomic.Int64
	StorageErrors   atomic.Int64

	lastDurationMs atomic.Int64
	lastSuccess    atomic.Int64 // unix seconds
}

// NewMetrics creates a new Metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// ObserveScrape records the outcome of one aggregation run.
func (m *Metrics) ObserveScrape(d time.Duration, err error) {
	m.ScrapesTotal.Add(1)
	m.lastDurationMs.Store(d.Milliseconds())
	if err != nil {
		m.ScrapesFailed.Add(1)
		return
	}
	m.lastSuccess.Store(time.Now().Unix())
}

// LastSuccess returns when the last successful scrape finished.
func (m *Metrics) LastSuccess() time.Time {
	secs := m.lastSuccess.Load()
	if secs == 0 {
		return time.Time{}
	}
	return time.Unix(secs, 0)
}

// ServeHTTP serves metrics in Prometheus text exposition format.
func (m *Metrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	metrics := []struct {
		name  string
		help  string
		kind  string
		value int64
	}{
		{"marsboard_scrapes_total", "Total scrape runs", "counter", m.ScrapesTotal.Load()},
		{"marsboard_scrapes_failed_total", "Total failed scrape runs", "counter", m.ScrapesFailed.Load()},
		{"marsboard_pages_fetched_total", "Total source pages fetched", "counter", m.PagesFetched.Load()},
		{"marsboard_fetch_errors_total", "Total page fetch failures", "counter", m.FetchErrors.Load()},
		{"marsboard_bytes_downloaded_total", "Total markup bytes captured", "counter", m.BytesDownloaded.Load()},
		{"marsboard_extraction_errors_total", "Total extraction failures", "counter", m.ExtractionErrors.Load()},
		{"marsboard_items_skipped_total", "Total candidate nodes skipped during extraction", "counter", m.ItemsSkipped.Load()},
		{"marsboard_documents_stored_total", "Total documents written to storage", "counter", m.DocumentsStored.Load()},
		{"marsboard_storage_errors_total", "Total storage write failures", "counter", m.StorageErrors.Load()},
		{"marsboard_last_scrape_duration_ms", "Duration of the last scrape run", "gauge", m.lastDurationMs.Load()},
		{"marsboard_last_success_timestamp_seconds", "Unix time of the last successful scrape", "gauge", m.lastSuccess.Load()},
	}

	for _, metric := range metrics {
		fmt.Fprintf(w, "# HELP %s %s\n", metric.name, metric.help)
		fmt.Fprintf(w, "# TYPE %s %s\n", metric.name, metric.kind)
		fmt.Fprintf(w, "%s %d\n", metric.name, metric.value)
	}
}

// Snapshot returns all metrics as a map.
func (m *Metrics) Snapshot() map[string]int64 {
	return map[string]int64{
		"scrapes_total":     m.ScrapesTotal.Load(),
		"scrapes_failed":    m.ScrapesFailed.Load(),
		"pages_fetched":     m.PagesFetched.Load(),
		"fetch_errors":      m.FetchErrors.Load(),
		"bytes_downloaded":  m.BytesDownloaded.Load(),
		"extraction_errors": m.ExtractionErrors.Load(),
		"items_skipped":     m.ItemsSkipped.Load(),
		"documents_stored":  m.DocumentsStored.Load(),
		"storage_errors":    m.StorageErrors.Load(),
		"last_duration_ms":  m.lastDurationMs.Load(),
	}
}
