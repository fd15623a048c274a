package models

import "time"

// CrawlTask is a single unit of work: a canonical URL and the depth at which
// it was discovered. Created once a link passes classification and dedup,
// consumed exactly once by a worker, never mutated afterwards.
type CrawlTask struct {
	URL   string
	Depth int
}

// PageResult is the outcome of fetching one task. Produced by a worker,
// consumed by the coordinator; immutable once produced.
type PageResult struct {
	URL        string        // Canonical URL that was fetched
	Depth      int           // Discovery depth of the task that produced this result
	OutputKey  string        // Path-safe output file name derived from the URL
	StatusCode int           // HTTP status of the document response (0 if the render never got one)
	Title      string        // Page title reported by the browser or extractor
	Markdown   string        // Extracted main content, converted to markdown; empty on failure
	Links      []string      // Raw anchor hrefs in document order
	Duration   time.Duration // Wall-clock time for render + extraction
	SPAShell   bool          // Content was near-empty after heuristics
	Failure    string        // Categorized failure reason; empty on success
}

// Saved reports whether this result carries content worth persisting.
// Failed pages and pages with no extracted text are crawled but not saved.
func (r *PageResult) Saved() bool {
	return r.Failure == "" && r.Markdown != ""
}

// CrawlStats is the process-lifetime aggregate. Mutated only by the
// coordinator; workers never touch it.
type CrawlStats struct {
	PagesCrawled   int       `json:"pages_crawled"`
	PagesSaved     int       `json:"pages_saved"`
	StartTime      float64   `json:"start_time"` // Epoch seconds
	URLsDiscovered int       `json:"urls_discovered"`
	startedAt      time.Time `json:"-"`
}

// NewCrawlStats records the wall-clock start of a run.
func NewCrawlStats(now time.Time) CrawlStats {
	return CrawlStats{
		StartTime: float64(now.UnixNano()) / float64(time.Second),
		startedAt: now,
	}
}

// Elapsed returns the duration since the run started, in seconds.
func (s *CrawlStats) Elapsed(now time.Time) float64 {
	return now.Sub(s.startedAt).Seconds()
}

// CrawlSummary is the terminal run record written to crawl_summary.json.
type CrawlSummary struct {
	Domain           string     `json:"domain"`
	StartURL         string     `json:"start_url"`
	CrawlStats       CrawlStats `json:"crawl_stats"`
	TotalURLsVisited []string   `json:"total_urls_visited"` // Visit order
	CrawlDuration    float64    `json:"crawl_duration"`     // Seconds
}

// PageMetadata holds metadata for a single saved page.
type PageMetadata struct {
	URL           string    `yaml:"url"`
	LocalFilePath string    `yaml:"local_file_path"` // Relative to the output dir
	Title         string    `yaml:"title,omitempty"`
	Depth         int       `yaml:"depth"`
	ProcessedAt   time.Time `yaml:"processed_at"`
	ContentHash   string    `yaml:"content_hash,omitempty"` // SHA-256 hex of the saved markdown
}

// CrawlMetadata holds all metadata for a single crawl run.
type CrawlMetadata struct {
	RunID           string         `yaml:"run_id"`
	Domain          string         `yaml:"domain"`
	StartURL        string         `yaml:"start_url"`
	CrawlStartTime  time.Time      `yaml:"crawl_start_time"`
	CrawlEndTime    time.Time      `yaml:"crawl_end_time"`
	TotalPagesSaved int            `yaml:"total_pages_saved"`
	Pages           []PageMetadata `yaml:"pages"`
}
