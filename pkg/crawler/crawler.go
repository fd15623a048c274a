// Package crawler wires the frontier, renderer, extractor, and output writer
// into one breadth-first crawl run and owns the run-lifetime aggregates.
package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"mdcrawl/pkg/config"
	"mdcrawl/pkg/extract"
	"mdcrawl/pkg/frontier"
	"mdcrawl/pkg/models"
	"mdcrawl/pkg/output"
	"mdcrawl/pkg/render"
	"mdcrawl/pkg/scope"
	"mdcrawl/pkg/utils"
)

// Crawler coordinates one crawl run. Workers fetch and extract; the
// coordinator goroutine alone consumes their results, updates statistics,
// and writes output, so the aggregates need no locking.
type Crawler struct {
	log      *logrus.Entry
	opts     *config.Options
	renderer render.Renderer

	rootDomain string
	startURL   string // Canonical form

	frontier  *frontier.Frontier
	extractor *extract.Extractor
	writer    *output.Writer
}

// New validates the start URL, derives the crawl scope, and prepares the
// output directory. The renderer must already be started.
func New(opts *config.Options, renderer render.Renderer, runID string, baseLog *logrus.Logger) (*Crawler, error) {
	rootDomain, err := scope.RootDomain(opts.Args.StartURL)
	if err != nil || rootDomain == "" {
		return nil, fmt.Errorf("%w: invalid start URL '%s': %v", utils.ErrBadOptions, opts.Args.StartURL, err)
	}

	c := scope.Classify(opts.Args.StartURL, nil, rootDomain)
	if c.Kind != scope.InScope {
		return nil, fmt.Errorf("%w: start URL '%s' is not crawlable", utils.ErrBadOptions, opts.Args.StartURL)
	}

	log := baseLog.WithFields(logrus.Fields{
		"domain": rootDomain,
		"run_id": runID,
	})

	writer, err := output.NewWriter(log, rootDomain, c.Canonical, runID, time.Now())
	if err != nil {
		return nil, err
	}

	return &Crawler{
		log:        log,
		opts:       opts,
		renderer:   renderer,
		rootDomain: rootDomain,
		startURL:   c.Canonical,
		frontier:   frontier.New(log),
		extractor:  extract.New(baseLog),
		writer:     writer,
	}, nil
}

// OutputDir returns the directory this run writes into.
func (c *Crawler) OutputDir() string {
	return c.writer.Dir()
}

// Run executes the crawl to completion, budget exhaustion, or cancellation.
// The summary is written in every case; a cancelled run produces a valid
// partial summary and Run returns ctx.Err().
func (c *Crawler) Run(ctx context.Context) (*models.CrawlSummary, error) {
	startedAt := time.Now()
	stats := models.NewCrawlStats(startedAt)

	c.log.WithFields(logrus.Fields{
		"start_url":  c.startURL,
		"max_pages":  c.opts.Args.MaxPages,
		"concurrent": c.opts.Concurrent,
		"delay":      c.opts.DelayDuration().String(),
	}).Info("Starting crawl")

	c.frontier.Seed(c.startURL)

	p := newPool(c.log, c.frontier, c.renderer, c.extractor,
		c.rootDomain, c.opts.Args.MaxPages, c.opts.Concurrent, c.opts.DelayDuration())

	var visited []string
	var failed int
	for result := range p.run(ctx) {
		stats.PagesCrawled++
		visited = append(visited, result.URL)

		switch {
		case result.Failure != "":
			failed++
		case result.Saved():
			if _, err := c.writer.SavePage(result, result.Depth, time.Now()); err != nil {
				c.log.WithField("url", result.URL).Errorf("Failed to save page: %v", err)
			} else {
				stats.PagesSaved++
			}
		default:
			c.log.WithField("url", result.URL).Debug("Page yielded no content, not saved")
		}

		c.log.Infof("Progress: %d/%d pages crawled, %d saved, %d queued",
			stats.PagesCrawled, c.opts.Args.MaxPages, stats.PagesSaved, c.frontier.Remaining())
	}

	stats.URLsDiscovered = c.frontier.Discovered()
	summary := &models.CrawlSummary{
		Domain:           c.rootDomain,
		StartURL:         c.startURL,
		CrawlStats:       stats,
		TotalURLsVisited: visited,
		CrawlDuration:    stats.Elapsed(time.Now()),
	}

	if err := c.writer.WriteSummary(summary); err != nil {
		c.log.Errorf("Failed to write crawl summary: %v", err)
	}
	if err := c.writer.Close(); err != nil {
		c.log.Errorf("Failed to finalize output: %v", err)
	}

	c.logCompletion(summary, failed, ctx.Err())
	return summary, ctx.Err()
}

func (c *Crawler) logCompletion(summary *models.CrawlSummary, failed int, cause error) {
	headline := "Crawl complete"
	if cause != nil {
		headline = "Crawl stopped early"
	}
	c.log.WithFields(logrus.Fields{
		"pages_crawled":   summary.CrawlStats.PagesCrawled,
		"pages_saved":     summary.CrawlStats.PagesSaved,
		"pages_failed":    failed,
		"urls_discovered": summary.CrawlStats.URLsDiscovered,
		"duration":        fmt.Sprintf("%.2fs", summary.CrawlDuration),
	}).Info(headline)
}
