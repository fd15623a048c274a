package crawler

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"mdcrawl/pkg/extract"
	"mdcrawl/pkg/frontier"
	"mdcrawl/pkg/models"
	"mdcrawl/pkg/output"
	"mdcrawl/pkg/render"
	"mdcrawl/pkg/scope"
	"mdcrawl/pkg/utils"
)

// pool runs a fixed number of concurrent fetch workers against one shared
// frontier.
//
// Draining is deliberately not a bare queue-length check: a momentarily
// empty queue while peers are mid-fetch may refill once their results come
// back. A worker only exits when the queue is empty AND no worker holds
// in-flight work, tracked by the inflight counter under the pool mutex.
type pool struct {
	log        *logrus.Entry
	frontier   *frontier.Frontier
	renderer   render.Renderer
	extractor  *extract.Extractor
	rootDomain string

	maxPages    int
	concurrency int
	delay       time.Duration

	mu         sync.Mutex
	cond       *sync.Cond
	inflight   int
	dispatched int // Tasks handed to workers; the page budget gate
	stopped    bool

	results chan *models.PageResult
}

func newPool(log *logrus.Entry, f *frontier.Frontier, r render.Renderer, e *extract.Extractor,
	rootDomain string, maxPages, concurrency int, delay time.Duration) *pool {
	p := &pool{
		log:         log,
		frontier:    f,
		renderer:    r,
		extractor:   e,
		rootDomain:  rootDomain,
		maxPages:    maxPages,
		concurrency: concurrency,
		delay:       delay,
		results:     make(chan *models.PageResult, concurrency),
	}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// run starts the workers and returns the result stream. The channel is
// closed once every worker has exited.
func (p *pool) run(ctx context.Context) <-chan *models.PageResult {
	var wg sync.WaitGroup
	for i := 1; i <= p.concurrency; i++ {
		wg.Add(1)
		workerLog := p.log.WithField("worker_id", i)
		go func() {
			defer wg.Done()
			p.worker(ctx, workerLog)
		}()
	}

	// Wake any waiting worker when the run is cancelled.
	stop := context.AfterFunc(ctx, p.stop)
	go func() {
		wg.Wait()
		stop()
		close(p.results)
	}()
	return p.results
}

// stop prevents any further task dispatch. In-flight fetches complete and
// their results are still emitted.
func (p *pool) stop() {
	p.mu.Lock()
	p.stopped = true
	p.cond.Broadcast()
	p.mu.Unlock()
}

// next blocks until a task is available, the pool is drained, or dispatch is
// shut off (budget reached, stop requested, or context cancelled).
func (p *pool) next(ctx context.Context) (models.CrawlTask, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for {
		if p.stopped || ctx.Err() != nil || p.dispatched >= p.maxPages {
			return models.CrawlTask{}, false
		}
		if task, ok := p.frontier.Take(); ok {
			p.dispatched++
			p.inflight++
			return task, true
		}
		if p.inflight == 0 {
			// Queue empty and nobody fetching: the crawl is drained. Wake the
			// other waiters so they observe the same state and exit.
			p.cond.Broadcast()
			return models.CrawlTask{}, false
		}
		p.cond.Wait()
	}
}

// finish releases the caller's in-flight slot. Must be called after any
// frontier offers for the finished task, so the drain check cannot fire
// while this worker might still add work.
func (p *pool) finish() {
	p.mu.Lock()
	p.inflight--
	p.cond.Broadcast()
	p.mu.Unlock()
}

// budgetReached reports whether link admission should stop. Links found by
// in-flight fetches after the last task was dispatched would never be
// crawled, so keeping them out bounds queue growth near the end of a run.
func (p *pool) budgetReached() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopped || p.dispatched >= p.maxPages
}

// worker is the loop for one worker slot.
func (p *pool) worker(ctx context.Context, workerLog *logrus.Entry) {
	workerLog.Debug("Worker starting")
	defer workerLog.Debug("Worker finished")

	for {
		task, ok := p.next(ctx)
		if !ok {
			return
		}

		result := p.crawlPage(ctx, task, workerLog)
		if result.Failure == "" {
			p.offerLinks(result, task.Depth, workerLog)
		}
		p.finish()

		p.results <- result

		// Inter-request politeness delay, applied per worker before its NEXT
		// fetch, never before the first. Steady-state request rate is
		// therefore concurrency/delay across the pool.
		if p.delay > 0 {
			select {
			case <-time.After(p.delay):
			case <-ctx.Done():
				return
			}
		}
	}
}

// crawlPage renders one URL and runs extraction. Every failure is captured
// in the PageResult; nothing here ever stops the pool.
func (p *pool) crawlPage(ctx context.Context, task models.CrawlTask, workerLog *logrus.Entry) *models.PageResult {
	taskLog := workerLog.WithFields(logrus.Fields{"url": task.URL, "depth": task.Depth})
	taskLog.Info("Crawling page")
	start := time.Now()

	result := &models.PageResult{
		URL:       task.URL,
		Depth:     task.Depth,
		OutputKey: output.Key(task.URL),
	}
	fail := func(err error) *models.PageResult {
		result.Duration = time.Since(start)
		result.Failure = utils.CategorizeError(err)
		taskLog.WithFields(logrus.Fields{
			"category": result.Failure,
			"duration": result.Duration.String(),
		}).Warnf("Page failed: %v", err)
		return result
	}

	rendered, err := p.renderer.Render(ctx, task.URL)
	if err != nil {
		return fail(err)
	}
	result.StatusCode = rendered.StatusCode
	result.Title = rendered.Title

	if rendered.StatusCode >= 400 {
		return fail(fmt.Errorf("%w: status %d for '%s'", utils.ErrHTTPStatus, rendered.StatusCode, task.URL))
	}

	pageURL, err := url.Parse(task.URL)
	if err != nil {
		return fail(fmt.Errorf("%w: parsing task URL '%s': %w", utils.ErrExtraction, task.URL, err))
	}

	extracted, err := p.extractor.Extract(rendered.HTML, pageURL)
	if err != nil {
		return fail(err)
	}
	if result.Title == "" {
		result.Title = extracted.Title
	}
	result.Links = extracted.Links
	result.SPAShell = extracted.SPAShell
	if extracted.SPAShell {
		taskLog.Debug("Content region near-empty (SPA shell); keeping available text")
	}

	markdown, err := p.extractor.Markdown(extracted.ContentHTML)
	if err != nil {
		return fail(err)
	}
	if strings.TrimSpace(markdown) == "" {
		markdown = ""
	}
	result.Markdown = markdown
	result.Duration = time.Since(start)

	taskLog.WithFields(logrus.Fields{
		"status":   result.StatusCode,
		"links":    len(result.Links),
		"strategy": extracted.Strategy,
		"duration": result.Duration.String(),
	}).Info("Page crawled")
	return result
}

// offerLinks classifies the raw links from one page and admits the in-scope
// subset to the frontier, preserving extraction order. Malformed links are
// dropped silently; the frontier rejects anything already seen.
func (p *pool) offerLinks(result *models.PageResult, depth int, workerLog *logrus.Entry) {
	if len(result.Links) == 0 {
		return
	}
	base, err := url.Parse(result.URL)
	if err != nil {
		return
	}

	var inScope []string
	for _, href := range result.Links {
		if c := scope.Classify(href, base, p.rootDomain); c.Kind == scope.InScope {
			inScope = append(inScope, c.Canonical)
		}
	}
	if len(inScope) == 0 {
		return
	}

	if p.budgetReached() {
		workerLog.Debugf("Page budget reached, dropping %d in-scope links from %s", len(inScope), result.URL)
		return
	}

	added := p.frontier.Offer(inScope, depth+1)
	if added > 0 {
		workerLog.Debugf("Queued %d new links from %s", added, result.URL)
	}
}
