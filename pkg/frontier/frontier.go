// Package frontier owns the shared crawl state: the FIFO queue of pending
// URLs, the set of visited URLs, and the discovered-URL counter.
package frontier

import (
	"sync"

	"github.com/sirupsen/logrus"

	"mdcrawl/pkg/models"
)

// Frontier is the only state mutated by more than one worker. Every method
// is a single critical section under one mutex, so the membership
// check-and-insert is atomic per URL.
//
// Invariant: a URL is a member of at most one of {queued, visited} at any
// time, and once visited it is never re-queued. The queue preserves FIFO
// order: first discovered, first crawled.
type Frontier struct {
	mu         sync.Mutex
	queue      []models.CrawlTask
	queued     map[string]bool
	visited    map[string]bool
	discovered int
	log        *logrus.Entry
}

// New creates an empty Frontier.
func New(log *logrus.Entry) *Frontier {
	return &Frontier{
		queued:  make(map[string]bool),
		visited: make(map[string]bool),
		log:     log,
	}
}

// Seed inserts the start URL at depth 0 if it is not already known.
// Returns true if the URL was accepted.
func (f *Frontier) Seed(url string) bool {
	return f.Offer([]string{url}, 0) == 1
}

// Offer inserts each URL absent from both visited and queued, preserving the
// input order, and increments the discovered counter per successful
// insertion. Concurrent calls from different workers are serialized; within
// one call the queue admission order follows extraction order.
// Returns the number of URLs accepted.
func (f *Frontier) Offer(urls []string, depth int) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	accepted := 0
	for _, u := range urls {
		if u == "" || f.queued[u] || f.visited[u] {
			continue
		}
		f.queued[u] = true
		f.queue = append(f.queue, models.CrawlTask{URL: u, Depth: depth})
		f.discovered++
		accepted++
	}
	if accepted > 0 && f.log != nil {
		f.log.Debugf("Frontier accepted %d of %d offered URLs (depth %d)", accepted, len(urls), depth)
	}
	return accepted
}

// Take atomically moves the oldest queued URL to the visited set and returns
// it. The task is exclusive to the caller; the same URL is never returned
// twice. Returns ok=false when the queue is drained; callers must not treat
// that as end-of-crawl while other workers still hold in-flight tasks.
func (f *Frontier) Take() (models.CrawlTask, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.queue) == 0 {
		return models.CrawlTask{}, false
	}
	task := f.queue[0]
	f.queue = f.queue[1:]
	delete(f.queued, task.URL)
	f.visited[task.URL] = true
	return task, true
}

// Remaining returns a snapshot of the queue length.
func (f *Frontier) Remaining() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// Discovered returns the total number of unique URLs ever accepted
// (visited plus still queued), independent of the crawl budget.
func (f *Frontier) Discovered() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.discovered
}
