package render

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"mdcrawl/pkg/utils"
)

// Browser implements Renderer with chromedp and a single Chrome process.
// Each Render call runs in its own tab; a weighted semaphore bounds how many
// tabs are open at once so worker concurrency cannot exhaust the browser.
type Browser struct {
	cfg      Config
	log      *logrus.Entry
	sessions *semaphore.Weighted

	allocator   context.Context
	allocCancel context.CancelFunc

	// browserCtx holds the first tab, which keeps the Chrome process alive
	// for the lifetime of the run. Per-render tabs are children of it.
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// NewBrowser builds the allocator but does not launch Chrome; call Start.
func NewBrowser(cfg Config, log *logrus.Entry) *Browser {
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = 30 * time.Second
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = 500 * time.Millisecond
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("ignore-certificate-errors", true),
		chromedp.WindowSize(1920, 1080),
	)
	if cfg.Headless {
		opts = append(opts, chromedp.Flag("headless", "new"))
	} else {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	b := &Browser{
		cfg:         cfg,
		log:         log,
		allocator:   allocCtx,
		allocCancel: allocCancel,
	}
	if cfg.MaxSessions > 0 {
		b.sessions = semaphore.NewWeighted(int64(cfg.MaxSessions))
	}
	return b
}

// Start launches the Chrome process eagerly so a missing or broken browser
// surfaces as a fatal setup error before any fetch begins.
func (b *Browser) Start(ctx context.Context) error {
	b.browserCtx, b.browserCancel = chromedp.NewContext(b.allocator)
	go func() {
		// Tie the browser lifetime to the run context.
		<-ctx.Done()
		b.browserCancel()
	}()

	// Run with no actions forces the browser to launch.
	if err := chromedp.Run(b.browserCtx); err != nil {
		return fmt.Errorf("%w: launching browser: %w", utils.ErrSetup, err)
	}
	b.log.Debug("Browser process launched")
	return nil
}

// Close releases the allocator, terminating the Chrome process.
func (b *Browser) Close() {
	if b.browserCancel != nil {
		b.browserCancel()
	}
	b.allocCancel()
}

// Render navigates to url in a fresh tab, waits for the body plus the settle
// delay, and returns the rendered DOM with the document response status.
func (b *Browser) Render(ctx context.Context, url string) (*Result, error) {
	if err := b.acquire(ctx); err != nil {
		return nil, fmt.Errorf("%w: waiting for browser session: %w", utils.ErrRender, err)
	}
	defer b.release()

	tabCtx, tabCancel := chromedp.NewContext(b.browserCtx)
	defer tabCancel()

	tabCtx, cancel := context.WithTimeout(tabCtx, b.cfg.NavigationTimeout)
	defer cancel()

	// Abort the render if the run context is cancelled mid-navigation.
	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	meta := &documentMeta{}
	chromedp.ListenTarget(tabCtx, meta.captureEvent)

	var (
		html  string
		title string
	)
	actions := []chromedp.Action{
		chromedp.ActionFunc(func(ctx context.Context) error {
			if err := network.Enable().Do(ctx); err != nil {
				return fmt.Errorf("enable network domain: %w", err)
			}
			return emulation.SetUserAgentOverride(b.cfg.UserAgent).Do(ctx)
		}),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(b.cfg.SettleDelay),
		chromedp.Title(&title),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}
	if err := chromedp.Run(tabCtx, actions...); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", utils.ErrRender, url, err)
	}

	status := meta.status()
	if status == 0 {
		status = 200
	}
	return &Result{StatusCode: status, HTML: html, Title: title}, nil
}

func (b *Browser) acquire(ctx context.Context) error {
	if b.sessions == nil {
		return nil
	}
	return b.sessions.Acquire(ctx, 1)
}

func (b *Browser) release() {
	if b.sessions != nil {
		b.sessions.Release(1)
	}
}

// documentMeta captures the status of the main document response from CDP
// network events. Subresource responses are ignored.
type documentMeta struct {
	mu         sync.Mutex
	statusCode int
}

func (m *documentMeta) captureEvent(ev any) {
	resp, ok := ev.(*network.EventResponseReceived)
	if !ok || resp.Type != network.ResourceTypeDocument || resp.Response == nil {
		return
	}
	m.mu.Lock()
	m.statusCode = int(resp.Response.Status)
	m.mu.Unlock()
}

func (m *documentMeta) status() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusCode
}
