// Package render fetches pages through a real browser so JavaScript-generated
// content is present in the HTML handed to extraction.
package render

import (
	"context"
	"time"
)

// Result is what the browser saw for one URL: the document response status,
// the DOM serialized after scripts ran and the page settled, and the title.
type Result struct {
	StatusCode int
	HTML       string
	Title      string
}

// Renderer is the external rendering capability consumed by the worker pool.
// It owns JavaScript execution, network-level fetching, and DOM waiting
// policy. Render must be safe for concurrent use; no two in-flight calls
// share a browser session.
type Renderer interface {
	// Render navigates to url and returns the rendered document. Navigation
	// errors, timeouts, and cancellation are returned as errors wrapping
	// utils.ErrRender; a non-2xx status with a body is NOT an error.
	Render(ctx context.Context, url string) (*Result, error)
	// Close releases all browser resources. Safe to call after a failed Start.
	Close()
}

// Config controls the browser-backed renderer.
type Config struct {
	Headless          bool          // false shows the browser window (--gui)
	MaxSessions       int           // Cap on concurrent tabs; 0 means unlimited
	UserAgent         string        // Override for the browser default; empty keeps it
	NavigationTimeout time.Duration // Per-render hard deadline
	SettleDelay       time.Duration // Extra wait after body-ready for dynamic content
}

// DefaultUserAgent mirrors a current desktop Chrome so rendered sites serve
// their normal markup.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
