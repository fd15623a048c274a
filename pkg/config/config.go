// Package config defines the command-line surface and validates it into a
// ready-to-run crawl configuration.
package config

import (
	"fmt"
	"strings"
	"time"

	"mdcrawl/pkg/utils"
)

const (
	// MaxConcurrency bounds the worker pool; a single local Chrome process
	// degrades badly past this many simultaneous tabs.
	MaxConcurrency = 10

	DefaultConcurrency = 3
	DefaultDelay       = 1.0 // Seconds
)

// Options holds every knob for one crawl run, populated by go-flags.
type Options struct {
	Concurrent int     `short:"c" long:"concurrent" default:"3" description:"Number of concurrent fetch workers (1-10)"`
	Delay      float64 `short:"d" long:"delay" default:"1" description:"Per-worker delay between requests, in seconds"`
	GUI        bool    `long:"gui" description:"Show the browser window instead of running headless"`
	LogLevel   string  `long:"loglevel" default:"info" choice:"debug" choice:"info" choice:"warn" choice:"error" description:"Log verbosity"`

	Args struct {
		StartURL string `positional-arg-name:"start_url" description:"URL to start crawling from"`
		MaxPages int    `positional-arg-name:"max_pages" description:"Maximum number of pages to crawl"`
	} `positional-args:"yes" required:"yes"`
}

// Validate normalizes the options in place and rejects unusable values.
// A start URL without a scheme is assumed to be https.
func (o *Options) Validate() error {
	o.Args.StartURL = strings.TrimSpace(o.Args.StartURL)
	if o.Args.StartURL == "" {
		return fmt.Errorf("%w: start URL must not be empty", utils.ErrBadOptions)
	}
	if !strings.HasPrefix(o.Args.StartURL, "http://") && !strings.HasPrefix(o.Args.StartURL, "https://") {
		o.Args.StartURL = "https://" + o.Args.StartURL
	}

	if o.Args.MaxPages <= 0 {
		return fmt.Errorf("%w: max_pages must be positive, got %d", utils.ErrBadOptions, o.Args.MaxPages)
	}
	if o.Concurrent < 1 || o.Concurrent > MaxConcurrency {
		return fmt.Errorf("%w: concurrent workers must be between 1 and %d, got %d",
			utils.ErrBadOptions, MaxConcurrency, o.Concurrent)
	}
	if o.Delay < 0 {
		return fmt.Errorf("%w: delay must not be negative, got %g", utils.ErrBadOptions, o.Delay)
	}
	return nil
}

// DelayDuration returns the configured inter-request delay.
func (o *Options) DelayDuration() time.Duration {
	return time.Duration(o.Delay * float64(time.Second))
}
