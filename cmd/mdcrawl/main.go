package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	goflags "github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"

	"mdcrawl/pkg/config"
	"mdcrawl/pkg/crawler"
	"mdcrawl/pkg/render"
)

func main() {
	var opts config.Options
	parser := goflags.NewParser(&opts, goflags.Default)
	parser.Usage = "[OPTIONS] start_url max_pages"

	if _, err := parser.Parse(); err != nil {
		var flagsErr *goflags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == goflags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	log := setupLogger(opts.LogLevel)

	if err := opts.Validate(); err != nil {
		log.Fatalf("Invalid options: %v", err)
	}

	runID := uuid.NewString()
	log.Infof("Starting run %s", runID)

	// ===========================================================
	// == Global Context & Signal Handling ==
	// ===========================================================
	crawlCtx, cancelCrawl := context.WithCancel(context.Background())
	defer cancelCrawl()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		sig := <-sigChan
		log.Warnf("Received signal: %v. Initiating graceful shutdown...", sig)
		cancelCrawl()

		select {
		case sig = <-sigChan:
			log.Warnf("Received second signal: %v. Forcing exit.", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			log.Warn("Graceful shutdown period exceeded after signal. Forcing exit.")
			os.Exit(1)
		}
	}()

	// ===========================================================
	// == Initialize Components ==
	// ===========================================================
	log.Info("Launching browser...")
	browser := render.NewBrowser(render.Config{
		Headless:    !opts.GUI,
		MaxSessions: opts.Concurrent,
	}, log.WithField("component", "render"))
	defer browser.Close()

	if err := browser.Start(crawlCtx); err != nil {
		log.Fatalf("Failed to launch browser: %v", err)
	}

	crawl, err := crawler.New(&opts, browser, runID, log)
	if err != nil {
		log.Fatalf("Failed to initialize crawler: %v", err)
	}
	log.Infof("Output directory: %s", crawl.OutputDir())

	// ===========================================================
	// == Run ==
	// ===========================================================
	_, err = crawl.Run(crawlCtx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn("Crawl cancelled gracefully.")
			os.Exit(0)
		}
		log.Errorf("Crawl finished with error: %v", err)
		os.Exit(1)
	}

	log.Info("Crawl completed successfully.")
}

// setupLogger creates a configured logrus.Logger with the given log level.
func setupLogger(logLevelStr string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05.000"})
	log.SetLevel(logrus.InfoLevel)

	level, err := logrus.ParseLevel(logLevelStr)
	if err != nil {
		log.Warnf("Invalid log level '%s', using default 'info'. Error: %v", logLevelStr, err)
	} else {
		log.SetLevel(level)
	}
	return log
}
