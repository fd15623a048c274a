// Package output owns everything written to disk: per-page markdown
// documents, the URL-to-file mapping, the run metadata, and the terminal
// crawl summary.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"mdcrawl/pkg/models"
	"mdcrawl/pkg/utils"
)

const (
	summaryFilename  = "crawl_summary.json"
	mappingFilename  = "url_to_file_map.tsv"
	metadataFilename = "crawl_metadata.yaml"
	crawledTimeFmt   = "2006-01-02 15:04:05"
)

// Key derives the output file name for a URL. The scheme and "://" are
// stripped, every character outside [A-Za-z0-9_.-] becomes an underscore,
// the result is truncated to 100 bytes, trailing underscores are removed,
// and ".md" is appended. The root path therefore maps to the bare domain
// name file. The mapping is deterministic: the same URL always yields the
// same name, within a run and across runs. Two URLs can collide on one
// name; the later write overwrites the earlier one by design.
func Key(pageURL string) string {
	trimmed := strings.TrimPrefix(pageURL, "https://")
	trimmed = strings.TrimPrefix(trimmed, "http://")
	return utils.SanitizeFilename(trimmed) + ".md"
}

// DirFor returns the run output directory for a domain:
// "crawled_<domain with dots replaced by underscores>".
func DirFor(domain string) string {
	return "crawled_" + strings.ReplaceAll(domain, ".", "_")
}

// Writer persists crawl output. Page writes arrive only from the
// coordinator goroutine, but the file handle and metadata slice are still
// guarded so the writer does not depend on that.
type Writer struct {
	log      *logrus.Entry
	dir      string
	runID    string
	domain   string
	startURL string

	mappingFile *os.File
	mappingMu   sync.Mutex

	pages          []models.PageMetadata
	pagesMu        sync.Mutex
	crawlStartTime time.Time
}

// NewWriter creates the output directory and opens the mapping file.
func NewWriter(log *logrus.Entry, domain, startURL, runID string, startTime time.Time) (*Writer, error) {
	dir := DirFor(domain)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: creating output dir '%s': %w", utils.ErrFilesystem, dir, err)
	}

	w := &Writer{
		log:            log,
		dir:            dir,
		runID:          runID,
		domain:         domain,
		startURL:       startURL,
		crawlStartTime: startTime,
	}

	mappingPath := filepath.Join(dir, mappingFilename)
	mappingFile, err := os.OpenFile(mappingPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		log.Errorf("Failed to open mapping file '%s': %v. Mapping output disabled.", mappingPath, err)
	} else {
		w.mappingFile = mappingFile
	}
	return w, nil
}

// Dir returns the output directory path.
func (w *Writer) Dir() string {
	return w.dir
}

// SavePage writes one page document:
//
//	# <title>
//
//	**URL:** <url>
//	**Crawled:** <YYYY-MM-DD HH:MM:SS local>
//
//	---
//
//	<markdown>
//
// and records the mapping and metadata entries. Returns the relative file
// path written.
func (w *Writer) SavePage(res *models.PageResult, depth int, now time.Time) (string, error) {
	title := res.Title
	if title == "" {
		title = "Untitled Page"
	}

	document := fmt.Sprintf("# %s\n\n**URL:** %s  \n**Crawled:** %s\n\n---\n\n%s\n",
		title, res.URL, now.Format(crawledTimeFmt), res.Markdown)

	path := filepath.Join(w.dir, res.OutputKey)
	if err := os.WriteFile(path, []byte(document), 0644); err != nil {
		return "", fmt.Errorf("%w: saving '%s': %w", utils.ErrFilesystem, path, err)
	}

	w.writeMapping(res.URL, res.OutputKey)
	w.recordMetadata(res, title, depth, now, document)
	return path, nil
}

// writeMapping appends one URL→file line to the TSV mapping file.
func (w *Writer) writeMapping(pageURL, key string) {
	w.mappingMu.Lock()
	defer w.mappingMu.Unlock()

	if w.mappingFile == nil {
		return
	}
	if _, err := fmt.Fprintf(w.mappingFile, "%s\t%s\n", pageURL, key); err != nil {
		w.log.Errorf("Failed to write to mapping file: %v", err)
	}
}

func (w *Writer) recordMetadata(res *models.PageResult, title string, depth int, now time.Time, document string) {
	meta := models.PageMetadata{
		URL:           res.URL,
		LocalFilePath: res.OutputKey,
		Title:         title,
		Depth:         depth,
		ProcessedAt:   now,
		ContentHash:   utils.CalculateStringSHA256(document),
	}
	w.pagesMu.Lock()
	w.pages = append(w.pages, meta)
	w.pagesMu.Unlock()
}

// WriteSummary writes the structured run record to crawl_summary.json.
func (w *Writer) WriteSummary(summary *models.CrawlSummary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling crawl summary: %w", err)
	}
	path := filepath.Join(w.dir, summaryFilename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("%w: writing '%s': %w", utils.ErrFilesystem, path, err)
	}
	w.log.Infof("Wrote crawl summary: %s", path)
	return nil
}

// Close closes the mapping file and writes the YAML run metadata.
func (w *Writer) Close() error {
	w.mappingMu.Lock()
	if w.mappingFile != nil {
		if err := w.mappingFile.Sync(); err != nil {
			w.log.Errorf("Error syncing mapping file: %v", err)
		}
		if err := w.mappingFile.Close(); err != nil {
			w.log.Errorf("Error closing mapping file: %v", err)
		}
		w.mappingFile = nil
	}
	w.mappingMu.Unlock()

	return w.writeMetadataYAML()
}

// writeMetadataYAML writes all collected page metadata plus the run header.
func (w *Writer) writeMetadataYAML() error {
	w.pagesMu.Lock()
	pages := make([]models.PageMetadata, len(w.pages))
	copy(pages, w.pages)
	w.pagesMu.Unlock()

	metadata := models.CrawlMetadata{
		RunID:           w.runID,
		Domain:          w.domain,
		StartURL:        w.startURL,
		CrawlStartTime:  w.crawlStartTime,
		CrawlEndTime:    time.Now(),
		TotalPagesSaved: len(pages),
		Pages:           pages,
	}

	data, err := yaml.Marshal(&metadata)
	if err != nil {
		return fmt.Errorf("marshaling crawl metadata: %w", err)
	}
	path := filepath.Join(w.dir, metadataFilename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("%w: writing '%s': %w", utils.ErrFilesystem, path, err)
	}
	w.log.Infof("Wrote crawl metadata (%d pages): %s", len(pages), path)
	return nil
}
