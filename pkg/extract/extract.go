// Package extract isolates the main-content region of a rendered page,
// strips boilerplate, and converts the surviving fragment to markdown.
package extract

import (
	"fmt"
	"net/url"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/sirupsen/logrus"

	"mdcrawl/pkg/utils"
)

// Boilerplate regions removed before any content heuristic runs, so text
// density scoring is not skewed by navigation chrome.
var unwantedSelectors = []string{
	"nav", "header", "footer", "aside",
	".navigation", ".nav", ".menu", ".sidebar",
	".advertisement", ".ads", ".ad", ".promo",
	".social", ".share", ".comments", ".comment",
	".popup", ".modal", ".overlay",
	"script", "style", "noscript",
	`[role="navigation"]`, `[role="banner"]`, `[role="contentinfo"]`,
}

// Semantic containers tried first, in order. The first selector with a match
// wins.
var semanticSelectors = []string{
	"main", "article", `[role="main"]`,
	".main", ".content", ".post", ".entry",
	"#main", "#content", "#post", "#article",
}

// minContentChars is the text length below which an extracted region is
// flagged as an SPA shell. The page is still kept with whatever text it has.
const minContentChars = 150

// Result is the outcome of extracting one rendered page.
type Result struct {
	Title       string
	ContentHTML string   // Outer HTML of the winning content region
	Links       []string // Raw anchor hrefs in document order, from the unpruned page
	Strategy    string   // Name of the heuristic that produced ContentHTML
	SPAShell    bool     // Content text is below minContentChars
}

// Extractor applies a fixed, ordered list of content heuristics:
// semantic container, readability, document body. The ordering is a policy
// decision baked in here, not chosen per page.
type Extractor struct {
	log *logrus.Logger
}

// New creates an Extractor.
func New(log *logrus.Logger) *Extractor {
	return &Extractor{log: log}
}

// Extract parses renderedHTML and returns the page title, the main-content
// fragment, and every anchor link in document order. pageURL is the base for
// readability extraction. Returns ErrExtraction when there is no parseable
// HTML at all; an SPA shell is NOT a failure.
func (e *Extractor) Extract(renderedHTML string, pageURL *url.URL) (*Result, error) {
	if strings.TrimSpace(renderedHTML) == "" {
		return nil, fmt.Errorf("%w: empty document", utils.ErrExtraction)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(renderedHTML))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing HTML: %w", utils.ErrExtraction, err)
	}

	result := &Result{
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
	}

	// Links come from the original document, before boilerplate removal, so
	// navigation links still feed the frontier. Document order matters: it is
	// what makes the frontier's FIFO traversal deterministic.
	doc.Find("a[href], area[href]").Each(func(_ int, sel *goquery.Selection) {
		if href, ok := sel.Attr("href"); ok && strings.TrimSpace(href) != "" {
			result.Links = append(result.Links, strings.TrimSpace(href))
		}
	})

	// Prune boilerplate in place; the link pass above is already done.
	for _, selector := range unwantedSelectors {
		doc.Find(selector).Remove()
	}

	content, strategy := e.selectContent(doc, pageURL)
	result.Strategy = strategy

	contentHTML, htmlErr := goquery.OuterHtml(content)
	if htmlErr != nil {
		return nil, fmt.Errorf("%w: serializing content region: %w", utils.ErrExtraction, htmlErr)
	}
	result.ContentHTML = contentHTML

	if len(strings.TrimSpace(content.Text())) < minContentChars {
		result.SPAShell = true
	}

	return result, nil
}

// selectContent evaluates the heuristics in order and takes the first
// present result.
func (e *Extractor) selectContent(doc *goquery.Document, pageURL *url.URL) (*goquery.Selection, string) {
	if sel := e.semanticContainer(doc); sel != nil {
		return sel, "semantic"
	}
	if sel := e.readabilityContent(doc, pageURL); sel != nil {
		return sel, "readability"
	}
	return e.bodyFallback(doc), "body"
}

// semanticContainer returns the first matching semantic content container.
func (e *Extractor) semanticContainer(doc *goquery.Document) *goquery.Selection {
	for _, selector := range semanticSelectors {
		if sel := doc.Find(selector); sel.Length() > 0 {
			e.log.Debugf("Content matched semantic selector '%s'", selector)
			return sel.First()
		}
	}
	return nil
}

// readabilityContent runs Mozilla's readability algorithm over the pruned
// document, which scores candidate blocks by text density. Absent when the
// algorithm finds nothing usable.
func (e *Extractor) readabilityContent(doc *goquery.Document, pageURL *url.URL) *goquery.Selection {
	html, err := doc.Html()
	if err != nil {
		return nil
	}
	article, err := readability.FromReader(strings.NewReader(html), pageURL)
	if err != nil || strings.TrimSpace(article.Content) == "" {
		return nil
	}
	contentDoc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
	if err != nil {
		return nil
	}
	e.log.Debug("Content selected by readability")
	body := contentDoc.Find("body")
	if body.Children().Length() > 0 {
		return body.Children().First().Parent()
	}
	return body
}

// bodyFallback is the named last-resort strategy: the document body, or the
// whole selection if there is no body element.
func (e *Extractor) bodyFallback(doc *goquery.Document) *goquery.Selection {
	body := doc.Find("body")
	if body.Length() > 0 {
		return body.First()
	}
	return doc.Selection
}

// Markdown converts an extracted content fragment to markdown.
func (e *Extractor) Markdown(contentHTML string) (string, error) {
	converter := md.NewConverter("", true, nil)
	markdown, err := converter.ConvertString(contentHTML)
	if err != nil {
		return "", fmt.Errorf("%w: markdown conversion: %w", utils.ErrExtraction, err)
	}
	return markdown, nil
}
