package extract

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdcrawl/pkg/utils"
)

func testExtractor() *Extractor {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return New(log)
}

func testURL(t *testing.T) *url.URL {
	t.Helper()
	u, err := url.Parse("https://example.com/docs/page")
	require.NoError(t, err)
	return u
}

// filler is long enough to clear the SPA-shell threshold.
var filler = strings.Repeat("Relevant documentation text. ", 10)

func TestExtract_SemanticContainerWins(t *testing.T) {
	html := fmt.Sprintf(`<html><head><title>Guide</title></head><body>
		<nav><a href="/home">Home</a></nav>
		<main><h1>Guide</h1><p>%s</p><a href="/next">Next</a></main>
		<footer>copyright</footer>
	</body></html>`, filler)

	result, err := testExtractor().Extract(html, testURL(t))
	require.NoError(t, err)

	assert.Equal(t, "Guide", result.Title)
	assert.Equal(t, "semantic", result.Strategy)
	assert.False(t, result.SPAShell)
	assert.Contains(t, result.ContentHTML, "<h1>Guide</h1>")
	assert.NotContains(t, result.ContentHTML, "copyright")
}

func TestExtract_LinksCollectedBeforePruning(t *testing.T) {
	html := fmt.Sprintf(`<html><body>
		<nav><a href="/nav-link">Nav</a></nav>
		<main><p>%s</p><a href="/content-link">More</a></main>
		<footer><a href="/footer-link">About</a></footer>
	</body></html>`, filler)

	result, err := testExtractor().Extract(html, testURL(t))
	require.NoError(t, err)

	// Boilerplate regions are pruned from the content, but their links still
	// feed the frontier, in document order.
	assert.Equal(t, []string{"/nav-link", "/content-link", "/footer-link"}, result.Links)
	assert.NotContains(t, result.ContentHTML, "footer-link")
}

func TestExtract_IDContentSelector(t *testing.T) {
	html := fmt.Sprintf(`<html><body>
		<div id="content"><p>%s</p></div>
		<div>unrelated sidebar text</div>
	</body></html>`, filler)

	result, err := testExtractor().Extract(html, testURL(t))
	require.NoError(t, err)

	assert.Equal(t, "semantic", result.Strategy)
	assert.NotContains(t, result.ContentHTML, "unrelated sidebar")
}

func TestExtract_FallbackWithoutSemanticContainer(t *testing.T) {
	html := fmt.Sprintf(`<html><body><div class="stuff"><p>%s</p></div></body></html>`, filler)

	result, err := testExtractor().Extract(html, testURL(t))
	require.NoError(t, err)

	assert.NotEqual(t, "semantic", result.Strategy)
	assert.Contains(t, result.ContentHTML, "Relevant documentation text.")
}

func TestExtract_SPAShellFlagged(t *testing.T) {
	html := `<html><head><title>App</title></head><body><div id="root"></div></body></html>`

	result, err := testExtractor().Extract(html, testURL(t))
	require.NoError(t, err, "an SPA shell is not an extraction failure")

	assert.True(t, result.SPAShell)
}

func TestExtract_EmptyDocument(t *testing.T) {
	_, err := testExtractor().Extract("   ", testURL(t))

	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrExtraction)
}

func TestExtract_SkipsEmptyHrefs(t *testing.T) {
	html := fmt.Sprintf(`<html><body><main><p>%s</p>
		<a href="">empty</a><a href="   ">blank</a><a href="/real">real</a>
	</main></body></html>`, filler)

	result, err := testExtractor().Extract(html, testURL(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"/real"}, result.Links)
}

func TestMarkdown(t *testing.T) {
	markdown, err := testExtractor().Markdown(`<main><h1>Title</h1><p>Body text with <strong>bold</strong>.</p></main>`)
	require.NoError(t, err)

	assert.Contains(t, markdown, "# Title")
	assert.Contains(t, markdown, "**bold**")
}
