package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const fixtureHTML = `<!DOCTYPE html>
<html>
<head>
  <title> Example Story </title>
  <meta name="author" content="Jane Reporter">
  <meta property="article:published_time" content="2026-02-10T09:00:00Z">
  <meta property="og:image" content="https://cdn.example.com/lead.jpg">
  <style>body { color: red; }</style>
</head>
<body>
  <nav><a href="https://example.com/home">Home</a></nav>
  <script>console.log("tracking");</script>
  <h2>First Section</h2>
  <p>Opening   paragraph with
  uneven whitespace.</p>
  <h2>Second Section</h2>
  <a href="/relative">relative link</a>
  <a href="https://example.com/a">a</a>
  <a href="https://example.com/b">b</a>
</body>
</html>`

func TestExtract(t *testing.T) {
	t.Parallel()

	page := NewExtractor().Extract(fixtureHTML)

	assert.Equal(t, "Example Story", page.Title)
	assert.Equal(t, "Jane Reporter", page.Author)
	assert.Equal(t, "2026-02-10T09:00:00Z", page.PublishedDate)
	assert.Equal(t, "https://cdn.example.com/lead.jpg", page.MainImage)

	assert.Equal(t, []string{"First Section", "Second Section"}, page.Meta.Headings)

	// Only absolute links count; the nav link is absolute too.
	assert.Equal(t, 3, page.Meta.LinksFound)
	assert.Len(t, page.Meta.SampleLinks, 3)

	assert.Contains(t, page.CleanText, "Opening paragraph with uneven whitespace.")
	assert.NotContains(t, page.CleanText, "tracking")
	assert.NotContains(t, page.CleanText, "color: red")
	assert.NotContains(t, page.CleanText, "Home")
}

func TestExtractTimeElementFallback(t *testing.T) {
	t.Parallel()

	page := NewExtractor().Extract(`<html><body><time datetime="2026-01-01">Jan 1</time></body></html>`)
	assert.Equal(t, "2026-01-01", page.PublishedDate)
}

func TestExtractEmptyInput(t *testing.T) {
	t.Parallel()

	page := NewExtractor().Extract("")
	assert.Empty(t, page.Title)
	assert.Empty(t, page.CleanText)
	assert.Zero(t, page.Meta.LinksFound)
}

func TestExtractCapsHeadings(t *testing.T) {
	t.Parallel()

	html := "<html><body>"
	for i := 0; i < 10; i++ {
		html += "<h2>Heading</h2>"
	}
	html += "</body></html>"

	page := NewExtractor().Extract(html)
	assert.Len(t, page.Meta.Headings, maxHeadings)
}
