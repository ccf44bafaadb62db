// Package extractor pulls structured fields out of fetched HTML. The
// heuristics are deliberately generic: title and meta tags, h2 headings,
// absolute links, and whitespace-collapsed body text.
package extractor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"NewsHarvester/internal/domain"
	"NewsHarvester/internal/ports"
)

const (
	maxHeadings    = 5
	maxSampleLinks = 5
)

var whitespaceExpr = regexp.MustCompile(`\s+`)

// Extractor parses HTML with goquery.
type Extractor struct{}

var _ ports.Extractor = (*Extractor)(nil)

// NewExtractor returns a stateless extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract never fails: unparseable input yields a page with empty fields so
// the pipeline can still persist the attempt.
func (e *Extractor) Extract(html string) domain.ExtractedPage {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return domain.ExtractedPage{}
	}

	page := domain.ExtractedPage{
		Title:         strings.TrimSpace(doc.Find("title").First().Text()),
		Author:        metaContent(doc, `meta[name="author"]`),
		PublishedDate: publishedDate(doc),
		MainImage:     metaContent(doc, `meta[property="og:image"]`),
	}

	doc.Find("h2").Each(func(_ int, sel *goquery.Selection) {
		if len(page.Meta.Headings) >= maxHeadings {
			return
		}
		if text := strings.TrimSpace(sel.Text()); text != "" {
			page.Meta.Headings = append(page.Meta.Headings, text)
		}
	})

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if !strings.HasPrefix(href, "http") {
			return
		}
		page.Meta.LinksFound++
		if len(page.Meta.SampleLinks) < maxSampleLinks {
			page.Meta.SampleLinks = append(page.Meta.SampleLinks, href)
		}
	})

	page.CleanText = cleanText(doc)

	return page
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}

func publishedDate(doc *goquery.Document) string {
	if v := metaContent(doc, `meta[property="article:published_time"]`); v != "" {
		return v
	}
	if v, ok := doc.Find("time[datetime]").First().Attr("datetime"); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func cleanText(doc *goquery.Document) string {
	body := doc.Find("body").Clone()
	body.Find("script, style, nav, noscript").Remove()
	return whitespaceExpr.ReplaceAllString(strings.TrimSpace(body.Text()), " ")
}
