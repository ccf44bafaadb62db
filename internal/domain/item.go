package domain

import "time"

// ScrapedItem is the persisted result of one crawl, keyed by URL.
// Re-ingesting the same URL overwrites the extracted fields instead of
// creating a second row.
type ScrapedItem struct {
	ID            int64
	URL           string
	SourceID      int64
	Title         string
	Author        string
	PublishedDate string
	MainImage     string
	CleanText     string
	Summary       string
	Tags          []string
	Category      string
	Urgency       int
	Status        PipelineStatus
	ErrorDetail   string
	Metadata      ExtractionMeta
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ExtractionMeta is the raw extraction blob stored alongside the item.
type ExtractionMeta struct {
	Headings    []string `json:"headings,omitempty"`
	LinksFound  int      `json:"links_found"`
	SampleLinks []string `json:"sample_links,omitempty"`
}

// ExtractedPage holds the structured fields pulled out of fetched HTML
// before they are persisted onto a ScrapedItem.
type ExtractedPage struct {
	Title         string
	Author        string
	PublishedDate string
	MainImage     string
	CleanText     string
	Meta          ExtractionMeta
}

// Source tracks one distinct domain and when it was last crawled.
type Source struct {
	ID            int64
	Domain        string
	LastCrawledAt time.Time
}
