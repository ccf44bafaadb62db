package ports

import (
	"context"
	"errors"
	"time"

	"NewsHarvester/internal/domain"
)

// ErrDuplicateSource is returned by SourceRepository.Create when another
// writer inserted the same domain first. Callers resolve the race by
// re-reading instead of failing.
var ErrDuplicateSource = errors.New("source domain already exists")

// ItemRepository persists scraped items keyed by their URL.
type ItemRepository interface {
	// Upsert writes the extracted fields for the item's URL, resetting the
	// pipeline status to pending and clearing any previous error. It returns
	// the item's identity, whether the row was inserted or overwritten.
	Upsert(ctx context.Context, item domain.ScrapedItem) (int64, error)
	// GetByID returns nil without error when the item does not exist.
	GetByID(ctx context.Context, id int64) (*domain.ScrapedItem, error)
	SetStatus(ctx context.Context, id int64, status domain.PipelineStatus, errorDetail string) error
	// SaveAnalysis writes the AI fields and marks the item completed in a
	// single transaction.
	SaveAnalysis(ctx context.Context, id int64, analysis domain.Analysis) error
	// List returns items newest-first without their clean text.
	List(ctx context.Context, skip, limit int) ([]domain.ScrapedItem, error)
}

// SourceRepository tracks distinct crawled domains.
type SourceRepository interface {
	// GetByDomain returns nil without error when the domain is unknown.
	GetByDomain(ctx context.Context, dom string) (*domain.Source, error)
	// Create inserts a new source row, returning ErrDuplicateSource when the
	// domain's uniqueness constraint fires.
	Create(ctx context.Context, dom string) (*domain.Source, error)
	TouchLastCrawled(ctx context.Context, id int64, at time.Time) error
}

// JobRepository persists recurring crawl targets.
type JobRepository interface {
	Create(ctx context.Context, job domain.ScheduledJob) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.ScheduledJob, error)
	List(ctx context.Context) ([]domain.ScheduledJob, error)
	ListActive(ctx context.Context) ([]domain.ScheduledJob, error)
	Delete(ctx context.Context, id int64) error
	StampTriggered(ctx context.Context, id int64, at time.Time) error
	UpdateInterval(ctx context.Context, id int64, seconds int) error
}

// AuditLog is an append-only record of pipeline outcomes.
type AuditLog interface {
	Append(ctx context.Context, entry domain.AuditEntry) error
}

// Analyzer produces AI-derived metadata for raw text. A (nil, nil) return
// means the backends produced no usable result; callers treat that as an
// inference failure, not an infrastructure error.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (*domain.Analysis, error)
}

// ComplianceGate answers whether a URL may be fetched. When the robots
// policy cannot be retrieved or parsed the gate fails open: allowed is true
// and checkErr carries the failure for the caller to log.
type ComplianceGate interface {
	Allowed(ctx context.Context, rawURL string) (allowed bool, checkErr error)
}

// PageFetcher retrieves the raw HTML of a page.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

// Extractor pulls structured fields out of fetched HTML.
type Extractor interface {
	Extract(html string) domain.ExtractedPage
}

// IngestTask is the message dispatched onto the fast queue. Chain marks
// whether a successful ingest should hand its item off to enrichment.
type IngestTask struct {
	URL           string `json:"url"`
	JobID         *int64 `json:"job_id,omitempty"`
	CorrelationID string `json:"correlation_id"`
	Chain         bool   `json:"chain"`
}

// EnrichTask is the message dispatched onto the slow queue. ItemID is the
// hand-off from the paired ingest.
type EnrichTask struct {
	ItemID        int64  `json:"item_id"`
	JobID         *int64 `json:"job_id,omitempty"`
	CorrelationID string `json:"correlation_id"`
}

// Dispatcher publishes stage tasks onto the queue broker.
type Dispatcher interface {
	EnqueueIngest(ctx context.Context, task IngestTask) error
	EnqueueEnrich(ctx context.Context, task EnrichTask) error
}

// IntervalAdjuster is the feedback edge from the pipeline into scheduling.
// AdjustFromUrgency is called after a successful enrichment produced an
// urgency; AdjustNoContent is called on the blocked/failed paths where no
// fresh content signal exists.
type IntervalAdjuster interface {
	AdjustFromUrgency(ctx context.Context, jobID int64, urgency int) error
	AdjustNoContent(ctx context.Context, jobID int64) error
}
