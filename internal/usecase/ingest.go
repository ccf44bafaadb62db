package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"NewsHarvester/internal/domain"
	"NewsHarvester/internal/metrics"
	"NewsHarvester/internal/ports"
)

// IngestOutcome classifies the result of one ingest invocation.
type IngestOutcome string

const (
	IngestScraped     IngestOutcome = "scraped"
	IngestBlocked     IngestOutcome = "blocked"
	IngestFetchFailed IngestOutcome = "fetch_failed"
)

// IngestResult carries the outcome and, on success, the identity of the
// upserted item that a chained enrichment acts on.
type IngestResult struct {
	Outcome IngestOutcome
	ItemID  int64
}

// IngestDeps wires the driven adapters into the ingest stage.
type IngestDeps struct {
	Sources   ports.SourceRepository
	Items     ports.ItemRepository
	Gate      ports.ComplianceGate
	Fetcher   ports.PageFetcher
	Extractor ports.Extractor
	Audit     ports.AuditLog
	Logger    *slog.Logger
}

// Ingest fetches a URL, extracts structured fields, and persists them with
// the pipeline status reset to pending.
type Ingest struct {
	sources   ports.SourceRepository
	items     ports.ItemRepository
	gate      ports.ComplianceGate
	fetcher   ports.PageFetcher
	extractor ports.Extractor
	audit     ports.AuditLog
	logger    *slog.Logger
	now       func() time.Time
}

// NewIngest constructs the ingest stage.
func NewIngest(deps IngestDeps) *Ingest {
	return &Ingest{
		sources:   deps.Sources,
		items:     deps.Items,
		gate:      deps.Gate,
		fetcher:   deps.Fetcher,
		extractor: deps.Extractor,
		audit:     deps.Audit,
		logger:    deps.Logger,
		now:       time.Now,
	}
}

// Run executes the ingest steps for one task. Blocked and FetchFailed are
// terminal outcomes for this invocation, not errors; an error return means
// an infrastructure failure the worker should surface.
func (s *Ingest) Run(ctx context.Context, task ports.IngestTask) (IngestResult, error) {
	started := s.now()
	defer func() {
		metrics.StageDuration.WithLabelValues("ingest").Observe(s.now().Sub(started).Seconds())
	}()

	parsed, err := url.Parse(task.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return IngestResult{}, fmt.Errorf("invalid url %q", task.URL)
	}

	source, err := s.resolveSource(ctx, parsed.Hostname())
	if err != nil {
		return IngestResult{}, fmt.Errorf("resolve source %s: %w", parsed.Hostname(), err)
	}

	// The source is stamped before the gate check so the domain's crawl
	// history reflects every attempt, blocked ones included.
	if err := s.sources.TouchLastCrawled(ctx, source.ID, s.now().UTC()); err != nil {
		return IngestResult{}, fmt.Errorf("touch source %d: %w", source.ID, err)
	}

	allowed, checkErr := s.gate.Allowed(ctx, task.URL)
	if checkErr != nil {
		s.logger.Warn("robots check failed, proceeding", "url", task.URL, "error", checkErr)
	}
	if !allowed {
		metrics.IngestOutcomes.WithLabelValues(string(IngestBlocked)).Inc()
		s.record(ctx, domain.AuditWarn, task, "blocked by robots.txt")
		return IngestResult{Outcome: IngestBlocked}, nil
	}

	html, err := s.fetcher.Fetch(ctx, task.URL)
	if err != nil {
		metrics.IngestOutcomes.WithLabelValues(string(IngestFetchFailed)).Inc()
		s.record(ctx, domain.AuditError, task, fmt.Sprintf("fetch failed: %v", err))
		return IngestResult{Outcome: IngestFetchFailed}, nil
	}

	page := s.extractor.Extract(html)

	itemID, err := s.items.Upsert(ctx, domain.ScrapedItem{
		URL:           task.URL,
		SourceID:      source.ID,
		Title:         page.Title,
		Author:        page.Author,
		PublishedDate: page.PublishedDate,
		MainImage:     page.MainImage,
		CleanText:     page.CleanText,
		Metadata:      page.Meta,
		Status:        domain.StatusPending,
	})
	if err != nil {
		return IngestResult{}, fmt.Errorf("upsert item %s: %w", task.URL, err)
	}

	metrics.IngestOutcomes.WithLabelValues(string(IngestScraped)).Inc()
	s.record(ctx, domain.AuditInfo, task, "scraped")
	s.logger.Info("ingest completed", "url", task.URL, "item_id", itemID, "correlation_id", task.CorrelationID)

	return IngestResult{Outcome: IngestScraped, ItemID: itemID}, nil
}

// resolveSource finds or lazily creates the Source row for a domain. Two
// chains racing on the same new domain are reconciled by re-reading after
// the loser's insert hits the uniqueness constraint.
func (s *Ingest) resolveSource(ctx context.Context, dom string) (*domain.Source, error) {
	source, err := s.sources.GetByDomain(ctx, dom)
	if err != nil {
		return nil, err
	}
	if source != nil {
		return source, nil
	}

	source, err = s.sources.Create(ctx, dom)
	if err == nil {
		return source, nil
	}
	if !errors.Is(err, ports.ErrDuplicateSource) {
		return nil, err
	}

	source, err = s.sources.GetByDomain(ctx, dom)
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, fmt.Errorf("source %s vanished after duplicate insert", dom)
	}
	return source, nil
}

func (s *Ingest) record(ctx context.Context, severity domain.AuditSeverity, task ports.IngestTask, msg string) {
	err := s.audit.Append(ctx, domain.AuditEntry{
		Severity:      severity,
		CorrelationID: task.CorrelationID,
		URL:           task.URL,
		Message:       msg,
	})
	if err != nil {
		s.logger.Error("audit append failed", "url", task.URL, "error", err)
	}
}
