package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"NewsHarvester/internal/domain"
	"NewsHarvester/internal/metrics"
	"NewsHarvester/internal/ports"
	"NewsHarvester/internal/retry"
)

// EnrichOutcome classifies the result of one enrich invocation.
type EnrichOutcome string

const (
	EnrichCompleted EnrichOutcome = "completed"
	EnrichFailed    EnrichOutcome = "failed"
	EnrichSkipped   EnrichOutcome = "skipped"
)

var errNoAnalysis = errors.New("no usable analysis result")

// EnrichDeps wires the driven adapters into the enrich stage.
type EnrichDeps struct {
	Items    ports.ItemRepository
	Analyzer ports.Analyzer
	Adjuster ports.IntervalAdjuster
	Audit    ports.AuditLog
	Logger   *slog.Logger
	// Policy bounds the in-stage inference retries. Zero value falls back
	// to three fixed-delay attempts.
	Policy retry.Policy
}

// Enrich consumes a persisted item, asks the inference client for AI fields,
// advances the pipeline status, and feeds the resulting urgency back into
// the scheduler.
type Enrich struct {
	items    ports.ItemRepository
	analyzer ports.Analyzer
	adjuster ports.IntervalAdjuster
	audit    ports.AuditLog
	logger   *slog.Logger
	policy   retry.Policy
	now      func() time.Time
}

// NewEnrich constructs the enrich stage.
func NewEnrich(deps EnrichDeps) *Enrich {
	policy := deps.Policy
	if policy.MaxAttempts == 0 {
		policy = retry.Fixed(3, 2*time.Second)
	}
	return &Enrich{
		items:    deps.Items,
		analyzer: deps.Analyzer,
		adjuster: deps.Adjuster,
		audit:    deps.Audit,
		logger:   deps.Logger,
		policy:   policy,
		now:      time.Now,
	}
}

// Run executes the enrich steps for one task. Inference exhaustion is a
// terminal EnrichFailed outcome, not an error; an error return means an
// infrastructure failure. Either way the item never stays in processing:
// hard failures trigger a best-effort failed write in a fresh context.
func (s *Enrich) Run(ctx context.Context, task ports.EnrichTask) (outcome EnrichOutcome, err error) {
	started := s.now()
	defer func() {
		metrics.StageDuration.WithLabelValues("enrich").Observe(s.now().Sub(started).Seconds())
	}()

	item, err := s.items.GetByID(ctx, task.ItemID)
	if err != nil {
		return "", fmt.Errorf("load item %d: %w", task.ItemID, err)
	}
	if item == nil {
		s.logger.Warn("enrich target missing", "item_id", task.ItemID, "correlation_id", task.CorrelationID)
		return EnrichSkipped, nil
	}

	// At-most-effectively-once: a completed item is never re-analyzed even
	// if the task is delivered twice.
	if item.Status == domain.StatusCompleted {
		metrics.EnrichOutcomes.WithLabelValues(string(EnrichSkipped)).Inc()
		return EnrichSkipped, nil
	}

	if err = s.items.SetStatus(ctx, item.ID, domain.StatusProcessing, ""); err != nil {
		return "", fmt.Errorf("mark processing %d: %w", item.ID, err)
	}

	defer func() {
		if r := recover(); r != nil {
			s.markFailedBestEffort(item.ID, fmt.Sprintf("enrich panicked: %v", r))
			outcome, err = EnrichFailed, fmt.Errorf("enrich panicked: %v", r)
			return
		}
		if err != nil {
			s.markFailedBestEffort(item.ID, err.Error())
		}
	}()

	var analysis *domain.Analysis
	attempt := func() error {
		a, aerr := s.analyzer.Analyze(ctx, item.CleanText)
		if aerr != nil {
			return aerr
		}
		if a == nil {
			return errNoAnalysis
		}
		analysis = a
		return nil
	}

	if rerr := s.policy.Do(ctx, attempt); rerr != nil {
		diag := fmt.Sprintf("inference failed: %v", rerr)
		if err = s.items.SetStatus(ctx, item.ID, domain.StatusFailed, diag); err != nil {
			return "", fmt.Errorf("mark failed %d: %w", item.ID, err)
		}
		metrics.EnrichOutcomes.WithLabelValues(string(EnrichFailed)).Inc()
		s.record(ctx, domain.AuditWarn, item.URL, task.CorrelationID, diag)
		s.feedbackNoContent(ctx, task)
		return EnrichFailed, nil
	}

	if err = s.items.SaveAnalysis(ctx, item.ID, *analysis); err != nil {
		return "", fmt.Errorf("save analysis %d: %w", item.ID, err)
	}

	metrics.EnrichOutcomes.WithLabelValues(string(EnrichCompleted)).Inc()
	s.record(ctx, domain.AuditInfo, item.URL, task.CorrelationID, "enriched")
	s.logger.Info("enrich completed", "item_id", item.ID, "urgency", analysis.Urgency, "correlation_id", task.CorrelationID)

	// Feedback into scheduling. The enrichment is already committed, so a
	// failure here is logged and swallowed.
	if task.JobID != nil && analysis.Urgency > 0 {
		if aerr := s.adjuster.AdjustFromUrgency(ctx, *task.JobID, analysis.Urgency); aerr != nil {
			s.logger.Error("interval adjustment failed", "job_id", *task.JobID, "error", aerr)
		}
	}

	return EnrichCompleted, nil
}

func (s *Enrich) feedbackNoContent(ctx context.Context, task ports.EnrichTask) {
	if task.JobID == nil {
		return
	}
	if err := s.adjuster.AdjustNoContent(ctx, *task.JobID); err != nil {
		s.logger.Error("interval backoff failed", "job_id", *task.JobID, "error", err)
	}
}

// markFailedBestEffort runs on the hard-failure path with a fresh context so
// the item does not stay stuck in processing even when the stage's own
// context is already dead.
func (s *Enrich) markFailedBestEffort(itemID int64, detail string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.items.SetStatus(ctx, itemID, domain.StatusFailed, detail); err != nil {
		s.logger.Error("best-effort failed write lost", "item_id", itemID, "error", err)
	}
}

func (s *Enrich) record(ctx context.Context, severity domain.AuditSeverity, url, correlationID, msg string) {
	err := s.audit.Append(ctx, domain.AuditEntry{
		Severity:      severity,
		CorrelationID: correlationID,
		URL:           url,
		Message:       msg,
	})
	if err != nil {
		s.logger.Error("audit append failed", "url", url, "error", err)
	}
}
