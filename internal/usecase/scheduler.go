package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"NewsHarvester/internal/domain"
	"NewsHarvester/internal/metrics"
	"NewsHarvester/internal/ports"
)

// SchedulerDeps wires the repositories and the queue into the sweep loop.
type SchedulerDeps struct {
	Jobs       ports.JobRepository
	Dispatcher ports.Dispatcher
	Logger     *slog.Logger
	// SweepInterval is the fixed real-time cadence of the due-check loop,
	// independent of any job's own interval.
	SweepInterval time.Duration
}

// Scheduler periodically sweeps the active jobs, dispatches ingest→enrich
// chains for the due ones, and adjusts job intervals from enrichment
// feedback.
type Scheduler struct {
	jobs          ports.JobRepository
	dispatcher    ports.Dispatcher
	logger        *slog.Logger
	sweepInterval time.Duration
	now           func() time.Time
}

var _ ports.IntervalAdjuster = (*Scheduler)(nil)

// NewScheduler constructs the sweep loop.
func NewScheduler(deps SchedulerDeps) *Scheduler {
	interval := deps.SweepInterval
	if interval <= 0 {
		interval = 60 * time.Second
	}
	return &Scheduler{
		jobs:          deps.Jobs,
		dispatcher:    deps.Dispatcher,
		logger:        deps.Logger,
		sweepInterval: interval,
		now:           time.Now,
	}
}

// Run sweeps immediately and then on every tick until ctx is cancelled.
// Sweep errors are logged, not fatal: a failing store read on one sweep must
// not kill the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	if err := s.Sweep(ctx, s.now()); err != nil {
		s.logger.Error("sweep failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case t := <-ticker.C:
			if err := s.Sweep(ctx, t); err != nil {
				s.logger.Error("sweep failed", "error", err)
			}
		}
	}
}

// Sweep runs one due-check-and-dispatch pass at the given instant. Each due
// job is stamped at dispatch time, not completion time, so a slow or failing
// chain cannot cause the next sweep to redispatch the same job.
func (s *Scheduler) Sweep(ctx context.Context, now time.Time) error {
	metrics.SweepsTotal.Inc()

	jobs, err := s.jobs.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list active jobs: %w", err)
	}

	for _, job := range jobs {
		if !job.Due(now) {
			continue
		}

		jobID := job.ID
		task := ports.IngestTask{
			URL:           job.URL,
			JobID:         &jobID,
			CorrelationID: uuid.NewString(),
			Chain:         true,
		}

		if err := s.dispatcher.EnqueueIngest(ctx, task); err != nil {
			s.logger.Error("dispatch failed", "job_id", job.ID, "url", job.URL, "error", err)
			continue
		}

		if err := s.jobs.StampTriggered(ctx, job.ID, now.UTC()); err != nil {
			return fmt.Errorf("stamp job %d: %w", job.ID, err)
		}

		metrics.JobsDispatched.Inc()
		s.logger.Info("job dispatched", "job_id", job.ID, "url", job.URL,
			"interval_seconds", job.IntervalSeconds, "correlation_id", task.CorrelationID)
	}

	return nil
}

// AdjustFromUrgency maps a freshly produced urgency onto the job's next
// interval. The mapping is deterministic and idempotent for the same inputs.
func (s *Scheduler) AdjustFromUrgency(ctx context.Context, jobID int64, urgency int) error {
	return s.adjust(ctx, jobID, urgency, true, "urgency")
}

// AdjustNoContent backs the job's interval off exponentially when a chain
// produced no fresh content signal.
func (s *Scheduler) AdjustNoContent(ctx context.Context, jobID int64) error {
	return s.adjust(ctx, jobID, 0, false, "no_content")
}

func (s *Scheduler) adjust(ctx context.Context, jobID int64, urgency int, hadContent bool, reason string) error {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load job %d: %w", jobID, err)
	}
	if job == nil {
		return fmt.Errorf("job %d not found", jobID)
	}

	next := domain.AdjustInterval(job.IntervalSeconds, urgency, hadContent)
	if next == job.IntervalSeconds {
		return nil
	}

	if err := s.jobs.UpdateInterval(ctx, jobID, next); err != nil {
		return fmt.Errorf("update interval for job %d: %w", jobID, err)
	}

	metrics.IntervalAdjustments.WithLabelValues(reason).Inc()
	s.logger.Info("interval adjusted", "job_id", jobID, "from", job.IntervalSeconds,
		"to", next, "urgency", urgency, "had_content", hadContent)
	return nil
}
