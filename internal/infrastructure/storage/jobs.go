package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"NewsHarvester/internal/domain"
	"NewsHarvester/internal/ports"
)

// JobRepo persists recurring crawl targets.
type JobRepo struct{ *Store }

var _ ports.JobRepository = JobRepo{}

var jobColumns = []string{
	"id", "name", "url", "interval_seconds", "is_active", "last_triggered_at", "created_at",
}

// Create inserts a new scheduled job and returns its identity.
func (r JobRepo) Create(ctx context.Context, job domain.ScheduledJob) (int64, error) {
	interval := job.IntervalSeconds
	if interval <= 0 {
		interval = domain.DefaultIntervalSeconds
	}

	query, args, err := r.sb.Insert("scheduled_jobs").
		Columns("name", "url", "interval_seconds", "is_active").
		Values(job.Name, job.URL, interval, job.IsActive).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert: %w", err)
	}

	var id int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("create job %s: %w", job.Name, err)
	}

	return id, nil
}

// GetByID returns the job or nil when absent.
func (r JobRepo) GetByID(ctx context.Context, id int64) (*domain.ScheduledJob, error) {
	query, args, err := r.sb.Select(jobColumns...).
		From("scheduled_jobs").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	job, err := scanJob(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get job %d: %w", id, err)
	}

	return job, nil
}

// List returns every job, newest first.
func (r JobRepo) List(ctx context.Context) ([]domain.ScheduledJob, error) {
	return r.listWhere(ctx, nil)
}

// ListActive returns the jobs the scheduler sweeps.
func (r JobRepo) ListActive(ctx context.Context) ([]domain.ScheduledJob, error) {
	return r.listWhere(ctx, sq.Eq{"is_active": true})
}

func (r JobRepo) listWhere(ctx context.Context, where any) ([]domain.ScheduledJob, error) {
	builder := r.sb.Select(jobColumns...).
		From("scheduled_jobs").
		OrderBy("created_at DESC")
	if where != nil {
		builder = builder.Where(where)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []domain.ScheduledJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}

	return jobs, nil
}

// Delete removes a job. Unknown ids are a no-op.
func (r JobRepo) Delete(ctx context.Context, id int64) error {
	query, args, err := r.sb.Delete("scheduled_jobs").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("delete job %d: %w", id, err)
	}

	return nil
}

// StampTriggered records the dispatch time of the job's latest chain.
func (r JobRepo) StampTriggered(ctx context.Context, id int64, at time.Time) error {
	query, args, err := r.sb.Update("scheduled_jobs").
		Set("last_triggered_at", at).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("stamp job %d: %w", id, err)
	}

	return nil
}

// UpdateInterval writes the adjusted interval.
func (r JobRepo) UpdateInterval(ctx context.Context, id int64, seconds int) error {
	query, args, err := r.sb.Update("scheduled_jobs").
		Set("interval_seconds", seconds).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("update interval for job %d: %w", id, err)
	}

	return nil
}

func scanJob(row pgx.Row) (*domain.ScheduledJob, error) {
	var (
		job           domain.ScheduledJob
		lastTriggered *time.Time
	)
	err := row.Scan(&job.ID, &job.Name, &job.URL, &job.IntervalSeconds,
		&job.IsActive, &lastTriggered, &job.CreatedAt)
	if err != nil {
		return nil, err
	}
	job.LastTriggeredAt = lastTriggered

	return &job, nil
}
