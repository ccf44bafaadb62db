package domain

import "time"

// Interval bounds enforced after every adjustment.
const (
	MinIntervalSeconds = 60
	MaxIntervalSeconds = 172800

	// DefaultIntervalSeconds is assigned to newly created jobs.
	DefaultIntervalSeconds = 3600
)

// ScheduledJob is a recurring crawl target owned by an operator.
type ScheduledJob struct {
	ID              int64
	Name            string
	URL             string
	IntervalSeconds int
	IsActive        bool
	LastTriggeredAt *time.Time
	CreatedAt       time.Time
}

// Due reports whether the job should be dispatched at now. A job that has
// never been triggered is always due. Comparison happens in UTC regardless
// of how the timestamp was stored.
func (j ScheduledJob) Due(now time.Time) bool {
	if j.LastTriggeredAt == nil {
		return true
	}
	elapsed := now.UTC().Sub(j.LastTriggeredAt.UTC())
	return elapsed >= time.Duration(j.IntervalSeconds)*time.Second
}
