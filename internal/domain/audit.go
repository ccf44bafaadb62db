package domain

import "time"

// AuditSeverity classifies audit log entries.
type AuditSeverity string

const (
	AuditInfo  AuditSeverity = "info"
	AuditWarn  AuditSeverity = "warn"
	AuditError AuditSeverity = "error"
)

// AuditEntry is one append-only record of a pipeline outcome: a compliance
// block, a fetch failure, or a stage success/failure.
type AuditEntry struct {
	ID            int64
	Severity      AuditSeverity
	CorrelationID string
	URL           string
	Message       string
	CreatedAt     time.Time
}
