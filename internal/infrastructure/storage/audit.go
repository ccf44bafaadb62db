package storage

import (
	"context"
	"fmt"

	"NewsHarvester/internal/domain"
	"NewsHarvester/internal/ports"
)

// AuditRepo is the append-only audit log.
type AuditRepo struct{ *Store }

var _ ports.AuditLog = AuditRepo{}

// Append writes one audit record. The table is append-only; nothing in the
// pipeline updates or deletes entries.
func (r AuditRepo) Append(ctx context.Context, entry domain.AuditEntry) error {
	query, args, err := r.sb.Insert("audit_log").
		Columns("severity", "correlation_id", "url", "message").
		Values(string(entry.Severity), entry.CorrelationID, entry.URL, entry.Message).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}

	return nil
}
