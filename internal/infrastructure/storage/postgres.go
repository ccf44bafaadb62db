// Package storage persists jobs, items, sources, and audit entries in
// Postgres. SQL is built with squirrel and executed through a pgx pool.
package storage

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolationCode = "23505"

// Store owns the connection pool. The per-aggregate repositories returned by
// Items, Sources, Jobs, and Audit share it.
type Store struct {
	pool *pgxpool.Pool
	sb   sq.StatementBuilderType
}

// Items returns the scraped-item repository.
func (s *Store) Items() ItemRepo { return ItemRepo{s} }

// Sources returns the source-domain repository.
func (s *Store) Sources() SourceRepo { return SourceRepo{s} }

// Jobs returns the scheduled-job repository.
func (s *Store) Jobs() JobRepo { return JobRepo{s} }

// Audit returns the append-only audit log.
func (s *Store) Audit() AuditRepo { return AuditRepo{s} }

// Connect opens a pgx pool and verifies the connection.
func Connect(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return NewStore(pool), nil
}

// NewStore wraps an existing pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool: pool,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Close releases the pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the tables when they do not exist yet. Proper
// migrations live outside this service; this keeps a fresh environment
// bootable.
func (s *Store) EnsureSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS sources (
    id              BIGSERIAL PRIMARY KEY,
    domain          TEXT NOT NULL UNIQUE,
    last_crawled_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS scheduled_jobs (
    id                BIGSERIAL PRIMARY KEY,
    name              TEXT NOT NULL,
    url               TEXT NOT NULL,
    interval_seconds  INTEGER NOT NULL DEFAULT 3600,
    is_active         BOOLEAN NOT NULL DEFAULT TRUE,
    last_triggered_at TIMESTAMPTZ,
    created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS scraped_items (
    id             BIGSERIAL PRIMARY KEY,
    url            TEXT NOT NULL UNIQUE,
    source_id      BIGINT REFERENCES sources(id),
    title          TEXT,
    author         TEXT,
    published_date TEXT,
    main_image     TEXT,
    clean_text     TEXT,
    summary        TEXT,
    tags           TEXT[],
    category       TEXT,
    urgency        INTEGER,
    status         TEXT NOT NULL DEFAULT 'pending',
    error_detail   TEXT,
    metadata       JSONB,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS audit_log (
    id             BIGSERIAL PRIMARY KEY,
    severity       TEXT NOT NULL,
    correlation_id TEXT NOT NULL,
    url            TEXT NOT NULL,
    message        TEXT NOT NULL,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
