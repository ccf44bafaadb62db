package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"NewsHarvester/internal/domain"
	"NewsHarvester/internal/ports"
)

// SourceRepo tracks distinct crawled domains.
type SourceRepo struct{ *Store }

var _ ports.SourceRepository = SourceRepo{}

// GetByDomain returns the source row for a domain, or nil when unknown.
func (r SourceRepo) GetByDomain(ctx context.Context, dom string) (*domain.Source, error) {
	query, args, err := r.sb.Select("id", "domain", "last_crawled_at").
		From("sources").
		Where(sq.Eq{"domain": dom}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var (
		source      domain.Source
		lastCrawled sql.NullTime
	)
	err = r.pool.QueryRow(ctx, query, args...).Scan(&source.ID, &source.Domain, &lastCrawled)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get source %s: %w", dom, err)
	}
	source.LastCrawledAt = lastCrawled.Time

	return &source, nil
}

// Create inserts a new source. A concurrent insert of the same domain maps
// the uniqueness violation onto ErrDuplicateSource so the caller can
// re-read instead of failing.
func (r SourceRepo) Create(ctx context.Context, dom string) (*domain.Source, error) {
	query, args, err := r.sb.Insert("sources").
		Columns("domain").
		Values(dom).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert: %w", err)
	}

	var id int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return nil, ports.ErrDuplicateSource
		}
		return nil, fmt.Errorf("create source %s: %w", dom, err)
	}

	return &domain.Source{ID: id, Domain: dom}, nil
}

// TouchLastCrawled stamps the domain's crawl time.
func (r SourceRepo) TouchLastCrawled(ctx context.Context, id int64, at time.Time) error {
	query, args, err := r.sb.Update("sources").
		Set("last_crawled_at", at).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("touch source %d: %w", id, err)
	}

	return nil
}
