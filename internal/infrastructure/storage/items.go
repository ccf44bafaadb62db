package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"NewsHarvester/internal/domain"
	"NewsHarvester/internal/ports"
)

// ItemRepo persists scraped items keyed by URL.
type ItemRepo struct{ *Store }

var _ ports.ItemRepository = ItemRepo{}

// itemColumns lists every scraped_items column except clean_text, which the
// list view deliberately excludes.
var itemColumns = []string{
	"id", "url", "source_id", "title", "author", "published_date",
	"main_image", "summary", "tags", "category", "urgency",
	"status", "error_detail", "metadata", "created_at", "updated_at",
}

// Upsert writes the extracted fields keyed by URL. An existing row is
// overwritten and its status reset to pending with the error cleared, which
// re-queues the item for enrichment regardless of its prior outcome.
func (r ItemRepo) Upsert(ctx context.Context, item domain.ScrapedItem) (int64, error) {
	meta, err := json.Marshal(item.Metadata)
	if err != nil {
		return 0, fmt.Errorf("marshal metadata: %w", err)
	}

	query, args, err := r.sb.Insert("scraped_items").
		Columns("url", "source_id", "title", "author", "published_date",
			"main_image", "clean_text", "metadata", "status").
		Values(item.URL, item.SourceID, item.Title, item.Author, item.PublishedDate,
			item.MainImage, item.CleanText, meta, string(domain.StatusPending)).
		Suffix(`ON CONFLICT (url) DO UPDATE SET
			source_id = EXCLUDED.source_id,
			title = EXCLUDED.title,
			author = EXCLUDED.author,
			published_date = EXCLUDED.published_date,
			main_image = EXCLUDED.main_image,
			clean_text = EXCLUDED.clean_text,
			metadata = EXCLUDED.metadata,
			status = EXCLUDED.status,
			error_detail = NULL,
			updated_at = NOW()
		RETURNING id`).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build upsert: %w", err)
	}

	var id int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("upsert item %s: %w", item.URL, err)
	}

	return id, nil
}

// GetByID returns the full item including clean text, or nil when absent.
func (r ItemRepo) GetByID(ctx context.Context, id int64) (*domain.ScrapedItem, error) {
	cols := append(append([]string{}, itemColumns...), "clean_text")
	query, args, err := r.sb.Select(cols...).
		From("scraped_items").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	row := r.pool.QueryRow(ctx, query, args...)
	item, err := scanItem(row, true)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item %d: %w", id, err)
	}

	return item, nil
}

// SetStatus moves the item's pipeline status, writing or clearing the error
// detail alongside.
func (r ItemRepo) SetStatus(ctx context.Context, id int64, status domain.PipelineStatus, errorDetail string) error {
	detail := sql.NullString{String: errorDetail, Valid: errorDetail != ""}

	query, args, err := r.sb.Update("scraped_items").
		Set("status", string(status)).
		Set("error_detail", detail).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("set status for item %d: %w", id, err)
	}

	return nil
}

// SaveAnalysis writes the AI fields and marks the item completed in one
// statement, clearing any error detail.
func (r ItemRepo) SaveAnalysis(ctx context.Context, id int64, analysis domain.Analysis) error {
	query, args, err := r.sb.Update("scraped_items").
		Set("summary", analysis.Summary).
		Set("tags", analysis.Tags).
		Set("category", analysis.Category).
		Set("urgency", analysis.Urgency).
		Set("status", string(domain.StatusCompleted)).
		Set("error_detail", nil).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("save analysis for item %d: %w", id, err)
	}

	return nil
}

// List returns items newest-first without clean text.
func (r ItemRepo) List(ctx context.Context, skip, limit int) ([]domain.ScrapedItem, error) {
	query, args, err := r.sb.Select(itemColumns...).
		From("scraped_items").
		OrderBy("created_at DESC").
		Offset(uint64(skip)).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []domain.ScrapedItem
	for rows.Next() {
		item, err := scanItem(rows, false)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}

	return items, nil
}

func scanItem(row pgx.Row, withText bool) (*domain.ScrapedItem, error) {
	var (
		item        domain.ScrapedItem
		title       sql.NullString
		author      sql.NullString
		published   sql.NullString
		mainImage   sql.NullString
		summary     sql.NullString
		category    sql.NullString
		urgency     sql.NullInt32
		status      string
		errorDetail sql.NullString
		meta        []byte
	)

	dest := []any{
		&item.ID, &item.URL, &item.SourceID, &title, &author, &published,
		&mainImage, &summary, &item.Tags, &category, &urgency,
		&status, &errorDetail, &meta, &item.CreatedAt, &item.UpdatedAt,
	}
	if withText {
		var cleanText sql.NullString
		dest = append(dest, &cleanText)
		if err := row.Scan(dest...); err != nil {
			return nil, err
		}
		item.CleanText = cleanText.String
	} else {
		if err := row.Scan(dest...); err != nil {
			return nil, err
		}
	}

	item.Title = title.String
	item.Author = author.String
	item.PublishedDate = published.String
	item.MainImage = mainImage.String
	item.Summary = summary.String
	item.Category = category.String
	item.Urgency = int(urgency.Int32)
	item.ErrorDetail = errorDetail.String

	parsed, err := domain.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	item.Status = parsed

	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &item.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
	}

	return &item, nil
}
