package repository

import (
	"context"
	"database/sql"

	"heresthething/backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) ListActiveAdviceItems(ctx context.Context) ([]models.AdviceItem, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, notion_id, title, slug, image_url, optimized_image_url, is_active, created_at, updated_at
FROM advice_items
WHERE is_active = TRUE
ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.AdviceItem
	for rows.Next() {
		item, err := scanAdviceItem(rows.Scan)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *Repository) GetAdviceItemBySlug(ctx context.Context, slug string) (models.AdviceItem, error) {
	row := r.pool.QueryRow(ctx, `
SELECT id, notion_id, title, slug, image_url, optimized_image_url, is_active, created_at, updated_at
FROM advice_items
WHERE slug = $1 AND is_active = TRUE
LIMIT 1`, slug)
	return scanAdviceItem(row.Scan)
}

func (r *Repository) UpsertAdviceItem(ctx context.Context, item models.AdviceItem) (models.AdviceItem, error) {
	row := r.pool.QueryRow(ctx, `
INSERT INTO advice_items (notion_id, title, slug, image_url, optimized_image_url)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (notion_id) DO UPDATE SET
	title = EXCLUDED.title,
	slug = EXCLUDED.slug,
	image_url = EXCLUDED.image_url,
	optimized_image_url = COALESCE(EXCLUDED.optimized_image_url, advice_items.optimized_image_url),
	updated_at = now()
RETURNING id, notion_id, title, slug, image_url, optimized_image_url, is_active, created_at, updated_at;`,
		item.NotionID, item.Title, item.Slug, nullString(item.ImageURL), nullString(item.OptimizedImageURL))
	return scanAdviceItem(row.Scan)
}

func (r *Repository) SetAdviceItemActive(ctx context.Context, notionID string, active bool) error {
	_, err := r.pool.Exec(ctx, `
UPDATE advice_items
SET is_active = $2, updated_at = now()
WHERE notion_id = $1;`, notionID, active)
	return err
}

func (r *Repository) AdviceStats(ctx context.Context) (models.AdviceStats, error) {
	row := r.pool.QueryRow(ctx, `
SELECT COUNT(*), COUNT(*) FILTER (WHERE is_active)
FROM advice_items`)
	var out models.AdviceStats
	if err := row.Scan(&out.Total, &out.Active); err != nil {
		return out, err
	}
	out.Inactive = out.Total - out.Active
	return out, nil
}

func scanAdviceItem(scan func(dest ...any) error) (models.AdviceItem, error) {
	var out models.AdviceItem
	var imageURL sql.NullString
	var optimizedURL sql.NullString
	err := scan(&out.ID, &out.NotionID, &out.Title, &out.Slug, &imageURL, &optimizedURL, &out.IsActive, &out.CreatedAt, &out.UpdatedAt)
	if imageURL.Valid {
		out.ImageURL = imageURL.String
	}
	if optimizedURL.Valid {
		out.OptimizedImageURL = optimizedURL.String
	}
	return out, err
}

func nullString(val string) interface{} {
	if val == "" {
		return nil
	}
	return val
}
