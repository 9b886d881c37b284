package postgres

import (
	"context"

	"github.com/ShalunBdk/VirtexShortLink/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LinkRepository struct {
	db *pgxpool.Pool
}

func NewLinkRepository(db *pgxpool.Pool) *LinkRepository {
	return &LinkRepository{db: db}
}

// Create inserts a new link. The unique index on lower(short_code) makes
// the insert the atomic claim on a code: when two requests race for the
// same code, the second insert fails with a unique violation and the
// caller retries with a fresh candidate. A link without a normalized form
// falls back to its original URL.
func (r *LinkRepository) Create(ctx context.Context, link *domain.Link) error {
	query := `
		INSERT INTO links (short_code, original_url, normalized_url, created_by)
		VALUES ($1, $2, COALESCE(NULLIF($3, ''), $2), $4)
		RETURNING id, created_at, normalized_url
	`

	return r.db.QueryRow(ctx, query, link.ShortCode, link.OriginalURL, link.NormalizedURL, link.CreatedBy).
		Scan(&link.ID, &link.CreatedAt, &link.NormalizedURL)
}

// GetByShortCode resolves a code case-insensitively. Inactive links are
// filtered out here so the caller cannot distinguish them from absent ones.
func (r *LinkRepository) GetByShortCode(ctx context.Context, shortCode string) (*domain.Link, error) {
	var link domain.Link

	query := `
		SELECT id, short_code, original_url, normalized_url, created_at, COALESCE(created_by, ''), clicks_count, unique_clicks_count, is_active
		FROM links
		WHERE lower(short_code) = lower($1) AND is_active = true
	`

	row := r.db.QueryRow(ctx, query, shortCode)

	err := row.Scan(
		&link.ID,
		&link.ShortCode,
		&link.OriginalURL,
		&link.NormalizedURL,
		&link.CreatedAt,
		&link.CreatedBy,
		&link.Clicks,
		&link.UniqueClicks,
		&link.IsActive,
	)

	if err != nil {
		return nil, err
	}

	return &link, nil
}

// GetByNormalizedURL finds an active link whose canonical URL form matches.
// Used for the idempotent shorten path.
func (r *LinkRepository) GetByNormalizedURL(ctx context.Context, normalizedURL string) (*domain.Link, error) {
	var link domain.Link

	query := `
		SELECT id, short_code, original_url, normalized_url, created_at, COALESCE(created_by, ''), clicks_count, unique_clicks_count, is_active
		FROM links
		WHERE normalized_url = $1 AND is_active = true
		ORDER BY id
		LIMIT 1
	`

	row := r.db.QueryRow(ctx, query, normalizedURL)

	err := row.Scan(
		&link.ID,
		&link.ShortCode,
		&link.OriginalURL,
		&link.NormalizedURL,
		&link.CreatedAt,
		&link.CreatedBy,
		&link.Clicks,
		&link.UniqueClicks,
		&link.IsActive,
	)

	if err != nil {
		return nil, err
	}

	return &link, nil
}

// IncrementClicks bumps the counters with a single atomic UPDATE so that
// concurrent redirects of the same code never lose an increment.
func (r *LinkRepository) IncrementClicks(ctx context.Context, linkID int64, unique bool) error {
	query := `
		UPDATE links
		SET clicks_count = clicks_count + 1,
		    unique_clicks_count = unique_clicks_count + CASE WHEN $2 THEN 1 ELSE 0 END
		WHERE id = $1
	`

	_, err := r.db.Exec(ctx, query, linkID, unique)
	return err
}
