package postgres

import (
	"context"

	"github.com/ShalunBdk/VirtexShortLink/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ClickRepository struct {
	db *pgxpool.Pool
}

func NewClickRepository(db *pgxpool.Pool) *ClickRepository {
	return &ClickRepository{db: db}
}

func (r *ClickRepository) Insert(ctx context.Context, click *domain.Click) error {
	query := `
		INSERT INTO clicks (link_id, ip_address, user_agent, referer, country_code, country_name, city, device_type, is_unique)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, clicked_at
	`

	return r.db.QueryRow(ctx, query,
		click.LinkID,
		click.IPAddress,
		click.UserAgent,
		click.Referer,
		click.CountryCode,
		click.CountryName,
		click.City,
		click.DeviceType,
		click.IsUnique,
	).Scan(&click.ID, &click.ClickedAt)
}

// TryMarkVisitor claims the (link, fingerprint) marker. ON CONFLICT DO
// NOTHING makes the insert a race-safe existence check: exactly one of any
// number of concurrent identical visits sees true.
func (r *ClickRepository) TryMarkVisitor(ctx context.Context, linkID int64, fingerprint string) (bool, error) {
	query := `
		INSERT INTO unique_visitors (link_id, fingerprint)
		VALUES ($1, $2)
		ON CONFLICT (link_id, fingerprint) DO NOTHING
	`

	tag, err := r.db.Exec(ctx, query, linkID, fingerprint)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}
