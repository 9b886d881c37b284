package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// BlacklistRepository reads the admin-managed IP block list. Read-only from
// the service's perspective.
type BlacklistRepository struct {
	db *pgxpool.Pool
}

func NewBlacklistRepository(db *pgxpool.Pool) *BlacklistRepository {
	return &BlacklistRepository{db: db}
}

func (r *BlacklistRepository) IsBlocked(ctx context.Context, ip string) (bool, error) {
	if ip == "" {
		return false, nil
	}

	var blocked bool
	query := `SELECT EXISTS (SELECT 1 FROM ip_blacklist WHERE ip_address = $1)`

	if err := r.db.QueryRow(ctx, query, ip).Scan(&blocked); err != nil {
		return false, err
	}

	return blocked, nil
}
