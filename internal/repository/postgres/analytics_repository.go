package postgres

import (
	"context"
	"time"

	"github.com/ShalunBdk/VirtexShortLink/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AnalyticsRepository struct {
	db *pgxpool.Pool
}

func NewAnalyticsRepository(db *pgxpool.Pool) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

func (r *AnalyticsRepository) GetAnalytics(ctx context.Context, linkID int64, days int) (*domain.LinkAnalytics, error) {
	analytics := &domain.LinkAnalytics{}

	query := `
		SELECT
			u.short_code,
			u.original_url,
			u.clicks_count,
			u.unique_clicks_count,
			u.created_at,
			MAX(c.clicked_at) as last_clicked_at
		FROM links u
		LEFT JOIN clicks c ON u.id = c.link_id
		WHERE u.id = $1
		GROUP BY u.id, u.short_code, u.original_url, u.clicks_count, u.unique_clicks_count, u.created_at
	`

	var lastClickedAt *time.Time
	err := r.db.QueryRow(ctx, query, linkID).Scan(
		&analytics.ShortCode,
		&analytics.OriginalURL,
		&analytics.TotalClicks,
		&analytics.UniqueClicks,
		&analytics.CreatedAt,
		&lastClickedAt,
	)
	if err != nil {
		return nil, err
	}
	analytics.LastClickedAt = lastClickedAt

	clicksByDate, err := r.getClicksByDate(ctx, linkID, days)
	if err != nil {
		return nil, err
	}
	analytics.ClicksByDate = clicksByDate

	topCountries, err := r.getTopCountries(ctx, linkID, 20)
	if err != nil {
		return nil, err
	}
	analytics.TopCountries = topCountries

	topReferrers, err := r.getTopReferrers(ctx, linkID, 5)
	if err != nil {
		return nil, err
	}
	analytics.TopReferrers = topReferrers

	deviceStats, err := r.getDeviceStats(ctx, linkID)
	if err != nil {
		return nil, err
	}
	analytics.DeviceStats = *deviceStats

	return analytics, nil
}

func (r *AnalyticsRepository) getClicksByDate(ctx context.Context, linkID int64, days int) ([]domain.ClicksByDate, error) {
	query := `
		SELECT
			DATE(clicked_at) as date,
			COUNT(*) as count,
			COUNT(*) FILTER (WHERE is_unique) as unique_clicks
		FROM clicks
		WHERE link_id = $1
			AND clicked_at >= NOW() - INTERVAL '1 day' * $2
		GROUP BY DATE(clicked_at)
		ORDER BY date DESC
		LIMIT 90
	`

	rows, err := r.db.Query(ctx, query, linkID, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.ClicksByDate
	for rows.Next() {
		var cbd domain.ClicksByDate
		var date time.Time
		if err := rows.Scan(&date, &cbd.Count, &cbd.UniqueClicks); err != nil {
			return nil, err
		}
		cbd.Date = date.Format("2006-01-02")
		results = append(results, cbd)
	}

	return results, rows.Err()
}

func (r *AnalyticsRepository) getTopCountries(ctx context.Context, linkID int64, limit int) ([]domain.CountryStats, error) {
	query := `
		SELECT
			COALESCE(country_code, '') as country_code,
			COALESCE(country_name, 'Unknown') as country_name,
			COUNT(*) as count
		FROM clicks
		WHERE link_id = $1
		GROUP BY country_code, country_name
		ORDER BY count DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, linkID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.CountryStats
	for rows.Next() {
		var cs domain.CountryStats
		if err := rows.Scan(&cs.CountryCode, &cs.CountryName, &cs.Count); err != nil {
			return nil, err
		}
		results = append(results, cs)
	}

	return results, rows.Err()
}

func (r *AnalyticsRepository) getTopReferrers(ctx context.Context, linkID int64, limit int) ([]domain.RefererStats, error) {
	query := `
		SELECT
			COALESCE(NULLIF(referer, ''), 'Direct') as referer,
			COUNT(*) as count
		FROM clicks
		WHERE link_id = $1
		GROUP BY referer
		ORDER BY count DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, linkID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.RefererStats
	for rows.Next() {
		var rs domain.RefererStats
		if err := rows.Scan(&rs.Referer, &rs.Count); err != nil {
			return nil, err
		}
		results = append(results, rs)
	}

	return results, rows.Err()
}

func (r *AnalyticsRepository) getDeviceStats(ctx context.Context, linkID int64) (*domain.DeviceStats, error) {
	query := `
		SELECT
			COALESCE(device_type, 'unknown') as device_type,
			COUNT(*) as count
		FROM clicks
		WHERE link_id = $1
		GROUP BY device_type
	`

	rows, err := r.db.Query(ctx, query, linkID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &domain.DeviceStats{}
	for rows.Next() {
		var deviceType string
		var count int64
		if err := rows.Scan(&deviceType, &count); err != nil {
			return nil, err
		}

		switch deviceType {
		case "mobile":
			stats.Mobile = count
		case "desktop":
			stats.Desktop = count
		case "tablet":
			stats.Tablet = count
		case "bot":
			stats.Bot = count
		default:
			stats.Unknown += count
		}
	}

	return stats, rows.Err()
}

func (r *AnalyticsRepository) GetClickHistory(ctx context.Context, linkID int64, page, pageSize int) (*domain.ClickHistory, error) {
	offset := (page - 1) * pageSize

	var total int64
	countQuery := `SELECT COUNT(*) FROM clicks WHERE link_id = $1`
	err := r.db.QueryRow(ctx, countQuery, linkID).Scan(&total)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, link_id, clicked_at, ip_address, user_agent, referer, country_code, country_name, city, device_type, is_unique
		FROM clicks
		WHERE link_id = $1
		ORDER BY clicked_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, linkID, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clicks []domain.Click
	for rows.Next() {
		var click domain.Click
		err := rows.Scan(
			&click.ID,
			&click.LinkID,
			&click.ClickedAt,
			&click.IPAddress,
			&click.UserAgent,
			&click.Referer,
			&click.CountryCode,
			&click.CountryName,
			&click.City,
			&click.DeviceType,
			&click.IsUnique,
		)
		if err != nil {
			return nil, err
		}
		clicks = append(clicks, click)
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))

	return &domain.ClickHistory{
		Clicks:     clicks,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, rows.Err()
}
