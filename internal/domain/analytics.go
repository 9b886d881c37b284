package domain

import "time"

type LinkAnalytics struct {
	ShortCode     string         `json:"short_code"`
	OriginalURL   string         `json:"original_url"`
	TotalClicks   int64          `json:"total_clicks"`
	UniqueClicks  int64          `json:"unique_clicks"`
	LastClickedAt *time.Time     `json:"last_clicked_at"`
	CreatedAt     time.Time      `json:"created_at"`
	ClicksByDate  []ClicksByDate `json:"clicks_by_date"`
	TopCountries  []CountryStats `json:"top_countries"`
	TopReferrers  []RefererStats `json:"top_referrers"`
	DeviceStats   DeviceStats    `json:"device_stats"`
}

type ClicksByDate struct {
	Date         string `json:"date"`
	Count        int64  `json:"count"`
	UniqueClicks int64  `json:"unique_clicks"`
}

type CountryStats struct {
	CountryCode string `json:"country_code"`
	CountryName string `json:"country_name"`
	Count       int64  `json:"count"`
}

type RefererStats struct {
	Referer string `json:"referer"`
	Count   int64  `json:"count"`
}

type DeviceStats struct {
	Mobile  int64 `json:"mobile"`
	Desktop int64 `json:"desktop"`
	Tablet  int64 `json:"tablet"`
	Bot     int64 `json:"bot"`
	Unknown int64 `json:"unknown"`
}

type ClickHistory struct {
	Clicks     []Click `json:"clicks"`
	Total      int64   `json:"total"`
	Page       int     `json:"page"`
	PageSize   int     `json:"page_size"`
	TotalPages int     `json:"total_pages"`
}
