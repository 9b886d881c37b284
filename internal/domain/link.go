package domain

import "time"

// Link's OriginalURL is the redirect target, exactly as submitted.
// NormalizedURL is the canonical form used only for duplicate detection.
type Link struct {
	ID            int64     `json:"id"`
	ShortCode     string    `json:"short_code"`
	OriginalURL   string    `json:"original_url"`
	NormalizedURL string    `json:"normalized_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	CreatedBy     string    `json:"created_by,omitempty"`
	Clicks        int64     `json:"clicks_count"`
	UniqueClicks  int64     `json:"unique_clicks_count"`
	IsActive      bool      `json:"is_active"`
}

type ShortenRequest struct {
	OriginalURL string `json:"url" validate:"required,max=2048"`
	CustomAlias string `json:"custom_alias,omitempty" validate:"omitempty,min=3,max=20,alias"`
}

type ShortenResult struct {
	Link     *Link
	Existing bool
}
