package domain

import "time"

type Click struct {
	ID          int64     `json:"id"`
	LinkID      int64     `json:"link_id"`
	ClickedAt   time.Time `json:"clicked_at"`
	IPAddress   string    `json:"ip_address"`
	UserAgent   string    `json:"user_agent"`
	Referer     string    `json:"referer"`
	CountryCode *string   `json:"country_code,omitempty"`
	CountryName *string   `json:"country_name,omitempty"`
	City        *string   `json:"city,omitempty"`
	DeviceType  string    `json:"device_type"`
	IsUnique    bool      `json:"is_unique"`
}

// ClickMeta is the request metadata captured by the redirect handler and
// passed to the click recording path.
type ClickMeta struct {
	IPAddress  string
	UserAgent  string
	Referer    string
	DeviceType string
}

// GeoInfo is a best-effort geolocation result. Zero value means Unknown.
type GeoInfo struct {
	CountryCode string
	CountryName string
	City        string
}

func (g GeoInfo) IsZero() bool {
	return g.CountryCode == "" && g.CountryName == "" && g.City == ""
}
