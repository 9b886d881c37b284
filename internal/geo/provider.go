package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ShalunBdk/VirtexShortLink/internal/domain"
)

// Provider resolves an IP address to a location. Network-dependent and
// best-effort; callers must treat failures as Unknown.
type Provider interface {
	Lookup(ctx context.Context, ip string) (domain.GeoInfo, error)
}

// IPAPIClient queries ip-api.com (free tier, 45 req/min). The HTTP client
// timeout bounds every lookup so a slow provider cannot stall redirects.
type IPAPIClient struct {
	baseURL string
	client  *http.Client
}

func NewIPAPIClient(baseURL string, timeout time.Duration) *IPAPIClient {
	return &IPAPIClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type ipAPIResponse struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	Country     string `json:"country"`
	CountryCode string `json:"countryCode"`
	City        string `json:"city"`
}

func (c *IPAPIClient) Lookup(ctx context.Context, ip string) (domain.GeoInfo, error) {
	url := fmt.Sprintf("%s/%s?fields=status,message,country,countryCode,city", c.baseURL, ip)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.GeoInfo{}, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.GeoInfo{}, fmt.Errorf("geo provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.GeoInfo{}, fmt.Errorf("geo provider returned status %d", resp.StatusCode)
	}

	var body ipAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.GeoInfo{}, fmt.Errorf("geo provider response decode failed: %w", err)
	}

	if body.Status != "success" {
		return domain.GeoInfo{}, fmt.Errorf("geo provider lookup failed: %s", body.Message)
	}

	return domain.GeoInfo{
		CountryCode: body.CountryCode,
		CountryName: body.Country,
		City:        body.City,
	}, nil
}
