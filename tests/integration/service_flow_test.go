//go:build integration
// +build integration

package integration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShalunBdk/VirtexShortLink/internal/domain"
	"github.com/ShalunBdk/VirtexShortLink/internal/repository/postgres"
	redisrepo "github.com/ShalunBdk/VirtexShortLink/internal/repository/redis"
	"github.com/ShalunBdk/VirtexShortLink/internal/service"
	"github.com/ShalunBdk/VirtexShortLink/pkg/validator"
)

type stubGeo struct {
	info domain.GeoInfo
	err  error
}

func (s *stubGeo) Lookup(ctx context.Context, ip string) (domain.GeoInfo, error) {
	return s.info, s.err
}

func newTestService(t *testing.T) (*service.ShortenerService, func()) {
	db, dbCleanup := setupTestDatabase(t)
	redisClient, redisCleanup := setupTestRedis(t)

	svc := service.NewShortenerService(
		postgres.NewLinkRepository(db),
		postgres.NewClickRepository(db),
		redisrepo.NewLinkCache(redisClient),
		postgres.NewAnalyticsRepository(db),
		postgres.NewBlacklistRepository(db),
		&stubGeo{info: domain.GeoInfo{CountryCode: "US", CountryName: "United States", City: "Ashburn"}},
		validator.New(nil, nil),
		service.Options{
			CodeLength:      5,
			MaxAttempts:     10,
			ResolveCacheTTL: time.Hour,
			GeoTimeout:      time.Second,
		},
	)

	cleanup := func() {
		redisCleanup()
		dbCleanup()
	}

	return svc, cleanup
}

func TestService_ShortenThenRedirect(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()

	ctx := context.Background()

	result, err := svc.ShortenURL(ctx, &domain.ShortenRequest{
		OriginalURL: "https://Example.COM/Docs/#install",
	}, "alice")
	require.NoError(t, err)
	require.False(t, result.Existing)
	assert.Len(t, result.Link.ShortCode, 5)
	assert.Equal(t, "https://Example.COM/Docs/#install", result.Link.OriginalURL,
		"redirect target keeps the URL exactly as submitted")
	assert.Equal(t, "https://example.com/Docs", result.Link.NormalizedURL)

	link, err := svc.ResolveAndRecord(ctx, result.Link.ShortCode, domain.ClickMeta{
		IPAddress:  "203.0.113.5",
		UserAgent:  "Mozilla/5.0",
		DeviceType: "desktop",
	})
	require.NoError(t, err)
	assert.Equal(t, result.Link.ID, link.ID)
}

func TestService_ShortenIsIdempotent(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()

	ctx := context.Background()

	first, err := svc.ShortenURL(ctx, &domain.ShortenRequest{OriginalURL: "https://example.com/same"}, "")
	require.NoError(t, err)

	// A URL that normalizes to the same form reuses the existing link.
	second, err := svc.ShortenURL(ctx, &domain.ShortenRequest{OriginalURL: "HTTPS://EXAMPLE.com/same/"}, "")
	require.NoError(t, err)
	assert.True(t, second.Existing)
	assert.Equal(t, first.Link.ShortCode, second.Link.ShortCode)
}

func TestService_AliasConflictAcrossCase(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()

	ctx := context.Background()

	_, err := svc.ShortenURL(ctx, &domain.ShortenRequest{
		OriginalURL: "https://example.com/one",
		CustomAlias: "promo-2026",
	}, "")
	require.NoError(t, err)

	_, err = svc.ShortenURL(ctx, &domain.ShortenRequest{
		OriginalURL: "https://example.com/two",
		CustomAlias: "PROMO-2026",
	}, "")

	var conflict *domain.AliasConflictError
	require.True(t, errors.As(err, &conflict))
}

func TestService_ConcurrentRedirectsCountExactly(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()

	ctx := context.Background()

	result, err := svc.ShortenURL(ctx, &domain.ShortenRequest{OriginalURL: "https://example.com/hot"}, "")
	require.NoError(t, err)
	code := result.Link.ShortCode

	const visitors = 8
	const clicksEach = 5

	var wg sync.WaitGroup
	for v := 0; v < visitors; v++ {
		for c := 0; c < clicksEach; c++ {
			wg.Add(1)
			go func(v int) {
				defer wg.Done()
				_, err := svc.ResolveAndRecord(ctx, code, domain.ClickMeta{
					IPAddress:  fmt.Sprintf("203.0.113.%d", v),
					UserAgent:  "Mozilla/5.0",
					DeviceType: "desktop",
				})
				require.NoError(t, err)
			}(v)
		}
	}
	wg.Wait()

	stats, err := svc.GetAnalytics(ctx, code, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(visitors*clicksEach), stats.TotalClicks)
	assert.Equal(t, int64(visitors), stats.UniqueClicks)
}

func TestService_RedirectUnknownCode(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()

	_, err := svc.ResolveAndRecord(context.Background(), "zzzzz", domain.ClickMeta{
		IPAddress: "203.0.113.1",
		UserAgent: "curl/8.0",
	})
	assert.ErrorIs(t, err, domain.ErrLinkNotFound)
}
