package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ShalunBdk/VirtexShortLink/internal/domain"
	"github.com/ShalunBdk/VirtexShortLink/internal/logger"
	"github.com/ShalunBdk/VirtexShortLink/internal/metrics"
	"github.com/ShalunBdk/VirtexShortLink/pkg/generator"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type LinkRepository interface {
	Create(ctx context.Context, link *domain.Link) error
	GetByShortCode(ctx context.Context, shortCode string) (*domain.Link, error)
	GetByNormalizedURL(ctx context.Context, normalizedURL string) (*domain.Link, error)
	IncrementClicks(ctx context.Context, linkID int64, unique bool) error
}

type ClickRepository interface {
	Insert(ctx context.Context, click *domain.Click) error
	TryMarkVisitor(ctx context.Context, linkID int64, fingerprint string) (bool, error)
}

type CacheRepository interface {
	GetLink(ctx context.Context, shortCode string) (*domain.Link, error)
	SetLink(ctx context.Context, link *domain.Link, ttl time.Duration) error
}

type AnalyticsRepository interface {
	GetAnalytics(ctx context.Context, linkID int64, days int) (*domain.LinkAnalytics, error)
	GetClickHistory(ctx context.Context, linkID int64, page, pageSize int) (*domain.ClickHistory, error)
}

type BlacklistRepository interface {
	IsBlocked(ctx context.Context, ip string) (bool, error)
}

type GeoResolver interface {
	Lookup(ctx context.Context, ip string) (domain.GeoInfo, error)
}

type URLValidator interface {
	ValidateURL(raw string) error
	ValidateAlias(alias string) error
	IsReserved(code string) bool
}

type Options struct {
	CodeLength      int
	MaxAttempts     int
	ResolveCacheTTL time.Duration
	GeoTimeout      time.Duration
}

type ShortenerService struct {
	linkRepo      LinkRepository
	clickRepo     ClickRepository
	cacheRepo     CacheRepository
	analyticsRepo AnalyticsRepository
	blacklistRepo BlacklistRepository
	geo           GeoResolver
	validator     URLValidator
	opts          Options
}

func NewShortenerService(
	linkRepo LinkRepository,
	clickRepo ClickRepository,
	cacheRepo CacheRepository,
	analyticsRepo AnalyticsRepository,
	blacklistRepo BlacklistRepository,
	geo GeoResolver,
	validator URLValidator,
	opts Options,
) *ShortenerService {
	if opts.CodeLength <= 0 {
		opts.CodeLength = generator.DefaultCodeLength
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 10
	}
	if opts.ResolveCacheTTL <= 0 {
		opts.ResolveCacheTTL = 24 * time.Hour
	}
	if opts.GeoTimeout <= 0 {
		opts.GeoTimeout = 2 * time.Second
	}

	return &ShortenerService{
		linkRepo:      linkRepo,
		clickRepo:     clickRepo,
		cacheRepo:     cacheRepo,
		analyticsRepo: analyticsRepo,
		blacklistRepo: blacklistRepo,
		geo:           geo,
		validator:     validator,
		opts:          opts,
	}
}

// ShortenURL validates the request, reuses an existing link for a known URL
// when no alias is requested, and otherwise allocates a code. Code
// allocation races are settled by the unique index: first committer wins,
// the loser retries with a new candidate.
func (s *ShortenerService) ShortenURL(ctx context.Context, req *domain.ShortenRequest, createdBy string) (*domain.ShortenResult, error) {
	metrics.Shortens.Inc()

	if err := s.validator.ValidateURL(req.OriginalURL); err != nil {
		metrics.ShortensRejected.WithLabelValues("url").Inc()
		return nil, err
	}

	// Dedupe compares canonical forms; the stored and redirected URL stays
	// exactly as submitted, fragment included.
	normalized := NormalizeURL(req.OriginalURL)

	if req.CustomAlias == "" {
		existing, err := s.linkRepo.GetByNormalizedURL(ctx, normalized)
		if err == nil {
			return &domain.ShortenResult{Link: existing, Existing: true}, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("failed to look up existing url: %w", err)
		}

		return s.createWithGeneratedCode(ctx, req.OriginalURL, normalized, createdBy)
	}

	return s.createWithAlias(ctx, req.OriginalURL, normalized, req.CustomAlias, createdBy)
}

func (s *ShortenerService) createWithAlias(ctx context.Context, originalURL, normalizedURL, alias, createdBy string) (*domain.ShortenResult, error) {
	if err := s.validator.ValidateAlias(alias); err != nil {
		metrics.ShortensRejected.WithLabelValues("alias").Inc()
		return nil, err
	}

	link := &domain.Link{
		ShortCode:     strings.ToLower(alias),
		OriginalURL:   originalURL,
		NormalizedURL: normalizedURL,
		CreatedBy:     createdBy,
		IsActive:      true,
	}

	if err := s.linkRepo.Create(ctx, link); err != nil {
		if isShortCodeConflict(err) {
			metrics.ShortensRejected.WithLabelValues("alias_conflict").Inc()
			return nil, &domain.AliasConflictError{Alias: alias}
		}
		return nil, fmt.Errorf("failed to create short url: %w", err)
	}

	return &domain.ShortenResult{Link: link}, nil
}

func (s *ShortenerService) createWithGeneratedCode(ctx context.Context, originalURL, normalizedURL, createdBy string) (*domain.ShortenResult, error) {
	var lastErr error

	for attempt := 0; attempt < s.opts.MaxAttempts; attempt++ {
		code, err := generator.GenerateShortCode(s.opts.CodeLength)
		if err != nil {
			return nil, fmt.Errorf("failed to generate short code: %w", err)
		}

		// generated codes may land on a service route by chance
		if s.validator.IsReserved(code) {
			continue
		}

		link := &domain.Link{
			ShortCode:     code,
			OriginalURL:   originalURL,
			NormalizedURL: normalizedURL,
			CreatedBy:     createdBy,
			IsActive:      true,
		}

		err = s.linkRepo.Create(ctx, link)
		if err == nil {
			return &domain.ShortenResult{Link: link}, nil
		}

		if isShortCodeConflict(err) {
			metrics.CodeRetries.Inc()
			lastErr = err
			continue
		}

		return nil, fmt.Errorf("failed to create short url: %w", err)
	}

	return nil, fmt.Errorf("%w after %d attempts: %w", domain.ErrAllocationExhausted, s.opts.MaxAttempts, lastErr)
}

func isShortCodeConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		pgErr.Code == "23505" &&
		strings.Contains(pgErr.ConstraintName, "short_code")
}

// Resolve looks a link up by case-folded code, consulting the redis cache
// first. Unknown and deactivated codes are both ErrLinkNotFound.
func (s *ShortenerService) Resolve(ctx context.Context, shortCode string) (*domain.Link, error) {
	link, err := s.cacheRepo.GetLink(ctx, shortCode)
	if err == nil && link != nil {
		metrics.CacheHit.WithLabelValues("resolve").Inc()
		return link, nil
	}
	metrics.CacheMiss.WithLabelValues("resolve").Inc()

	link, err = s.linkRepo.GetByShortCode(ctx, shortCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to resolve short code: %w", err)
	}

	go func() {
		if err := s.cacheRepo.SetLink(context.Background(), link, s.opts.ResolveCacheTTL); err != nil {
			logger.Get().Warn("Failed to cache resolved link", "short_code", link.ShortCode, "error", err)
		}
	}()

	return link, nil
}

// ResolveAndRecord is the redirect path: resolve the code, then record the
// click. Recording problems are logged, never surfaced, so a click is the
// only thing that can be lost, not the redirect.
func (s *ShortenerService) ResolveAndRecord(ctx context.Context, shortCode string, meta domain.ClickMeta) (*domain.Link, error) {
	metrics.Redirects.Inc()

	link, err := s.Resolve(ctx, shortCode)
	if err != nil {
		if errors.Is(err, domain.ErrLinkNotFound) {
			metrics.RedirectsNotFound.Inc()
		}
		return nil, err
	}

	s.recordClick(ctx, link, meta)

	return link, nil
}

// VisitorFingerprint deduplicates unique clicks per (link, visitor) pair.
func VisitorFingerprint(ip, userAgent string) string {
	sum := sha256.Sum256([]byte(ip + "|" + userAgent))
	return hex.EncodeToString(sum[:])
}

func (s *ShortenerService) recordClick(ctx context.Context, link *domain.Link, meta domain.ClickMeta) {
	log := logger.FromContext(ctx)

	fingerprint := VisitorFingerprint(meta.IPAddress, meta.UserAgent)

	isUnique, err := s.clickRepo.TryMarkVisitor(ctx, link.ID, fingerprint)
	if err != nil {
		log.Error("Failed to check visitor uniqueness", "link_id", link.ID, "error", err)
		isUnique = false
	}

	if err := s.linkRepo.IncrementClicks(ctx, link.ID, isUnique); err != nil {
		log.Error("Failed to increment click counters", "link_id", link.ID, "error", err)
	}

	click := &domain.Click{
		LinkID:     link.ID,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
		Referer:    meta.Referer,
		DeviceType: meta.DeviceType,
		IsUnique:   isUnique,
	}

	geoCtx, cancel := context.WithTimeout(ctx, s.opts.GeoTimeout)
	defer cancel()

	if info, err := s.geo.Lookup(geoCtx, meta.IPAddress); err != nil {
		metrics.GeoLookupErrors.Inc()
		log.Warn("Geo lookup failed", "ip", meta.IPAddress, "error", err)
	} else if !info.IsZero() {
		click.CountryCode = &info.CountryCode
		click.CountryName = &info.CountryName
		click.City = &info.City
	}

	if err := s.clickRepo.Insert(ctx, click); err != nil {
		log.Error("Failed to record click", "link_id", link.ID, "error", err)
	}
}

// IsIPBlocked consults the admin-managed IP blacklist. Lookup errors fail
// open so a broken blacklist table cannot take the service down.
func (s *ShortenerService) IsIPBlocked(ctx context.Context, ip string) bool {
	blocked, err := s.blacklistRepo.IsBlocked(ctx, ip)
	if err != nil {
		logger.FromContext(ctx).Error("Failed to check IP blacklist", "ip", ip, "error", err)
		return false
	}
	return blocked
}

func (s *ShortenerService) GetAnalytics(ctx context.Context, shortCode string, days int) (*domain.LinkAnalytics, error) {
	link, err := s.linkRepo.GetByShortCode(ctx, shortCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get link: %w", err)
	}

	return s.analyticsRepo.GetAnalytics(ctx, link.ID, days)
}

func (s *ShortenerService) GetClickHistory(ctx context.Context, shortCode string, page, pageSize int) (*domain.ClickHistory, error) {
	link, err := s.linkRepo.GetByShortCode(ctx, shortCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get link: %w", err)
	}

	return s.analyticsRepo.GetClickHistory(ctx, link.ID, page, pageSize)
}
