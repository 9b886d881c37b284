package mocks

import (
	"context"
	"time"

	"github.com/ShalunBdk/VirtexShortLink/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockLinkRepository struct {
	mock.Mock
}

func (m *MockLinkRepository) Create(ctx context.Context, link *domain.Link) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

func (m *MockLinkRepository) GetByShortCode(ctx context.Context, shortCode string) (*domain.Link, error) {
	args := m.Called(ctx, shortCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Link), args.Error(1)
}

func (m *MockLinkRepository) GetByNormalizedURL(ctx context.Context, normalizedURL string) (*domain.Link, error) {
	args := m.Called(ctx, normalizedURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Link), args.Error(1)
}

func (m *MockLinkRepository) IncrementClicks(ctx context.Context, linkID int64, unique bool) error {
	args := m.Called(ctx, linkID, unique)
	return args.Error(0)
}

type MockClickRepository struct {
	mock.Mock
}

func (m *MockClickRepository) Insert(ctx context.Context, click *domain.Click) error {
	args := m.Called(ctx, click)
	return args.Error(0)
}

func (m *MockClickRepository) TryMarkVisitor(ctx context.Context, linkID int64, fingerprint string) (bool, error) {
	args := m.Called(ctx, linkID, fingerprint)
	return args.Bool(0), args.Error(1)
}

type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) GetLink(ctx context.Context, shortCode string) (*domain.Link, error) {
	args := m.Called(ctx, shortCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Link), args.Error(1)
}

func (m *MockCacheRepository) SetLink(ctx context.Context, link *domain.Link, ttl time.Duration) error {
	args := m.Called(ctx, link, ttl)
	return args.Error(0)
}

type MockAnalyticsRepository struct {
	mock.Mock
}

func (m *MockAnalyticsRepository) GetAnalytics(ctx context.Context, linkID int64, days int) (*domain.LinkAnalytics, error) {
	args := m.Called(ctx, linkID, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LinkAnalytics), args.Error(1)
}

func (m *MockAnalyticsRepository) GetClickHistory(ctx context.Context, linkID int64, page, pageSize int) (*domain.ClickHistory, error) {
	args := m.Called(ctx, linkID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClickHistory), args.Error(1)
}

type MockBlacklistRepository struct {
	mock.Mock
}

func (m *MockBlacklistRepository) IsBlocked(ctx context.Context, ip string) (bool, error) {
	args := m.Called(ctx, ip)
	return args.Bool(0), args.Error(1)
}

type MockGeoResolver struct {
	mock.Mock
}

func (m *MockGeoResolver) Lookup(ctx context.Context, ip string) (domain.GeoInfo, error) {
	args := m.Called(ctx, ip)
	return args.Get(0).(domain.GeoInfo), args.Error(1)
}
