package mocks

import (
	"context"

	"github.com/ShalunBdk/VirtexShortLink/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockShortenerService struct {
	mock.Mock
}

func (m *MockShortenerService) ShortenURL(ctx context.Context, req *domain.ShortenRequest, createdBy string) (*domain.ShortenResult, error) {
	args := m.Called(ctx, req, createdBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShortenResult), args.Error(1)
}

func (m *MockShortenerService) ResolveAndRecord(ctx context.Context, shortCode string, meta domain.ClickMeta) (*domain.Link, error) {
	args := m.Called(ctx, shortCode, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Link), args.Error(1)
}

func (m *MockShortenerService) IsIPBlocked(ctx context.Context, ip string) bool {
	args := m.Called(ctx, ip)
	return args.Bool(0)
}

type MockAnalyticsService struct {
	mock.Mock
}

func (m *MockAnalyticsService) GetAnalytics(ctx context.Context, shortCode string, days int) (*domain.LinkAnalytics, error) {
	args := m.Called(ctx, shortCode, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LinkAnalytics), args.Error(1)
}

func (m *MockAnalyticsService) GetClickHistory(ctx context.Context, shortCode string, page, pageSize int) (*domain.ClickHistory, error) {
	args := m.Called(ctx, shortCode, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClickHistory), args.Error(1)
}
