package geo

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ShalunBdk/VirtexShortLink/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	mu      sync.Mutex
	calls   int32
	results map[string]domain.GeoInfo
	err     error
	delay   time.Duration
}

func (f *fakeProvider) Lookup(ctx context.Context, ip string) (domain.GeoInfo, error) {
	atomic.AddInt32(&f.calls, 1)

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return domain.GeoInfo{}, ctx.Err()
		}
	}

	if f.err != nil {
		return domain.GeoInfo{}, f.err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.results[ip], nil
}

func (f *fakeProvider) callCount() int {
	return int(atomic.LoadInt32(&f.calls))
}

func TestCache_MissThenHit(t *testing.T) {
	provider := &fakeProvider{
		results: map[string]domain.GeoInfo{
			"203.0.113.7": {CountryCode: "DE", CountryName: "Germany", City: "Berlin"},
		},
	}
	cache, err := NewCache(provider, 10)
	require.NoError(t, err)
	ctx := context.Background()

	info, err := cache.Lookup(ctx, "203.0.113.7")
	assert.NoError(t, err)
	assert.Equal(t, "DE", info.CountryCode)
	assert.Equal(t, 1, provider.callCount())

	info, err = cache.Lookup(ctx, "203.0.113.7")
	assert.NoError(t, err)
	assert.Equal(t, "Berlin", info.City)
	assert.Equal(t, 1, provider.callCount(), "second lookup should be served from cache")
}

func TestCache_PrivateIPShortCircuits(t *testing.T) {
	provider := &fakeProvider{}
	cache, err := NewCache(provider, 10)
	require.NoError(t, err)

	for _, ip := range []string{"127.0.0.1", "10.1.2.3", "192.168.0.5", "::1", "", "garbage"} {
		info, err := cache.Lookup(context.Background(), ip)
		assert.NoError(t, err)
		assert.True(t, info.IsZero(), "expected Unknown for %s", ip)
	}

	assert.Equal(t, 0, provider.callCount(), "private IPs must never reach the provider")
}

func TestCache_FailureNotCached(t *testing.T) {
	provider := &fakeProvider{err: errors.New("provider down")}
	cache, err := NewCache(provider, 10)
	require.NoError(t, err)
	ctx := context.Background()

	info, err := cache.Lookup(ctx, "203.0.113.7")
	assert.Error(t, err)
	assert.True(t, info.IsZero())
	assert.Equal(t, 0, cache.Len(), "failures must not be cached")

	// provider recovers; next lookup goes through and is cached
	provider.err = nil
	provider.results = map[string]domain.GeoInfo{"203.0.113.7": {CountryCode: "US"}}

	info, err = cache.Lookup(ctx, "203.0.113.7")
	assert.NoError(t, err)
	assert.Equal(t, "US", info.CountryCode)
	assert.Equal(t, 1, cache.Len())
}

func TestCache_LRUEviction(t *testing.T) {
	provider := &fakeProvider{
		results: map[string]domain.GeoInfo{
			"203.0.113.1": {CountryCode: "A1"},
			"203.0.113.2": {CountryCode: "A2"},
			"203.0.113.3": {CountryCode: "A3"},
		},
	}
	cache, err := NewCache(provider, 2)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = cache.Lookup(ctx, "203.0.113.1")
	require.NoError(t, err)
	_, err = cache.Lookup(ctx, "203.0.113.2")
	require.NoError(t, err)
	_, err = cache.Lookup(ctx, "203.0.113.3")
	require.NoError(t, err)

	assert.Equal(t, 3, provider.callCount())

	// the first IP was least recently used and got evicted
	_, err = cache.Lookup(ctx, "203.0.113.1")
	require.NoError(t, err)
	assert.Equal(t, 4, provider.callCount(), "evicted entry should be a fresh miss")

	// the third IP is still cached
	_, err = cache.Lookup(ctx, "203.0.113.3")
	require.NoError(t, err)
	assert.Equal(t, 4, provider.callCount())
}

func TestCache_ConcurrentLookupsDeduplicated(t *testing.T) {
	provider := &fakeProvider{
		results: map[string]domain.GeoInfo{"203.0.113.7": {CountryCode: "FR"}},
		delay:   50 * time.Millisecond,
	}
	cache, err := NewCache(provider, 10)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			info, err := cache.Lookup(context.Background(), "203.0.113.7")
			assert.NoError(t, err)
			assert.Equal(t, "FR", info.CountryCode)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, provider.callCount(), "in-flight lookups for the same IP should be collapsed")
}

func TestCache_TimeoutReturnsUnknown(t *testing.T) {
	provider := &fakeProvider{delay: time.Second}
	cache, err := NewCache(provider, 10)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	info, err := cache.Lookup(ctx, "203.0.113.7")
	elapsed := time.Since(start)

	assert.Error(t, err)
	assert.True(t, info.IsZero())
	assert.Less(t, elapsed, 500*time.Millisecond, "lookup must respect the context deadline")
}
