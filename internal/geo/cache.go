package geo

import (
	"context"
	"net"

	"github.com/ShalunBdk/VirtexShortLink/internal/domain"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// Cache is a bounded LRU in front of a geolocation Provider, shared
// process-wide. Provider failures are returned to the caller but never
// cached, so a transient outage does not poison entries. Concurrent
// lookups for the same IP are collapsed into one provider call.
type Cache struct {
	provider Provider
	entries  *lru.Cache[string, domain.GeoInfo]
	group    singleflight.Group
}

func NewCache(provider Provider, size int) (*Cache, error) {
	entries, err := lru.New[string, domain.GeoInfo](size)
	if err != nil {
		return nil, err
	}

	return &Cache{
		provider: provider,
		entries:  entries,
	}, nil
}

// Lookup returns the location for an IP, or the zero GeoInfo for private
// addresses and lookup failures.
func (c *Cache) Lookup(ctx context.Context, ip string) (domain.GeoInfo, error) {
	if ip == "" || isPrivateIP(ip) {
		return domain.GeoInfo{}, nil
	}

	if info, ok := c.entries.Get(ip); ok {
		return info, nil
	}

	v, err, _ := c.group.Do(ip, func() (interface{}, error) {
		info, err := c.provider.Lookup(ctx, ip)
		if err != nil {
			return nil, err
		}

		c.entries.Add(ip, info)
		return info, nil
	})
	if err != nil {
		return domain.GeoInfo{}, err
	}

	return v.(domain.GeoInfo), nil
}

// Len reports the current number of cached entries.
func (c *Cache) Len() int {
	return c.entries.Len()
}

func isPrivateIP(addr string) bool {
	ip := net.ParseIP(addr)
	if ip == nil {
		return true
	}

	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified()
}
