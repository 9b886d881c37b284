package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ShalunBdk/VirtexShortLink/internal/domain"
	"github.com/redis/go-redis/v9"
)

// LinkCache fronts the links table on the redirect path. Keys are
// case-folded so the cache matches the case-insensitive DB lookup.
type LinkCache struct {
	client *redis.Client
}

func NewLinkCache(client *redis.Client) *LinkCache {
	return &LinkCache{client: client}
}

func cacheKey(shortCode string) string {
	return fmt.Sprintf("link:%s", strings.ToLower(shortCode))
}

func (r *LinkCache) GetLink(ctx context.Context, shortCode string) (*domain.Link, error) {
	data, err := r.client.Get(ctx, cacheKey(shortCode)).Result()
	if err != nil {
		return nil, err
	}

	var link domain.Link
	if err := json.Unmarshal([]byte(data), &link); err != nil {
		return nil, err
	}

	return &link, nil
}

func (r *LinkCache) SetLink(ctx context.Context, link *domain.Link, ttl time.Duration) error {
	data, err := json.Marshal(link)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, cacheKey(link.ShortCode), data, ttl).Err()
}

// DeleteLink drops a cached entry, used when a link is deactivated so the
// cache cannot serve a dead code for the rest of its TTL.
func (r *LinkCache) DeleteLink(ctx context.Context, shortCode string) error {
	return r.client.Del(ctx, cacheKey(shortCode)).Err()
}
