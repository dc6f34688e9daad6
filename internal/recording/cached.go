package recording

import (
	"context"
	"log/slog"
	"time"

	"github.com/kiranshivaraju/callcoach/internal/cache"
	"github.com/kiranshivaraju/callcoach/pkg/models"
)

// CachedClient serves GetCall and GetUser from the cache when possible.
// Cache failures are logged and fall through to the upstream client.
type CachedClient struct {
	Client
	cache cache.Cache
	ttl   time.Duration
}

func NewCachedClient(inner Client, c cache.Cache, ttl time.Duration) *CachedClient {
	return &CachedClient{Client: inner, cache: c, ttl: ttl}
}

func (c *CachedClient) GetCall(ctx context.Context, callID string) (*models.CallRecord, error) {
	return readThrough(ctx, c, cache.CallKey(callID), func() (*models.CallRecord, error) {
		return c.Client.GetCall(ctx, callID)
	})
}

func (c *CachedClient) GetUser(ctx context.Context, userID string) (*User, error) {
	return readThrough(ctx, c, cache.UserKey(userID), func() (*User, error) {
		return c.Client.GetUser(ctx, userID)
	})
}

func readThrough[T any](ctx context.Context, c *CachedClient, key string, fetch func() (*T, error)) (*T, error) {
	hit, found, err := cache.GetJSON[T](ctx, c.cache, key)
	if err != nil {
		slog.Warn("recording cache read failed", "key", key, "error", err)
	} else if found {
		return &hit, nil
	}

	fresh, err := fetch()
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(ctx, c.cache, key, fresh, c.ttl); err != nil {
		slog.Warn("recording cache write failed", "key", key, "error", err)
	}
	return fresh, nil
}

var _ Client = (*CachedClient)(nil)
