package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// GetJSON reads key and decodes it into a T. A corrupt entry is reported as an
// error rather than a miss so callers can log it.
func GetJSON[T any](ctx context.Context, c Cache, key string) (T, bool, error) {
	var v T
	data, found, err := c.Get(ctx, key)
	if err != nil || !found {
		return v, false, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, false, fmt.Errorf("decoding cache entry %s: %w", key, err)
	}
	return v, true, nil
}

// SetJSON encodes v and stores it under key for ttl.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding cache entry %s: %w", key, err)
	}
	return c.Set(ctx, key, data, ttl)
}
