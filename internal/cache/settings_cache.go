package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// SettingsCache is a read-through cache for the flattened public settings
// map. Writers invalidate explicitly; there is no refresh loop.
type SettingsCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewSettingsCache(client *redis.Client, keyPrefix string, ttl time.Duration) *SettingsCache {
	return &SettingsCache{
		client: client,
		key:    keyPrefix + ":settings:public",
		ttl:    ttl,
	}
}

// Get returns the cached map and whether it was present. Any redis or
// decode failure reads as a miss.
func (c *SettingsCache) Get(ctx context.Context) (map[string]any, bool) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		return nil, false
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false
	}
	return out, true
}

func (c *SettingsCache) Set(ctx context.Context, settings map[string]any) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key, raw, c.ttl).Err()
}

func (c *SettingsCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, c.key).Err()
}
