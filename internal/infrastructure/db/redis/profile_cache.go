package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/slooze/inventory-console/internal/core/domain"
	"github.com/slooze/inventory-console/internal/core/ports"
)

// ProfileCache stores the signed-in user of a browser as JSON.
// Key format: profile:<browser_id>
type ProfileCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

var _ ports.ProfileCache = (*ProfileCache)(nil)

func NewProfileCache(client redis.Cmdable, ttl time.Duration) *ProfileCache {
	return &ProfileCache{client: client, ttl: ttl}
}

func (c *ProfileCache) Save(ctx context.Context, browserID string, user domain.User) error {
	b, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := c.client.Set(ctx, profileKey(browserID), b, c.ttl).Err(); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func (c *ProfileCache) Load(ctx context.Context, browserID string) (domain.User, error) {
	b, err := getRefreshed(ctx, c.client, profileKey(browserID), c.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.User{}, ports.ErrNoProfile
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("load profile: %w", err)
	}

	var user domain.User
	if err := json.Unmarshal(b, &user); err != nil {
		return domain.User{}, fmt.Errorf("decode profile: %w", err)
	}
	return user, nil
}

func (c *ProfileCache) Delete(ctx context.Context, browserID string) error {
	if err := c.client.Del(ctx, profileKey(browserID)).Err(); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}

func profileKey(browserID string) string {
	return "profile:" + browserID
}
