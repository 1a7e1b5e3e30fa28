package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/slooze/inventory-console/internal/core/ports"
)

// CredentialStore keeps one bearer token per browser.
// Key format: credential:<browser_id>
type CredentialStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

var _ ports.CredentialStore = (*CredentialStore)(nil)

// NewCredentialStore creates a CredentialStore. Every read restarts a token's
// ttl; a zero ttl keeps tokens until they are cleared.
func NewCredentialStore(client redis.Cmdable, ttl time.Duration) *CredentialStore {
	return &CredentialStore{client: client, ttl: ttl}
}

func (s *CredentialStore) Set(ctx context.Context, browserID, token string) error {
	if err := s.client.Set(ctx, credentialKey(browserID), token, s.ttl).Err(); err != nil {
		return fmt.Errorf("store credential: %w", err)
	}
	return nil
}

func (s *CredentialStore) Get(ctx context.Context, browserID string) (string, error) {
	token, err := getRefreshed(ctx, s.client, credentialKey(browserID), s.ttl).Result()
	if errors.Is(err, redis.Nil) {
		return "", ports.ErrNoCredential
	}
	if err != nil {
		return "", fmt.Errorf("load credential: %w", err)
	}
	return token, nil
}

func (s *CredentialStore) Clear(ctx context.Context, browserID string) error {
	if err := s.client.Del(ctx, credentialKey(browserID)).Err(); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}

// getRefreshed reads key and restarts its ttl in the same command. GETEX with
// no expiry would persist the key, so a zero ttl falls back to GET.
func getRefreshed(ctx context.Context, client redis.Cmdable, key string, ttl time.Duration) *redis.StringCmd {
	if ttl > 0 {
		return client.GetEx(ctx, key, ttl)
	}
	return client.Get(ctx, key)
}

func credentialKey(browserID string) string {
	return "credential:" + browserID
}
