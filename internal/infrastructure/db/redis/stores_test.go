package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slooze/inventory-console/internal/core/domain"
	"github.com/slooze/inventory-console/internal/core/ports"
)

// These tests need a running Redis and are skipped unless TEST_REDIS_ADDR is
// set, e.g. TEST_REDIS_ADDR=localhost:6379.
func connectForTest(t *testing.T) *CredentialStore {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	client, err := Connect(context.Background(), Config{Addr: addr, Timeout: time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return NewCredentialStore(client, time.Minute)
}

func TestCredentialStore_RoundTrip(t *testing.T) {
	s := connectForTest(t)
	ctx := context.Background()
	bid := uuid.NewString()

	_, err := s.Get(ctx, bid)
	assert.ErrorIs(t, err, ports.ErrNoCredential)

	require.NoError(t, s.Set(ctx, bid, "tok"))
	tok, err := s.Get(ctx, bid)
	require.NoError(t, err)
	assert.Equal(t, "tok", tok)

	require.NoError(t, s.Clear(ctx, bid))
	_, err = s.Get(ctx, bid)
	assert.ErrorIs(t, err, ports.ErrNoCredential)
}

func TestCredentialStore_ReadRestartsTTL(t *testing.T) {
	s := connectForTest(t)
	ctx := context.Background()
	bid := uuid.NewString()

	require.NoError(t, s.Set(ctx, bid, "tok"))
	require.NoError(t, s.client.Expire(ctx, credentialKey(bid), 5*time.Second).Err())

	_, err := s.Get(ctx, bid)
	require.NoError(t, err)
	ttl, err := s.client.TTL(ctx, credentialKey(bid)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 30*time.Second)
}

func TestProfileCache_RoundTrip(t *testing.T) {
	s := connectForTest(t)
	c := NewProfileCache(s.client, time.Minute)
	ctx := context.Background()
	bid := uuid.NewString()
	user := domain.User{ID: 3, Email: "manager@slooze.xyz", Role: domain.RoleManager}

	require.NoError(t, c.Save(ctx, bid, user))
	got, err := c.Load(ctx, bid)
	require.NoError(t, err)
	assert.Equal(t, user, got)

	require.NoError(t, c.Delete(ctx, bid))
	_, err = c.Load(ctx, bid)
	assert.ErrorIs(t, err, ports.ErrNoProfile)
}

func TestConnect_Unreachable(t *testing.T) {
	_, err := Connect(context.Background(), Config{Addr: "127.0.0.1:1", Timeout: 200 * time.Millisecond})
	assert.Error(t, err)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "credential:abc", credentialKey("abc"))
	assert.Equal(t, "profile:abc", profileKey("abc"))
}
