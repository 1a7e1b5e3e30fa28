package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slooze/inventory-console/internal/core/domain"
	"github.com/slooze/inventory-console/internal/core/ports"
)

func TestCredentialStore_SetGetClear(t *testing.T) {
	ctx := context.Background()
	s := NewCredentialStore(0, 0)

	_, err := s.Get(ctx, "b1")
	assert.ErrorIs(t, err, ports.ErrNoCredential)

	require.NoError(t, s.Set(ctx, "b1", "tok-1"))
	require.NoError(t, s.Set(ctx, "b1", "tok-2"))
	tok, err := s.Get(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "tok-2", tok, "one token per browser")

	_, err = s.Get(ctx, "b2")
	assert.ErrorIs(t, err, ports.ErrNoCredential)

	require.NoError(t, s.Clear(ctx, "b1"))
	_, err = s.Get(ctx, "b1")
	assert.ErrorIs(t, err, ports.ErrNoCredential)
}

func TestCredentialStore_Expires(t *testing.T) {
	ctx := context.Background()
	s := NewCredentialStore(0, 10*time.Millisecond)

	require.NoError(t, s.Set(ctx, "b1", "tok"))
	require.Eventually(t, func() bool {
		_, err := s.Get(ctx, "b1")
		return err != nil
	}, time.Second, 5*time.Millisecond)
}

func TestCredentialStore_ReadExtendsExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewCredentialStore(0, 50*time.Millisecond)
	require.NoError(t, s.Set(ctx, "b1", "tok"))

	// keep reading for several ttls; each read restarts the clock
	deadline := time.Now().Add(200 * time.Millisecond)
	for time.Now().Before(deadline) {
		tok, err := s.Get(ctx, "b1")
		require.NoError(t, err)
		require.Equal(t, "tok", tok)
		time.Sleep(10 * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		_, ok := s.tokens.Peek("b1")
		return !ok
	}, time.Second, 5*time.Millisecond, "an unread token still expires")
}

func TestProfileCache_ReadExtendsExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewProfileCache(0, 50*time.Millisecond)
	require.NoError(t, c.Save(ctx, "b1", domain.User{ID: 1, Email: "m@slooze.xyz", Role: domain.RoleManager}))

	deadline := time.Now().Add(200 * time.Millisecond)
	for time.Now().Before(deadline) {
		_, err := c.Load(ctx, "b1")
		require.NoError(t, err)
		time.Sleep(10 * time.Millisecond)
	}
}

func TestProfileCache_SaveLoadDelete(t *testing.T) {
	ctx := context.Background()
	c := NewProfileCache(0, 0)
	user := domain.User{ID: 9, Email: "keeper@slooze.xyz", Role: domain.RoleStoreKeeper}

	_, err := c.Load(ctx, "b1")
	assert.ErrorIs(t, err, ports.ErrNoProfile)

	require.NoError(t, c.Save(ctx, "b1", user))
	got, err := c.Load(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, user, got)

	require.NoError(t, c.Delete(ctx, "b1"))
	_, err = c.Load(ctx, "b1")
	assert.ErrorIs(t, err, ports.ErrNoProfile)
}
