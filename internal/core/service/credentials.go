package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/slooze/inventory-console/internal/core/ports"
)

// Credentials is the credential store bound to one browser. A storage
// failure on read is reported as an absent token.
type Credentials struct {
	store     ports.CredentialStore
	browserID string
	log       zerolog.Logger
}

func NewCredentials(store ports.CredentialStore, browserID string, log zerolog.Logger) *Credentials {
	return &Credentials{store: store, browserID: browserID, log: log}
}

// Set stores token, replacing any previous one.
func (c *Credentials) Set(ctx context.Context, token string) error {
	if err := c.store.Set(ctx, c.browserID, token); err != nil {
		return fmt.Errorf("credentials: %w", err)
	}
	return nil
}

// Get returns the stored token and whether one is present.
func (c *Credentials) Get(ctx context.Context) (string, bool) {
	token, err := c.Lookup(ctx)
	if err != nil {
		if !errors.Is(err, ports.ErrNoCredential) {
			c.log.Warn().Err(err).Str("browser_id", c.browserID).Msg("credential store unavailable, treating token as absent")
		}
		return "", false
	}
	return token, true
}

// Lookup returns the stored token. It fails with ports.ErrNoCredential when
// the store holds none, and with the store's error when it could not be read.
func (c *Credentials) Lookup(ctx context.Context) (string, error) {
	token, err := c.store.Get(ctx, c.browserID)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", ports.ErrNoCredential
	}
	return token, nil
}

// Clear removes the stored token. Failures are logged and ignored.
func (c *Credentials) Clear(ctx context.Context) {
	if err := c.store.Clear(ctx, c.browserID); err != nil {
		c.log.Warn().Err(err).Str("browser_id", c.browserID).Msg("failed to clear credential")
	}
}
