package ports

import (
	"context"
	"errors"
)

// ErrNoCredential is returned by CredentialStore.Get when the browser has no
// stored token.
var ErrNoCredential = errors.New("no credential stored")

// CredentialStore persists exactly one bearer token per browser. It survives
// process restarts when backed by Redis.
type CredentialStore interface {
	Set(ctx context.Context, browserID, token string) error
	Get(ctx context.Context, browserID string) (string, error)
	Clear(ctx context.Context, browserID string) error
}
