// Package memory provides process-local browser stores used when Redis is not
// configured. Entries do not survive a restart.
package memory

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/slooze/inventory-console/internal/core/domain"
	"github.com/slooze/inventory-console/internal/core/ports"
)

// CredentialStore keeps tokens in an expiring LRU. size bounds the number of
// browsers; zero means unbounded. A read restarts the token's ttl.
type CredentialStore struct {
	tokens *expirable.LRU[string, string]
}

var _ ports.CredentialStore = (*CredentialStore)(nil)

func NewCredentialStore(size int, ttl time.Duration) *CredentialStore {
	return &CredentialStore{tokens: expirable.NewLRU[string, string](size, nil, ttl)}
}

func (s *CredentialStore) Set(_ context.Context, browserID, token string) error {
	s.tokens.Add(browserID, token)
	return nil
}

func (s *CredentialStore) Get(_ context.Context, browserID string) (string, error) {
	token, ok := s.tokens.Get(browserID)
	if !ok {
		return "", ports.ErrNoCredential
	}
	s.tokens.Add(browserID, token)
	return token, nil
}

func (s *CredentialStore) Clear(_ context.Context, browserID string) error {
	s.tokens.Remove(browserID)
	return nil
}

// ProfileCache keeps signed-in users in an expiring LRU. A read restarts the
// entry's ttl.
type ProfileCache struct {
	users *expirable.LRU[string, domain.User]
}

var _ ports.ProfileCache = (*ProfileCache)(nil)

func NewProfileCache(size int, ttl time.Duration) *ProfileCache {
	return &ProfileCache{users: expirable.NewLRU[string, domain.User](size, nil, ttl)}
}

func (c *ProfileCache) Save(_ context.Context, browserID string, user domain.User) error {
	c.users.Add(browserID, user)
	return nil
}

func (c *ProfileCache) Load(_ context.Context, browserID string) (domain.User, error) {
	user, ok := c.users.Get(browserID)
	if !ok {
		return domain.User{}, ports.ErrNoProfile
	}
	c.users.Add(browserID, user)
	return user, nil
}

func (c *ProfileCache) Delete(_ context.Context, browserID string) error {
	c.users.Remove(browserID)
	return nil
}
