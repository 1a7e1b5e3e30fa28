package service

import (
	"context"
	"sync"

	"github.com/slooze/inventory-console/internal/core/domain"
	"github.com/slooze/inventory-console/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stores
// ---------------------------------------------------------------------------

type stubCredentialStore struct {
	mu     sync.Mutex
	tokens map[string]string
	setErr error
	getErr error
}

func newStubCredentialStore() *stubCredentialStore {
	return &stubCredentialStore{tokens: make(map[string]string)}
}

func (s *stubCredentialStore) Set(_ context.Context, browserID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.tokens[browserID] = token
	return nil
}

func (s *stubCredentialStore) Get(_ context.Context, browserID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return "", s.getErr
	}
	t, ok := s.tokens[browserID]
	if !ok {
		return "", ports.ErrNoCredential
	}
	return t, nil
}

func (s *stubCredentialStore) Clear(_ context.Context, browserID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, browserID)
	return nil
}

type stubProfileCache struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func newStubProfileCache() *stubProfileCache {
	return &stubProfileCache{users: make(map[string]domain.User)}
}

func (c *stubProfileCache) Save(_ context.Context, browserID string, user domain.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.users[browserID] = user
	return nil
}

func (c *stubProfileCache) Load(_ context.Context, browserID string) (domain.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	u, ok := c.users[browserID]
	if !ok {
		return domain.User{}, ports.ErrNoProfile
	}
	return u, nil
}

func (c *stubProfileCache) Delete(_ context.Context, browserID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.users, browserID)
	return nil
}

// ---------------------------------------------------------------------------
// Gateway / transport
// ---------------------------------------------------------------------------

type stubGateway struct {
	mu    sync.Mutex
	calls []string
	fn    func(ctx context.Context, op ports.Operation, vars map[string]any, out any) error
}

func (g *stubGateway) Execute(ctx context.Context, op ports.Operation, vars map[string]any, out any) error {
	g.mu.Lock()
	g.calls = append(g.calls, op.Name)
	g.mu.Unlock()
	return g.fn(ctx, op, vars, out)
}

func (g *stubGateway) callCount(name string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, c := range g.calls {
		if c == name {
			n++
		}
	}
	return n
}

type transportCall struct {
	op    string
	token string
}

type stubTransport struct {
	mu    sync.Mutex
	calls []transportCall
	err   error
}

func (t *stubTransport) Do(_ context.Context, op ports.Operation, _ map[string]any, token string, _ any) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = append(t.calls, transportCall{op: op.Name, token: token})
	return t.err
}

func (t *stubTransport) last() transportCall {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls[len(t.calls)-1]
}
