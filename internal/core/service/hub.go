package service

import (
	"context"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"

	"github.com/slooze/inventory-console/internal/core/ports"
	"github.com/slooze/inventory-console/internal/pkg/metrics"
)

const (
	defaultMaxBrowsers = 10000
	defaultScopeTTL    = 30 * time.Minute

	// syncTimeout bounds the store reads made when a scope is handed out.
	syncTimeout = 5 * time.Second
)

// Scope wires the per-browser components together. Components of one scope
// never share state with another browser.
type Scope struct {
	BrowserID   string
	Credentials *Credentials
	Session     *IdentitySession
	Gateway     *Gateway
	Catalog     *Catalog

	syncMu   sync.Mutex
	restored bool
}

// sync brings the session in line with the credential store. Until a restore
// has read the store successfully it is retried on every access; afterwards
// the session is only checked for a token that has gone.
func (s *Scope) sync(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), syncTimeout)
	defer cancel()

	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	if !s.restored {
		s.restored = s.Session.Restore(ctx) == nil
		return
	}
	s.Session.Verify(ctx)
}

// HubConfig bounds the number of browsers held in memory and how long an
// idle one is kept.
type HubConfig struct {
	MaxBrowsers int
	IdleTTL     time.Duration
}

// Hub hands out the Scope of a browser, creating and restoring it on first
// use. Idle scopes are dropped from memory after IdleTTL; the stored token
// is kept, so the browser's next request restores its session.
type Hub struct {
	creds     ports.CredentialStore
	profiles  ports.ProfileCache
	transport ports.GraphQLTransport
	validate  *validator.Validate
	log       zerolog.Logger

	mu     sync.Mutex
	scopes *expirable.LRU[string, *Scope]
}

func NewHub(cfg HubConfig, creds ports.CredentialStore, profiles ports.ProfileCache, transport ports.GraphQLTransport, log zerolog.Logger) *Hub {
	if cfg.MaxBrowsers <= 0 {
		cfg.MaxBrowsers = defaultMaxBrowsers
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = defaultScopeTTL
	}

	h := &Hub{
		creds:     creds,
		profiles:  profiles,
		transport: transport,
		validate:  validator.New(),
		log:       log,
	}
	h.scopes = expirable.NewLRU[string, *Scope](cfg.MaxBrowsers, func(_ string, _ *Scope) {
		metrics.ActiveBrowsers.Dec()
	}, cfg.IdleTTL)
	return h
}

// Scope returns the scope of browserID. Every access extends its lifetime
// and syncs the session with the credential store before it is returned.
func (h *Hub) Scope(ctx context.Context, browserID string) *Scope {
	h.mu.Lock()
	s, ok := h.scopes.Get(browserID)
	if !ok {
		s = h.newScope(browserID)
		metrics.ActiveBrowsers.Inc()
	}
	h.scopes.Add(browserID, s)
	h.mu.Unlock()

	s.sync(ctx)
	return s
}

// Peek returns the scope of browserID without creating it.
func (h *Hub) Peek(browserID string) (*Scope, bool) {
	return h.scopes.Peek(browserID)
}

func (h *Hub) Len() int {
	return h.scopes.Len()
}

func (h *Hub) newScope(browserID string) *Scope {
	creds := NewCredentials(h.creds, browserID, h.component("credentials"))
	gw := NewGateway(h.transport, creds, h.component("gateway"))

	return &Scope{
		BrowserID:   browserID,
		Credentials: creds,
		Session:     NewIdentitySession(creds, h.profiles, browserID, h.component("session")),
		Gateway:     gw,
		Catalog:     NewCatalog(gw, h.validate, h.component("catalog")),
	}
}

func (h *Hub) component(name string) zerolog.Logger {
	return h.log.With().Str("component", name).Logger()
}
