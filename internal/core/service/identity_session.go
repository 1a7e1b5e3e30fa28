package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/slooze/inventory-console/internal/core/domain"
	"github.com/slooze/inventory-console/internal/core/ports"
)

// SessionState is the authentication state of one browser.
type SessionState string

const (
	StateAnonymous     SessionState = "ANONYMOUS"
	StateAuthenticated SessionState = "AUTHENTICATED"
)

// SessionSnapshot is an immutable view of an IdentitySession.
type SessionSnapshot struct {
	State SessionState
	User  domain.User
}

func (s SessionSnapshot) Authenticated() bool {
	return s.State == StateAuthenticated
}

// IdentitySession holds the signed-in user of one browser. It changes state
// through Login, Logout, Restore and Verify; every transition is delivered to
// subscribers synchronously, after the state has changed.
type IdentitySession struct {
	creds     *Credentials
	profiles  ports.ProfileCache
	browserID string
	log       zerolog.Logger

	// transitions serialises every state change so subscribers see
	// changes in the order they happened.
	transitions sync.Mutex

	mu    sync.Mutex
	state SessionState
	user  domain.User

	subMu   sync.Mutex
	subs    map[int]func(SessionSnapshot)
	nextSub int
}

func NewIdentitySession(creds *Credentials, profiles ports.ProfileCache, browserID string, log zerolog.Logger) *IdentitySession {
	return &IdentitySession{
		creds:     creds,
		profiles:  profiles,
		browserID: browserID,
		log:       log,
		state:     StateAnonymous,
		subs:      make(map[int]func(SessionSnapshot)),
	}
}

// Login stores token and makes user the current identity, replacing any
// previous one. If the token cannot be stored the session stays anonymous.
func (s *IdentitySession) Login(ctx context.Context, token string, user domain.User) error {
	if token == "" {
		return fmt.Errorf("login: %w", domain.ErrUnauthenticated)
	}

	s.transitions.Lock()
	defer s.transitions.Unlock()

	s.mu.Lock()
	if err := s.creds.Set(ctx, token); err != nil {
		s.state = StateAnonymous
		s.user = domain.User{}
		s.mu.Unlock()
		return fmt.Errorf("login: %w", err)
	}
	if err := s.profiles.Save(ctx, s.browserID, user); err != nil {
		s.log.Warn().Err(err).Str("browser_id", s.browserID).Msg("failed to cache profile")
	}
	s.state = StateAuthenticated
	s.user = user
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.log.Info().Str("browser_id", s.browserID).Str("role", string(user.Role)).Msg("session authenticated")
	s.emit(snap)
	return nil
}

// Logout clears the token, the cached profile and the current identity.
func (s *IdentitySession) Logout(ctx context.Context) {
	s.transitions.Lock()
	defer s.transitions.Unlock()

	s.mu.Lock()
	s.creds.Clear(ctx)
	if err := s.profiles.Delete(ctx, s.browserID); err != nil {
		s.log.Warn().Err(err).Str("browser_id", s.browserID).Msg("failed to delete cached profile")
	}
	wasAuthenticated := s.state == StateAuthenticated
	s.state = StateAnonymous
	s.user = domain.User{}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if wasAuthenticated {
		s.log.Info().Str("browser_id", s.browserID).Msg("session ended")
	}
	s.emit(snap)
}

func (s *IdentitySession) CurrentUser() (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user, s.state == StateAuthenticated
}

func (s *IdentitySession) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateAuthenticated
}

func (s *IdentitySession) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn to receive every future transition. The returned
// function removes the subscription.
func (s *IdentitySession) Subscribe(fn func(SessionSnapshot)) (cancel func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

// Restore re-derives the identity for a stored token. The cached profile is
// tried first, then the claims carried by the token itself. When neither
// yields a usable identity the session stays anonymous and the stale token is
// left in place. An error means the credential store could not be read and
// Restore should be tried again later.
func (s *IdentitySession) Restore(ctx context.Context) error {
	s.transitions.Lock()
	defer s.transitions.Unlock()

	token, err := s.creds.Lookup(ctx)
	if errors.Is(err, ports.ErrNoCredential) {
		return nil
	}
	if err != nil {
		s.log.Warn().Err(err).Str("browser_id", s.browserID).Msg("credential store unavailable, session not restored")
		return fmt.Errorf("restore: %w", err)
	}

	user, err := s.profiles.Load(ctx, s.browserID)
	if err != nil {
		if !errors.Is(err, ports.ErrNoProfile) {
			s.log.Warn().Err(err).Str("browser_id", s.browserID).Msg("profile cache unavailable")
		}
		user, err = userFromToken(token)
		if err != nil {
			s.log.Debug().Err(err).Str("browser_id", s.browserID).Msg("stored token carries no identity, staying anonymous")
			return nil
		}
	}

	s.mu.Lock()
	s.state = StateAuthenticated
	s.user = user
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.log.Debug().Str("browser_id", s.browserID).Str("role", string(user.Role)).Msg("session restored")
	s.emit(snap)
	return nil
}

// Verify ends an authenticated session whose token is no longer stored, for
// example because it expired. A store that cannot be read leaves the session
// as it is.
func (s *IdentitySession) Verify(ctx context.Context) {
	s.transitions.Lock()
	defer s.transitions.Unlock()

	if !s.IsAuthenticated() {
		return
	}
	if _, err := s.creds.Lookup(ctx); !errors.Is(err, ports.ErrNoCredential) {
		return
	}

	if err := s.profiles.Delete(ctx, s.browserID); err != nil {
		s.log.Warn().Err(err).Str("browser_id", s.browserID).Msg("failed to delete cached profile")
	}
	s.mu.Lock()
	s.state = StateAnonymous
	s.user = domain.User{}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.log.Info().Str("browser_id", s.browserID).Msg("stored token gone, session ended")
	s.emit(snap)
}

func (s *IdentitySession) snapshotLocked() SessionSnapshot {
	return SessionSnapshot{State: s.state, User: s.user}
}

func (s *IdentitySession) emit(snap SessionSnapshot) {
	s.subMu.Lock()
	fns := make([]func(SessionSnapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

var errNoIdentityClaims = errors.New("token has no identity claims")

// userFromToken reads the identity claims of a JWT without verifying its
// signature. The catalog API remains the authority on whether the token is
// still valid.
func userFromToken(token string) (domain.User, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return domain.User{}, fmt.Errorf("decode token: %w", err)
	}

	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	if email == "" || !domain.Role(role).Valid() {
		return domain.User{}, errNoIdentityClaims
	}

	var id domain.ID
	switch v := firstClaim(claims, "id", "sub", "userId").(type) {
	case float64:
		id = domain.ID(v)
	case string:
		if err := id.UnmarshalJSON([]byte(v)); err != nil {
			return domain.User{}, fmt.Errorf("decode token id: %w", err)
		}
	default:
		return domain.User{}, errNoIdentityClaims
	}

	return domain.User{ID: id, Email: email, Role: domain.Role(role)}, nil
}

func firstClaim(claims jwt.MapClaims, names ...string) any {
	for _, name := range names {
		if v, ok := claims[name]; ok {
			return v
		}
	}
	return nil
}
