package service

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/slooze/inventory-console/internal/core/domain"
)

var (
	manager     = domain.User{ID: 1, Email: "manager@slooze.xyz", Role: domain.RoleManager}
	storeKeeper = domain.User{ID: 2, Email: "keeper@slooze.xyz", Role: domain.RoleStoreKeeper}
)

func newTestSession(store *stubCredentialStore, profiles *stubProfileCache) *IdentitySession {
	creds := NewCredentials(store, "browser-1", zerolog.Nop())
	return NewIdentitySession(creds, profiles, "browser-1", zerolog.Nop())
}

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("api-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

func TestIdentitySession_StartsAnonymous(t *testing.T) {
	s := newTestSession(newStubCredentialStore(), newStubProfileCache())

	if s.IsAuthenticated() {
		t.Fatal("new session must be anonymous")
	}
	if _, ok := s.CurrentUser(); ok {
		t.Fatal("new session must have no current user")
	}
	if got := s.Snapshot().State; got != StateAnonymous {
		t.Fatalf("expected %s, got %s", StateAnonymous, got)
	}
}

func TestIdentitySession_LoginLogoutSequences(t *testing.T) {
	ctx := context.Background()
	store := newStubCredentialStore()
	s := newTestSession(store, newStubProfileCache())

	users := []domain.User{manager, storeKeeper, manager}
	for i, u := range users {
		if s.IsAuthenticated() {
			t.Fatalf("round %d: authenticated before login", i)
		}
		if err := s.Login(ctx, "token-"+u.Email, u); err != nil {
			t.Fatalf("round %d: login: %v", i, err)
		}
		if !s.IsAuthenticated() {
			t.Fatalf("round %d: not authenticated after login", i)
		}
		got, ok := s.CurrentUser()
		if !ok || got != u {
			t.Fatalf("round %d: expected %+v, got %+v", i, u, got)
		}
		if store.tokens["browser-1"] != "token-"+u.Email {
			t.Fatalf("round %d: token not stored", i)
		}

		s.Logout(ctx)
		if s.IsAuthenticated() {
			t.Fatalf("round %d: still authenticated after logout", i)
		}
		if _, ok := store.tokens["browser-1"]; ok {
			t.Fatalf("round %d: token not cleared", i)
		}
	}
}

func TestIdentitySession_LoginReplacesIdentity(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(newStubCredentialStore(), newStubProfileCache())

	_ = s.Login(ctx, "a", manager)
	_ = s.Login(ctx, "b", storeKeeper)

	got, _ := s.CurrentUser()
	if got != storeKeeper {
		t.Fatalf("expected second login to replace identity, got %+v", got)
	}
}

func TestIdentitySession_LoginStoreFailureStaysAnonymous(t *testing.T) {
	store := newStubCredentialStore()
	store.setErr = errors.New("storage quota exceeded")
	s := newTestSession(store, newStubProfileCache())

	if err := s.Login(context.Background(), "token", manager); err == nil {
		t.Fatal("expected error when the token cannot be stored")
	}
	if s.IsAuthenticated() {
		t.Fatal("session must stay anonymous when the token cannot be stored")
	}
}

func TestIdentitySession_LoginRejectsEmptyToken(t *testing.T) {
	s := newTestSession(newStubCredentialStore(), newStubProfileCache())

	err := s.Login(context.Background(), "", manager)
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestIdentitySession_SubscribersSeeEveryTransition(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(newStubCredentialStore(), newStubProfileCache())

	var seen []SessionSnapshot
	cancel := s.Subscribe(func(snap SessionSnapshot) {
		// the new state must already be visible when subscribers run
		if s.Snapshot() != snap {
			t.Errorf("subscriber saw %+v but session reports %+v", snap, s.Snapshot())
		}
		seen = append(seen, snap)
	})

	_ = s.Login(ctx, "t", manager)
	s.Logout(ctx)
	cancel()
	_ = s.Login(ctx, "t", storeKeeper)

	if len(seen) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(seen))
	}
	if seen[0].State != StateAuthenticated || seen[0].User != manager {
		t.Errorf("unexpected first notification: %+v", seen[0])
	}
	if seen[1].State != StateAnonymous {
		t.Errorf("unexpected second notification: %+v", seen[1])
	}
}

func TestIdentitySession_RestoreFromProfileCache(t *testing.T) {
	store := newStubCredentialStore()
	store.tokens["browser-1"] = "opaque-token"
	profiles := newStubProfileCache()
	profiles.users["browser-1"] = storeKeeper

	s := newTestSession(store, profiles)
	s.Restore(context.Background())

	got, ok := s.CurrentUser()
	if !ok || got != storeKeeper {
		t.Fatalf("expected restored %+v, got %+v (ok=%v)", storeKeeper, got, ok)
	}
}

func TestIdentitySession_RestoreFromTokenClaims(t *testing.T) {
	store := newStubCredentialStore()
	store.tokens["browser-1"] = signedToken(t, jwt.MapClaims{
		"sub":   "7",
		"email": "keeper@slooze.xyz",
		"role":  "STORE_KEEPER",
	})

	s := newTestSession(store, newStubProfileCache())
	s.Restore(context.Background())

	got, ok := s.CurrentUser()
	if !ok {
		t.Fatal("expected session restored from token claims")
	}
	if got.ID != 7 || got.Email != "keeper@slooze.xyz" || got.Role != domain.RoleStoreKeeper {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestIdentitySession_RestoreWithOpaqueTokenStaysAnonymous(t *testing.T) {
	store := newStubCredentialStore()
	store.tokens["browser-1"] = "not-a-jwt"

	s := newTestSession(store, newStubProfileCache())
	s.Restore(context.Background())

	if s.IsAuthenticated() {
		t.Fatal("expected anonymous session for a token without identity")
	}
	if store.tokens["browser-1"] != "not-a-jwt" {
		t.Fatal("stale token must be left in place")
	}
}

func TestIdentitySession_RestoreWithStoreUnavailable(t *testing.T) {
	store := newStubCredentialStore()
	store.getErr = errors.New("connection refused")
	profiles := newStubProfileCache()
	profiles.users["browser-1"] = manager

	s := newTestSession(store, profiles)
	if err := s.Restore(context.Background()); err == nil {
		t.Fatal("expected an error so the restore is retried")
	}

	if s.IsAuthenticated() {
		t.Fatal("unavailable storage must be treated as no session")
	}
}

func TestIdentitySession_VerifyEndsSessionWithoutToken(t *testing.T) {
	ctx := context.Background()
	store := newStubCredentialStore()
	profiles := newStubProfileCache()
	s := newTestSession(store, profiles)
	if err := s.Login(ctx, "tok", manager); err != nil {
		t.Fatal(err)
	}

	var seen []SessionSnapshot
	defer s.Subscribe(func(snap SessionSnapshot) { seen = append(seen, snap) })()

	s.Verify(ctx)
	if !s.IsAuthenticated() || len(seen) != 0 {
		t.Fatal("a stored token must keep the session")
	}

	delete(store.tokens, "browser-1")
	s.Verify(ctx)

	if s.IsAuthenticated() {
		t.Fatal("expected anonymous session once the token is gone")
	}
	if _, ok := profiles.users["browser-1"]; ok {
		t.Fatal("cached profile must be removed with the session")
	}
	if len(seen) != 1 || seen[0].State != StateAnonymous {
		t.Fatalf("expected one anonymous notification, got %+v", seen)
	}
}

func TestIdentitySession_VerifyKeepsSessionWhenStoreUnavailable(t *testing.T) {
	ctx := context.Background()
	store := newStubCredentialStore()
	s := newTestSession(store, newStubProfileCache())
	if err := s.Login(ctx, "tok", manager); err != nil {
		t.Fatal(err)
	}

	store.getErr = errors.New("timeout")
	s.Verify(ctx)

	if !s.IsAuthenticated() {
		t.Fatal("an unreadable store must not end the session")
	}
}
