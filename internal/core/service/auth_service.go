package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/slooze/inventory-console/internal/core/domain"
	"github.com/slooze/inventory-console/internal/core/ports"
	"github.com/slooze/inventory-console/internal/pkg/metrics"
)

// AuthService exchanges credentials for a session token through the catalog
// API.
type AuthService struct {
	log zerolog.Logger
}

func NewAuthService(log zerolog.Logger) *AuthService {
	return &AuthService{log: log}
}

var _ ports.AuthService = (*AuthService)(nil)

// Login runs the login mutation. Any error reported by the API is collapsed
// into domain.ErrInvalidCredentials so callers cannot tell which field was
// wrong. Network failures are returned as they are.
func (s *AuthService) Login(ctx context.Context, gw ports.Gateway, email, password string) (ports.LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return ports.LoginResult{}, domain.ErrInvalidCredentials
	}

	var data loginData
	err := gw.Execute(ctx, loginOperation, map[string]any{
		"email":    email,
		"password": password,
	}, &data)

	var gqlErr *domain.GraphQLError
	switch {
	case errors.As(err, &gqlErr):
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		s.log.Info().Str("code", gqlErr.Code).Msg("login rejected")
		return ports.LoginResult{}, fmt.Errorf("login: %w", domain.ErrInvalidCredentials)
	case err != nil:
		metrics.LoginsTotal.WithLabelValues("network_error").Inc()
		return ports.LoginResult{}, fmt.Errorf("login: %w", err)
	}

	res := ports.LoginResult{Token: data.Login.Token, User: data.Login.User}
	if res.Token == "" || !res.User.Role.Valid() {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		s.log.Warn().Str("role", string(res.User.Role)).Msg("login response missing token or known role")
		return ports.LoginResult{}, fmt.Errorf("login: %w", domain.ErrInvalidCredentials)
	}

	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	return res, nil
}
