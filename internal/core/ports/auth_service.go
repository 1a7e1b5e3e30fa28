package ports

import (
	"context"

	"github.com/slooze/inventory-console/internal/core/domain"
)

// Gateway executes operations on behalf of one browser, attaching whatever
// token that browser currently holds.
type Gateway interface {
	Execute(ctx context.Context, op Operation, variables map[string]any, out any) error
}

// LoginResult is what the catalog API hands back for a successful login.
type LoginResult struct {
	Token string
	User  domain.User
}

type AuthService interface {
	Login(ctx context.Context, gw Gateway, email, password string) (LoginResult, error)
}
