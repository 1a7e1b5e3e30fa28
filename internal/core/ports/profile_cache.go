package ports

import (
	"context"
	"errors"

	"github.com/slooze/inventory-console/internal/core/domain"
)

// ErrNoProfile is returned by ProfileCache.Load when nothing is cached for the
// browser.
var ErrNoProfile = errors.New("no cached profile")

// ProfileCache keeps the last signed-in user of a browser so an identity can
// be restored after a restart without asking the catalog API.
type ProfileCache interface {
	Save(ctx context.Context, browserID string, user domain.User) error
	Load(ctx context.Context, browserID string) (domain.User, error)
	Delete(ctx context.Context, browserID string) error
}
