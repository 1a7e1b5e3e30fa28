package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/slooze/inventory-console/internal/api/middleware"
	"github.com/slooze/inventory-console/internal/core/domain"
	"github.com/slooze/inventory-console/internal/core/service"
)

// expiredPath is where a browser lands once the API stops accepting its token.
const expiredPath = service.LoginPath + "?expired=1"

// currentScope returns the browser scope attached by middleware.Browser and
// performs a fast-fail check before any service call: a request that reached
// a handler without a scope is a wiring bug, not a client error.
func currentScope(c echo.Context) (*service.Scope, error) {
	s := middleware.Scope(c)
	if s == nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "browser scope missing")
	}
	return s, nil
}

// sessionExpired ends the session of a browser whose token the API rejected
// and sends it to the sign-in page. ok is false for any other error.
func sessionExpired(c echo.Context, scope *service.Scope, err error) (ok bool, rerr error) {
	if !errors.Is(err, domain.ErrUnauthenticated) {
		return false, nil
	}
	scope.Session.Logout(c.Request().Context())
	return true, c.Redirect(http.StatusSeeOther, expiredPath)
}

// userOf returns the signed-in user of scope for the page chrome, or nil.
func userOf(scope *service.Scope) *domain.User {
	u, ok := scope.Session.CurrentUser()
	if !ok {
		return nil
	}
	return &u
}
