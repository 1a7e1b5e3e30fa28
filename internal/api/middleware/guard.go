package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/slooze/inventory-console/internal/core/service"
)

// Guard enforces the access policy of page before the handler runs. A
// redirect is answered with 302 and no body, so nothing of the protected
// page is ever written.
func Guard(page service.Page) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			scope := Scope(c)
			if scope == nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "missing browser scope")
			}

			d := service.Guard(scope.Session.Snapshot(), page)
			if !d.Allow {
				return c.Redirect(http.StatusFound, d.Redirect)
			}

			c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
			return next(c)
		}
	}
}
