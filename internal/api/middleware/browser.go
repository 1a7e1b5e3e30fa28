package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/slooze/inventory-console/internal/core/service"
)

const (
	scopeKey     = "scope"
	browserIDKey = "browser_id"
)

// Browser identifies the browser behind a request by a random id kept in
// the signed session cookie, issuing one on first contact, and attaches
// that browser's scope to the context. It must run after
// session.Middleware.
func Browser(hub *service.Hub, cookieName string, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, err := session.Get(cookieName, c)
			if sess == nil {
				log.Error().Err(err).Msg("session store not configured")
				return echo.NewHTTPError(http.StatusInternalServerError, "could not start session")
			}
			if err != nil {
				// a cookie signed with another secret; start over
				log.Debug().Err(err).Msg("discarding unreadable session cookie")
			}

			browserID, _ := sess.Values[browserIDKey].(string)
			if _, perr := uuid.Parse(browserID); perr != nil {
				browserID = uuid.NewString()
				sess.Values[browserIDKey] = browserID
				if err := sess.Save(c.Request(), c.Response()); err != nil {
					log.Error().Err(err).Msg("failed to issue browser cookie")
					return echo.NewHTTPError(http.StatusInternalServerError, "could not start session")
				}
			}

			WithScope(c, hub.Scope(c.Request().Context(), browserID))
			return next(c)
		}
	}
}

// WithScope attaches s to the request context.
func WithScope(c echo.Context, s *service.Scope) {
	c.Set(scopeKey, s)
}

// Scope returns the browser scope attached by Browser, or nil.
func Scope(c echo.Context) *service.Scope {
	s, _ := c.Get(scopeKey).(*service.Scope)
	return s
}
