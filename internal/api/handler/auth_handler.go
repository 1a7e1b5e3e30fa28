package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/slooze/inventory-console/internal/api/view"
	"github.com/slooze/inventory-console/internal/core/domain"
	"github.com/slooze/inventory-console/internal/core/ports"
	"github.com/slooze/inventory-console/internal/pkg/metrics"
)

const (
	msgInvalidCredentials = "Invalid credentials"
	msgLoginUnavailable   = "Could not reach the server. Please try again."
)

type AuthHandler struct {
	authService ports.AuthService
	log         zerolog.Logger
}

func NewAuthHandler(authService ports.AuthService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, log: log}
}

type loginRequest struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

// LoginForm renders the sign-in page. A signed-in browser is offered a link
// to its landing page instead of being redirected.
func (h *AuthHandler) LoginForm(c echo.Context) error {
	scope, err := currentScope(c)
	if err != nil {
		return err
	}

	page := loginPage{
		pageData:     pageData{Title: "Sign in"},
		Expired:      c.QueryParam("expired") == "1",
		DemoAccounts: demoAccounts,
	}
	if user, ok := scope.Session.CurrentUser(); ok {
		page.Authenticated = true
		page.User = &user
		page.Continue = user.LandingPath()
	}
	return c.Render(http.StatusOK, view.PageLogin, page)
}

// Login authenticates the browser and sends it to its landing page.
func (h *AuthHandler) Login(c echo.Context) error {
	scope, err := currentScope(c)
	if err != nil {
		return err
	}

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	req.Email = strings.TrimSpace(req.Email)

	page := loginPage{
		pageData:     pageData{Title: "Sign in"},
		Email:        req.Email,
		DemoAccounts: demoAccounts,
	}

	if err := c.Validate(&req); err != nil {
		var ve *domain.ValidationError
		if !errors.As(err, &ve) {
			return err
		}
		page.Errors = ve.Fields
		return c.Render(http.StatusUnprocessableEntity, view.PageLogin, page)
	}

	ctx := c.Request().Context()
	res, err := h.authService.Login(ctx, scope.Gateway, req.Email, req.Password)
	if err != nil {
		var netErr *domain.NetworkError
		if errors.As(err, &netErr) {
			page.LoginError = msgLoginUnavailable
			return c.Render(http.StatusBadGateway, view.PageLogin, page)
		}
		page.LoginError = msgInvalidCredentials
		return c.Render(http.StatusUnauthorized, view.PageLogin, page)
	}

	if err := scope.Session.Login(ctx, res.Token, res.User); err != nil {
		metrics.LoginsTotal.WithLabelValues("store_error").Inc()
		h.log.Error().Err(err).Str("browser_id", scope.BrowserID).Msg("failed to store session")
		page.LoginError = msgLoginUnavailable
		return c.Render(http.StatusServiceUnavailable, view.PageLogin, page)
	}
	scope.Catalog.Invalidate()

	return c.Redirect(http.StatusSeeOther, res.User.LandingPath())
}

// Logout ends the session and returns to the sign-in page.
func (h *AuthHandler) Logout(c echo.Context) error {
	scope, err := currentScope(c)
	if err != nil {
		return err
	}
	scope.Session.Logout(c.Request().Context())
	scope.Catalog.Invalidate()
	return c.Redirect(http.StatusSeeOther, "/")
}
