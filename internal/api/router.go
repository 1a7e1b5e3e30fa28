package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/slooze/inventory-console/internal/api/handler"
	"github.com/slooze/inventory-console/internal/api/middleware"
	"github.com/slooze/inventory-console/internal/api/view"
	"github.com/slooze/inventory-console/internal/core/ports"
	"github.com/slooze/inventory-console/internal/core/service"
	"github.com/slooze/inventory-console/internal/infrastructure/graphql"
	"github.com/slooze/inventory-console/internal/pkg/config"
)

// Deps carries what the router wires into its handlers.
type Deps struct {
	Config *config.Config
	Hub    *service.Hub
	Auth   ports.AuthService
	// Checks are run by the readiness probe, keyed by dependency name.
	Checks map[string]handler.Check
	Log    zerolog.Logger

	// Registerer and Gatherer default to the prometheus globals.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
	// Heartbeat of the session event stream; zero picks the default.
	Heartbeat time.Duration
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) (*echo.Echo, error) {
	renderer, err := view.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	if d.Registerer == nil {
		d.Registerer = prometheus.DefaultRegisterer
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}
	cfg := d.Config
	log := d.Log

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log.With().Str("component", "http").Logger())

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		RequestIDHandler: func(c echo.Context, id string) {
			req := c.Request()
			c.SetRequest(req.WithContext(graphql.WithRequestID(req.Context(), id)))
		},
	}))
	e.Use(requestLogger(log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "inventory_console",
		Subsystem:  "http",
		Registerer: d.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/session/events"
		},
		DoNotUseRequestPathFor404: true,
	}))

	// --- Health probes and metrics (no browser session) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Checks)

	e.GET("/health", healthHandler.Liveness)            // is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Gatherer}))

	// --- Browser pages ---
	store := sessions.NewCookieStore([]byte(cfg.Session.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int((30 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		Secure:   cfg.Session.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}

	pages := e.Group("",
		session.Middleware(store),
		middleware.Browser(d.Hub, cfg.Session.CookieName, log.With().Str("component", "browser").Logger()),
	)

	authHandler := handler.NewAuthHandler(d.Auth, log.With().Str("component", "auth").Logger())
	dashboardHandler := handler.NewDashboardHandler()
	productHandler := handler.NewProductHandler(log.With().Str("component", "products").Logger())
	eventsHandler := handler.NewSessionEventsHandler(d.Hub, d.Heartbeat, log.With().Str("component", "session_events").Logger())
	e.Server.RegisterOnShutdown(eventsHandler.Close)

	login := middleware.Guard(service.PageLogin)
	dashboard := middleware.Guard(service.PageDashboard)
	catalog := middleware.Guard(service.PageCatalog)

	pages.GET(service.LoginPath, authHandler.LoginForm, login)
	pages.POST(service.LoginPath, authHandler.Login, login, loginLimiter(cfg.Login, log))
	pages.POST("/logout", authHandler.Logout)

	pages.GET(service.DashboardPath, dashboardHandler.Show, dashboard)

	pages.GET(service.CatalogPath, productHandler.List, catalog)
	pages.GET(service.CatalogPath+"/add", productHandler.New, catalog)
	pages.POST(service.CatalogPath+"/add", productHandler.Create, catalog)
	pages.GET(service.CatalogPath+"/:id/delete", productHandler.ConfirmDelete, catalog)
	pages.POST(service.CatalogPath+"/:id/delete", productHandler.Delete, catalog)

	pages.GET("/session/events", eventsHandler.Stream)

	return e, nil
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Path(), "/health") || c.Path() == "/metrics"
		},
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}

// loginLimiter throttles sign-in attempts per client IP.
func loginLimiter(cfg config.LoginConfig, log zerolog.Logger) echo.MiddlewareFunc {
	store := echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(cfg.Rate),
		Burst:     cfg.Burst,
		ExpiresIn: 10 * time.Minute,
	})
	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, _ error) error {
			log.Warn().Str("remote_ip", identifier).Msg("login rate limited")
			return echo.NewHTTPError(http.StatusTooManyRequests, "Too many sign-in attempts. Please wait a moment and try again.")
		},
	})
}
