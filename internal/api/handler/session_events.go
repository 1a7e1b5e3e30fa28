package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/slooze/inventory-console/internal/core/service"
)

const defaultHeartbeat = 25 * time.Second

// ScopeSource hands out the scope of a browser. Satisfied by *service.Hub.
type ScopeSource interface {
	Scope(ctx context.Context, browserID string) *service.Scope
}

// SessionEventsHandler streams guard decisions to open pages so that a tab
// leaves a page as soon as its browser signs out elsewhere.
type SessionEventsHandler struct {
	scopes    ScopeSource
	heartbeat time.Duration
	log       zerolog.Logger

	closeOnce sync.Once
	done      chan struct{}
}

func NewSessionEventsHandler(scopes ScopeSource, heartbeat time.Duration, log zerolog.Logger) *SessionEventsHandler {
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	return &SessionEventsHandler{
		scopes:    scopes,
		heartbeat: heartbeat,
		log:       log,
		done:      make(chan struct{}),
	}
}

// Close ends every open stream so a graceful shutdown does not wait on them.
func (h *SessionEventsHandler) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// Stream answers GET /session/events?page=<page> with a text/event-stream of
// "guard" events. The first event carries the current decision.
func (h *SessionEventsHandler) Stream(c echo.Context) error {
	page, ok := service.ParsePage(c.QueryParam("page"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown page")
	}
	scope, err := currentScope(c)
	if err != nil {
		return err
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)

	decisions := make(chan service.Decision, 8)
	watch := func(s *service.Scope) func() {
		return service.WatchGuard(s.Session, page, func(d service.Decision) {
			select {
			case decisions <- d:
			default:
				// the reader is behind; the next heartbeat re-evaluates
			}
		})
	}
	cancel := watch(scope)
	defer func() { cancel() }()

	h.log.Debug().Str("browser_id", scope.BrowserID).Str("page", string(page)).Msg("session stream opened")

	ctx := c.Request().Context()
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-h.done:
			return nil
		case d := <-decisions:
			if err := writeDecision(res, d); err != nil {
				return nil
			}
		case <-ticker.C:
			// keeps the scope alive while a tab is open and follows it if
			// it was evicted and rebuilt in the meantime
			if current := h.scopes.Scope(ctx, scope.BrowserID); current != scope {
				cancel()
				scope = current
				cancel = watch(scope)
				continue
			}
			if d := service.Guard(scope.Session.Snapshot(), page); !d.Allow {
				if err := writeDecision(res, d); err != nil {
					return nil
				}
				continue
			}
			if _, err := fmt.Fprint(res, ": ping\n\n"); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}

func writeDecision(res *echo.Response, d service.Decision) error {
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(res, "event: guard\ndata: %s\n\n", data); err != nil {
		return err
	}
	res.Flush()
	return nil
}
