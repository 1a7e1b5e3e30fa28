package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/slooze/inventory-console/internal/api/middleware"
	"github.com/slooze/inventory-console/internal/api/view"
	"github.com/slooze/inventory-console/internal/core/domain"
	"github.com/slooze/inventory-console/internal/core/ports"
	"github.com/slooze/inventory-console/internal/core/service"
	"github.com/slooze/inventory-console/internal/infrastructure/db/memory"
)

// stubTransport answers catalog API operations through doFn.
type stubTransport struct {
	doFn func(ctx context.Context, op ports.Operation, variables map[string]any, token string, out any) error
}

func (s *stubTransport) Do(ctx context.Context, op ports.Operation, variables map[string]any, token string, out any) error {
	if s.doFn == nil {
		return nil
	}
	return s.doFn(ctx, op, variables, token, out)
}

// reply decodes a canned data payload into out.
func reply(out any, data string) error {
	return json.Unmarshal([]byte(data), out)
}

const productsReply = `{"products":[
	{"id":1,"name":"Widget","price":9.5,"stock":20,"createdAt":"2024-01-02T00:00:00Z"},
	{"id":2,"name":"Gadget","price":3,"stock":4},
	{"id":3,"name":"Sprocket","price":1.25,"stock":0}
]}`

func newTestEcho(t *testing.T) *echo.Echo {
	t.Helper()
	renderer, err := view.NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	e := echo.New()
	e.Renderer = renderer
	e.Validator = NewValidator()
	return e
}

func newTestHub(transport ports.GraphQLTransport) *service.Hub {
	return service.NewHub(service.HubConfig{},
		memory.NewCredentialStore(0, 0), memory.NewProfileCache(0, 0),
		transport, zerolog.Nop())
}

func newTestScope(t *testing.T, transport ports.GraphQLTransport, user *domain.User) *service.Scope {
	t.Helper()
	scope := newTestHub(transport).Scope(context.Background(), "browser-1")
	if user != nil {
		if err := scope.Session.Login(context.Background(), "token-1", *user); err != nil {
			t.Fatalf("login: %v", err)
		}
	}
	return scope
}

var (
	manager = &domain.User{ID: 1, Email: "manager@example.com", Role: domain.RoleManager}
	keeper  = &domain.User{ID: 2, Email: "keeper@example.com", Role: domain.RoleStoreKeeper}
)

func formRequest(method, target string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}

func newContext(e *echo.Echo, req *http.Request, scope *service.Scope) (echo.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if scope != nil {
		middleware.WithScope(c, scope)
	}
	return c, rec
}
