package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/slooze/inventory-console/internal/core/domain"
)

type fakeAccount struct {
	password string
	user     domain.User
}

type fakeProduct struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Stock     int     `json:"stock"`
	CreatedAt string  `json:"createdAt,omitempty"`
}

// fakeCatalogAPI is an in-memory stand-in for the GraphQL catalog API.
type fakeCatalogAPI struct {
	mu         sync.Mutex
	accounts   map[string]fakeAccount
	tokens     map[string]domain.User
	products   []fakeProduct
	nextID     int
	nextToken  int
	requestIDs []string
}

func newFakeCatalogAPI() *fakeCatalogAPI {
	return &fakeCatalogAPI{
		accounts: map[string]fakeAccount{
			"manager@example.com": {password: "password", user: domain.User{ID: 1, Email: "manager@example.com", Role: domain.RoleManager}},
			"keeper@example.com":  {password: "password", user: domain.User{ID: 2, Email: "keeper@example.com", Role: domain.RoleStoreKeeper}},
		},
		tokens: map[string]domain.User{},
		products: []fakeProduct{
			{ID: 1, Name: "Widget", Price: 9.5, Stock: 20, CreatedAt: "2024-01-02T00:00:00Z"},
			{ID: 2, Name: "Gadget", Price: 3, Stock: 4},
			{ID: 3, Name: "Sprocket", Price: 1.25, Stock: 0},
		},
		nextID: 4,
	}
}

// revokeAll invalidates every issued token.
func (f *fakeCatalogAPI) revokeAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = map[string]domain.User{}
}

func (f *fakeCatalogAPI) seenRequestIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requestIDs...)
}

func (f *fakeCatalogAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OperationName string         `json:"operationName"`
		Variables     map[string]any `json:"variables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.requestIDs = append(f.requestIDs, r.Header.Get("X-Request-ID"))

	switch req.OperationName {
	case "Ping":
		writeData(w, map[string]any{"__typename": "Query"})
		return
	case "Login":
		email, _ := req.Variables["email"].(string)
		password, _ := req.Variables["password"].(string)
		acc, ok := f.accounts[email]
		if !ok || acc.password != password {
			writeError(w, "UNAUTHENTICATED", "Invalid credentials")
			return
		}
		f.nextToken++
		token := fmt.Sprintf("token-%d", f.nextToken)
		f.tokens[token] = acc.user
		writeData(w, map[string]any{"login": map[string]any{"token": token, "user": acc.user}})
		return
	}

	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if _, ok := f.tokens[token]; !ok {
		writeError(w, "UNAUTHENTICATED", "Unauthorized")
		return
	}

	switch req.OperationName {
	case "GetProducts":
		writeData(w, map[string]any{"products": f.products})
	case "CreateProduct":
		p := fakeProduct{
			ID:    f.nextID,
			Name:  req.Variables["name"].(string),
			Price: req.Variables["price"].(float64),
			Stock: int(req.Variables["stock"].(float64)),
		}
		f.nextID++
		f.products = append(f.products, p)
		writeData(w, map[string]any{"createProduct": p})
	case "RemoveProduct":
		id := int(req.Variables["id"].(float64))
		for i, p := range f.products {
			if p.ID == id {
				f.products = append(f.products[:i], f.products[i+1:]...)
				writeData(w, map[string]any{"removeProduct": map[string]any{"id": id}})
				return
			}
		}
		writeError(w, "NOT_FOUND", "Product not found")
	default:
		writeError(w, "GRAPHQL_VALIDATION_FAILED", "unknown operation "+req.OperationName)
	}
}

func writeData(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
}

func writeError(w http.ResponseWriter, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": nil,
		"errors": []map[string]any{{
			"message":    message,
			"extensions": map[string]any{"code": code},
		}},
	})
}
