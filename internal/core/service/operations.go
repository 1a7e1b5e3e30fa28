package service

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/slooze/inventory-console/internal/core/domain"
	"github.com/slooze/inventory-console/internal/core/ports"
)

var (
	loginOperation = ports.Operation{
		Name: "Login",
		Document: `mutation Login($email: String!, $password: String!) {
  login(loginInput: { email: $email, password: $password }) {
    token
    user { id email role }
  }
}`,
	}

	getProductsOperation = ports.Operation{
		Name: "GetProducts",
		Document: `query GetProducts {
  products { id name price stock createdAt }
}`,
	}

	createProductOperation = ports.Operation{
		Name: "CreateProduct",
		Document: `mutation CreateProduct($name: String!, $price: Float!, $stock: Int!) {
  createProduct(createProductInput: { name: $name, price: $price, stock: $stock }) {
    id name price stock
  }
}`,
	}

	removeProductOperation = ports.Operation{
		Name: "RemoveProduct",
		Document: `mutation RemoveProduct($id: Int!) {
  removeProduct(id: $id) { id }
}`,
	}
)

// Operations lists every document the console sends, for startup checks.
func Operations() []ports.Operation {
	return []ports.Operation{loginOperation, getProductsOperation, createProductOperation, removeProductOperation}
}

type loginData struct {
	Login struct {
		Token string      `json:"token"`
		User  domain.User `json:"user"`
	} `json:"login"`
}

type productNode struct {
	ID        domain.ID       `json:"id"`
	Name      string          `json:"name"`
	Price     float64         `json:"price"`
	Stock     int             `json:"stock"`
	CreatedAt json.RawMessage `json:"createdAt"`
}

func (n productNode) toDomain() domain.Product {
	return domain.Product{
		ID:        n.ID,
		Name:      n.Name,
		Price:     n.Price,
		Stock:     n.Stock,
		CreatedAt: parseTimestamp(n.CreatedAt),
	}
}

type productsData struct {
	Products []productNode `json:"products"`
}

type createProductData struct {
	CreateProduct productNode `json:"createProduct"`
}

type removeProductData struct {
	RemoveProduct *struct {
		ID domain.ID `json:"id"`
	} `json:"removeProduct"`
}

// parseTimestamp accepts an RFC 3339 string or milliseconds since the epoch,
// either as a number or as a numeric string. Anything else yields the zero
// time.
func parseTimestamp(raw json.RawMessage) time.Time {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" || s == "null" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC()
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC()
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return time.UnixMilli(int64(f)).UTC()
	}
	return time.Time{}
}

func productVariables(p domain.NewProduct) map[string]any {
	return map[string]any{
		"name":  p.Name,
		"price": p.Price,
		"stock": p.Stock,
	}
}

func idVariables(id domain.ID) map[string]any {
	return map[string]any{"id": int(id)}
}
