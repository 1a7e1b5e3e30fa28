package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Role is the access tier granted by the catalog API.
type Role string

const (
	RoleManager     Role = "MANAGER"
	RoleStoreKeeper Role = "STORE_KEEPER"
)

// Valid reports whether r is one of the roles the console knows about.
func (r Role) Valid() bool {
	return r == RoleManager || r == RoleStoreKeeper
}

// ID is an integer identifier as returned by the catalog API. The API may
// encode it either as a JSON number or as a GraphQL ID string.
type ID int

func (id *ID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*id = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("id %q: %w", s, err)
	}
	*id = ID(n)
	return nil
}

func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(id))
}

func (id ID) String() string {
	return strconv.Itoa(int(id))
}

// User is the identity of the person signed in on a browser. It is fixed for
// the lifetime of a session; a role change requires a new login.
type User struct {
	ID    ID     `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// IsManager reports whether the user may see the dashboard.
func (u User) IsManager() bool {
	return u.Role == RoleManager
}

// LandingPath is where the user is sent right after signing in.
func (u User) LandingPath() string {
	if u.IsManager() {
		return "/dashboard"
	}
	return "/products"
}
