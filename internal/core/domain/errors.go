package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUnauthenticated      = errors.New("unauthenticated")
	ErrForbidden            = errors.New("access forbidden")
	ErrProductNotFound      = errors.New("product not found")
	ErrConfirmationRequired = errors.New("confirmation required")
)

// GraphQL error codes the console reacts to.
const (
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
)

// ValidationError is a client-side rejection of user input. It is never
// sent to the catalog API. Fields maps a field name to its message.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	msgs := make([]string, 0, len(names))
	for _, name := range names {
		msgs = append(msgs, name+": "+e.Fields[name])
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Field returns the message for a single field, or "".
func (e *ValidationError) Field(name string) string {
	if e == nil {
		return ""
	}
	return e.Fields[name]
}

// NetworkError means the catalog API could not be reached or answered with
// something that is not a GraphQL response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// GraphQLError is the first error reported by the catalog API for an
// operation.
type GraphQLError struct {
	Op      string
	Code    string
	Message string
}

func (e *GraphQLError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Op, e.Message, e.Code)
}

// Is lets callers match API error codes against the domain sentinels.
func (e *GraphQLError) Is(target error) bool {
	switch target {
	case ErrUnauthenticated:
		return e.Code == CodeUnauthenticated
	case ErrForbidden:
		return e.Code == CodeForbidden
	case ErrProductNotFound:
		return e.Code == CodeNotFound
	}
	return false
}
