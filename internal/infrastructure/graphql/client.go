// Package graphql implements the HTTP transport to the catalog GraphQL API.
package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/slooze/inventory-console/internal/core/domain"
	"github.com/slooze/inventory-console/internal/core/ports"
)

const (
	RequestIDHeader     = "X-Request-ID"
	AuthorizationHeader = "Authorization"

	defaultTimeout  = 10 * time.Second
	maxResponseSize = 8 << 20
)

// Config holds the settings for the catalog API transport.
type Config struct {
	URL     string
	Timeout time.Duration
}

// Client implements ports.GraphQLTransport over HTTP POST.
type Client struct {
	url  string
	http *http.Client
	log  zerolog.Logger

	mu     sync.RWMutex
	parsed map[string]error
}

var _ ports.GraphQLTransport = (*Client)(nil)

// NewClient returns a Client for cfg.URL. If httpClient is nil a client with
// cfg.Timeout (or a default) is created.
func NewClient(cfg Config, httpClient *http.Client, log zerolog.Logger) *Client {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		url:    cfg.URL,
		http:   httpClient,
		log:    log,
		parsed: make(map[string]error),
	}
}

type request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors gqlerror.List   `json:"errors"`
}

// Do sends op to the catalog API and decodes the data object into out.
func (c *Client) Do(ctx context.Context, op ports.Operation, variables map[string]any, token string, out any) error {
	if err := c.check(op); err != nil {
		return err
	}

	body, err := json.Marshal(request{
		Query:         op.Document,
		OperationName: op.Name,
		Variables:     variables,
	})
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", op.Name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return &domain.NetworkError{Op: op.Name, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/graphql-response+json, application/json")
	if token != "" {
		req.Header.Set(AuthorizationHeader, "Bearer "+token)
	} else {
		req.Header.Set(AuthorizationHeader, "")
	}
	if id, ok := RequestIDFromContext(ctx); ok {
		req.Header.Set(RequestIDHeader, id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.NetworkError{Op: op.Name, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return &domain.NetworkError{Op: op.Name, Err: fmt.Errorf("read body: %w", err)}
	}

	var gr response
	decodeErr := json.Unmarshal(raw, &gr)

	if decodeErr == nil && len(gr.Errors) > 0 {
		return toGraphQLError(op.Name, gr.Errors[0])
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return &domain.GraphQLError{Op: op.Name, Code: domain.CodeUnauthenticated, Message: "unauthorized"}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &domain.NetworkError{Op: op.Name, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}
	if decodeErr != nil {
		return &domain.NetworkError{Op: op.Name, Err: fmt.Errorf("decode response: %w", decodeErr)}
	}
	if len(gr.Data) == 0 || bytes.Equal(gr.Data, []byte("null")) {
		return &domain.NetworkError{Op: op.Name, Err: errors.New("response has no data")}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(gr.Data, out); err != nil {
		return &domain.NetworkError{Op: op.Name, Err: fmt.Errorf("decode data: %w", err)}
	}
	return nil
}

// Ping reports whether the endpoint answers a trivial query.
func (c *Client) Ping(ctx context.Context) error {
	var out struct {
		Typename string `json:"__typename"`
	}
	return c.Do(ctx, pingOperation, nil, "", &out)
}

var pingOperation = ports.Operation{
	Name:     "Ping",
	Document: `query Ping { __typename }`,
}

// check parses the document of op once and verifies it defines an operation
// with the expected name.
func (c *Client) check(op ports.Operation) error {
	c.mu.RLock()
	err, seen := c.parsed[op.Name]
	c.mu.RUnlock()
	if seen {
		return err
	}

	err = parseOperation(op)
	if err != nil {
		c.log.Error().Err(err).Str("operation", op.Name).Msg("invalid operation document")
	}

	c.mu.Lock()
	c.parsed[op.Name] = err
	c.mu.Unlock()
	return err
}

func parseOperation(op ports.Operation) error {
	doc, err := parser.ParseQuery(&ast.Source{Name: op.Name, Input: op.Document})
	if err != nil {
		return fmt.Errorf("%s: parse document: %w", op.Name, err)
	}
	if doc.Operations.ForName(op.Name) == nil {
		return fmt.Errorf("%s: document does not define operation %q", op.Name, op.Name)
	}
	return nil
}

func toGraphQLError(op string, e *gqlerror.Error) *domain.GraphQLError {
	code, _ := e.Extensions["code"].(string)
	return &domain.GraphQLError{Op: op, Code: code, Message: e.Message}
}
