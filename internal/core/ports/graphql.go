package ports

import "context"

// Operation is a named GraphQL document sent to the catalog API.
type Operation struct {
	Name     string
	Document string
}

// GraphQLTransport executes a single operation against the catalog API.
//
// token is sent as a bearer credential when non-empty. On success the data
// object of the response is decoded into out. Failures are reported as
// *domain.NetworkError or *domain.GraphQLError.
type GraphQLTransport interface {
	Do(ctx context.Context, op Operation, variables map[string]any, token string, out any) error
}
