package graphql

import "context"

type requestIDKey struct{}

// WithRequestID returns a context carrying the inbound request id so it can
// be forwarded to the catalog API.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok && id != ""
}
