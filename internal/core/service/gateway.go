package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/slooze/inventory-console/internal/core/domain"
	"github.com/slooze/inventory-console/internal/core/ports"
	"github.com/slooze/inventory-console/internal/pkg/metrics"
)

// Gateway sends catalog operations on behalf of one browser. The token is
// read from the credential store on every call, so a login or logout takes
// effect on the very next request. It never changes session state itself.
type Gateway struct {
	transport ports.GraphQLTransport
	creds     *Credentials
	log       zerolog.Logger
}

var _ ports.Gateway = (*Gateway)(nil)

func NewGateway(transport ports.GraphQLTransport, creds *Credentials, log zerolog.Logger) *Gateway {
	return &Gateway{transport: transport, creds: creds, log: log}
}

// Execute runs op with variables and decodes the response data into out.
func (g *Gateway) Execute(ctx context.Context, op ports.Operation, variables map[string]any, out any) error {
	token, _ := g.creds.Get(ctx)

	start := time.Now()
	err := g.transport.Do(ctx, op, variables, token, out)
	metrics.GatewayRequestDuration.WithLabelValues(op.Name).Observe(time.Since(start).Seconds())
	metrics.GatewayRequestsTotal.WithLabelValues(op.Name, outcome(err)).Inc()

	if err != nil {
		g.log.Debug().Err(err).Str("operation", op.Name).Bool("authenticated", token != "").Msg("operation failed")
	}
	return err
}

func outcome(err error) string {
	var gqlErr *domain.GraphQLError
	var netErr *domain.NetworkError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &gqlErr):
		return "graphql_error"
	case errors.As(err, &netErr):
		return "network_error"
	default:
		return "error"
	}
}
