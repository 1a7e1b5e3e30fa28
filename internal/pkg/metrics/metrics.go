// Package metrics defines and registers all custom Prometheus metrics for the
// inventory console. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry when the
// package is initialised.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "inventory_console"

// ── Gateway metrics ───────────────────────────────────────────────────────────

// GatewayRequestsTotal counts operations sent to the catalog API.
// Labels:
//   - operation: GraphQL operation name (e.g. "GetProducts")
//   - outcome: "ok", "graphql_error" or "network_error"
var GatewayRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gateway_requests_total",
		Help:      "Total number of GraphQL operations sent to the catalog API.",
	},
	[]string{"operation", "outcome"},
)

// GatewayRequestDuration measures the round trip of a single operation.
// Label:
//   - operation: GraphQL operation name
var GatewayRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "gateway_request_duration_seconds",
		Help:      "Duration of GraphQL round trips to the catalog API.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"operation"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - outcome: "ok", "invalid_credentials", "network_error" or "store_error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by outcome.",
	},
	[]string{"outcome"},
)

// GuardDecisionsTotal counts route guard evaluations.
// Labels:
//   - page: "login", "dashboard" or "catalog"
//   - decision: "allow" or "redirect"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard decisions, by page and decision.",
	},
	[]string{"page", "decision"},
)

// ActiveBrowsers tracks the number of browser scopes held in memory.
var ActiveBrowsers = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_browsers",
		Help:      "Current number of browser scopes held by the hub.",
	},
)

// ── Catalog metrics ───────────────────────────────────────────────────────────

// CatalogCacheTotal counts product listing lookups.
// Label:
//   - result: "hit" (served from cache) or "miss" (fetched from the API)
var CatalogCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_cache_total",
		Help:      "Total number of product listing lookups, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// CatalogMutationsTotal counts product writes.
// Labels:
//   - action: "create" or "remove"
//   - outcome: "ok", "invalid" or "error"
var CatalogMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_mutations_total",
		Help:      "Total number of product mutations, by action and outcome.",
	},
	[]string{"action", "outcome"},
)
