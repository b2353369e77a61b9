// Package metrics defines and registers all custom Prometheus metrics for the
// GramSight dashboard client. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics register with the default registry on package init via promauto;
// the API router exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gramsight_dashboard"

// ── Aggregation metrics ───────────────────────────────────────────────────────

// AggregationRoundsTotal counts finished aggregation rounds.
// Labels:
//   - dashboard: "farmer" or "admin"
//   - result: "published" or "stale" (superseded by a newer round, discarded)
var AggregationRoundsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "aggregation_rounds_total",
		Help:      "Total number of dashboard aggregation rounds, by outcome.",
	},
	[]string{"dashboard", "result"},
)

// SourceFetchesTotal counts per-source contributions to a view model.
// Labels:
//   - source: risk, weather, market, soil, advisory, villages
//   - result: "live" (payload used) or "fallback" (static default substituted)
var SourceFetchesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "source_fetches_total",
		Help:      "Total number of data source fetches, labelled by source and result.",
	},
	[]string{"source", "result"},
)

// AggregationDuration measures fan-out to settle for one round.
var AggregationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "aggregation_duration_seconds",
		Help:      "Duration of an aggregation round from fan-out until every source settled.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"dashboard"},
)

// ── Session / gateway metrics ─────────────────────────────────────────────────

// GatewayOutcomesTotal counts outbound requests by classified outcome.
// Label:
//   - outcome: ok, unauthorized, forbidden, error
var GatewayOutcomesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gateway_outcomes_total",
		Help:      "Total number of backend requests, by classified outcome.",
	},
	[]string{"outcome"},
)

// ForcedLogoutsTotal counts sessions ended without the user asking.
// Label:
//   - reason: "decode_failure" or "unauthorized"
var ForcedLogoutsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "forced_logouts_total",
		Help:      "Total number of sessions invalidated by the client, by reason.",
	},
	[]string{"reason"},
)
