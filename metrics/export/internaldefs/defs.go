package internaldefs

import (
	"sort"

	goUmroh "github.com/MrEthical07/goUmroh"
)

// CounterDef binds a client counter to its exported name.
type CounterDef struct {
	ID   goUmroh.MetricID
	Name string
	Help string
}

// HistogramDef binds a client histogram to its exported name.
type HistogramDef struct {
	ID   goUmroh.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in render order.
var CounterDefs = []CounterDef{
	{ID: goUmroh.MetricBootstrap, Name: "umroh_bootstrap_total", Help: "Bootstrap runs."},
	{ID: goUmroh.MetricSessionRestored, Name: "umroh_session_restored_total", Help: "Persisted credentials verified at bootstrap."},
	{ID: goUmroh.MetricSessionRejected, Name: "umroh_session_rejected_total", Help: "Persisted credentials rejected at bootstrap."},
	{ID: goUmroh.MetricLoginStarted, Name: "umroh_login_started_total", Help: "Login intents handed to the URL opener."},
	{ID: goUmroh.MetricURLOpenFailure, Name: "umroh_url_open_failure_total", Help: "Authorization URLs the opener failed to open."},
	{ID: goUmroh.MetricDeepLinkReceived, Name: "umroh_deep_link_received_total", Help: "Deep links delivered to the client."},
	{ID: goUmroh.MetricDeepLinkMalformed, Name: "umroh_deep_link_malformed_total", Help: "Deep links ignored as malformed or missing a session id."},
	{ID: goUmroh.MetricExchangeSuccess, Name: "umroh_exchange_success_total", Help: "Successful session exchanges."},
	{ID: goUmroh.MetricExchangeFailure, Name: "umroh_exchange_failure_total", Help: "Failed session exchanges."},
	{ID: goUmroh.MetricExchangeDeduplicated, Name: "umroh_exchange_deduplicated_total", Help: "Deep links joined to an in-flight exchange."},
	{ID: goUmroh.MetricLogout, Name: "umroh_logout_total", Help: "Logout operations."},
	{ID: goUmroh.MetricLogoutRemoteFailure, Name: "umroh_logout_remote_failure_total", Help: "Logouts whose backend call failed."},
	{ID: goUmroh.MetricAPIRequest, Name: "umroh_api_request_total", Help: "Backend requests issued."},
	{ID: goUmroh.MetricAPIFailure, Name: "umroh_api_failure_total", Help: "Backend requests that failed or returned a non-2xx status."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: goUmroh.MetricAPILatency, Name: "umroh_api_latency_seconds", Help: "Backend request latency histogram."},
}

// Exported names outside CounterDefs and HistogramDefs.
const (
	SessionStateName  = "umroh_session_state"
	SessionStateHelp  = "Current session state; 1 for the active state, 0 otherwise."
	RouteRequestsName = "umroh_api_route_requests_total"
	RouteRequestsHelp = "Backend requests by method and templated route."
	RouteFailuresName = "umroh_api_route_failures_total"
	RouteFailuresHelp = "Failed backend requests by method and templated route."
	AuditDroppedName  = "umroh_audit_dropped_total"
	AuditDroppedHelp  = "Audit events that never reached the sink queue."
)

// SessionStates lists every state the gauge reports, in declaration order.
var SessionStates = []goUmroh.AuthState{
	goUmroh.StateBootstrapping,
	goUmroh.StateUnauthenticated,
	goUmroh.StateAwaitingExchange,
	goUmroh.StateAuthenticated,
}

// StateValue is 1 when state is the active one.
func StateValue(active, state goUmroh.AuthState) int64 {
	if active == state {
		return 1
	}
	return 0
}

// RouteSample is one route tally, ready for export.
type RouteSample struct {
	goUmroh.RouteKey
	goUmroh.RouteCounts
}

// SortedRoutes flattens routes ordered by route, then method, so output is
// stable between scrapes.
func SortedRoutes(routes map[goUmroh.RouteKey]goUmroh.RouteCounts) []RouteSample {
	out := make([]RouteSample, 0, len(routes))
	for k, v := range routes {
		out = append(out, RouteSample{RouteKey: k, RouteCounts: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Route != out[j].Route {
			return out[i].Route < out[j].Route
		}
		return out[i].Method < out[j].Method
	})
	return out
}

// HistogramBounds are the upper bounds of the eight latency buckets.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix names each bucket in instrument names.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates raw to eight buckets.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
