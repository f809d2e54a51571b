// Package prometheus renders goUmroh client metrics in Prometheus text
// exposition format.
//
// Counters are named umroh_*_total and the single histogram is
// umroh_api_latency_seconds. umroh_session_state carries one sample per auth
// state and per-route counters are labelled by method and route. Callers
// mount Handler themselves; nothing is registered globally.
package prometheus
