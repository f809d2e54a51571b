// Package otel binds goUmroh client metrics to OpenTelemetry observable
// instruments. The caller owns the MeterProvider.
package otel
