// Package telemetry provides structured logging and Prometheus metrics for
// notebook runs.
//
// Logging uses log/slog. The logger travels in context.Context and is
// enriched with run and cell identifiers. Metrics live in a private
// registry so several runs (and tests) never collide on the global one.
package telemetry
