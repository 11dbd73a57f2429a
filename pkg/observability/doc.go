// Package observability provides structured logging and Prometheus metrics
// for the Lattice control plane.
//
// The Logger wraps log/slog with a JSON handler and field-chaining helpers.
// Metrics cover request dispatch, authorization guard decisions, the
// dashboard cache and store entity counts; they register against an explicit
// prometheus.Registry so tests stay isolated.
package observability
