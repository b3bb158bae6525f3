// Package metrics defines the Prometheus collectors exported by the
// library indexer. All collectors are registered at package init via
// promauto and served on /metrics when server.metrics_enabled is set.
package metrics
