// Package metrics exposes Prometheus collectors for feed ingestion: processed
// records, split reconciliations, write conflicts and retries, audit writes and
// whole-feed durations. Collectors live on their own registry served at /metrics.
package metrics
