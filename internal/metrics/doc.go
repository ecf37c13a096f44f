// Package metrics counts dispatch outcomes with Prometheus collectors. A CLI
// invocation is short-lived, so the registry is written to a node_exporter
// textfile rather than served over HTTP.
package metrics
