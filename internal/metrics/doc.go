// Package metrics defines Prometheus collectors for the ingestion
// pipeline, the filesystem watcher, the document store, and image storage,
// and serves them on a dedicated metrics port.
package metrics
