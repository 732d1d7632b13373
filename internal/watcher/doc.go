// Package watcher turns raw filesystem events into ingestion work. It
// chains three pieces: a recursive fsnotify monitor, a per-path
// debouncer that collapses event bursts into single triggers, and a
// bounded worker pool that runs at most N ingestions concurrently over
// an unbounded intake queue.
package watcher
