// Package workers sizes the ingestion worker pool from the CPUs
// actually available to the process. GOMAXPROCS reflects container CPU
// limits (Go 1.19+), unlike runtime.NumCPU which reports the host.
//
// The INGEST_WORKERS environment variable overrides the calculation.
package workers
