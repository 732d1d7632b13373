// Package handlers implements the operator HTTP API: document and
// image listings, processing logs, storage statistics, and the health
// endpoints used by container orchestration.
package handlers
