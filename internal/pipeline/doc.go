// Package pipeline orchestrates the ingestion of one file: acceptance
// filtering, path and content deduplication, conversion, durable image
// and content persistence, metadata capture, and the failure path that
// leaves a failed document inspectable instead of orphaned.
//
// Every collaborator is injected through a constructor so one pipeline
// instance can be shared by all pool workers.
package pipeline
