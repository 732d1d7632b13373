// Package hasher computes content fingerprints for ingested files.
package hasher
