// Package database is the persistence boundary for doc-eater.
//
// It stores documents, their extracted images, free-form metadata, and
// processing logs in SQLite. Every exported call is atomic: a failing call
// returns an error and never leaves a half-written row visible to other
// callers. Uniqueness of a document's source path and content fingerprint
// is enforced by the schema; violations surface as ErrDuplicatePath and
// ErrDuplicateHash so callers can distinguish a lost dedup race from a
// genuine failure.
package database
