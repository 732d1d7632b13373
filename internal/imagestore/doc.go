// Package imagestore relocates transient extracted images into durable
// storage under a configured root, classifies them, extracts intrinsic
// attributes, and can fully reverse a store for one document.
//
// Stored paths are always relative to the root so the root can move
// between runs without invalidating database records.
package imagestore
