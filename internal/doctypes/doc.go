// Package doctypes maps document file extensions to media types and
// provides the default set of convertible formats.
package doctypes
