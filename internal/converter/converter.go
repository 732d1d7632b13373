package converter

import (
	"context"
	"fmt"
)

// Result is the output of one successful conversion.
type Result struct {
	// Markdown is the full converted document text.
	Markdown string
	// ImagePaths are absolute paths to the extracted image files inside
	// ScratchDir, in the order they appear in the document.
	ImagePaths []string
	// ScratchDir holds the transient conversion output. The caller
	// removes it after persisting what it needs.
	ScratchDir string
}

// Converter produces markdown and images from a source document.
type Converter interface {
	Convert(ctx context.Context, path string) (*Result, error)
	SupportedExtensions() []string
}

// ConversionError wraps a failure from the external conversion tool so
// callers can distinguish it from infrastructure errors.
type ConversionError struct {
	Path string
	Err  error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("conversion of %s failed: %v", e.Path, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}
