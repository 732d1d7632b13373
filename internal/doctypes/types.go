package doctypes

import (
	"path/filepath"
	"strings"
)

// ConvertibleExtensions maps file extensions to whether the external
// converter understands them. This mirrors the docling input formats.
var ConvertibleExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".pptx": true,
	".xlsx": true,
	".html": true,
	".htm":  true,
	".md":   true,
	".csv":  true,
	".xml":  true,
}

// MimeTypes maps file extensions to their MIME types.
var MimeTypes = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".html": "text/html",
	".htm":  "text/html",
	".md":   "text/markdown",
	".csv":  "text/csv",
	".xml":  "application/xml",
	".txt":  "text/plain",

	// Extracted image formats
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
	".tiff": "image/tiff",
	".tif":  "image/tiff",
}

// Ext returns the lowercased extension of path, including the dot.
func Ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// GetMimeType returns the MIME type for a file extension, or "" if unknown.
func GetMimeType(ext string) string {
	return MimeTypes[strings.ToLower(ext)]
}

// IsConvertible reports whether the extension is a supported document format.
func IsConvertible(ext string) bool {
	return ConvertibleExtensions[strings.ToLower(ext)]
}

// DefaultExtensions returns the convertible extensions in unspecified order.
func DefaultExtensions() []string {
	exts := make([]string, 0, len(ConvertibleExtensions))
	for ext := range ConvertibleExtensions {
		exts = append(exts, ext)
	}
	return exts
}
