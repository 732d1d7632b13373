package database

import "time"

// DocumentStatus is the lifecycle state of a document.
type DocumentStatus string

const (
	// StatusPending means the document row exists but conversion has not started.
	StatusPending DocumentStatus = "pending"
	// StatusProcessing means conversion is in flight.
	StatusProcessing DocumentStatus = "processing"
	// StatusCompleted is the terminal success state.
	StatusCompleted DocumentStatus = "completed"
	// StatusFailed is the terminal failure state.
	StatusFailed DocumentStatus = "failed"
)

// LogLevel is the severity of a processing log entry.
type LogLevel string

const (
	LogInfo    LogLevel = "info"
	LogWarning LogLevel = "warning"
	LogError   LogLevel = "error"
)

// ImageType classifies an extracted image.
type ImageType string

const (
	ImagePicture ImageType = "picture"
	ImageTable   ImageType = "table"
	ImageFormula ImageType = "formula"
	ImageChart   ImageType = "chart"
	ImageDiagram ImageType = "diagram"
	ImagePage    ImageType = "page"
)

// Document is one ingested file and its converted content.
type Document struct {
	ID          string         `json:"id"`
	Path        string         `json:"path"`
	Filename    string         `json:"filename"`
	ContentHash string         `json:"contentHash"`
	Size        int64          `json:"size"`
	MimeType    string         `json:"mimeType,omitempty"`
	Markdown    string         `json:"markdown,omitempty"`
	Status      DocumentStatus `json:"status"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	ProcessedAt time.Time      `json:"processedAt,omitzero"`
}

// DocumentImage is one durably stored extracted image.
// Path is always relative to the image storage root.
type DocumentImage struct {
	ID               string    `json:"id"`
	DocumentID       string    `json:"documentId"`
	Path             string    `json:"path"`
	Filename         string    `json:"filename"`
	Type             ImageType `json:"type"`
	Index            int       `json:"index"`
	Size             int64     `json:"size"`
	Width            int       `json:"width,omitempty"`
	Height           int       `json:"height,omitempty"`
	Format           string    `json:"format,omitempty"`
	ExtractionMethod string    `json:"extractionMethod,omitempty"`
	QualityScore     float64   `json:"qualityScore,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// MetadataEntry is a key/value attached to a document. Later writes for
// the same key supersede earlier ones.
type MetadataEntry struct {
	DocumentID string    `json:"documentId"`
	Key        string    `json:"key"`
	Value      string    `json:"value"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ProcessingLogEntry is an append-only log record. DocumentID is empty for
// system-wide entries.
type ProcessingLogEntry struct {
	ID         int64          `json:"id"`
	DocumentID string         `json:"documentId,omitempty"`
	Level      LogLevel       `json:"level"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// StatusCounts holds per-status document totals for the stats endpoint.
type StatusCounts struct {
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
	Total      int `json:"total"`
}
