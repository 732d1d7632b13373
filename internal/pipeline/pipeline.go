package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"doc-eater/internal/converter"
	"doc-eater/internal/database"
	"doc-eater/internal/doctypes"
	"doc-eater/internal/hasher"
	"doc-eater/internal/imagestore"
	"doc-eater/internal/logging"
	"doc-eater/internal/metrics"
)

// Outcome is the result of one ingestion attempt.
type Outcome int

const (
	// Ingested means a new document was created and completed.
	Ingested Outcome = iota
	// AlreadyHandled means a document for this path or content already
	// exists; nothing was reprocessed.
	AlreadyHandled
	// Rejected means the file failed the acceptance filter. Not an
	// error and no document is created.
	Rejected
	// Failed means the ingestion was attempted but could not complete.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Ingested:
		return "ingested"
	case AlreadyHandled:
		return "already_handled"
	case Rejected:
		return "rejected"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Success reports whether the outcome counts as handled rather than
// failed.
func (o Outcome) Success() bool {
	return o != Failed
}

// Store is the persistence surface the pipeline needs.
type Store interface {
	GetDocumentByPath(ctx context.Context, path string) (*database.Document, error)
	GetDocumentByHash(ctx context.Context, hash string) (*database.Document, error)
	CreateDocument(ctx context.Context, path, filename, contentHash string, size int64, mimeType string) (*database.Document, error)
	UpdateDocumentStatus(ctx context.Context, id string, status database.DocumentStatus) error
	UpdateDocumentContent(ctx context.Context, id, markdown string, status database.DocumentStatus) error
	CreateImage(ctx context.Context, img *database.DocumentImage) error
	DeleteImages(ctx context.Context, documentID string) (int64, error)
	AddMetadata(ctx context.Context, documentID string, entries map[string]string) error
	AppendLog(ctx context.Context, level database.LogLevel, message, documentID string, details map[string]any) error
}

// ImageStore relocates transient images into durable storage.
type ImageStore interface {
	Store(documentID string, sources []string) (imagestore.BatchResult, error)
	Cleanup(documentID string) (int, error)
}

// Config carries the pipeline's acceptance and failure policies.
type Config struct {
	// MaxFileBytes rejects source files above this size; 0 disables the
	// ceiling.
	MaxFileBytes int64
	// ExcludePatterns are filename globs that are silently skipped.
	ExcludePatterns []string
	// ImagesEnabled controls whether extracted images are persisted.
	ImagesEnabled bool
	// CleanupImagesOnFailure removes a failed document's stored images
	// and their records.
	CleanupImagesOnFailure bool
}

// Pipeline drives one file through ingestion. Safe for concurrent use.
type Pipeline struct {
	store     Store
	converter converter.Converter
	images    ImageStore
	cfg       Config
	supported map[string]bool
}

// New wires a Pipeline from its collaborators.
func New(store Store, conv converter.Converter, images ImageStore, cfg Config) *Pipeline {
	supported := make(map[string]bool)
	for _, ext := range conv.SupportedExtensions() {
		supported[strings.ToLower(ext)] = true
	}
	return &Pipeline{
		store:     store,
		converter: conv,
		images:    images,
		cfg:       cfg,
		supported: supported,
	}
}

// Ingest runs the full ingestion sequence for one file path. It never
// panics and never returns an error; failures are absorbed into the
// Failed outcome with the document left inspectable.
func (p *Pipeline) Ingest(ctx context.Context, path string) (outcome Outcome) {
	start := time.Now()
	metrics.IngestInFlight.Inc()
	defer func() {
		metrics.IngestInFlight.Dec()
		metrics.IngestDuration.Observe(time.Since(start).Seconds())
		metrics.IngestTotal.WithLabelValues(outcome.String()).Inc()
	}()

	info, ok := p.accept(path)
	if !ok {
		return Rejected
	}

	// Path dedup: any prior document for this path, in any state, means
	// the trigger is a re-delivery.
	if _, err := p.store.GetDocumentByPath(ctx, path); err == nil {
		logging.Debug("Document already exists for path %s", path)
		return AlreadyHandled
	} else if !errors.Is(err, database.ErrNotFound) {
		logging.Error("Path lookup failed for %s: %v", path, err)
		return Failed
	}

	contentHash, err := hasher.HashFile(path)
	if err != nil {
		logging.Error("Failed to fingerprint %s: %v", path, err)
		return Failed
	}

	// Content dedup: same bytes under a different path.
	if existing, err := p.store.GetDocumentByHash(ctx, contentHash); err == nil {
		logging.Info("Content of %s already ingested as document %s", path, existing.ID)
		return AlreadyHandled
	} else if !errors.Is(err, database.ErrNotFound) {
		logging.Error("Hash lookup failed for %s: %v", path, err)
		return Failed
	}

	filename := filepath.Base(path)
	mimeType := doctypes.GetMimeType(doctypes.Ext(path))

	doc, err := p.store.CreateDocument(ctx, path, filename, contentHash, info.Size(), mimeType)
	if err != nil {
		// Losing the dedup race is not a failure; the winner owns the
		// content.
		if errors.Is(err, database.ErrDuplicatePath) || errors.Is(err, database.ErrDuplicateHash) {
			logging.Info("Lost dedup race for %s: %v", path, err)
			return AlreadyHandled
		}
		logging.Error("Failed to create document for %s: %v", path, err)
		return Failed
	}

	if err := p.store.UpdateDocumentStatus(ctx, doc.ID, database.StatusProcessing); err != nil {
		return p.fail(ctx, doc, info, err)
	}

	result, err := p.converter.Convert(ctx, path)
	if err != nil {
		return p.fail(ctx, doc, info, err)
	}
	defer os.RemoveAll(result.ScratchDir)

	imageCount := p.persistImages(ctx, doc.ID, result.ImagePaths)

	if err := p.store.UpdateDocumentContent(ctx, doc.ID, result.Markdown, database.StatusCompleted); err != nil {
		return p.fail(ctx, doc, info, err)
	}

	if err := p.store.AddMetadata(ctx, doc.ID, fileMetadata(path, info, mimeType)); err != nil {
		return p.fail(ctx, doc, info, err)
	}

	if err := p.store.AppendLog(ctx, database.LogInfo, "Document processed successfully", doc.ID, map[string]any{
		"file_size":      info.Size(),
		"content_length": len(result.Markdown),
		"image_count":    imageCount,
	}); err != nil {
		return p.fail(ctx, doc, info, err)
	}

	logging.Info("Ingested %s as document %s (%d images) in %v",
		filename, doc.ID, imageCount, time.Since(start).Round(time.Millisecond))
	return Ingested
}

// accept applies the acceptance filter. A false return is a silent
// skip, never an error.
func (p *Pipeline) accept(path string) (os.FileInfo, bool) {
	if !p.supported[doctypes.Ext(path)] {
		logging.Debug("Skipping %s: unsupported extension", path)
		return nil, false
	}

	filename := filepath.Base(path)
	for _, pattern := range p.cfg.ExcludePatterns {
		if matched, err := filepath.Match(pattern, filename); err == nil && matched {
			logging.Debug("Skipping %s: matches exclusion %q", path, pattern)
			return nil, false
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		// The file can vanish between the trigger and now.
		logging.Warn("Cannot stat %s: %v", path, err)
		return nil, false
	}
	if info.IsDir() {
		return nil, false
	}
	if p.cfg.MaxFileBytes > 0 && info.Size() > p.cfg.MaxFileBytes {
		logging.Warn("Skipping %s: size %d exceeds limit %d", path, info.Size(), p.cfg.MaxFileBytes)
		return nil, false
	}
	return info, true
}

// persistImages stores the transient images and records the survivors.
// Per-image failures are logged and skipped; a wholesale storage
// failure degrades to zero images rather than failing the document.
func (p *Pipeline) persistImages(ctx context.Context, documentID string, sources []string) int {
	if !p.cfg.ImagesEnabled || len(sources) == 0 {
		return 0
	}

	batch, err := p.images.Store(documentID, sources)
	if err != nil {
		logging.Warn("Image storage failed for document %s, continuing without images: %v", documentID, err)
		return 0
	}

	recorded := 0
	for _, stored := range batch.Stored {
		img := &database.DocumentImage{
			DocumentID:       documentID,
			Path:             stored.Path,
			Filename:         stored.Filename,
			Type:             stored.Type,
			Index:            stored.Index,
			Size:             stored.Size,
			Width:            stored.Width,
			Height:           stored.Height,
			Format:           stored.Format,
			ExtractionMethod: "docling",
		}
		if err := p.store.CreateImage(ctx, img); err != nil {
			logging.Warn("Failed to record image %s for document %s: %v", stored.Filename, documentID, err)
			continue
		}
		recorded++
	}

	for _, skipped := range batch.Skipped {
		p.store.AppendLog(ctx, database.LogWarning, "Image skipped during storage", documentID, map[string]any{
			"source": skipped.Source,
			"reason": skipped.Reason,
		})
	}
	return recorded
}

// fail moves a document to FAILED while keeping it inspectable: stored
// images are optionally cleaned up, a placeholder stands in for the
// markdown, and an ERROR log entry records the cause.
func (p *Pipeline) fail(ctx context.Context, doc *database.Document, info os.FileInfo, cause error) Outcome {
	logging.Error("Processing failed for document %s (%s): %v", doc.ID, doc.Path, cause)

	if p.cfg.ImagesEnabled && p.cfg.CleanupImagesOnFailure {
		if removed, err := p.images.Cleanup(doc.ID); err != nil {
			logging.Warn("Image cleanup failed for document %s: %v", doc.ID, err)
		} else if removed > 0 {
			logging.Info("Removed %d stored images for failed document %s", removed, doc.ID)
		}
		if _, err := p.store.DeleteImages(ctx, doc.ID); err != nil {
			logging.Warn("Image record cleanup failed for document %s: %v", doc.ID, err)
		}
	}

	placeholder := placeholderMarkdown(doc.Filename, cause, info.Size(), doc.MimeType)
	partialSaved := true
	if err := p.store.UpdateDocumentContent(ctx, doc.ID, placeholder, database.StatusFailed); err != nil {
		partialSaved = false
		logging.Error("Failed to store placeholder for document %s: %v", doc.ID, err)
		if statusErr := p.store.UpdateDocumentStatus(ctx, doc.ID, database.StatusFailed); statusErr != nil {
			logging.Error("Failed to mark document %s failed: %v", doc.ID, statusErr)
		}
	}

	p.store.AppendLog(ctx, database.LogError, "Document processing failed", doc.ID, map[string]any{
		"error":                 cause.Error(),
		"partial_content_saved": partialSaved,
	})
	return Failed
}

// placeholderMarkdown synthesizes the inspectable stand-in content for
// a failed document.
func placeholderMarkdown(filename string, cause error, size int64, mimeType string) string {
	if mimeType == "" {
		mimeType = "unknown"
	}
	return fmt.Sprintf("# %s\n\nFile processing failed: %v\n\nSize: %d bytes\nType: %s\n",
		filename, cause, size, mimeType)
}

// fileMetadata captures the lightweight filesystem facts attached to a
// completed document.
func fileMetadata(path string, info os.FileInfo, mimeType string) map[string]string {
	return map[string]string{
		"file_extension":  doctypes.Ext(path),
		"file_size_bytes": strconv.FormatInt(info.Size(), 10),
		"modified_time":   info.ModTime().UTC().Format(time.RFC3339),
		"mime_type":       mimeType,
	}
}
