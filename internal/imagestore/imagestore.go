package imagestore

import (
	"fmt"
	"image"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"doc-eater/internal/database"
	"doc-eater/internal/logging"
	"doc-eater/internal/metrics"

	// Image format decoders for attribute extraction
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // WebP format support
)

// Skip reasons reported in a BatchResult.
const (
	SkipTooLarge   = "too_large"
	SkipStatFailed = "stat_failed"
	SkipCopyFailed = "copy_failed"
)

// Config configures a Store.
type Config struct {
	// Root is the base directory for all durable images.
	Root string
	// OrganizeByDate partitions storage as root/YYYY/MM/DD/documentID
	// instead of root/documentID.
	OrganizeByDate bool
	// MaxImageBytes is the per-image size ceiling; 0 means no limit.
	MaxImageBytes int64
}

// Store manages durable image storage under a single root.
type Store struct {
	root     string
	byDate   bool
	maxBytes int64
	clock    func() time.Time
}

// StoredImage describes one durably stored image.
type StoredImage struct {
	Path     string // relative to the storage root
	Filename string
	Type     database.ImageType
	Index    int // 1-based, in source order over accepted images
	Size     int64
	Width    int // 0 when unknown
	Height   int
	Format   string
}

// SkippedImage records a source file that could not be stored and why.
type SkippedImage struct {
	Source string
	Reason string
	Err    error
}

// BatchResult is the per-item outcome of one Store call. A skipped image
// never aborts its siblings.
type BatchResult struct {
	Stored  []StoredImage
	Skipped []SkippedImage
}

// Stats summarizes everything under the storage root.
type Stats struct {
	Files int   `json:"files"`
	Bytes int64 `json:"bytes"`
}

// New creates a Store, ensuring the root directory exists.
func New(cfg Config) (*Store, error) {
	if err := os.MkdirAll(cfg.Root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image storage root: %w", err)
	}
	return &Store{
		root:     cfg.Root,
		byDate:   cfg.OrganizeByDate,
		maxBytes: cfg.MaxImageBytes,
		clock:    time.Now,
	}, nil
}

// storageDir returns (creating if needed) the directory for a document's
// images.
func (s *Store) storageDir(documentID string) (string, error) {
	dir := s.root
	if s.byDate {
		now := s.clock()
		dir = filepath.Join(dir,
			fmt.Sprintf("%04d", now.Year()),
			fmt.Sprintf("%02d", int(now.Month())),
			fmt.Sprintf("%02d", now.Day()),
		)
	}
	dir = filepath.Join(dir, documentID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create storage directory: %w", err)
	}
	return dir, nil
}

// Store relocates the given transient files into durable storage for a
// document. Ordinal indices are assigned 1-based over the accepted images
// in source order. Oversized or unreadable sources are skipped with a
// reason, never aborting the batch.
func (s *Store) Store(documentID string, sources []string) (BatchResult, error) {
	var result BatchResult
	if len(sources) == 0 {
		return result, nil
	}

	dir, err := s.storageDir(documentID)
	if err != nil {
		return result, err
	}

	logging.Info("Storing %d images for document %s in %s", len(sources), documentID, dir)

	index := 0
	for _, source := range sources {
		info, statErr := os.Stat(source)
		if statErr != nil {
			logging.Warn("Cannot stat image %s: %v", source, statErr)
			result.Skipped = append(result.Skipped, SkippedImage{Source: source, Reason: SkipStatFailed, Err: statErr})
			metrics.ImagesSkippedTotal.WithLabelValues(SkipStatFailed).Inc()
			continue
		}

		if s.maxBytes > 0 && info.Size() > s.maxBytes {
			logging.Warn("Image %s size %d exceeds limit %d", source, info.Size(), s.maxBytes)
			result.Skipped = append(result.Skipped, SkippedImage{Source: source, Reason: SkipTooLarge})
			metrics.ImagesSkippedTotal.WithLabelValues(SkipTooLarge).Inc()
			continue
		}

		filename := filepath.Base(source)
		target := filepath.Join(dir, filename)

		// Sources from different scratch subdirectories can share a
		// basename; disambiguate instead of overwriting an earlier
		// sibling.
		if _, statErr := os.Stat(target); statErr == nil {
			filename = fmt.Sprintf("%d_%s", index+1, filename)
			target = filepath.Join(dir, filename)
		}

		if copyErr := copyFile(source, target); copyErr != nil {
			logging.Error("Failed to store image %s: %v", source, copyErr)
			result.Skipped = append(result.Skipped, SkippedImage{Source: source, Reason: SkipCopyFailed, Err: copyErr})
			metrics.ImagesSkippedTotal.WithLabelValues(SkipCopyFailed).Inc()
			continue
		}

		relPath, relErr := filepath.Rel(s.root, target)
		if relErr != nil {
			// Should not happen: target is always under root.
			relPath = filepath.Join(documentID, filename)
		}

		index++
		stored := StoredImage{
			Path:     relPath,
			Filename: filename,
			Type:     Classify(filename),
			Index:    index,
			Size:     info.Size(),
		}
		stored.Width, stored.Height, stored.Format = imageAttributes(target)

		result.Stored = append(result.Stored, stored)
		metrics.ImagesStoredTotal.Inc()
		logging.Debug("Stored image: %s", target)
	}

	logging.Info("Stored %d images for document %s (%d skipped)",
		len(result.Stored), documentID, len(result.Skipped))
	return result, nil
}

// Path resolves a stored relative path back to an absolute one. It does
// not check existence.
func (s *Store) Path(documentID, relative string) string {
	_ = documentID
	return filepath.Join(s.root, relative)
}

// Cleanup deletes every file under the document's storage directory and
// removes the directory if left empty. Returns the number of files
// removed; a missing directory is not an error.
func (s *Store) Cleanup(documentID string) (int, error) {
	deleted := 0
	for _, dir := range s.findDocumentDirs(documentID) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return deleted, fmt.Errorf("failed to read storage directory: %w", err)
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			if err := os.Remove(path); err != nil {
				return deleted, fmt.Errorf("failed to remove %s: %w", path, err)
			}
			deleted++
			metrics.ImageCleanupFilesTotal.Inc()
		}

		// Drop the directory itself when nothing is left.
		if remaining, err := os.ReadDir(dir); err == nil && len(remaining) == 0 {
			if err := os.Remove(dir); err != nil {
				logging.Warn("Failed to remove empty storage directory %s: %v", dir, err)
			}
		}
	}

	if deleted > 0 {
		logging.Info("Cleaned up %d images for document %s", deleted, documentID)
	}
	return deleted, nil
}

// findDocumentDirs locates the document's storage directory for both
// layouts. With date partitioning the ingestion date is not known at
// cleanup time, so date subtrees are globbed.
func (s *Store) findDocumentDirs(documentID string) []string {
	var dirs []string

	flat := filepath.Join(s.root, documentID)
	if info, err := os.Stat(flat); err == nil && info.IsDir() {
		dirs = append(dirs, flat)
	}

	matches, err := filepath.Glob(filepath.Join(s.root, "*", "*", "*", documentID))
	if err != nil {
		return dirs
	}
	for _, match := range matches {
		if info, statErr := os.Stat(match); statErr == nil && info.IsDir() {
			dirs = append(dirs, match)
		}
	}
	return dirs
}

// ScanStats walks the entire storage root and returns file and byte
// totals. O(total files); intended for the operator stats path, not the
// per-file hot path.
func (s *Store) ScanStats() (Stats, error) {
	var stats Stats
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logging.Warn("Error scanning storage at %s: %v", path, err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		info, infoErr := d.Info()
		if infoErr != nil {
			return nil
		}
		stats.Files++
		stats.Bytes += info.Size()
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("failed to scan storage root: %w", err)
	}

	metrics.StorageFiles.Set(float64(stats.Files))
	metrics.StorageBytes.Set(float64(stats.Bytes))
	return stats, nil
}

// Classify maps an extracted filename to an image type using the
// converter's naming hints. Unmatched names default to picture.
func Classify(filename string) database.ImageType {
	name := strings.ToLower(filename)

	switch {
	case strings.Contains(name, "table"):
		return database.ImageTable
	case strings.Contains(name, "formula"), strings.Contains(name, "equation"):
		return database.ImageFormula
	case strings.Contains(name, "chart"):
		return database.ImageChart
	case strings.Contains(name, "diagram"):
		return database.ImageDiagram
	case strings.Contains(name, "page"):
		return database.ImagePage
	default:
		return database.ImagePicture
	}
}

// copyFile copies source to target, removing a partially written target
// on failure so a later retry never sees a truncated file.
func copyFile(source, target string) error {
	in, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create target: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		if rmErr := os.Remove(target); rmErr != nil {
			logging.Warn("Failed to remove partial file %s: %v", target, rmErr)
		}
		return fmt.Errorf("failed to copy image data: %w", err)
	}

	if err := out.Close(); err != nil {
		if rmErr := os.Remove(target); rmErr != nil {
			logging.Warn("Failed to remove partial file %s: %v", target, rmErr)
		}
		return fmt.Errorf("failed to finalize target: %w", err)
	}
	return nil
}

// imageAttributes extracts pixel dimensions and the encoded format on a
// best-effort basis. Zero values mean unknown; absence is not an error.
func imageAttributes(path string) (width, height int, format string) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, ""
	}
	defer f.Close()

	config, name, err := image.DecodeConfig(f)
	if err == nil {
		return config.Width, config.Height, strings.ToUpper(name)
	}

	// DecodeConfig covers the common formats; fall back to a full decode
	// for anything it cannot sniff.
	img, openErr := imaging.Open(path)
	if openErr != nil {
		logging.Debug("Could not extract attributes from %s: %v", path, err)
		return 0, 0, ""
	}
	bounds := img.Bounds()
	return bounds.Dx(), bounds.Dy(), ""
}
