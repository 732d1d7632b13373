package converter

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"doc-eater/internal/doctypes"
	"doc-eater/internal/logging"
	"doc-eater/internal/metrics"
)

const defaultCommand = "docling"

// How long Wait may block on the stderr pipe after the tool is killed.
const waitDelay = 2 * time.Second

// Extensions the conversion tool emits for extracted images.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
	".tiff": true,
}

// Docling converts documents by invoking the docling CLI.
type Docling struct {
	command string
	timeout time.Duration
}

// NewDocling creates a Docling converter. An empty command selects the
// default binary name; a zero timeout disables the per-conversion
// deadline.
func NewDocling(command string, timeout time.Duration) *Docling {
	if command == "" {
		command = defaultCommand
	}
	return &Docling{command: command, timeout: timeout}
}

// Available verifies the conversion binary can be found on PATH.
func (d *Docling) Available() error {
	if _, err := exec.LookPath(d.command); err != nil {
		return fmt.Errorf("conversion tool %q not found: %w", d.command, err)
	}
	return nil
}

// SupportedExtensions returns the document extensions the tool accepts.
func (d *Docling) SupportedExtensions() []string {
	return doctypes.DefaultExtensions()
}

// Convert runs the conversion tool against path and collects its output.
// On success the returned Result owns a scratch directory the caller
// must remove; on failure the scratch directory is already gone.
func (d *Docling) Convert(ctx context.Context, path string) (*Result, error) {
	start := time.Now()

	scratch, err := os.MkdirTemp("", "doceater-convert-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, d.command,
		"--to", "md",
		"--image-export-mode", "referenced",
		"--output", scratch,
		path,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	// The tool spawns worker processes that inherit the stderr pipe.
	// Without a wait delay, Wait blocks past the deadline until every
	// inheritor exits, even after the tool itself has been killed.
	cmd.WaitDelay = waitDelay

	logging.Debug("Running conversion: %s %s", d.command, path)
	if err := cmd.Run(); err != nil {
		os.RemoveAll(scratch)
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			err = fmt.Errorf("%w: %s", err, detail)
		}
		return nil, &ConversionError{Path: path, Err: err}
	}

	markdown, err := d.readMarkdown(scratch, path)
	if err != nil {
		os.RemoveAll(scratch)
		return nil, &ConversionError{Path: path, Err: err}
	}

	images, err := collectImages(scratch)
	if err != nil {
		os.RemoveAll(scratch)
		return nil, &ConversionError{Path: path, Err: err}
	}

	elapsed := time.Since(start)
	metrics.ConversionDuration.Observe(elapsed.Seconds())
	logging.Info("Converted %s in %v (%d bytes markdown, %d images)",
		filepath.Base(path), elapsed.Round(time.Millisecond), len(markdown), len(images))

	return &Result{
		Markdown:   markdown,
		ImagePaths: images,
		ScratchDir: scratch,
	}, nil
}

// readMarkdown loads the converted document, named after the source
// file's stem.
func (d *Docling) readMarkdown(scratch, source string) (string, error) {
	stem := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	mdPath := filepath.Join(scratch, stem+".md")

	data, err := os.ReadFile(mdPath)
	if err != nil {
		return "", fmt.Errorf("conversion produced no markdown output: %w", err)
	}
	return string(data), nil
}

// collectImages gathers every extracted image under the scratch
// directory. WalkDir visits lexically, which preserves the tool's
// numbered naming order.
func collectImages(scratch string) ([]string, error) {
	var images []string
	err := filepath.WalkDir(scratch, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		if imageExtensions[strings.ToLower(filepath.Ext(path))] {
			images = append(images, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan conversion output: %w", err)
	}
	return images, nil
}
