package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"doc-eater/internal/logging"
)

// CreateImage inserts a record for a durably stored extracted image.
// The (document, index) pair is unique; the caller assigns indices in
// extraction order.
func (d *Database) CreateImage(ctx context.Context, img *DocumentImage) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("create_image", start, err) }()

	ctx, cancel := opContext(ctx)
	defer cancel()

	if img.ID == "" {
		img.ID = uuid.NewString()
	}
	now := time.Now()

	_, err = d.db.ExecContext(ctx, `
		INSERT INTO document_images
			(id, document_id, image_path, filename, image_type, image_index,
			 file_size, width, height, format, extraction_method, quality_score, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		img.ID, img.DocumentID, img.Path, img.Filename, img.Type, img.Index,
		img.Size, nullInt(img.Width), nullInt(img.Height), nullString(img.Format),
		nullString(img.ExtractionMethod), nullFloat(img.QualityScore), now.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to create image record: %w", err)
	}

	img.CreatedAt = now
	logging.Debug("Created image record: %s for document %s", img.ID, img.DocumentID)
	return nil
}

// ListImages returns a document's images ordered by extraction index.
func (d *Database) ListImages(ctx context.Context, documentID string) ([]DocumentImage, error) {
	return d.listImages(ctx, "list_images",
		"WHERE document_id = ? ORDER BY image_index", documentID)
}

// ListImagesByType returns images of one classification across all
// documents, newest first.
func (d *Database) ListImagesByType(ctx context.Context, imageType ImageType, limit, offset int) ([]DocumentImage, error) {
	if limit <= 0 {
		limit = 100
	}
	return d.listImages(ctx, "list_images_by_type",
		"WHERE image_type = ? ORDER BY created_at DESC, id LIMIT ? OFFSET ?",
		imageType, limit, offset)
}

func (d *Database) listImages(ctx context.Context, operation, clause string, args ...any) ([]DocumentImage, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery(operation, start, err) }()

	ctx, cancel := opContext(ctx)
	defer cancel()

	rows, queryErr := d.db.QueryContext(ctx, `
		SELECT id, document_id, image_path, filename, image_type, image_index,
		       file_size, width, height, format, extraction_method, quality_score, created_at
		FROM document_images `+clause, args...)
	if queryErr != nil {
		err = queryErr
		return nil, fmt.Errorf("failed to list images: %w", queryErr)
	}
	defer rows.Close()

	var images []DocumentImage
	for rows.Next() {
		var img DocumentImage
		var width, height sql.NullInt64
		var format, method sql.NullString
		var quality sql.NullFloat64
		var createdAt int64

		if scanErr := rows.Scan(
			&img.ID, &img.DocumentID, &img.Path, &img.Filename, &img.Type, &img.Index,
			&img.Size, &width, &height, &format, &method, &quality, &createdAt,
		); scanErr != nil {
			err = scanErr
			return nil, fmt.Errorf("failed to scan image: %w", scanErr)
		}

		img.Width = int(width.Int64)
		img.Height = int(height.Int64)
		img.Format = format.String
		img.ExtractionMethod = method.String
		img.QualityScore = quality.Float64
		img.CreatedAt = time.Unix(createdAt, 0)
		images = append(images, img)
	}
	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to iterate images: %w", err)
	}
	return images, nil
}

// DeleteImages removes all image records for a document and returns the
// count removed. Used by failure rollback; cascade delete handles the
// document-removal case.
func (d *Database) DeleteImages(ctx context.Context, documentID string) (int64, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("delete_images", start, err) }()

	ctx, cancel := opContext(ctx)
	defer cancel()

	res, execErr := d.db.ExecContext(ctx,
		"DELETE FROM document_images WHERE document_id = ?", documentID)
	if execErr != nil {
		err = execErr
		return 0, fmt.Errorf("failed to delete image records: %w", execErr)
	}

	count, _ := res.RowsAffected()
	logging.Debug("Deleted %d image records for document %s", count, documentID)
	return count, nil
}

func nullInt(n int) any {
	if n == 0 {
		return nil
	}
	return n
}

func nullFloat(f float64) any {
	if f == 0 {
		return nil
	}
	return f
}
