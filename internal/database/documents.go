package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"doc-eater/internal/logging"
)

// CreateDocument inserts a new document in pending status and returns it.
// Returns ErrDuplicatePath or ErrDuplicateHash when another document
// already owns the path or fingerprint.
func (d *Database) CreateDocument(ctx context.Context, path, filename, contentHash string, size int64, mimeType string) (*Document, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("create_document", start, err) }()

	ctx, cancel := opContext(ctx)
	defer cancel()

	doc := &Document{
		ID:          uuid.NewString(),
		Path:        path,
		Filename:    filename,
		ContentHash: contentHash,
		Size:        size,
		MimeType:    mimeType,
		Status:      StatusPending,
	}

	now := time.Now()
	_, err = d.db.ExecContext(ctx, `
		INSERT INTO documents (id, path, filename, content_hash, size, mime_type, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Path, doc.Filename, doc.ContentHash, doc.Size,
		nullString(doc.MimeType), doc.Status, now.Unix(), now.Unix(),
	)
	if err != nil {
		err = mapConstraintError(err)
		return nil, err
	}

	doc.CreatedAt = now
	doc.UpdatedAt = now

	logging.Info("Created document record: %s (%s)", doc.ID, filename)
	return doc, nil
}

// GetDocument returns a document by ID, or ErrNotFound.
func (d *Database) GetDocument(ctx context.Context, id string) (*Document, error) {
	return d.getDocument(ctx, "get_document", "id = ?", id)
}

// GetDocumentByPath returns the document owning a source path, or ErrNotFound.
func (d *Database) GetDocumentByPath(ctx context.Context, path string) (*Document, error) {
	return d.getDocument(ctx, "get_document_by_path", "path = ?", path)
}

// GetDocumentByHash returns the document owning a content fingerprint, or
// ErrNotFound.
func (d *Database) GetDocumentByHash(ctx context.Context, contentHash string) (*Document, error) {
	return d.getDocument(ctx, "get_document_by_hash", "content_hash = ?", contentHash)
}

func (d *Database) getDocument(ctx context.Context, operation, where string, arg any) (*Document, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery(operation, start, err) }()

	ctx, cancel := opContext(ctx)
	defer cancel()

	row := d.db.QueryRowContext(ctx, `
		SELECT id, path, filename, content_hash, size, mime_type, markdown_content,
		       status, created_at, updated_at, processed_at
		FROM documents WHERE `+where, arg)

	doc, scanErr := scanDocument(row)
	if scanErr != nil {
		if errors.Is(scanErr, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		err = scanErr
		return nil, fmt.Errorf("failed to query document: %w", scanErr)
	}
	return doc, nil
}

// UpdateDocumentContent sets the markdown content and status for a
// document. For completed documents the processed timestamp is set.
func (d *Database) UpdateDocumentContent(ctx context.Context, id, markdown string, status DocumentStatus) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("update_content", start, err) }()

	ctx, cancel := opContext(ctx)
	defer cancel()

	var processedAt any
	if status == StatusCompleted {
		processedAt = time.Now().Unix()
	}

	var res sql.Result
	res, err = d.db.ExecContext(ctx, `
		UPDATE documents
		SET markdown_content = ?, status = ?, processed_at = ?, updated_at = strftime('%s', 'now')
		WHERE id = ?`,
		markdown, status, processedAt, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update document content: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		err = ErrNotFound
		return err
	}

	logging.Debug("Updated document content: %s -> %s", id, status)
	return nil
}

// UpdateDocumentStatus transitions a document's status.
func (d *Database) UpdateDocumentStatus(ctx context.Context, id string, status DocumentStatus) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("update_status", start, err) }()

	ctx, cancel := opContext(ctx)
	defer cancel()

	var res sql.Result
	res, err = d.db.ExecContext(ctx, `
		UPDATE documents SET status = ?, updated_at = strftime('%s', 'now') WHERE id = ?`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update document status: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		err = ErrNotFound
		return err
	}

	logging.Debug("Updated document status: %s -> %s", id, status)
	return nil
}

// ListDocuments returns documents newest-first, optionally filtered by
// status. Pass an empty status for all documents.
func (d *Database) ListDocuments(ctx context.Context, status DocumentStatus, limit, offset int) ([]Document, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("list_documents", start, err) }()

	ctx, cancel := opContext(ctx)
	defer cancel()

	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, path, filename, content_hash, size, mime_type, markdown_content,
		       status, created_at, updated_at, processed_at
		FROM documents`
	args := []any{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC, id LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, queryErr := d.db.QueryContext(ctx, query, args...)
	if queryErr != nil {
		err = queryErr
		return nil, fmt.Errorf("failed to list documents: %w", queryErr)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc, scanErr := scanDocument(rows)
		if scanErr != nil {
			err = scanErr
			return nil, fmt.Errorf("failed to scan document: %w", scanErr)
		}
		docs = append(docs, *doc)
	}
	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}
	return docs, nil
}

// CountByStatus returns document totals per status.
func (d *Database) CountByStatus(ctx context.Context) (StatusCounts, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("count_by_status", start, err) }()

	ctx, cancel := opContext(ctx)
	defer cancel()

	rows, queryErr := d.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM documents GROUP BY status`)
	if queryErr != nil {
		err = queryErr
		return StatusCounts{}, fmt.Errorf("failed to count documents: %w", queryErr)
	}
	defer rows.Close()

	var counts StatusCounts
	for rows.Next() {
		var status DocumentStatus
		var n int
		if scanErr := rows.Scan(&status, &n); scanErr != nil {
			err = scanErr
			return StatusCounts{}, fmt.Errorf("failed to scan count: %w", scanErr)
		}
		switch status {
		case StatusPending:
			counts.Pending = n
		case StatusProcessing:
			counts.Processing = n
		case StatusCompleted:
			counts.Completed = n
		case StatusFailed:
			counts.Failed = n
		}
		counts.Total += n
	}
	err = rows.Err()
	if err != nil {
		return StatusCounts{}, fmt.Errorf("failed to iterate counts: %w", err)
	}
	return counts, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(s scanner) (*Document, error) {
	var doc Document
	var mimeType, markdown sql.NullString
	var createdAt, updatedAt int64
	var processedAt sql.NullInt64

	if err := s.Scan(
		&doc.ID, &doc.Path, &doc.Filename, &doc.ContentHash, &doc.Size,
		&mimeType, &markdown, &doc.Status, &createdAt, &updatedAt, &processedAt,
	); err != nil {
		return nil, err
	}

	doc.MimeType = mimeType.String
	doc.Markdown = markdown.String
	doc.CreatedAt = time.Unix(createdAt, 0)
	doc.UpdatedAt = time.Unix(updatedAt, 0)
	if processedAt.Valid {
		doc.ProcessedAt = time.Unix(processedAt.Int64, 0)
	}
	return &doc, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
