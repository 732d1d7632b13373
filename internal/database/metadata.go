package database

import (
	"context"
	"fmt"
	"time"

	"doc-eater/internal/logging"
)

// AddMetadata attaches key/value entries to a document. A later write for
// an existing key supersedes the earlier value.
func (d *Database) AddMetadata(ctx context.Context, documentID string, entries map[string]string) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("add_metadata", start, err) }()

	if len(entries) == 0 {
		return nil
	}

	ctx, cancel := opContext(ctx)
	defer cancel()

	tx, txErr := d.db.BeginTx(ctx, nil)
	if txErr != nil {
		err = txErr
		return fmt.Errorf("failed to begin metadata transaction: %w", txErr)
	}

	for key, value := range entries {
		if _, execErr := tx.ExecContext(ctx, `
			INSERT INTO document_metadata (document_id, key, value, created_at)
			VALUES (?, ?, ?, strftime('%s', 'now'))
			ON CONFLICT(document_id, key) DO UPDATE SET
				value = excluded.value,
				created_at = excluded.created_at`,
			documentID, key, value,
		); execErr != nil {
			err = execErr
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.Error("metadata rollback failed: %v", rbErr)
			}
			return fmt.Errorf("failed to write metadata %q: %w", key, execErr)
		}
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit metadata: %w", err)
	}

	logging.Debug("Added %d metadata entries to document %s", len(entries), documentID)
	return nil
}

// GetMetadata returns all metadata for a document as a map.
func (d *Database) GetMetadata(ctx context.Context, documentID string) (map[string]string, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_metadata", start, err) }()

	ctx, cancel := opContext(ctx)
	defer cancel()

	rows, queryErr := d.db.QueryContext(ctx,
		"SELECT key, value FROM document_metadata WHERE document_id = ?", documentID)
	if queryErr != nil {
		err = queryErr
		return nil, fmt.Errorf("failed to query metadata: %w", queryErr)
	}
	defer rows.Close()

	entries := make(map[string]string)
	for rows.Next() {
		var key, value string
		if scanErr := rows.Scan(&key, &value); scanErr != nil {
			err = scanErr
			return nil, fmt.Errorf("failed to scan metadata: %w", scanErr)
		}
		entries[key] = value
	}
	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to iterate metadata: %w", err)
	}
	return entries, nil
}
