package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"doc-eater/internal/logging"
)

// AppendLog writes an append-only processing log entry. documentID may be
// empty for system-wide entries. details is stored as JSON.
func (d *Database) AppendLog(ctx context.Context, level LogLevel, message, documentID string, details map[string]any) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("append_log", start, err) }()

	ctx, cancel := opContext(ctx)
	defer cancel()

	var detailsJSON any
	if len(details) > 0 {
		raw, marshalErr := json.Marshal(details)
		if marshalErr != nil {
			err = marshalErr
			return fmt.Errorf("failed to encode log details: %w", marshalErr)
		}
		detailsJSON = string(raw)
	}

	_, err = d.db.ExecContext(ctx, `
		INSERT INTO processing_logs (document_id, level, message, details, created_at)
		VALUES (?, ?, ?, ?, strftime('%s', 'now'))`,
		nullString(documentID), level, message, detailsJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to append processing log: %w", err)
	}

	// Mirror into the application log so operators see one stream.
	scope := documentID
	if scope == "" {
		scope = "SYSTEM"
	}
	switch level {
	case LogError:
		logging.Error("[%s] %s", scope, message)
	case LogWarning:
		logging.Warn("[%s] %s", scope, message)
	default:
		logging.Info("[%s] %s", scope, message)
	}
	return nil
}

// ListLogs returns processing log entries newest-first, optionally
// filtered by document and level.
func (d *Database) ListLogs(ctx context.Context, documentID string, level LogLevel, limit, offset int) ([]ProcessingLogEntry, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("list_logs", start, err) }()

	ctx, cancel := opContext(ctx)
	defer cancel()

	if limit <= 0 {
		limit = 100
	}

	query := "SELECT id, document_id, level, message, details, created_at FROM processing_logs"
	var clauses []string
	var args []any
	if documentID != "" {
		clauses = append(clauses, "document_id = ?")
		args = append(args, documentID)
	}
	if level != "" {
		clauses = append(clauses, "level = ?")
		args = append(args, level)
	}
	for i, clause := range clauses {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, queryErr := d.db.QueryContext(ctx, query, args...)
	if queryErr != nil {
		err = queryErr
		return nil, fmt.Errorf("failed to query processing logs: %w", queryErr)
	}
	defer rows.Close()

	var entries []ProcessingLogEntry
	for rows.Next() {
		var entry ProcessingLogEntry
		var docID, details sql.NullString
		var createdAt int64

		if scanErr := rows.Scan(&entry.ID, &docID, &entry.Level, &entry.Message, &details, &createdAt); scanErr != nil {
			err = scanErr
			return nil, fmt.Errorf("failed to scan processing log: %w", scanErr)
		}

		entry.DocumentID = docID.String
		entry.CreatedAt = time.Unix(createdAt, 0)
		if details.Valid {
			if unmarshalErr := json.Unmarshal([]byte(details.String), &entry.Details); unmarshalErr != nil {
				logging.Warn("Corrupt log details for entry %d: %v", entry.ID, unmarshalErr)
			}
		}
		entries = append(entries, entry)
	}
	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to iterate processing logs: %w", err)
	}
	return entries, nil
}
