package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"doc-eater/internal/logging"
	"doc-eater/internal/metrics"
)

// Default timeout for database operations
const defaultTimeout = 5 * time.Second

// Sentinel errors returned by store operations. ErrDuplicatePath and
// ErrDuplicateHash are how a pipeline invocation learns it lost a dedup
// race to a concurrent invocation: the schema's UNIQUE constraints are
// the authoritative guard, the pipeline's pre-checks are an optimization.
var (
	ErrNotFound      = errors.New("record not found")
	ErrDuplicatePath = errors.New("document already exists for path")
	ErrDuplicateHash = errors.New("document already exists for content fingerprint")
)

// Database manages all persistence for doc-eater.
type Database struct {
	db     *sql.DB
	dbPath string
}

// New opens (creating if needed) the SQLite database at dbPath and ensures
// the schema exists. dbPath must be the full path to the database file and
// its parent directory must already exist and be writable; use
// startup.LoadConfig for directory validation.
func New(ctx context.Context, dbPath string) (*Database, error) {
	logging.Info("Database path: %s", dbPath)

	// WAL mode keeps readers unblocked while the ingestion workers write;
	// busy_timeout prevents "database is locked" errors under concurrency.
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	d := &Database{
		db:     db,
		dbPath: dbPath,
	}

	if err := d.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	logging.Info("Database initialized successfully at %s", dbPath)
	return d, nil
}

func (d *Database) initialize(ctx context.Context) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("initialize_schema", start, err) }()

	schema := `
	-- Documents: one row per distinct source path / content fingerprint
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		path TEXT NOT NULL UNIQUE,
		filename TEXT NOT NULL,
		content_hash TEXT NOT NULL UNIQUE,
		size INTEGER NOT NULL DEFAULT 0,
		mime_type TEXT,
		markdown_content TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
		updated_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
		processed_at INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);
	CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents(created_at);
	CREATE INDEX IF NOT EXISTS idx_documents_filename ON documents(filename);

	-- Extracted images, cascade-deleted with their document
	CREATE TABLE IF NOT EXISTS document_images (
		id TEXT PRIMARY KEY,
		document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
		image_path TEXT NOT NULL,
		filename TEXT NOT NULL,
		image_type TEXT NOT NULL,
		image_index INTEGER NOT NULL,
		file_size INTEGER NOT NULL DEFAULT 0,
		width INTEGER,
		height INTEGER,
		format TEXT,
		extraction_method TEXT,
		quality_score REAL,
		created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
		UNIQUE(document_id, image_index)
	);

	CREATE INDEX IF NOT EXISTS idx_document_images_document ON document_images(document_id);
	CREATE INDEX IF NOT EXISTS idx_document_images_type ON document_images(image_type);

	-- Key/value metadata; later writes for the same key win
	CREATE TABLE IF NOT EXISTS document_metadata (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		document_id TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT,
		created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
		UNIQUE(document_id, key)
	);

	CREATE INDEX IF NOT EXISTS idx_document_metadata_document ON document_metadata(document_id);

	-- Append-only processing log
	CREATE TABLE IF NOT EXISTS processing_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		document_id TEXT,
		level TEXT NOT NULL,
		message TEXT NOT NULL,
		details TEXT,
		created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	);

	CREATE INDEX IF NOT EXISTS idx_processing_logs_document ON processing_logs(document_id);
	CREATE INDEX IF NOT EXISTS idx_processing_logs_level ON processing_logs(level);
	`

	_, err = d.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// UpdateDBMetrics refreshes connection gauges.
func (d *Database) UpdateDBMetrics() {
	stats := d.db.Stats()
	metrics.DBConnectionsOpen.Set(float64(stats.OpenConnections))
}

// mapConstraintError converts a sqlite UNIQUE violation into the matching
// sentinel so callers can branch on errors.Is.
func mapConstraintError(err error) error {
	var se sqlite3.Error
	if !errors.As(err, &se) || se.ExtendedCode != sqlite3.ErrConstraintUnique {
		return err
	}

	msg := se.Error()
	switch {
	case strings.Contains(msg, "documents.path"):
		return fmt.Errorf("%w: %v", ErrDuplicatePath, err)
	case strings.Contains(msg, "documents.content_hash"):
		return fmt.Errorf("%w: %v", ErrDuplicateHash, err)
	}
	return err
}

// recordQuery records database operation metrics
func recordQuery(operation string, start time.Time, err error) {
	duration := time.Since(start).Seconds()
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.DBQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(duration)
}

// opContext returns a bounded context for a single store call.
func opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, defaultTimeout)
}
