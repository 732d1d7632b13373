package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func newTestDB(t *testing.T) *Database {
	t.Helper()

	db, err := New(context.Background(), filepath.Join(t.TempDir(), "doceater.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})
	return db
}

func mustCreateDocument(t *testing.T, db *Database, path, hash string) *Document {
	t.Helper()

	doc, err := db.CreateDocument(context.Background(), path, filepath.Base(path), hash, 42, "application/pdf")
	if err != nil {
		t.Fatalf("CreateDocument(%s): %v", path, err)
	}
	return doc
}

func TestCreateAndGetDocument(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	doc := mustCreateDocument(t, db, "/watch/report.pdf", "hash-1")

	if doc.ID == "" {
		t.Fatal("Expected generated document ID")
	}
	if doc.Status != StatusPending {
		t.Errorf("Expected status pending, got %s", doc.Status)
	}

	byID, err := db.GetDocument(ctx, doc.ID)
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if byID.Path != "/watch/report.pdf" || byID.Filename != "report.pdf" {
		t.Errorf("Unexpected document: %+v", byID)
	}
	if byID.Size != 42 || byID.MimeType != "application/pdf" {
		t.Errorf("Unexpected size/mime: %+v", byID)
	}

	byPath, err := db.GetDocumentByPath(ctx, "/watch/report.pdf")
	if err != nil {
		t.Fatalf("GetDocumentByPath: %v", err)
	}
	if byPath.ID != doc.ID {
		t.Errorf("Path lookup returned wrong document: %s", byPath.ID)
	}

	byHash, err := db.GetDocumentByHash(ctx, "hash-1")
	if err != nil {
		t.Fatalf("GetDocumentByHash: %v", err)
	}
	if byHash.ID != doc.ID {
		t.Errorf("Hash lookup returned wrong document: %s", byHash.ID)
	}
}

func TestGetDocumentNotFound(t *testing.T) {
	db := newTestDB(t)

	if _, err := db.GetDocument(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if _, err := db.GetDocumentByPath(context.Background(), "/nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if _, err := db.GetDocumentByHash(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestDuplicatePathSentinel(t *testing.T) {
	db := newTestDB(t)

	mustCreateDocument(t, db, "/watch/a.pdf", "hash-a")

	_, err := db.CreateDocument(context.Background(), "/watch/a.pdf", "a.pdf", "hash-other", 1, "")
	if !errors.Is(err, ErrDuplicatePath) {
		t.Errorf("Expected ErrDuplicatePath, got %v", err)
	}
}

func TestDuplicateHashSentinel(t *testing.T) {
	db := newTestDB(t)

	mustCreateDocument(t, db, "/watch/a.pdf", "same-hash")

	// Different path, identical fingerprint: the losing side of the
	// dedup race must see the hash sentinel.
	_, err := db.CreateDocument(context.Background(), "/watch/copy-of-a.pdf", "copy-of-a.pdf", "same-hash", 1, "")
	if !errors.Is(err, ErrDuplicateHash) {
		t.Errorf("Expected ErrDuplicateHash, got %v", err)
	}
}

func TestUpdateDocumentContent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	doc := mustCreateDocument(t, db, "/watch/a.pdf", "hash-a")

	if err := db.UpdateDocumentContent(ctx, doc.ID, "# Title\n\nbody", StatusCompleted); err != nil {
		t.Fatalf("UpdateDocumentContent: %v", err)
	}

	got, err := db.GetDocument(ctx, doc.ID)
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if got.Markdown != "# Title\n\nbody" {
		t.Errorf("Unexpected markdown: %q", got.Markdown)
	}
	if got.Status != StatusCompleted {
		t.Errorf("Expected completed, got %s", got.Status)
	}
	if got.ProcessedAt.IsZero() {
		t.Error("Expected processed timestamp for completed document")
	}
}

func TestUpdateContentFailedHasNoProcessedAt(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	doc := mustCreateDocument(t, db, "/watch/a.pdf", "hash-a")

	if err := db.UpdateDocumentContent(ctx, doc.ID, "placeholder", StatusFailed); err != nil {
		t.Fatalf("UpdateDocumentContent: %v", err)
	}

	got, _ := db.GetDocument(ctx, doc.ID)
	if got.Status != StatusFailed {
		t.Errorf("Expected failed, got %s", got.Status)
	}
	if !got.ProcessedAt.IsZero() {
		t.Error("Failed document should not carry a processed timestamp")
	}
}

func TestUpdateDocumentStatus(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	doc := mustCreateDocument(t, db, "/watch/a.pdf", "hash-a")

	if err := db.UpdateDocumentStatus(ctx, doc.ID, StatusProcessing); err != nil {
		t.Fatalf("UpdateDocumentStatus: %v", err)
	}

	got, _ := db.GetDocument(ctx, doc.ID)
	if got.Status != StatusProcessing {
		t.Errorf("Expected processing, got %s", got.Status)
	}

	if err := db.UpdateDocumentStatus(ctx, "missing", StatusFailed); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing document, got %v", err)
	}
}

func TestListDocumentsFilterAndPagination(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	a := mustCreateDocument(t, db, "/watch/a.pdf", "hash-a")
	b := mustCreateDocument(t, db, "/watch/b.pdf", "hash-b")
	mustCreateDocument(t, db, "/watch/c.pdf", "hash-c")

	db.UpdateDocumentStatus(ctx, a.ID, StatusFailed)
	db.UpdateDocumentStatus(ctx, b.ID, StatusFailed)

	failed, err := db.ListDocuments(ctx, StatusFailed, 10, 0)
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(failed) != 2 {
		t.Errorf("Expected 2 failed documents, got %d", len(failed))
	}

	all, err := db.ListDocuments(ctx, "", 10, 0)
	if err != nil {
		t.Fatalf("ListDocuments all: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Expected 3 documents, got %d", len(all))
	}

	page, err := db.ListDocuments(ctx, "", 2, 2)
	if err != nil {
		t.Fatalf("ListDocuments page: %v", err)
	}
	if len(page) != 1 {
		t.Errorf("Expected 1 document on second page, got %d", len(page))
	}
}

func TestCountByStatus(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	a := mustCreateDocument(t, db, "/watch/a.pdf", "hash-a")
	mustCreateDocument(t, db, "/watch/b.pdf", "hash-b")
	db.UpdateDocumentStatus(ctx, a.ID, StatusCompleted)

	counts, err := db.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("CountByStatus: %v", err)
	}
	if counts.Completed != 1 || counts.Pending != 1 || counts.Total != 2 {
		t.Errorf("Unexpected counts: %+v", counts)
	}
}
