package database

import (
	"context"
	"testing"
)

func TestCreateAndListImages(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	doc := mustCreateDocument(t, db, "/watch/a.pdf", "hash-a")

	for i, name := range []string{"page_1.png", "table_1.png", "picture_1.png"} {
		img := &DocumentImage{
			DocumentID:       doc.ID,
			Path:             doc.ID + "/" + name,
			Filename:         name,
			Type:             ImagePicture,
			Index:            i + 1,
			Size:             100,
			ExtractionMethod: "docling",
		}
		if err := db.CreateImage(ctx, img); err != nil {
			t.Fatalf("CreateImage(%s): %v", name, err)
		}
		if img.ID == "" {
			t.Error("Expected generated image ID")
		}
	}

	images, err := db.ListImages(ctx, doc.ID)
	if err != nil {
		t.Fatalf("ListImages: %v", err)
	}
	if len(images) != 3 {
		t.Fatalf("Expected 3 images, got %d", len(images))
	}
	for i, img := range images {
		if img.Index != i+1 {
			t.Errorf("Expected ordinal %d at position %d, got %d", i+1, i, img.Index)
		}
	}
}

func TestDuplicateOrdinalRejected(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	doc := mustCreateDocument(t, db, "/watch/a.pdf", "hash-a")

	first := &DocumentImage{DocumentID: doc.ID, Path: "p1", Filename: "p1", Type: ImagePicture, Index: 1, Size: 1}
	if err := db.CreateImage(ctx, first); err != nil {
		t.Fatalf("CreateImage: %v", err)
	}

	dup := &DocumentImage{DocumentID: doc.ID, Path: "p2", Filename: "p2", Type: ImagePicture, Index: 1, Size: 1}
	if err := db.CreateImage(ctx, dup); err == nil {
		t.Error("Expected duplicate ordinal to be rejected")
	}
}

func TestListImagesByType(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	a := mustCreateDocument(t, db, "/watch/a.pdf", "hash-a")
	b := mustCreateDocument(t, db, "/watch/b.pdf", "hash-b")

	db.CreateImage(ctx, &DocumentImage{DocumentID: a.ID, Path: "t1", Filename: "t1", Type: ImageTable, Index: 1, Size: 1})
	db.CreateImage(ctx, &DocumentImage{DocumentID: a.ID, Path: "p1", Filename: "p1", Type: ImagePicture, Index: 2, Size: 1})
	db.CreateImage(ctx, &DocumentImage{DocumentID: b.ID, Path: "t2", Filename: "t2", Type: ImageTable, Index: 1, Size: 1})

	tables, err := db.ListImagesByType(ctx, ImageTable, 10, 0)
	if err != nil {
		t.Fatalf("ListImagesByType: %v", err)
	}
	if len(tables) != 2 {
		t.Errorf("Expected 2 tables, got %d", len(tables))
	}
	for _, img := range tables {
		if img.Type != ImageTable {
			t.Errorf("Unexpected type %s", img.Type)
		}
	}
}

func TestDeleteImages(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	doc := mustCreateDocument(t, db, "/watch/a.pdf", "hash-a")
	db.CreateImage(ctx, &DocumentImage{DocumentID: doc.ID, Path: "p1", Filename: "p1", Type: ImagePicture, Index: 1, Size: 1})
	db.CreateImage(ctx, &DocumentImage{DocumentID: doc.ID, Path: "p2", Filename: "p2", Type: ImagePicture, Index: 2, Size: 1})

	count, err := db.DeleteImages(ctx, doc.ID)
	if err != nil {
		t.Fatalf("DeleteImages: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 deleted, got %d", count)
	}

	images, _ := db.ListImages(ctx, doc.ID)
	if len(images) != 0 {
		t.Errorf("Expected no images after delete, got %d", len(images))
	}

	// Deleting again is a no-op.
	count, err = db.DeleteImages(ctx, doc.ID)
	if err != nil || count != 0 {
		t.Errorf("Expected (0, nil) on second delete, got (%d, %v)", count, err)
	}
}

func TestMetadataLaterWriteWins(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	doc := mustCreateDocument(t, db, "/watch/a.pdf", "hash-a")

	if err := db.AddMetadata(ctx, doc.ID, map[string]string{
		"file_extension": ".pdf",
		"file_size":      "42",
	}); err != nil {
		t.Fatalf("AddMetadata: %v", err)
	}

	if err := db.AddMetadata(ctx, doc.ID, map[string]string{
		"file_size": "100",
	}); err != nil {
		t.Fatalf("AddMetadata second write: %v", err)
	}

	got, err := db.GetMetadata(ctx, doc.ID)
	if err != nil {
		t.Fatalf("GetMetadata: %v", err)
	}
	if got["file_size"] != "100" {
		t.Errorf("Expected later write to win, got %q", got["file_size"])
	}
	if got["file_extension"] != ".pdf" {
		t.Errorf("Expected untouched key to survive, got %q", got["file_extension"])
	}
}

func TestProcessingLogs(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	doc := mustCreateDocument(t, db, "/watch/a.pdf", "hash-a")

	if err := db.AppendLog(ctx, LogInfo, "processed", doc.ID, map[string]any{"image_count": 3}); err != nil {
		t.Fatalf("AppendLog: %v", err)
	}
	if err := db.AppendLog(ctx, LogError, "conversion failed", doc.ID, map[string]any{"error": "boom"}); err != nil {
		t.Fatalf("AppendLog error: %v", err)
	}
	if err := db.AppendLog(ctx, LogInfo, "watcher started", "", nil); err != nil {
		t.Fatalf("AppendLog system: %v", err)
	}

	forDoc, err := db.ListLogs(ctx, doc.ID, "", 10, 0)
	if err != nil {
		t.Fatalf("ListLogs: %v", err)
	}
	if len(forDoc) != 2 {
		t.Errorf("Expected 2 entries for document, got %d", len(forDoc))
	}

	errorsOnly, err := db.ListLogs(ctx, doc.ID, LogError, 10, 0)
	if err != nil {
		t.Fatalf("ListLogs errors: %v", err)
	}
	if len(errorsOnly) != 1 {
		t.Fatalf("Expected 1 error entry, got %d", len(errorsOnly))
	}
	if errorsOnly[0].Details["error"] != "boom" {
		t.Errorf("Expected details to round-trip, got %v", errorsOnly[0].Details)
	}

	all, err := db.ListLogs(ctx, "", "", 10, 0)
	if err != nil {
		t.Fatalf("ListLogs all: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Expected 3 total entries, got %d", len(all))
	}
}
