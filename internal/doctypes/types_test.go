package doctypes

import "testing"

func TestExt(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"report.PDF", ".pdf"},
		{"/watch/sub/slides.pptx", ".pptx"},
		{"noext", ""},
		{"archive.tar.gz", ".gz"},
	}

	for _, tt := range tests {
		if got := Ext(tt.path); got != tt.want {
			t.Errorf("Ext(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestIsConvertible(t *testing.T) {
	if !IsConvertible(".pdf") {
		t.Error("Expected .pdf to be convertible")
	}
	if !IsConvertible(".DOCX") {
		t.Error("Expected .DOCX to be convertible (case insensitive)")
	}
	if IsConvertible(".xyz") {
		t.Error("Expected .xyz to not be convertible")
	}
	if IsConvertible("") {
		t.Error("Expected empty extension to not be convertible")
	}
}

func TestGetMimeType(t *testing.T) {
	if got := GetMimeType(".pdf"); got != "application/pdf" {
		t.Errorf("GetMimeType(.pdf) = %q", got)
	}
	if got := GetMimeType(".png"); got != "image/png" {
		t.Errorf("GetMimeType(.png) = %q", got)
	}
	if got := GetMimeType(".unknown"); got != "" {
		t.Errorf("GetMimeType(.unknown) = %q, want empty", got)
	}
}

func TestDefaultExtensions(t *testing.T) {
	exts := DefaultExtensions()
	if len(exts) != len(ConvertibleExtensions) {
		t.Fatalf("Expected %d extensions, got %d", len(ConvertibleExtensions), len(exts))
	}

	seen := make(map[string]bool)
	for _, ext := range exts {
		seen[ext] = true
	}
	if !seen[".pdf"] {
		t.Error("DefaultExtensions missing .pdf")
	}
}
