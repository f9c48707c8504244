package tools

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"nextmind-agent-be/internal/entity"
)

func writeUpload(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtractDocument(t *testing.T) {
	reg := NewRegistry(TextExtractor{}, nil, nil)
	path := writeUpload(t, "devis.txt", "Devis n°42\nPlomberie salle de bain\nTotal HT 1200")

	res := reg.ExtractDocument(context.Background(), path, "auto")
	if res.Error != "" {
		t.Fatalf("unexpected error %q", res.Error)
	}
	if res.DocType != entity.DocTypeQuote {
		t.Errorf("DocType = %q, auto should default to a quote", res.DocType)
	}
	if res.ParsedText == "" || res.PageCount < 1 {
		t.Errorf("ParsedText/PageCount not filled: %+v", res)
	}
	if res.FilePath != path {
		t.Errorf("FilePath = %q", res.FilePath)
	}
}

func TestExtractDocumentKeepsExplicitType(t *testing.T) {
	reg := NewRegistry(TextExtractor{}, nil, nil)
	path := writeUpload(t, "facture.md", "# Facture 2024-001")

	res := reg.ExtractDocument(context.Background(), path, entity.DocTypeInvoice)
	if res.DocType != entity.DocTypeInvoice {
		t.Errorf("DocType = %q", res.DocType)
	}
}

func TestExtractDocumentFileNotFound(t *testing.T) {
	reg := NewRegistry(TextExtractor{}, nil, nil)
	res := reg.ExtractDocument(context.Background(), "/nonexistent/devis.txt", "auto")
	if res.Error != "file_not_found" {
		t.Errorf("Error = %q, want file_not_found", res.Error)
	}
}

func TestExtractDocumentNoExtractor(t *testing.T) {
	reg := NewRegistry(nil, nil, nil)
	path := writeUpload(t, "devis.txt", "contenu")
	res := reg.ExtractDocument(context.Background(), path, "auto")
	if res.Error != "extractor_unavailable" {
		t.Errorf("Error = %q, want extractor_unavailable", res.Error)
	}
}

func TestExtractDocumentUnsupportedFormat(t *testing.T) {
	reg := NewRegistry(TextExtractor{}, nil, nil)
	path := writeUpload(t, "devis.pdf", "%PDF-1.4")
	res := reg.ExtractDocument(context.Background(), path, "auto")
	if res.Error != "unsupported_format" {
		t.Errorf("Error = %q, want unsupported_format", res.Error)
	}
}

type failingExtractor struct{}

func (failingExtractor) Extract(context.Context, string) (string, int, error) {
	return "", 0, errors.New("ocr backend down")
}

func TestExtractDocumentExtractionFailed(t *testing.T) {
	reg := NewRegistry(failingExtractor{}, nil, nil)
	path := writeUpload(t, "devis.txt", "contenu")
	res := reg.ExtractDocument(context.Background(), path, "auto")
	if res.Error != "extraction_failed" {
		t.Errorf("Error = %q, want extraction_failed", res.Error)
	}
}
