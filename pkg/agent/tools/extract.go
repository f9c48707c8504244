package tools

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"nextmind-agent-be/internal/entity"
)

// ExtractResult is the extract_document tool output. Error carries the
// machine-readable failure code the synthesizer can explain to the user.
type ExtractResult struct {
	DocType    string `json:"doc_type,omitempty"`
	ParsedText string `json:"parsed_text,omitempty"`
	PageCount  int    `json:"page_count,omitempty"`
	FilePath   string `json:"file_path"`
	Error      string `json:"error,omitempty"`
}

// ExtractDocument reads an uploaded file through the configured extractor.
// When docType is "auto" the default is a quote.
func (r *Registry) ExtractDocument(ctx context.Context, filePath, docType string) ExtractResult {
	if _, err := os.Stat(filePath); err != nil {
		return ExtractResult{Error: "file_not_found", FilePath: filePath}
	}
	if r.extractor == nil {
		return ExtractResult{Error: "extractor_unavailable", FilePath: filePath}
	}

	text, pages, err := r.extractor.Extract(ctx, filePath)
	if err != nil {
		if errors.Is(err, ErrUnsupportedFormat) {
			return ExtractResult{Error: "unsupported_format", FilePath: filePath}
		}
		if r.logger != nil {
			r.logger.Printf("[TOOLS] extraction failed for %s: %v", filePath, err)
		}
		return ExtractResult{Error: "extraction_failed", FilePath: filePath}
	}

	detected := docType
	if detected == "" || detected == "auto" {
		detected = entity.DocTypeQuote
	}
	return ExtractResult{
		DocType:    detected,
		ParsedText: text,
		PageCount:  pages,
		FilePath:   filePath,
	}
}

// TextExtractor handles plain-text uploads (txt, md, csv). Binary formats
// need a dedicated extractor implementation.
type TextExtractor struct{}

func (TextExtractor) Extract(_ context.Context, filePath string) (string, int, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".txt", ".md", ".csv":
	default:
		return "", 0, ErrUnsupportedFormat
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", 0, err
	}
	text := string(data)
	pages := strings.Count(text, "\n")/40 + 1
	return text, pages, nil
}

// ErrUnsupportedFormat is returned for file types no extractor handles.
var ErrUnsupportedFormat = unsupportedFormatError{}

type unsupportedFormatError struct{}

func (unsupportedFormatError) Error() string { return "unsupported_format" }
