// Package tools implements the business tools the pipeline may invoke.
// A request triggers at most one tool; every tool returns a JSON-friendly
// result that is compacted into the synthesis prompt.
package tools

import (
	"context"
	"fmt"
	"log"

	"nextmind-agent-be/internal/entity"
	"nextmind-agent-be/internal/repository/contract"
)

const (
	NameExtractDocument = "extract_document"
	NameCleanLineItems  = "clean_line_items"
	NameCalculateTotals = "calculate_totals"
	NameValidateDocument = "validate_document"
	NameLookupRecords   = "lookup_records"
)

// Call is one validated tool invocation.
type Call struct {
	Name string `json:"name"`
	Args Args   `json:"args"`
}

// Args carries the union of tool inputs; each tool reads what it needs.
type Args struct {
	Payload        *entity.StructuredPayload
	Lines          []entity.LineItem
	DefaultVATRate *float64
	DocType        string
	FilePath       string
	Query          string
	Mode           string
	Limit          int
}

// Issue flags one problem found by a tool.
type Issue struct {
	Index    *int               `json:"index,omitempty"`
	Field    string             `json:"field,omitempty"`
	Issue    string             `json:"issue"`
	Severity string             `json:"severity"`
	Details  map[string]float64 `json:"details,omitempty"`
}

// DocumentExtractor turns an uploaded file into raw text.
type DocumentExtractor interface {
	Extract(ctx context.Context, filePath string) (text string, pageCount int, err error)
}

// Registry holds the available tools and their shared dependencies.
type Registry struct {
	extractor DocumentExtractor
	records   contract.RecordRepository
	logger    *log.Logger
}

func NewRegistry(extractor DocumentExtractor, records contract.RecordRepository, logger *log.Logger) *Registry {
	return &Registry{
		extractor: extractor,
		records:   records,
		logger:    logger,
	}
}

// Known reports whether a tool name is in the registry.
func Known(name string) bool {
	switch name {
	case NameExtractDocument, NameCleanLineItems, NameCalculateTotals, NameValidateDocument, NameLookupRecords:
		return true
	}
	return false
}

// Execute dispatches one tool call.
func (r *Registry) Execute(ctx context.Context, call Call) (interface{}, error) {
	switch call.Name {
	case NameExtractDocument:
		return r.ExtractDocument(ctx, call.Args.FilePath, call.Args.DocType), nil
	case NameCleanLineItems:
		return CleanLineItems(call.Args.Lines), nil
	case NameCalculateTotals:
		return CalculateTotals(call.Args.Lines, call.Args.DocType), nil
	case NameValidateDocument:
		return ValidateDocument(call.Args.Payload), nil
	case NameLookupRecords:
		return r.LookupRecords(ctx, call.Args.Query, call.Args.Mode, call.Args.Limit), nil
	}
	return nil, fmt.Errorf("unknown tool: %s", call.Name)
}
