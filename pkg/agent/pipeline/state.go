// Package pipeline implements the full request pipeline: routing
// (optional retrieval plus at most one tool), tool execution, and final
// synthesis.
package pipeline

import (
	"fmt"
	"strings"

	"nextmind-agent-be/internal/entity"
	"nextmind-agent-be/pkg/agent/tools"
	"nextmind-agent-be/pkg/conversation"
	"nextmind-agent-be/pkg/rag/retriever"
)

const (
	IntentChat     = "chat"
	IntentValidate = "validate"
	IntentAnalyze  = "analyze"
	IntentLookup   = "lookup"
)

// State carries one request through router, executor and synthesizer.
type State struct {
	Message  string
	History  []conversation.Message
	Metadata map[string]interface{}
	UserRole string

	Payload *entity.StructuredPayload

	Intent        string
	UseRAG        bool
	RAGFilterType string
	RAGContext    []retriever.Chunk

	ToolCall   *tools.Call
	ToolResult interface{}

	Reply string
}

// InferUserRole maps metadata to "professionnel" or "particulier".
func InferUserRole(metadata map[string]interface{}) string {
	raw := ""
	if metadata != nil {
		if s, ok := metadata["user_role"].(string); ok {
			raw = s
		} else if s, ok := metadata["role"].(string); ok {
			raw = s
		}
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "professionnel", "pro", "professional":
		return "professionnel"
	}
	return "particulier"
}

// PayloadFromMetadata builds the structured payload from either a nested
// structured_payload object or the flat form fields legacy clients send.
func PayloadFromMetadata(metadata map[string]interface{}) *entity.StructuredPayload {
	if metadata == nil {
		return nil
	}

	if nested, ok := metadata["structured_payload"].(map[string]interface{}); ok {
		return tools.ParsePayload(nested)
	}

	flatKeys := []string{
		"client_name", "customer_name", "client_address", "client_contact",
		"supplier_name", "supplier_address", "supplier_contact",
		"line_items", "items", "doc_type", "docType",
	}
	hasAny := false
	for _, k := range flatKeys {
		if _, ok := metadata[k]; ok {
			hasAny = true
			break
		}
	}
	if !hasAny {
		return nil
	}

	flat := map[string]interface{}{
		"doc_type": firstString(metadata, "doc_type", "docType"),
		"customer": map[string]interface{}{
			"name":       firstString(metadata, "client_name", "customer_name"),
			"address":    firstString(metadata, "client_address"),
			"contact":    firstString(metadata, "client_contact"),
			"siret":      firstString(metadata, "client_siret"),
			"tva_number": firstString(metadata, "client_tva"),
		},
		"supplier": map[string]interface{}{
			"name":       firstString(metadata, "supplier_name"),
			"address":    firstString(metadata, "supplier_address"),
			"contact":    firstString(metadata, "supplier_contact"),
			"siret":      firstString(metadata, "supplier_siret"),
			"tva_number": firstString(metadata, "supplier_tva"),
		},
	}
	if items, ok := metadata["line_items"].([]interface{}); ok {
		flat["line_items"] = items
	} else if items, ok := metadata["items"].([]interface{}); ok {
		flat["line_items"] = items
	}
	if notes := firstString(metadata, "notes"); notes != "" {
		flat["notes"] = notes
	}
	return tools.ParsePayload(flat)
}

// SummarizePayload renders the one-line payload summary injected into
// router and synthesis prompts.
func SummarizePayload(p *entity.StructuredPayload) string {
	if p == nil {
		return ""
	}
	parts := []string{"doc_type=" + p.DocType}
	if p.Customer.Name != "" {
		parts = append(parts, "customer="+p.Customer.Name)
	}
	if p.Supplier.Name != "" {
		parts = append(parts, "supplier="+p.Supplier.Name)
	}
	parts = append(parts, fmt.Sprintf("line_items=%d", len(p.LineItems)))
	return strings.Join(parts, ", ")
}

// FirstFile returns the first uploaded file path from metadata, or "".
func FirstFile(metadata map[string]interface{}) string {
	if metadata == nil {
		return ""
	}
	files, ok := metadata["files"].([]interface{})
	if !ok || len(files) == 0 {
		return ""
	}
	if s, ok := files[0].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func firstString(m map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
