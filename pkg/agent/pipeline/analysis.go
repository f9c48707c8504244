package pipeline

import (
	"nextmind-agent-be/internal/entity"
	"nextmind-agent-be/pkg/agent/rules"
	"nextmind-agent-be/pkg/agent/tools"
)

// PayloadAnalysis is the always-on processing applied whenever a request
// carries a structured document, whatever the routed intent.
type PayloadAnalysis struct {
	Cleaned       *tools.CleanResult    `json:"cleaned,omitempty"`
	Totals        *tools.TotalsResult   `json:"totals,omitempty"`
	Validation    *tools.ValidateResult `json:"validation,omitempty"`
	MissingFields []string              `json:"missing_fields"`
	SectionIssues []string              `json:"section_issues,omitempty"`
}

// AnalyzePayload cleans lines, computes totals, validates the document
// and lists missing mandatory fields. validateSection selects the form
// section whose user-facing messages are produced (empty for none).
func AnalyzePayload(payload *entity.StructuredPayload, validateSection string) *PayloadAnalysis {
	if payload == nil {
		return nil
	}

	analysis := &PayloadAnalysis{
		MissingFields: rules.MissingFields(payload),
	}

	if len(payload.LineItems) > 0 {
		cleaned := tools.CleanLineItems(payload.LineItems)
		totals := tools.CalculateTotals(cleaned.Lines, payload.DocType)
		analysis.Cleaned = &cleaned
		analysis.Totals = &totals
	}
	if payload.Customer.Name != "" || len(payload.LineItems) > 0 {
		validation := tools.ValidateDocument(payload)
		analysis.Validation = &validation
	}
	if validateSection != "" {
		analysis.SectionIssues = rules.SectionIssues(payload, validateSection)
	}
	return analysis
}
