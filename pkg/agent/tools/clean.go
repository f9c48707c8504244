package tools

import (
	"math"
	"strings"

	"nextmind-agent-be/internal/entity"
)

// LineWarning flags one anomaly found while cleaning lines.
type LineWarning struct {
	Index       int    `json:"index"`
	Issue       string `json:"issue"`
	Description string `json:"description,omitempty"`
}

// CleanResult is the clean_line_items tool output.
type CleanResult struct {
	Lines    []entity.LineItem `json:"lines"`
	Warnings []LineWarning     `json:"warnings"`
}

// CleanLineItems drops empty lines, flags duplicates and normalizes
// negative values to their absolute value.
func CleanLineItems(lines []entity.LineItem) CleanResult {
	cleaned := make([]entity.LineItem, 0, len(lines))
	warnings := []LineWarning{}
	seen := make(map[string]bool)

	for idx, line := range lines {
		desc := strings.TrimSpace(line.Description)
		if desc == "" {
			warnings = append(warnings, LineWarning{Index: idx, Issue: "description_vide"})
			continue
		}

		key := strings.ToLower(desc)
		if seen[key] {
			warnings = append(warnings, LineWarning{Index: idx, Issue: "duplicate_description", Description: desc})
		}
		seen[key] = true

		if line.Quantity < 0 {
			warnings = append(warnings, LineWarning{Index: idx, Issue: "negative_quantity"})
			line.Quantity = math.Abs(line.Quantity)
		}
		if line.UnitPriceHT < 0 {
			warnings = append(warnings, LineWarning{Index: idx, Issue: "negative_price"})
			line.UnitPriceHT = math.Abs(line.UnitPriceHT)
		}
		if line.VATRate < 0 {
			warnings = append(warnings, LineWarning{Index: idx, Issue: "negative_vat_rate"})
			line.VATRate = math.Abs(line.VATRate)
		}

		line.Description = desc
		cleaned = append(cleaned, line)
	}

	return CleanResult{Lines: cleaned, Warnings: warnings}
}
