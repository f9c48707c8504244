package tools

import (
	"nextmind-agent-be/internal/entity"
)

// TotalsResult is the calculate_totals tool output.
type TotalsResult struct {
	Totals  entity.Totals `json:"totals"`
	Issues  []Issue       `json:"issues"`
	DocType string        `json:"doc_type"`
}

// CalculateTotals sums HT/TVA/TTC over the lines and flags numeric
// anomalies (zero-valued lines, missing VAT).
func CalculateTotals(lines []entity.LineItem, docType string) TotalsResult {
	var ht, tva float64
	issues := []Issue{}

	for idx, line := range lines {
		i := idx
		if line.Quantity == 0 || line.UnitPriceHT == 0 {
			issues = append(issues, Issue{Index: &i, Issue: "zero_value_line", Severity: "medium"})
		}
		if line.VATRate == 0 {
			issues = append(issues, Issue{Index: &i, Issue: "vat_missing_or_zero", Severity: "low"})
		}
		ht += line.TotalHT()
		tva += line.TotalTVA()
	}

	if docType == "" {
		docType = entity.DocTypeQuote
	}
	return TotalsResult{
		Totals: entity.Totals{
			TotalHT:  entity.Round2(ht),
			TotalTVA: entity.Round2(tva),
			TotalTTC: entity.Round2(ht + tva),
		},
		Issues:  issues,
		DocType: docType,
	}
}
