package tools

import (
	"fmt"
	"math"

	"nextmind-agent-be/internal/entity"
)

// ValidateResult is the validate_document tool output.
type ValidateResult struct {
	Valid  bool          `json:"valid"`
	Errors []string      `json:"errors,omitempty"`
	Issues []Issue       `json:"issues"`
	Totals entity.Totals `json:"totals"`
}

const totalsTolerance = 0.01

// ValidateDocument checks declared totals against computed ones,
// mandatory mentions (French invoicing rules) and line-level anomalies.
// A document is valid when no high-severity issue remains.
func ValidateDocument(payload *entity.StructuredPayload) ValidateResult {
	if payload == nil {
		return ValidateResult{
			Valid:  false,
			Errors: []string{"payload manquant"},
			Issues: []Issue{},
		}
	}

	totals := payload.ComputeTotals()
	issues := []Issue{}

	computed := map[string]float64{
		"total_ht":  totals.TotalHT,
		"total_tva": totals.TotalTVA,
		"total_ttc": totals.TotalTTC,
	}
	for _, key := range []string{"total_ht", "total_tva", "total_ttc"} {
		declared, ok := payload.DeclaredTotals[key]
		if !ok {
			continue
		}
		if math.Abs(declared-computed[key]) > totalsTolerance {
			issues = append(issues, Issue{
				Field:    key,
				Issue:    fmt.Sprintf("ecart_%s", key),
				Severity: "medium",
				Details:  map[string]float64{"declared": declared, "computed": computed[key]},
			})
		}
	}

	if payload.PaymentTerms == "" {
		issues = append(issues, Issue{Field: "payment_terms", Issue: "conditions_paiement_manquantes", Severity: "high"})
	}
	if payload.IsInvoice() {
		if payload.PenaltiesLatePayment == "" {
			issues = append(issues, Issue{Field: "penalties_late_payment", Issue: "penalites_retard_manquantes", Severity: "high"})
		}
		if payload.ProfessionalLiability == "" {
			issues = append(issues, Issue{Field: "professional_liability", Issue: "mention_rc_pro_manquante", Severity: "medium"})
		}
		if payload.DueDate == "" {
			issues = append(issues, Issue{Field: "due_date", Issue: "date_echeance_manquante", Severity: "high"})
		}
	}

	for idx, line := range payload.LineItems {
		i := idx
		if line.VATRate < 0 {
			issues = append(issues, Issue{Index: &i, Field: "vat_rate", Issue: "tva_negative", Severity: "medium"})
		}
		if line.VATRate == 0 {
			issues = append(issues, Issue{Index: &i, Field: "vat_rate", Issue: "tva_absente", Severity: "low"})
		}
		if line.Quantity == 0 || line.UnitPriceHT == 0 {
			issues = append(issues, Issue{Index: &i, Field: "line_items", Issue: "ligne_zero", Severity: "medium"})
		}
	}

	valid := true
	for _, issue := range issues {
		if issue.Severity == "high" {
			valid = false
			break
		}
	}

	return ValidateResult{Valid: valid, Issues: issues, Totals: totals}
}
