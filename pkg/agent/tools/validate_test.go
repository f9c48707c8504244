package tools

import (
	"testing"

	"nextmind-agent-be/internal/entity"
)

func issueNames(issues []Issue) map[string]bool {
	names := map[string]bool{}
	for _, i := range issues {
		names[i.Issue] = true
	}
	return names
}

func TestValidateDocumentNilPayload(t *testing.T) {
	res := ValidateDocument(nil)

	if res.Valid {
		t.Errorf("nil payload should not be valid")
	}
	if len(res.Errors) != 1 || res.Errors[0] != "payload manquant" {
		t.Errorf("Errors = %v", res.Errors)
	}
}

func TestValidateDocumentQuoteOK(t *testing.T) {
	payload := &entity.StructuredPayload{
		DocType:      entity.DocTypeQuote,
		PaymentTerms: "30% à la commande, solde à réception",
		LineItems: []entity.LineItem{
			{Description: "Isolation combles", Quantity: 80, UnitPriceHT: 25, VATRate: 5.5},
		},
	}

	res := ValidateDocument(payload)

	if !res.Valid {
		t.Errorf("expected valid, issues: %+v", res.Issues)
	}
	if res.Totals.TotalHT != 2000 {
		t.Errorf("TotalHT = %v, want 2000", res.Totals.TotalHT)
	}
}

func TestValidateDocumentDeclaredTotalsMismatch(t *testing.T) {
	payload := &entity.StructuredPayload{
		DocType:      entity.DocTypeQuote,
		PaymentTerms: "comptant",
		LineItems: []entity.LineItem{
			{Description: "Dalle béton", Quantity: 10, UnitPriceHT: 80, VATRate: 20},
		},
		DeclaredTotals: map[string]float64{
			"total_ht":  900, // computed is 800
			"total_ttc": 960.005,
		},
	}

	res := ValidateDocument(payload)

	names := issueNames(res.Issues)
	if !names["ecart_total_ht"] {
		t.Errorf("missing ecart_total_ht in %+v", res.Issues)
	}
	// 960.005 vs 960 is inside the 1-cent tolerance.
	if names["ecart_total_ttc"] {
		t.Errorf("ecart_total_ttc flagged within tolerance")
	}
	// Totals mismatch is medium severity, the document stays valid.
	if !res.Valid {
		t.Errorf("medium issues should not invalidate")
	}
}

func TestValidateDocumentInvoiceMentions(t *testing.T) {
	payload := &entity.StructuredPayload{
		DocType: entity.DocTypeInvoice,
		LineItems: []entity.LineItem{
			{Description: "Remplacement chauffe-eau", Quantity: 1, UnitPriceHT: 900, VATRate: 10},
		},
	}

	res := ValidateDocument(payload)

	names := issueNames(res.Issues)
	for _, want := range []string{
		"conditions_paiement_manquantes",
		"penalites_retard_manquantes",
		"mention_rc_pro_manquante",
		"date_echeance_manquante",
	} {
		if !names[want] {
			t.Errorf("missing issue %q in %+v", want, res.Issues)
		}
	}
	if res.Valid {
		t.Errorf("invoice without mandatory mentions should be invalid")
	}
}

func TestValidateDocumentLineIssues(t *testing.T) {
	payload := &entity.StructuredPayload{
		DocType:      entity.DocTypeQuote,
		PaymentTerms: "comptant",
		LineItems: []entity.LineItem{
			{Description: "TVA négative", Quantity: 1, UnitPriceHT: 100, VATRate: -10},
			{Description: "Sans prix", Quantity: 1, UnitPriceHT: 0, VATRate: 20},
		},
	}

	res := ValidateDocument(payload)

	names := issueNames(res.Issues)
	if !names["tva_negative"] {
		t.Errorf("missing tva_negative")
	}
	if !names["ligne_zero"] {
		t.Errorf("missing ligne_zero")
	}
	if !res.Valid {
		t.Errorf("medium/low line issues should not invalidate a quote with payment terms")
	}
}
