package rules

import (
	"reflect"
	"testing"

	"nextmind-agent-be/internal/entity"
)

func TestMissingFieldsEmptyQuote(t *testing.T) {
	p := &entity.StructuredPayload{DocType: entity.DocTypeQuote}

	got := MissingFields(p)
	want := []string{
		"customer.name", "customer.address", "customer.contact",
		"supplier.name", "supplier.address", "supplier.contact",
		"supplier.siret", "supplier.tva_number",
		"number", "date", "payment_terms", "line_items",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MissingFields = %v, want %v", got, want)
	}
}

func TestMissingFieldsInvoiceMentions(t *testing.T) {
	p := &entity.StructuredPayload{DocType: entity.DocTypeInvoice}

	got := MissingFields(p)
	found := map[string]bool{}
	for _, f := range got {
		found[f] = true
	}
	if !found["penalties_late_payment"] || !found["professional_liability"] {
		t.Errorf("invoice mentions missing from %v", got)
	}
}

func TestMissingFieldsComplete(t *testing.T) {
	p := &entity.StructuredPayload{
		DocType:      entity.DocTypeQuote,
		Number:       "D-2026-007",
		Date:         "2026-08-15",
		PaymentTerms: "30 jours",
		Customer:     entity.Party{Name: "Jean Dupont", Address: "1 rue des Lilas", Contact: "0601020304"},
		Supplier: entity.Party{
			Name: "BatiPro", Address: "ZA des Chênes", Contact: "contact@batipro.fr",
			Siret: "12345678901234", TVANumber: "FR00123456789",
		},
		LineItems: []entity.LineItem{{Description: "Pose", Quantity: 1, UnitPriceHT: 100, VATRate: 10}},
	}

	if got := MissingFields(p); len(got) != 0 {
		t.Errorf("MissingFields = %v, want none", got)
	}
}

func TestSectionIssuesClient(t *testing.T) {
	tests := []struct {
		name     string
		customer entity.Party
		want     []string
	}{
		{
			name:     "all missing",
			customer: entity.Party{},
			want: []string{
				"Nom du client manquant.",
				"Adresse du client manquante.",
				"Contact client manquant (telephone ou email).",
			},
		},
		{
			name:     "first name only",
			customer: entity.Party{Name: "Jean", Address: "1 rue A", Contact: "jean@mail.fr"},
			want:     []string{"Nom de famille manquant (ex: Jean Dupont)."},
		},
		{
			name:     "short phone",
			customer: entity.Party{Name: "Jean Dupont", Address: "1 rue A", Contact: "06 01 02"},
			want:     []string{"Numero de telephone incomplet (10 chiffres)."},
		},
		{
			name:     "valid phone with spaces",
			customer: entity.Party{Name: "Jean Dupont", Address: "1 rue A", Contact: "06 01 02 03 04"},
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &entity.StructuredPayload{Customer: tt.customer}
			got := SectionIssues(p, "client")
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SectionIssues = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSectionIssuesLines(t *testing.T) {
	p := &entity.StructuredPayload{
		LineItems: []entity.LineItem{
			{Description: "", Quantity: 0, UnitPriceHT: 100},
			{Description: "OK", Quantity: 2, UnitPriceHT: 50},
		},
	}

	got := SectionIssues(p, "lignes")
	want := []string{
		"Ligne 1: description manquante.",
		"Ligne 1: quantite manquante.",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SectionIssues = %v, want %v", got, want)
	}

	empty := &entity.StructuredPayload{}
	if got := SectionIssues(empty, "items"); len(got) != 1 || got[0] != "Aucune ligne de produit n'est saisie." {
		t.Errorf("empty lines: %v", got)
	}
}

func TestSectionIssuesUnknownSection(t *testing.T) {
	p := &entity.StructuredPayload{}
	if got := SectionIssues(p, "inconnu"); got != nil {
		t.Errorf("unknown section should yield nil, got %v", got)
	}
	if got := SectionIssues(nil, "global"); got != nil {
		t.Errorf("nil payload should yield nil, got %v", got)
	}
}

func TestSectionIssuesGlobalDedup(t *testing.T) {
	p := &entity.StructuredPayload{DocType: entity.DocTypeInvoice}

	got := SectionIssues(p, "global")
	seen := map[string]int{}
	for _, msg := range got {
		seen[msg]++
		if seen[msg] > 1 {
			t.Errorf("duplicate message %q", msg)
		}
	}
	found := false
	for _, msg := range got {
		if msg == "Penalites de retard manquantes." {
			found = true
		}
	}
	if !found {
		t.Errorf("invoice mention missing from global issues: %v", got)
	}
}
