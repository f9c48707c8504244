package tools

import (
	"math"
	"testing"

	"nextmind-agent-be/internal/entity"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.001
}

func TestCalculateTotals(t *testing.T) {
	lines := []entity.LineItem{
		{Description: "Placo BA13", Quantity: 10, UnitPriceHT: 20, VATRate: 20},
		{Description: "Main d'oeuvre", Quantity: 2, UnitPriceHT: 20, VATRate: 10},
	}

	res := CalculateTotals(lines, "")

	if !almostEqual(res.Totals.TotalHT, 240) {
		t.Errorf("TotalHT = %v, want 240", res.Totals.TotalHT)
	}
	if !almostEqual(res.Totals.TotalTVA, 44) {
		t.Errorf("TotalTVA = %v, want 44", res.Totals.TotalTVA)
	}
	if !almostEqual(res.Totals.TotalTTC, 284) {
		t.Errorf("TotalTTC = %v, want 284", res.Totals.TotalTTC)
	}
	if res.DocType != entity.DocTypeQuote {
		t.Errorf("DocType = %q, want %q", res.DocType, entity.DocTypeQuote)
	}
	if len(res.Issues) != 0 {
		t.Errorf("Issues = %v, want none", res.Issues)
	}
}

func TestCalculateTotalsDiscount(t *testing.T) {
	lines := []entity.LineItem{
		{Description: "Carrelage 60x60", Quantity: 10, UnitPriceHT: 50, VATRate: 10, DiscountRate: 10},
	}

	res := CalculateTotals(lines, entity.DocTypeInvoice)

	if !almostEqual(res.Totals.TotalHT, 450) {
		t.Errorf("TotalHT = %v, want 450", res.Totals.TotalHT)
	}
	if !almostEqual(res.Totals.TotalTVA, 45) {
		t.Errorf("TotalTVA = %v, want 45", res.Totals.TotalTVA)
	}
	if res.DocType != entity.DocTypeInvoice {
		t.Errorf("DocType = %q, want invoice", res.DocType)
	}
}

func TestCalculateTotalsFlagsAnomalies(t *testing.T) {
	lines := []entity.LineItem{
		{Description: "Ligne vide", Quantity: 0, UnitPriceHT: 100, VATRate: 20},
		{Description: "Sans TVA", Quantity: 1, UnitPriceHT: 50, VATRate: 0},
	}

	res := CalculateTotals(lines, "quote")

	var issues []string
	for _, i := range res.Issues {
		issues = append(issues, i.Issue)
	}
	wantIssue := func(name string) {
		for _, i := range issues {
			if i == name {
				return
			}
		}
		t.Errorf("missing issue %q in %v", name, issues)
	}
	wantIssue("zero_value_line")
	wantIssue("vat_missing_or_zero")
}

func TestCalculateTotalsRounding(t *testing.T) {
	lines := []entity.LineItem{
		{Description: "A", Quantity: 3, UnitPriceHT: 33.333, VATRate: 20},
	}

	res := CalculateTotals(lines, "quote")

	if res.Totals.TotalHT != 100 {
		t.Errorf("TotalHT = %v, want 100 (rounded to cents)", res.Totals.TotalHT)
	}
	if res.Totals.TotalTTC != entity.Round2(res.Totals.TotalHT+res.Totals.TotalTVA) {
		t.Errorf("TotalTTC not consistent with HT+TVA")
	}
}

func TestCalculateTotalsEmptyLines(t *testing.T) {
	res := CalculateTotals(nil, "")

	if res.Totals.TotalHT != 0 || res.Totals.TotalTVA != 0 || res.Totals.TotalTTC != 0 {
		t.Errorf("expected zero totals, got %+v", res.Totals)
	}
	if res.Issues == nil {
		t.Errorf("Issues should be an empty slice, not nil")
	}
}
