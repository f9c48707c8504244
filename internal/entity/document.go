package entity

import (
	"math"
	"strings"
)

const (
	DocTypeQuote   = "quote"
	DocTypeInvoice = "invoice"
)

// Party identifies one side of a quote/invoice (customer or supplier).
type Party struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	Contact   string `json:"contact"`
	Siret     string `json:"siret,omitempty"`      // 14 digits
	TVANumber string `json:"tva_number,omitempty"` // FR VAT id
}

// LineItem is one billed line. Order is display-significant.
type LineItem struct {
	Description  string  `json:"description"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit,omitempty"`
	UnitPriceHT  float64 `json:"unit_price_ht"`
	VATRate      float64 `json:"vat_rate"`
	DiscountRate float64 `json:"discount_rate"` // 0-100
}

// TotalHT is the pre-tax line total after discount.
func (l LineItem) TotalHT() float64 {
	return l.Quantity * l.UnitPriceHT * (1 - l.DiscountRate/100)
}

func (l LineItem) TotalTVA() float64 {
	return l.TotalHT() * l.VATRate / 100
}

// Totals groups the three monetary aggregates of a document.
type Totals struct {
	TotalHT  float64 `json:"total_ht"`
	TotalTVA float64 `json:"total_tva"`
	TotalTTC float64 `json:"total_ttc"`
}

// StructuredPayload is the normalized quote/invoice draft a conversation may
// operate on. It is derived from caller metadata or prior turns, mutated by
// the tool executor, and never deleted by the pipeline itself.
type StructuredPayload struct {
	DocType      string   `json:"doc_type"`
	Number       string   `json:"number,omitempty"`
	Date         string   `json:"date,omitempty"`
	Customer     Party    `json:"customer"`
	Supplier     Party    `json:"supplier"`
	ProjectLabel string   `json:"project_label,omitempty"`
	LineItems    []LineItem `json:"line_items"`

	PaymentTerms          string `json:"payment_terms,omitempty"`
	PenaltiesLatePayment  string `json:"penalties_late_payment,omitempty"`
	ProfessionalLiability string `json:"professional_liability,omitempty"`
	DueDate               string `json:"due_date,omitempty"` // invoice only
	QuoteRef              string `json:"quote_ref,omitempty"`
	Notes                 string `json:"notes,omitempty"`

	// DeclaredTotals holds caller-declared totals (total_ht, total_tva,
	// total_ttc) checked against computed values during validation.
	DeclaredTotals map[string]float64 `json:"declared_totals,omitempty"`

	DefaultVATRate *float64 `json:"vat_rate,omitempty"`
}

// IsInvoice reports whether the payload is an invoice draft.
func (p *StructuredPayload) IsInvoice() bool {
	return strings.EqualFold(p.DocType, DocTypeInvoice)
}

// ComputeTotals derives HT/TVA/TTC from the line items, rounded to cents.
func (p *StructuredPayload) ComputeTotals() Totals {
	var ht, tva float64
	for _, line := range p.LineItems {
		ht += line.TotalHT()
		tva += line.TotalTVA()
	}
	return Totals{
		TotalHT:  Round2(ht),
		TotalTVA: Round2(tva),
		TotalTTC: Round2(ht + tva),
	}
}

// Round2 rounds to two decimals (cents).
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
