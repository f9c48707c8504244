package tools

import (
	"strconv"
	"strings"

	"nextmind-agent-be/internal/entity"
)

func asFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(t, ",", ".")), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func asString(v interface{}) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func firstFloat(m map[string]interface{}, keys ...string) float64 {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if f, ok := asFloat(v); ok {
				return f
			}
		}
	}
	return 0
}

// ParseLineItem converts one loosely-typed line. The legacy key aliases
// (qty, unit_price) are honored. A missing VAT rate falls back to
// defaultVAT; an explicit zero is kept so validation can flag it.
func ParseLineItem(raw map[string]interface{}, defaultVAT float64) entity.LineItem {
	vat := defaultVAT
	if v, ok := raw["vat_rate"]; ok {
		if f, ok := asFloat(v); ok {
			vat = f
		}
	}
	return entity.LineItem{
		Description:  asString(raw["description"]),
		Quantity:     firstFloat(raw, "quantity", "qty"),
		Unit:         asString(raw["unit"]),
		UnitPriceHT:  firstFloat(raw, "unit_price_ht", "unit_price"),
		VATRate:      vat,
		DiscountRate: firstFloat(raw, "discount_rate"),
	}
}

// ParseLineItems converts a raw JSON list into line items, skipping
// non-object entries.
func ParseLineItems(raw []interface{}, defaultVAT *float64) []entity.LineItem {
	vat := 20.0
	if defaultVAT != nil {
		vat = *defaultVAT
	}
	items := make([]entity.LineItem, 0, len(raw))
	for _, v := range raw {
		m, ok := v.(map[string]interface{})
		if !ok {
			continue
		}
		items = append(items, ParseLineItem(m, vat))
	}
	return items
}

func parseParty(v interface{}) entity.Party {
	m, ok := v.(map[string]interface{})
	if !ok {
		return entity.Party{}
	}
	return entity.Party{
		Name:      asString(m["name"]),
		Address:   asString(m["address"]),
		Contact:   asString(m["contact"]),
		Siret:     asString(m["siret"]),
		TVANumber: asString(m["tva_number"]),
	}
}

// ParsePayload converts a loosely-typed structured payload, as received
// in request metadata or produced by the router model, into the entity.
func ParsePayload(raw map[string]interface{}) *entity.StructuredPayload {
	if raw == nil {
		return nil
	}
	docType := asString(raw["doc_type"])
	if docType == "" {
		docType = entity.DocTypeQuote
	}

	var defaultVAT *float64
	if v, ok := raw["vat_rate"]; ok {
		if f, ok := asFloat(v); ok {
			defaultVAT = &f
		}
	}

	var lines []entity.LineItem
	if list, ok := raw["line_items"].([]interface{}); ok {
		lines = ParseLineItems(list, defaultVAT)
	}

	declared := make(map[string]float64)
	for _, key := range []string{"total_ht", "total_tva", "total_ttc"} {
		if v, ok := raw[key]; ok {
			if f, ok := asFloat(v); ok {
				declared[key] = f
			}
		}
	}
	if len(declared) == 0 {
		declared = nil
	}

	return &entity.StructuredPayload{
		DocType:               docType,
		Number:                asString(raw["number"]),
		Date:                  asString(raw["date"]),
		Customer:              parseParty(raw["customer"]),
		Supplier:              parseParty(raw["supplier"]),
		ProjectLabel:          asString(raw["project_label"]),
		LineItems:             lines,
		PaymentTerms:          asString(raw["payment_terms"]),
		PenaltiesLatePayment:  asString(raw["penalties_late_payment"]),
		ProfessionalLiability: asString(raw["professional_liability"]),
		DueDate:               asString(raw["due_date"]),
		QuoteRef:              asString(raw["quote_ref"]),
		Notes:                 asString(raw["notes"]),
		DeclaredTotals:        declared,
		DefaultVATRate:        defaultVAT,
	}
}

// CallFromJSON converts the router model's raw tool suggestion into a
// Call. Unknown fields are ignored.
func CallFromJSON(name string, rawArgs map[string]interface{}) Call {
	args := Args{
		DocType:  asString(rawArgs["doc_type"]),
		FilePath: asString(rawArgs["file_path"]),
		Query:    asString(rawArgs["query"]),
		Mode:     asString(rawArgs["mode"]),
	}
	if v, ok := rawArgs["limit"]; ok {
		if f, ok := asFloat(v); ok {
			args.Limit = int(f)
		}
	}
	if v, ok := rawArgs["default_vat_rate"]; ok {
		if f, ok := asFloat(v); ok {
			args.DefaultVATRate = &f
		}
	}
	if m, ok := rawArgs["payload"].(map[string]interface{}); ok {
		args.Payload = ParsePayload(m)
	}
	if list, ok := rawArgs["lines"].([]interface{}); ok {
		args.Lines = ParseLineItems(list, args.DefaultVATRate)
	}
	return Call{Name: name, Args: args}
}
