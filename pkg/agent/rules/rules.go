// Package rules holds the document completeness checks applied to quotes
// and invoices: which mandatory fields are absent, and the per-section
// validation messages surfaced to the user.
package rules

import (
	"fmt"
	"strings"

	"nextmind-agent-be/internal/entity"
)

// MissingFields lists the mandatory fields absent from the payload, in a
// stable order. Invoice-only mentions are checked only for invoices.
func MissingFields(p *entity.StructuredPayload) []string {
	if p == nil {
		return nil
	}
	var missing []string

	if p.Customer.Name == "" {
		missing = append(missing, "customer.name")
	}
	if p.Customer.Address == "" {
		missing = append(missing, "customer.address")
	}
	if p.Customer.Contact == "" {
		missing = append(missing, "customer.contact")
	}

	if p.Supplier.Name == "" {
		missing = append(missing, "supplier.name")
	}
	if p.Supplier.Address == "" {
		missing = append(missing, "supplier.address")
	}
	if p.Supplier.Contact == "" {
		missing = append(missing, "supplier.contact")
	}
	if p.Supplier.Siret == "" {
		missing = append(missing, "supplier.siret")
	}
	if p.Supplier.TVANumber == "" {
		missing = append(missing, "supplier.tva_number")
	}

	if p.Number == "" {
		missing = append(missing, "number")
	}
	if p.Date == "" {
		missing = append(missing, "date")
	}
	if p.PaymentTerms == "" {
		missing = append(missing, "payment_terms")
	}
	if p.IsInvoice() {
		if p.PenaltiesLatePayment == "" {
			missing = append(missing, "penalties_late_payment")
		}
		if p.ProfessionalLiability == "" {
			missing = append(missing, "professional_liability")
		}
	}
	if len(p.LineItems) == 0 {
		missing = append(missing, "line_items")
	}
	return missing
}

func customerIssues(p *entity.StructuredPayload) []string {
	var issues []string
	name := strings.TrimSpace(p.Customer.Name)
	address := strings.TrimSpace(p.Customer.Address)
	contact := strings.TrimSpace(p.Customer.Contact)

	if name == "" {
		issues = append(issues, "Nom du client manquant.")
	} else if !strings.Contains(name, " ") {
		issues = append(issues, "Nom de famille manquant (ex: Jean Dupont).")
	}
	if address == "" {
		issues = append(issues, "Adresse du client manquante.")
	}
	if contact == "" {
		issues = append(issues, "Contact client manquant (telephone ou email).")
	} else if !strings.Contains(contact, "@") && digitCount(contact) < 10 {
		issues = append(issues, "Numero de telephone incomplet (10 chiffres).")
	}
	return issues
}

func projectIssues(p *entity.StructuredPayload) []string {
	if p.ProjectLabel == "" {
		return []string{"Nom du projet manquant."}
	}
	return nil
}

func lineIssues(p *entity.StructuredPayload) []string {
	if len(p.LineItems) == 0 {
		return []string{"Aucune ligne de produit n'est saisie."}
	}
	var issues []string
	for i, item := range p.LineItems {
		n := i + 1
		if strings.TrimSpace(item.Description) == "" {
			issues = append(issues, fmt.Sprintf("Ligne %d: description manquante.", n))
		}
		if item.Quantity == 0 {
			issues = append(issues, fmt.Sprintf("Ligne %d: quantite manquante.", n))
		}
		if item.UnitPriceHT == 0 {
			issues = append(issues, fmt.Sprintf("Ligne %d: prix unitaire manquant.", n))
		}
	}
	return issues
}

func globalIssues(p *entity.StructuredPayload) []string {
	issues := customerIssues(p)
	issues = append(issues, projectIssues(p)...)
	issues = append(issues, lineIssues(p)...)

	if p.Supplier.Name == "" {
		issues = append(issues, "Nom du fournisseur manquant.")
	}
	if p.Supplier.Address == "" {
		issues = append(issues, "Adresse du fournisseur manquante.")
	}
	if p.Supplier.Contact == "" {
		issues = append(issues, "Contact fournisseur manquant.")
	}
	if p.Supplier.Siret == "" {
		issues = append(issues, "SIRET fournisseur manquant.")
	}
	if p.Supplier.TVANumber == "" {
		issues = append(issues, "TVA fournisseur manquante.")
	}

	if p.Number == "" {
		issues = append(issues, "Numero du document manquant.")
	}
	if p.Date == "" {
		issues = append(issues, "Date du document manquante.")
	}
	if p.PaymentTerms == "" {
		issues = append(issues, "Conditions de paiement manquantes.")
	}
	if p.IsInvoice() {
		if p.PenaltiesLatePayment == "" {
			issues = append(issues, "Penalites de retard manquantes.")
		}
		if p.ProfessionalLiability == "" {
			issues = append(issues, "Responsabilite civile pro manquante.")
		}
	}
	return issues
}

// SectionIssues returns the validation messages for one form section.
// Duplicate messages keep their first occurrence.
func SectionIssues(p *entity.StructuredPayload, section string) []string {
	if p == nil {
		return nil
	}
	var issues []string
	switch strings.ToLower(strings.TrimSpace(section)) {
	case "client", "customer":
		issues = customerIssues(p)
	case "chantier", "projet", "project":
		issues = projectIssues(p)
	case "lignes", "items", "line_items":
		issues = lineIssues(p)
	case "global", "all", "final":
		issues = globalIssues(p)
	default:
		return nil
	}
	return dedupKeepOrder(issues)
}

func dedupKeepOrder(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := items[:0]
	for _, item := range items {
		if seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
