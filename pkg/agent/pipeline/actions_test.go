package pipeline

import (
	"strings"
	"testing"
)

func actionIds(actions []QuickAction) []string {
	var ids []string
	for _, a := range actions {
		ids = append(ids, a.Id)
	}
	return ids
}

func TestEnrichWithActionsFallback(t *testing.T) {
	reply, actions := EnrichWithActions("bonjour", "Bonjour !")

	if reply != "Bonjour !" {
		t.Errorf("reply changed: %q", reply)
	}
	if len(actions) != 1 || actions[0].Id != "generate_checklist" || actions[0].Label != "Organiser ce projet" {
		t.Errorf("actions = %+v", actions)
	}
}

func TestEnrichWithActionsDiagnostic(t *testing.T) {
	_, actions := EnrichWithActions("j'ai une fuite sous l'évier, que vérifier ?", "...")

	ids := actionIds(actions)
	if ids[0] != "generate_checklist" {
		t.Errorf("ids = %v", ids)
	}
	found := false
	for _, id := range ids {
		if id == "photo_guide" {
			found = true
		}
	}
	if !found {
		t.Errorf("photo_guide missing from %v", ids)
	}
}

func TestEnrichWithActionsCap(t *testing.T) {
	// Hits diagnostic, pricing, materials and photos: capped at three.
	_, actions := EnrichWithActions("fuite toiture, combien pour refaire, que vérifier ?", "...")

	if len(actions) != 3 {
		t.Errorf("len(actions) = %d, want 3", len(actions))
	}
}

func TestEnrichWithActionsDevisTerms(t *testing.T) {
	reply, actions := EnrichWithActions("tu peux m'expliquer les termes de ce devis ?", "réponse originale")

	if !strings.Contains(reply, "```devis-terms") {
		t.Errorf("devis-terms block missing: %q", reply)
	}
	// Generic vocabulary request: the query payload is blanked.
	if !strings.Contains(reply, `{"query":""}`) {
		t.Errorf("query not blanked: %q", reply)
	}
	if actions[0].Id != "devis_terms" {
		t.Errorf("actions = %+v", actions)
	}
}

func TestEnrichWithActionsDevisTermsSpecificTerm(t *testing.T) {
	reply, _ := EnrichWithActions("c'est quoi un acompte sur un devis ?", "...")

	if !strings.Contains(reply, "```devis-terms") {
		t.Errorf("devis-terms block missing: %q", reply)
	}
	if !strings.Contains(reply, "acompte") {
		t.Errorf("specific term should stay in payload: %q", reply)
	}
}
