package pipeline

import (
	"encoding/json"
	"regexp"
	"strings"
)

// QuickAction is a contextual follow-up button shown with a reply.
type QuickAction struct {
	Id    string `json:"id"`
	Label string `json:"label"`
	Type  string `json:"type"`
	Icon  string `json:"icon"`
}

const maxQuickActions = 3

var (
	devisTermsHintRe = regexp.MustCompile(`(?i)\b(termes?|mots?|jargon|lexique|glossaire|clarif|expliq|d[eé]fin|d[eé]cortiq|comprendr)\b`)
	devisContextRe   = regexp.MustCompile(`(?i)\b(devis|facture)\b`)
	termDefinitionRe = regexp.MustCompile(`(?i)\b(c['’]est quoi|ça veut dire|ca veut dire|qu['’]est-ce que|definition|définition)\b`)
	btpTermsLikelyRe = regexp.MustCompile(`(?i)\b(acompte|tva|d[eé]cennale|rc\s*pro|dommages?-ouvrage|ipn|poutre|ragr[eé]age|chape|[eé]tanch[eé]it[eé]|consuel|plomberie|gros\s*œuvre|gros\s*oeuvre|d[eé]molition)\b`)
)

func shouldShowDevisTermsUI(query string) bool {
	q := strings.TrimSpace(query)
	if q == "" {
		return false
	}
	if devisContextRe.MatchString(q) && devisTermsHintRe.MatchString(q) {
		return true
	}
	if termDefinitionRe.MatchString(q) && btpTermsLikelyRe.MatchString(q) {
		return true
	}
	lower := strings.ToLower(q)
	return strings.Contains(lower, "devis") &&
		(strings.Contains(lower, "explique") || strings.Contains(lower, "clarifie"))
}

func buildDevisTermsReply(query string) string {
	payloadQuery := strings.TrimSpace(query)
	lower := strings.ToLower(payloadQuery)
	for _, k := range []string{"termes", "mots", "jargon", "lexique", "glossaire"} {
		if strings.Contains(lower, k) {
			payloadQuery = ""
			break
		}
	}

	payloadJSON, _ := json.Marshal(map[string]string{"query": payloadQuery})

	return "Je vous aide à comprendre les termes techniques qu’on voit souvent sur un devis BTP.\n\n" +
		"```devis-terms\n" +
		string(payloadJSON) + "\n" +
		"```\n\n" +
		"Si vous le souhaitez, vous pouvez aussi me copier/coller une ligne du devis (ou envoyer le PDF) " +
		"et je vous l’explique poste par poste."
}

func containsAny(s string, keywords ...string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// EnrichWithActions attaches up to three contextual quick actions to a
// reply, and swaps in the jargon helper block when the question asks for
// devis vocabulary. Returns the (possibly replaced) reply text.
func EnrichWithActions(query, replyText string) (string, []QuickAction) {
	lower := strings.ToLower(query)
	var actions []QuickAction

	if shouldShowDevisTermsUI(query) {
		replyText = buildDevisTermsReply(query)
		actions = append(actions, QuickAction{Id: "devis_terms", Label: "Lexique du devis", Type: "devis", Icon: "📚"})
	}

	if containsAny(lower, "problème", "probleme", "panne", "fuite", "fissure", "défaut", "defaut", "casse", "diagnostic") {
		actions = append(actions, QuickAction{Id: "generate_checklist", Label: "Générer checklist diagnostic", Type: "diagnostic", Icon: "📋"})
	}

	if containsAny(lower, "prix", "coût", "cout", "budget", "devis", "combien", "estim") {
		actions = append(actions, QuickAction{Id: "create_estimate", Label: "Créer un mini-devis", Type: "pricing", Icon: "💰"})
	}

	if containsAny(lower, "matériau", "materiau", "matériaux", "materiaux", "refaire", "poser", "installer", "rénover", "renover") {
		actions = append(actions, QuickAction{Id: "materials_list", Label: "Liste matériaux + quantités", Type: "materials", Icon: "📊"})
	}

	if containsAny(lower, "problème", "probleme", "fuite", "fissure", "diagnostic", "vérifier", "verifier") {
		actions = append(actions, QuickAction{Id: "photo_guide", Label: "Que photographier ?", Type: "photos", Icon: "📸"})
	}

	if len(actions) == 0 {
		actions = append(actions, QuickAction{Id: "generate_checklist", Label: "Organiser ce projet", Type: "general", Icon: "📋"})
	}
	if len(actions) > maxQuickActions {
		actions = actions[:maxQuickActions]
	}
	return replyText, actions
}
