// Package fastpath answers trivial messages (greetings, simple
// definitions, small talk) with the fast model, without touching the
// retrieval corpus or the tools. Anything that smells like real work is
// routed to the full pipeline.
package fastpath

import (
	"context"
	"log"
	"regexp"
	"strings"

	"nextmind-agent-be/pkg/agent/prompts"
	"nextmind-agent-be/pkg/conversation"
	"nextmind-agent-be/pkg/llm"
	"nextmind-agent-be/pkg/rag/retriever"
	"nextmind-agent-be/pkg/utils"
)

var (
	greetingRe  = regexp.MustCompile(`(?i)^\s*(bonjour|salut|hello|hey|coucou|bonsoir)\b`)
	thanksRe    = regexp.MustCompile(`(?i)\b(merci|thanks|super|parfait|top)\b`)
	whoRe       = regexp.MustCompile(`(?i)^\s*(t\s*qui|t'es\s*qui|tu\s*es\s*qui|qui\s*es[- ]tu)\b`)
	referenceRe = regexp.MustCompile(`(?i)\b(projet(s)?\s+de\s+r[eé]f[eé]rence|r[eé]f[eé]rences?\s+projet|portfolio)\b`)
)

// Messages that explicitly ask for data-heavy actions must reach the
// full pipeline even when they look short.
var fullPipelineHintRe = regexp.MustCompile(`(?i)\b(pdf|docx|fichier|piece\s+jointe|pi[eèé]ce\s+jointe|analyse|extraction|extraire|historique|prefill|pre[- ]rempl|pr[eé][- ]rempl|base\s+de\s+donn[eé]es|bdd)\b`)

// Matched against the accent-stripped lowercase message.
var fullPipelineTermsRe = regexp.MustCompile(`\b(probleme|panne|defaut|fuite|fissure|casse|ne\s+marche\s+pas|dysfonctionnement|prix|cout|budget|devis|combien|tarif|taux\s+horaire|temps|duree|delai|combien\s+de\s+temps|comment|pourquoi|methode|procedure|diagnostic|diagnostiquer|verifier|controler|checklist|preparer|materiau|materiaux|quantite|liste|refaire|renover|poser|installer|remplacer|reparer|toiture|charpente|zinguerie|gouttiere|plomberie|plombier|electricite|electricien|peinture|peintre|carrelage|carreleur|faience|placo|plaquiste|isolation|vmc|chauffage|pac)\b`)

var definitionRe = regexp.MustCompile(`^\s*(c['’]?est\s+quoi|ca\s+veut\s+dire|definition\s+de|abreviation\s+de|sigle\s+de|ca\s+signifie\s+quoi|que\s+veut\s+dire)\b`)

var metaRe = regexp.MustCompile(`\b(sens\s+de\s+la\s+vie|metaphys|philosoph)\b`)

const emptyMessageReply = "Je peux t'aider sur tes devis/factures BTP. Quelle est ta question ?"

type FastPath struct {
	fastLLM llm.LLMProvider
	logger  *log.Logger
}

func NewFastPath(fastLLM llm.LLMProvider, logger *log.Logger) *FastPath {
	return &FastPath{fastLLM: fastLLM, logger: logger}
}

// heuristicReply answers the most common pleasantries with canned text.
func heuristicReply(message string) string {
	msg := strings.TrimSpace(message)
	if msg == "" {
		return emptyMessageReply
	}
	if whoRe.MatchString(msg) {
		return "Je suis NEXTMIND, ton assistant IA BTP (devis, factures, travaux, matériaux, conformité)."
	}
	if greetingRe.MatchString(msg) {
		return "Bonjour ! Dis-moi ce dont tu as besoin (devis, facture, estimation, travaux, matériaux…)."
	}
	if thanksRe.MatchString(msg) && len([]rune(msg)) < 60 {
		return "Avec plaisir. Tu veux que je t'aide sur quoi maintenant ?"
	}
	if referenceRe.MatchString(msg) {
		return "Oui. Exemples de projets “références” BTP (résidentiel) :\n" +
			"- Rénovation complète de salle de bain (plomberie + carrelage + ventilation)\n" +
			"- Rénovation cuisine (réseaux + finitions)\n" +
			"- Peinture + sols (remise en état)\n" +
			"- Rénovation toiture/isolations\n" +
			"- Extension/garage\n\n" +
			"Tu cherches des références pour quel type de travaux ?"
	}
	return ""
}

func hasStructuredMetadata(metadata map[string]interface{}) bool {
	if metadata == nil {
		return false
	}
	if _, ok := metadata["structured_payload"].(map[string]interface{}); ok {
		return true
	}
	for _, key := range []string{
		"customer_name", "client_name", "supplier_name", "line_items",
		"items", "doc_type", "docType", "validate_section", "mode", "files",
	} {
		if _, ok := metadata[key]; ok {
			return true
		}
	}
	return false
}

// needsFullPipeline is the conservative gate: structured data, file
// mentions or any work-related keyword forces the full pipeline.
func needsFullPipeline(message string, metadata map[string]interface{}) bool {
	if hasStructuredMetadata(metadata) {
		return true
	}
	msg := strings.TrimSpace(message)
	if msg == "" {
		return false
	}
	if fullPipelineHintRe.MatchString(msg) {
		return true
	}
	return fullPipelineTermsRe.MatchString(utils.NormalizeText(msg))
}

// isCandidate is the ultra-restrictive allow-list for the fast model.
func isCandidate(message string) bool {
	msg := strings.TrimSpace(message)
	if msg == "" {
		return true
	}
	if greetingRe.MatchString(msg) || thanksRe.MatchString(msg) || whoRe.MatchString(msg) {
		return true
	}
	normalized := utils.NormalizeText(msg)
	if metaRe.MatchString(normalized) {
		return true
	}
	if definitionRe.MatchString(normalized) && len([]rune(normalized)) <= 90 {
		return true
	}
	return false
}

func formatHistory(history []conversation.Message) string {
	if len(history) == 0 {
		return ""
	}
	start := len(history) - 4
	if start < 0 {
		start = 0
	}
	var lines []string
	for _, item := range history[start:] {
		role := strings.ToLower(strings.TrimSpace(item.Role))
		content := strings.TrimSpace(item.Content)
		if content == "" || (role != "user" && role != "assistant") {
			continue
		}
		lines = append(lines, role+": "+utils.Truncate(content, 240))
	}
	return strings.Join(lines, "\n")
}

var spaceRe = regexp.MustCompile(`\s+`)

// normalizeFollowup keeps a single trailing question.
func normalizeFollowup(value string) string {
	q := strings.TrimSpace(value)
	if q == "" {
		return ""
	}
	if idx := strings.IndexByte(q, '\n'); idx >= 0 {
		q = strings.TrimSpace(q[:idx])
	}
	if idx := strings.IndexByte(q, '?'); idx >= 0 {
		q = strings.TrimSpace(q[:idx]) + " ?"
	}
	if !strings.HasSuffix(q, "?") {
		q = strings.TrimRight(q, ".") + " ?"
	}
	return strings.TrimSpace(spaceRe.ReplaceAllString(q, " "))
}

// TryAnswer returns a fast answer for simple requests, or "" when the
// request must go through the full pipeline.
func (f *FastPath) TryAnswer(ctx context.Context, message, userRole string, metadata map[string]interface{}, history []conversation.Message) string {
	if reply := heuristicReply(message); reply != "" {
		if f.logger != nil {
			f.logger.Printf("[FAST-PATH] route=fast (heuristic)")
		}
		return reply
	}

	// Trade questions go through the dedicated corpus retriever.
	if retriever.IsCorpsMetierQuestion(message) {
		if f.logger != nil {
			f.logger.Printf("[FAST-PATH] route=full (reason=corps_metier)")
		}
		return ""
	}

	if needsFullPipeline(message, metadata) {
		if f.logger != nil {
			f.logger.Printf("[FAST-PATH] route=full (reason=full_gate)")
		}
		return ""
	}

	if !isCandidate(message) {
		if f.logger != nil {
			f.logger.Printf("[FAST-PATH] route=full (reason=not_candidate)")
		}
		return ""
	}

	msg := strings.TrimSpace(message)
	if msg == "" {
		return emptyMessageReply
	}
	if f.fastLLM == nil {
		return ""
	}

	var userText []string
	if historyText := formatHistory(history); historyText != "" {
		userText = append(userText, "Contexte (derniers échanges):\n"+historyText)
	}
	if userRole == "" {
		userRole = "unknown"
	}
	userText = append(userText, "user_role="+userRole)
	userText = append(userText, "Message:\n"+msg)

	result, err := f.fastLLM.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: prompts.FastRouter},
		{Role: llm.RoleUser, Content: strings.Join(userText, "\n\n")},
	}, llm.WithTemperature(0.2), llm.WithMaxTokens(280))
	if err != nil {
		if f.logger != nil {
			f.logger.Printf("[FAST-PATH] answer failed: %v", err)
		}
		return ""
	}

	text := strings.TrimSpace(result.Content)
	if text == "" {
		return ""
	}

	if parsed := utils.MaybeParseJSON(text); parsed != nil {
		answer := strings.TrimSpace(utils.JSONString(parsed, "answer"))
		if answer != "" {
			// The answer part stays a statement; the single follow-up
			// question (if any) goes on its own line.
			answer = strings.TrimSpace(strings.ReplaceAll(answer, "?", "."))
			if question := normalizeFollowup(utils.JSONString(parsed, "question")); question != "" {
				return answer + "\n\n" + question
			}
			return answer
		}
	}

	return compactFreeText(text)
}

// compactFreeText salvages a non-JSON model reply: first 6 lines, and at
// most one question kept at the end.
func compactFreeText(text string) string {
	var lines []string
	for _, ln := range strings.Split(text, "\n") {
		if ln = strings.TrimSpace(ln); ln != "" {
			lines = append(lines, ln)
		}
	}
	if len(lines) == 0 {
		return ""
	}
	if len(lines) > 6 {
		lines = lines[:6]
	}
	compact := strings.TrimSpace(strings.Join(lines, "\n"))

	if strings.Count(compact, "?") > 1 {
		parts := strings.Split(compact, "?")
		keptQuestion := ""
		if len(parts) >= 2 {
			keptQuestion = strings.TrimSpace(parts[len(parts)-2])
		}
		statements := strings.TrimSpace(strings.ReplaceAll(strings.Join(parts[:len(parts)-2], "?"), "?", "."))
		switch {
		case statements != "" && keptQuestion != "":
			compact = statements + "\n\n" + keptQuestion + " ?"
		case statements != "":
			compact = statements
		default:
			compact = keptQuestion
		}
	}
	return compact
}
