// Package gate decides whether a message needs document retrieval at all.
// Cheap regex heuristics answer most cases; the fast model is only asked
// when the heuristics are inconclusive.
package gate

import (
	"context"
	"log"
	"regexp"
	"strings"

	"nextmind-agent-be/pkg/agent/prompts"
	"nextmind-agent-be/pkg/llm"
)

var ragHintRe = regexp.MustCompile(`(?i)\b(selon|d'apr[eè]s|dans (le|les) (document|pdf|contrat|cgv|conditions)|retrouve|recherche|rappelle|historique|base de connaissances|kb|qu'est[- ]ce que dit|qu'indique)\b`)

var btpTechHintRe = regexp.MustCompile(`(?i)\b(fissure|fissures|fuite|infiltration|humidit[eé]|moisissure|panne|d[eé]faut|casse|ne marche pas|refaire|r[eé]nover|r[eé]novation|r[eé]parer|remplacer|poser|installer|pr[eé]parer|checklist|v[eé]rifier|contr[oô]ler|diagnostiquer|mat[eé]riau|mat[eé]riaux|quantit[eé]|ratio|cadence|taux horaire|prix|co[uû]t|budget|tarif|devis|d[eé]lai|dur[eé]e|toiture|mur|murs|plomberie|carrelage|peinture|placo|[eé]tanch[eé]it[eé])\b`)

type Gate struct {
	fastLLM llm.LLMProvider
	logger  *log.Logger
}

func NewGate(fastLLM llm.LLMProvider, logger *log.Logger) *Gate {
	return &Gate{fastLLM: fastLLM, logger: logger}
}

// heuristic returns (decision, decided). When decided is false the caller
// must fall through to the classifier model.
func heuristic(message string, metadata map[string]interface{}) (bool, bool) {
	msg := strings.TrimSpace(message)
	if msg == "" {
		return false, true
	}

	// Validation and calculation work on data the user already supplied.
	if metadata != nil {
		mode := strings.ToLower(strings.TrimSpace(stringValue(metadata["mode"])))
		if mode == "validate" || mode == "validation" {
			return false, true
		}
		if v, ok := metadata["validate_section"]; ok && v != nil && v != "" && v != false {
			return false, true
		}
	}

	if ragHintRe.MatchString(msg) {
		return true, true
	}
	if btpTechHintRe.MatchString(msg) {
		return true, true
	}

	// Short messages without any metadata rarely need the corpus.
	if len([]rune(msg)) < 80 && len(metadata) == 0 {
		return false, true
	}

	return false, false
}

// ShouldUseRAG returns true only when retrieval is likely required to
// answer accurately. Classifier failures degrade to no retrieval.
func (g *Gate) ShouldUseRAG(ctx context.Context, message string, metadata map[string]interface{}) bool {
	if decision, decided := heuristic(message, metadata); decided {
		return decision
	}

	if g.fastLLM == nil {
		return false
	}

	result, err := g.fastLLM.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: prompts.RAGGate},
		{Role: llm.RoleUser, Content: message},
	}, llm.WithTemperature(0), llm.WithMaxTokens(8))
	if err != nil {
		if g.logger != nil {
			g.logger.Printf("[RAG-GATE] classifier failed: %v", err)
		}
		return false
	}

	content := strings.ToLower(strings.TrimSpace(result.Content))
	if strings.Contains(content, "true") {
		return true
	}
	return false
}

func stringValue(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
