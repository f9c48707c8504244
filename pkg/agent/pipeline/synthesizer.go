package pipeline

import (
	"context"
	"log"
	"strings"

	"nextmind-agent-be/pkg/agent/prompts"
	"nextmind-agent-be/pkg/llm"
	"nextmind-agent-be/pkg/utils"
)

const (
	// Terminal replies when the model chain cannot produce an answer.
	ReplySynthesisError = "Désolé, une erreur s'est produite. Peux-tu réessayer ?"
	ReplyEmptyAnswer    = "Je n'ai pas réussi à générer une réponse. Peux-tu reformuler en 1 phrase ?"

	defaultMaxTokens  = 1500
	minMaxTokens      = 128
	maxMaxTokens      = 2048
	fallbackMaxTokens = 320

	toolResultLimit = 1200
	ragSnippetLimit = 350
	maxRAGSnippets  = 4
	historyWindow   = 6
)

// Synthesizer produces the final answer. The main provider already
// carries its own retry and model fallback; visibleFallback is a last
// resort for models that burn the whole budget without visible output.
type Synthesizer struct {
	main            llm.LLMProvider
	visibleFallback llm.LLMProvider
	maxTokens       int
	logger          *log.Logger
}

func NewSynthesizer(main, visibleFallback llm.LLMProvider, maxTokens int, logger *log.Logger) *Synthesizer {
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	if maxTokens < minMaxTokens {
		maxTokens = minMaxTokens
	}
	if maxTokens > maxMaxTokens {
		maxTokens = maxMaxTokens
	}
	return &Synthesizer{
		main:            main,
		visibleFallback: visibleFallback,
		maxTokens:       maxTokens,
		logger:          logger,
	}
}

// BuildMessages assembles the minimal prompt: persona, one context
// block, a short history window, then the user message.
func (s *Synthesizer) BuildMessages(state *State) []llm.Message {
	messages := []llm.Message{{Role: llm.RoleSystem, Content: prompts.SynthesizerSystem}}

	var contextLines []string
	if summary := SummarizePayload(state.Payload); summary != "" {
		contextLines = append(contextLines, "Contexte devis/facture: "+summary)
	}
	if state.ToolCall != nil && state.ToolResult != nil {
		compact := utils.CompactJSON(state.ToolResult, toolResultLimit)
		contextLines = append(contextLines, "tool="+state.ToolCall.Name+": "+compact)
	}
	if len(state.RAGContext) > 0 {
		var snippets []string
		for i, chunk := range state.RAGContext {
			if i >= maxRAGSnippets {
				break
			}
			content := strings.TrimSpace(chunk.Content)
			if content == "" {
				continue
			}
			snippet := strings.ReplaceAll(content, "\n", " ")
			snippets = append(snippets, "- "+utils.Truncate(snippet, ragSnippetLimit))
		}
		if len(snippets) > 0 {
			contextLines = append(contextLines, "Extraits pertinents:\n"+strings.Join(snippets, "\n"))
		}
	}
	if len(contextLines) > 0 {
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: strings.Join(contextLines, "\n")})
	}

	start := len(state.History) - historyWindow
	if start < 0 {
		start = 0
	}
	for _, item := range state.History[start:] {
		content := strings.TrimSpace(item.Content)
		if content == "" {
			continue
		}
		role := llm.RoleUser
		switch item.Role {
		case "assistant":
			role = llm.RoleAssistant
		case "system":
			role = llm.RoleSystem
		}
		messages = append(messages, llm.Message{Role: role, Content: content})
	}

	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: state.Message})
	return messages
}

// Synthesize produces the non-streaming final answer. It never returns
// an error: failures degrade to a terminal apology.
func (s *Synthesizer) Synthesize(ctx context.Context, state *State) string {
	messages := s.BuildMessages(state)

	result, err := s.main.Chat(ctx, messages, llm.WithTemperature(0), llm.WithMaxTokens(s.maxTokens))
	if err != nil {
		if s.logger != nil {
			s.logger.Printf("[SYNTHESIZER] failed: %v", err)
		}
		return ReplySynthesisError
	}

	if reply := strings.TrimSpace(result.Content); reply != "" {
		if s.logger != nil && result.FinishReason == "length" {
			s.logger.Printf("[SYNTHESIZER] reply truncated at %d tokens", s.maxTokens)
		}
		return reply
	}

	// Reasoning models can spend the whole budget without visible output.
	if s.visibleFallback != nil {
		result, err := s.visibleFallback.Chat(ctx, messages, llm.WithTemperature(0), llm.WithMaxTokens(fallbackMaxTokens))
		if err == nil {
			if reply := strings.TrimSpace(result.Content); reply != "" {
				return reply
			}
		}
	}

	return ReplyEmptyAnswer
}

// Stream yields the final answer token by token.
func (s *Synthesizer) Stream(ctx context.Context, state *State) (<-chan llm.StreamChunk, error) {
	messages := s.BuildMessages(state)
	return s.main.Stream(ctx, messages, llm.WithTemperature(0), llm.WithMaxTokens(s.maxTokens))
}
