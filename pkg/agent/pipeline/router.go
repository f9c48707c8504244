package pipeline

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"nextmind-agent-be/internal/entity"
	"nextmind-agent-be/pkg/agent/prompts"
	"nextmind-agent-be/pkg/agent/tools"
	"nextmind-agent-be/pkg/llm"
	"nextmind-agent-be/pkg/rag/gate"
	"nextmind-agent-be/pkg/rag/retriever"
	"nextmind-agent-be/pkg/utils"
)

var (
	lookupHintRe   = regexp.MustCompile(`(?i)\b(client|clients|materiau|mat[eé]riaux|historique|prefill)\b`)
	lookupActionRe = regexp.MustCompile(`(?i)\b(trouve|trouver|cherche|chercher|recherche|rechercher|retrouve|retrouver|lookup)\b`)
	totalsHintRe   = regexp.MustCompile(`(?i)\b(total|totaux|tva|ttc|ht)\b`)
	cleanHintRe    = regexp.MustCompile(`(?i)\b(nettoi|d[eé]doubl|uniformi)\b`)
	validateHintRe = regexp.MustCompile(`(?i)\b(valid|corrig|conform)\b`)
	analyzeHintRe  = regexp.MustCompile(`(?i)\b(analy|analyse|pdf|docx|document|fichier|pi[eè]ce jointe)\b`)
)

// Router decides optional retrieval plus a single tool call (or none).
// Heuristics answer the common cases; the fast model is the fallback.
type Router struct {
	fastLLM   llm.LLMProvider
	gate      *gate.Gate
	retriever *retriever.Retriever
	logger    *log.Logger
}

func NewRouter(fastLLM llm.LLMProvider, ragGate *gate.Gate, ret *retriever.Retriever, logger *log.Logger) *Router {
	return &Router{
		fastLLM:   fastLLM,
		gate:      ragGate,
		retriever: ret,
		logger:    logger,
	}
}

func metadataMode(metadata map[string]interface{}) string {
	if metadata == nil {
		return ""
	}
	if s, ok := metadata["mode"].(string); ok {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return ""
}

func metadataValidateSection(metadata map[string]interface{}) bool {
	if metadata == nil {
		return false
	}
	v, ok := metadata["validate_section"]
	if !ok || v == nil {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return strings.TrimSpace(t) != ""
	}
	return true
}

// heuristicToolChoice selects a tool without calling the router model.
func heuristicToolChoice(message string, metadata map[string]interface{}, payload *entity.StructuredPayload) *tools.Call {
	msg := strings.ToLower(message)
	mode := metadataMode(metadata)

	intentValidate := mode == "validate" || mode == "validation" ||
		metadataValidateSection(metadata) || validateHintRe.MatchString(msg)
	if intentValidate && payload != nil && payload.LineItems != nil {
		return &tools.Call{Name: tools.NameValidateDocument, Args: tools.Args{Payload: payload}}
	}

	if payload != nil && totalsHintRe.MatchString(msg) {
		return &tools.Call{Name: tools.NameCalculateTotals, Args: tools.Args{
			Lines:   payload.LineItems,
			DocType: payload.DocType,
		}}
	}

	if payload != nil && cleanHintRe.MatchString(msg) {
		return &tools.Call{Name: tools.NameCleanLineItems, Args: tools.Args{Lines: payload.LineItems}}
	}

	if filePath := FirstFile(metadata); filePath != "" && analyzeHintRe.MatchString(msg) {
		docType := "auto"
		if payload != nil && payload.DocType != "" {
			docType = payload.DocType
		}
		return &tools.Call{Name: tools.NameExtractDocument, Args: tools.Args{FilePath: filePath, DocType: docType}}
	}

	if lookupHintRe.MatchString(msg) {
		if !lookupActionRe.MatchString(msg) && !strings.Contains(msg, "historique") && !strings.Contains(msg, "prefill") {
			return nil
		}
		lookupMode := "auto"
		switch {
		case strings.Contains(msg, "materiau") || strings.Contains(msg, "matériau"):
			lookupMode = "materials"
		case strings.Contains(msg, "historique"):
			lookupMode = "history"
		case strings.Contains(msg, "prefill") || strings.Contains(msg, "pré-rempl"):
			lookupMode = "prefill"
		}
		query := ""
		if payload != nil {
			query = payload.Customer.Name
		}
		return &tools.Call{Name: tools.NameLookupRecords, Args: tools.Args{Query: query, Mode: lookupMode, Limit: 8}}
	}

	return nil
}

// validateCall drops calls whose required inputs cannot be satisfied,
// backfilling them from the structured payload or metadata first.
func validateCall(call *tools.Call, metadata map[string]interface{}, payload *entity.StructuredPayload) *tools.Call {
	if call == nil || !tools.Known(call.Name) {
		return nil
	}

	switch call.Name {
	case tools.NameValidateDocument:
		if call.Args.Payload == nil {
			if payload == nil {
				return nil
			}
			call.Args.Payload = payload
		}
	case tools.NameCalculateTotals, tools.NameCleanLineItems:
		if call.Args.Lines == nil {
			if payload == nil {
				return nil
			}
			call.Args.Lines = payload.LineItems
		}
	case tools.NameExtractDocument:
		if call.Args.FilePath == "" {
			filePath := FirstFile(metadata)
			if filePath == "" {
				return nil
			}
			call.Args.FilePath = filePath
		}
	case tools.NameLookupRecords:
		mode := call.Args.Mode
		if mode == "" {
			mode = "auto"
		}
		// An empty query is only acceptable for explicit prefill.
		if strings.TrimSpace(call.Args.Query) == "" && mode != "prefill" {
			return nil
		}
	}
	return call
}

func intentForTool(call *tools.Call, message string) string {
	if call != nil {
		switch call.Name {
		case tools.NameValidateDocument:
			return IntentValidate
		case tools.NameExtractDocument:
			return IntentAnalyze
		case tools.NameLookupRecords:
			return IntentLookup
		}
	}
	if validateHintRe.MatchString(strings.ToLower(message)) {
		return IntentValidate
	}
	return IntentChat
}

// Route fills the routing fields of the state: user role, structured
// payload, intent, tool call, retrieval decision and retrieved context.
func (r *Router) Route(ctx context.Context, state *State) {
	if state.UserRole == "" {
		state.UserRole = InferUserRole(state.Metadata)
	}
	if state.Payload == nil {
		state.Payload = PayloadFromMetadata(state.Metadata)
	}

	state.ToolCall = validateCall(heuristicToolChoice(state.Message, state.Metadata, state.Payload), state.Metadata, state.Payload)
	state.Intent = intentForTool(state.ToolCall, state.Message)

	// Trade questions always consult the dedicated corpus.
	if retriever.IsCorpsMetierQuestion(state.Message) {
		state.UseRAG = true
		state.RAGFilterType = retriever.TypeCorpsMetier
	}

	// The router model only runs when heuristics picked no tool and the
	// trade router did not already force retrieval.
	if state.ToolCall == nil && state.RAGFilterType != retriever.TypeCorpsMetier {
		r.consultRouterModel(ctx, state)
	}

	// Final gate for general retrieval.
	if state.UseRAG && state.RAGFilterType == "" && r.gate != nil {
		state.UseRAG = r.gate.ShouldUseRAG(ctx, state.Message, state.Metadata)
	}

	if state.UseRAG && r.retriever != nil {
		state.RAGContext = r.retriever.Retrieve(ctx, state.Message, state.RAGFilterType)
	}
}

func (r *Router) consultRouterModel(ctx context.Context, state *State) {
	if r.fastLLM == nil {
		return
	}

	summary := SummarizePayload(state.Payload)
	filePath := FirstFile(state.Metadata)
	result, err := r.fastLLM.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: prompts.PipelineRouter},
		{Role: llm.RoleUser, Content: fmt.Sprintf(
			"user_role=%s\nhas_structured=%t\nstructured_summary=%s\nhas_file=%t\nquestion=%s",
			state.UserRole, summary != "", summary, filePath != "", state.Message,
		)},
	}, llm.WithTemperature(0), llm.WithMaxTokens(140))
	if err != nil {
		if r.logger != nil {
			r.logger.Printf("[ROUTER] model failed: %v", err)
		}
		return
	}

	parsed := utils.MaybeParseJSON(result.Content)
	if parsed == nil {
		return
	}

	switch intent := utils.JSONString(parsed, "intent"); intent {
	case IntentChat, IntentValidate, IntentAnalyze, IntentLookup:
		state.Intent = intent
	}

	state.ToolCall = nil
	if suggested, ok := parsed["tool"].(map[string]interface{}); ok {
		name := utils.JSONString(suggested, "name")
		rawArgs, _ := suggested["args"].(map[string]interface{})
		call := tools.CallFromJSON(name, rawArgs)
		state.ToolCall = validateCall(&call, state.Metadata, state.Payload)
	}

	if state.RAGFilterType == "" {
		useRAG, ok := parsed["use_rag"].(bool)
		state.UseRAG = ok && useRAG
	}
}
