package service

import (
	"context"
	"strings"

	"nextmind-agent-be/internal/dto"
	"nextmind-agent-be/internal/pkg/logger"
	"nextmind-agent-be/internal/repository/memory"
	"nextmind-agent-be/pkg/agent/fastpath"
	"nextmind-agent-be/pkg/agent/pipeline"
	"nextmind-agent-be/pkg/cache"
	"nextmind-agent-be/pkg/conversation"
	"nextmind-agent-be/pkg/rag/localdocs"
	"nextmind-agent-be/pkg/rag/retriever"
	"nextmind-agent-be/pkg/rag/webresearch"

	"github.com/google/uuid"
)

type IChatService interface {
	Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error)
	ChatStream(ctx context.Context, req *dto.ChatRequest, onToken func(token string) error) (*dto.ChatResponse, error)
	ClearConversation(ctx context.Context, conversationId string) (*dto.ClearConversationResponse, error)
}

type chatService struct {
	chatCache   *cache.ChatCache
	store       *conversation.Store
	payloads    *memory.PayloadRepository
	fastPath    *fastpath.FastPath
	router      *pipeline.Router
	executor    *pipeline.Executor
	synthesizer *pipeline.Synthesizer
	localDocs   *localdocs.Searcher
	web         *webresearch.Client
	logger      logger.ILogger
}

func NewChatService(
	chatCache *cache.ChatCache,
	store *conversation.Store,
	payloads *memory.PayloadRepository,
	fastPath *fastpath.FastPath,
	router *pipeline.Router,
	executor *pipeline.Executor,
	synthesizer *pipeline.Synthesizer,
	localDocs *localdocs.Searcher,
	web *webresearch.Client,
	log logger.ILogger,
) IChatService {
	return &chatService{
		chatCache:   chatCache,
		store:       store,
		payloads:    payloads,
		fastPath:    fastPath,
		router:      router,
		executor:    executor,
		synthesizer: synthesizer,
		localDocs:   localDocs,
		web:         web,
		logger:      log,
	}
}

// isCacheable keeps the chat cache strictly stateless: any structured or
// user-specific data disables it for the request.
func isCacheable(metadata map[string]interface{}, history []conversation.Message) bool {
	if len(history) > 0 {
		return false
	}
	if len(metadata) == 0 {
		return true
	}
	if _, ok := metadata["structured_payload"].(map[string]interface{}); ok {
		return false
	}
	for _, k := range []string{"line_items", "items", "client_name", "customer_name", "files", "validate_section"} {
		if _, ok := metadata[k]; ok {
			return false
		}
	}
	return true
}

var contextKeywords = []string{
	"aussi", "et", "en plus", "pareil", "même chose", "meme chose",
	"combien en tout", "total", "au final", "pour ça", "pour ca",
	"pour cela", "dans ce cas", "et pour", "et du coup",
	"pour le plafond", "pour le mur", "pour la toiture",
	"il", "elle", "ça", "ca", "cela", "eux",
}

// isContextDependent guesses whether a short follow-up question refers
// to the previous turns, so the stored history should be injected.
func isContextDependent(query string, history []conversation.Message) bool {
	if len(history) == 0 {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return false
	}
	if len([]rune(q)) < 40 {
		for _, k := range contextKeywords {
			if strings.Contains(q, k) {
				return true
			}
		}
	}
	return strings.HasPrefix(q, "et ") || strings.HasPrefix(q, "et pour")
}

type preparedRequest struct {
	conversationId string
	history        []conversation.Message
	cacheable      bool
	normalized     string
}

func metadataFlag(metadata map[string]interface{}, key string) bool {
	v, ok := metadata[key]
	if !ok {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true" || t == "1"
	default:
		return false
	}
}

func (s *chatService) prepare(ctx context.Context, req *dto.ChatRequest) preparedRequest {
	conversationId := strings.TrimSpace(req.ConversationId)
	if conversationId == "" {
		conversationId = uuid.NewString()
	}

	if metadataFlag(req.Metadata, "clear_history") {
		if s.store.Enabled() {
			s.store.Clear(ctx, conversationId)
		}
		s.payloads.Delete(conversationId)
	}

	// Caller-supplied history wins over the stored conversation.
	var history []conversation.Message
	var stored []conversation.Message
	if len(req.History) > 0 {
		stored = req.History
		if len(stored) > 10 {
			stored = stored[len(stored)-10:]
		}
	} else if s.store.Enabled() && !metadataFlag(req.Metadata, "clear_history") {
		stored = s.store.GetRecent(ctx, conversationId, 10)
	}
	if isContextDependent(req.Message, stored) {
		history = stored
	}

	normalized := cache.NormalizeQuestion(req.Message)
	if metadataFlag(req.Metadata, "clear_cache") && s.chatCache.Enabled() {
		s.chatCache.Delete(ctx, normalized)
	}

	return preparedRequest{
		conversationId: conversationId,
		history:        history,
		cacheable:      isCacheable(req.Metadata, history) && len(stored) == 0,
		normalized:     normalized,
	}
}

func (s *chatService) appendTurn(ctx context.Context, conversationId, userMessage, reply string, meta map[string]interface{}) {
	if !s.store.Enabled() {
		return
	}
	s.store.Append(ctx, conversationId, "user", userMessage, nil)
	s.store.Append(ctx, conversationId, "assistant", reply, meta)
}

// runPipeline routes the request, executes the tool, and runs the local
// documentation cascade when vector retrieval came back empty.
func (s *chatService) runPipeline(ctx context.Context, req *dto.ChatRequest, prep preparedRequest) (*pipeline.State, []string) {
	state := &pipeline.State{
		Message:  req.Message,
		History:  prep.history,
		Metadata: req.Metadata,
	}
	s.router.Route(ctx, state)

	// A conversation that already produced a structured payload keeps it
	// for follow-up turns.
	if state.Payload == nil {
		if payload, ok := s.payloads.Get(prep.conversationId); ok {
			state.Payload = payload
		}
	} else {
		s.payloads.Save(prep.conversationId, state.Payload)
	}

	var consulted []string
	if state.UseRAG && len(state.RAGContext) == 0 && s.localDocs != nil {
		domain := localdocs.DetectDomain(req.Message)
		snippets, sources := s.localDocs.CascadeSearch(req.Message, domain)
		consulted = sources
		for _, sn := range snippets {
			state.RAGContext = append(state.RAGContext, retriever.Chunk{
				Content:  sn.Content,
				Metadata: map[string]interface{}{"source": sn.Source, "heading": sn.Heading},
				Score:    sn.Score,
			})
		}

		// Web research is a last resort, and feeds the local docs back.
		if len(state.RAGContext) == 0 && s.web.Enabled() && domain != "" {
			if finding := s.web.Search(ctx, req.Message, 3); finding != nil {
				if finding.Answer != "" {
					state.RAGContext = append(state.RAGContext, retriever.Chunk{
						Content:  finding.Answer,
						Metadata: map[string]interface{}{"source": "web"},
					})
				}
				if doc := webresearch.AppendFindingToDoc(s.localDocs, domain, finding, "", nil); doc != "" {
					consulted = append(consulted, doc)
				}
			}
		}
	}

	s.executor.Execute(ctx, state)
	return state, consulted
}

func validateSectionOf(metadata map[string]interface{}) string {
	if metadata == nil {
		return ""
	}
	if s, ok := metadata["validate_section"].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func (s *chatService) buildResponse(req *dto.ChatRequest, prep preparedRequest, state *pipeline.State, reply string, cached bool, consulted []string) *dto.ChatResponse {
	replyText, actions := pipeline.EnrichWithActions(req.Message, reply)

	resp := &dto.ChatResponse{
		Reply:          replyText,
		ConversationId: prep.conversationId,
		Cached:         cached,
		QuickActions:   actions,
		Sources:        consulted,
	}
	if state != nil {
		resp.Intent = state.Intent
		resp.Analysis = pipeline.AnalyzePayload(state.Payload, validateSectionOf(req.Metadata))
	}
	return resp
}

func (s *chatService) Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	prep := s.prepare(ctx, req)

	if s.chatCache.Enabled() && prep.cacheable {
		if hit := s.chatCache.Get(ctx, prep.normalized); hit != nil {
			s.logger.Info("chat", "cache hit", map[string]interface{}{"conversation_id": prep.conversationId})
			return s.buildResponse(req, prep, nil, hit.Reply, true, nil), nil
		}
	}

	userRole := pipeline.InferUserRole(req.Metadata)
	if fast := s.fastPath.TryAnswer(ctx, req.Message, userRole, req.Metadata, prep.history); fast != "" {
		s.logger.Info("chat", "route=fast", map[string]interface{}{"conversation_id": prep.conversationId})
		if s.chatCache.Enabled() && prep.cacheable {
			s.chatCache.Set(ctx, prep.normalized, cache.Entry{Reply: fast, Meta: map[string]interface{}{"route": "fast"}}, 0)
		}
		resp := s.buildResponse(req, prep, nil, fast, false, nil)
		s.appendTurn(ctx, prep.conversationId, req.Message, resp.Reply, map[string]interface{}{"route": "fast"})
		return resp, nil
	}

	state, consulted := s.runPipeline(ctx, req, prep)
	reply := s.synthesizer.Synthesize(ctx, state)

	toolName := ""
	if state.ToolCall != nil {
		toolName = state.ToolCall.Name
	}
	s.logger.Info("chat", "route=full", map[string]interface{}{
		"conversation_id": prep.conversationId,
		"intent":          state.Intent,
		"rag_used":        len(state.RAGContext) > 0,
		"tool":            toolName,
	})

	if s.chatCache.Enabled() && prep.cacheable && reply != "" {
		s.chatCache.Set(ctx, prep.normalized, cache.Entry{Reply: reply, Meta: map[string]interface{}{"route": "full"}}, 0)
	}

	resp := s.buildResponse(req, prep, state, reply, false, consulted)
	s.appendTurn(ctx, prep.conversationId, req.Message, resp.Reply, map[string]interface{}{
		"route": "full",
		"tool":  toolName,
	})
	return resp, nil
}

func (s *chatService) ChatStream(ctx context.Context, req *dto.ChatRequest, onToken func(string) error) (*dto.ChatResponse, error) {
	prep := s.prepare(ctx, req)

	if s.chatCache.Enabled() && prep.cacheable {
		if hit := s.chatCache.Get(ctx, prep.normalized); hit != nil {
			resp := s.buildResponse(req, prep, nil, hit.Reply, true, nil)
			if err := onToken(resp.Reply); err != nil {
				return nil, err
			}
			return resp, nil
		}
	}

	userRole := pipeline.InferUserRole(req.Metadata)
	if fast := s.fastPath.TryAnswer(ctx, req.Message, userRole, req.Metadata, prep.history); fast != "" {
		if s.chatCache.Enabled() && prep.cacheable {
			s.chatCache.Set(ctx, prep.normalized, cache.Entry{Reply: fast, Meta: map[string]interface{}{"route": "fast"}}, 0)
		}
		resp := s.buildResponse(req, prep, nil, fast, false, nil)
		if err := onToken(resp.Reply); err != nil {
			return nil, err
		}
		s.appendTurn(ctx, prep.conversationId, req.Message, resp.Reply, map[string]interface{}{"route": "fast"})
		return resp, nil
	}

	state, consulted := s.runPipeline(ctx, req, prep)

	chunks, err := s.synthesizer.Stream(ctx, state)
	if err != nil {
		s.logger.Error("chat", "stream failed", map[string]interface{}{"error": err})
		reply := pipeline.ReplySynthesisError
		if err := onToken(reply); err != nil {
			return nil, err
		}
		return s.buildResponse(req, prep, state, reply, false, consulted), nil
	}

	var b strings.Builder
	for chunk := range chunks {
		if chunk.Err != nil {
			s.logger.Error("chat", "stream aborted", map[string]interface{}{"error": chunk.Err})
			break
		}
		if chunk.Delta == "" {
			continue
		}
		b.WriteString(chunk.Delta)
		if err := onToken(chunk.Delta); err != nil {
			return nil, err
		}
	}

	reply := strings.TrimSpace(b.String())
	if reply == "" {
		reply = pipeline.ReplyEmptyAnswer
		if err := onToken(reply); err != nil {
			return nil, err
		}
	}

	if s.chatCache.Enabled() && prep.cacheable && reply != "" {
		s.chatCache.Set(ctx, prep.normalized, cache.Entry{Reply: reply, Meta: map[string]interface{}{"route": "full"}}, 0)
	}

	resp := s.buildResponse(req, prep, state, reply, false, consulted)
	s.appendTurn(ctx, prep.conversationId, req.Message, resp.Reply, map[string]interface{}{"route": "full"})
	return resp, nil
}

func (s *chatService) ClearConversation(ctx context.Context, conversationId string) (*dto.ClearConversationResponse, error) {
	conversationId = strings.TrimSpace(conversationId)
	if conversationId == "" {
		return &dto.ClearConversationResponse{Cleared: false}, nil
	}
	s.payloads.Delete(conversationId)
	if s.store.Enabled() {
		s.store.Clear(ctx, conversationId)
	}
	return &dto.ClearConversationResponse{ConversationId: conversationId, Cleared: true}, nil
}
