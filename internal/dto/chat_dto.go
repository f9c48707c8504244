package dto

import (
	"nextmind-agent-be/pkg/agent/pipeline"
	"nextmind-agent-be/pkg/conversation"
)

type ChatRequest struct {
	Message        string                 `json:"message" validate:"required"`
	ConversationId string                 `json:"conversation_id,omitempty"`
	History        []conversation.Message `json:"history,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
	Stream         bool                   `json:"stream,omitempty"`
}

type ChatResponse struct {
	Reply          string                    `json:"reply"`
	ConversationId string                    `json:"conversation_id"`
	Intent         string                    `json:"intent,omitempty"`
	Cached         bool                      `json:"cached"`
	QuickActions   []pipeline.QuickAction    `json:"quick_actions,omitempty"`
	Analysis       *pipeline.PayloadAnalysis `json:"analysis,omitempty"`
	Sources        []string                  `json:"sources,omitempty"` // consulted local docs
}

type ClearConversationResponse struct {
	ConversationId string `json:"conversation_id"`
	Cleared        bool   `json:"cleared"`
}

type IngestRequest struct {
	Source  string `json:"source" validate:"required"`
	Type    string `json:"type,omitempty"`
	Content string `json:"content" validate:"required"`
}

type IngestResponse struct {
	Source string `json:"source"`
	Queued bool   `json:"queued"`
}
