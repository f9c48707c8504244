package controller

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"nextmind-agent-be/internal/dto"
)

type fakeChatService struct {
	chatCalls   int
	streamCalls int
	streamCtx   context.Context
}

func (f *fakeChatService) Chat(_ context.Context, _ *dto.ChatRequest) (*dto.ChatResponse, error) {
	f.chatCalls++
	return &dto.ChatResponse{Reply: "ok", ConversationId: "conv-1"}, nil
}

func (f *fakeChatService) ChatStream(ctx context.Context, _ *dto.ChatRequest, onToken func(string) error) (*dto.ChatResponse, error) {
	f.streamCalls++
	f.streamCtx = ctx
	if err := onToken("Bonjour"); err != nil {
		return nil, err
	}
	return &dto.ChatResponse{Reply: "Bonjour", ConversationId: "conv-1"}, nil
}

func (f *fakeChatService) ClearConversation(_ context.Context, id string) (*dto.ClearConversationResponse, error) {
	return &dto.ClearConversationResponse{ConversationId: id, Cleared: true}, nil
}

func newTestApp(svc *fakeChatService) *fiber.App {
	app := fiber.New()
	NewChatController(svc).RegisterRoutes(app.Group("/api"))
	return app
}

func TestChatReturnsJSONByDefault(t *testing.T) {
	svc := &fakeChatService{}
	app := newTestApp(svc)

	req := httptest.NewRequest("POST", "/api/chat/v1", strings.NewReader(`{"message": "Bonjour !"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if svc.chatCalls != 1 || svc.streamCalls != 0 {
		t.Fatalf("chat=%d stream=%d", svc.chatCalls, svc.streamCalls)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `"reply":"ok"`) {
		t.Errorf("body = %s", body)
	}
}

// The stream flag in the request body selects SSE, like ?stream=true and
// the Accept header do.
func TestChatBodyStreamFlag(t *testing.T) {
	svc := &fakeChatService{}
	app := newTestApp(svc)

	req := httptest.NewRequest("POST", "/api/chat/v1", strings.NewReader(`{"message": "Bonjour !", "stream": true}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if svc.streamCalls != 1 || svc.chatCalls != 0 {
		t.Fatalf("stream=%d chat=%d", svc.streamCalls, svc.chatCalls)
	}
	if ct := resp.Header.Get(fiber.HeaderContentType); !strings.Contains(ct, "text/event-stream") {
		t.Errorf("Content-Type = %q", ct)
	}

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "event: token\ndata: Bonjour\n") {
		t.Errorf("body = %s", body)
	}
	if !strings.Contains(string(body), "event: done\n") {
		t.Errorf("missing done event: %s", body)
	}

	// Once the stream writer finishes its context must be cancelled, so
	// an abandoned provider stream can shut down.
	if svc.streamCtx == nil || svc.streamCtx.Err() == nil {
		t.Error("stream context was never cancelled")
	}
}

func TestClearConversationEndpoint(t *testing.T) {
	svc := &fakeChatService{}
	app := newTestApp(svc)

	req := httptest.NewRequest("DELETE", "/api/chat/v1/conv-42", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `"conversation_id":"conv-42"`) {
		t.Errorf("body = %s", body)
	}
}
