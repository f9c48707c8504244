package controller

import (
	"bufio"
	"context"
	"encoding/json"
	"strings"

	"nextmind-agent-be/internal/dto"
	"nextmind-agent-be/internal/pkg/serverutils"
	"nextmind-agent-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
	ClearConversation(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{
		chatService: chatService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Chat)
	h.Delete(":conversation_id", c.ClearConversation)
}

func (c *chatController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if wantsStream(ctx, &req) {
		return c.chatStream(ctx, &req)
	}

	res, err := c.chatService.Chat(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success chat", res))
}

func wantsStream(ctx *fiber.Ctx, req *dto.ChatRequest) bool {
	if req.Stream || ctx.Query("stream") == "true" {
		return true
	}
	return strings.Contains(ctx.Get(fiber.HeaderAccept), "text/event-stream")
}

// writeSSE frames one server-sent event. Multi-line payloads get one
// data: line per line, per the SSE wire format.
func writeSSE(w *bufio.Writer, event, data string) error {
	if _, err := w.WriteString("event: " + event + "\n"); err != nil {
		return err
	}
	for _, line := range strings.Split(data, "\n") {
		if _, err := w.WriteString("data: " + line + "\n"); err != nil {
			return err
		}
	}
	if _, err := w.WriteString("\n"); err != nil {
		return err
	}
	return w.Flush()
}

func (c *chatController) chatStream(ctx *fiber.Ctx, req *dto.ChatRequest) error {
	ctx.Set(fiber.HeaderContentType, "text/event-stream")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(fiber.HeaderConnection, "keep-alive")

	// The fiber ctx is recycled once this handler returns, so the stream
	// writer works from its own context and a copied request.
	streamReq := *req
	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		// Cancel on exit so an aborted stream releases the provider
		// goroutine instead of leaving it blocked on its send.
		streamCtx, cancel := context.WithCancel(context.Background())
		defer cancel()

		res, err := c.chatService.ChatStream(streamCtx, &streamReq, func(token string) error {
			return writeSSE(w, "token", token)
		})
		if err != nil {
			_ = writeSSE(w, "error", err.Error())
			return
		}

		final, err := json.Marshal(res)
		if err != nil {
			_ = writeSSE(w, "error", "encoding failed")
			return
		}
		_ = writeSSE(w, "done", string(final))
	}))

	return nil
}

func (c *chatController) ClearConversation(ctx *fiber.Ctx) error {
	conversationId := ctx.Params("conversation_id")

	res, err := c.chatService.ClearConversation(ctx.Context(), conversationId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success clear conversation", res))
}
