package openai

import (
	"context"
	"errors"
	"io"
	"net"

	"nextmind-agent-be/pkg/llm"

	openai "github.com/sashabaranov/go-openai"
)

// Provider implements llm.LLMProvider on top of the OpenAI chat API.
type Provider struct {
	client *openai.Client
	model  string
}

func NewProvider(apiKey, model string) *Provider {
	return &Provider{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// NewProviderWithBaseURL targets an OpenAI-compatible endpoint (proxy, local
// gateway). Empty baseURL falls back to the public API.
func NewProviderWithBaseURL(apiKey, model, baseURL string) *Provider {
	if baseURL == "" {
		return NewProvider(apiKey, model)
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return &Provider{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (p *Provider) buildRequest(history []llm.Message, options []llm.Option) openai.ChatCompletionRequest {
	opts := llm.ApplyOptions(options)

	messages := make([]openai.ChatCompletionMessage, 0, len(history))
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		switch m.Role {
		case llm.RoleSystem:
			role = openai.ChatMessageRoleSystem
		case llm.RoleAssistant:
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	model := p.model
	if opts.Model != "" {
		model = opts.Model
	}

	return openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: float32(opts.Temperature),
		MaxTokens:   opts.MaxTokens,
	}
}

func (p *Provider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (*llm.Result, error) {
	resp, err := p.client.CreateChatCompletion(ctx, p.buildRequest(history, options))
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return &llm.Result{}, nil
	}
	choice := resp.Choices[0]
	return &llm.Result{
		Content:          choice.Message.Content,
		FinishReason:     string(choice.FinishReason),
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}

func (p *Provider) Stream(ctx context.Context, history []llm.Message, options ...llm.Option) (<-chan llm.StreamChunk, error) {
	req := p.buildRequest(history, options)
	req.Stream = true

	stream, err := p.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, err
	}

	out := make(chan llm.StreamChunk)
	go func() {
		defer close(out)
		defer stream.Close()
		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				select {
				case out <- llm.StreamChunk{Err: err}:
				case <-ctx.Done():
				}
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}
			chunk := llm.StreamChunk{
				Delta:        resp.Choices[0].Delta.Content,
				FinishReason: string(resp.Choices[0].FinishReason),
			}
			select {
			case out <- chunk:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (p *Provider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	result, err := p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, options...)
	if err != nil {
		return "", err
	}
	return result.Content, nil
}

// IsTransient classifies provider errors worth retrying: rate limits,
// server-side failures and network-level errors. Context cancellation is
// never transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == 429 || reqErr.HTTPStatusCode >= 500
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
