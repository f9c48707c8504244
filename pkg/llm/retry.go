package llm

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// TransientFunc reports whether an error is worth retrying (rate limit,
// timeout, connection reset). It is provider-agnostic so the retry/fallback
// logic stays portable across backends.
type TransientFunc func(error) bool

// RetryProvider wraps a primary provider with bounded exponential retry and
// an optional fallback provider. Retry happens only on transient errors;
// once the primary is exhausted the same call is replayed on the fallback.
type RetryProvider struct {
	primary     LLMProvider
	fallback    LLMProvider // may be nil
	isTransient TransientFunc
	maxAttempts uint64
	logger      *log.Logger
}

func NewRetryProvider(primary, fallback LLMProvider, isTransient TransientFunc, logger *log.Logger) *RetryProvider {
	return &RetryProvider{
		primary:     primary,
		fallback:    fallback,
		isTransient: isTransient,
		maxAttempts: 3,
		logger:      logger,
	}
}

func (p *RetryProvider) newBackoff(ctx context.Context) backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Second
	bo.MaxInterval = 10 * time.Second
	return backoff.WithContext(backoff.WithMaxRetries(bo, p.maxAttempts-1), ctx)
}

func (p *RetryProvider) retryChat(ctx context.Context, provider LLMProvider, history []Message, options []Option) (*Result, error) {
	var result *Result
	operation := func() error {
		res, err := provider.Chat(ctx, history, options...)
		if err != nil {
			if p.isTransient != nil && p.isTransient(err) && ctx.Err() == nil {
				return err
			}
			return backoff.Permanent(err)
		}
		result = res
		return nil
	}
	if err := backoff.Retry(operation, p.newBackoff(ctx)); err != nil {
		return nil, err
	}
	return result, nil
}

func (p *RetryProvider) Chat(ctx context.Context, history []Message, options ...Option) (*Result, error) {
	result, err := p.retryChat(ctx, p.primary, history, options)
	if err == nil {
		return result, nil
	}
	if p.fallback == nil || ctx.Err() != nil {
		return nil, err
	}
	p.logger.Printf("[LLM] primary exhausted (%v), switching to fallback", err)
	result, fbErr := p.retryChat(ctx, p.fallback, history, options)
	if fbErr != nil {
		return nil, errors.Join(err, fbErr)
	}
	return result, nil
}

func (p *RetryProvider) Stream(ctx context.Context, history []Message, options ...Option) (<-chan StreamChunk, error) {
	ch, err := p.primary.Stream(ctx, history, options...)
	if err == nil {
		return ch, nil
	}
	if p.fallback == nil || ctx.Err() != nil {
		return nil, err
	}
	p.logger.Printf("[LLM] primary stream failed (%v), switching to fallback", err)
	return p.fallback.Stream(ctx, history, options...)
}

func (p *RetryProvider) Generate(ctx context.Context, prompt string, options ...Option) (string, error) {
	result, err := p.Chat(ctx, []Message{{Role: RoleUser, Content: prompt}}, options...)
	if err != nil {
		return "", err
	}
	return result.Content, nil
}
