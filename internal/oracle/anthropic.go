package oracle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/time/rate"
)

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = "claude-sonnet-4-5-20250929"

	// DefaultMaxTokens bounds each verdict response.
	DefaultMaxTokens = 1024

	// DefaultTimeout is the per-call deadline.
	DefaultTimeout = 90 * time.Second

	// RateLimit is the sustained request rate in requests per second.
	RateLimit = 1.0

	// BurstLimit allows short bursts above the sustained rate.
	BurstLimit = 2
)

// ErrMissingAPIKey means no API key was configured.
var ErrMissingAPIKey = errors.New("missing API key")

// ErrEmptyResponse means the model returned no text content.
var ErrEmptyResponse = errors.New("empty model response")

// AnthropicProvider answers verification prompts with the Anthropic API.
type AnthropicProvider struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	timeout   time.Duration
	limiter   *rate.Limiter
}

// AnthropicOption configures an AnthropicProvider.
type AnthropicOption func(*AnthropicProvider)

// WithModel sets the model identifier.
func WithModel(model string) AnthropicOption {
	return func(p *AnthropicProvider) {
		if model != "" {
			p.model = model
		}
	}
}

// WithMaxTokens sets the response token budget.
func WithMaxTokens(n int64) AnthropicOption {
	return func(p *AnthropicProvider) {
		if n > 0 {
			p.maxTokens = n
		}
	}
}

// WithTimeout sets the per-call deadline.
func WithTimeout(timeout time.Duration) AnthropicOption {
	return func(p *AnthropicProvider) {
		if timeout > 0 {
			p.timeout = timeout
		}
	}
}

// NewAnthropicProvider creates a provider authenticated with the given key.
func NewAnthropicProvider(apiKey string, opts ...AnthropicOption) (*AnthropicProvider, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	p := &AnthropicProvider{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     DefaultModel,
		maxTokens: DefaultMaxTokens,
		timeout:   DefaultTimeout,
		limiter:   rate.NewLimiter(rate.Limit(RateLimit), BurstLimit),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Name returns the provider and model identifier.
func (p *AnthropicProvider) Name() string {
	return "anthropic/" + p.model
}

// Complete sends one prompt and returns the first text block of the reply.
func (p *AnthropicProvider) Complete(ctx context.Context, system, user string) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	message, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: p.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic request: %w", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", ErrEmptyResponse
}
