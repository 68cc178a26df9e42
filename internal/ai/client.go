package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/agora-agent/internal/config"
	"github.com/agora-agent/pkg/logger"
	"github.com/agora-agent/pkg/ratelimit"
)

// ErrUnavailable is returned when no API credential is configured.
// Callers must short-circuit on it instead of retrying; it is a
// configuration problem, not a transient upstream failure.
var ErrUnavailable = errors.New("generation client unavailable: no API key configured")

// Client wraps the Anthropic SDK client
type Client struct {
	client      anthropic.Client
	model       string
	maxTokens   int
	temperature float64
	configured  bool
	rateLimiter *ratelimit.MultiLimiter
	log         *logger.Logger
}

// NewClient creates a new Anthropic client. A missing API key does not fail
// construction; calls on an unconfigured client return ErrUnavailable.
func NewClient(cfg config.AnthropicConfig, limiter *ratelimit.MultiLimiter, log *logger.Logger) *Client {
	client := anthropic.NewClient(
		option.WithAPIKey(cfg.APIKey),
	)

	return &Client{
		client:      client,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		configured:  cfg.APIKey != "",
		rateLimiter: limiter,
		log:         log.WithComponent("ai"),
	}
}

// Configured reports whether a credential is present
func (c *Client) Configured() bool {
	return c.configured
}

// Complete sends a message to Claude and returns the response text.
// maxTokens overrides the configured default when positive.
func (c *Client) Complete(ctx context.Context, systemPrompt, userMessage string, maxTokens int) (string, error) {
	if !c.configured {
		return "", ErrUnavailable
	}

	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}

	// Wait for rate limiter
	if err := c.rateLimiter.Wait(ctx, ratelimit.LimiterAnthropic); err != nil {
		return "", fmt.Errorf("rate limit error: %w", err)
	}

	c.log.Debug().
		Str("model", c.model).
		Int("max_tokens", maxTokens).
		Msg("Sending request to Claude")

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(maxTokens),
		System: []anthropic.TextBlockParam{
			{
				Type: "text",
				Text: systemPrompt,
			},
		},
		Messages: []anthropic.MessageParam{
			{
				Role: anthropic.MessageParamRoleUser,
				Content: []anthropic.ContentBlockParamUnion{
					anthropic.NewTextBlock(userMessage),
				},
			},
		},
	})

	if err != nil {
		c.log.Error().Err(err).Msg("Claude API error")
		return "", fmt.Errorf("claude API error: %w", err)
	}

	// Extract text from response
	var response string
	for _, block := range message.Content {
		textBlock := block.AsText()
		if textBlock.Text != "" {
			response += textBlock.Text
		}
	}

	c.log.Debug().
		Int("input_tokens", int(message.Usage.InputTokens)).
		Int("output_tokens", int(message.Usage.OutputTokens)).
		Msg("Received Claude response")

	return response, nil
}

// CompleteJSON sends a message and expects a JSON response
func (c *Client) CompleteJSON(ctx context.Context, systemPrompt, userMessage string, maxTokens int) (string, error) {
	// Add JSON instruction to system prompt
	enhancedSystem := systemPrompt + "\n\nIMPORTANT: Respond ONLY with valid JSON. No markdown, no explanation, just the JSON object."

	return c.Complete(ctx, enhancedSystem, userMessage, maxTokens)
}
