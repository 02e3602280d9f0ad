// Anthropic Backend implementation using official anthropic-sdk-go.
//
// Information Hiding:
// - API endpoint and authentication
// - Request/response format for Anthropic Messages API
// - Streaming via official SDK
// - Prompt caching token accounting

package llm

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicBackend implements the Backend interface for Anthropic Claude.
type AnthropicBackend struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	temperature float64
}

// NewAnthropicBackend creates a new Anthropic backend.
func NewAnthropicBackend(apiKey, model string, maxTokens uint32, temperature float32) *AnthropicBackend {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &AnthropicBackend{
		client:      client,
		model:       model,
		maxTokens:   int64(maxTokens),
		temperature: float64(temperature),
	}
}

// Name returns the backend name.
func (b *AnthropicBackend) Name() string {
	return "anthropic"
}

// Model returns the current model.
func (b *AnthropicBackend) Model() string {
	return b.model
}

// SupportsFillInMiddle reports false: Claude models have no native suffix
// parameter, so completion between prefix and suffix goes through the
// hole-filling prompt path instead.
func (b *AnthropicBackend) SupportsFillInMiddle() bool {
	return false
}

// GenerateFillInMiddle is not supported by Anthropic models.
func (b *AnthropicBackend) GenerateFillInMiddle(ctx context.Context, prefix, suffix string, chunks chan<- string) (*Usage, error) {
	return nil, ErrFillInMiddleUnsupported
}

// GenerateStructured streams a chat completion for the given prompts.
// The system prompt is marked cacheable so repeated completions from the
// same session reuse the prompt prefix.
func (b *AnthropicBackend) GenerateStructured(ctx context.Context, systemPrompt, userPrompt string, chunks chan<- string) (*Usage, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(b.model),
		MaxTokens: b.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
		Temperature: anthropic.Float(b.temperature),
	}

	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{
			{
				Text: systemPrompt,
				CacheControl: anthropic.CacheControlEphemeralParam{
					Type: "ephemeral",
				},
			},
		}
	}

	stream := b.client.Messages.NewStreaming(ctx, params)

	var usage *Usage
	for stream.Next() {
		event := stream.Current()

		switch eventVariant := event.AsAny().(type) {
		case anthropic.MessageStartEvent:
			// Input and cache tokens arrive with the message start
			usage = &Usage{
				InputTokens:      uint32(eventVariant.Message.Usage.InputTokens),
				CacheWriteTokens: uint32(eventVariant.Message.Usage.CacheCreationInputTokens),
				CacheReadTokens:  uint32(eventVariant.Message.Usage.CacheReadInputTokens),
			}
		case anthropic.ContentBlockDeltaEvent:
			switch deltaVariant := eventVariant.Delta.AsAny().(type) {
			case anthropic.TextDelta:
				if deltaVariant.Text != "" {
					select {
					case chunks <- deltaVariant.Text:
					case <-ctx.Done():
						return usage, ctx.Err()
					}
				}
			}
		case anthropic.MessageDeltaEvent:
			// Output tokens arrive with the final delta
			if eventVariant.Usage.OutputTokens > 0 {
				if usage == nil {
					usage = &Usage{}
				}
				usage.OutputTokens = uint32(eventVariant.Usage.OutputTokens)
			}
		}
	}

	if stream.Err() != nil {
		return usage, fmt.Errorf("stream error: %w", stream.Err())
	}

	priceUsage(b.model, usage)
	return usage, nil
}

// Verify AnthropicBackend implements Backend
var _ Backend = (*AnthropicBackend)(nil)
