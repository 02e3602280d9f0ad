// OpenAI Backend implementation using go-openai library.
//
// Information Hiding:
// - API endpoint and authentication
// - Fill-in-middle via the legacy completions endpoint (suffix parameter)
// - Structured completions via the Chat Completions API with streaming

package llm

import (
	"context"
	"errors"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIBackend implements the Backend interface for OpenAI.
type OpenAIBackend struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

// NewOpenAIBackend creates a new OpenAI backend.
func NewOpenAIBackend(apiKey, model string, maxTokens uint32, temperature float32) *OpenAIBackend {
	return &OpenAIBackend{
		client:      openai.NewClient(apiKey),
		model:       model,
		maxTokens:   int(maxTokens),
		temperature: temperature,
	}
}

// Name returns the backend name.
func (b *OpenAIBackend) Name() string {
	return "openai"
}

// Model returns the current model.
func (b *OpenAIBackend) Model() string {
	return b.model
}

// SupportsFillInMiddle reports whether the configured model takes a suffix
// on the completions endpoint.
func (b *OpenAIBackend) SupportsFillInMiddle() bool {
	return ModelSupportsFIM(b.model)
}

// GenerateFillInMiddle completes between prefix and suffix via the legacy
// completions endpoint. The full completion is delivered as a single chunk;
// usage is taken from the response.
func (b *OpenAIBackend) GenerateFillInMiddle(ctx context.Context, prefix, suffix string, chunks chan<- string) (*Usage, error) {
	if !b.SupportsFillInMiddle() {
		return nil, ErrFillInMiddleUnsupported
	}

	req := openai.CompletionRequest{
		Model:       b.model,
		Prompt:      prefix,
		Suffix:      suffix,
		MaxTokens:   b.maxTokens,
		Temperature: b.temperature,
	}

	resp, err := b.client.CreateCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("fill-in-middle completion failed: %w", err)
	}

	if len(resp.Choices) > 0 && resp.Choices[0].Text != "" {
		select {
		case chunks <- resp.Choices[0].Text:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	usage := &Usage{
		InputTokens:  uint32(resp.Usage.PromptTokens),
		OutputTokens: uint32(resp.Usage.CompletionTokens),
	}
	priceUsage(b.model, usage)
	return usage, nil
}

// GenerateStructured streams a chat completion for the given prompts.
func (b *OpenAIBackend) GenerateStructured(ctx context.Context, systemPrompt, userPrompt string, chunks chan<- string) (*Usage, error) {
	req := openai.ChatCompletionRequest{
		Model:       b.model,
		Messages:    structuredMessages(systemPrompt, userPrompt),
		MaxTokens:   b.maxTokens,
		Temperature: b.temperature,
		Stream:      true,
		StreamOptions: &openai.StreamOptions{
			IncludeUsage: true,
		},
	}

	stream, err := b.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("stream creation failed: %w", err)
	}
	defer stream.Close()

	var usage *Usage
	for {
		response, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			priceUsage(b.model, usage)
			return usage, nil
		}
		if err != nil {
			return usage, fmt.Errorf("stream recv failed: %w", err)
		}

		// Token usage arrives in the final chunk
		if response.Usage != nil {
			usage = &Usage{
				InputTokens:  uint32(response.Usage.PromptTokens),
				OutputTokens: uint32(response.Usage.CompletionTokens),
			}
			if response.Usage.PromptTokensDetails != nil {
				usage.CacheReadTokens = uint32(response.Usage.PromptTokensDetails.CachedTokens)
			}
		}

		if len(response.Choices) > 0 {
			content := response.Choices[0].Delta.Content
			if content != "" {
				select {
				case chunks <- content:
				case <-ctx.Done():
					return usage, ctx.Err()
				}
			}
		}
	}
}

// structuredMessages builds the two-message prompt shared by the
// OpenAI-compatible backends.
func structuredMessages(systemPrompt, userPrompt string) []openai.ChatCompletionMessage {
	var messages []openai.ChatCompletionMessage
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userPrompt,
	})
	return messages
}

// Verify OpenAIBackend implements Backend
var _ Backend = (*OpenAIBackend)(nil)
