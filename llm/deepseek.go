// DeepSeek Backend implementation using go-openai library.
//
// Information Hiding:
// - OpenAI-compatible API endpoint configuration
// - Beta fill-in-middle endpoint selection
// - Streaming transport details

package llm

import (
	"context"
	"errors"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"
)

const (
	deepseekBaseURL = "https://api.deepseek.com/v1"
	// The completions endpoint with prefix/suffix lives under /beta.
	deepseekBetaURL = "https://api.deepseek.com/beta"
)

// DeepSeekBackend implements the Backend interface for DeepSeek.
// It keeps two clients: the standard endpoint for chat completions and
// the beta endpoint for fill-in-middle.
type DeepSeekBackend struct {
	client      *openai.Client
	fimClient   *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

// NewDeepSeekBackend creates a new DeepSeek backend.
func NewDeepSeekBackend(apiKey, model string, maxTokens uint32, temperature float32) *DeepSeekBackend {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = deepseekBaseURL

	fimConfig := openai.DefaultConfig(apiKey)
	fimConfig.BaseURL = deepseekBetaURL

	return &DeepSeekBackend{
		client:      openai.NewClientWithConfig(config),
		fimClient:   openai.NewClientWithConfig(fimConfig),
		model:       model,
		maxTokens:   int(maxTokens),
		temperature: temperature,
	}
}

// Name returns the backend name.
func (b *DeepSeekBackend) Name() string {
	return "deepseek"
}

// Model returns the current model.
func (b *DeepSeekBackend) Model() string {
	return b.model
}

// SupportsFillInMiddle reports true: DeepSeek models take a suffix on the
// beta completions endpoint.
func (b *DeepSeekBackend) SupportsFillInMiddle() bool {
	return true
}

// GenerateFillInMiddle completes between prefix and suffix via the beta
// completions endpoint. The completion is delivered as a single chunk.
func (b *DeepSeekBackend) GenerateFillInMiddle(ctx context.Context, prefix, suffix string, chunks chan<- string) (*Usage, error) {
	req := openai.CompletionRequest{
		Model:       b.model,
		Prompt:      prefix,
		Suffix:      suffix,
		MaxTokens:   b.maxTokens,
		Temperature: b.temperature,
	}

	resp, err := b.fimClient.CreateCompletion(ctx, req)
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
func (b *DeepSeekBackend) GenerateStructured(ctx context.Context, systemPrompt, userPrompt string, chunks chan<- string) (*Usage, error) {
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

// Verify DeepSeekBackend implements Backend
var _ Backend = (*DeepSeekBackend)(nil)
