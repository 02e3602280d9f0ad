// Ollama Backend implementation using go-openai against a local server.
//
// Information Hiding:
// - OpenAI-compatible endpoint configuration for local servers
// - Fill-in-middle via the completions endpoint with a suffix
//
// Local models carry no cost; usage records report tokens only.

package llm

import (
	"context"
	"errors"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultOllamaBaseURL is the OpenAI-compatible endpoint of a local
// Ollama server.
const DefaultOllamaBaseURL = "http://localhost:11434/v1"

// OllamaBackend implements the Backend interface for a local Ollama server.
// It is the usual fast backend for speculative previews.
type OllamaBackend struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

// NewOllamaBackend creates a backend for a local Ollama server.
// An empty baseURL selects the default local endpoint. No API key is needed;
// the placeholder satisfies the client library.
func NewOllamaBackend(baseURL, model string, maxTokens uint32, temperature float32) *OllamaBackend {
	if baseURL == "" {
		baseURL = DefaultOllamaBaseURL
	}
	config := openai.DefaultConfig("ollama")
	config.BaseURL = baseURL

	return &OllamaBackend{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		maxTokens:   int(maxTokens),
		temperature: temperature,
	}
}

// Name returns the backend name.
func (b *OllamaBackend) Name() string {
	return "ollama"
}

// Model returns the current model.
func (b *OllamaBackend) Model() string {
	return b.model
}

// SupportsFillInMiddle reports true: Ollama's completions endpoint accepts
// a suffix and applies the model's own fill-in-middle template.
func (b *OllamaBackend) SupportsFillInMiddle() bool {
	return true
}

// GenerateFillInMiddle completes between prefix and suffix via the local
// completions endpoint. The completion is delivered as a single chunk.
func (b *OllamaBackend) GenerateFillInMiddle(ctx context.Context, prefix, suffix string, chunks chan<- string) (*Usage, error) {
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

	return &Usage{
		InputTokens:  uint32(resp.Usage.PromptTokens),
		OutputTokens: uint32(resp.Usage.CompletionTokens),
	}, nil
}

// GenerateStructured streams a chat completion from the local server.
func (b *OllamaBackend) GenerateStructured(ctx context.Context, systemPrompt, userPrompt string, chunks chan<- string) (*Usage, error) {
	req := openai.ChatCompletionRequest{
		Model:       b.model,
		Messages:    structuredMessages(systemPrompt, userPrompt),
		MaxTokens:   b.maxTokens,
		Temperature: b.temperature,
		Stream:      true,
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

// Verify OllamaBackend implements Backend
var _ Backend = (*OllamaBackend)(nil)
