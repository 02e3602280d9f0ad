// Google Gemini Backend implementation using official google.golang.org/genai SDK.
//
// Information Hiding:
// - API authentication and client creation
// - System instruction handling via config
// - Streaming via official SDK iterator

package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiBackend implements the Backend interface for Google Gemini.
type GeminiBackend struct {
	client      *genai.Client
	model       string
	maxTokens   int32
	temperature float32
	initErr     error // Stores client initialization error for deferred reporting
}

// NewGeminiBackend creates a new Gemini backend.
// If client initialization fails, the error is stored and returned on first use.
func NewGeminiBackend(apiKey, model string, maxTokens uint32, temperature float32) *GeminiBackend {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return &GeminiBackend{
			client:      nil,
			model:       model,
			maxTokens:   int32(maxTokens),
			temperature: temperature,
			initErr:     fmt.Errorf("failed to initialize Gemini client: %w", err),
		}
	}

	return &GeminiBackend{
		client:      client,
		model:       model,
		maxTokens:   int32(maxTokens),
		temperature: temperature,
		initErr:     nil,
	}
}

// Name returns the backend name.
func (b *GeminiBackend) Name() string {
	return "gemini"
}

// Model returns the current model.
func (b *GeminiBackend) Model() string {
	return b.model
}

// SupportsFillInMiddle reports false: Gemini has no native suffix parameter,
// so cursor completions go through the hole-filling prompt path.
func (b *GeminiBackend) SupportsFillInMiddle() bool {
	return false
}

// GenerateFillInMiddle is not supported by Gemini models.
func (b *GeminiBackend) GenerateFillInMiddle(ctx context.Context, prefix, suffix string, chunks chan<- string) (*Usage, error) {
	return nil, ErrFillInMiddleUnsupported
}

// GenerateStructured streams a chat completion for the given prompts.
func (b *GeminiBackend) GenerateStructured(ctx context.Context, systemPrompt, userPrompt string, chunks chan<- string) (*Usage, error) {
	if b.initErr != nil {
		return nil, b.initErr
	}
	if b.client == nil {
		return nil, fmt.Errorf("gemini client not initialized")
	}

	contents := []*genai.Content{
		genai.NewContentFromText(userPrompt, genai.RoleUser),
	}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(b.temperature),
		MaxOutputTokens: b.maxTokens,
	}

	if systemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	var usage *Usage
	// GenerateContentStream returns iter.Seq2[*GenerateContentResponse, error]
	for response, err := range b.client.Models.GenerateContentStream(ctx, b.model, contents, config) {
		if err != nil {
			return usage, fmt.Errorf("stream error: %w", err)
		}

		if response.UsageMetadata != nil {
			usage = &Usage{
				InputTokens:  uint32(response.UsageMetadata.PromptTokenCount),
				OutputTokens: uint32(response.UsageMetadata.CandidatesTokenCount),
			}
			usage.CacheReadTokens = uint32(response.UsageMetadata.CachedContentTokenCount)
		}

		text := response.Text()
		if text != "" {
			select {
			case chunks <- text:
			case <-ctx.Done():
				return usage, ctx.Err()
			}
		}
	}

	priceUsage(b.model, usage)
	return usage, nil
}

// Verify GeminiBackend implements Backend
var _ Backend = (*GeminiBackend)(nil)
