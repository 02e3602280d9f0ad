// Backend Factory - Ergonomic builder-first API for creating model backends.
//
// Quick Start:
//
//	// Simplest: use defaults, read API key from environment
//	openai, err := llm.BackendOpenAI.FromEnv()
//	claude, err := llm.BackendAnthropic.FromEnv()
//
//	// With custom model
//	coder, err := llm.BackendDeepSeek.Model(llm.ModelDeepSeekChat).FromEnv()
//
//	// Local fast model (no API key)
//	fast, err := llm.BackendOllama.Model("qwen2.5-coder:1.5b").FromEnv()

package llm

import (
	"fmt"
	"os"
	"strings"
)

// BackendType represents supported model backends.
type BackendType int

const (
	// BackendOpenAI is the OpenAI backend (GPT models).
	BackendOpenAI BackendType = iota
	// BackendAnthropic is the Anthropic backend (Claude models).
	BackendAnthropic
	// BackendDeepSeek is the DeepSeek backend (beta fill-in-middle endpoint).
	BackendDeepSeek
	// BackendGemini is the Google Gemini backend.
	BackendGemini
	// BackendOllama is a local Ollama server (fast/speculative models).
	BackendOllama
)

// String returns the string representation of the backend type.
func (b BackendType) String() string {
	switch b {
	case BackendOpenAI:
		return "openai"
	case BackendAnthropic:
		return "anthropic"
	case BackendDeepSeek:
		return "deepseek"
	case BackendGemini:
		return "gemini"
	case BackendOllama:
		return "ollama"
	default:
		return "unknown"
	}
}

// EnvVar returns the environment variable name for this backend's API key.
// Empty for backends that need no key.
func (b BackendType) EnvVar() string {
	switch b {
	case BackendOpenAI:
		return "OPENAI_API_KEY"
	case BackendAnthropic:
		return "ANTHROPIC_API_KEY"
	case BackendDeepSeek:
		return "DEEPSEEK_API_KEY"
	case BackendGemini:
		return "GEMINI_API_KEY"
	case BackendOllama:
		return ""
	default:
		return ""
	}
}

// DefaultModel returns the default model for this backend.
func (b BackendType) DefaultModel() string {
	switch b {
	case BackendOpenAI:
		return ModelOpenAIGPT4o
	case BackendAnthropic:
		return ModelAnthropicClaudeSonnet4
	case BackendDeepSeek:
		return ModelDeepSeekChat
	case BackendGemini:
		return ModelGeminiFlash25
	case BackendOllama:
		return ModelOllamaQwenCoder
	default:
		return ""
	}
}

// ParseBackendType parses a backend from string (case-insensitive).
func ParseBackendType(s string) (BackendType, error) {
	switch strings.ToLower(s) {
	case "openai", "gpt":
		return BackendOpenAI, nil
	case "anthropic", "claude":
		return BackendAnthropic, nil
	case "deepseek":
		return BackendDeepSeek, nil
	case "gemini", "google":
		return BackendGemini, nil
	case "ollama", "local":
		return BackendOllama, nil
	default:
		return 0, fmt.Errorf("unknown backend: %s", s)
	}
}

// FromEnv creates a backend with defaults, reading the API key from the
// environment.
func (b BackendType) FromEnv() (Backend, error) {
	return NewBackendBuilder(b).FromEnv()
}

// Model starts configuring this backend with a specific model.
func (b BackendType) Model(model string) *BackendBuilder {
	return NewBackendBuilder(b).Model(model)
}

// APIKey creates a backend with an explicit API key (defaults elsewhere).
func (b BackendType) APIKey(key string) (Backend, error) {
	return NewBackendBuilder(b).APIKey(key)
}

// BackendBuilder is a builder for configuring model backends.
type BackendBuilder struct {
	backendType BackendType
	model       string
	maxTokens   uint32
	temperature *float32
	baseURL     string
}

// NewBackendBuilder creates a new builder for the given backend.
func NewBackendBuilder(backendType BackendType) *BackendBuilder {
	return &BackendBuilder{
		backendType: backendType,
	}
}

// Model sets the model to use.
func (b *BackendBuilder) Model(model string) *BackendBuilder {
	b.model = model
	return b
}

// MaxTokens sets maximum tokens for completions.
func (b *BackendBuilder) MaxTokens(tokens uint32) *BackendBuilder {
	b.maxTokens = tokens
	return b
}

// Temperature sets sampling temperature (0.0 = deterministic).
func (b *BackendBuilder) Temperature(temp float32) *BackendBuilder {
	b.temperature = &temp
	return b
}

// BaseURL overrides the API base URL (Ollama servers on non-default ports).
func (b *BackendBuilder) BaseURL(url string) *BackendBuilder {
	b.baseURL = url
	return b
}

// FromEnv builds the backend, reading the API key from the environment.
func (b *BackendBuilder) FromEnv() (Backend, error) {
	envVar := b.backendType.EnvVar()
	if envVar == "" {
		return b.build("")
	}
	apiKey := os.Getenv(envVar)
	if apiKey == "" {
		return nil, fmt.Errorf("%s: %s environment variable not set", b.backendType, envVar)
	}
	return b.build(apiKey)
}

// APIKey builds the backend with an explicit API key.
func (b *BackendBuilder) APIKey(key string) (Backend, error) {
	return b.build(key)
}

func (b *BackendBuilder) build(apiKey string) (Backend, error) {
	model := b.model
	if model == "" {
		model = b.backendType.DefaultModel()
	}

	maxTokens := b.maxTokens
	if maxTokens == 0 {
		maxTokens = 256 // inline completions are short
	}

	temperature := float32(0.2) // low default: completions should be stable
	if b.temperature != nil {
		temperature = *b.temperature
	}

	switch b.backendType {
	case BackendOpenAI:
		return NewOpenAIBackend(apiKey, model, maxTokens, temperature), nil
	case BackendAnthropic:
		return NewAnthropicBackend(apiKey, model, maxTokens, temperature), nil
	case BackendDeepSeek:
		return NewDeepSeekBackend(apiKey, model, maxTokens, temperature), nil
	case BackendGemini:
		return NewGeminiBackend(apiKey, model, maxTokens, temperature), nil
	case BackendOllama:
		return NewOllamaBackend(b.baseURL, model, maxTokens, temperature), nil
	default:
		return nil, fmt.Errorf("unknown backend type: %v", b.backendType)
	}
}

// fimModelPrefixes lists model families with native fill-in-middle support,
// either through a suffix parameter or trained delimiter tokens.
var fimModelPrefixes = []string{
	"deepseek-chat",
	"deepseek-coder",
	"codellama",
	"code-llama",
	"starcoder",
	"qwen2.5-coder",
	"codeqwen",
	"codegemma",
	"codestral",
	"gpt-3.5-turbo-instruct",
}

// ModelSupportsFIM reports whether a model identifier belongs to a family
// with native fill-in-middle support.
func ModelSupportsFIM(model string) bool {
	model = strings.ToLower(model)
	for _, prefix := range fimModelPrefixes {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}

// Model identifier constants for the supported backends.

// OpenAI model identifiers
const (
	// ModelOpenAIGPT4o is GPT-4o: general chat model (hole-filling path).
	ModelOpenAIGPT4o = "gpt-4o"
	// ModelOpenAIGPT4oMini is GPT-4o-mini: cheaper chat model.
	ModelOpenAIGPT4oMini = "gpt-4o-mini"
	// ModelOpenAIInstruct is gpt-3.5-turbo-instruct: supports the legacy
	// completions endpoint with a suffix parameter (fill-in-middle path).
	ModelOpenAIInstruct = "gpt-3.5-turbo-instruct"
)

// Anthropic model identifiers
const (
	// ModelAnthropicClaudeSonnet4 is Claude Sonnet 4: balanced performance.
	ModelAnthropicClaudeSonnet4 = "claude-sonnet-4-20250514"
	// ModelAnthropicClaudeHaiku4 is Claude Haiku 4: fast and efficient.
	ModelAnthropicClaudeHaiku4 = "claude-haiku-4-20250514"
)

// DeepSeek model identifiers
const (
	// ModelDeepSeekChat is deepseek-chat: supports the beta FIM endpoint.
	ModelDeepSeekChat = "deepseek-chat"
)

// Gemini model identifiers
const (
	// ModelGeminiFlash25 is Gemini 2.5 Flash: speed-optimized chat model.
	ModelGeminiFlash25 = "gemini-2.5-flash"
	// ModelGeminiFlash20 is Gemini 2.0 Flash: legacy model.
	ModelGeminiFlash20 = "gemini-2.0-flash"
)

// Ollama model identifiers (local)
const (
	// ModelOllamaQwenCoder is a small code model suitable for speculative
	// previews.
	ModelOllamaQwenCoder = "qwen2.5-coder:1.5b"
	// ModelOllamaCodeLlama is codellama 7B in code-completion mode.
	ModelOllamaCodeLlama = "codellama:7b-code"
)
