// Package llm provides model backend abstractions.
//
// Backend - the abstract interface for completion model backends.
// Each backend implementation hides:
// - API client initialization and authentication
// - Request/response format conversion
// - Streaming transport details
// - Usage and cost accounting

package llm

import (
	"context"
	"errors"
)

// ErrFillInMiddleUnsupported is returned by backends whose models cannot
// complete directly between a prefix and a suffix.
var ErrFillInMiddleUnsupported = errors.New("model does not support fill-in-middle")

// Backend defines the abstract interface for completion model backends.
// Implementations hide provider-specific details while exposing a
// consistent streaming interface for inline completion.
type Backend interface {
	// Name returns the backend name (for logging/debugging).
	Name() string

	// Model returns the current model being used.
	Model() string

	// SupportsFillInMiddle reports whether the model can predict the text
	// between a prefix and a suffix natively. Strategy selection keys off
	// this: fill-in-middle when true, hole-filling otherwise.
	SupportsFillInMiddle() bool

	// GenerateFillInMiddle streams the middle text for the given prefix and
	// suffix, sending raw text chunks to the provided channel. Returns usage
	// accounting for the call (available once the stream completes).
	GenerateFillInMiddle(ctx context.Context, prefix, suffix string, chunks chan<- string) (*Usage, error)

	// GenerateStructured streams a chat completion for the given system and
	// user prompts, sending text chunks to the provided channel.
	GenerateStructured(ctx context.Context, systemPrompt, userPrompt string, chunks chan<- string) (*Usage, error)
}

// Usage contains token usage and cost for a single backend call.
// Fields are passed through to callers unmodified.
type Usage struct {
	Cost             float64
	InputTokens      uint32
	OutputTokens     uint32
	CacheWriteTokens uint32
	CacheReadTokens  uint32
}

// Add accumulates another usage record into u. Nil-safe on the argument.
func (u *Usage) Add(other *Usage) {
	if other == nil {
		return
	}
	u.Cost += other.Cost
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.CacheWriteTokens += other.CacheWriteTokens
	u.CacheReadTokens += other.CacheReadTokens
}
