// Package prompt builds model prompts for cursor completion and parses the
// responses back into insertable text.
//
// Two strategies exist: fill-in-middle for models that predict the text
// between a prefix and a suffix natively, and hole-filling for chat models
// that need natural-language instructions around a placeholder marker.
// Selection is capability-driven and stateless.

package prompt

import (
	"context"

	"github.com/richinex/midline/llm"
	"github.com/richinex/midline/model"
)

// ContextRetriever supplies workspace context for the hole-filling prompt.
// Implementations return opaque formatted text blocks; an error means the
// strategy simply omits that block.
type ContextRetriever interface {
	// RelatedSnippets returns formatted code snippets related to the
	// cursor's file.
	RelatedSnippets(ctx context.Context, cursor model.CursorContext) (string, error)

	// WorkspaceDirectories returns a formatted listing of the workspace
	// layout.
	WorkspaceDirectories(ctx context.Context) (string, error)
}

// Strategy turns a cursor position into model prompts and model output back
// into completion text.
type Strategy interface {
	// Name identifies the strategy for logging.
	Name() string

	// Prompts builds the prompt bundle for the given cursor position.
	Prompts(ctx context.Context, cursor model.CursorContext, modelName string) (model.PromptBundle, error)

	// ParseResponse extracts the completion text from raw model output.
	// Never fails; malformed output degrades to best-effort extraction.
	ParseResponse(raw, prefix, suffix string) string

	// Generate runs the bundle against a backend, forwarding text chunks.
	Generate(ctx context.Context, backend llm.Backend, bundle model.PromptBundle, chunks chan<- string) (*llm.Usage, error)
}

// NewStrategy selects the strategy for a backend: fill-in-middle when the
// backend's model supports it, hole-filling otherwise.
func NewStrategy(backend llm.Backend, retriever ContextRetriever) Strategy {
	if backend.SupportsFillInMiddle() {
		return NewFillInMiddle()
	}
	return NewHoleFilling(retriever)
}
