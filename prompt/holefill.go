package prompt

import (
	"context"
	"fmt"
	"strings"

	"github.com/richinex/midline/internal/logger"
	"github.com/richinex/midline/llm"
	"github.com/richinex/midline/model"

	"github.com/charmbracelet/log"
)

// FillMarker marks the cursor position inside the hole-filling user prompt.
const FillMarker = "{{FILL_HERE}}"

const (
	completionOpenTag  = "<COMPLETION>"
	completionCloseTag = "</COMPLETION>"
)

const holeFillSystemPrompt = `You are a code completion engine. The user gives you a source file with the marker ` + FillMarker + ` at the cursor position. Respond with ONLY the text that replaces the marker, wrapped in ` + completionOpenTag + ` and ` + completionCloseTag + ` tags.

Rules:
- Produce code that joins the text before and after the marker seamlessly.
- Do not repeat text that already appears before or after the marker.
- Match the indentation and style of the surrounding code.
- Keep the completion short: finish the current expression, statement, or block.
- No explanations, no markdown fences, nothing outside the tags.`

// HoleFilling is the strategy for chat models: an instruction prompt with a
// placeholder marker at the cursor, expecting a tagged response.
type HoleFilling struct {
	retriever ContextRetriever
	logger    *log.Logger
}

// NewHoleFilling creates the hole-filling strategy. The retriever may be
// nil, in which case prompts carry no workspace context.
func NewHoleFilling(retriever ContextRetriever) *HoleFilling {
	return &HoleFilling{
		retriever: retriever,
		logger:    logger.Default("prompt"),
	}
}

// Name identifies the strategy.
func (s *HoleFilling) Name() string {
	return "hole-filling"
}

// Prompts builds the instruction prompts. Context retrieval failures are
// logged and the corresponding block omitted; prompt construction itself
// never fails.
func (s *HoleFilling) Prompts(ctx context.Context, cursor model.CursorContext, modelName string) (model.PromptBundle, error) {
	var sb strings.Builder

	if s.retriever != nil {
		if dirs, err := s.retriever.WorkspaceDirectories(ctx); err != nil {
			s.logger.Debug("workspace listing unavailable", "error", err)
		} else if dirs != "" {
			sb.WriteString("Workspace layout:\n")
			sb.WriteString(dirs)
			sb.WriteString("\n\n")
		}

		if snippets, err := s.retriever.RelatedSnippets(ctx, cursor); err != nil {
			s.logger.Debug("related snippets unavailable", "error", err)
		} else if snippets != "" {
			sb.WriteString("Related code:\n")
			sb.WriteString(snippets)
			sb.WriteString("\n\n")
		}
	}

	if cursor.LanguageID != "" {
		fmt.Fprintf(&sb, "Language: %s\n", cursor.LanguageID)
	}
	if cursor.FilePath != "" {
		fmt.Fprintf(&sb, "File: %s\n", cursor.FilePath)
	}
	sb.WriteString("\nComplete the code at the marker:\n\n")
	sb.WriteString(cursor.Prefix)
	sb.WriteString(FillMarker)
	sb.WriteString(cursor.Suffix)

	return model.PromptBundle{
		SystemPrompt:    holeFillSystemPrompt,
		UserPrompt:      sb.String(),
		FormattedPrefix: cursor.Prefix,
		FormattedSuffix: cursor.Suffix,
	}, nil
}

// ParseResponse extracts the completion from a tagged response. Malformed
// or missing tags degrade to best-effort extraction of the raw text.
func (s *HoleFilling) ParseResponse(raw, prefix, suffix string) string {
	open := strings.Index(raw, completionOpenTag)
	if open >= 0 {
		rest := raw[open+len(completionOpenTag):]
		if end := strings.Index(rest, completionCloseTag); end >= 0 {
			return rest[:end]
		}
		// Open tag without close: take the remainder
		return strings.TrimSpace(rest)
	}

	// No tags at all: strip markdown fences if present, then trim
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		if nl := strings.Index(text, "\n"); nl >= 0 {
			text = text[nl+1:]
		}
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimRight(text, "\n")
	}
	return strings.TrimSpace(text)
}

// Generate runs the bundle against the backend's structured operation.
func (s *HoleFilling) Generate(ctx context.Context, backend llm.Backend, bundle model.PromptBundle, chunks chan<- string) (*llm.Usage, error) {
	return backend.GenerateStructured(ctx, bundle.SystemPrompt, bundle.UserPrompt, chunks)
}

// Verify HoleFilling implements Strategy
var _ Strategy = (*HoleFilling)(nil)
