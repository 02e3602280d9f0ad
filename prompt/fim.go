package prompt

import (
	"context"
	"strings"

	"github.com/richinex/midline/llm"
	"github.com/richinex/midline/model"
)

// fimTokens holds the delimiter tokens of one fill-in-middle model family.
type fimTokens struct {
	Prefix string // token before the prefix content
	Suffix string // token before the suffix content
	Middle string // token before the middle/completion
}

// fimFamilies maps model-name prefixes to their trained delimiter tokens.
// Models absent here take the prefix and suffix through the API's native
// suffix parameter instead of an inline template.
var fimFamilies = []struct {
	namePrefix string
	tokens     fimTokens
}{
	{"starcoder", fimTokens{Prefix: "<fim_prefix>", Suffix: "<fim_suffix>", Middle: "<fim_middle>"}},
	{"codellama", fimTokens{Prefix: "<PRE> ", Suffix: " <SUF>", Middle: " <MID>"}},
	{"code-llama", fimTokens{Prefix: "<PRE> ", Suffix: " <SUF>", Middle: " <MID>"}},
	{"qwen2.5-coder", fimTokens{Prefix: "<|fim_prefix|>", Suffix: "<|fim_suffix|>", Middle: "<|fim_middle|>"}},
	{"codeqwen", fimTokens{Prefix: "<|fim_prefix|>", Suffix: "<|fim_suffix|>", Middle: "<|fim_middle|>"}},
	{"codegemma", fimTokens{Prefix: "<|fim_prefix|>", Suffix: "<|fim_suffix|>", Middle: "<|fim_middle|>"}},
}

// stopTokens are end-of-generation markers some families emit verbatim.
var stopTokens = []string{
	"<|endoftext|>",
	"<EOT>",
	" <EOT>",
	"<|file_separator|>",
}

func tokensFor(modelName string) (fimTokens, bool) {
	lower := strings.ToLower(modelName)
	for _, family := range fimFamilies {
		if strings.HasPrefix(lower, family.namePrefix) {
			return family.tokens, true
		}
	}
	return fimTokens{}, false
}

// FillInMiddle is the strategy for models that complete between a prefix
// and a suffix directly, with no natural-language prompt.
type FillInMiddle struct{}

// NewFillInMiddle creates the fill-in-middle strategy.
func NewFillInMiddle() *FillInMiddle {
	return &FillInMiddle{}
}

// Name identifies the strategy.
func (s *FillInMiddle) Name() string {
	return "fill-in-middle"
}

// Prompts builds the formatted prefix and suffix for the given model.
// Families with trained delimiter tokens get an inline template; everything
// else passes the raw prefix and suffix through to the API's suffix
// parameter.
func (s *FillInMiddle) Prompts(ctx context.Context, cursor model.CursorContext, modelName string) (model.PromptBundle, error) {
	if tokens, ok := tokensFor(modelName); ok {
		return model.PromptBundle{
			FormattedPrefix: tokens.Prefix + cursor.Prefix + tokens.Suffix + cursor.Suffix + tokens.Middle,
			FormattedSuffix: "",
		}, nil
	}
	return model.PromptBundle{
		FormattedPrefix: cursor.Prefix,
		FormattedSuffix: cursor.Suffix,
	}, nil
}

// ParseResponse is nearly identity: model output is the completion
// verbatim, minus any trailing end-of-generation tokens.
func (s *FillInMiddle) ParseResponse(raw, prefix, suffix string) string {
	for _, stop := range stopTokens {
		if idx := strings.Index(raw, stop); idx >= 0 {
			raw = raw[:idx]
		}
	}
	return raw
}

// Generate runs the bundle against the backend's fill-in-middle operation.
func (s *FillInMiddle) Generate(ctx context.Context, backend llm.Backend, bundle model.PromptBundle, chunks chan<- string) (*llm.Usage, error) {
	return backend.GenerateFillInMiddle(ctx, bundle.FormattedPrefix, bundle.FormattedSuffix, chunks)
}

// Verify FillInMiddle implements Strategy
var _ Strategy = (*FillInMiddle)(nil)
