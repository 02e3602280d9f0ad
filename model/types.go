// Package model provides domain types shared across packages.
package model

import "time"

// CursorContext describes the text immediately around an editing cursor,
// plus the file identity used for context retrieval.
type CursorContext struct {
	Prefix     string
	Suffix     string
	LanguageID string
	FilePath   string
}

// Suggestion is a previously produced completion, kept in an ordered,
// size-bounded session history (insertion order = recency).
type Suggestion struct {
	Prefix    string    `json:"prefix"`
	Suffix    string    `json:"suffix"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// MatchType identifies which similarity strategy produced a match.
type MatchType string

const (
	MatchExact            MatchType = "exact"
	MatchPartialTyping    MatchType = "partial_typing"
	MatchBackwardDeletion MatchType = "backward_deletion"
	MatchFuzzy            MatchType = "fuzzy"
	MatchMultiLine        MatchType = "multi_line"
	MatchContextSimilar   MatchType = "context_similar"
)

// MatchMetadata carries strategy-specific details about a match.
type MatchMetadata struct {
	EditDistance    int     `json:"edit_distance,omitempty"`
	SimilarityScore float64 `json:"similarity_score,omitempty"`
	LinesMatched    int     `json:"lines_matched,omitempty"`
}

/// MatchResult is a history hit: the completion text to show, the strategy
// that produced it, and a confidence in [0,1].
type MatchResult struct {
	Text       string
	Type       MatchType
	Confidence float64
	Metadata   *MatchMetadata
}

// PromptBundle is the output of a prompt strategy, consumed by a model
// backend. Fill-in-middle strategies populate the formatted prefix/suffix;
// hole-filling strategies populate the system and user prompts.
type PromptBundle struct {
	SystemPrompt    string
	UserPrompt      string
	FormattedPrefix string
	FormattedSuffix string
}

// ValidationStatus tracks the lifecycle of a speculative suggestion.
// Transitions are pending -> validated | rejected | refined, all terminal.
type ValidationStatus string

const (
	ValidationPending   ValidationStatus = "pending"
	ValidationValidated ValidationStatus = "validated"
	ValidationRejected  ValidationStatus = "rejected"
	ValidationRefined   ValidationStatus = "refined"
)

// SpeculativeSource identifies which model produced a completion.
type SpeculativeSource string

const (
	SourceFast SpeculativeSource = "fast"
	SourceMain SpeculativeSource = "main"
)

// SpeculativeSuggestion is an instant preview from a fast model, later
// validated or refined by the authoritative model. The ID lets callers
// discard refinements whose originating cursor context has moved on.
type SpeculativeSuggestion struct {
	ID                string
	Prefix            string
	Suffix            string
	Completion        string
	Confidence        float64
	Latency           time.Duration
	Source            SpeculativeSource
	Timestamp         time.Time
	Status            ValidationStatus
	RefinedCompletion string
}
