// Package match implements similarity search over a bounded completion
// history. The engine answers cursor queries from previously produced
// completions before any model is contacted.
//
// Information Hiding:
// - Match strategy evaluation order and scoring
// - Edit-distance and similarity computation
// - History bounds and recency ordering

package match

import (
	"strings"

	"github.com/richinex/midline/model"
)

// Config holds the tunable thresholds of the match engine. The defaults
// are empirically chosen starting points, not tuned optima.
type Config struct {
	// MinSimilarityScore is the confidence floor below which a candidate
	// is discarded and the engine reports a miss.
	MinSimilarityScore float64

	// MaxEditDistance bounds the fuzzy strategy's accepted edit distance.
	MaxEditDistance int

	// MultiLineThreshold is the minimum tail-line similarity for the
	// multi-line strategy to fire.
	MultiLineThreshold float64

	// ContextThreshold is the minimum similarity both the prefix tail and
	// the suffix must reach for the context strategy to fire.
	ContextThreshold float64

	// ContextPrefixWeight and ContextSuffixWeight combine the two context
	// similarities into one score.
	ContextPrefixWeight float64
	ContextSuffixWeight float64

	// ContextBoost is added when the prefix ends at a natural completion
	// point such as an opening brace or an assignment.
	ContextBoost float64

	// EnableFuzzy, EnableMultiLine, and EnableContext switch the
	// non-trivial strategies on and off individually.
	EnableFuzzy     bool
	EnableMultiLine bool
	EnableContext   bool
}

// DefaultConfig returns the standard engine configuration.
func DefaultConfig() Config {
	return Config{
		MinSimilarityScore:  0.7,
		MaxEditDistance:     2,
		MultiLineThreshold:  0.8,
		ContextThreshold:    0.85,
		ContextPrefixWeight: 0.7,
		ContextSuffixWeight: 0.3,
		ContextBoost:        0.05,
		EnableFuzzy:         true,
		EnableMultiLine:     true,
		EnableContext:       true,
	}
}

// Engine performs similarity search over a suggestion history.
type Engine struct {
	config Config
}

// NewEngine creates an engine with the given configuration.
func NewEngine(config Config) *Engine {
	return &Engine{config: config}
}

// boostChars are the characters after which a completion is most likely to
// continue the same thought.
const boostChars = ".({,:=["

// FindBestMatch scans history from most recent to oldest, evaluating every
// enabled strategy per entry and keeping the highest-confidence candidate.
// Scanning stops early only on a perfect match. Returns nil when the best
// candidate falls below the configured minimum.
func (e *Engine) FindBestMatch(prefix, suffix string, history []model.Suggestion) *model.MatchResult {
	var best *model.MatchResult

	for i := len(history) - 1; i >= 0; i-- {
		entry := &history[i]

		candidate := e.bestForEntry(prefix, suffix, entry)
		if candidate == nil {
			continue
		}
		if best == nil || candidate.Confidence > best.Confidence {
			best = candidate
		}
		if best.Confidence == 1.0 {
			break
		}
	}

	if best == nil || best.Confidence < e.config.MinSimilarityScore {
		return nil
	}
	return best
}

// bestForEntry evaluates all strategies against one entry and returns the
// highest-confidence candidate, or nil if none fire.
func (e *Engine) bestForEntry(prefix, suffix string, entry *model.Suggestion) *model.MatchResult {
	var best *model.MatchResult

	keep := func(r *model.MatchResult) {
		if r != nil && (best == nil || r.Confidence > best.Confidence) {
			best = r
		}
	}

	keep(matchExact(prefix, suffix, entry))
	keep(matchPartialTyping(prefix, suffix, entry))
	keep(matchBackwardDeletion(prefix, suffix, entry))
	if e.config.EnableFuzzy {
		keep(e.matchFuzzy(prefix, suffix, entry))
	}
	if e.config.EnableMultiLine {
		keep(e.matchMultiLine(prefix, suffix, entry))
	}
	if e.config.EnableContext {
		keep(e.matchContextSimilar(prefix, suffix, entry))
	}

	return best
}

func matchExact(prefix, suffix string, entry *model.Suggestion) *model.MatchResult {
	if prefix != entry.Prefix || suffix != entry.Suffix {
		return nil
	}
	return &model.MatchResult{
		Text:       entry.Text,
		Type:       model.MatchExact,
		Confidence: 1.0,
	}
}

// matchPartialTyping fires when the user has typed ahead into a previous
// completion: the remainder of the stored text is still valid.
func matchPartialTyping(prefix, suffix string, entry *model.Suggestion) *model.MatchResult {
	if entry.Text == "" || suffix != entry.Suffix {
		return nil
	}
	if !strings.HasPrefix(prefix, entry.Prefix) || prefix == entry.Prefix {
		return nil
	}
	typed := prefix[len(entry.Prefix):]
	if !strings.HasPrefix(entry.Text, typed) {
		return nil
	}
	return &model.MatchResult{
		Text:       entry.Text[len(typed):],
		Type:       model.MatchPartialTyping,
		Confidence: 0.95,
	}
}

// matchBackwardDeletion fires when the user deleted characters that a
// previous completion started from: the deleted text is prepended back.
func matchBackwardDeletion(prefix, suffix string, entry *model.Suggestion) *model.MatchResult {
	if entry.Text == "" || suffix != entry.Suffix {
		return nil
	}
	if !strings.HasPrefix(entry.Prefix, prefix) || entry.Prefix == prefix {
		return nil
	}
	deleted := entry.Prefix[len(prefix):]
	return &model.MatchResult{
		Text:       deleted + entry.Text,
		Type:       model.MatchBackwardDeletion,
		Confidence: 0.9,
	}
}

func (e *Engine) matchFuzzy(prefix, suffix string, entry *model.Suggestion) *model.MatchResult {
	if entry.Text == "" || suffix != entry.Suffix {
		return nil
	}
	d := Levenshtein(prefix, entry.Prefix)
	if d == 0 || d > e.config.MaxEditDistance {
		return nil
	}

	longer := len([]rune(prefix))
	if l := len([]rune(entry.Prefix)); l > longer {
		longer = l
	}
	confidence := 1.0 - float64(d)/float64(longer)
	if confidence < 0.7 {
		confidence = 0.7
	}

	return &model.MatchResult{
		Text:       entry.Text,
		Type:       model.MatchFuzzy,
		Confidence: confidence,
		Metadata:   &model.MatchMetadata{EditDistance: d},
	}
}

// matchMultiLine compares the last three lines of each prefix. It covers
// edits far back in the buffer that leave the cursor neighborhood intact.
func (e *Engine) matchMultiLine(prefix, suffix string, entry *model.Suggestion) *model.MatchResult {
	if entry.Text == "" || suffix != entry.Suffix {
		return nil
	}
	prefixLines := strings.Split(prefix, "\n")
	entryLines := strings.Split(entry.Prefix, "\n")
	if len(prefixLines) < 2 || len(entryLines) < 2 {
		return nil
	}

	similarity := Similarity(lastLines(prefixLines, 3), lastLines(entryLines, 3))
	if similarity < e.config.MultiLineThreshold {
		return nil
	}

	linesMatched := 3
	if len(prefixLines) < linesMatched {
		linesMatched = len(prefixLines)
	}

	return &model.MatchResult{
		Text:       entry.Text,
		Type:       model.MatchMultiLine,
		Confidence: similarity * 0.85,
		Metadata: &model.MatchMetadata{
			SimilarityScore: similarity,
			LinesMatched:    linesMatched,
		},
	}
}

// matchContextSimilar compares the cursor's immediate neighborhood: the
// last 50 characters of each prefix weighted against the suffixes.
func (e *Engine) matchContextSimilar(prefix, suffix string, entry *model.Suggestion) *model.MatchResult {
	if entry.Text == "" {
		return nil
	}

	contextSim := Similarity(tailChars(prefix, 50), tailChars(entry.Prefix, 50))
	suffixSim := Similarity(suffix, entry.Suffix)
	if contextSim < e.config.ContextThreshold || suffixSim < e.config.ContextThreshold {
		return nil
	}

	combined := contextSim*e.config.ContextPrefixWeight + suffixSim*e.config.ContextSuffixWeight

	boost := 0.0
	trimmed := strings.TrimRight(prefix, " \t\n\r")
	if trimmed != "" && strings.ContainsRune(boostChars, rune(trimmed[len(trimmed)-1])) {
		boost = e.config.ContextBoost
	}

	confidence := combined + boost
	if confidence > 0.95 {
		confidence = 0.95
	}

	return &model.MatchResult{
		Text:       entry.Text,
		Type:       model.MatchContextSimilar,
		Confidence: confidence,
		Metadata:   &model.MatchMetadata{SimilarityScore: combined},
	}
}

// lastLines joins the last n lines with newlines.
func lastLines(lines []string, n int) string {
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

// tailChars returns the last n runes of s.
func tailChars(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}
