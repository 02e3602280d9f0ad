package speculative

import "strings"

// Confidence heuristic for fast-model completions. Scores start at a base
// and move with cheap syntactic signals; no model is consulted.
const (
	baseConfidence      = 0.5
	balancedBonus       = 0.2
	indentBonus         = 0.15
	lengthPenalty       = 0.1
	minUsefulLength     = 5
	maxReasonableLength = 500
)

// scoreConfidence rates a completion against its surrounding prefix,
// clamped to [0,1].
func scoreConfidence(completion, prefix string) float64 {
	score := baseConfidence

	if isBalanced(completion) {
		score += balancedBonus
	}
	if indentMatches(completion, prefix) {
		score += indentBonus
	}

	trimmed := strings.TrimSpace(completion)
	if len(trimmed) < minUsefulLength || len(trimmed) > maxReasonableLength {
		score -= lengthPenalty
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// isBalanced counts brace, bracket, and paren pairs. A completion may
// close more than it opens (finishing an outer block) but never the other
// way around; string and char literals are skipped.
func isBalanced(s string) bool {
	var round, square, curly int
	var inString, inChar, escaped bool

	for _, r := range s {
		if escaped {
			escaped = false
			continue
		}
		switch {
		case r == '\\' && (inString || inChar):
			escaped = true
		case r == '"' && !inChar:
			inString = !inString
		case r == '\'' && !inString:
			inChar = !inChar
		case inString || inChar:
		case r == '(':
			round++
		case r == ')':
			round--
		case r == '[':
			square++
		case r == ']':
			square--
		case r == '{':
			curly++
		case r == '}':
			curly--
		}
	}

	return round <= 0 && square <= 0 && curly <= 0
}

// indentMatches checks that the completion's first continued line starts at
// the indentation depth the prefix's last line establishes.
func indentMatches(completion, prefix string) bool {
	nl := strings.Index(completion, "\n")
	if nl < 0 {
		// Single-line completions inherit the cursor's indentation
		return true
	}
	rest := completion[nl+1:]
	if strings.TrimSpace(rest) == "" {
		return true
	}
	firstContinued := rest
	if end := strings.Index(rest, "\n"); end >= 0 {
		firstContinued = rest[:end]
	}

	prefixLines := strings.Split(prefix, "\n")
	lastLine := prefixLines[len(prefixLines)-1]

	return leadingWhitespace(firstContinued) >= leadingWhitespace(lastLine)
}

func leadingWhitespace(s string) int {
	count := 0
	for _, r := range s {
		if r != ' ' && r != '\t' {
			break
		}
		count++
	}
	return count
}
