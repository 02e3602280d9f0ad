package match

import (
	"sync"
	"time"

	"github.com/richinex/midline/model"
)

// DefaultHistorySize bounds the suggestion history when no size is given.
const DefaultHistorySize = 50

// History is a bounded, insertion-ordered record of produced completions.
// Oldest entries are discarded first when the bound is reached.
//
// A History belongs to one editing session; the mutex covers callers that
// record completions from resolution goroutines.
type History struct {
	mu      sync.Mutex
	entries []model.Suggestion
	maxSize int
}

// NewHistory creates a history bounded at maxSize entries.
// Non-positive sizes fall back to the default.
func NewHistory(maxSize int) *History {
	if maxSize <= 0 {
		maxSize = DefaultHistorySize
	}
	return &History{
		entries: make([]model.Suggestion, 0, maxSize),
		maxSize: maxSize,
	}
}

// Add records a completion for the given cursor position, stamping it with
// the current time and trimming the oldest entry at capacity.
func (h *History) Add(prefix, suffix, text string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries, model.Suggestion{
		Prefix:    prefix,
		Suffix:    suffix,
		Text:      text,
		Timestamp: time.Now(),
	})
	if len(h.entries) > h.maxSize {
		h.entries = h.entries[len(h.entries)-h.maxSize:]
	}
}

// Entries returns a copy of the history, oldest first.
func (h *History) Entries() []model.Suggestion {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]model.Suggestion, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of stored suggestions.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Replace swaps in a saved set of suggestions, trimming to capacity from
// the front so the most recent entries survive.
func (h *History) Replace(suggestions []model.Suggestion) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(suggestions) > h.maxSize {
		suggestions = suggestions[len(suggestions)-h.maxSize:]
	}
	h.entries = make([]model.Suggestion, len(suggestions))
	copy(h.entries, suggestions)
}

// Clear removes all entries.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = h.entries[:0]
}
