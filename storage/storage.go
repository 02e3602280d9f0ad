// Package storage persists per-session suggestion history so warm caches
// survive restarts.
package storage

import (
	"context"

	"github.com/richinex/midline/model"
)

// SuggestionStorage persists a session's suggestion history.
type SuggestionStorage interface {
	// Save replaces the stored history for a session.
	Save(ctx context.Context, sessionID string, history []model.Suggestion) error

	// Load returns the stored history for a session, oldest first.
	// A missing session yields an empty slice, not an error.
	Load(ctx context.Context, sessionID string) ([]model.Suggestion, error)

	// Delete removes a session's history.
	Delete(ctx context.Context, sessionID string) error

	// ListSessions returns all stored session IDs.
	ListSessions(ctx context.Context) ([]string, error)

	// Exists reports whether a session has stored history.
	Exists(ctx context.Context, sessionID string) (bool, error)
}
