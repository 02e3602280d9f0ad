// SQLite suggestion storage.
//
// Information Hiding:
// - SQLite connection management hidden behind interface
// - Schema details encapsulated
// - Thread-safe via sql.DB's built-in connection pooling

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/richinex/midline/model"
)

// SqliteStorage implements SuggestionStorage backed by a SQLite file.
type SqliteStorage struct {
	db *sql.DB
}

// OpenSqlite opens or creates a SQLite database at the given path.
// Creates parent directories if they don't exist.
func OpenSqlite(path string) (*SqliteStorage, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	storage := &SqliteStorage{db: db}
	if err := storage.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

// NewSqliteInMemory creates an in-memory database (useful for testing).
func NewSqliteInMemory() (*SqliteStorage, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite: %w", err)
	}

	storage := &SqliteStorage{db: db}
	if err := storage.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

// Close closes the database connection.
func (s *SqliteStorage) Close() error {
	return s.db.Close()
}

func (s *SqliteStorage) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		);

		CREATE TABLE IF NOT EXISTS suggestions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			suggestion_index INTEGER NOT NULL,
			prefix TEXT NOT NULL,
			suffix TEXT NOT NULL,
			text TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			FOREIGN KEY (session_id) REFERENCES sessions(session_id) ON DELETE CASCADE,
			UNIQUE(session_id, suggestion_index)
		);

		CREATE INDEX IF NOT EXISTS idx_suggestions_session
		ON suggestions(session_id, suggestion_index);
	`

	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (s *SqliteStorage) ensureSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO sessions (session_id) VALUES (?)",
		sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to ensure session: %w", err)
	}
	return nil
}

// Save replaces the suggestion history for a session.
func (s *SqliteStorage) Save(ctx context.Context, sessionID string, history []model.Suggestion) error {
	if err := s.ensureSession(ctx, sessionID); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	// Rollback is safe even after Commit - it becomes a no-op
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, "DELETE FROM suggestions WHERE session_id = ?", sessionID)
	if err != nil {
		return fmt.Errorf("failed to clear old suggestions: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO suggestions (session_id, suggestion_index, prefix, suffix, text, created_at) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	for i, suggestion := range history {
		_, err = stmt.ExecContext(ctx, sessionID, i,
			suggestion.Prefix, suggestion.Suffix, suggestion.Text,
			suggestion.Timestamp.UnixMilli())
		if err != nil {
			return fmt.Errorf("failed to insert suggestion %d: %w", i, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE sessions SET updated_at = datetime('now') WHERE session_id = ?", sessionID)
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Load loads the suggestion history for a session, oldest first.
// Returns an empty slice if the session doesn't exist.
func (s *SqliteStorage) Load(ctx context.Context, sessionID string) ([]model.Suggestion, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT prefix, suffix, text, created_at FROM suggestions WHERE session_id = ? ORDER BY suggestion_index",
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query suggestions: %w", err)
	}
	defer rows.Close()

	history := []model.Suggestion{}
	for rows.Next() {
		var suggestion model.Suggestion
		var createdAt int64
		if err := rows.Scan(&suggestion.Prefix, &suggestion.Suffix, &suggestion.Text, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan suggestion: %w", err)
		}
		suggestion.Timestamp = time.UnixMilli(createdAt)
		history = append(history, suggestion)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate suggestions: %w", err)
	}
	return history, nil
}

// Delete deletes the suggestion history for a session.
func (s *SqliteStorage) Delete(ctx context.Context, sessionID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM suggestions WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("failed to delete suggestions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM sessions WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// ListSessions lists all session IDs.
func (s *SqliteStorage) ListSessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT session_id FROM sessions ORDER BY session_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []string{}
	for rows.Next() {
		var sessionID string
		if err := rows.Scan(&sessionID); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, sessionID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}
	return sessions, nil
}

// Exists checks if a session exists.
func (s *SqliteStorage) Exists(ctx context.Context, sessionID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sessions WHERE session_id = ?", sessionID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check session: %w", err)
	}
	return count > 0, nil
}

// Verify SqliteStorage implements SuggestionStorage
var _ SuggestionStorage = (*SqliteStorage)(nil)
