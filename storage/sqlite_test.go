package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/richinex/midline/model"
)

func TestSqliteStorageSaveAndLoad(t *testing.T) {
	storage, err := NewSqliteInMemory()
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer storage.Close()

	ctx := context.Background()

	history := []model.Suggestion{
		{Prefix: "const x = ", Suffix: ";", Text: "42", Timestamp: time.UnixMilli(1700000000000)},
		{Prefix: "if err != nil {", Suffix: "}", Text: "\n\treturn err\n", Timestamp: time.UnixMilli(1700000001000)},
	}

	if err := storage.Save(ctx, "test-session", history); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := storage.Load(ctx, "test-session")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(loaded) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(loaded))
	}
	if loaded[0].Text != "42" {
		t.Errorf("expected '42', got '%s'", loaded[0].Text)
	}
	if loaded[1].Text != "\n\treturn err\n" {
		t.Errorf("whitespace not preserved: %q", loaded[1].Text)
	}
	if !loaded[0].Timestamp.Equal(time.UnixMilli(1700000000000)) {
		t.Errorf("timestamp not preserved: %v", loaded[0].Timestamp)
	}
}

func TestSqliteStorageLoadNonexistentSession(t *testing.T) {
	storage, err := NewSqliteInMemory()
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer storage.Close()

	loaded, err := storage.Load(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("expected empty slice, got %d suggestions", len(loaded))
	}
}

func TestSqliteStorageOverwrite(t *testing.T) {
	storage, err := NewSqliteInMemory()
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer storage.Close()

	ctx := context.Background()

	if err := storage.Save(ctx, "s", []model.Suggestion{{Text: "old-1"}, {Text: "old-2"}}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := storage.Save(ctx, "s", []model.Suggestion{{Text: "new"}}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := storage.Load(ctx, "s")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Text != "new" {
		t.Errorf("save should replace history, got %+v", loaded)
	}
}

func TestSqliteStorageDelete(t *testing.T) {
	storage, err := NewSqliteInMemory()
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer storage.Close()

	ctx := context.Background()

	if err := storage.Save(ctx, "s", []model.Suggestion{{Text: "t"}}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := storage.Delete(ctx, "s"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	exists, err := storage.Exists(ctx, "s")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("session should not exist after delete")
	}
}

func TestSqliteStorageListSessions(t *testing.T) {
	storage, err := NewSqliteInMemory()
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer storage.Close()

	ctx := context.Background()

	for _, id := range []string{"b-session", "a-session"} {
		if err := storage.Save(ctx, id, []model.Suggestion{{Text: "t"}}); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	sessions, err := storage.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	if sessions[0] != "a-session" || sessions[1] != "b-session" {
		t.Errorf("sessions not sorted: %v", sessions)
	}
}

func TestSqliteStorageFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "suggestions.db")

	storage, err := OpenSqlite(path)
	if err != nil {
		t.Fatalf("OpenSqlite failed: %v", err)
	}

	ctx := context.Background()
	if err := storage.Save(ctx, "s", []model.Suggestion{{Prefix: "p", Text: "persisted"}}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	storage.Close()

	reopened, err := OpenSqlite(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	loaded, err := reopened.Load(ctx, "s")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Text != "persisted" {
		t.Errorf("history did not survive reopen: %+v", loaded)
	}
}
