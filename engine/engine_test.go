package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/richinex/midline/llm"
	"github.com/richinex/midline/match"
	"github.com/richinex/midline/model"
	"github.com/richinex/midline/storage"
)

// stubBackend serves fixed fill-in-middle completions and counts calls.
type stubBackend struct {
	output string
	err    error
	delay  time.Duration
	calls  atomic.Int32
}

func (s *stubBackend) Name() string               { return "stub" }
func (s *stubBackend) Model() string              { return "stub-model" }
func (s *stubBackend) SupportsFillInMiddle() bool { return true }

func (s *stubBackend) GenerateFillInMiddle(ctx context.Context, prefix, suffix string, chunks chan<- string) (*llm.Usage, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	if s.output != "" {
		select {
		case chunks <- s.output:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return &llm.Usage{Cost: 0.001, InputTokens: 10, OutputTokens: 5}, nil
}

func (s *stubBackend) GenerateStructured(ctx context.Context, systemPrompt, userPrompt string, chunks chan<- string) (*llm.Usage, error) {
	return s.GenerateFillInMiddle(ctx, "", "", chunks)
}

var _ llm.Backend = (*stubBackend)(nil)

func newTestEngine(backend llm.Backend) *Engine {
	return New(backend, nil, match.DefaultConfig(), 50)
}

func TestCompleteGenerates(t *testing.T) {
	backend := &stubBackend{output: "return count"}
	e := newTestEngine(backend)
	defer e.Close(context.Background())

	completion, err := e.Complete(context.Background(), model.CursorContext{Prefix: "func f() int {\n\t", Suffix: "\n}"})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if completion.Source != SourceGenerated {
		t.Errorf("Source = %v, want generated", completion.Source)
	}
	if completion.Text != "return count" {
		t.Errorf("Text = %q", completion.Text)
	}

	usage := e.Usage()
	if usage.OutputTokens != 5 || usage.Cost == 0 {
		t.Errorf("usage not accumulated: %+v", usage)
	}
}

func TestCompleteHistoryHit(t *testing.T) {
	backend := &stubBackend{output: "return count"}
	e := newTestEngine(backend)
	defer e.Close(context.Background())

	cursor := model.CursorContext{Prefix: "func f() int {\n\t", Suffix: "\n}"}
	if _, err := e.Complete(context.Background(), cursor); err != nil {
		t.Fatalf("first Complete failed: %v", err)
	}

	completion, err := e.Complete(context.Background(), cursor)
	if err != nil {
		t.Fatalf("second Complete failed: %v", err)
	}
	if completion.Source != SourceHistory {
		t.Errorf("Source = %v, want history", completion.Source)
	}
	if completion.Match == nil || completion.Match.Type != model.MatchExact {
		t.Errorf("Match = %+v, want exact", completion.Match)
	}
	if got := backend.calls.Load(); got != 1 {
		t.Errorf("backend called %d times, history should absorb the second", got)
	}
}

func TestCompletePartialTypingFromHistory(t *testing.T) {
	backend := &stubBackend{output: "return count"}
	e := newTestEngine(backend)
	defer e.Close(context.Background())

	if _, err := e.Complete(context.Background(), model.CursorContext{Prefix: "value := ", Suffix: ";"}); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	// User typed the first characters of the previous completion
	completion, err := e.Complete(context.Background(), model.CursorContext{Prefix: "value := ret", Suffix: ";"})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if completion.Source != SourceHistory {
		t.Fatalf("Source = %v, want history", completion.Source)
	}
	if completion.Text != "urn count" {
		t.Errorf("Text = %q, want remainder after typed chars", completion.Text)
	}
}

func TestCompleteEmptyOutput(t *testing.T) {
	backend := &stubBackend{output: ""}
	e := newTestEngine(backend)
	defer e.Close(context.Background())

	_, err := e.Complete(context.Background(), model.CursorContext{Prefix: "p", Suffix: "s"})
	if !errors.Is(err, ErrEmptyCompletion) {
		t.Fatalf("err = %v, want ErrEmptyCompletion", err)
	}
	if e.History().Len() != 0 {
		t.Error("empty completions must not enter history")
	}
}

func TestCompleteBackendError(t *testing.T) {
	backend := &stubBackend{err: errors.New("rate limited")}
	e := newTestEngine(backend)
	defer e.Close(context.Background())

	if _, err := e.Complete(context.Background(), model.CursorContext{Prefix: "p"}); err == nil {
		t.Fatal("expected backend error to propagate")
	}
}

func TestCompleteCallerTimeout(t *testing.T) {
	backend := &stubBackend{output: "slow result", delay: 200 * time.Millisecond}
	e := newTestEngine(backend)
	defer e.Close(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := e.Complete(ctx, model.CursorContext{Prefix: "p", Suffix: "s"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}

	// The generation keeps running and lands in history for the next query
	time.Sleep(300 * time.Millisecond)
	if e.History().Len() != 1 {
		t.Error("abandoned generation should still be recorded")
	}
}

func TestCompleteStoragePersistence(t *testing.T) {
	store := storage.NewInMemoryStorage()
	ctx := context.Background()

	backend := &stubBackend{output: "return count"}
	e, err := newTestEngine(backend).WithStorage(ctx, store, "session-1")
	if err != nil {
		t.Fatalf("WithStorage failed: %v", err)
	}

	if _, err := e.Complete(ctx, model.CursorContext{Prefix: "p", Suffix: "s"}); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if err := e.Close(ctx); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// A new engine on the same session answers from the warmed history
	fresh := &stubBackend{output: "should not be called"}
	e2, err := newTestEngine(fresh).WithStorage(ctx, store, "session-1")
	if err != nil {
		t.Fatalf("WithStorage failed: %v", err)
	}
	defer e2.Close(ctx)

	completion, err := e2.Complete(ctx, model.CursorContext{Prefix: "p", Suffix: "s"})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if completion.Source != SourceHistory {
		t.Errorf("Source = %v, want history from persisted session", completion.Source)
	}
	if fresh.calls.Load() != 0 {
		t.Error("persisted history should absorb the query")
	}
}

func TestClear(t *testing.T) {
	backend := &stubBackend{output: "text here"}
	e := newTestEngine(backend)
	defer e.Close(context.Background())

	if _, err := e.Complete(context.Background(), model.CursorContext{Prefix: "p", Suffix: "s"}); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	e.Clear()
	if e.History().Len() != 0 {
		t.Error("Clear should empty history")
	}
}
