// Package engine wires the completion pipeline together: history matching,
// in-flight request coordination, prompt strategy selection, optional
// speculative previews, and optional history persistence.
//
// Completion flow per keystroke: answer from history if possible, then from
// a compatible in-flight request, then dispatch a new generation tracked by
// the coordinator.

package engine

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/richinex/midline/internal/logger"
	"github.com/richinex/midline/llm"
	"github.com/richinex/midline/match"
	"github.com/richinex/midline/model"
	"github.com/richinex/midline/prompt"
	"github.com/richinex/midline/request"
	"github.com/richinex/midline/speculative"
	"github.com/richinex/midline/storage"
)

// ErrCancelled is returned when a pending generation was cancelled before
// its result could be applied.
var ErrCancelled = errors.New("generation cancelled")

// ErrEmptyCompletion is returned when the model produced no usable text.
var ErrEmptyCompletion = errors.New("model produced an empty completion")

// CompletionSource identifies which tier answered a completion request.
type CompletionSource string

const (
	// SourceHistory means the match engine answered from past completions.
	SourceHistory CompletionSource = "history"
	// SourceReused means a compatible in-flight request was awaited.
	SourceReused CompletionSource = "reused"
	// SourceGenerated means a fresh model call produced the text.
	SourceGenerated CompletionSource = "generated"
)

// Completion is one answered completion request.
type Completion struct {
	Text   string
	Source CompletionSource

	// Match carries the history-match details when Source is history.
	Match *model.MatchResult
}

// Engine owns one editing session's completion state.
type Engine struct {
	backend     llm.Backend
	strategy    prompt.Strategy
	matcher     *match.Engine
	history     *match.History
	coordinator *request.Coordinator
	bridge      *speculative.Bridge
	store       storage.SuggestionStorage
	sessionID   string
	logger      *log.Logger

	usageMu sync.Mutex
	usage   llm.Usage
}

// New creates an engine for one editing session. The retriever may be nil;
// it only feeds hole-filling prompts.
func New(backend llm.Backend, retriever prompt.ContextRetriever, matchConfig match.Config, historySize int) *Engine {
	return &Engine{
		backend:     backend,
		strategy:    prompt.NewStrategy(backend, retriever),
		matcher:     match.NewEngine(matchConfig),
		history:     match.NewHistory(historySize),
		coordinator: request.NewCoordinator(),
		logger:      logger.Default("engine"),
	}
}

// WithSpeculative attaches a speculative bridge for instant previews.
func (e *Engine) WithSpeculative(bridge *speculative.Bridge) *Engine {
	e.bridge = bridge
	return e
}

// WithStorage attaches persistence: the session's history is loaded now and
// saved on Close.
func (e *Engine) WithStorage(ctx context.Context, store storage.SuggestionStorage, sessionID string) (*Engine, error) {
	saved, err := store.Load(ctx, sessionID)
	if err != nil {
		return e, err
	}
	e.history.Replace(saved)
	e.store = store
	e.sessionID = sessionID
	return e, nil
}

// Bridge returns the attached speculative bridge, or nil.
func (e *Engine) Bridge() *speculative.Bridge {
	return e.bridge
}

// History returns the session's suggestion history.
func (e *Engine) History() *match.History {
	return e.history
}

// Usage returns the session's accumulated token usage and cost.
func (e *Engine) Usage() llm.Usage {
	e.usageMu.Lock()
	defer e.usageMu.Unlock()
	return e.usage
}

// Complete answers one debounced keystroke. Tiers, cheapest first: the
// history match engine, then a compatible in-flight request, then a fresh
// generation. A fresh generation also cancels requests the new cursor
// position has made obsolete.
func (e *Engine) Complete(ctx context.Context, cursor model.CursorContext) (*Completion, error) {
	if hit := e.matcher.FindBestMatch(cursor.Prefix, cursor.Suffix, e.history.Entries()); hit != nil {
		e.logger.Debug("history hit", "type", hit.Type, "confidence", hit.Confidence)
		return &Completion{Text: hit.Text, Source: SourceHistory, Match: hit}, nil
	}

	if pending := e.coordinator.FindReusable(cursor.Prefix, cursor.Suffix); pending != nil {
		completion, err := e.awaitReusable(ctx, pending, cursor)
		if err == nil {
			return completion, nil
		}
		if errors.Is(err, ctx.Err()) && ctx.Err() != nil {
			return nil, err
		}
		e.logger.Debug("reuse failed, generating fresh", "error", err)
	}

	e.coordinator.CancelObsolete(cursor.Prefix, cursor.Suffix)
	return e.generate(ctx, cursor)
}

// awaitReusable waits on a compatible pending request and trims the typed
// remainder off its result. A result the typed text has diverged from is
// discarded so the caller reissues.
func (e *Engine) awaitReusable(ctx context.Context, pending *request.Pending, cursor model.CursorContext) (*Completion, error) {
	result, err := pending.Wait(ctx)
	if err != nil {
		return nil, err
	}
	if pending.Cancelled() {
		return nil, ErrCancelled
	}

	typed := cursor.Prefix[len(pending.Prefix):]
	if !strings.HasPrefix(result.Text, typed) {
		return nil, ErrEmptyCompletion
	}
	text := result.Text[len(typed):]
	if text == "" {
		return nil, ErrEmptyCompletion
	}
	return &Completion{Text: text, Source: SourceReused}, nil
}

// generate dispatches a fresh model call tracked by the coordinator. The
// generation owns its own cancellable context so it outlives this caller's
// keystroke; only coordinator cancellation stops it.
func (e *Engine) generate(ctx context.Context, cursor model.CursorContext) (*Completion, error) {
	genCtx, cancel := context.WithCancel(context.Background())
	pending := request.NewPending(cursor.Prefix, cursor.Suffix, cancel)
	e.coordinator.Add(cursor.Prefix, cursor.Suffix, pending)

	go e.run(genCtx, pending, cursor)

	result, err := pending.Wait(ctx)
	if err != nil {
		return nil, err
	}
	if pending.Cancelled() {
		return nil, ErrCancelled
	}
	if result.Text == "" {
		return nil, ErrEmptyCompletion
	}
	return &Completion{Text: result.Text, Source: SourceGenerated}, nil
}

// run executes one generation to completion and resolves its pending
// request. Successful completions are recorded in history so later
// keystrokes can match them.
func (e *Engine) run(ctx context.Context, pending *request.Pending, cursor model.CursorContext) {
	defer e.coordinator.Remove(cursor.Prefix, cursor.Suffix)

	bundle, err := e.strategy.Prompts(ctx, cursor, e.backend.Model())
	if err != nil {
		pending.Resolve(nil, err)
		return
	}

	raw, usage, err := e.collect(ctx, bundle)
	e.addUsage(usage)
	if err != nil {
		pending.Resolve(nil, err)
		return
	}

	text := e.strategy.ParseResponse(raw, cursor.Prefix, cursor.Suffix)
	if strings.TrimSpace(text) != "" && !pending.Cancelled() {
		e.history.Add(cursor.Prefix, cursor.Suffix, text)
	}
	pending.Resolve(&model.MatchResult{Text: text}, nil)
}

// collect drains the strategy's chunk stream into one string.
func (e *Engine) collect(ctx context.Context, bundle model.PromptBundle) (string, *llm.Usage, error) {
	chunks := make(chan string, 16)
	done := make(chan struct{})

	var sb strings.Builder
	go func() {
		defer close(done)
		for chunk := range chunks {
			sb.WriteString(chunk)
		}
	}()

	usage, err := e.strategy.Generate(ctx, e.backend, bundle, chunks)
	close(chunks)
	<-done

	if err != nil {
		return "", usage, err
	}
	return sb.String(), usage, nil
}

func (e *Engine) addUsage(usage *llm.Usage) {
	if usage == nil {
		return
	}
	e.usageMu.Lock()
	e.usage.Add(usage)
	e.usageMu.Unlock()
}

// Clear cancels all in-flight requests and empties the session's state.
func (e *Engine) Clear() {
	e.coordinator.Clear()
	e.history.Clear()
	if e.bridge != nil {
		e.bridge.Clear()
	}
}

// Close cancels in-flight requests, stops the speculative bridge, and
// persists the session's history when storage is attached.
func (e *Engine) Close(ctx context.Context) error {
	e.coordinator.Clear()
	if e.bridge != nil {
		e.bridge.Close()
	}
	if e.store != nil {
		return e.store.Save(ctx, e.sessionID, e.history.Entries())
	}
	return nil
}
