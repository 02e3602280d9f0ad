// Package speculative overlays instant previews from a fast model while an
// authoritative model validates or refines them in the background.
//
// Information Hiding:
// - Fast-model invocation and latency measurement
// - Confidence heuristics
// - Cache bounds and eviction
// - Serial validation queue ordering

package speculative

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/richinex/midline/internal/logger"
	"github.com/richinex/midline/llm"
	"github.com/richinex/midline/model"
	"github.com/richinex/midline/prompt"
)

// Config bounds the bridge's cache and validation queue.
type Config struct {
	// MaxCacheSize bounds the speculative suggestion cache.
	MaxCacheSize int

	// QueueSize bounds the validation queue. A full queue drops new
	// validations; the preview is still cached and shown.
	QueueSize int
}

// DefaultConfig returns the standard bridge configuration.
func DefaultConfig() Config {
	return Config{
		MaxCacheSize: 100,
		QueueSize:    20,
	}
}

// Stats is a snapshot of the bridge's counters.
type Stats struct {
	Generated          uint64 `json:"generated"`
	Failed             uint64 `json:"failed"`
	CacheHits          uint64 `json:"cache_hits"`
	Validated          uint64 `json:"validated"`
	Refined            uint64 `json:"refined"`
	Rejected           uint64 `json:"rejected"`
	ValidationsDropped uint64 `json:"validations_dropped"`
	CacheSize          int    `json:"cache_size"`
	QueueDepth         int    `json:"queue_depth"`
}

// validationJob carries one suggestion through the serial validation queue.
type validationJob struct {
	id      string
	cursor  model.CursorContext
	preview string
}

// Bridge composes the fast-model call, the confidence heuristic, the
// bounded cache, and the single-consumer validation queue.
type Bridge struct {
	fast         llm.Backend
	main         llm.Backend
	mainStrategy prompt.Strategy
	cache        *cache
	queue        chan validationJob
	logger       *log.Logger

	mu    sync.Mutex
	stats Stats

	closeOnce sync.Once
	done      chan struct{}
}

// NewBridge creates a bridge and starts its validation consumer. The fast
// backend produces previews; the main backend validates them. The retriever
// may be nil.
func NewBridge(fast, main llm.Backend, retriever prompt.ContextRetriever, config Config) *Bridge {
	if config.MaxCacheSize <= 0 {
		config.MaxCacheSize = DefaultConfig().MaxCacheSize
	}
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultConfig().QueueSize
	}

	b := &Bridge{
		fast:         fast,
		main:         main,
		mainStrategy: prompt.NewStrategy(main, retriever),
		cache:        newCache(config.MaxCacheSize),
		queue:        make(chan validationJob, config.QueueSize),
		logger:       logger.Default("speculative"),
		done:         make(chan struct{}),
	}
	go b.validateLoop()
	return b
}

// GenerateSpeculativeCompletion produces an instant preview from the fast
// model. Failures and empty completions resolve to nil so the authoritative
// path proceeds alone (fail-open). Successful previews are cached and
// enqueued for background validation.
func (b *Bridge) GenerateSpeculativeCompletion(ctx context.Context, cursor model.CursorContext) *model.SpeculativeSuggestion {
	fim := prompt.NewFillInMiddle()
	bundle, err := fim.Prompts(ctx, cursor, b.fast.Model())
	if err != nil {
		b.count(func(s *Stats) { s.Failed++ })
		return nil
	}

	start := time.Now()
	raw, _, err := b.collect(ctx, func(chunks chan<- string) (*llm.Usage, error) {
		return fim.Generate(ctx, b.fast, bundle, chunks)
	})
	latency := time.Since(start)

	if err != nil {
		b.logger.Debug("fast model failed", "error", err)
		b.count(func(s *Stats) { s.Failed++ })
		return nil
	}

	completion := fim.ParseResponse(raw, cursor.Prefix, cursor.Suffix)
	if strings.TrimSpace(completion) == "" {
		b.count(func(s *Stats) { s.Failed++ })
		return nil
	}

	suggestion := &model.SpeculativeSuggestion{
		ID:         uuid.NewString(),
		Prefix:     cursor.Prefix,
		Suffix:     cursor.Suffix,
		Completion: completion,
		Confidence: scoreConfidence(completion, cursor.Prefix),
		Latency:    latency,
		Source:     model.SourceFast,
		Timestamp:  time.Now(),
		Status:     model.ValidationPending,
	}

	b.cache.put(suggestion)
	b.count(func(s *Stats) { s.Generated++ })

	select {
	case b.queue <- validationJob{id: suggestion.ID, cursor: cursor, preview: completion}:
	default:
		// Queue full: the preview stays usable, it just goes unvalidated
		b.count(func(s *Stats) { s.ValidationsDropped++ })
	}

	out := *suggestion
	return &out
}

// GetCachedSuggestion returns the cached suggestion for an exact cursor
// position, or nil. No fuzzy reuse happens here.
func (b *Bridge) GetCachedSuggestion(prefix, suffix string) *model.SpeculativeSuggestion {
	s := b.cache.get(prefix, suffix)
	if s != nil {
		b.count(func(st *Stats) { st.CacheHits++ })
	}
	return s
}

// GetSuggestionByID returns the cached suggestion with the given id, or
// nil. Callers use it to check whether a late refinement still matches the
// live cursor.
func (b *Bridge) GetSuggestionByID(id string) *model.SpeculativeSuggestion {
	return b.cache.getByID(id)
}

// GetStats returns a snapshot of the bridge's counters.
func (b *Bridge) GetStats() Stats {
	b.mu.Lock()
	stats := b.stats
	b.mu.Unlock()
	stats.CacheSize = b.cache.len()
	stats.QueueDepth = len(b.queue)
	return stats
}

// Clear resets the cache and drops queued validations. Validations already
// dispatched run to completion; their results land nowhere.
func (b *Bridge) Clear() {
	b.cache.clear()
	for {
		select {
		case <-b.queue:
		default:
			return
		}
	}
}

// Close stops the validation consumer. The bridge must not be used after.
func (b *Bridge) Close() {
	b.closeOnce.Do(func() {
		close(b.queue)
		<-b.done
	})
}

// validateLoop is the single validation consumer: strictly FIFO, one
// authoritative call in flight at a time.
func (b *Bridge) validateLoop() {
	defer close(b.done)
	for job := range b.queue {
		b.validate(job)
	}
}

// validate sends one preview to the authoritative model and records the
// outcome on the cached entry. Validation outlives the keystroke that
// spawned it, so it runs on a background context. Failures reject the
// entry without disturbing the already-displayed preview.
func (b *Bridge) validate(job validationJob) {
	ctx := context.Background()

	bundle, err := b.mainStrategy.Prompts(ctx, job.cursor, b.main.Model())
	if err != nil {
		b.finishValidation(job.id, model.ValidationRejected, "")
		return
	}

	raw, _, err := b.collect(ctx, func(chunks chan<- string) (*llm.Usage, error) {
		return b.mainStrategy.Generate(ctx, b.main, bundle, chunks)
	})
	if err != nil {
		b.logger.Debug("validation call failed", "id", job.id, "error", err)
		b.finishValidation(job.id, model.ValidationRejected, "")
		return
	}

	authoritative := b.mainStrategy.ParseResponse(raw, job.cursor.Prefix, job.cursor.Suffix)
	switch {
	case strings.TrimSpace(authoritative) == "":
		b.finishValidation(job.id, model.ValidationRejected, "")
	case strings.TrimSpace(authoritative) == strings.TrimSpace(job.preview):
		b.finishValidation(job.id, model.ValidationValidated, "")
	default:
		b.finishValidation(job.id, model.ValidationRefined, authoritative)
	}
}

func (b *Bridge) finishValidation(id string, status model.ValidationStatus, refined string) {
	if !b.cache.setValidation(id, status, refined) {
		return
	}
	b.count(func(s *Stats) {
		switch status {
		case model.ValidationValidated:
			s.Validated++
		case model.ValidationRefined:
			s.Refined++
		case model.ValidationRejected:
			s.Rejected++
		}
	})
}

func (b *Bridge) count(update func(*Stats)) {
	b.mu.Lock()
	update(&b.stats)
	b.mu.Unlock()
}

// collect drains a chunk stream into one string.
func (b *Bridge) collect(ctx context.Context, generate func(chunks chan<- string) (*llm.Usage, error)) (string, *llm.Usage, error) {
	chunks := make(chan string, 16)
	collected := make(chan struct{})

	var sb strings.Builder
	go func() {
		defer close(collected)
		for chunk := range chunks {
			sb.WriteString(chunk)
		}
	}()

	usage, err := generate(chunks)
	close(chunks)
	<-collected

	if err != nil {
		return "", usage, err
	}
	return sb.String(), usage, nil
}
