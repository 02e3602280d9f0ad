// Command execution for CLI commands.
//
// Information Hiding:
// - Backend and engine setup hidden
// - Cursor-marker input parsing hidden
// - Output formatting hidden

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/richinex/midline/config"
	"github.com/richinex/midline/contextual"
	"github.com/richinex/midline/engine"
	"github.com/richinex/midline/internal/logger"
	"github.com/richinex/midline/llm"
	"github.com/richinex/midline/model"
	"github.com/richinex/midline/speculative"
	"github.com/richinex/midline/storage"
)

// CursorMarker splits the input into prefix and suffix.
const CursorMarker = "<|cursor|>"

// defaultDBPath is the database path for session persistence.
const defaultDBPath = ".midline/midline.db"

// Options holds CLI execution options.
type Options struct {
	Backend   string
	Workspace string
	SessionID string
	DBPath    string
	Timeout   time.Duration
	Verbose   bool
}

// DefaultOptions returns default CLI options.
func DefaultOptions() Options {
	return Options{
		Workspace: ".",
		DBPath:    defaultDBPath,
		Timeout:   30 * time.Second,
	}
}

// RunComplete completes the code in the given file at the cursor marker and
// prints the completion to stdout. A path of "-" reads stdin.
func RunComplete(ctx context.Context, path, languageID string, opts Options) error {
	log := logger.Default("midline")

	cursor, err := readCursorInput(path, languageID)
	if err != nil {
		return err
	}

	settings, err := config.New(opts.Backend)
	if err != nil {
		return err
	}

	backend, err := createBackend(settings.LLM.Backend, settings.LLM.Model, settings)
	if err != nil {
		return err
	}

	retriever := contextual.NewWorkspaceRetriever(opts.Workspace)
	eng := engine.New(backend, retriever, settings.Match, settings.HistorySize)

	if settings.LLM.FastBackend != "" {
		fast, err := createBackend(settings.LLM.FastBackend, settings.LLM.FastModel, settings)
		if err != nil {
			return fmt.Errorf("fast backend: %w", err)
		}
		eng = eng.WithSpeculative(speculative.NewBridge(fast, backend, retriever, settings.Speculative))
	}

	if opts.SessionID != "" {
		store, err := storage.OpenSqlite(opts.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer store.Close()
		if eng, err = eng.WithStorage(ctx, store, opts.SessionID); err != nil {
			return fmt.Errorf("failed to load session: %w", err)
		}
	}

	runCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	// Instant low-confidence preview while the main model works
	if bridge := eng.Bridge(); bridge != nil {
		if preview := bridge.GenerateSpeculativeCompletion(runCtx, cursor); preview != nil {
			fmt.Fprintf(os.Stderr, "preview [%.2f, %s]:\n%s\n\n",
				preview.Confidence, preview.Latency.Round(time.Millisecond), preview.Completion)
		}
	}

	completion, err := eng.Complete(runCtx, cursor)
	if err != nil {
		eng.Close(ctx)
		return fmt.Errorf("completion failed: %w", err)
	}

	fmt.Println(completion.Text)

	if opts.Verbose {
		log.Info("completion served", "source", completion.Source)
		if completion.Match != nil {
			log.Info("history match",
				"type", completion.Match.Type,
				"confidence", completion.Match.Confidence)
		}
		usage := eng.Usage()
		log.Info("usage",
			"input_tokens", usage.InputTokens,
			"output_tokens", usage.OutputTokens,
			"cache_read_tokens", usage.CacheReadTokens,
			"cost_usd", fmt.Sprintf("%.6f", usage.Cost))
		if bridge := eng.Bridge(); bridge != nil {
			stats := bridge.GetStats()
			log.Info("speculative",
				"generated", stats.Generated,
				"validated", stats.Validated,
				"refined", stats.Refined,
				"rejected", stats.Rejected)
		}
	}

	return eng.Close(ctx)
}

// ListSessions prints the session IDs stored in the database.
func ListSessions(ctx context.Context, opts Options) error {
	store, err := storage.OpenSqlite(opts.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	sessions, err := store.ListSessions(ctx)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("No saved sessions.")
		return nil
	}
	for _, id := range sessions {
		fmt.Println(id)
	}
	return nil
}

// DeleteSession removes a stored session and its history.
func DeleteSession(ctx context.Context, sessionID string, opts Options) error {
	store, err := storage.OpenSqlite(opts.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	exists, err := store.Exists(ctx, sessionID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("no session named %q", sessionID)
	}
	if err := store.Delete(ctx, sessionID); err != nil {
		return err
	}
	fmt.Printf("Deleted session '%s'\n", sessionID)
	return nil
}

// readCursorInput loads a file (or stdin for "-") and splits it at the
// cursor marker.
func readCursorInput(path, languageID string) (model.CursorContext, error) {
	var content []byte
	var err error

	if path == "-" {
		content, err = io.ReadAll(os.Stdin)
	} else {
		content, err = os.ReadFile(path)
	}
	if err != nil {
		return model.CursorContext{}, fmt.Errorf("failed to read input: %w", err)
	}

	prefix, suffix, found := strings.Cut(string(content), CursorMarker)
	if !found {
		return model.CursorContext{}, fmt.Errorf("input has no %s marker", CursorMarker)
	}

	filePath := path
	if filePath == "-" {
		filePath = ""
	}
	return model.CursorContext{
		Prefix:     prefix,
		Suffix:     suffix,
		LanguageID: languageID,
		FilePath:   filePath,
	}, nil
}

// createBackend builds a backend from its name and model using the shared
// token and temperature settings.
func createBackend(name, modelName string, settings config.Settings) (llm.Backend, error) {
	backendType, err := llm.ParseBackendType(name)
	if err != nil {
		return nil, err
	}

	apiKey, err := config.APIKeyFor(name)
	if err != nil {
		return nil, err
	}

	builder := backendType.
		Model(modelName).
		MaxTokens(settings.LLM.MaxTokens).
		Temperature(float32(settings.LLM.Temperature))
	if backendType == llm.BackendOllama && settings.LLM.OllamaBaseURL != "" {
		builder = builder.BaseURL(settings.LLM.OllamaBaseURL)
	}
	return builder.APIKey(apiKey)
}
