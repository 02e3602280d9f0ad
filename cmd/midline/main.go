// Package main provides the midline CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/richinex/midline/cli"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	backend string
	verbose bool
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "midline",
		Short: "Inline code completion with history matching and request reuse",
		Long: `A CLI tool for inline code completion at a cursor position.

Completions are answered from the cheapest tier available:
- History matching: fuzzy/similarity matching over past completions
- Request reuse: compatible in-flight generations are awaited, not duplicated
- Generation: fill-in-middle for FIM-capable models, hole-filling otherwise

An optional fast local model produces instant speculative previews that the
main model validates in the background.`,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&backend, "backend", "b", "", "Model backend (openai, anthropic, deepseek, gemini, ollama)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show verbose output")

	// Add commands
	rootCmd.AddCommand(completeCmd())
	rootCmd.AddCommand(backendsCmd())
	rootCmd.AddCommand(sessionsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func completeCmd() *cobra.Command {
	var languageID string
	var workspace string
	var sessionID string
	var dbPath string
	var timeout int

	cmd := &cobra.Command{
		Use:   "complete [file]",
		Short: "Complete code at the cursor marker in a file",
		Long: fmt.Sprintf(`Complete the code at the %s marker in a file.

The file is split at the marker into a prefix and suffix, and the completion
for the gap is printed to stdout. Use "-" to read from stdin.

With --session, completion history persists across invocations so repeated
queries at the same cursor position are answered without a model call.`, cli.CursorMarker),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.DefaultOptions()
			opts.Backend = backend
			opts.Verbose = verbose
			opts.Workspace = workspace
			opts.SessionID = sessionID
			if dbPath != "" {
				opts.DBPath = dbPath
			}
			opts.Timeout = time.Duration(timeout) * time.Second
			return cli.RunComplete(context.Background(), args[0], languageID, opts)
		},
	}

	cmd.Flags().StringVarP(&languageID, "language", "l", "", "Language identifier (go, python, typescript, ...)")
	cmd.Flags().StringVarP(&workspace, "workspace", "w", ".", "Workspace root for related-code retrieval")
	cmd.Flags().StringVar(&sessionID, "session", "", "Session ID for history persistence")
	cmd.Flags().StringVar(&dbPath, "db", "", "Database path for storage")
	cmd.Flags().IntVar(&timeout, "timeout", 30, "Timeout in seconds for the completion")

	return cmd
}

func backendsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List supported model backends",
		RunE: func(cmd *cobra.Command, args []string) error {
			cli.ListBackends()
			return nil
		},
	}
}

func sessionsCmd() *cobra.Command {
	var dbPath string
	var deleteID string

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List or delete persisted completion sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.DefaultOptions()
			if dbPath != "" {
				opts.DBPath = dbPath
			}
			if deleteID != "" {
				return cli.DeleteSession(context.Background(), deleteID, opts)
			}
			return cli.ListSessions(context.Background(), opts)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Database path for storage")
	cmd.Flags().StringVar(&deleteID, "delete", "", "Delete the named session instead of listing")

	return cmd
}
