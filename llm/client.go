// Client - convenience wrapper that collects streamed chunks into a string.

package llm

import (
	"context"
	"strings"
)

// Client wraps a Backend with collect-all helpers for callers that want the
// whole completion rather than a stream.
type Client struct {
	backend Backend
}

// NewClient creates a client around a backend.
func NewClient(backend Backend) *Client {
	return &Client{backend: backend}
}

// Backend returns the wrapped backend.
func (c *Client) Backend() Backend {
	return c.backend
}

// FillInMiddle runs a fill-in-middle completion and returns the collected text.
func (c *Client) FillInMiddle(ctx context.Context, prefix, suffix string) (string, *Usage, error) {
	return collect(ctx, func(chunks chan<- string) (*Usage, error) {
		return c.backend.GenerateFillInMiddle(ctx, prefix, suffix, chunks)
	})
}

// Structured runs a structured chat completion and returns the collected text.
func (c *Client) Structured(ctx context.Context, systemPrompt, userPrompt string) (string, *Usage, error) {
	return collect(ctx, func(chunks chan<- string) (*Usage, error) {
		return c.backend.GenerateStructured(ctx, systemPrompt, userPrompt, chunks)
	})
}

// collect drains the chunk channel into a builder while the generate
// function runs, then returns the assembled text.
func collect(ctx context.Context, generate func(chunks chan<- string) (*Usage, error)) (string, *Usage, error) {
	chunks := make(chan string, 16)
	done := make(chan struct{})

	var sb strings.Builder
	go func() {
		defer close(done)
		for chunk := range chunks {
			sb.WriteString(chunk)
		}
	}()

	usage, err := generate(chunks)
	close(chunks)
	<-done

	if err != nil {
		return "", usage, err
	}
	return sb.String(), usage, nil
}
