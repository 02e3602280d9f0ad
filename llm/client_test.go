package llm

import (
	"context"
	"errors"
	"testing"
)

// chunkedBackend streams its output in fixed chunks.
type chunkedBackend struct {
	chunks []string
	err    error
}

func (c *chunkedBackend) Name() string               { return "chunked" }
func (c *chunkedBackend) Model() string              { return "chunked-model" }
func (c *chunkedBackend) SupportsFillInMiddle() bool { return true }

func (c *chunkedBackend) GenerateFillInMiddle(ctx context.Context, prefix, suffix string, chunks chan<- string) (*Usage, error) {
	if c.err != nil {
		return nil, c.err
	}
	for _, chunk := range c.chunks {
		select {
		case chunks <- chunk:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return &Usage{InputTokens: 3, OutputTokens: uint32(len(c.chunks))}, nil
}

func (c *chunkedBackend) GenerateStructured(ctx context.Context, systemPrompt, userPrompt string, chunks chan<- string) (*Usage, error) {
	return c.GenerateFillInMiddle(ctx, "", "", chunks)
}

var _ Backend = (*chunkedBackend)(nil)

func TestClientFillInMiddleCollects(t *testing.T) {
	client := NewClient(&chunkedBackend{chunks: []string{"return ", "count"}})

	text, usage, err := client.FillInMiddle(context.Background(), "p", "s")
	if err != nil {
		t.Fatalf("FillInMiddle failed: %v", err)
	}
	if text != "return count" {
		t.Errorf("text = %q, want collected chunks", text)
	}
	if usage == nil || usage.OutputTokens != 2 {
		t.Errorf("usage = %+v", usage)
	}
}

func TestClientStructuredError(t *testing.T) {
	wantErr := errors.New("rate limited")
	client := NewClient(&chunkedBackend{err: wantErr})

	_, _, err := client.Structured(context.Background(), "sys", "user")
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want backend error", err)
	}
}
