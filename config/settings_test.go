package config

import (
	"os"
	"testing"
)

func TestNewValidBackend(t *testing.T) {
	settings, err := New("openai")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.LLM.Backend != "openai" {
		t.Errorf("expected backend 'openai', got %q", settings.LLM.Backend)
	}
	if settings.HistorySize <= 0 {
		t.Errorf("expected positive history size, got %d", settings.HistorySize)
	}
	if settings.Match.MinSimilarityScore != 0.7 {
		t.Errorf("expected default min similarity 0.7, got %v", settings.Match.MinSimilarityScore)
	}
	if settings.Speculative.MaxCacheSize != 100 {
		t.Errorf("expected default cache size 100, got %d", settings.Speculative.MaxCacheSize)
	}
}

func TestNewWithAlias(t *testing.T) {
	settings, err := New("claude")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.LLM.Backend != "anthropic" {
		t.Errorf("expected backend 'anthropic' (normalized from 'claude'), got %q", settings.LLM.Backend)
	}
}

func TestNewUnknownBackend(t *testing.T) {
	_, err := New("unknown_backend")
	if err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestNewWithFastBackend(t *testing.T) {
	original := os.Getenv("MIDLINE_FAST_BACKEND")
	os.Setenv("MIDLINE_FAST_BACKEND", "local")
	defer os.Setenv("MIDLINE_FAST_BACKEND", original)

	settings, err := New("anthropic")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.LLM.FastBackend != "ollama" {
		t.Errorf("expected fast backend 'ollama', got %q", settings.LLM.FastBackend)
	}
	if settings.LLM.FastModel == "" {
		t.Error("expected default fast model")
	}
}

func TestNewMatchOverrides(t *testing.T) {
	original := os.Getenv("MATCH_MAX_EDIT_DISTANCE")
	os.Setenv("MATCH_MAX_EDIT_DISTANCE", "5")
	defer os.Setenv("MATCH_MAX_EDIT_DISTANCE", original)

	settings, err := New("openai")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.Match.MaxEditDistance != 5 {
		t.Errorf("expected edit distance 5, got %d", settings.Match.MaxEditDistance)
	}
}

func TestAPIKeyForValidBackend(t *testing.T) {
	original := os.Getenv("OPENAI_API_KEY")
	os.Setenv("OPENAI_API_KEY", "test-key")
	defer os.Setenv("OPENAI_API_KEY", original)

	key, err := APIKeyFor("openai")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "test-key" {
		t.Errorf("expected 'test-key', got %q", key)
	}
}

func TestAPIKeyForMissing(t *testing.T) {
	original := os.Getenv("OPENAI_API_KEY")
	os.Unsetenv("OPENAI_API_KEY")
	defer os.Setenv("OPENAI_API_KEY", original)

	_, err := APIKeyFor("openai")
	if err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestAPIKeyForOllama(t *testing.T) {
	key, err := APIKeyFor("ollama")
	if err != nil {
		t.Fatalf("ollama needs no key, got error: %v", err)
	}
	if key != "" {
		t.Errorf("expected empty key for ollama, got %q", key)
	}
}

func TestAPIKeyForUnknownBackend(t *testing.T) {
	_, err := APIKeyFor("unknown")
	if err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestModelFor(t *testing.T) {
	model, err := ModelFor("openai")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if model == "" {
		t.Error("expected non-empty model")
	}
}

func TestNewWithInvalidEnvVar(t *testing.T) {
	original := os.Getenv("LLM_MAX_TOKENS")
	os.Setenv("LLM_MAX_TOKENS", "not-a-number")
	defer os.Setenv("LLM_MAX_TOKENS", original)

	_, err := New("openai")
	if err == nil {
		t.Error("expected error for invalid LLM_MAX_TOKENS")
	}
}

func TestMustNewPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for unknown backend")
		}
	}()
	MustNew("unknown_backend")
}

func TestSupportedBackends(t *testing.T) {
	names := SupportedBackends()
	if len(names) == 0 {
		t.Error("expected at least one supported backend")
	}
}
