package llm

import "testing"

func TestParseBackendType(t *testing.T) {
	tests := []struct {
		input   string
		want    BackendType
		wantErr bool
	}{
		{"openai", BackendOpenAI, false},
		{"OpenAI", BackendOpenAI, false},
		{"gpt", BackendOpenAI, false},
		{"anthropic", BackendAnthropic, false},
		{"claude", BackendAnthropic, false},
		{"deepseek", BackendDeepSeek, false},
		{"gemini", BackendGemini, false},
		{"google", BackendGemini, false},
		{"ollama", BackendOllama, false},
		{"local", BackendOllama, false},
		{"unknown", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseBackendType(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseBackendType(%q) expected error, got %v", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseBackendType(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseBackendType(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestBackendTypeString(t *testing.T) {
	tests := []struct {
		backend BackendType
		want    string
	}{
		{BackendOpenAI, "openai"},
		{BackendAnthropic, "anthropic"},
		{BackendDeepSeek, "deepseek"},
		{BackendGemini, "gemini"},
		{BackendOllama, "ollama"},
		{BackendType(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.backend.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestBackendTypeDefaults(t *testing.T) {
	for _, backend := range []BackendType{BackendOpenAI, BackendAnthropic, BackendDeepSeek, BackendGemini, BackendOllama} {
		if backend.DefaultModel() == "" {
			t.Errorf("%v has no default model", backend)
		}
	}

	if BackendOllama.EnvVar() != "" {
		t.Errorf("ollama should not require an API key env var")
	}
	if BackendOpenAI.EnvVar() != "OPENAI_API_KEY" {
		t.Errorf("EnvVar() = %q, want OPENAI_API_KEY", BackendOpenAI.EnvVar())
	}
}

func TestModelSupportsFIM(t *testing.T) {
	tests := []struct {
		model string
		want  bool
	}{
		{"deepseek-chat", true},
		{"deepseek-coder", true},
		{"codellama:7b-code", true},
		{"starcoder2:3b", true},
		{"qwen2.5-coder:1.5b", true},
		{"codegemma:2b", true},
		{"gpt-3.5-turbo-instruct", true},
		{"gpt-4o", false},
		{"claude-sonnet-4-20250514", false},
		{"gemini-2.5-flash", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ModelSupportsFIM(tt.model); got != tt.want {
			t.Errorf("ModelSupportsFIM(%q) = %v, want %v", tt.model, got, tt.want)
		}
	}
}

func TestBuilderDefaults(t *testing.T) {
	backend, err := BackendOllama.FromEnv()
	if err != nil {
		t.Fatalf("ollama FromEnv failed: %v", err)
	}
	if backend.Name() != "ollama" {
		t.Errorf("Name() = %q, want ollama", backend.Name())
	}
	if backend.Model() != ModelOllamaQwenCoder {
		t.Errorf("Model() = %q, want %q", backend.Model(), ModelOllamaQwenCoder)
	}
	if !backend.SupportsFillInMiddle() {
		t.Errorf("ollama backend should support fill-in-middle")
	}
}

func TestBuilderCustomModel(t *testing.T) {
	backend, err := BackendOpenAI.Model(ModelOpenAIInstruct).APIKey("test-key")
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if backend.Model() != ModelOpenAIInstruct {
		t.Errorf("Model() = %q, want %q", backend.Model(), ModelOpenAIInstruct)
	}
	if !backend.SupportsFillInMiddle() {
		t.Errorf("instruct model should support fill-in-middle")
	}

	chat, err := BackendOpenAI.APIKey("test-key")
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if chat.SupportsFillInMiddle() {
		t.Errorf("gpt-4o should not support fill-in-middle")
	}
}
