// Package config provides application settings loaded from environment variables.
//
// Settings are created via New() which handles:
// - Environment variable parsing with validation
// - Default value application
// - Backend-specific configuration lookup

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/richinex/midline/match"
	"github.com/richinex/midline/speculative"
)

// Settings holds all application configuration.
type Settings struct {
	LLM         LLMConfig
	Match       match.Config
	Speculative speculative.Config
	HistorySize int
}

// LLMConfig holds model backend configuration.
type LLMConfig struct {
	// Backend and Model identify the authoritative model.
	Backend string
	Model   string

	// FastBackend and FastModel identify the speculative preview model.
	// Empty FastBackend disables the speculative path.
	FastBackend string
	FastModel   string

	MaxTokens     uint32
	Temperature   float64
	OllamaBaseURL string
}

// backendInfo holds configuration for a specific model backend.
type backendInfo struct {
	modelEnv     string
	defaultModel string
	apiKeyEnv    string
}

// Supported backends and their configuration.
var backends = map[string]backendInfo{
	"openai":    {"OPENAI_MODEL", "gpt-4o", "OPENAI_API_KEY"},
	"anthropic": {"ANTHROPIC_MODEL", "claude-sonnet-4-20250514", "ANTHROPIC_API_KEY"},
	"deepseek":  {"DEEPSEEK_MODEL", "deepseek-chat", "DEEPSEEK_API_KEY"},
	"gemini":    {"GEMINI_MODEL", "gemini-2.5-flash", "GEMINI_API_KEY"},
	"ollama":    {"OLLAMA_MODEL", "qwen2.5-coder:1.5b", ""},
}

// Backend aliases map to canonical names.
var backendAliases = map[string]string{
	"claude": "anthropic",
	"google": "gemini",
	"gpt":    "openai",
	"local":  "ollama",
}

// New creates settings for the specified backend, loading values from
// environment variables. Returns an error if the backend is unknown or
// environment variables contain invalid values.
func New(backend string) (Settings, error) {
	backend = normalizeBackend(backend)

	info, err := getBackendInfo(backend)
	if err != nil {
		return Settings{}, err
	}

	maxTokens, err := getEnvUint32("LLM_MAX_TOKENS", 256)
	if err != nil {
		return Settings{}, err
	}

	temperature, err := getEnvFloat64("LLM_TEMPERATURE", 0.2)
	if err != nil {
		return Settings{}, err
	}

	historySize, err := getEnvInt("MIDLINE_HISTORY_SIZE", match.DefaultHistorySize)
	if err != nil {
		return Settings{}, err
	}

	matchConfig, err := loadMatchConfig()
	if err != nil {
		return Settings{}, err
	}

	speculativeConfig, err := loadSpeculativeConfig()
	if err != nil {
		return Settings{}, err
	}

	model := os.Getenv(info.modelEnv)
	if model == "" {
		model = info.defaultModel
	}

	fastBackend := normalizeBackend(os.Getenv("MIDLINE_FAST_BACKEND"))
	fastModel := ""
	if fastBackend != "" {
		fastInfo, err := getBackendInfo(fastBackend)
		if err != nil {
			return Settings{}, fmt.Errorf("fast backend: %w", err)
		}
		fastModel = os.Getenv("MIDLINE_FAST_MODEL")
		if fastModel == "" {
			fastModel = fastInfo.defaultModel
		}
	}

	return Settings{
		LLM: LLMConfig{
			Backend:       backend,
			Model:         model,
			FastBackend:   fastBackend,
			FastModel:     fastModel,
			MaxTokens:     maxTokens,
			Temperature:   temperature,
			OllamaBaseURL: os.Getenv("OLLAMA_BASE_URL"),
		},
		Match:       matchConfig,
		Speculative: speculativeConfig,
		HistorySize: historySize,
	}, nil
}

// MustNew creates settings for the specified backend.
// Panics if the backend is unknown or environment variables are invalid.
// Use this only when configuration errors should be fatal.
func MustNew(backend string) Settings {
	settings, err := New(backend)
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return settings
}

// loadMatchConfig reads the match engine thresholds from the environment,
// starting from the engine defaults.
func loadMatchConfig() (match.Config, error) {
	config := match.DefaultConfig()

	var err error
	if config.MinSimilarityScore, err = getEnvFloat64("MATCH_MIN_SIMILARITY", config.MinSimilarityScore); err != nil {
		return config, err
	}
	if config.MaxEditDistance, err = getEnvInt("MATCH_MAX_EDIT_DISTANCE", config.MaxEditDistance); err != nil {
		return config, err
	}
	if config.MultiLineThreshold, err = getEnvFloat64("MATCH_MULTILINE_THRESHOLD", config.MultiLineThreshold); err != nil {
		return config, err
	}
	if config.ContextThreshold, err = getEnvFloat64("MATCH_CONTEXT_THRESHOLD", config.ContextThreshold); err != nil {
		return config, err
	}
	if config.EnableFuzzy, err = getEnvBool("MATCH_ENABLE_FUZZY", config.EnableFuzzy); err != nil {
		return config, err
	}
	if config.EnableMultiLine, err = getEnvBool("MATCH_ENABLE_MULTILINE", config.EnableMultiLine); err != nil {
		return config, err
	}
	if config.EnableContext, err = getEnvBool("MATCH_ENABLE_CONTEXT", config.EnableContext); err != nil {
		return config, err
	}
	return config, nil
}

// loadSpeculativeConfig reads the bridge bounds from the environment.
func loadSpeculativeConfig() (speculative.Config, error) {
	config := speculative.DefaultConfig()

	var err error
	if config.MaxCacheSize, err = getEnvInt("SPECULATIVE_CACHE_SIZE", config.MaxCacheSize); err != nil {
		return config, err
	}
	if config.QueueSize, err = getEnvInt("SPECULATIVE_QUEUE_SIZE", config.QueueSize); err != nil {
		return config, err
	}
	return config, nil
}

// normalizeBackend converts backend aliases to canonical names.
func normalizeBackend(backend string) string {
	backend = strings.ToLower(backend)
	if canonical, ok := backendAliases[backend]; ok {
		return canonical
	}
	return backend
}

// getBackendInfo returns configuration for a backend.
func getBackendInfo(backend string) (backendInfo, error) {
	info, ok := backends[backend]
	if !ok {
		return backendInfo{}, fmt.Errorf("unknown backend: %q", backend)
	}
	return info, nil
}

// APIKeyFor returns the API key for a backend from environment variables.
// Backends without a key requirement return an empty string.
func APIKeyFor(backend string) (string, error) {
	backend = normalizeBackend(backend)

	info, err := getBackendInfo(backend)
	if err != nil {
		return "", err
	}
	if info.apiKeyEnv == "" {
		return "", nil
	}

	key := os.Getenv(info.apiKeyEnv)
	if key == "" {
		return "", fmt.Errorf("%s environment variable not set", info.apiKeyEnv)
	}
	return key, nil
}

// ModelFor returns the model for a backend, checking environment first.
func ModelFor(backend string) (string, error) {
	backend = normalizeBackend(backend)

	info, err := getBackendInfo(backend)
	if err != nil {
		return "", err
	}

	if val := os.Getenv(info.modelEnv); val != "" {
		return val, nil
	}
	return info.defaultModel, nil
}

// SupportedBackends returns the list of supported backend names.
func SupportedBackends() []string {
	result := make([]string, 0, len(backends))
	for name := range backends {
		result = append(result, name)
	}
	return result
}

// Environment variable helpers with proper error handling

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return i, nil
}

func getEnvUint32(key string, defaultVal uint32) (uint32, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.ParseUint(val, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return uint32(i), nil
}

func getEnvFloat64(key string, defaultVal float64) (float64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return f, nil
}

func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return b, nil
}
