package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/clausegen/internal/model"
)

// NewProvider creates the provider named by config.Provider
func NewProvider(ctx context.Context, config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai", "":
		return NewOpenAIProvider(config)

	case "anthropic", "claude":
		return NewAnthropicProvider(config)

	case "gemini", "google":
		return NewGeminiProvider(ctx, config)

	case "ollama":
		return NewOllamaProvider(config)

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, anthropic, gemini, ollama)", config.Provider)
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(modelConfig model.LLMConfig) Config {
	return Config{
		Provider:    modelConfig.Provider,
		Model:       modelConfig.Model,
		APIKey:      modelConfig.APIKey,
		BaseURL:     modelConfig.BaseURL,
		Timeout:     modelConfig.Timeout,
		MaxTokens:   modelConfig.MaxTokens,
		Temperature: modelConfig.Temperature,
		HTTPProxy:   modelConfig.HTTPProxy,
		HTTPSProxy:  modelConfig.HTTPSProxy,
		NoProxy:     modelConfig.NoProxy,
	}
}

// ApplyEnv fills the API key, base URL and model from the provider's
// conventional environment variables when the config leaves them empty
func ApplyEnv(config Config) Config {
	return applyEnv(config, os.Getenv)
}

func applyEnv(config Config, getenv func(string) string) Config {
	var keyVars []string
	var modelVar, baseURLVar string

	switch strings.ToLower(config.Provider) {
	case "openai", "":
		keyVars, modelVar, baseURLVar = []string{"OPENAI_API_KEY"}, "OPENAI_MODEL", "OPENAI_BASE_URL"
	case "anthropic", "claude":
		keyVars, modelVar = []string{"ANTHROPIC_API_KEY"}, "ANTHROPIC_MODEL"
	case "gemini", "google":
		keyVars, modelVar = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}, "GEMINI_MODEL"
	case "ollama":
		baseURLVar, modelVar = "OLLAMA_BASE_URL", "OLLAMA_MODEL"
	}

	if config.APIKey == "" {
		for _, name := range keyVars {
			if v := getenv(name); v != "" {
				config.APIKey = v
				break
			}
		}
	}
	if modelVar != "" {
		if v := getenv(modelVar); v != "" {
			config.Model = v
		}
	}
	if config.BaseURL == "" && baseURLVar != "" {
		config.BaseURL = getenv(baseURLVar)
	}
	return config
}
