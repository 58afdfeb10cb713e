// Package llm adapts hosted and local language models to a single
// schema-constrained completion call.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete runs one prompt and returns the raw model text. When the request
	// carries a schema the provider asks the model for JSON matching it.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// CompletionRequest is one system + user prompt exchange
type CompletionRequest struct {
	System string
	Prompt string

	// Schema is a JSON Schema document for structured output; nil means free text
	Schema json.RawMessage

	// SchemaName identifies the schema to providers that require a name
	SchemaName string

	// Model overrides the configured model
	Model string

	MaxTokens   int
	Temperature float32 // 0 = provider default
}

// CompletionResponse carries the model output
type CompletionResponse struct {
	Content    string
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", "gemini"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for hosted providers
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama, proxies, test servers)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Temperature, 0 leaves the provider default
	Temperature float32

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "openai",
		Model:     "gpt-5-mini",
		Timeout:   120,
		MaxTokens: 8000,
	}
}

// APIError is a non-2xx answer from a provider's HTTP API
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (%d): %s", e.Provider, e.StatusCode, e.Message)
}

// IsTransient reports whether err is worth retrying after a pause: rate
// limiting, server-side failures and network timeouts. Cancellation is not.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return transientStatus(apiErr.StatusCode)
	}
	var oaiErr *openai.APIError
	if errors.As(err, &oaiErr) {
		return transientStatus(oaiErr.HTTPStatusCode)
	}
	var oaiReqErr *openai.RequestError
	if errors.As(err, &oaiReqErr) {
		return transientStatus(oaiReqErr.HTTPStatusCode)
	}
	var genaiErr genai.APIError
	if errors.As(err, &genaiErr) {
		return transientStatus(genaiErr.Code)
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func transientStatus(code int) bool {
	return code == http.StatusTooManyRequests || code == http.StatusRequestTimeout || code >= 500
}
