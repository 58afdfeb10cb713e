package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"google.golang.org/genai"
)

// GeminiProvider implements the Provider interface for Google Gemini models
type GeminiProvider struct {
	client *genai.Client
	config Config
}

// NewGeminiProvider creates a Gemini API client
func NewGeminiProvider(ctx context.Context, config Config) (*GeminiProvider, error) {
	if config.APIKey == "" {
		return nil, errors.New("Gemini API key is required (set GEMINI_API_KEY or GOOGLE_API_KEY)")
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientConfig.HTTPOptions.BaseURL = config.BaseURL
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	return &GeminiProvider{client: client, config: config}, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// IsAvailable checks the key by fetching the configured model
func (p *GeminiProvider) IsAvailable(ctx context.Context) bool {
	model := firstNonEmpty(p.config.Model, "gemini-2.5-flash")
	if _, err := p.client.Models.Get(ctx, model, nil); err != nil {
		fmt.Fprintf(os.Stderr, "Gemini API check failed: %v\n", err)
		return false
	}
	return true
}

// Complete calls GenerateContent, passing the schema as ResponseJsonSchema
func (p *GeminiProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	model := firstNonEmpty(req.Model, p.config.Model, "gemini-2.5-flash")

	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cfg := &genai.GenerateContentConfig{}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if maxTokens := firstPositive(req.MaxTokens, p.config.MaxTokens); maxTokens > 0 {
		cfg.MaxOutputTokens = int32(maxTokens)
	}
	if temp := firstPositiveFloat(req.Temperature, p.config.Temperature); temp > 0 {
		cfg.Temperature = genai.Ptr(temp)
	}
	if len(req.Schema) > 0 {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseJsonSchema = req.Schema
	}

	resp, err := p.client.Models.GenerateContent(ctx, model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return nil, fmt.Errorf("Gemini API error: %w", err)
	}

	content := strings.TrimSpace(resp.Text())
	if content == "" {
		return nil, errors.New("empty response from Gemini")
	}

	var tokens int
	if resp.UsageMetadata != nil {
		tokens = int(resp.UsageMetadata.TotalTokenCount)
	}

	return &CompletionResponse{
		Content:    content,
		Model:      firstNonEmpty(resp.ModelVersion, model),
		TokensUsed: tokens,
	}, nil
}
