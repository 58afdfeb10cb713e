package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOllamaProvider_Complete_Success(t *testing.T) {
	var got ollamaRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("Expected path /api/generate, got %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}

		_ = json.NewEncoder(w).Encode(ollamaResponse{
			Model:           "qwen2.5:14b",
			Response:        "\n{\"ok\": true}\n",
			Done:            true,
			PromptEvalCount: 10,
			EvalCount:       20,
		})
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL + "/", Model: "qwen2.5:14b", Timeout: 5, MaxTokens: 4000})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.Complete(context.Background(), CompletionRequest{
		System:      "sys",
		Prompt:      "analyze",
		Schema:      json.RawMessage(testSchema),
		Temperature: 0.2,
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if resp.Content != `{"ok": true}` {
		t.Errorf("Unexpected content: %q", resp.Content)
	}
	if resp.TokensUsed != 30 {
		t.Errorf("Expected 30 tokens used, got %d", resp.TokensUsed)
	}

	if got.Stream {
		t.Error("Expected non-streaming request")
	}
	if got.System != "sys" || got.Prompt != "analyze" {
		t.Errorf("Unexpected prompts: %+v", got)
	}
	if string(got.Format) != testSchema {
		t.Errorf("Expected schema as format, got %s", got.Format)
	}
	if got.Options.NumPredict != 4000 || got.Options.Temperature != 0.2 {
		t.Errorf("Unexpected options: %+v", got.Options)
	}
}

func TestOllamaProvider_Complete_NoSchemaOmitsFormat(t *testing.T) {
	var raw map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&raw)
		_ = json.NewEncoder(w).Encode(ollamaResponse{Response: "text", Done: true})
	}))
	defer server.Close()

	provider, _ := NewOllamaProvider(Config{BaseURL: server.URL, Model: "llama3.1"})
	resp, err := provider.Complete(context.Background(), CompletionRequest{Prompt: "x"})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if resp.Model != "llama3.1" {
		t.Errorf("Expected configured model as fallback, got %s", resp.Model)
	}
	if _, ok := raw["format"]; ok {
		t.Error("format must be omitted without a schema")
	}
}

func TestOllamaProvider_Complete_RequiresModel(t *testing.T) {
	provider, _ := NewOllamaProvider(Config{BaseURL: "http://127.0.0.1:1"})
	if _, err := provider.Complete(context.Background(), CompletionRequest{Prompt: "x"}); err == nil {
		t.Fatal("Expected error without a model")
	}
}

func TestOllamaProvider_Complete_EmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ollamaResponse{Response: "   ", Done: true})
	}))
	defer server.Close()

	provider, _ := NewOllamaProvider(Config{BaseURL: server.URL, Model: "llama3.1"})
	if _, err := provider.Complete(context.Background(), CompletionRequest{Prompt: "x"}); err == nil {
		t.Fatal("Expected error for empty response")
	}
}

func TestOllamaProvider_Complete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": "model 'nope' not found"}`))
	}))
	defer server.Close()

	provider, _ := NewOllamaProvider(Config{BaseURL: server.URL, Model: "nope"})
	_, err := provider.Complete(context.Background(), CompletionRequest{Prompt: "x"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %v", err)
	}
	if apiErr.Provider != "ollama" || apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("Unexpected API error: %+v", apiErr)
	}
	if apiErr.Message != "model 'nope' not found" {
		t.Errorf("Unexpected message: %s", apiErr.Message)
	}
	if IsTransient(err) {
		t.Error("Expected 404 to be permanent")
	}
}

func TestOllamaProvider_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			_, _ = w.Write([]byte(`{"models": []}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	provider, _ := NewOllamaProvider(Config{BaseURL: server.URL})
	if !provider.IsAvailable(context.Background()) {
		t.Error("Expected available to be true")
	}

	server.Config.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	if provider.IsAvailable(context.Background()) {
		t.Error("Expected available to be false on error")
	}
}
