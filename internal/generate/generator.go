// Package generate turns one input clause into a validated negotiation
// analysis by prompting an LLM provider for schema-constrained JSON.
package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/clausegen/internal/cache"
	"github.com/ppiankov/clausegen/internal/llm"
	"github.com/ppiankov/clausegen/internal/model"
	"github.com/ppiankov/clausegen/internal/worker"
)

// ErrGenerationFailed wraps the last error once every attempt is spent
var ErrGenerationFailed = errors.New("generation failed")

// ErrNoJSON is returned when a completion holds no JSON object
var ErrNoJSON = errors.New("no JSON object in completion")

// Generator produces the negotiation analysis for one clause
type Generator interface {
	Generate(ctx context.Context, data model.ClauseData) (*model.NegotiationAnalysis, error)
}

// Options tunes an LLMGenerator
type Options struct {
	// MaxAttempts bounds provider calls per clause, default 3
	MaxAttempts int

	// Model overrides the provider's configured model
	Model       string
	MaxTokens   int
	Temperature float32

	// Backoff is the first pause after a transient provider error; it doubles
	// per attempt up to MaxBackoff
	Backoff    time.Duration
	MaxBackoff time.Duration

	// Limiter, when set, is waited on before every provider call
	Limiter *worker.Limiter

	// Cache, when set, stores accepted completions keyed by provider, model and prompt
	Cache    cache.Cache
	CacheTTL time.Duration

	Logger *zap.Logger
}

// DefaultOptions returns sensible defaults
func DefaultOptions() Options {
	return Options{
		MaxAttempts: 3,
		Backoff:     2 * time.Second,
		MaxBackoff:  30 * time.Second,
	}
}

// LLMGenerator implements Generator on top of an llm.Provider
type LLMGenerator struct {
	provider llm.Provider
	opts     Options
	system   string
	schema   json.RawMessage
	logger   *zap.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

// NewLLMGenerator creates a generator; zero option fields take the defaults
func NewLLMGenerator(provider llm.Provider, opts Options) *LLMGenerator {
	defaults := DefaultOptions()
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaults.MaxAttempts
	}
	if opts.Backoff <= 0 {
		opts.Backoff = defaults.Backoff
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = defaults.MaxBackoff
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &LLMGenerator{
		provider: provider,
		opts:     opts,
		system:   SystemPrompt(),
		schema:   Schema(),
		logger:   logger.With(zap.String("provider", provider.Name())),
		sleep:    sleepContext,
	}
}

// Generate prompts the provider until it returns a valid analysis.
// A rejected answer is retried with the rejection reason appended to the
// prompt; a transient provider error is retried after a backoff; any other
// provider error ends the attempt loop at once.
func (g *LLMGenerator) Generate(ctx context.Context, data model.ClauseData) (*model.NegotiationAnalysis, error) {
	prompt := UserPrompt(data)
	key := cache.CacheKey(g.provider.Name(), g.opts.Model, g.system, prompt)

	if analysis, ok := g.cached(key, data); ok {
		return analysis, nil
	}

	var lastErr, rejection error
	backoff := g.opts.Backoff
	attempts := 0

	for attempt := 1; attempt <= g.opts.MaxAttempts; attempt++ {
		attempts = attempt
		req := llm.CompletionRequest{
			System:      g.system,
			Prompt:      prompt,
			Schema:      g.schema,
			SchemaName:  SchemaName,
			Model:       g.opts.Model,
			MaxTokens:   g.opts.MaxTokens,
			Temperature: g.opts.Temperature,
		}
		if rejection != nil {
			req.Prompt = retryPrompt(prompt, rejection)
		}

		if g.opts.Limiter != nil {
			if err := g.opts.Limiter.Wait(ctx, g.provider.Name()); err != nil {
				return nil, err
			}
		}

		resp, err := g.provider.Complete(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			if !llm.IsTransient(err) {
				break
			}
			g.logger.Warn("transient provider error, backing off",
				zap.Int("attempt", attempt), zap.Duration("backoff", backoff), zap.Error(err))
			if attempt < g.opts.MaxAttempts {
				if err := g.sleep(ctx, backoff); err != nil {
					return nil, err
				}
				backoff = min(2*backoff, g.opts.MaxBackoff)
			}
			continue
		}

		analysis, err := Decode(resp.Content, data)
		if err != nil {
			g.logger.Warn("rejected completion",
				zap.Int("attempt", attempt), zap.Int("tokens", resp.TokensUsed), zap.Error(err))
			lastErr, rejection = err, err
			continue
		}

		g.logDangling(analysis)
		g.store(key, resp.Content)
		g.logger.Debug("analysis accepted",
			zap.Int("attempt", attempt), zap.String("model", resp.Model), zap.Int("tokens", resp.TokensUsed))
		return analysis, nil
	}

	return nil, fmt.Errorf("%w after %d attempt(s): %w", ErrGenerationFailed, attempts, lastErr)
}

func (g *LLMGenerator) cached(key string, data model.ClauseData) (*model.NegotiationAnalysis, bool) {
	if g.opts.Cache == nil {
		return nil, false
	}
	raw, ok := g.opts.Cache.Get(key)
	if !ok {
		return nil, false
	}
	analysis, err := Decode(string(raw), data)
	if err != nil {
		// entries are only written after validation; anything else is stale
		_ = g.opts.Cache.Delete(key)
		return nil, false
	}
	g.logger.Debug("cache hit")
	return analysis, true
}

func (g *LLMGenerator) store(key, content string) {
	if g.opts.Cache == nil {
		return
	}
	if err := g.opts.Cache.Set(key, []byte(content), g.opts.CacheTTL); err != nil {
		g.logger.Warn("cache write failed", zap.Error(err))
	}
}

func (g *LLMGenerator) logDangling(analysis *model.NegotiationAnalysis) {
	for _, chain := range analysis.Chains() {
		for _, link := range chain.DanglingLinks() {
			g.logger.Debug("dangling argument link",
				zap.String("from", link.FromClaim), zap.String("to", link.ToClaim), zap.String("relation", string(link.Relation)))
		}
	}
}

// Decode parses a completion into a validated analysis. Code fences and prose
// around the outermost JSON object are ignored. An empty original_clause is
// filled from the input clause.
func Decode(content string, data model.ClauseData) (*model.NegotiationAnalysis, error) {
	body, err := extractJSON(content)
	if err != nil {
		return nil, err
	}

	var analysis model.NegotiationAnalysis
	if err := json.Unmarshal([]byte(body), &analysis); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	if analysis.OriginalClause == "" {
		analysis.OriginalClause = data.Field(model.FieldClause)
	}
	if err := analysis.Validate(); err != nil {
		return nil, err
	}
	return &analysis, nil
}

func extractJSON(content string) (string, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return "", ErrNoJSON
	}
	return content[start : end+1], nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
