package generate

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ppiankov/clausegen/internal/cache"
	"github.com/ppiankov/clausegen/internal/llm"
	"github.com/ppiankov/clausegen/internal/model"
	"github.com/ppiankov/clausegen/internal/model/modeltest"
)

// scriptedProvider answers Complete from a fixed script, one entry per call
type scriptedProvider struct {
	mu       sync.Mutex
	script   []reply
	requests []llm.CompletionRequest
}

type reply struct {
	content string
	err     error
}

func (p *scriptedProvider) Name() string                         { return "scripted" }
func (p *scriptedProvider) IsAvailable(ctx context.Context) bool { return true }

func (p *scriptedProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, req)
	if len(p.script) == 0 {
		return nil, errors.New("script exhausted")
	}
	r := p.script[0]
	p.script = p.script[1:]
	if r.err != nil {
		return nil, r.err
	}
	return &llm.CompletionResponse{Content: r.content, Model: "scripted-1", TokensUsed: 42}, nil
}

func (p *scriptedProvider) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}

func validJSON(t *testing.T) string {
	t.Helper()
	raw, err := json.Marshal(modeltest.Analysis())
	require.NoError(t, err)
	return string(raw)
}

func newTestGenerator(t *testing.T, p llm.Provider, opts Options) (*LLMGenerator, *[]time.Duration) {
	t.Helper()
	opts.Logger = zaptest.NewLogger(t)
	g := NewLLMGenerator(p, opts)
	var slept []time.Duration
	g.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return ctx.Err()
	}
	return g, &slept
}

func TestGenerate_FirstAttempt(t *testing.T) {
	p := &scriptedProvider{script: []reply{{content: validJSON(t)}}}
	g, _ := newTestGenerator(t, p, Options{Model: "gpt-5-mini", MaxTokens: 9000})

	analysis, err := g.Generate(context.Background(), modeltest.Clause(1))
	require.NoError(t, err)
	assert.Equal(t, "Employer", analysis.Context.ObserverRole)
	assert.Len(t, analysis.Variations, 2)

	require.Equal(t, 1, p.calls())
	req := p.requests[0]
	assert.Equal(t, SchemaName, req.SchemaName)
	assert.JSONEq(t, string(Schema()), string(req.Schema))
	assert.Equal(t, "gpt-5-mini", req.Model)
	assert.Equal(t, 9000, req.MaxTokens)
	assert.Contains(t, req.System, "Reasoning Notation System")
	assert.Contains(t, req.Prompt, "The Employee shall not solicit clients (1).")
}

func TestGenerate_RetriesWithRejectionReason(t *testing.T) {
	bad := modeltest.Analysis()
	bad.Variations = bad.Variations[:1]
	badJSON, err := json.Marshal(bad)
	require.NoError(t, err)

	p := &scriptedProvider{script: []reply{
		{content: "I cannot produce JSON today"},
		{content: string(badJSON)},
		{content: "```json\n" + validJSON(t) + "\n```"},
	}}
	g, slept := newTestGenerator(t, p, Options{})

	analysis, err := g.Generate(context.Background(), modeltest.Clause(1))
	require.NoError(t, err)
	require.NotNil(t, analysis)
	assert.Equal(t, 3, p.calls())
	assert.Empty(t, *slept, "validation failures retry immediately")

	assert.NotContains(t, p.requests[0].Prompt, "previous answer was rejected")
	assert.Contains(t, p.requests[1].Prompt, ErrNoJSON.Error())
	assert.Contains(t, p.requests[2].Prompt, "1 variations")
}

func TestGenerate_ExhaustsAttempts(t *testing.T) {
	p := &scriptedProvider{script: []reply{{content: "{}"}, {content: "{}"}}}
	g, _ := newTestGenerator(t, p, Options{MaxAttempts: 2})

	_, err := g.Generate(context.Background(), modeltest.Clause(1))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.ErrorIs(t, err, model.ErrInvalidAnalysis)
	assert.Equal(t, 2, p.calls())
	assert.ErrorContains(t, err, "after 2 attempt(s)")
}

func TestGenerate_TransientErrorsBackOff(t *testing.T) {
	rateLimited := &llm.APIError{Provider: "scripted", StatusCode: 429, Message: "slow down"}
	p := &scriptedProvider{script: []reply{
		{err: rateLimited},
		{err: rateLimited},
		{content: validJSON(t)},
	}}
	g, slept := newTestGenerator(t, p, Options{Backoff: time.Second, MaxBackoff: 90 * time.Second})

	_, err := g.Generate(context.Background(), modeltest.Clause(1))
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *slept)
}

func TestGenerate_BackoffCapped(t *testing.T) {
	unavailable := &llm.APIError{StatusCode: 503}
	p := &scriptedProvider{script: []reply{{err: unavailable}, {err: unavailable}, {err: unavailable}, {err: unavailable}}}
	g, slept := newTestGenerator(t, p, Options{MaxAttempts: 4, Backoff: 2 * time.Second, MaxBackoff: 3 * time.Second})

	_, err := g.Generate(context.Background(), modeltest.Clause(1))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGenerationFailed)
	// no pause after the final attempt
	assert.Equal(t, []time.Duration{2 * time.Second, 3 * time.Second, 3 * time.Second}, *slept)
}

func TestGenerate_PermanentErrorStopsAtOnce(t *testing.T) {
	p := &scriptedProvider{script: []reply{
		{err: &llm.APIError{StatusCode: 401, Message: "bad key"}},
		{content: validJSON(t)},
	}}
	g, _ := newTestGenerator(t, p, Options{})

	_, err := g.Generate(context.Background(), modeltest.Clause(1))
	require.Error(t, err)
	assert.Equal(t, 1, p.calls())
	assert.ErrorContains(t, err, "after 1 attempt(s)")

	var apiErr *llm.APIError
	assert.ErrorAs(t, err, &apiErr)
}

func TestGenerate_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &scriptedProvider{script: []reply{{err: context.Canceled}}}
	g, _ := newTestGenerator(t, p, Options{})

	_, err := g.Generate(ctx, modeltest.Clause(1))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerate_CacheHitSkipsProvider(t *testing.T) {
	c := cache.NewMemoryCache(time.Hour, time.Hour)
	p := &scriptedProvider{script: []reply{{content: validJSON(t)}}}
	g, _ := newTestGenerator(t, p, Options{Cache: c})

	first, err := g.Generate(context.Background(), modeltest.Clause(1))
	require.NoError(t, err)
	second, err := g.Generate(context.Background(), modeltest.Clause(1))
	require.NoError(t, err)

	assert.Equal(t, 1, p.calls())
	assert.Equal(t, first, second)
	assert.Equal(t, 1, c.Len())
}

func TestGenerate_CacheKeyedByModel(t *testing.T) {
	c := cache.NewMemoryCache(time.Hour, time.Hour)

	first := &scriptedProvider{script: []reply{{content: validJSON(t)}}}
	g1, _ := newTestGenerator(t, first, Options{Cache: c, Model: "model-a"})
	_, err := g1.Generate(context.Background(), modeltest.Clause(1))
	require.NoError(t, err)

	second := &scriptedProvider{script: []reply{{content: validJSON(t)}}}
	g2, _ := newTestGenerator(t, second, Options{Cache: c, Model: "model-b"})
	_, err = g2.Generate(context.Background(), modeltest.Clause(1))
	require.NoError(t, err)

	assert.Equal(t, 1, second.calls(), "another model must not reuse the cached completion")
	assert.Equal(t, 2, c.Len())
}

func TestGenerate_StaleCacheEntryDropped(t *testing.T) {
	c := cache.NewMemoryCache(time.Hour, time.Hour)
	p := &scriptedProvider{script: []reply{{content: validJSON(t)}}}
	g, _ := newTestGenerator(t, p, Options{Cache: c})

	key := cache.CacheKey(p.Name(), "", g.system, UserPrompt(modeltest.Clause(1)))
	require.NoError(t, c.Set(key, []byte("{garbage"), 0))

	_, err := g.Generate(context.Background(), modeltest.Clause(1))
	require.NoError(t, err)
	assert.Equal(t, 1, p.calls())

	raw, ok := c.Get(key)
	require.True(t, ok)
	assert.NotEqual(t, "{garbage", string(raw))
}

func TestDecode(t *testing.T) {
	data := modeltest.Clause(3)

	t.Run("fills original clause", func(t *testing.T) {
		a := modeltest.Analysis()
		a.OriginalClause = ""
		raw, err := json.Marshal(a)
		require.NoError(t, err)

		got, err := Decode("Here you go:\n"+string(raw)+"\nThanks", data)
		require.NoError(t, err)
		assert.Equal(t, data.Field(model.FieldClause), got.OriginalClause)
	})

	t.Run("rejects unknown category", func(t *testing.T) {
		raw := strings.Replace(validJSON(t), `"strong_true"`, `"pretty_sure"`, 1)
		_, err := Decode(raw, data)
		assert.ErrorIs(t, err, model.ErrInvalidCategory)
	})

	t.Run("no object", func(t *testing.T) {
		_, err := Decode("no json here", data)
		assert.ErrorIs(t, err, ErrNoJSON)
	})

	t.Run("broken json", func(t *testing.T) {
		_, err := Decode(`{"variations": [}`, data)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNoJSON)
	})
}
