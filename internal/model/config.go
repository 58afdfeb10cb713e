package model

import "time"

// Config is the complete clausegen configuration
type Config struct {
	LLM          LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Generation   GenerationConfig  `yaml:"generation" mapstructure:"generation"`
	Concurrency  ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitConfig   `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Cache        CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Journal      JournalConfig     `yaml:"journal" mapstructure:"journal"`
	Output       OutputConfig      `yaml:"output" mapstructure:"output"`
}

// LLMConfig selects and tunes the provider used by the generator
type LLMConfig struct {
	Provider    string  `yaml:"provider" mapstructure:"provider"` // openai, anthropic, gemini, ollama
	Model       string  `yaml:"model" mapstructure:"model"`       // empty = provider default
	APIKey      string  `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL     string  `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout     int     `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float32 `yaml:"temperature" mapstructure:"temperature"` // 0 = provider default

	HTTPProxy  string `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy    string `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// GenerationConfig controls which input records are processed and how often a call is retried
type GenerationConfig struct {
	MaxAttempts int  `yaml:"max_attempts" mapstructure:"max_attempts"`
	Resume      bool `yaml:"resume" mapstructure:"resume"`
	StartOffset int  `yaml:"start_offset" mapstructure:"start_offset"`
	MaxSamples  int  `yaml:"max_samples" mapstructure:"max_samples"` // 0 = all
}

// ConcurrencyConfig selects the scheduling mode: Workers <= 1 is sequential
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitConfig throttles provider calls; zero RequestsPerSecond disables it
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// CacheConfig controls the generation response cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	TTL       time.Duration `yaml:"ttl" mapstructure:"ttl"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
}

// JournalConfig points at the optional SQLite run journal; empty Path disables it
type JournalConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// OutputConfig controls where records are written
type OutputConfig struct {
	Dir     string `yaml:"dir" mapstructure:"dir"`
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:  "openai",
			Timeout:   120,
			MaxTokens: 8000,
		},
		Generation: GenerationConfig{
			MaxAttempts: 3,
			Resume:      true,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 1,
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 0,
			BurstSize:         5,
		},
		Cache: CacheConfig{
			Enabled:   false,
			Dir:       ".clausegen-cache",
			TTL:       7 * 24 * time.Hour,
			MemoryTTL: time.Hour,
		},
		Output: OutputConfig{
			Dir: "samples/contracts/negotiation_variations",
		},
	}
}
