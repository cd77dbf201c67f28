package model

import "time"

// Config is the complete runtime configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http" json:"http"`
	Cache   CacheConfig   `yaml:"cache" json:"cache"`
	Collect CollectConfig `yaml:"collect" json:"collect"`
	LLM     LLMConfig     `yaml:"llm" json:"llm"`
	Output  OutputConfig  `yaml:"output" json:"output"`
}

// HTTPConfig configures the rate-limited fetch session.
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" json:"timeout"`
	UserAgent    string        `yaml:"user_agent" json:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" json:"max_body_bytes"`

	// Delay is the minimum gap between outbound requests. MaxRetries
	// bounds the retry ladder; RateLimitWait is the base backoff unit
	// applied on HTTP 429.
	Delay         time.Duration `yaml:"delay" json:"delay"`
	MaxRetries    int           `yaml:"max_retries" json:"max_retries"`
	RateLimitWait time.Duration `yaml:"rate_limit_wait" json:"rate_limit_wait"`

	HTTPProxy  string `yaml:"http_proxy" json:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy" json:"https_proxy"`
}

// CacheConfig configures response caching between collector runs.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" json:"enabled"`
	Dir       string        `yaml:"dir" json:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" json:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" json:"disk_ttl"`
}

// CollectConfig configures collection runs.
type CollectConfig struct {
	OutputDir      string   `yaml:"output_dir" json:"output_dir"`
	CheckpointFile string   `yaml:"checkpoint_file" json:"checkpoint_file"`
	Workers        int      `yaml:"workers" json:"workers"`
	KeyColumns     []string `yaml:"key_columns" json:"key_columns"`
}

// LLMConfig configures the optional LLM extraction assist. Disabled
// unless a provider is set; never required by the core pipeline.
type LLMConfig struct {
	Provider  string `yaml:"provider" json:"provider"`
	Model     string `yaml:"model" json:"model"`
	APIKey    string `yaml:"-" json:"-"`
	BaseURL   string `yaml:"base_url" json:"base_url"`
	Timeout   int    `yaml:"timeout" json:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" json:"max_tokens"`
}

// OutputConfig controls CLI output behavior.
type OutputConfig struct {
	Verbose bool `yaml:"verbose" json:"verbose"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "missing-daughters/0.1 (+https://github.com/in-rolls/missing-daughters-of-pols)",
			MaxBodyBytes:  2_000_000,
			Delay:         time.Second,
			MaxRetries:    3,
			RateLimitWait: 5 * time.Second,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       "",
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Collect: CollectConfig{
			OutputDir:      "./data",
			CheckpointFile: "collection_progress.json",
			Workers:        1,
			KeyColumns:     []string{"name"},
		},
		LLM: LLMConfig{
			Provider:  "",
			Timeout:   30,
			MaxTokens: 200,
		},
		Output: OutputConfig{},
	}
}
