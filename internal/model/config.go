package model

import "time"

// Config is the complete runtime configuration
type Config struct {
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	Endpoints    EndpointsConfig    `yaml:"endpoints" mapstructure:"endpoints"`
	Timeouts     TimeoutsConfig     `yaml:"timeouts" mapstructure:"timeouts"`
	Scanner      ScannerConfig      `yaml:"scanner" mapstructure:"scanner"`
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Blacklist    BlacklistConfig    `yaml:"blacklist" mapstructure:"blacklist"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
}

// HTTPConfig configures outbound HTTP
type HTTPConfig struct {
	UserAgent    string `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64  `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	HTTPProxy    string `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy   string `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy      string `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// EndpointsConfig locates the downstream signal providers.
// Paths are resolved against BaseURL unless they are absolute URLs.
type EndpointsConfig struct {
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
	Classify string `yaml:"classify" mapstructure:"classify"`
	Scan     string `yaml:"scan" mapstructure:"scan"`
	Combined string `yaml:"combined" mapstructure:"combined"` // empty disables the combined endpoint

	// Ordered fallback chains per structured mode
	Rule   []string `yaml:"rule" mapstructure:"rule"`
	LLM    []string `yaml:"llm" mapstructure:"llm"`
	Hybrid []string `yaml:"hybrid" mapstructure:"hybrid"`
}

// TimeoutsConfig bounds every downstream call
type TimeoutsConfig struct {
	Classifier time.Duration `yaml:"classifier" mapstructure:"classifier"`
	Scanner    time.Duration `yaml:"scanner" mapstructure:"scanner"`
	Verifier   time.Duration `yaml:"verifier" mapstructure:"verifier"`
	Combined   time.Duration `yaml:"combined" mapstructure:"combined"`
	Extract    time.Duration `yaml:"extract" mapstructure:"extract"`
}

// ScannerConfig selects the source heuristics backend
type ScannerConfig struct {
	Backend       string `yaml:"backend" mapstructure:"backend"` // remote, local
	RespectRobots bool   `yaml:"respect_robots" mapstructure:"respect_robots"`
}

// LLMConfig configures the optional in-process LLM assessor
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"` // openai, ollama, "" (disabled)
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// BlacklistConfig selects where blacklist entries live
type BlacklistConfig struct {
	Backend  string `yaml:"backend" mapstructure:"backend"` // memory, redis
	RedisURL string `yaml:"redis_url,omitempty" mapstructure:"redis_url"`
}

// CacheConfig controls memoisation of classifier results
type CacheConfig struct {
	Enabled       bool          `yaml:"enabled" mapstructure:"enabled"`
	ClassifierTTL time.Duration `yaml:"classifier_ttl" mapstructure:"classifier_ttl"`
}

// RateLimitingConfig throttles calls per downstream host
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// ConcurrencyConfig sizes the batch worker pool
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// ServerConfig configures the inbound HTTP API
type ServerConfig struct {
	Addr           string   `yaml:"addr" mapstructure:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins,omitempty" mapstructure:"allowed_origins"`
}

// LogConfig configures the structured logger
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			UserAgent:    "Credence/0.1 (+https://github.com/ppiankov/credence)",
			MaxBodyBytes: 2_000_000,
		},
		Endpoints: EndpointsConfig{
			BaseURL:  "http://localhost:5000",
			Classify: "/fake-news",
			Scan:     "/scan",
			Combined: "/analyze-news",
			Rule:     []string{"/fact-check/structured", "/analyze/structured"},
			LLM:      []string{"/fact-check/llm", "/analyze/llm"},
			Hybrid:   []string{"/fact-check/hybrid", "/analyze/hybrid"},
		},
		Timeouts: TimeoutsConfig{
			Classifier: 10 * time.Second,
			Scanner:    15 * time.Second,
			Verifier:   15 * time.Second,
			Combined:   10 * time.Second,
			Extract:    10 * time.Second,
		},
		Scanner: ScannerConfig{
			Backend:       "remote",
			RespectRobots: true,
		},
		LLM: LLMConfig{
			Timeout:   30,
			MaxTokens: 1500,
		},
		Blacklist: BlacklistConfig{
			Backend: "memory",
		},
		Cache: CacheConfig{
			Enabled:       true,
			ClassifierTTL: 30 * time.Minute,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 20,
			BurstSize:         40,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
