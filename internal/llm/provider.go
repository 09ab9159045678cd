package llm

import (
	"context"
	"fmt"
	"strings"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete sends a prompt and returns the model's raw JSON answer
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// CompletionRequest is one prompt sent to a provider
type CompletionRequest struct {
	System    string
	Prompt    string
	Model     string
	MaxTokens int
}

// CompletionResponse is the provider's answer
type CompletionResponse struct {
	Content    string
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "ollama", a comma separated list tried in
	// order, or "" (disabled)
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Timeout:   30,
		MaxTokens: 1500,
	}
}

const systemPrompt = "You are a fact-checking assistant. You decompose claims, judge each against sources you can name, and answer with a single JSON object and nothing else."

// BuildPrompt asks for a structured credibility report on text and/or url
func BuildPrompt(text, url string) string {
	var b strings.Builder

	b.WriteString(`Assess the credibility of the following content.

Split it into its individual factual claims. For each claim decide whether it is
"Supported", "Unverified" or "Contradicted", and list the sources (url and a short
snippet) that support your judgement. Never invent URLs; leave sources empty if you
cannot name a real one.

Answer with JSON of exactly this shape:
{
  "verdict": "REAL" | "MIXED" | "LIKELY_FAKE" | "UNVERIFIED",
  "credibility_score": <integer 0-100>,
  "confidence": <number 0-1>,
  "claims": [
    {"id": 1, "claim_text": "...", "judgement": "Supported", "sources": [{"url": "...", "snippet": "..."}]}
  ],
  "reasoning": ["...", "..."]
}

`)

	if text != "" {
		fmt.Fprintf(&b, "Content:\n%s\n", text)
	}
	if url != "" {
		fmt.Fprintf(&b, "Source URL: %s\n", url)
	}

	return b.String()
}
