package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/credence/internal/fallback"
	"github.com/ppiankov/credence/internal/model"
)

// NewProvider creates a provider from configuration. A comma separated list
// builds a provider that tries each in order. An empty name disables the
// LLM and returns nil, nil.
func NewProvider(config Config) (Provider, error) {
	names := splitNames(config.Provider)
	switch len(names) {
	case 0:
		return nil, nil
	case 1:
		return newSingle(names[0], config)
	}

	providers := make([]Provider, 0, len(names))
	for _, name := range names {
		p, err := newSingle(name, config)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	return &ChainProvider{providers: providers}, nil
}

func newSingle(name string, config Config) (Provider, error) {
	switch name {
	case "openai":
		return NewOpenAIProvider(config)
	case "ollama":
		return NewOllamaProvider(config)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, ollama)", name)
	}
}

func splitNames(s string) []string {
	var names []string
	for _, part := range strings.Split(strings.ToLower(s), ",") {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}
	return names
}

// ConfigFromModel converts model.Config to llm.Config
func ConfigFromModel(cfg *model.Config) Config {
	return Config{
		Provider:   cfg.LLM.Provider,
		Model:      cfg.LLM.Model,
		APIKey:     cfg.LLM.APIKey,
		BaseURL:    cfg.LLM.BaseURL,
		Timeout:    cfg.LLM.Timeout,
		MaxTokens:  cfg.LLM.MaxTokens,
		HTTPProxy:  cfg.HTTP.HTTPProxy,
		HTTPSProxy: cfg.HTTP.HTTPSProxy,
		NoProxy:    cfg.HTTP.NoProxy,
	}
}

// ChainProvider tries several providers in order
type ChainProvider struct {
	providers []Provider
}

// Name lists the wrapped providers
func (c *ChainProvider) Name() string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return strings.Join(names, ",")
}

// IsAvailable reports whether any wrapped provider is available
func (c *ChainProvider) IsAvailable(ctx context.Context) bool {
	for _, p := range c.providers {
		if p.IsAvailable(ctx) {
			return true
		}
	}
	return false
}

// Complete returns the first successful completion
func (c *ChainProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	chain := fallback.New[*CompletionResponse]("llm-providers")
	for _, p := range c.providers {
		chain.Then(p.Name(), func(ctx context.Context) (*CompletionResponse, error) {
			return p.Complete(ctx, req)
		})
	}
	resp, _, _, err := chain.Run(ctx)
	return resp, err
}
