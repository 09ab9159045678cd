package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/credence/internal/model"
)

// ErrNoJSON is returned when a completion contains no JSON object
var ErrNoJSON = errors.New("no JSON object in completion")

// Assessor turns an LLM completion into a validated structured report
type Assessor struct {
	provider  Provider
	model     string
	maxTokens int
}

// NewAssessor wraps provider
func NewAssessor(provider Provider, modelName string, maxTokens int) *Assessor {
	return &Assessor{provider: provider, model: modelName, maxTokens: maxTokens}
}

// Name returns the underlying provider name
func (a *Assessor) Name() string {
	return a.provider.Name()
}

// Assess asks the model for a structured report on text and/or url
func (a *Assessor) Assess(ctx context.Context, text, url string) (*model.StructuredReport, error) {
	resp, err := a.provider.Complete(ctx, CompletionRequest{
		System:    systemPrompt,
		Prompt:    BuildPrompt(text, url),
		Model:     a.model,
		MaxTokens: a.maxTokens,
	})
	if err != nil {
		return nil, err
	}

	report, err := ParseReport(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", a.provider.Name(), err)
	}
	return report, nil
}

// ParseReport decodes and validates a report from model output, tolerating
// code fences and prose around the JSON object
func ParseReport(content string) (*model.StructuredReport, error) {
	raw := jsonObject(content)
	if raw == "" {
		return nil, ErrNoJSON
	}

	var report model.StructuredReport
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}

	for i := range report.Claims {
		if report.Claims[i].ID == 0 {
			report.Claims[i].ID = i + 1
		}
	}
	if len(report.Claims) == 0 && report.Verdict == "" {
		report.Verdict = model.VerdictUnverified
	}

	if err := report.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report: %w", err)
	}
	return &report, nil
}

// jsonObject returns the outermost {...} span of s
func jsonObject(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
