// Package verify obtains structured claim reports through per-mode fallback
// chains. Only the exhaustion of a whole chain is surfaced as an error.
package verify

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/credence/internal/fallback"
	"github.com/ppiankov/credence/internal/logging"
	"github.com/ppiankov/credence/internal/metrics"
	"github.com/ppiankov/credence/internal/model"
	"github.com/ppiankov/credence/internal/provider"
)

// ErrServiceUnavailable is returned when every link of the selected mode failed
var ErrServiceUnavailable = errors.New("verification service unavailable")

// Poster is the subset of provider.Client the verifier needs
type Poster interface {
	PostJSON(ctx context.Context, endpoint string, timeout time.Duration, in, out any) error
}

// Assessor produces a report in-process, typically with an LLM
type Assessor interface {
	Name() string
	Assess(ctx context.Context, text, url string) (*model.StructuredReport, error)
}

// Endpoints lists the ordered HTTP endpoints per mode
type Endpoints struct {
	Rule   []string
	LLM    []string
	Hybrid []string
}

// Verifier runs the chain for a mode
type Verifier struct {
	client    Poster
	endpoints Endpoints
	timeout   time.Duration
	assessor  Assessor

	log     *logging.Logger
	metrics *metrics.Metrics
}

// Option configures a Verifier
type Option func(*Verifier)

// WithAssessor appends an in-process assessor to the llm chain
func WithAssessor(a Assessor) Option {
	return func(v *Verifier) { v.assessor = a }
}

// WithLogger sets the logger
func WithLogger(l *logging.Logger) Option {
	return func(v *Verifier) { v.log = l }
}

// WithMetrics sets the metrics sink
func WithMetrics(m *metrics.Metrics) Option {
	return func(v *Verifier) { v.metrics = m }
}

// New creates a verifier; timeout bounds each HTTP link
func New(client Poster, endpoints Endpoints, timeout time.Duration, opts ...Option) *Verifier {
	v := &Verifier{
		client:    client,
		endpoints: endpoints,
		timeout:   timeout,
		log:       logging.Nop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

type verifyRequest struct {
	Text string `json:"text,omitempty"`
	URL  string `json:"url,omitempty"`
}

// Verify returns the first valid report produced by the chain for mode
func (v *Verifier) Verify(ctx context.Context, req model.VerificationRequest, mode model.Mode) (*model.StructuredReport, error) {
	chain, err := v.chain(req, mode)
	if err != nil {
		return nil, err
	}

	report, link, _, err := chain.Run(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		v.log.Warn("claim verification unavailable", "mode", mode, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}

	sanitizeReport(report)
	report.Mode = mode
	if report.Endpoint == "" {
		report.Endpoint = link
	}
	return report, nil
}

func (v *Verifier) chain(req model.VerificationRequest, mode model.Mode) (*fallback.Chain[*model.StructuredReport], error) {
	body := verifyRequest{Text: req.Text, URL: req.URL}

	var chain *fallback.Chain[*model.StructuredReport]
	switch mode {
	case model.ModeRule:
		chain = v.httpChain("rule", v.endpoints.Rule, body)
	case model.ModeLLM:
		chain = v.llmChain(body)
	case model.ModeHybrid:
		chain = v.httpChain("hybrid", v.endpoints.Hybrid, body)
		chain.Then("local-merge", func(ctx context.Context) (*model.StructuredReport, error) {
			return v.mergeLocal(ctx, body)
		})
	default:
		return nil, fmt.Errorf("%w: no structured verification for mode %q", model.ErrInvalidInput, mode)
	}

	return chain.Observe(v.observe), nil
}

func (v *Verifier) llmChain(body verifyRequest) *fallback.Chain[*model.StructuredReport] {
	chain := v.httpChain("llm", v.endpoints.LLM, body)
	if v.assessor != nil {
		chain.Then("assessor:"+v.assessor.Name(), func(ctx context.Context) (*model.StructuredReport, error) {
			return v.assessor.Assess(ctx, body.Text, body.URL)
		})
	}
	return chain
}

func (v *Verifier) httpChain(name string, endpoints []string, body verifyRequest) *fallback.Chain[*model.StructuredReport] {
	chain := fallback.New[*model.StructuredReport](name)
	for _, endpoint := range endpoints {
		chain.Then(endpoint, func(ctx context.Context) (*model.StructuredReport, error) {
			return v.post(ctx, endpoint, body)
		})
	}
	return chain
}

func (v *Verifier) post(ctx context.Context, endpoint string, body verifyRequest) (*model.StructuredReport, error) {
	var report model.StructuredReport
	if err := v.client.PostJSON(ctx, endpoint, v.timeout, body, &report); err != nil {
		return nil, err
	}
	for i := range report.Claims {
		if report.Claims[i].ID == 0 {
			report.Claims[i].ID = i + 1
		}
	}
	if err := report.Validate(); err != nil {
		return nil, provider.Malformed(endpoint, err)
	}
	report.Endpoint = endpoint
	return &report, nil
}

func (v *Verifier) observe(chain string, a fallback.Attempt) {
	v.metrics.FallbackAttempt(chain, a.Name, a.Err)
	if a.Err != nil {
		v.log.Debug("verification link failed", "chain", chain, "link", a.Name, "duration", a.Duration, "error", a.Err)
		return
	}
	v.log.Debug("verification link succeeded", "chain", chain, "link", a.Name, "duration", a.Duration)
}

// mergeLocal runs the rule and llm chains concurrently and merges their
// reports; both must succeed
func (v *Verifier) mergeLocal(ctx context.Context, body verifyRequest) (*model.StructuredReport, error) {
	var rule, llm *model.StructuredReport

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, _, _, err := v.httpChain("rule", v.endpoints.Rule, body).Observe(v.observe).Run(gCtx)
		rule = r
		return err
	})
	g.Go(func() error {
		r, _, _, err := v.llmChain(body).Observe(v.observe).Run(gCtx)
		llm = r
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := Merge(rule, llm)
	merged.Endpoint = "local-merge"
	return merged, nil
}

// Merge combines two reports: mean score (rounded) and confidence, claims
// concatenated and renumbered, reasoning concatenated, verdict re-derived
func Merge(a, b *model.StructuredReport) *model.StructuredReport {
	merged := &model.StructuredReport{
		CredibilityScore: int(math.Round(float64(a.CredibilityScore+b.CredibilityScore) / 2)),
		Confidence:       (a.Confidence + b.Confidence) / 2,
	}

	for _, r := range []*model.StructuredReport{a, b} {
		for _, c := range r.Claims {
			c.ID = len(merged.Claims) + 1
			merged.Claims = append(merged.Claims, c)
		}
		merged.Reasoning = append(merged.Reasoning, r.Reasoning...)
	}

	merged.Verdict = VerdictForScore(merged.CredibilityScore, len(merged.Claims))
	return merged
}

// VerdictForScore derives a verdict from a merged score
func VerdictForScore(score, claims int) model.Verdict {
	switch {
	case claims == 0:
		return model.VerdictUnverified
	case score >= 70:
		return model.VerdictReal
	case score >= 40:
		return model.VerdictMixed
	default:
		return model.VerdictLikelyFake
	}
}
