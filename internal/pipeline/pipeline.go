// Package pipeline orchestrates one verification: blacklist short-circuit,
// concurrent signal collection, score fusion and the blacklist write-back.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/credence/internal/blacklist"
	"github.com/ppiankov/credence/internal/fallback"
	"github.com/ppiankov/credence/internal/logging"
	"github.com/ppiankov/credence/internal/metrics"
	"github.com/ppiankov/credence/internal/model"
	"github.com/ppiankov/credence/internal/score"
	"github.com/ppiankov/credence/internal/util"
	"github.com/ppiankov/credence/internal/verify"
)

// BlacklistThreshold is the structured credibility score below which a URL
// is blacklisted
const BlacklistThreshold = 40

// Classifier labels text; it never fails
type Classifier interface {
	Classify(ctx context.Context, text string) model.ClassifierResult
}

// Scanner rates a source URL; it never fails
type Scanner interface {
	Scan(ctx context.Context, url string) model.SourceTrustResult
}

// CombinedAnalyzer returns both signals in one downstream call
type CombinedAnalyzer interface {
	Analyze(ctx context.Context, text, url string) (model.ClassifierResult, model.SourceTrustResult, error)
}

// ClaimVerifier produces structured reports
type ClaimVerifier interface {
	Verify(ctx context.Context, req model.VerificationRequest, mode model.Mode) (*model.StructuredReport, error)
}

// TextExtractor fetches readable text for URL-only requests
type TextExtractor interface {
	ExtractText(ctx context.Context, url string) (string, error)
}

// Orchestrator runs verifications. It is safe for concurrent use.
type Orchestrator struct {
	store      *blacklist.Store
	classifier Classifier
	scanner    Scanner

	combined  CombinedAnalyzer
	verifier  ClaimVerifier
	extractor TextExtractor

	log     *logging.Logger
	metrics *metrics.Metrics
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithCombined tries the combined analysis endpoint before the granular calls
func WithCombined(c CombinedAnalyzer) Option {
	return func(o *Orchestrator) { o.combined = c }
}

// WithVerifier enables structured reports
func WithVerifier(v ClaimVerifier) Option {
	return func(o *Orchestrator) { o.verifier = v }
}

// WithExtractor enables text extraction for URL-only requests
func WithExtractor(e TextExtractor) Option {
	return func(o *Orchestrator) { o.extractor = e }
}

// WithLogger sets the logger
func WithLogger(l *logging.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

// WithMetrics sets the metrics sink
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// NewOrchestrator creates an orchestrator around the shared blacklist store
func NewOrchestrator(store *blacklist.Store, classifier Classifier, scanner Scanner, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:      store,
		classifier: classifier,
		scanner:    scanner,
		log:        logging.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// signals is the fan-in of the classifier and source scan
type signals struct {
	classifier model.ClassifierResult
	source     *model.SourceTrustResult
	degraded   []string
}

// Verify runs one request to completion. A blacklisted URL yields an
// Outcome with Rejected set and no error. Errors are ErrInvalidInput,
// verify.ErrServiceUnavailable or the context's error.
func (o *Orchestrator) Verify(ctx context.Context, req model.VerificationRequest) (*model.Outcome, error) {
	start := time.Now()
	req.Normalize()

	outcome, err := o.verify(ctx, req)
	o.metrics.ObserveRequest(modeLabel(req.Mode), outcomeLabel(outcome, err), time.Since(start))
	if outcome != nil {
		outcome.Duration = time.Since(start)
	}
	return outcome, err
}

func (o *Orchestrator) verify(ctx context.Context, req model.VerificationRequest) (*model.Outcome, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	if req.HasURL() {
		entry, err := o.store.Get(ctx, req.URL)
		if err != nil {
			o.log.Warn("blacklist lookup failed", "url", req.URL, "error", err)
		}
		if entry != nil {
			o.metrics.BlacklistHit()
			o.log.Info("request rejected by blacklist", "url", entry.NormalizedURL, "score", entry.CredibilityScore)
			return &model.Outcome{Rejected: entry}, nil
		}
	}

	var (
		sig    signals
		report *model.StructuredReport
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sig = o.collectSignals(gCtx, req)
		return nil
	})
	if req.Mode != model.ModeNone {
		g.Go(func() error {
			if o.verifier == nil {
				return fmt.Errorf("%w: structured verification is not configured", verify.ErrServiceUnavailable)
			}
			r, err := o.verifier.Verify(gCtx, req, req.Mode)
			report = r
			return err
		})
	}
	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	in := score.Input{Classifier: sig.classifier, Source: sig.source}
	if report != nil {
		n := report.CorroboratingSources()
		in.Corroborating = &n
	}
	verdict := score.Fuse(in)

	outcome := &model.Outcome{
		Verdict:    &verdict,
		Report:     report,
		Degraded:   sig.degraded,
		Classifier: sig.classifier,
		Source:     sig.source,
	}

	o.maybeBlacklist(ctx, req, report)
	return outcome, nil
}

// Validate rejects requests that cannot be verified
func Validate(req model.VerificationRequest) error {
	if !req.HasURL() && req.Text == "" {
		return fmt.Errorf("%w: text or url is required", model.ErrInvalidInput)
	}
	if req.HasURL() {
		if err := util.ValidateSourceURL(req.URL); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) collectSignals(ctx context.Context, req model.VerificationRequest) signals {
	text := req.Text
	extractFailed := false
	if text == "" && req.HasURL() && o.extractor != nil {
		extracted, err := o.extractor.ExtractText(ctx, req.URL)
		if err != nil {
			o.log.Warn("text extraction failed", "url", req.URL, "error", err)
			o.metrics.Degraded("extract")
			extractFailed = true
		}
		text = extracted
	}

	noSource := req.Origin == model.OriginImage && !req.HasURL()

	chain := fallback.New[signals]("signals")
	if o.combined != nil && text != "" {
		chain.Then("combined", func(ctx context.Context) (signals, error) {
			c, s, err := o.combined.Analyze(ctx, text, req.URL)
			if err != nil {
				return signals{}, err
			}
			return signals{classifier: c, source: &s}, nil
		})
	}
	chain.Then("granular", func(ctx context.Context) (signals, error) {
		return o.granular(ctx, text, req.URL, noSource), nil
	})

	sig, _, _, err := chain.Observe(o.observe).Run(ctx)
	if err != nil {
		// Only cancellation stops the chain; the caller checks ctx
		sig = signals{classifier: model.SafeClassifierDefault(err.Error())}
	}

	if noSource {
		sig.source = nil
	}
	if extractFailed {
		sig.degraded = append(sig.degraded, "extract")
	}
	if sig.classifier.Degraded() {
		sig.degraded = append(sig.degraded, "classifier")
	}
	if sig.source != nil && sig.source.Degraded() {
		sig.degraded = append(sig.degraded, "scanner")
	}
	return sig
}

// granular issues the classifier and scanner calls concurrently
func (o *Orchestrator) granular(ctx context.Context, text, url string, noSource bool) signals {
	var sig signals

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sig.classifier = o.classifier.Classify(gCtx, text)
		return nil
	})
	if !noSource {
		g.Go(func() error {
			s := o.scanner.Scan(gCtx, url)
			sig.source = &s
			return nil
		})
	}
	_ = g.Wait()

	return sig
}

func (o *Orchestrator) observe(chain string, a fallback.Attempt) {
	o.metrics.FallbackAttempt(chain, a.Name, a.Err)
	if a.Err != nil {
		o.log.Debug("signal link failed", "chain", chain, "link", a.Name, "duration", a.Duration, "error", a.Err)
	}
}

// maybeBlacklist records URLs whose structured report scored below the
// threshold. Nothing is written once ctx is done.
func (o *Orchestrator) maybeBlacklist(ctx context.Context, req model.VerificationRequest, report *model.StructuredReport) {
	if report == nil || !req.HasURL() || report.CredibilityScore >= BlacklistThreshold {
		return
	}
	if ctx.Err() != nil {
		return
	}

	entry, err := o.store.Blacklist(ctx, req.URL, report.CredibilityScore, model.BlacklistSourceStructured, model.ReasonBelowThreshold)
	if err != nil {
		o.log.Error("blacklist write failed", "url", req.URL, "error", err)
		return
	}
	o.metrics.BlacklistWrite(string(entry.Source))
	o.log.Info("url blacklisted", "url", entry.NormalizedURL, "score", entry.CredibilityScore, "source", entry.Source)
}

func modeLabel(m model.Mode) string {
	if m == model.ModeNone {
		return "none"
	}
	return string(m)
}

func outcomeLabel(outcome *model.Outcome, err error) string {
	switch {
	case err == nil && outcome.IsRejected():
		return "rejected"
	case err == nil:
		return "ok"
	case errors.Is(err, model.ErrInvalidInput):
		return "invalid"
	case errors.Is(err, verify.ErrServiceUnavailable):
		return "unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	}
	return "error"
}
