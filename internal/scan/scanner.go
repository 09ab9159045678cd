// Package scan produces the source trust signal for a URL.
//
// Unlike the classifier, a failed scan is pessimistic: an unreachable source
// is reported as Suspicious.
package scan

import (
	"context"
	"time"

	"github.com/ppiankov/credence/internal/logging"
	"github.com/ppiankov/credence/internal/metrics"
	"github.com/ppiankov/credence/internal/model"
)

const (
	summaryNoURL  = "No source URL provided"
	summaryFailed = "Source verification failed: "
)

// Prober inspects a source URL
type Prober interface {
	Probe(ctx context.Context, url string) (model.SourceTrustResult, error)
}

// Scanner wraps a Prober with a timeout and the failure policy
type Scanner struct {
	prober  Prober
	timeout time.Duration
	log     *logging.Logger
	metrics *metrics.Metrics
}

// New creates a scanner
func New(prober Prober, timeout time.Duration, log *logging.Logger, m *metrics.Metrics) *Scanner {
	if log == nil {
		log = logging.Nop()
	}
	return &Scanner{prober: prober, timeout: timeout, log: log, metrics: m}
}

// Scan never fails: no URL yields Unverified, any probe error yields Suspicious
func (s *Scanner) Scan(ctx context.Context, url string) model.SourceTrustResult {
	if url == "" {
		return Unverified()
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	result, err := s.prober.Probe(ctx, url)
	if err != nil {
		s.log.Warn("source scan degraded", "url", url, "reason", err)
		s.metrics.Degraded("scanner")
		return Failed(err)
	}
	return result
}

// Unverified is the result for requests without a source URL
func Unverified() model.SourceTrustResult {
	return model.SourceTrustResult{Status: model.SourceUnverified, Summary: summaryNoURL}
}

// Failed is the pessimistic result substituted when a scan fails
func Failed(err error) model.SourceTrustResult {
	return model.SourceTrustResult{
		Status:  model.SourceSuspicious,
		Summary: summaryFailed + err.Error(),
		Error:   err.Error(),
	}
}
