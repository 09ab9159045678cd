package model

import (
	"fmt"
	"time"
)

// Verdict is the overall verdict of a structured report
type Verdict string

const (
	VerdictReal       Verdict = "REAL"
	VerdictMixed      Verdict = "MIXED"
	VerdictLikelyFake Verdict = "LIKELY_FAKE"
	VerdictUnverified Verdict = "UNVERIFIED"
)

// Valid reports whether v is one of the known verdicts
func (v Verdict) Valid() bool {
	switch v {
	case VerdictReal, VerdictMixed, VerdictLikelyFake, VerdictUnverified:
		return true
	}
	return false
}

// StructuredReport is a claim-decomposed verification result
type StructuredReport struct {
	Verdict          Verdict       `json:"verdict"`
	CredibilityScore int           `json:"credibility_score"` // 0-100
	Confidence       float64       `json:"confidence"`        // 0..1
	Claims           []ClaimRecord `json:"claims"`
	Reasoning        []string      `json:"reasoning"`

	// Provenance, filled in by the verifier (not part of the downstream payload)
	Mode     Mode   `json:"mode,omitempty"`
	Endpoint string `json:"endpoint,omitempty"`
}

// Validate checks the invariants of a decoded report
func (r *StructuredReport) Validate() error {
	if !r.Verdict.Valid() {
		return fmt.Errorf("unknown verdict %q", r.Verdict)
	}
	if r.CredibilityScore < 0 || r.CredibilityScore > 100 {
		return fmt.Errorf("credibility_score %d out of range [0,100]", r.CredibilityScore)
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return fmt.Errorf("confidence %.3f out of range [0,1]", r.Confidence)
	}
	for _, c := range r.Claims {
		if !c.Judgement.Valid() {
			return fmt.Errorf("claim %d: unknown judgement %q", c.ID, c.Judgement)
		}
	}
	return nil
}

// CorroboratingSources counts distinct source URLs across all claims
func (r *StructuredReport) CorroboratingSources() int {
	seen := make(map[string]bool)
	for _, c := range r.Claims {
		for _, s := range c.Sources {
			if s.URL != "" {
				seen[s.URL] = true
			}
		}
	}
	return len(seen)
}

// CredibilityVerdict is the fused output returned for every verification
type CredibilityVerdict struct {
	Label        Label         `json:"label"`
	SafetyScore  int           `json:"safetyScore"`
	SourceStatus *SourceStatus `json:"sourceStatus,omitempty"`
	Reasons      []string      `json:"reasons"`
}

// Outcome is everything the orchestrator produces for one request.
// Exactly one of Verdict or Rejected is set.
type Outcome struct {
	Verdict  *CredibilityVerdict `json:"verdict,omitempty"`
	Report   *StructuredReport   `json:"structuredReport,omitempty"`
	Rejected *BlacklistEntry     `json:"blacklist,omitempty"`

	// Degraded lists the signals that fell back to a default
	Degraded []string `json:"degraded,omitempty"`

	Classifier ClassifierResult   `json:"-"`
	Source     *SourceTrustResult `json:"-"`
	Duration   time.Duration      `json:"-"`
}

// IsRejected reports whether the request was short-circuited by the blacklist
func (o *Outcome) IsRejected() bool {
	return o != nil && o.Rejected != nil
}
