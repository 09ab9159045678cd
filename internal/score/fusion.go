// Package score fuses the classifier and source trust signals into the
// safety score and builds the ordered explanation for it.
package score

import (
	"math"

	"github.com/ppiankov/credence/internal/model"
)

// Fixed contract thresholds
const (
	SuspiciousCeiling   = 35
	LowRangeMax         = 40
	UncertainConfidence = 50
	ModerateConfidence  = 65
	SafeFloor           = 85
)

// Reason texts
const (
	ReasonSuspiciousSource   = "Website scan signals low credibility."
	ReasonUnverifiedSource   = "Insufficient corroboration - source not verified."
	ReasonNoCorroboration    = "No corroborating articles found."
	ReasonLimitedCorroborate = "Limited number of corroborating articles identified."
	ReasonLowConfidence      = "Classifier confidence below 50% indicates uncertainty."
	ReasonModerateConfidence = "Moderate classifier confidence with weak corroboration."
	ReasonImageOnly          = "Image-based analysis without a direct URL reduces verifiability."
	ReasonLowRange           = "Overall credibility falls in the Low range."
	ReasonAdequate           = "Credibility appears adequate based on current signals."
)

// Input holds the signals of one request
type Input struct {
	Classifier model.ClassifierResult

	// Source is nil when no source status is available (image-derived text
	// without a URL)
	Source *model.SourceTrustResult

	// Corroborating is nil unless a structured report was requested
	Corroborating *int
}

// Fuse computes the credibility verdict. It is a pure function of in.
func Fuse(in Input) model.CredibilityVerdict {
	score := SafetyScore(in)

	verdict := model.CredibilityVerdict{
		Label:       in.Classifier.Label,
		SafetyScore: score,
		Reasons:     Reasons(in, score),
	}
	if verdict.Label == "" {
		verdict.Label = model.LabelReal
	}
	if in.Source != nil {
		status := in.Source.Status
		verdict.SourceStatus = &status
	}
	return verdict
}

// SafetyScore applies the source floor or ceiling to the classifier confidence
func SafetyScore(in Input) int {
	s := int(math.Round(in.Classifier.Confidence * 100))

	if in.Source != nil {
		switch in.Source.Status {
		case model.SourceSafe:
			s = max(s, SafeFloor)
		case model.SourceSuspicious:
			s = min(s, SuspiciousCeiling)
		}
	}

	return max(0, min(100, s))
}

// Reasons builds the ordered, never empty explanation for a fused score
func Reasons(in Input, score int) []string {
	var reasons []string

	var status model.SourceStatus
	if in.Source != nil {
		status = in.Source.Status
	}

	switch status {
	case model.SourceSuspicious:
		reasons = append(reasons, ReasonSuspiciousSource)
	case model.SourceUnverified:
		reasons = append(reasons, ReasonUnverifiedSource)
	}

	if in.Source != nil && in.Source.Summary != "" {
		reasons = append(reasons, in.Source.Summary)
	}

	if in.Corroborating != nil {
		switch n := *in.Corroborating; {
		case n == 0:
			reasons = append(reasons, ReasonNoCorroboration)
		case n <= 2:
			reasons = append(reasons, ReasonLimitedCorroborate)
		}
	}

	confidence := in.Classifier.Confidence * 100
	if confidence < UncertainConfidence {
		reasons = append(reasons, ReasonLowConfidence)
	} else if confidence < ModerateConfidence && status != model.SourceSafe {
		reasons = append(reasons, ReasonModerateConfidence)
	}

	if in.Source == nil {
		reasons = append(reasons, ReasonImageOnly)
	}

	if score <= LowRangeMax {
		reasons = append(reasons, ReasonLowRange)
	}

	if len(reasons) == 0 {
		reasons = append(reasons, ReasonAdequate)
	}
	return reasons
}
