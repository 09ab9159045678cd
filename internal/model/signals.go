package model

// Label is the binary output of the text classifier
type Label string

const (
	LabelReal Label = "Real"
	LabelFake Label = "Fake"
)

// ClassifierResult is the normalized classifier output for one request
type ClassifierResult struct {
	Label      Label   `json:"label"`
	Confidence float64 `json:"confidence"` // 0..1

	// Error records why the safe default was substituted
	Error  string `json:"error,omitempty"`
	Cached bool   `json:"cached,omitempty"`
}

// Degraded reports whether the result is the safe default substituted on failure
func (r ClassifierResult) Degraded() bool {
	return r.Error != ""
}

// SafeClassifierDefault is returned whenever the classifier cannot be consulted
func SafeClassifierDefault(reason string) ClassifierResult {
	return ClassifierResult{
		Label:      LabelReal,
		Confidence: 0.0,
		Error:      reason,
	}
}

// SourceStatus is the trust classification of a source URL
type SourceStatus string

const (
	SourceSafe       SourceStatus = "Safe"
	SourceSuspicious SourceStatus = "Suspicious"
	SourceUnverified SourceStatus = "Unverified"
)

// SourceTrustResult is the outcome of a source heuristics scan
type SourceTrustResult struct {
	Status                 SourceStatus `json:"status"`
	Summary                string       `json:"summary"`
	SuspiciousKeywordCount int          `json:"suspicious_keywords_found"`
	AdsCount               int          `json:"ads_count"`
	IframesCount           int          `json:"iframes_count"`
	ExternalScriptCount    int          `json:"external_scripts"`
	Error                  string       `json:"error,omitempty"`
}

// Degraded reports whether the result was substituted after a scan failure
func (r SourceTrustResult) Degraded() bool {
	return r.Error != ""
}
