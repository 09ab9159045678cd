package model

// Judgement is the corroboration outcome for a single decomposed claim
type Judgement string

const (
	JudgementSupported    Judgement = "Supported"
	JudgementUnverified   Judgement = "Unverified"
	JudgementContradicted Judgement = "Contradicted"
)

// Valid reports whether j is one of the known judgements
func (j Judgement) Valid() bool {
	switch j {
	case JudgementSupported, JudgementUnverified, JudgementContradicted:
		return true
	}
	return false
}

// ClaimSource is a corroborating (or contradicting) article found for a claim
type ClaimSource struct {
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

// ClaimRecord represents one sub-claim of a structured report
type ClaimRecord struct {
	ID        int           `json:"id"`
	ClaimText string        `json:"claim_text"`
	Judgement Judgement     `json:"judgement"`
	Sources   []ClaimSource `json:"sources"`
}
