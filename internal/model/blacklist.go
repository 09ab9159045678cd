package model

import "time"

// BlacklistSource records which analysis put a URL on the blacklist
type BlacklistSource string

const (
	BlacklistSourceStructured  BlacklistSource = "structured"
	BlacklistSourceFactChecker BlacklistSource = "fact_checker"
)

// ReasonBelowThreshold is the reason recorded for automatic blacklisting
const ReasonBelowThreshold = "credibility_score_below_threshold"

// BlacklistEntry is the record stored for a blacklisted URL
type BlacklistEntry struct {
	NormalizedURL    string          `json:"url"`
	CredibilityScore int             `json:"credibility_score"`
	Source           BlacklistSource `json:"source"`
	Reason           string          `json:"reason"`
	Timestamp        time.Time       `json:"timestamp"`
}
