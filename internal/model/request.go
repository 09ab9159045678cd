package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidInput is returned before any downstream call when a request is malformed
var ErrInvalidInput = errors.New("invalid input")

// Mode selects which structured verification chain to run
type Mode string

const (
	ModeNone   Mode = ""
	ModeRule   Mode = "rule"
	ModeLLM    Mode = "llm"
	ModeHybrid Mode = "hybrid"
)

// ParseMode parses a mode flag; empty and "none" disable structured reporting
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return ModeNone, nil
	case "rule", "structured":
		return ModeRule, nil
	case "llm":
		return ModeLLM, nil
	case "hybrid":
		return ModeHybrid, nil
	}
	return ModeNone, fmt.Errorf("%w: unknown mode %q (supported: rule, llm, hybrid)", ErrInvalidInput, s)
}

// Origin records where the claim text came from
type Origin string

const (
	OriginText  Origin = "text"
	OriginURL   Origin = "url"
	OriginImage Origin = "image" // text was extracted from an image upstream
)

// VerificationRequest is the input of one verification
type VerificationRequest struct {
	Text   string `json:"text,omitempty"`
	URL    string `json:"url,omitempty"`
	Mode   Mode   `json:"mode,omitempty"`
	Origin Origin `json:"origin,omitempty"`
	UserID string `json:"-"`
}

// Normalize trims fields and fills in a default origin
func (r *VerificationRequest) Normalize() {
	r.Text = strings.TrimSpace(r.Text)
	r.URL = strings.TrimSpace(r.URL)
	if r.Origin == "" {
		if r.Text == "" && r.URL != "" {
			r.Origin = OriginURL
		} else {
			r.Origin = OriginText
		}
	}
}

// HasURL reports whether a source URL was supplied
func (r *VerificationRequest) HasURL() bool {
	return strings.TrimSpace(r.URL) != ""
}
