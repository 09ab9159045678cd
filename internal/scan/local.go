package scan

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/credence/internal/extract"
	"github.com/ppiankov/credence/internal/model"
)

// keywordWindow is how much of the page text is searched for keywords
const keywordWindow = 1000

// suspiciousThreshold is the keyword count at which a page is Suspicious
const suspiciousThreshold = 2

var suspiciousKeywords = []string{
	"phishing", "scam", "malware", "virus", "free money",
	"click here", "urgent", "verify now", "password expired",
}

// PageFetcher fetches and parses a page
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) (*extract.Page, error)
}

// LocalProber applies keyword and markup heuristics in-process
type LocalProber struct {
	pages PageFetcher
}

// NewLocalProber creates a prober that fetches pages itself
func NewLocalProber(pages PageFetcher) *LocalProber {
	return &LocalProber{pages: pages}
}

// Probe fetches url and scores its content
func (p *LocalProber) Probe(ctx context.Context, url string) (model.SourceTrustResult, error) {
	page, err := p.pages.FetchPage(ctx, url)
	if err != nil {
		return model.SourceTrustResult{}, err
	}
	return Assess(page), nil
}

// Assess scores an already fetched page
func Assess(page *extract.Page) model.SourceTrustResult {
	count := countKeywords(page.Text)

	result := model.SourceTrustResult{
		Status:                 model.SourceSafe,
		Summary:                "Website appears safe.",
		SuspiciousKeywordCount: count,
		AdsCount:               page.AdSlots,
		IframesCount:           page.Iframes,
		ExternalScriptCount:    page.ExternalScripts(),
	}
	if count >= suspiciousThreshold {
		result.Status = model.SourceSuspicious
		result.Summary = fmt.Sprintf("Website contains %d suspicious keywords.", count)
	}
	return result
}

func countKeywords(text string) int {
	runes := []rune(text)
	if len(runes) > keywordWindow {
		runes = runes[:keywordWindow]
	}
	window := strings.ToLower(string(runes))

	count := 0
	for _, k := range suspiciousKeywords {
		if strings.Contains(window, k) {
			count++
		}
	}
	return count
}
