package verify

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/ppiankov/credence/internal/model"
)

// Reports quote scraped pages; strip markup before they reach API clients
var strict = bluemonday.StrictPolicy()

func sanitizeReport(r *model.StructuredReport) {
	for i := range r.Claims {
		r.Claims[i].ClaimText = clean(r.Claims[i].ClaimText)
		for j := range r.Claims[i].Sources {
			r.Claims[i].Sources[j].Snippet = clean(r.Claims[i].Sources[j].Snippet)
		}
	}
	for i := range r.Reasoning {
		r.Reasoning[i] = clean(r.Reasoning[i])
	}
}

// clean removes tags. Text without '<' carries no markup and is returned as
// is; the policy entity-escapes what it keeps, so the output is unescaped to
// plain text again.
func clean(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}
