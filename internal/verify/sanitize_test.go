package verify

import (
	"testing"

	"github.com/ppiankov/credence/internal/model"
)

func TestSanitizeReport(t *testing.T) {
	r := &model.StructuredReport{
		Claims: []model.ClaimRecord{{
			ID:        1,
			ClaimText: `<b>Mayor</b> resigned <script>alert(1)</script>`,
			Judgement: model.JudgementSupported,
			Sources:   []model.ClaimSource{{URL: "https://a.example/1", Snippet: `<a href="x">Mayor steps down</a>`}},
		}},
		Reasoning: []string{"plain text stays", `<img src=x onerror=alert(1)>flagged`},
	}

	sanitizeReport(r)

	if got := r.Claims[0].ClaimText; got != "Mayor resigned" {
		t.Errorf("Expected markup stripped from claim, got %q", got)
	}
	if got := r.Claims[0].Sources[0].Snippet; got != "Mayor steps down" {
		t.Errorf("Expected markup stripped from snippet, got %q", got)
	}
	if r.Claims[0].Sources[0].URL != "https://a.example/1" {
		t.Error("source URL must not change")
	}
	if r.Reasoning[0] != "plain text stays" || r.Reasoning[1] != "flagged" {
		t.Errorf("unexpected reasoning: %q", r.Reasoning)
	}
}

func TestSanitizeReport_KeepsPunctuation(t *testing.T) {
	r := &model.StructuredReport{
		Claims: []model.ClaimRecord{{
			ID:        1,
			ClaimText: `AT&T said "rates won't rise"`,
			Sources:   []model.ClaimSource{{URL: "https://a.example/1", Snippet: `<b>AT&amp;T</b> cuts "legacy" plans`}},
		}},
		Reasoning: []string{`5 < 7 & Biden's plan`, `Q&A: "it's fine"`},
	}

	sanitizeReport(r)

	if got, want := r.Claims[0].ClaimText, `AT&T said "rates won't rise"`; got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
	if got, want := r.Claims[0].Sources[0].Snippet, `AT&T cuts "legacy" plans`; got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
	if got, want := r.Reasoning[0], `5 < 7 & Biden's plan`; got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
	if got, want := r.Reasoning[1], `Q&A: "it's fine"`; got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}
