package score

import (
	"reflect"
	"testing"

	"github.com/ppiankov/credence/internal/model"
)

func intPtr(n int) *int { return &n }

func source(status model.SourceStatus, summary string) *model.SourceTrustResult {
	return &model.SourceTrustResult{Status: status, Summary: summary}
}

func TestFuse_TextWithoutURL(t *testing.T) {
	verdict := Fuse(Input{
		Classifier: model.ClassifierResult{Label: model.LabelReal, Confidence: 0.92},
		Source:     source(model.SourceUnverified, "No source URL provided"),
	})

	if verdict.SafetyScore != 92 {
		t.Errorf("Expected score 92, got %d", verdict.SafetyScore)
	}
	if verdict.SourceStatus == nil || *verdict.SourceStatus != model.SourceUnverified {
		t.Errorf("Expected Unverified status, got %v", verdict.SourceStatus)
	}
	want := []string{ReasonUnverifiedSource, "No source URL provided"}
	if !reflect.DeepEqual(verdict.Reasons, want) {
		t.Errorf("Unexpected reasons:\n got %q\nwant %q", verdict.Reasons, want)
	}
}

func TestFuse_SuspiciousSourceCapsScore(t *testing.T) {
	verdict := Fuse(Input{
		Classifier: model.ClassifierResult{Label: model.LabelFake, Confidence: 0.80},
		Source:     source(model.SourceSuspicious, "contains urgent/free-money keywords"),
	})

	if verdict.SafetyScore != 35 {
		t.Errorf("Expected capped score 35, got %d", verdict.SafetyScore)
	}
	if verdict.Label != model.LabelFake {
		t.Errorf("Expected label Fake, got %s", verdict.Label)
	}
	want := []string{
		ReasonSuspiciousSource,
		"contains urgent/free-money keywords",
		ReasonLowRange,
	}
	if !reflect.DeepEqual(verdict.Reasons, want) {
		t.Errorf("Unexpected reasons:\n got %q\nwant %q", verdict.Reasons, want)
	}
}

func TestFuse_SafeSourceFloor(t *testing.T) {
	verdict := Fuse(Input{
		Classifier: model.ClassifierResult{Label: model.LabelFake, Confidence: 0.10},
		Source:     source(model.SourceSafe, ""),
	})

	if verdict.SafetyScore != 85 {
		t.Errorf("Expected floor 85, got %d", verdict.SafetyScore)
	}
	want := []string{ReasonLowConfidence}
	if !reflect.DeepEqual(verdict.Reasons, want) {
		t.Errorf("Unexpected reasons: %q", verdict.Reasons)
	}
}

func TestFuse_ImageWithoutURL(t *testing.T) {
	verdict := Fuse(Input{
		Classifier: model.ClassifierResult{Label: model.LabelReal, Confidence: 0.92},
	})

	if verdict.SafetyScore != 92 {
		t.Errorf("Expected raw score 92, got %d", verdict.SafetyScore)
	}
	if verdict.SourceStatus != nil {
		t.Errorf("Expected no source status, got %v", *verdict.SourceStatus)
	}
	want := []string{ReasonImageOnly}
	if !reflect.DeepEqual(verdict.Reasons, want) {
		t.Errorf("Unexpected reasons: %q", verdict.Reasons)
	}
}

func TestFuse_Adequate(t *testing.T) {
	verdict := Fuse(Input{
		Classifier: model.ClassifierResult{Label: model.LabelReal, Confidence: 0.9},
		Source:     source(model.SourceSafe, ""),
	})

	want := []string{ReasonAdequate}
	if !reflect.DeepEqual(verdict.Reasons, want) {
		t.Errorf("Expected only the adequate reason, got %q", verdict.Reasons)
	}
}

func TestReasons_Order(t *testing.T) {
	in := Input{
		Classifier:    model.ClassifierResult{Label: model.LabelReal, Confidence: 0.55},
		Source:        source(model.SourceSuspicious, "Website contains 3 suspicious keywords."),
		Corroborating: intPtr(0),
	}

	got := Fuse(in).Reasons
	want := []string{
		ReasonSuspiciousSource,
		"Website contains 3 suspicious keywords.",
		ReasonNoCorroboration,
		ReasonModerateConfidence,
		ReasonLowRange,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Unexpected reason order:\n got %q\nwant %q", got, want)
	}
}

func TestReasons_Corroboration(t *testing.T) {
	tests := []struct {
		name  string
		count *int
		want  string
	}{
		{"not requested", nil, ""},
		{"none", intPtr(0), ReasonNoCorroboration},
		{"one", intPtr(1), ReasonLimitedCorroborate},
		{"two", intPtr(2), ReasonLimitedCorroborate},
		{"three", intPtr(3), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reasons := Reasons(Input{
				Classifier:    model.ClassifierResult{Confidence: 0.9},
				Source:        source(model.SourceSafe, ""),
				Corroborating: tt.count,
			}, 90)

			found := ""
			for _, r := range reasons {
				if r == ReasonNoCorroboration || r == ReasonLimitedCorroborate {
					found = r
				}
			}
			if found != tt.want {
				t.Errorf("Expected %q, got %q (all: %q)", tt.want, found, reasons)
			}
		})
	}
}

func TestReasons_ModerateConfidenceNotForSafeSource(t *testing.T) {
	reasons := Reasons(Input{
		Classifier: model.ClassifierResult{Confidence: 0.6},
		Source:     source(model.SourceSafe, ""),
	}, 85)

	for _, r := range reasons {
		if r == ReasonModerateConfidence {
			t.Error("Moderate confidence reason must not fire for a Safe source")
		}
	}
}

func TestSafetyScore_Properties(t *testing.T) {
	statuses := []*model.SourceTrustResult{
		nil,
		source(model.SourceSafe, ""),
		source(model.SourceSuspicious, ""),
		source(model.SourceUnverified, ""),
	}

	for c := 0; c <= 100; c++ {
		conf := float64(c) / 100
		for _, src := range statuses {
			in := Input{Classifier: model.ClassifierResult{Confidence: conf}, Source: src}
			s := SafetyScore(in)

			if s < 0 || s > 100 {
				t.Fatalf("score %d out of range for confidence %.2f", s, conf)
			}
			if src != nil && src.Status == model.SourceSafe && s < SafeFloor {
				t.Fatalf("Safe source scored %d for confidence %.2f", s, conf)
			}
			if src != nil && src.Status == model.SourceSuspicious && s > SuspiciousCeiling {
				t.Fatalf("Suspicious source scored %d for confidence %.2f", s, conf)
			}

			reasons := Reasons(in, s)
			if len(reasons) == 0 {
				t.Fatalf("empty reasons for confidence %.2f", conf)
			}
			for _, r := range reasons {
				if r == ReasonAdequate && len(reasons) != 1 {
					t.Fatalf("adequate reason mixed with others: %q", reasons)
				}
			}
		}
	}
}

func TestSafetyScore_ClampsOutOfRangeConfidence(t *testing.T) {
	if s := SafetyScore(Input{Classifier: model.ClassifierResult{Confidence: 1.4}}); s != 100 {
		t.Errorf("Expected clamp to 100, got %d", s)
	}
	if s := SafetyScore(Input{Classifier: model.ClassifierResult{Confidence: -0.2}}); s != 0 {
		t.Errorf("Expected clamp to 0, got %d", s)
	}
}
