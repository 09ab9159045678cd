package classify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ppiankov/credence/internal/model"
	"github.com/ppiankov/credence/internal/provider"
)

func TestCombined_Analyze(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in combinedRequest
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.URL != "https://news.example.com/a" {
			t.Errorf("expected URL to be forwarded, got %q", in.URL)
		}
		_, _ = w.Write([]byte(`{"label":"Fake","confidence":0.7,"source_status":"Suspicious","source_summary":"Website contains 2 suspicious keywords."}`))
	}))
	defer server.Close()

	c := NewCombined(provider.NewClient(server.URL), "/analyze-news", time.Second)
	classifier, source, err := c.Analyze(context.Background(), "claim", "https://news.example.com/a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if classifier.Label != model.LabelFake || classifier.Confidence != 0.7 {
		t.Errorf("unexpected classifier result: %+v", classifier)
	}
	if source.Status != model.SourceSuspicious || source.Summary != "Website contains 2 suspicious keywords." {
		t.Errorf("unexpected source result: %+v", source)
	}
}

func TestCombined_NoURLIsUnverified(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"label":"Real","confidence":0.9,"source_status":"Unverified","source_summary":"No source URL provided"}`))
	}))
	defer server.Close()

	c := NewCombined(provider.NewClient(server.URL), "/analyze-news", time.Second)
	_, source, err := c.Analyze(context.Background(), "claim", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if source.Status != model.SourceUnverified {
		t.Errorf("expected Unverified, got %s", source.Status)
	}
}

func TestCombined_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
		url  string
	}{
		{"bad label", `{"label":"Unknown","confidence":0.5,"source_status":"Safe"}`, ""},
		{"unverified with url", `{"label":"Real","confidence":0.5,"source_status":"Unverified"}`, "https://a.example"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := NewCombined(provider.NewClient(server.URL), "/analyze-news", time.Second)
			if _, _, err := c.Analyze(context.Background(), "claim", tt.url); !errors.Is(err, provider.ErrMalformed) {
				t.Errorf("expected ErrMalformed, got %v", err)
			}
		})
	}
}
