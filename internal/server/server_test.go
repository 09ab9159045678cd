package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/credence/internal/blacklist"
	"github.com/ppiankov/credence/internal/metrics"
	"github.com/ppiankov/credence/internal/model"
	"github.com/ppiankov/credence/internal/verify"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type verifierFunc func(ctx context.Context, req model.VerificationRequest) (*model.Outcome, error)

func (f verifierFunc) Verify(ctx context.Context, req model.VerificationRequest) (*model.Outcome, error) {
	return f(ctx, req)
}

func okOutcome() *model.Outcome {
	status := model.SourceSafe
	return &model.Outcome{
		Verdict: &model.CredibilityVerdict{
			Label:        model.LabelReal,
			SafetyScore:  88,
			SourceStatus: &status,
			Reasons:      []string{"Credibility appears adequate based on current signals."},
		},
	}
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestVerify_OK(t *testing.T) {
	var got model.VerificationRequest
	s := New(verifierFunc(func(ctx context.Context, req model.VerificationRequest) (*model.Outcome, error) {
		got = req
		return okOutcome(), nil
	}), blacklist.NewMemoryStore())

	w := do(t, s.Handler(), http.MethodPost, "/api/v1/verify", `{"text":"claim","sourceUrl":"https://a.example/x","mode":"rule"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://a.example/x", got.URL)
	assert.Equal(t, model.ModeRule, got.Mode)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "Real", resp["label"])
	assert.Equal(t, float64(88), resp["safetyScore"])
	assert.Equal(t, "Safe", resp["sourceStatus"])
	assert.NotContains(t, resp, "structuredReport")
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func TestVerify_Blacklisted(t *testing.T) {
	store := blacklist.NewMemoryStore()
	entry, err := store.Blacklist(context.Background(), "https://bad.example/a", 22, model.BlacklistSourceStructured, model.ReasonBelowThreshold)
	require.NoError(t, err)

	s := New(verifierFunc(func(ctx context.Context, req model.VerificationRequest) (*model.Outcome, error) {
		return &model.Outcome{Rejected: entry}, nil
	}), store)

	w := do(t, s.Handler(), http.MethodPost, "/api/v1/verify", `{"url":"https://bad.example/a?utm_source=x"}`)

	require.Equal(t, http.StatusForbidden, w.Code)
	var resp struct {
		Success   bool   `json:"success"`
		Message   string `json:"message"`
		Blacklist struct {
			CredibilityScore int    `json:"credibility_score"`
			Source           string `json:"source"`
			Reason           string `json:"reason"`
		} `json:"blacklist"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, blacklistedMessage, resp.Message)
	assert.Equal(t, 22, resp.Blacklist.CredibilityScore)
	assert.Equal(t, "structured", resp.Blacklist.Source)
	assert.Equal(t, model.ReasonBelowThreshold, resp.Blacklist.Reason)
}

func TestVerify_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid", model.ErrInvalidInput, http.StatusBadRequest},
		{"unavailable", errors.Join(verify.ErrServiceUnavailable, errors.New("rule: down")), http.StatusServiceUnavailable},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(verifierFunc(func(ctx context.Context, req model.VerificationRequest) (*model.Outcome, error) {
				return nil, tt.err
			}), blacklist.NewMemoryStore())

			w := do(t, s.Handler(), http.MethodPost, "/api/v1/verify", `{"text":"claim"}`)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), `"success":false`)
		})
	}
}

func TestVerify_BadBody(t *testing.T) {
	called := false
	s := New(verifierFunc(func(ctx context.Context, req model.VerificationRequest) (*model.Outcome, error) {
		called = true
		return okOutcome(), nil
	}), blacklist.NewMemoryStore())

	for _, body := range []string{`not json`, `{"text":"a","mode":"quantum"}`, `{"text":"a","origin":"audio"}`} {
		w := do(t, s.Handler(), http.MethodPost, "/api/v1/verify", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
	assert.False(t, called)
}

func TestBlacklistEndpoints(t *testing.T) {
	store := blacklist.NewMemoryStore()
	_, err := store.Blacklist(context.Background(), "https://bad.example/a", 12, model.BlacklistSourceStructured, model.ReasonBelowThreshold)
	require.NoError(t, err)
	s := New(verifierFunc(nil), store)

	w := do(t, s.Handler(), http.MethodGet, "/api/v1/blacklist", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)
	assert.Contains(t, w.Body.String(), `"url":"https://bad.example/a"`)

	w = do(t, s.Handler(), http.MethodGet, "/api/v1/blacklist/lookup?url=https://BAD.example/a%3Fref%3Dx", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"blacklisted":true`)

	w = do(t, s.Handler(), http.MethodGet, "/api/v1/blacklist/lookup?url=https://good.example/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"blacklisted":false`)

	w = do(t, s.Handler(), http.MethodGet, "/api/v1/blacklist/lookup", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	m := metrics.New()
	m.BlacklistHit()
	s := New(verifierFunc(nil), blacklist.NewMemoryStore(),
		WithMetrics(m),
		WithDownstream("http://localhost:5000"),
		WithVersion("test"),
	)

	w := do(t, s.Handler(), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"downstream":"http://localhost:5000"`)

	w = do(t, s.Handler(), http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "credence_blacklist_hits_total"))
}

func TestRequestIDPropagates(t *testing.T) {
	s := New(verifierFunc(nil), blacklist.NewMemoryStore())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
}

func TestCORS(t *testing.T) {
	s := New(verifierFunc(nil), blacklist.NewMemoryStore(), WithAllowedOrigins([]string{"http://localhost:3000"}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
