package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ppiankov/credence/internal/model"
	"github.com/ppiankov/credence/internal/verify"
)

const blacklistedMessage = "URL is blacklisted due to low credibility"

type verifyBody struct {
	Text      string `json:"text"`
	URL       string `json:"url"`
	SourceURL string `json:"sourceUrl"`
	Mode      string `json:"mode"`
	Origin    string `json:"origin"`
}

type verifyResponse struct {
	Success          bool                    `json:"success"`
	Label            model.Label             `json:"label"`
	SafetyScore      int                     `json:"safetyScore"`
	SourceStatus     *model.SourceStatus     `json:"sourceStatus,omitempty"`
	Reasons          []string                `json:"reasons"`
	StructuredReport *model.StructuredReport `json:"structuredReport,omitempty"`
	Degraded         []string                `json:"degraded,omitempty"`
}

type blacklistPayload struct {
	CredibilityScore int                   `json:"credibility_score"`
	Source           model.BlacklistSource `json:"source"`
	Timestamp        time.Time             `json:"timestamp"`
	Reason           string                `json:"reason"`
}

type rejectionResponse struct {
	Success   bool             `json:"success"`
	Message   string           `json:"message"`
	Blacklist blacklistPayload `json:"blacklist"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"downstream": s.baseURL,
		"version":    s.version,
	})
}

func (s *Server) verify(c *gin.Context) {
	var body verifyBody
	if err := c.ShouldBindJSON(&body); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}

	req, err := body.toRequest()
	if err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}

	outcome, err := s.verifier.Verify(c.Request.Context(), req)
	if err != nil {
		s.fail(c, statusFor(err), err)
		return
	}

	if outcome.IsRejected() {
		c.JSON(http.StatusForbidden, rejection(outcome.Rejected))
		return
	}

	c.JSON(http.StatusOK, verifyResponse{
		Success:          true,
		Label:            outcome.Verdict.Label,
		SafetyScore:      outcome.Verdict.SafetyScore,
		SourceStatus:     outcome.Verdict.SourceStatus,
		Reasons:          outcome.Verdict.Reasons,
		StructuredReport: outcome.Report,
		Degraded:         outcome.Degraded,
	})
}

func (s *Server) listBlacklist(c *gin.Context) {
	entries, err := s.store.List(c.Request.Context())
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(entries), "entries": entries})
}

func (s *Server) lookupBlacklist(c *gin.Context) {
	url := strings.TrimSpace(c.Query("url"))
	if url == "" {
		s.fail(c, http.StatusBadRequest, errors.New("url query parameter is required"))
		return
	}

	entry, err := s.store.Get(c.Request.Context(), url)
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}
	if entry == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "blacklisted": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "blacklisted": true, "entry": entry})
}

func (b verifyBody) toRequest() (model.VerificationRequest, error) {
	mode, err := model.ParseMode(b.Mode)
	if err != nil {
		return model.VerificationRequest{}, err
	}

	url := b.URL
	if strings.TrimSpace(url) == "" {
		url = b.SourceURL
	}

	req := model.VerificationRequest{
		Text:   b.Text,
		URL:    url,
		Mode:   mode,
		Origin: model.Origin(strings.ToLower(strings.TrimSpace(b.Origin))),
	}
	switch req.Origin {
	case "", model.OriginText, model.OriginURL, model.OriginImage:
	default:
		return model.VerificationRequest{}, errors.Join(model.ErrInvalidInput, errors.New("origin must be text, url or image"))
	}
	return req, nil
}

func rejection(entry *model.BlacklistEntry) rejectionResponse {
	return rejectionResponse{
		Success: false,
		Message: blacklistedMessage,
		Blacklist: blacklistPayload{
			CredibilityScore: entry.CredibilityScore,
			Source:           entry.Source,
			Timestamp:        entry.Timestamp,
			Reason:           entry.Reason,
		},
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, verify.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("verification request failed", "status", status, "error", err, "request_id", c.GetString(requestIDKey))
	}
	c.JSON(status, errorResponse{Success: false, Error: err.Error()})
}
