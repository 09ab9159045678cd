package classify

import (
	"context"
	"fmt"
	"time"

	"github.com/ppiankov/credence/internal/model"
	"github.com/ppiankov/credence/internal/provider"
)

// Combined calls the unified news analysis endpoint that returns the
// classifier label and the source status in one response
type Combined struct {
	client   Poster
	endpoint string
	timeout  time.Duration
}

// NewCombined creates a combined analyzer
func NewCombined(client Poster, endpoint string, timeout time.Duration) *Combined {
	return &Combined{client: client, endpoint: endpoint, timeout: timeout}
}

type combinedRequest struct {
	Text string `json:"text"`
	URL  string `json:"url,omitempty"`
}

type combinedResponse struct {
	Label         model.Label        `json:"label"`
	Confidence    *float64           `json:"confidence"`
	SourceStatus  model.SourceStatus `json:"source_status"`
	SourceSummary string             `json:"source_summary"`
}

// Analyze returns both signals or an error; it never substitutes defaults
func (c *Combined) Analyze(ctx context.Context, text, url string) (model.ClassifierResult, model.SourceTrustResult, error) {
	var resp combinedResponse
	if err := c.client.PostJSON(ctx, c.endpoint, c.timeout, combinedRequest{Text: text, URL: url}, &resp); err != nil {
		return model.ClassifierResult{}, model.SourceTrustResult{}, err
	}

	classifier, err := validate(response{Label: resp.Label, Confidence: resp.Confidence})
	if err != nil {
		return model.ClassifierResult{}, model.SourceTrustResult{}, provider.Malformed(c.endpoint, err)
	}

	source := model.SourceTrustResult{Status: resp.SourceStatus, Summary: resp.SourceSummary}
	switch {
	case url == "":
		source = model.SourceTrustResult{Status: model.SourceUnverified, Summary: "No source URL provided"}
	case resp.SourceStatus != model.SourceSafe && resp.SourceStatus != model.SourceSuspicious:
		return model.ClassifierResult{}, model.SourceTrustResult{}, provider.Malformed(c.endpoint, fmt.Errorf("unexpected source_status %q for a URL", resp.SourceStatus))
	}

	return classifier, source, nil
}
