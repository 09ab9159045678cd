package scan

import (
	"context"
	"fmt"
	"time"

	"github.com/ppiankov/credence/internal/model"
	"github.com/ppiankov/credence/internal/provider"
)

// Poster is the subset of provider.Client the remote prober needs
type Poster interface {
	PostJSON(ctx context.Context, endpoint string, timeout time.Duration, in, out any) error
}

// RemoteProber delegates to the scan-source endpoint
type RemoteProber struct {
	client   Poster
	endpoint string
}

// NewRemoteProber creates a prober posting to endpoint
func NewRemoteProber(client Poster, endpoint string) *RemoteProber {
	return &RemoteProber{client: client, endpoint: endpoint}
}

type scanRequest struct {
	URL string `json:"url"`
}

// Probe posts the URL and validates the returned status
func (p *RemoteProber) Probe(ctx context.Context, url string) (model.SourceTrustResult, error) {
	var result model.SourceTrustResult
	if err := p.client.PostJSON(ctx, p.endpoint, 0, scanRequest{URL: url}, &result); err != nil {
		return model.SourceTrustResult{}, err
	}

	if result.Status != model.SourceSafe && result.Status != model.SourceSuspicious {
		return model.SourceTrustResult{}, provider.Malformed(p.endpoint, fmt.Errorf("unknown status %q", result.Status))
	}
	if result.SuspiciousKeywordCount < 0 || result.AdsCount < 0 || result.IframesCount < 0 || result.ExternalScriptCount < 0 {
		return model.SourceTrustResult{}, provider.Malformed(p.endpoint, fmt.Errorf("negative signal count"))
	}
	result.Error = ""
	return result, nil
}
