package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/credence/internal/model"
)

// Verifier runs one verification request
type Verifier interface {
	Verify(ctx context.Context, req model.VerificationRequest) (*model.Outcome, error)
}

// VerifyJob verifies a single request
type VerifyJob struct {
	Request  model.VerificationRequest
	Verifier Verifier
}

// Execute runs the verification
func (j *VerifyJob) Execute(ctx context.Context) Result {
	outcome, err := j.Verifier.Verify(ctx, j.Request)
	return &VerifyResult{
		Request: j.Request,
		Outcome: outcome,
		Error:   err,
	}
}

// VerifyResult pairs a request with its outcome
type VerifyResult struct {
	Request model.VerificationRequest
	Outcome *model.Outcome
	Error   error
}

// GetError returns the verification error, if any
func (r *VerifyResult) GetError() error {
	return r.Error
}

// BatchProcessor verifies many requests concurrently against one verifier,
// so every job shares the same blacklist
type BatchProcessor struct {
	verifier    Verifier
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(verifier Verifier, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		verifier:    verifier,
		concurrency: concurrency,
	}
}

// ProcessRequests verifies requests and returns results in input order
func (b *BatchProcessor) ProcessRequests(ctx context.Context, reqs []model.VerificationRequest) []*VerifyResult {
	if len(reqs) == 0 {
		return []*VerifyResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, req := range reqs {
		pool.Submit(&VerifyJob{Request: req, Verifier: b.verifier})
	}

	results := pool.Wait()

	out := make([]*VerifyResult, len(reqs))
	for i := range reqs {
		if i < len(results) && results[i] != nil {
			out[i] = results[i].(*VerifyResult)
			continue
		}
		err := ctx.Err()
		if err == nil {
			err = context.Canceled
		}
		out[i] = &VerifyResult{Request: reqs[i], Error: err}
	}

	return out
}

// ProcessFile reads requests from a file and verifies them with the given mode
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string, mode model.Mode) ([]*VerifyResult, error) {
	reqs, err := ReadRequestsFromFile(filePath, mode)
	if err != nil {
		return nil, fmt.Errorf("read requests: %w", err)
	}

	return b.ProcessRequests(ctx, reqs), nil
}

// ReadRequestsFromFile reads one claim per line. Lines starting with
// http:// or https:// become URL requests; a tab separates claim text
// from an accompanying source URL. Blank lines and # comments are skipped,
// duplicates are dropped.
func ReadRequestsFromFile(filePath string, mode model.Mode) ([]model.VerificationRequest, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var reqs []model.VerificationRequest
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if seen[line] {
			continue
		}
		seen[line] = true

		req := model.VerificationRequest{Mode: mode}
		if text, url, ok := strings.Cut(line, "\t"); ok {
			req.Text = text
			req.URL = url
		} else if isURL(line) {
			req.URL = line
		} else {
			req.Text = line
		}
		req.Normalize()
		reqs = append(reqs, req)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return reqs, nil
}

func isURL(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
