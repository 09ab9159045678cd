// Package classify adapts the external fake/real text classifier.
//
// Classification never fails from the caller's point of view: any problem
// with the provider yields the safe default {Real, 0.0} with the cause
// recorded on the result.
package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ppiankov/credence/internal/cache"
	"github.com/ppiankov/credence/internal/logging"
	"github.com/ppiankov/credence/internal/metrics"
	"github.com/ppiankov/credence/internal/model"
	"github.com/ppiankov/credence/internal/provider"
)

const cacheNamespace = "classify"

// Poster is the subset of provider.Client the classifier needs
type Poster interface {
	PostJSON(ctx context.Context, endpoint string, timeout time.Duration, in, out any) error
}

type request struct {
	Text string `json:"text"`
}

type response struct {
	Label      model.Label `json:"label"`
	Confidence *float64    `json:"confidence"`
}

// Classifier calls the classify endpoint
type Classifier struct {
	client   Poster
	endpoint string
	timeout  time.Duration

	cache    cache.Cache
	cacheTTL time.Duration

	log     *logging.Logger
	metrics *metrics.Metrics
}

// Option configures a Classifier
type Option func(*Classifier)

// WithCache memoises successful results for ttl
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(cl *Classifier) {
		cl.cache = c
		cl.cacheTTL = ttl
	}
}

// WithLogger sets the logger
func WithLogger(l *logging.Logger) Option {
	return func(cl *Classifier) { cl.log = l }
}

// WithMetrics sets the metrics sink
func WithMetrics(m *metrics.Metrics) Option {
	return func(cl *Classifier) { cl.metrics = m }
}

// New creates a classifier
func New(client Poster, endpoint string, timeout time.Duration, opts ...Option) *Classifier {
	c := &Classifier{
		client:   client,
		endpoint: endpoint,
		timeout:  timeout,
		log:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify labels text, substituting the safe default on any failure
func (c *Classifier) Classify(ctx context.Context, text string) model.ClassifierResult {
	if text == "" {
		return c.degrade("no text to classify")
	}

	key := cache.HashKey(cacheNamespace, text)
	if cached, ok := c.lookup(ctx, key); ok {
		return cached
	}

	var resp response
	if err := c.client.PostJSON(ctx, c.endpoint, c.timeout, request{Text: text}, &resp); err != nil {
		return c.degrade(err.Error())
	}

	result, err := validate(resp)
	if err != nil {
		return c.degrade(provider.Malformed(c.endpoint, err).Error())
	}

	c.store(ctx, key, result)
	return result
}

func validate(resp response) (model.ClassifierResult, error) {
	if resp.Label != model.LabelReal && resp.Label != model.LabelFake {
		return model.ClassifierResult{}, fmt.Errorf("unknown label %q", resp.Label)
	}
	if resp.Confidence == nil {
		return model.ClassifierResult{}, fmt.Errorf("missing confidence")
	}
	conf := *resp.Confidence
	if conf < 0 || conf > 1 {
		return model.ClassifierResult{}, fmt.Errorf("confidence %.3f out of range [0,1]", conf)
	}
	return model.ClassifierResult{Label: resp.Label, Confidence: conf}, nil
}

func (c *Classifier) degrade(reason string) model.ClassifierResult {
	c.log.Warn("classifier degraded", "endpoint", c.endpoint, "reason", reason)
	c.metrics.Degraded("classifier")
	return model.SafeClassifierDefault(reason)
}

func (c *Classifier) lookup(ctx context.Context, key string) (model.ClassifierResult, bool) {
	if c.cache == nil {
		return model.ClassifierResult{}, false
	}
	data, ok, err := c.cache.Get(ctx, key)
	if err != nil || !ok {
		return model.ClassifierResult{}, false
	}
	var result model.ClassifierResult
	if err := json.Unmarshal(data, &result); err != nil {
		return model.ClassifierResult{}, false
	}
	result.Cached = true
	return result, true
}

func (c *Classifier) store(ctx context.Context, key string, result model.ClassifierResult) {
	if c.cache == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, data, c.cacheTTL); err != nil {
		c.log.Debug("classifier cache write failed", "error", err)
	}
}
