package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/ppiankov/credence/internal/blacklist"
	"github.com/ppiankov/credence/internal/cache"
	"github.com/ppiankov/credence/internal/classify"
	"github.com/ppiankov/credence/internal/extract"
	"github.com/ppiankov/credence/internal/llm"
	"github.com/ppiankov/credence/internal/logging"
	"github.com/ppiankov/credence/internal/metrics"
	"github.com/ppiankov/credence/internal/model"
	"github.com/ppiankov/credence/internal/pipeline"
	"github.com/ppiankov/credence/internal/provider"
	"github.com/ppiankov/credence/internal/scan"
	"github.com/ppiankov/credence/internal/verify"
)

const redisPingTimeout = 5 * time.Second

// app holds the wired components shared by every command
type app struct {
	cfg          *model.Config
	log          *logging.Logger
	metrics      *metrics.Metrics
	store        *blacklist.Store
	orchestrator *pipeline.Orchestrator

	closers []func() error
}

// newApp builds the component graph described by cfg
func newApp(ctx context.Context, cfg *model.Config) (*app, error) {
	a := &app{
		cfg:     cfg,
		log:     logging.New(cfg.Log.Level),
		metrics: metrics.New(),
	}

	shared, err := a.backend(ctx)
	if err != nil {
		return nil, err
	}
	a.store = blacklist.NewStore(shared)

	client := provider.NewClientFromConfig(cfg)

	classifierOpts := []classify.Option{classify.WithLogger(a.log), classify.WithMetrics(a.metrics)}
	if cfg.Cache.Enabled {
		classifierOpts = append(classifierOpts, classify.WithCache(shared, cfg.Cache.ClassifierTTL))
	}
	classifier := classify.New(client, cfg.Endpoints.Classify, cfg.Timeouts.Classifier, classifierOpts...)

	fetcher := extract.NewFetcher(cfg.Timeouts.Extract, cfg.HTTP.UserAgent, cfg.HTTP.MaxBodyBytes,
		cfg.Scanner.RespectRobots, cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy)
	extractor := extract.NewExtractor(fetcher)

	var prober scan.Prober
	switch cfg.Scanner.Backend {
	case "", "remote":
		prober = scan.NewRemoteProber(client, cfg.Endpoints.Scan)
	case "local":
		prober = scan.NewLocalProber(extractor)
	default:
		return nil, fmt.Errorf("unknown scanner backend: %s (supported: remote, local)", cfg.Scanner.Backend)
	}
	scanner := scan.New(prober, cfg.Timeouts.Scanner, a.log, a.metrics)

	verifierOpts := []verify.Option{verify.WithLogger(a.log), verify.WithMetrics(a.metrics)}
	llmProvider, err := llm.NewProvider(llm.ConfigFromModel(cfg))
	if err != nil {
		return nil, fmt.Errorf("llm provider: %w", err)
	}
	if llmProvider != nil {
		verifierOpts = append(verifierOpts, verify.WithAssessor(llm.NewAssessor(llmProvider, cfg.LLM.Model, cfg.LLM.MaxTokens)))
		a.log.Debug("llm assessor enabled", "provider", llmProvider.Name(), "model", cfg.LLM.Model)
	}
	verifier := verify.New(client, verify.Endpoints{
		Rule:   cfg.Endpoints.Rule,
		LLM:    cfg.Endpoints.LLM,
		Hybrid: cfg.Endpoints.Hybrid,
	}, cfg.Timeouts.Verifier, verifierOpts...)

	opts := []pipeline.Option{
		pipeline.WithVerifier(verifier),
		pipeline.WithExtractor(extractor),
		pipeline.WithLogger(a.log),
		pipeline.WithMetrics(a.metrics),
	}
	if cfg.Endpoints.Combined != "" {
		opts = append(opts, pipeline.WithCombined(classify.NewCombined(client, cfg.Endpoints.Combined, cfg.Timeouts.Combined)))
	}
	a.orchestrator = pipeline.NewOrchestrator(a.store, classifier, scanner, opts...)

	return a, nil
}

// backend returns the cache shared by the blacklist and the classifier memo
func (a *app) backend(ctx context.Context) (cache.Cache, error) {
	switch a.cfg.Blacklist.Backend {
	case "", "memory":
		return cache.NewMemoryCache(cache.NoExpiration, 10*time.Minute), nil
	case "redis":
		if a.cfg.Blacklist.RedisURL == "" {
			return nil, errors.New("blacklist.redis_url is required for the redis backend")
		}
		rc, err := cache.NewRedisCache(a.cfg.Blacklist.RedisURL, 0)
		if err != nil {
			return nil, err
		}
		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		defer cancel()
		if err := rc.Ping(pingCtx); err != nil {
			_ = rc.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		a.closers = append(a.closers, rc.Close)
		return rc, nil
	}
	return nil, fmt.Errorf("unknown blacklist backend: %s (supported: memory, redis)", a.cfg.Blacklist.Backend)
}

// Close releases backend connections
func (a *app) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// buildApp loads the layered configuration and wires the app
func buildApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}
	return newApp(ctx, cfg)
}
