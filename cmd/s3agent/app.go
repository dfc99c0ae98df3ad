package main

import (
	"context"
	"fmt"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/hupe1980/s3agent"
	"github.com/hupe1980/s3agent/config"
	"github.com/hupe1980/s3agent/logging"
	"github.com/hupe1980/s3agent/model"
	"github.com/hupe1980/s3agent/model/anthropic"
	"github.com/hupe1980/s3agent/model/openai"
	"github.com/hupe1980/s3agent/objectstore"
	"github.com/hupe1980/s3agent/objectstore/local"
	"github.com/hupe1980/s3agent/objectstore/s3"
	"github.com/hupe1980/s3agent/pipeline"
	"github.com/hupe1980/s3agent/runner"
)

// app holds the adapters and the compiled pipeline, built once per process.
type app struct {
	cfg      *config.Config
	logger   *logging.PipelineLogger
	store    objectstore.Store
	model    model.Model
	pipeline *pipeline.Pipeline
	runner   *runner.Runner
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	logger := logging.NewSlogLogger(level, cfg.Log.Format, cfg.Log.AddSource).WithComponent("s3agent")

	for _, w := range cfg.Warnings() {
		logger.Warn(w)
	}

	store, err := newStore(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	m, err := newModel(cfg.LLM)
	if err != nil {
		return nil, err
	}

	p, err := s3agent.NewGraph(store, m, func(o *s3agent.Options) {
		o.Model = cfg.LLM.Model
		o.MaxOutputTokens = cfg.LLM.MaxOutputTokens
		if len(cfg.LLM.Headers) > 0 {
			o.Headers = cfg.LLM.Headers
		}
		o.Prompt = cfg.LLM.Prompt
		o.Logger = logger.WithComponent("pipeline")
	})
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}

	r := runner.New(p, func(o *runner.Options) {
		o.MaxConcurrentInvocations = cfg.Runner.MaxConcurrent
		o.InvocationTimeout = cfg.Runner.InvocationTimeout
		o.Logger = logger.WithComponent("runner")
	})

	logger.Info("Pipeline ready",
		"pipeline", p.Name(),
		"provider", m.Info().Provider,
		"model", cfg.LLM.Model,
		"storage", cfg.Storage.Backend,
	)

	return &app{cfg: cfg, logger: logger, store: store, model: m, pipeline: p, runner: r}, nil
}

func newStore(ctx context.Context, cfg config.StorageConfig) (objectstore.Store, error) {
	switch cfg.Backend {
	case config.BackendS3:
		s3cfg := cfg.S3
		return s3.NewStore(ctx, &s3cfg)
	case config.BackendLocal:
		return local.NewStore(cfg.Root)
	case config.BackendMemory:
		return objectstore.NewInMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

func newModel(cfg config.LLMConfig) (model.Model, error) {
	switch cfg.Provider {
	case config.ProviderOpenRouter, config.ProviderOpenAI:
		return openai.NewModel(openai.ClientOptions{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			MaxRetries: cfg.MaxRetries,
		}, func(o *openai.Options) {
			o.Model = cfg.Model
			o.MaxOutputTokens = cfg.MaxOutputTokens
		}), nil
	case config.ProviderAnthropic:
		return anthropic.NewModel(anthropic.ClientOptions{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			MaxRetries: cfg.MaxRetries,
		}, func(o *anthropic.Options) {
			o.Model = anthropicsdk.Model(cfg.Model)
			o.MaxOutputTokens = cfg.MaxOutputTokens
		}), nil
	case config.ProviderMock:
		return model.NewMockModel(cfg.Model, config.ProviderMock), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
