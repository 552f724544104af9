package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/angilabs/angi/pkg/chat"
	"github.com/angilabs/angi/pkg/config"
	"github.com/angilabs/angi/pkg/memory"
	"github.com/angilabs/angi/pkg/model"
	anthropicmodel "github.com/angilabs/angi/pkg/model/anthropic"
	openaimodel "github.com/angilabs/angi/pkg/model/openai"
	"github.com/angilabs/angi/pkg/telemetry"
	"github.com/angilabs/angi/pkg/tools"
	"github.com/angilabs/angi/pkg/tools/builtin"
	"github.com/angilabs/angi/pkg/tools/prompttool"
	"github.com/angilabs/angi/pkg/weather"
)

const serviceVersion = "0.1.0"

// app bundles everything a command needs after wiring.
type app struct {
	cfg      *config.Config
	manager  *chat.Manager
	registry *tools.Registry
	logger   *slog.Logger

	telemetry *telemetry.Manager
	store     *memory.PGStore
}

// buildApp loads config and assembles the model, tool registry, memory and
// chat manager. Callers must invoke close when done.
func buildApp(ctx context.Context, cfgPath string, streams ioStreams) (*app, func(), error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewTextHandler(streams.err, nil))

	tm, err := telemetry.NewManager(ctx, telemetry.Config{
		ServiceName:    "angi",
		ServiceVersion: serviceVersion,
		Environment:    cfg.Telemetry.Environment,
		Endpoint:       cfg.Telemetry.Endpoint,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("init telemetry: %w", err)
	}
	telemetry.SetDefault(tm)

	a := &app{cfg: cfg, logger: logger, telemetry: tm}
	closeApp := func() {
		if a.store != nil {
			a.store.Close()
		}
		if err := tm.Shutdown(context.Background()); err != nil {
			logger.Warn("telemetry shutdown failed", "error", err)
		}
	}

	mdl, err := buildModel(cfg)
	if err != nil {
		closeApp()
		return nil, nil, err
	}

	weatherClient := weather.New()

	var sources []tools.Source
	if cfg.Tools.Dir != "" {
		sources = append(sources, prompttool.NewDirSource(cfg.Tools.Dir, prompttool.WithLogger(logger)))
	}
	sources = append(sources, builtin.Source())

	registry := tools.NewRegistry(sources, tools.WithLogger(logger))
	registry.Reload(ctx)
	a.registry = registry

	if cfg.Tools.Watch && cfg.Tools.Dir != "" {
		go func() {
			if err := registry.Watch(ctx, cfg.Tools.Dir); err != nil {
				logger.Warn("tool directory watch stopped", "error", err)
			}
		}()
	}

	toolCtx := &tools.Context{Model: mdl, Weather: weatherClient, Logger: logger}

	opts := []chat.ManagerOption{chat.WithManagerLogger(logger)}
	if sem := buildSemantic(ctx, cfg, a, logger); sem != nil {
		opts = append(opts, chat.WithSemantic(sem))
	}

	a.manager = chat.NewManager(mdl, registry, toolCtx, cfg.Chat.MaxContextMessages, opts...)
	return a, closeApp, nil
}

func buildModel(cfg *config.Config) (model.Model, error) {
	switch cfg.Chat.Provider {
	case "", "openai":
		if cfg.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is not set")
		}
		opts := []openaimodel.Option{openaimodel.WithMaxTokens(cfg.OpenAI.MaxTokens)}
		if cfg.OpenAI.BaseURL != "" {
			opts = append(opts, openaimodel.WithBaseURL(cfg.OpenAI.BaseURL))
		}
		if cfg.OpenAI.Temperature != nil {
			opts = append(opts, openaimodel.WithTemperature(*cfg.OpenAI.Temperature))
		}
		return openaimodel.New(cfg.OpenAI.APIKey, cfg.OpenAI.Model, opts...), nil
	case "anthropic":
		if cfg.Anthropic.APIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is not set")
		}
		return anthropicmodel.New(cfg.Anthropic.APIKey, cfg.Anthropic.Model, cfg.Anthropic.MaxTokens), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Chat.Provider)
	}
}

// buildSemantic sets up the pgvector-backed long-term memory. Any failure
// logs a warning and returns nil: the chat works without it.
func buildSemantic(ctx context.Context, cfg *config.Config, a *app, logger *slog.Logger) *memory.Semantic {
	if !cfg.Memory.UseVectorDB {
		return nil
	}
	if cfg.Memory.PostgresURL == "" {
		logger.Warn("vector db enabled but postgres_url is empty, continuing without long-term memory")
		return nil
	}
	store, err := memory.NewPGStore(ctx, cfg.Memory.PostgresURL)
	if err != nil {
		logger.Warn("failed to connect vector store, continuing without long-term memory", "error", err)
		return nil
	}
	if err := store.Init(ctx); err != nil {
		logger.Warn("failed to initialize vector store, continuing without long-term memory", "error", err)
		store.Close()
		return nil
	}
	a.store = store

	apiKey := cfg.OpenAI.EmbeddingAPIKey
	if apiKey == "" {
		apiKey = cfg.OpenAI.APIKey
	}
	var embOpts []memory.OpenAIEmbedderOption
	if cfg.OpenAI.EmbeddingBaseURL != "" {
		embOpts = append(embOpts, memory.WithEmbedderBaseURL(cfg.OpenAI.EmbeddingBaseURL))
	}
	embedder, err := memory.NewOpenAIEmbedder(apiKey, memory.DefaultEmbeddingModel, embOpts...)
	if err != nil {
		logger.Warn("failed to build embedder, continuing without long-term memory", "error", err)
		return nil
	}

	sem := memory.NewSemantic(embedder, store, logger)
	if err := sem.Preload(ctx); err != nil {
		logger.Warn("failed to preload favourite dishes", "error", err)
	}
	return sem
}
