package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/core/api"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/compat_oai/openai"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/firebase/genkit/go/plugins/ollama"

	"github.com/tecnoperfil/portal-agent/internal/agent"
	"github.com/tecnoperfil/portal-agent/internal/carteira"
	"github.com/tecnoperfil/portal-agent/internal/chatlog"
	"github.com/tecnoperfil/portal-agent/internal/config"
	"github.com/tecnoperfil/portal-agent/internal/database"
	"github.com/tecnoperfil/portal-agent/internal/dispatch"
	"github.com/tecnoperfil/portal-agent/internal/document"
	"github.com/tecnoperfil/portal-agent/internal/extract"
	"github.com/tecnoperfil/portal-agent/internal/ingest"
	"github.com/tecnoperfil/portal-agent/internal/log"
	"github.com/tecnoperfil/portal-agent/internal/observability"
	"github.com/tecnoperfil/portal-agent/internal/retrieval"
)

// Setup creates and initializes the application.
// Returns an App with embedded cleanup — call Close() to release.
func Setup(ctx context.Context, cfg *config.Config, logger log.Logger) (_ *App, retErr error) {
	if logger == nil {
		logger = log.NewNop()
	}
	a := &App{Config: cfg, Logger: logger}

	// On error, clean up everything already initialized.
	defer func() {
		if retErr != nil {
			if err := a.Close(); err != nil {
				logger.Warn("cleanup during setup failure", "error", err)
			}
		}
	}()

	if cfg.Tracing.Enabled {
		a.otelCleanup = provideOtelShutdown(ctx, cfg, logger)
	}

	pool, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.DBPool = pool

	g, err := provideGenkit(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.Genkit = g

	embedder := provideEmbedder(g, cfg)
	if embedder == nil {
		return nil, fmt.Errorf("embedder %q not found for provider %q", cfg.EmbedderModel, cfg.Provider)
	}
	a.Embedder = embedder

	a.Documents = document.NewStore(pool, logger)
	a.Carteira = carteira.NewStore(pool, logger)
	a.Chatlog = chatlog.NewStore(pool, logger)

	a.Retrieval = retrieval.New(embedder, a.Documents, retrieval.Config{
		TopK:            cfg.MatchCount,
		Threshold:       cfg.MatchThreshold,
		EmbedInputChars: cfg.EmbedInputChars,
		PerDocChars:     cfg.PerDocChars,
	}, logger)

	dispatcher := dispatch.New(a.Carteira, logger)

	a.Composer = agent.New(dispatcher, a.Retrieval, agent.NewGenerator(g), a.Chatlog, agent.Config{
		ModelName:        cfg.FullModelName(),
		Temperature:      cfg.Temperature,
		MaxTokens:        cfg.MaxTokens,
		MaxContextChars:  cfg.MaxContextChars,
		MaxQuestionChars: cfg.MaxQuestionChars,
		MaxPromptChars:   cfg.MaxPromptChars,
	}, logger)

	a.Pipeline = ingest.New(extract.New(), a.Retrieval, a.Documents, a.Carteira, ingest.Config{
		EmbeddingDim:    cfg.EmbeddingDim,
		UpsertBatchSize: cfg.UpsertBatchSize,
	}, logger)

	_, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	return a, nil
}

// provideOtelShutdown sets up tracing before Genkit initialization so
// the TracerProvider is ready when the first flow runs.
func provideOtelShutdown(ctx context.Context, cfg *config.Config, logger log.Logger) func() {
	shutdown, err := observability.Setup(ctx, observability.Config{
		AgentHost:   cfg.Tracing.AgentHost,
		ServiceName: cfg.Tracing.ServiceName,
		Environment: cfg.Tracing.Environment,
	}, logger)
	if err != nil {
		logger.Warn("tracing setup failed, continuing without it", "error", err)
		return func() {}
	}

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Warn("shutting down tracer provider", "error", err)
		}
	}
}

// provideGenkit initializes Genkit with the configured AI provider.
// Supports gemini (default), ollama, and openai providers.
func provideGenkit(ctx context.Context, cfg *config.Config, logger log.Logger) (*genkit.Genkit, error) {
	provider := cfg.Provider
	if provider == "" {
		provider = "gemini"
	}

	var g *genkit.Genkit

	switch provider {
	case "ollama":
		ollamaPlugin := &ollama.Ollama{ServerAddress: cfg.OllamaHost}
		g = genkit.Init(ctx, genkit.WithPlugins(ollamaPlugin))
		if g == nil {
			return nil, errors.New("initializing genkit with ollama provider")
		}
		// Ollama requires explicit model registration (no auto-discovery).
		ollamaPlugin.DefineModel(g, ollama.ModelDefinition{
			Name: cfg.ModelName,
			Type: "chat",
		}, nil)
		ollamaPlugin.DefineEmbedder(g, cfg.OllamaHost, cfg.EmbedderModel, nil)
		logger.Info("initialized Genkit with ollama provider",
			"model", cfg.ModelName, "host", cfg.OllamaHost)

	case "openai":
		g = genkit.Init(ctx, genkit.WithPlugins(&openai.OpenAI{}))
		if g == nil {
			return nil, errors.New("initializing genkit with openai provider")
		}
		logger.Info("initialized Genkit with openai provider", "model", cfg.ModelName)

	default: // "gemini"
		g = genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
		if g == nil {
			return nil, errors.New("initializing genkit with gemini provider")
		}
		logger.Info("initialized Genkit with gemini provider", "model", cfg.ModelName)
	}

	return g, nil
}

// provideEmbedder looks up the embedder registered by the provider
// plugin. Each provider registers embedders differently.
func provideEmbedder(g *genkit.Genkit, cfg *config.Config) ai.Embedder {
	provider := cfg.Provider
	if provider == "" {
		provider = "gemini"
	}

	switch provider {
	case "ollama":
		// Keyed by server address, registered in provideGenkit.
		return ollama.Embedder(g, cfg.OllamaHost)
	case "openai":
		// Auto-registered in Init(), looked up by model name.
		return genkit.LookupEmbedder(g, api.NewName("openai", cfg.EmbedderModel))
	default: // "gemini"
		return googlegenai.GoogleAIEmbedder(g, cfg.EmbedderModel)
	}
}
