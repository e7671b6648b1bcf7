package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/firebase/genkit/go/core/api"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/compat_oai/openai"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/firebase/genkit/go/plugins/ollama"

	"github.com/docchat/docchat/internal/chat"
	"github.com/docchat/docchat/internal/config"
	"github.com/docchat/docchat/internal/embed"
	"github.com/docchat/docchat/internal/history"
	"github.com/docchat/docchat/internal/log"
	"github.com/docchat/docchat/internal/rag"
	"github.com/docchat/docchat/internal/websearch"
)

// Setup creates and initializes the application.
//
// A missing provider API key is not fatal: the embedding capability is
// disabled and document grounding degrades to a no-op, while the rest of the
// application keeps working. Generation calls will fail at request time with
// the provider's own error.
func Setup(ctx context.Context, cfg *config.Config, logger log.Logger) (*App, error) {
	if cfg == nil {
		return nil, config.ErrConfigNil
	}
	if logger == nil {
		logger = log.NewNop()
	}

	a := &App{Config: cfg, Logger: logger}

	g, embedder, err := provideGenkit(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.Genkit = g
	a.Embedder = embedder

	params := rag.Params{ChunkSize: cfg.ChunkSize, ChunkOverlap: cfg.ChunkOverlap}
	a.Engine = rag.NewEngine(cfg.DataDir, embedder, params, logger)

	a.History = history.NewStore(filepath.Join(cfg.DataDir, "chat.json"))

	if cfg.Search.Enabled {
		a.Web = websearch.NewClient(cfg.Search.SearXNGURL, cfg.Search.MaxResults, logger)
	}

	generator := chat.NewGenkitGenerator(g, cfg.FullModelName(), cfg.Temperature, cfg.MaxTokens)

	// chat.WebSearcher is an interface; a typed nil pointer must not leak
	// into it or the nil check inside the assistant breaks.
	var web chat.WebSearcher
	if a.Web != nil {
		web = a.Web
	}
	a.Assistant = chat.NewAssistant(a.Engine, web, generator, a.History, cfg.MaxHistoryTurns, logger)

	logger.Info("application initialized",
		"provider", cfg.Provider,
		"model", cfg.ModelName,
		"data_dir", cfg.DataDir,
		"grounding", embedder.Available(),
		"web_search", cfg.Search.Enabled)
	return a, nil
}

// provideGenkit initializes Genkit with the configured AI provider and
// returns the embedding adapter. Supports gemini/googleai (default), ollama,
// and openai providers.
func provideGenkit(ctx context.Context, cfg *config.Config, logger log.Logger) (*genkit.Genkit, embed.Embedder, error) {
	switch cfg.Provider {
	case config.ProviderOllama:
		ollamaPlugin := &ollama.Ollama{ServerAddress: cfg.OllamaHost}
		g := genkit.Init(ctx, genkit.WithPlugins(ollamaPlugin))
		if g == nil {
			return nil, nil, errors.New("initializing genkit with ollama provider")
		}
		// Ollama requires explicit model registration (no auto-discovery).
		ollamaPlugin.DefineModel(g, ollama.ModelDefinition{
			Name: cfg.ModelName,
			Type: "chat",
		}, nil)
		ollamaPlugin.DefineEmbedder(g, cfg.OllamaHost, cfg.EmbedderModel, nil)
		logger.Info("initialized ollama provider", "model", cfg.ModelName, "host", cfg.OllamaHost)
		return g, embed.NewGenkit(ollama.Embedder(g, cfg.OllamaHost)), nil

	case config.ProviderOpenAI:
		if os.Getenv("OPENAI_API_KEY") == "" {
			return degradedGenkit(ctx, cfg, logger, "OPENAI_API_KEY")
		}
		g := genkit.Init(ctx, genkit.WithPlugins(&openai.OpenAI{}))
		if g == nil {
			return nil, nil, errors.New("initializing genkit with openai provider")
		}
		logger.Info("initialized openai provider", "model", cfg.ModelName)
		return g, embed.NewGenkit(genkit.LookupEmbedder(g, api.NewName("openai", cfg.EmbedderModel))), nil

	default: // gemini / googleai
		if os.Getenv("GEMINI_API_KEY") == "" {
			return degradedGenkit(ctx, cfg, logger, "GEMINI_API_KEY")
		}
		g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
		if g == nil {
			return nil, nil, errors.New("initializing genkit with gemini provider")
		}
		logger.Info("initialized gemini provider", "model", cfg.ModelName)
		return g, embed.NewGenkit(googlegenai.GoogleAIEmbedder(g, cfg.EmbedderModel)), nil
	}
}

// degradedGenkit initializes Genkit without a provider plugin when the API
// key is absent. Embedding is disabled rather than failing startup.
func degradedGenkit(ctx context.Context, cfg *config.Config, logger log.Logger, envVar string) (*genkit.Genkit, embed.Embedder, error) {
	logger.Warn("provider API key not set, document grounding disabled",
		"provider", cfg.Provider, "env", envVar)
	g := genkit.Init(ctx)
	if g == nil {
		return nil, nil, errors.New("initializing genkit")
	}
	return g, embed.Disabled(), nil
}
