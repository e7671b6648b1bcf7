// Package app wires configuration, the AI provider, retrieval, and chat
// into a running application.
package app

import (
	"github.com/firebase/genkit/go/genkit"

	"github.com/docchat/docchat/internal/chat"
	"github.com/docchat/docchat/internal/config"
	"github.com/docchat/docchat/internal/embed"
	"github.com/docchat/docchat/internal/history"
	"github.com/docchat/docchat/internal/log"
	"github.com/docchat/docchat/internal/rag"
	"github.com/docchat/docchat/internal/websearch"
)

// App holds the wired application components.
type App struct {
	Config    *config.Config
	Logger    log.Logger
	Genkit    *genkit.Genkit
	Embedder  embed.Embedder
	Engine    *rag.Engine
	History   *history.Store
	Assistant *chat.Assistant
	Web       *websearch.Client
}

// Close releases application resources. Safe to call on a partially
// initialized App.
func (a *App) Close() error {
	return nil
}
