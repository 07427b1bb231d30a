// Package app assembles the portal: configuration, database, the AI
// provider, and the ingestion and answering services.
package app

import (
	"context"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tecnoperfil/portal-agent/internal/agent"
	"github.com/tecnoperfil/portal-agent/internal/carteira"
	"github.com/tecnoperfil/portal-agent/internal/chatlog"
	"github.com/tecnoperfil/portal-agent/internal/config"
	"github.com/tecnoperfil/portal-agent/internal/document"
	"github.com/tecnoperfil/portal-agent/internal/ingest"
	"github.com/tecnoperfil/portal-agent/internal/log"
	"github.com/tecnoperfil/portal-agent/internal/retrieval"
)

// App is the core application container.
type App struct {
	Config *config.Config
	Logger log.Logger

	// Core services
	Genkit   *genkit.Genkit
	Embedder ai.Embedder
	DBPool   *pgxpool.Pool

	// Stores
	Documents *document.Store
	Carteira  *carteira.Store
	Chatlog   *chatlog.Store

	// Domain services
	Retrieval *retrieval.Engine
	Composer  *agent.Composer
	Pipeline  *ingest.Pipeline

	otelCleanup func()
	cancel      context.CancelFunc
}

// Close gracefully shuts down all resources.
func (a *App) Close() error {
	a.Logger.Info("shutting down application")

	if a.cancel != nil {
		a.cancel()
	}

	if a.DBPool != nil {
		a.DBPool.Close()
		a.Logger.Info("database pool closed")
	}

	if a.otelCleanup != nil {
		a.otelCleanup()
	}

	return nil
}

// shutdownTimeout bounds teardown of external resources.
const shutdownTimeout = 5 * time.Second
