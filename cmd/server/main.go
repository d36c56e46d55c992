// Package main is the entry point of the mail graph API server.
package main

import (
	"log/slog"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/Kantosaurus/test-01/domain/ai"
	"github.com/Kantosaurus/test-01/domain/emails"
	"github.com/Kantosaurus/test-01/domain/health"
	"github.com/Kantosaurus/test-01/domain/labels"
	"github.com/Kantosaurus/test-01/domain/scheduler"
	"github.com/Kantosaurus/test-01/domain/threads"
	"github.com/Kantosaurus/test-01/domain/tracing"
	"github.com/Kantosaurus/test-01/internal/config"
	"github.com/Kantosaurus/test-01/internal/graphdb"
	"github.com/Kantosaurus/test-01/internal/mailgraph"
	"github.com/Kantosaurus/test-01/internal/server"
	"github.com/Kantosaurus/test-01/internal/version"
	"github.com/Kantosaurus/test-01/pkg/embeddings"
	"github.com/Kantosaurus/test-01/pkg/llm"
	"github.com/Kantosaurus/test-01/pkg/logger"
)

func main() {
	// Load() never overwrites variables that are already set, so .env.local
	// wins over .env and both lose to the real environment.
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	fx.New(
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log}
		}),

		// Infrastructure
		logger.Module,
		config.Module,
		server.Module,
		tracing.Module,
		graphdb.Module,
		mailgraph.Module,

		// AI providers
		embeddings.Module,
		llm.Module,

		// Domain
		health.Module,
		emails.Module,
		threads.Module,
		labels.Module,
		ai.Module,

		// Background embedding backfill
		scheduler.Module,

		fx.Invoke(func(log *slog.Logger) {
			log.Info("mail graph server", slog.String("version", version.Current().String()))
		}),
	).Run()
}
