// Package scheduler runs the background maintenance tasks of the server.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"go.uber.org/fx"

	"github.com/Kantosaurus/test-01/domain/ai"
	"github.com/Kantosaurus/test-01/internal/config"
	"github.com/Kantosaurus/test-01/pkg/embeddings"
	"github.com/Kantosaurus/test-01/pkg/logger"
)

// Module provides scheduled task functionality
var Module = fx.Module("scheduler",
	fx.Provide(NewScheduler),
	fx.Invoke(
		RegisterTasks,
		RegisterSchedulerLifecycle,
	),
)

// TaskParams contains dependencies for creating scheduled tasks
type TaskParams struct {
	fx.In
	Lifecycle  fx.Lifecycle
	Scheduler  *Scheduler
	AI         *ai.Service
	Embeddings *embeddings.Service
	Cfg        *config.Config
	Log        *slog.Logger
}

// RegisterTasks registers all scheduled tasks once the providers have
// resolved their capability flags on start.
func RegisterTasks(p TaskParams) {
	if !p.Cfg.Scheduler.Enabled {
		p.Log.Info("scheduler disabled, skipping task registration")
		return
	}
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			registerTasks(p.Scheduler, p.Cfg.Scheduler, p.Embeddings.IsEnabled(), p.AI, p.Log)
			return nil
		},
	})
}

func registerTasks(s *Scheduler, sc config.SchedulerConfig, embeddingsEnabled bool, indexer BatchIndexer, log *slog.Logger) {
	// Zero vectors are never backfilled.
	if embeddingsEnabled && (sc.EmbeddingBackfillSchedule != "" || sc.EmbeddingBackfillInterval > 0) {
		task := NewEmbeddingBackfillTask(indexer, log)
		if err := addScheduledTask(s, log, EmbeddingBackfillTaskName,
			sc.EmbeddingBackfillSchedule, sc.EmbeddingBackfillInterval, task.Run); err != nil {
			log.Error("failed to register embedding backfill task", logger.Error(err))
		}
	}

	log.Info("registered scheduled tasks", slog.Any("tasks", s.ListTasks()))
}

// addScheduledTask prefers a cron expression and falls back to the interval.
func addScheduledTask(s *Scheduler, log *slog.Logger, name, schedule string, interval time.Duration, task TaskFunc) error {
	if schedule != "" {
		return s.AddCronTask(name, schedule, task)
	}
	log.Debug("no cron schedule, using interval", slog.String("name", name))
	return s.AddIntervalTask(name, interval, task)
}

// RegisterSchedulerLifecycle registers the scheduler with fx lifecycle
func RegisterSchedulerLifecycle(lc fx.Lifecycle, scheduler *Scheduler, cfg *config.Config) {
	if !cfg.Scheduler.Enabled {
		return
	}
	lc.Append(fx.Hook{
		OnStart: scheduler.Start,
		OnStop:  scheduler.Stop,
	})
}
