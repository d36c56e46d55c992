package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/Kantosaurus/test-01/pkg/logger"
)

// EmbeddingBackfillTaskName names the embedding backfill task.
const EmbeddingBackfillTaskName = "email_embedding_backfill"

// BatchIndexer indexes a batch of unindexed emails.
type BatchIndexer interface {
	BatchIndex(ctx context.Context) (int, error)
}

// EmbeddingBackfillTask embeds emails that were stored without a vector.
type EmbeddingBackfillTask struct {
	indexer BatchIndexer
	log     *slog.Logger
}

// NewEmbeddingBackfillTask creates a new embedding backfill task
func NewEmbeddingBackfillTask(indexer BatchIndexer, log *slog.Logger) *EmbeddingBackfillTask {
	return &EmbeddingBackfillTask{
		indexer: indexer,
		log:     log.With(logger.Scope("scheduler.embedding_backfill")),
	}
}

// Run executes one batch.
func (t *EmbeddingBackfillTask) Run(ctx context.Context) error {
	start := time.Now()
	n, err := t.indexer.BatchIndex(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		t.log.Info("embedded emails",
			slog.Int("count", n),
			slog.Duration("duration", time.Since(start)))
	}
	return nil
}
