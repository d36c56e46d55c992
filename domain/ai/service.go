// Package ai implements the semantic index over emails, similarity search
// and the LLM-assisted summarize, compose and categorize operations. Each
// operation has a deterministic fallback used when its provider is not
// configured.
package ai

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Kantosaurus/test-01/domain/emails"
	"github.com/Kantosaurus/test-01/domain/threads"
	"github.com/Kantosaurus/test-01/pkg/apperror"
	"github.com/Kantosaurus/test-01/pkg/embeddings"
	"github.com/Kantosaurus/test-01/pkg/llm"
	"github.com/Kantosaurus/test-01/pkg/logger"
	"github.com/Kantosaurus/test-01/pkg/metrics"
)

// Service is the semantic index, ranker and assistant.
type Service struct {
	repo       *Repository
	emails     *emails.Service
	threads    *threads.Service
	embeddings *embeddings.Service
	llm        *llm.Service
	log        *slog.Logger
	now        func() time.Time
}

// NewService creates a new ai service
func NewService(
	repo *Repository,
	emailSvc *emails.Service,
	threadSvc *threads.Service,
	embeddingSvc *embeddings.Service,
	llmSvc *llm.Service,
	log *slog.Logger,
) *Service {
	return &Service{
		repo:       repo,
		emails:     emailSvc,
		threads:    threadSvc,
		embeddings: embeddingSvc,
		llm:        llmSvc,
		log:        log.With(logger.Scope("ai.svc")),
		now:        time.Now,
	}
}

// Embed returns the document embedding of text, or a zero vector when no
// embedding provider is configured.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	return s.embeddings.EmbedDocument(ctx, text)
}

// IndexOne embeds subject and body of the email and stores the vector.
func (s *Service) IndexOne(ctx context.Context, id string) error {
	err := s.indexOne(ctx, id)
	metrics.EmailsIndexed.WithLabelValues(metrics.Outcome(err)).Inc()
	return err
}

func (s *Service) indexOne(ctx context.Context, id string) error {
	email, err := s.emails.Get(ctx, id)
	if err != nil {
		return err
	}

	vec, err := s.Embed(ctx, email.Subject+"\n\n"+email.Body)
	if err != nil {
		return err
	}

	if err := s.repo.SetEmbedding(ctx, id, vec, s.now().UTC()); err != nil {
		if errors.Is(err, emails.ErrNotFound) {
			return apperror.NewNotFound("email", id)
		}
		return apperror.NewDatabase(err)
	}
	return nil
}

// BatchIndex indexes up to MaxBatchSize unindexed emails, newest first. An
// email whose vector length differs from the configured dimension is
// re-indexed.
// Failures of single emails are logged and skipped; the number of emails
// indexed is returned.
func (s *Service) BatchIndex(ctx context.Context) (int, error) {
	ids, err := s.repo.Unindexed(ctx, MaxBatchSize, s.embeddings.Dimension())
	if err != nil {
		return 0, apperror.NewDatabase(err)
	}

	indexed := 0
	for _, id := range ids {
		if err := s.IndexOne(ctx, id); err != nil {
			s.log.Warn("failed to index email", slog.String("email_id", id), logger.Error(err))
			continue
		}
		indexed++
	}

	s.log.Info("batch index complete",
		slog.Int("candidates", len(ids)),
		slog.Int("indexed", indexed),
	)
	return indexed, nil
}
