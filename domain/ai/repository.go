package ai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Kantosaurus/test-01/domain/emails"
	"github.com/Kantosaurus/test-01/internal/graphdb"
	"github.com/Kantosaurus/test-01/internal/mailgraph"
	"github.com/Kantosaurus/test-01/pkg/logger"
	"github.com/Kantosaurus/test-01/pkg/tracing"
)

// MaxBatchSize bounds one batchIndex run.
const MaxBatchSize = 100

const setEmbeddingQuery = `
MATCH (e:` + mailgraph.NodeEmail + ` {id: $id})
SET e.embedding = $embedding, e.embedded_at = $now
RETURN e.id AS id`

const unindexedQuery = `
MATCH (e:` + mailgraph.NodeEmail + `)
WHERE e.embedding IS NULL OR size(e.embedding) <> $dimension
RETURN e.id AS id
ORDER BY e.date DESC
LIMIT $limit`

const indexedQuery = `
MATCH (e:` + mailgraph.NodeEmail + `)
WHERE e.embedding IS NOT NULL
RETURN e.id AS id, e.subject AS subject, e.snippet AS snippet, e.embedding AS embedding`

const textSearchQuery = `
MATCH (e:` + mailgraph.NodeEmail + `)
WHERE toLower(e.subject) CONTAINS toLower($query)
   OR toLower(e.body) CONTAINS toLower($query)
RETURN e.id AS id, e.subject AS subject, e.snippet AS snippet
LIMIT $limit`

// Candidate is an indexed email considered by semantic search.
type Candidate struct {
	ID        string
	Subject   string
	Snippet   string
	Embedding []float32
}

// Repository holds the index and search statements.
type Repository struct {
	store graphdb.Store
	log   *slog.Logger
}

// NewRepository creates a new ai repository
func NewRepository(store graphdb.Store, log *slog.Logger) *Repository {
	return &Repository{store: store, log: log.With(logger.Scope("ai.repo"))}
}

// SetEmbedding stores vec on the email, replacing any previous vector.
func (r *Repository) SetEmbedding(ctx context.Context, id string, vec []float32, now time.Time) error {
	ctx, span := tracing.Start(ctx, "ai.repository.set_embedding", attribute.String("email.id", id))
	defer span.End()

	records, err := r.store.Write(ctx, setEmbeddingQuery, map[string]any{
		"id":        id,
		"embedding": emails.EmbeddingParam(vec),
		"now":       now,
	})
	if err != nil {
		return fmt.Errorf("store embedding: %w", err)
	}
	if len(records) == 0 {
		return emails.ErrNotFound
	}
	return nil
}

// Unindexed returns up to limit ids of emails without an embedding of the
// given dimension, newest first. Vectors from another model and legacy JSON
// strings both count as unindexed.
func (r *Repository) Unindexed(ctx context.Context, limit, dimension int) ([]string, error) {
	records, err := r.store.Read(ctx, unindexedQuery, map[string]any{
		"limit":     int64(limit),
		"dimension": int64(dimension),
	})
	if err != nil {
		return nil, fmt.Errorf("list unindexed emails: %w", err)
	}
	ids := make([]string, 0, len(records))
	for _, rec := range records {
		if id := graphdb.String(rec, "id"); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Indexed loads every email that has an embedding.
func (r *Repository) Indexed(ctx context.Context) ([]Candidate, error) {
	ctx, span := tracing.Start(ctx, "ai.repository.indexed")
	defer span.End()

	records, err := r.store.Read(ctx, indexedQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("load indexed emails: %w", err)
	}
	out := make([]Candidate, 0, len(records))
	for _, rec := range records {
		out = append(out, Candidate{
			ID:        graphdb.String(rec, "id"),
			Subject:   graphdb.String(rec, "subject"),
			Snippet:   graphdb.String(rec, "snippet"),
			Embedding: emails.ParseEmbedding(graphdb.Value(rec, "embedding")),
		})
	}
	span.SetAttributes(attribute.Int("candidates", len(out)))
	return out, nil
}

// TextSearch is the case-insensitive substring fallback. Every hit scores 1.
func (r *Repository) TextSearch(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	ctx, span := tracing.Start(ctx, "ai.repository.text_search")
	defer span.End()

	records, err := r.store.Read(ctx, textSearchQuery, map[string]any{
		"query": query,
		"limit": int64(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("text search: %w", err)
	}
	out := make([]SearchResult, 0, len(records))
	for _, rec := range records {
		out = append(out, SearchResult{
			EmailID: graphdb.String(rec, "id"),
			Subject: graphdb.String(rec, "subject"),
			Snippet: graphdb.String(rec, "snippet"),
			Score:   1.0,
		})
	}
	return out, nil
}
