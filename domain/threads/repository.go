package threads

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Kantosaurus/test-01/domain/emails"
	"github.com/Kantosaurus/test-01/internal/graphdb"
	"github.com/Kantosaurus/test-01/internal/mailgraph"
	"github.com/Kantosaurus/test-01/pkg/logger"
	"github.com/Kantosaurus/test-01/pkg/tracing"
)

const threadQuery = `
MATCH (e:` + mailgraph.NodeEmail + ` {thread_id: $thread_id})
OPTIONAL MATCH (e)-[:` + mailgraph.RelSentBy + `]->(s:` + mailgraph.NodeContact + `)
OPTIONAL MATCH (e)-[:` + mailgraph.RelSentTo + `]->(r:` + mailgraph.NodeContact + `)
OPTIONAL MATCH (e)-[:` + mailgraph.RelHasLabel + `]->(l:` + mailgraph.NodeLabel + `)
WITH e,
     head(collect(DISTINCT s {.email, .name})) AS sender,
     collect(DISTINCT r {.email, .name}) AS recipients,
     [] AS cc,
     collect(DISTINCT l.name) AS labels
` + emails.ReturnClause + `
ORDER BY e.date ASC`

// Repository loads the emails of a thread.
type Repository struct {
	store graphdb.Store
	log   *slog.Logger
}

// NewRepository creates a new threads repository
func NewRepository(store graphdb.Store, log *slog.Logger) *Repository {
	return &Repository{store: store, log: log.With(logger.Scope("threads.repo"))}
}

// Emails returns the emails of threadID ordered oldest first.
func (r *Repository) Emails(ctx context.Context, threadID string) ([]emails.Email, error) {
	ctx, span := tracing.Start(ctx, "threads.repository.emails", attribute.String("thread.id", threadID))
	defer span.End()

	records, err := r.store.Read(ctx, threadQuery, map[string]any{"thread_id": threadID})
	if err != nil {
		return nil, fmt.Errorf("load thread: %w", err)
	}
	out := make([]emails.Email, 0, len(records))
	for _, rec := range records {
		out = append(out, emails.FromRecord(rec))
	}
	return out, nil
}
