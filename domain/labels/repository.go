package labels

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Kantosaurus/test-01/internal/graphdb"
	"github.com/Kantosaurus/test-01/internal/mailgraph"
	"github.com/Kantosaurus/test-01/pkg/logger"
	"github.com/Kantosaurus/test-01/pkg/tracing"
)

const listQuery = `
MATCH (l:` + mailgraph.NodeLabel + `)
OPTIONAL MATCH (e:` + mailgraph.NodeEmail + `)-[:` + mailgraph.RelHasLabel + `]->(l)
RETURN l.name AS name, l.color AS color, count(e) AS email_count
ORDER BY name`

const createQuery = `
CREATE (l:` + mailgraph.NodeLabel + ` {name: $name, color: $color})
RETURN l.name AS name, l.color AS color, 0 AS email_count`

const deleteQuery = `
MATCH (l:` + mailgraph.NodeLabel + ` {name: $name})
DETACH DELETE l`

// Repository reads and writes label nodes.
type Repository struct {
	store graphdb.Store
	log   *slog.Logger
}

// NewRepository creates a new labels repository
func NewRepository(store graphdb.Store, log *slog.Logger) *Repository {
	return &Repository{store: store, log: log.With(logger.Scope("labels.repo"))}
}

// List returns every label sorted by name.
func (r *Repository) List(ctx context.Context) ([]Label, error) {
	ctx, span := tracing.Start(ctx, "labels.repository.list")
	defer span.End()

	records, err := r.store.Read(ctx, listQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("list labels: %w", err)
	}
	out := make([]Label, 0, len(records))
	for _, rec := range records {
		out = append(out, FromRecord(rec))
	}
	return out, nil
}

// Create inserts a label. A duplicate name fails with
// graphdb.ErrConstraintViolation.
func (r *Repository) Create(ctx context.Context, name, color string) (*Label, error) {
	ctx, span := tracing.Start(ctx, "labels.repository.create", attribute.String("label.name", name))
	defer span.End()

	records, err := r.store.Write(ctx, createQuery, map[string]any{"name": name, "color": color})
	if err != nil {
		return nil, fmt.Errorf("create label: %w", err)
	}
	if len(records) == 0 {
		return &Label{Name: name, Color: &color}, nil
	}
	l := FromRecord(records[0])
	return &l, nil
}

// Delete removes the label and its edges. Missing labels are ignored.
func (r *Repository) Delete(ctx context.Context, name string) error {
	ctx, span := tracing.Start(ctx, "labels.repository.delete", attribute.String("label.name", name))
	defer span.End()

	if _, err := r.store.Write(ctx, deleteQuery, map[string]any{"name": name}); err != nil {
		return fmt.Errorf("delete label: %w", err)
	}
	return nil
}
