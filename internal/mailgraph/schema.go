// Package mailgraph declares the logical graph schema of the mailbox: node
// labels, relationship types, constraints, indexes and the system label
// taxonomy seeded on startup.
package mailgraph

import (
	"context"
	"fmt"
	"log/slog"

	"go.uber.org/fx"

	"github.com/Kantosaurus/test-01/internal/graphdb"
	"github.com/Kantosaurus/test-01/pkg/logger"
)

// Node labels.
const (
	NodeEmail   = "Email"
	NodeContact = "Contact"
	NodeLabel   = "Label"
)

// Relationship types.
const (
	RelSentBy   = "SENT_BY"
	RelSentTo   = "SENT_TO"
	RelCC       = "CC"
	RelHasLabel = "HAS_LABEL"
)

// DefaultLabelColor is assigned to user labels created without a color.
const DefaultLabelColor = "#9e9e9e"

// Names of the protected system labels.
const (
	LabelInbox     = "INBOX"
	LabelSent      = "SENT"
	LabelDrafts    = "DRAFTS"
	LabelSpam      = "SPAM"
	LabelTrash     = "TRASH"
	LabelStarred   = "STARRED"
	LabelImportant = "IMPORTANT"
)

// SystemLabel is one entry of the seeded taxonomy.
type SystemLabel struct {
	Name  string
	Color string
}

// SystemLabels is the seeded taxonomy. None of these may be deleted.
var SystemLabels = []SystemLabel{
	{LabelInbox, "#4285f4"},
	{LabelSent, "#34a853"},
	{LabelDrafts, "#9aa0a6"},
	{LabelSpam, "#ea4335"},
	{LabelTrash, "#5f6368"},
	{LabelStarred, "#fbbc04"},
	{LabelImportant, "#fbbc04"},
}

// IsSystemLabel reports whether name is protected. Matching is exact.
func IsSystemLabel(name string) bool {
	for _, l := range SystemLabels {
		if l.Name == name {
			return true
		}
	}
	return false
}

// schemaStatements are applied in order; each is idempotent.
var schemaStatements = []string{
	"CREATE CONSTRAINT email_id IF NOT EXISTS FOR (e:" + NodeEmail + ") REQUIRE e.id IS UNIQUE",
	"CREATE CONSTRAINT contact_email IF NOT EXISTS FOR (c:" + NodeContact + ") REQUIRE c.email IS UNIQUE",
	"CREATE CONSTRAINT label_name IF NOT EXISTS FOR (l:" + NodeLabel + ") REQUIRE l.name IS UNIQUE",
	"CREATE INDEX email_date IF NOT EXISTS FOR (e:" + NodeEmail + ") ON (e.date)",
	"CREATE INDEX email_read IF NOT EXISTS FOR (e:" + NodeEmail + ") ON (e.is_read)",
	"CREATE INDEX email_starred IF NOT EXISTS FOR (e:" + NodeEmail + ") ON (e.is_starred)",
	"CREATE INDEX email_thread IF NOT EXISTS FOR (e:" + NodeEmail + ") ON (e.thread_id)",
}

const seedLabelsQuery = `
UNWIND $labels AS label
MERGE (l:` + NodeLabel + ` {name: label.name})
SET l.color = label.color`

var Module = fx.Module("mailgraph",
	fx.Provide(NewManager),
	fx.Invoke(RegisterSchemaLifecycle),
)

// Manager applies the schema and seeds system labels.
type Manager struct {
	store graphdb.Store
	log   *slog.Logger
}

// NewManager creates a schema manager.
func NewManager(store graphdb.Store, log *slog.Logger) *Manager {
	return &Manager{store: store, log: log.With(logger.Scope("mailgraph"))}
}

// EnsureSchema creates constraints and indexes, then seeds the system labels.
// A failing schema statement is logged and skipped; a seeding failure is
// returned.
func (m *Manager) EnsureSchema(ctx context.Context) error {
	applied := 0
	for _, stmt := range schemaStatements {
		if _, err := m.store.Write(ctx, stmt, nil); err != nil {
			m.log.Warn("schema statement failed", slog.String("statement", stmt), logger.Error(err))
			continue
		}
		applied++
	}

	labels := make([]any, 0, len(SystemLabels))
	for _, l := range SystemLabels {
		labels = append(labels, map[string]any{"name": l.Name, "color": l.Color})
	}
	if _, err := m.store.Write(ctx, seedLabelsQuery, map[string]any{"labels": labels}); err != nil {
		return fmt.Errorf("seed system labels: %w", err)
	}

	m.log.Info("graph schema ensured",
		slog.Int("statements_applied", applied),
		slog.Int("statements_total", len(schemaStatements)),
		slog.Int("system_labels", len(SystemLabels)),
	)
	return nil
}

// RegisterSchemaLifecycle runs EnsureSchema when the application starts.
func RegisterSchemaLifecycle(lc fx.Lifecycle, m *Manager) {
	lc.Append(fx.Hook{
		OnStart: m.EnsureSchema,
	})
}
