package emails

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Kantosaurus/test-01/internal/graphdb"
	"github.com/Kantosaurus/test-01/internal/mailgraph"
	"github.com/Kantosaurus/test-01/pkg/logger"
	"github.com/Kantosaurus/test-01/pkg/tracing"
)

// ErrNotFound is returned when the addressed email does not exist.
var ErrNotFound = errors.New("email not found")

// Filter restricts List and Count. Nil fields do not filter.
type Filter struct {
	Label     *string
	IsRead    *bool
	IsStarred *bool
}

const labelPredicate = "EXISTS { MATCH (e)-[:" + mailgraph.RelHasLabel + "]->(:" + mailgraph.NodeLabel + " {name: $label}) }"

// where renders the filter as a conjunction of fixed fragments. Values only
// ever travel as parameters.
func (f Filter) where() (string, map[string]any) {
	var clauses []string
	params := map[string]any{}
	if f.Label != nil {
		clauses = append(clauses, labelPredicate)
		params["label"] = *f.Label
	}
	if f.IsRead != nil {
		clauses = append(clauses, "e.is_read = $is_read")
		params["is_read"] = *f.IsRead
	}
	if f.IsStarred != nil {
		clauses = append(clauses, "e.is_starred = $is_starred")
		params["is_starred"] = *f.IsStarred
	}
	if len(clauses) == 0 {
		return "true", params
	}
	return strings.Join(clauses, " AND "), params
}

const listQuery = `
MATCH (e:` + mailgraph.NodeEmail + `)
WHERE %s
WITH e ORDER BY e.date DESC, e.id ASC SKIP $skip LIMIT $limit
OPTIONAL MATCH (e)-[:` + mailgraph.RelSentBy + `]->(s:` + mailgraph.NodeContact + `)
OPTIONAL MATCH (e)-[:` + mailgraph.RelSentTo + `]->(r:` + mailgraph.NodeContact + `)
OPTIONAL MATCH (e)-[:` + mailgraph.RelHasLabel + `]->(l:` + mailgraph.NodeLabel + `)
WITH e,
     head(collect(DISTINCT s {.email, .name})) AS sender,
     collect(DISTINCT r {.email, .name}) AS recipients,
     [] AS cc,
     collect(DISTINCT l.name) AS labels
` + ReturnClause + `
ORDER BY e.date DESC, e.id ASC`

const countQuery = `
MATCH (e:` + mailgraph.NodeEmail + `)
WHERE %s
RETURN count(e) AS total`

const getQuery = `
MATCH (e:` + mailgraph.NodeEmail + ` {id: $id})
OPTIONAL MATCH (e)-[:` + mailgraph.RelSentBy + `]->(s:` + mailgraph.NodeContact + `)
OPTIONAL MATCH (e)-[:` + mailgraph.RelSentTo + `]->(r:` + mailgraph.NodeContact + `)
OPTIONAL MATCH (e)-[:` + mailgraph.RelCC + `]->(c:` + mailgraph.NodeContact + `)
OPTIONAL MATCH (e)-[:` + mailgraph.RelHasLabel + `]->(l:` + mailgraph.NodeLabel + `)
WITH e,
     head(collect(DISTINCT s {.email, .name})) AS sender,
     collect(DISTINCT r {.email, .name}) AS recipients,
     collect(DISTINCT c {.email, .name}) AS cc,
     collect(DISTINCT l.name) AS labels
` + ReturnClause

const threadOfQuery = `
MATCH (r:` + mailgraph.NodeEmail + ` {id: $id})
RETURN r.thread_id AS thread_id`

const createQuery = `
CREATE (e:` + mailgraph.NodeEmail + ` {
  id: $id, subject: $subject, body: $body, snippet: $snippet, date: $date,
  is_read: false, is_starred: false, thread_id: $thread_id
})
MERGE (me:` + mailgraph.NodeContact + ` {email: $owner_email})
ON CREATE SET me.name = $owner_name
MERGE (e)-[:` + mailgraph.RelSentBy + `]->(me)
MERGE (sent:` + mailgraph.NodeLabel + ` {name: $sent_label})
MERGE (e)-[:` + mailgraph.RelHasLabel + `]->(sent)
RETURN e.id AS id`

// linkContactsQuery merges one contact per address and links it with rel.
// rel is one of the mailgraph relationship constants.
func linkContactsQuery(rel string) string {
	return `
MATCH (e:` + mailgraph.NodeEmail + ` {id: $id})
UNWIND $addresses AS address
MERGE (c:` + mailgraph.NodeContact + ` {email: address})
MERGE (e)-[:` + rel + `]->(c)`
}

const updateFlagsQuery = `
MATCH (e:` + mailgraph.NodeEmail + ` {id: $id})
SET e.is_read = coalesce($is_read, e.is_read),
    e.is_starred = coalesce($is_starred, e.is_starred)
RETURN e.id AS id`

const clearLabelsQuery = `
MATCH (e:` + mailgraph.NodeEmail + ` {id: $id})-[r:` + mailgraph.RelHasLabel + `]->(:` + mailgraph.NodeLabel + `)
DELETE r`

const setLabelsQuery = `
MATCH (e:` + mailgraph.NodeEmail + ` {id: $id})
UNWIND $labels AS name
MERGE (l:` + mailgraph.NodeLabel + ` {name: name})
ON CREATE SET l.color = $default_color
MERGE (e)-[:` + mailgraph.RelHasLabel + `]->(l)`

const deleteQuery = `
MATCH (e:` + mailgraph.NodeEmail + ` {id: $id})
DETACH DELETE e`

// NewEmail is the data persisted by Create.
type NewEmail struct {
	ID         string
	Subject    string
	Body       string
	Snippet    string
	Date       time.Time
	ThreadID   string
	Owner      Contact
	Recipients []string
	CC         []string
}

// Changes is a partial update. Nil fields are left untouched; a non-nil
// Labels replaces the whole label set.
type Changes struct {
	IsRead    *bool
	IsStarred *bool
	Labels    []string
}

// Repository reads and writes emails in the graph.
type Repository struct {
	store graphdb.Store
	log   *slog.Logger
}

// NewRepository creates a new email repository
func NewRepository(store graphdb.Store, log *slog.Logger) *Repository {
	return &Repository{store: store, log: log.With(logger.Scope("emails.repo"))}
}

// List returns one page of emails ordered newest first.
func (r *Repository) List(ctx context.Context, f Filter, skip, limit int) ([]Email, error) {
	ctx, span := tracing.Start(ctx, "emails.repository.list",
		attribute.Int("skip", skip),
		attribute.Int("limit", limit),
	)
	defer span.End()

	where, params := f.where()
	params["skip"] = int64(skip)
	params["limit"] = int64(limit)

	records, err := r.store.Read(ctx, fmt.Sprintf(listQuery, where), params)
	if err != nil {
		return nil, fmt.Errorf("list emails: %w", err)
	}
	out := make([]Email, 0, len(records))
	for _, rec := range records {
		out = append(out, FromRecord(rec))
	}
	return out, nil
}

// Count returns the number of emails matching f.
func (r *Repository) Count(ctx context.Context, f Filter) (int64, error) {
	ctx, span := tracing.Start(ctx, "emails.repository.count")
	defer span.End()

	where, params := f.where()
	records, err := r.store.Read(ctx, fmt.Sprintf(countQuery, where), params)
	if err != nil {
		return 0, fmt.Errorf("count emails: %w", err)
	}
	if len(records) == 0 {
		return 0, nil
	}
	return graphdb.Int64(records[0], "total"), nil
}

// Get returns the email with its sender, recipients, CC and labels.
func (r *Repository) Get(ctx context.Context, id string) (*Email, error) {
	ctx, span := tracing.Start(ctx, "emails.repository.get", attribute.String("email.id", id))
	defer span.End()

	records, err := r.store.Read(ctx, getQuery, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get email: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrNotFound
	}
	e := FromRecord(records[0])
	return &e, nil
}

// ThreadOf returns the thread id of the email id. The string is empty when
// the email has none.
func (r *Repository) ThreadOf(ctx context.Context, id string) (string, error) {
	records, err := r.store.Read(ctx, threadOfQuery, map[string]any{"id": id})
	if err != nil {
		return "", fmt.Errorf("lookup thread: %w", err)
	}
	if len(records) == 0 {
		return "", ErrNotFound
	}
	return graphdb.String(records[0], "thread_id"), nil
}

// Create writes the email node and all of its relationships in one
// transaction.
func (r *Repository) Create(ctx context.Context, n NewEmail) error {
	ctx, span := tracing.Start(ctx, "emails.repository.create", attribute.String("email.id", n.ID))
	defer span.End()

	err := r.store.InTx(ctx, func(ctx context.Context, tx graphdb.Querier) error {
		ownerName := any(nil)
		if n.Owner.Name != nil {
			ownerName = *n.Owner.Name
		}
		if _, err := tx.Run(ctx, createQuery, map[string]any{
			"id":          n.ID,
			"subject":     n.Subject,
			"body":        n.Body,
			"snippet":     n.Snippet,
			"date":        n.Date,
			"thread_id":   n.ThreadID,
			"owner_email": n.Owner.Email,
			"owner_name":  ownerName,
			"sent_label":  mailgraph.LabelSent,
		}); err != nil {
			return fmt.Errorf("create email node: %w", err)
		}

		if err := linkContacts(ctx, tx, n.ID, mailgraph.RelSentTo, n.Recipients); err != nil {
			return err
		}
		return linkContacts(ctx, tx, n.ID, mailgraph.RelCC, n.CC)
	})
	if err != nil {
		return err
	}

	r.log.Debug("email created",
		slog.String("email_id", n.ID),
		slog.Int("recipients", len(n.Recipients)),
		slog.Int("cc", len(n.CC)),
	)
	return nil
}

func linkContacts(ctx context.Context, tx graphdb.Querier, id, rel string, addresses []string) error {
	if len(addresses) == 0 {
		return nil
	}
	list := make([]any, len(addresses))
	for i, a := range addresses {
		list[i] = a
	}
	if _, err := tx.Run(ctx, linkContactsQuery(rel), map[string]any{"id": id, "addresses": list}); err != nil {
		return fmt.Errorf("link %s contacts: %w", rel, err)
	}
	return nil
}

// Update applies c in one transaction.
func (r *Repository) Update(ctx context.Context, id string, c Changes) error {
	ctx, span := tracing.Start(ctx, "emails.repository.update", attribute.String("email.id", id))
	defer span.End()

	return r.store.InTx(ctx, func(ctx context.Context, tx graphdb.Querier) error {
		records, err := tx.Run(ctx, updateFlagsQuery, map[string]any{
			"id":         id,
			"is_read":    optionalBool(c.IsRead),
			"is_starred": optionalBool(c.IsStarred),
		})
		if err != nil {
			return fmt.Errorf("update flags: %w", err)
		}
		if len(records) == 0 {
			return ErrNotFound
		}

		if c.Labels == nil {
			return nil
		}
		if _, err := tx.Run(ctx, clearLabelsQuery, map[string]any{"id": id}); err != nil {
			return fmt.Errorf("clear labels: %w", err)
		}
		if len(c.Labels) == 0 {
			return nil
		}
		names := make([]any, len(c.Labels))
		for i, l := range c.Labels {
			names[i] = l
		}
		if _, err := tx.Run(ctx, setLabelsQuery, map[string]any{
			"id":            id,
			"labels":        names,
			"default_color": mailgraph.DefaultLabelColor,
		}); err != nil {
			return fmt.Errorf("set labels: %w", err)
		}
		return nil
	})
}

// Delete removes the email and its relationships. Deleting a missing email
// is not an error.
func (r *Repository) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.Start(ctx, "emails.repository.delete", attribute.String("email.id", id))
	defer span.End()

	if _, err := r.store.Write(ctx, deleteQuery, map[string]any{"id": id}); err != nil {
		return fmt.Errorf("delete email: %w", err)
	}
	return nil
}

func optionalBool(b *bool) any {
	if b == nil {
		return nil
	}
	return *b
}
