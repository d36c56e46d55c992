package emails

import (
	"encoding/json"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Kantosaurus/test-01/internal/graphdb"
)

// UnknownSender is used when an email has no SENT_BY relationship.
const UnknownSender = "unknown@example.com"

// Result columns produced by the email read queries and consumed by
// FromRecord.
const (
	colEmail      = "email"
	colSender     = "sender"
	colRecipients = "recipients"
	colCC         = "cc"
	colLabels     = "labels"
)

// ReturnClause is the projection shared by every query that reads full
// emails. The query must bind e, sender, recipients, cc and labels.
const ReturnClause = `RETURN e {.id, .subject, .body, .snippet, .date, .is_read, .is_starred, .thread_id} AS email,
       sender, recipients, cc, labels`

// FromRecord maps one result row into an Email. Missing or wrongly typed
// fields take their zero value; an absent sender becomes UnknownSender.
func FromRecord(rec *neo4j.Record) Email {
	props := graphdb.Props(rec, colEmail)

	e := Email{
		ID:        str(props["id"]),
		Subject:   str(props["subject"]),
		Body:      str(props["body"]),
		Snippet:   str(props["snippet"]),
		Date:      ParseDate(props["date"]),
		IsRead:    flag(props["is_read"]),
		IsStarred: flag(props["is_starred"]),
		ThreadID:  optionalString(props["thread_id"]),
		To:        ContactsFromList(graphdb.List(rec, colRecipients)),
		CC:        ContactsFromList(graphdb.List(rec, colCC)),
		Labels:    LabelsFromList(graphdb.List(rec, colLabels)),
	}
	if emb, ok := props["embedding"]; ok {
		e.Embedding = ParseEmbedding(emb)
	}

	if from, ok := ContactFromValue(graphdb.Value(rec, colSender)); ok {
		e.From = from
	} else {
		e.From = Contact{Email: UnknownSender}
	}
	return e
}

// ContactFromValue maps a Contact node or {email, name} projection. ok is
// false when no address is present.
func ContactFromValue(v any) (Contact, bool) {
	props := graphdb.AsProps(v)
	addr := str(props["email"])
	if addr == "" {
		return Contact{}, false
	}
	return Contact{Email: addr, Name: optionalString(props["name"])}, true
}

// ContactsFromList maps a collected list of contacts, dropping entries
// without an address and duplicate addresses. The result is never nil.
func ContactsFromList(list []any) []Contact {
	out := make([]Contact, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	for _, item := range list {
		c, ok := ContactFromValue(item)
		if !ok {
			continue
		}
		if _, dup := seen[c.Email]; dup {
			continue
		}
		seen[c.Email] = struct{}{}
		out = append(out, c)
	}
	return out
}

// LabelsFromList maps a collected list of label names. The result is never
// nil.
func LabelsFromList(list []any) []string {
	out := make([]string, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	for _, item := range list {
		name, _ := item.(string)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// ParseDate accepts native temporal values and RFC3339 strings.
func ParseDate(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t.UTC()
	case neo4j.LocalDateTime:
		return t.Time().UTC()
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed.UTC()
		}
	}
	return time.Time{}
}

// ParseEmbedding accepts a native list of numbers or a JSON-encoded array.
// Anything else yields nil.
func ParseEmbedding(v any) []float32 {
	switch t := v.(type) {
	case []float32:
		return t
	case []float64:
		out := make([]float32, len(t))
		for i, f := range t {
			out[i] = float32(f)
		}
		return out
	case []any:
		out := make([]float32, 0, len(t))
		for _, item := range t {
			switch n := item.(type) {
			case float64:
				out = append(out, float32(n))
			case int64:
				out = append(out, float32(n))
			default:
				return nil
			}
		}
		return out
	case string:
		var out []float32
		if err := json.Unmarshal([]byte(t), &out); err != nil {
			return nil
		}
		return out
	default:
		return nil
	}
}

// EmbeddingParam converts a vector to the float list the driver stores.
func EmbeddingParam(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func flag(v any) bool {
	b, _ := v.(bool)
	return b
}

func optionalString(v any) *string {
	s, ok := v.(string)
	if !ok || s == "" {
		return nil
	}
	return &s
}
