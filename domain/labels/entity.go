package labels

import (
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Kantosaurus/test-01/internal/graphdb"
)

// Label is a named tag with its live email count.
type Label struct {
	Name       string  `json:"name"`
	Color      *string `json:"color"`
	EmailCount int64   `json:"email_count"`
}

// CreateLabelRequest is the request DTO for creating a label
type CreateLabelRequest struct {
	Name  string  `json:"name"`
	Color *string `json:"color"`
}

// FromRecord maps a name/color/email_count row. A missing count is 0.
func FromRecord(rec *neo4j.Record) Label {
	l := Label{
		Name:       graphdb.String(rec, "name"),
		EmailCount: graphdb.Int64(rec, "email_count"),
	}
	if color := graphdb.String(rec, "color"); color != "" {
		l.Color = &color
	}
	return l
}
