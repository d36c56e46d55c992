package graphdb

import (
	"errors"
	"fmt"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
)

func TestIsConstraintViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "constraint failure",
			err:  &neo4j.Neo4jError{Code: constraintViolationCode, Msg: "Node(1) already exists"},
			want: true,
		},
		{
			name: "wrapped constraint failure",
			err:  fmt.Errorf("create label: %w", &neo4j.Neo4jError{Code: constraintViolationCode}),
			want: true,
		},
		{
			name: "syntax error",
			err:  &neo4j.Neo4jError{Code: "Neo.ClientError.Statement.SyntaxError"},
			want: false,
		},
		{
			name: "plain error",
			err:  errors.New("connection reset"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsConstraintViolation(tt.err))
		})
	}
}

func TestClassify(t *testing.T) {
	neoErr := &neo4j.Neo4jError{Code: constraintViolationCode}
	err := classify(neoErr)

	assert.ErrorIs(t, err, ErrConstraintViolation)
	var unwrapped *neo4j.Neo4jError
	assert.ErrorAs(t, err, &unwrapped)

	plain := errors.New("boom")
	assert.Same(t, plain, classify(plain))
}

func TestRecordAccessors(t *testing.T) {
	rec := &neo4j.Record{
		Keys: []string{"name", "count", "node", "map", "list", "missing_type"},
		Values: []any{
			"Work",
			int64(3),
			neo4j.Node{Labels: []string{"Label"}, Props: map[string]any{"name": "Work"}},
			map[string]any{"email": "a@example.com"},
			[]any{"x", "y"},
			42.0,
		},
	}

	assert.Equal(t, "Work", String(rec, "name"))
	assert.Equal(t, int64(3), Int64(rec, "count"))
	assert.Equal(t, "Work", Props(rec, "node")["name"])
	assert.Equal(t, "a@example.com", Props(rec, "map")["email"])
	assert.Equal(t, []any{"x", "y"}, List(rec, "list"))

	assert.Equal(t, "", String(rec, "missing_type"))
	assert.Equal(t, "", String(rec, "absent"))
	assert.Equal(t, int64(0), Int64(rec, "absent"))
	assert.Nil(t, Props(rec, "absent"))
	assert.Nil(t, Value(nil, "name"))
}
