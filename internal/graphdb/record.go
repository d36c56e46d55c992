package graphdb

import (
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Value returns the raw value stored under key, or nil when the record is nil
// or has no such column.
func Value(rec *neo4j.Record, key string) any {
	if rec == nil {
		return nil
	}
	v, ok := rec.Get(key)
	if !ok {
		return nil
	}
	return v
}

// String returns the string under key or "" when absent or of another type.
func String(rec *neo4j.Record, key string) string {
	s, _ := Value(rec, key).(string)
	return s
}

// Int64 returns the integer under key or 0.
func Int64(rec *neo4j.Record, key string) int64 {
	switch n := Value(rec, key).(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

// Props returns the property map under key. Both nodes and map projections
// are accepted.
func Props(rec *neo4j.Record, key string) map[string]any {
	return AsProps(Value(rec, key))
}

// AsProps converts a node, relationship or map value into a property map.
func AsProps(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return t
	case neo4j.Node:
		return t.Props
	case *neo4j.Node:
		if t == nil {
			return nil
		}
		return t.Props
	case neo4j.Relationship:
		return t.Props
	default:
		return nil
	}
}

// List returns the list under key, or nil.
func List(rec *neo4j.Record, key string) []any {
	l, _ := Value(rec, key).([]any)
	return l
}
