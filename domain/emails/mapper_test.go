package emails

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"

	"github.com/Kantosaurus/test-01/internal/testutil"
)

func strPtr(s string) *string { return &s }

func TestFromRecord(t *testing.T) {
	date := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		rec  *neo4j.Record
		want Email
	}{
		{
			name: "full row",
			rec: testutil.Record(map[string]any{
				"email": map[string]any{
					"id": "e1", "subject": "Hello", "body": "Body text", "snippet": "Body text",
					"date": date, "is_read": true, "is_starred": false, "thread_id": "t1",
				},
				"sender":     map[string]any{"email": "alice@example.com", "name": "Alice"},
				"recipients": []any{map[string]any{"email": "bob@example.com", "name": nil}},
				"cc":         []any{map[string]any{"email": "carol@example.com", "name": "Carol"}},
				"labels":     []any{"INBOX", "Work"},
			}),
			want: Email{
				ID: "e1", Subject: "Hello", Body: "Body text", Snippet: "Body text",
				Date: date, IsRead: true, ThreadID: strPtr("t1"),
				From:   Contact{Email: "alice@example.com", Name: strPtr("Alice")},
				To:     []Contact{{Email: "bob@example.com"}},
				CC:     []Contact{{Email: "carol@example.com", Name: strPtr("Carol")}},
				Labels: []string{"INBOX", "Work"},
			},
		},
		{
			name: "missing fields take defaults",
			rec: testutil.Record(map[string]any{
				"email":      map[string]any{"id": "e2", "is_read": "yes"},
				"sender":     nil,
				"recipients": []any{},
				"labels":     nil,
			}),
			want: Email{
				ID:     "e2",
				From:   Contact{Email: UnknownSender},
				To:     []Contact{},
				CC:     []Contact{},
				Labels: []string{},
			},
		},
		{
			name: "node values and duplicate recipients",
			rec: testutil.Record(map[string]any{
				"email": neo4j.Node{Props: map[string]any{"id": "e3", "date": "2024-03-01T09:30:00Z"}},
				"sender": neo4j.Node{Props: map[string]any{"email": "alice@example.com"}},
				"recipients": []any{
					map[string]any{"email": "bob@example.com"},
					map[string]any{"email": "bob@example.com"},
					map[string]any{"email": nil},
				},
				"labels": []any{"INBOX", "INBOX", nil},
			}),
			want: Email{
				ID:     "e3",
				Date:   date,
				From:   Contact{Email: "alice@example.com"},
				To:     []Contact{{Email: "bob@example.com"}},
				CC:     []Contact{},
				Labels: []string{"INBOX"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromRecord(tt.rec)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("FromRecord() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseEmbedding(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []float32
	}{
		{"native list", []any{0.5, 1.0, int64(2)}, []float32{0.5, 1, 2}},
		{"float64 slice", []float64{0.25, 0.75}, []float32{0.25, 0.75}},
		{"legacy json string", "[0.1,0.2]", []float32{0.1, 0.2}},
		{"malformed json", "[0.1,", nil},
		{"mixed list", []any{0.1, "x"}, nil},
		{"nil", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseEmbedding(tt.in))
		})
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

	assert.Equal(t, want, ParseDate(want))
	assert.Equal(t, want, ParseDate(want.In(time.FixedZone("CET", 3600))))
	assert.Equal(t, want, ParseDate("2024-03-01T09:30:00Z"))
	assert.True(t, ParseDate("yesterday").IsZero())
	assert.True(t, ParseDate(nil).IsZero())
}

func TestEmbeddingParam(t *testing.T) {
	assert.Equal(t, []float64{0.5, -1}, EmbeddingParam([]float32{0.5, -1}))
	assert.Empty(t, EmbeddingParam(nil))
}

func TestEmail_Participants(t *testing.T) {
	e := Email{
		From: Contact{Email: "a@x.com"},
		To:   []Contact{{Email: "b@x.com"}, {Email: "a@x.com"}, {Email: "c@x.com"}},
		CC:   []Contact{{Email: "d@x.com"}},
	}
	assert.Equal(t, []string{"a@x.com", "b@x.com", "c@x.com"}, e.Participants())
}
