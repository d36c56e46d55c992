package emails

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kantosaurus/test-01/internal/config"
	"github.com/Kantosaurus/test-01/internal/mailgraph"
	"github.com/Kantosaurus/test-01/internal/testutil"
	"github.com/Kantosaurus/test-01/pkg/apperror"
)

const getFragment = "OPTIONAL MATCH (e)-[:CC]->(c:Contact)"

func newTestService(store *testutil.FakeStore) *Service {
	cfg := &config.Config{Mailbox: config.MailboxConfig{OwnerAddress: "me@example.com", OwnerName: "Me"}}
	log := testutil.DiscardLogger()
	svc := NewService(NewRepository(store, log), cfg, log)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func emailRecord(id, subject string, labels ...string) *neo4j.Record {
	ls := make([]any, len(labels))
	for i, l := range labels {
		ls[i] = l
	}
	return testutil.Record(map[string]any{
		"email":      map[string]any{"id": id, "subject": subject, "date": time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
		"sender":     map[string]any{"email": "me@example.com", "name": "Me"},
		"recipients": []any{map[string]any{"email": "bob@example.com"}},
		"cc":         []any{},
		"labels":     ls,
	})
}

// echoGet answers the detail query with a row for whatever id is asked.
func echoGet(store *testutil.FakeStore) {
	store.On(getFragment, func(params map[string]any) ([]*neo4j.Record, error) {
		return []*neo4j.Record{emailRecord(params["id"].(string), "subject", "SENT")}, nil
	})
}

func TestFilter_Where(t *testing.T) {
	work := "Work"
	yes := true

	where, params := Filter{}.where()
	assert.Equal(t, "true", where)
	assert.Empty(t, params)

	where, params = Filter{Label: &work, IsRead: &yes}.where()
	assert.Equal(t, "EXISTS { MATCH (e)-[:HAS_LABEL]->(:Label {name: $label}) } AND e.is_read = $is_read", where)
	assert.Equal(t, map[string]any{"label": "Work", "is_read": true}, params)
}

func TestService_List(t *testing.T) {
	store := testutil.NewFakeStore().
		OnRecords("SKIP $skip LIMIT $limit", emailRecord("e1", "one"), emailRecord("e2", "two")).
		OnRecords("RETURN count(e) AS total", testutil.Record(map[string]any{"total": int64(42)}))
	svc := newTestService(store)

	label := "Work'); MATCH (n) DETACH DELETE n //"
	resp, err := svc.List(context.Background(), ListParams{Filter: Filter{Label: &label}, Page: 3, Limit: 10})
	require.NoError(t, err)

	assert.Equal(t, int64(42), resp.Total)
	assert.Equal(t, 3, resp.Page)
	assert.Equal(t, 10, resp.Limit)
	require.Len(t, resp.Emails, 2)
	assert.Equal(t, "e1", resp.Emails[0].ID)

	for _, c := range store.Calls() {
		assert.NotContains(t, c.Cypher, "DETACH DELETE n", "filter value leaked into query text")
		assert.Equal(t, label, c.Params["label"])
	}
	list := store.CallsMatching("SKIP $skip LIMIT $limit")
	require.Len(t, list, 1)
	assert.Equal(t, int64(20), list[0].Params["skip"])
	assert.Equal(t, int64(10), list[0].Params["limit"])
}

func TestService_ListPagination(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		limit     int
		wantPage  int
		wantLimit int
		wantSkip  int64
	}{
		{"defaults", 0, 0, 1, DefaultPageSize, 0},
		{"negative page", -4, 5, 1, 5, 0},
		{"limit above max", 2, 10000, 2, MaxPageSize, MaxPageSize},
		{"second page", 2, 25, 2, 25, 25},
		{"page past int range", 184467440737095518, 50, math.MaxInt / 50, 50, int64(math.MaxInt/50-1) * 50},
		{"half max page", math.MaxInt / 2, 500, math.MaxInt / 500, 500, int64(math.MaxInt/500-1) * 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testutil.NewFakeStore()
			svc := newTestService(store)

			resp, err := svc.List(context.Background(), ListParams{Page: tt.page, Limit: tt.limit})
			require.NoError(t, err)
			assert.Equal(t, tt.wantPage, resp.Page)
			assert.Equal(t, tt.wantLimit, resp.Limit)
			assert.NotNil(t, resp.Emails)

			list := store.CallsMatching("SKIP $skip LIMIT $limit")
			require.Len(t, list, 1)
			assert.Equal(t, tt.wantSkip, list[0].Params["skip"])
			assert.Contains(t, list[0].Cypher, "WHERE true")
		})
	}
}

func TestService_ListStoreFailure(t *testing.T) {
	store := testutil.NewFakeStore().OnError("SKIP $skip", errors.New("connection refused"))
	svc := newTestService(store)

	_, err := svc.List(context.Background(), ListParams{})
	assert.ErrorIs(t, err, apperror.ErrDatabase)
}

func TestService_GetNotFound(t *testing.T) {
	svc := newTestService(testutil.NewFakeStore())

	_, err := svc.Get(context.Background(), "missing")
	require.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Equal(t, "email 'missing' not found", err.Error())
}

func TestService_Create(t *testing.T) {
	store := testutil.NewFakeStore()
	echoGet(store)
	svc := newTestService(store)

	email, err := svc.Create(context.Background(), &CreateEmailRequest{
		Subject: "Hello",
		Body:    strings.Repeat("x", 250),
		To:      []string{"bob@example.com", " bob@example.com ", ""},
		CC:      []string{"carol@example.com"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, email.ID)
	assert.Equal(t, 1, store.Commits)

	create := store.CallsMatching("CREATE (e:Email")
	require.Len(t, create, 1)
	p := create[0].Params
	assert.Equal(t, "tx", create[0].Mode)
	assert.Equal(t, email.ID, p["id"])
	assert.Equal(t, strings.Repeat("x", 100), p["snippet"])
	assert.Equal(t, "me@example.com", p["owner_email"])
	assert.Equal(t, "Me", p["owner_name"])
	assert.Equal(t, mailgraph.LabelSent, p["sent_label"])
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), p["date"])
	assert.NotEmpty(t, p["thread_id"])

	to := store.CallsMatching("MERGE (e)-[:SENT_TO]->(c)")
	require.Len(t, to, 1)
	assert.Equal(t, []any{"bob@example.com"}, to[0].Params["addresses"])

	cc := store.CallsMatching("MERGE (e)-[:CC]->(c)")
	require.Len(t, cc, 1)
	assert.Equal(t, []any{"carol@example.com"}, cc[0].Params["addresses"])
}

func TestService_CreateWithoutCCSkipsLink(t *testing.T) {
	store := testutil.NewFakeStore()
	echoGet(store)
	svc := newTestService(store)

	_, err := svc.Create(context.Background(), &CreateEmailRequest{Subject: "s", To: []string{"bob@example.com"}})
	require.NoError(t, err)
	assert.Empty(t, store.CallsMatching("MERGE (e)-[:CC]->(c)"))
}

func TestService_CreateWithoutRecipients(t *testing.T) {
	store := testutil.NewFakeStore()
	echoGet(store)
	svc := newTestService(store)

	email, err := svc.Create(context.Background(), &CreateEmailRequest{Subject: "draft", Body: "b", To: []string{" "}})
	require.NoError(t, err)
	assert.NotEmpty(t, email.ID)
	assert.Equal(t, 1, store.Commits)
	assert.Len(t, store.CallsMatching("CREATE (e:Email"), 1)
	assert.Empty(t, store.CallsMatching("MERGE (e)-[:SENT_TO]->(c)"))
}

func TestService_CreateReply(t *testing.T) {
	t.Run("inherits thread of replied-to email", func(t *testing.T) {
		store := testutil.NewFakeStore().
			OnRecords("RETURN r.thread_id", testutil.Record(map[string]any{"thread_id": "thread-7"}))
		echoGet(store)
		svc := newTestService(store)

		replyTo := "orig"
		_, err := svc.Create(context.Background(), &CreateEmailRequest{To: []string{"bob@example.com"}, ReplyTo: &replyTo})
		require.NoError(t, err)

		create := store.CallsMatching("CREATE (e:Email")
		require.Len(t, create, 1)
		assert.Equal(t, "thread-7", create[0].Params["thread_id"])
	})

	t.Run("original without thread starts a new one", func(t *testing.T) {
		store := testutil.NewFakeStore().
			OnRecords("RETURN r.thread_id", testutil.Record(map[string]any{"thread_id": nil}))
		echoGet(store)
		svc := newTestService(store)

		replyTo := "orig"
		_, err := svc.Create(context.Background(), &CreateEmailRequest{To: []string{"bob@example.com"}, ReplyTo: &replyTo})
		require.NoError(t, err)

		create := store.CallsMatching("CREATE (e:Email")
		require.Len(t, create, 1)
		assert.NotEmpty(t, create[0].Params["thread_id"])
	})

	t.Run("missing original is not found", func(t *testing.T) {
		store := testutil.NewFakeStore()
		svc := newTestService(store)

		replyTo := "nope"
		_, err := svc.Create(context.Background(), &CreateEmailRequest{To: []string{"bob@example.com"}, ReplyTo: &replyTo})
		assert.ErrorIs(t, err, apperror.ErrNotFound)
		assert.Empty(t, store.CallsMatching("CREATE (e:Email"))
	})
}

func TestService_CreateRollsBackOnFailure(t *testing.T) {
	store := testutil.NewFakeStore().OnError("MERGE (e)-[:SENT_TO]->(c)", errors.New("disk full"))
	svc := newTestService(store)

	_, err := svc.Create(context.Background(), &CreateEmailRequest{To: []string{"bob@example.com"}})
	assert.ErrorIs(t, err, apperror.ErrDatabase)
	assert.Equal(t, 1, store.Rollbacks)
	assert.Equal(t, 0, store.Commits)
}

func TestService_UpdateReplacesLabels(t *testing.T) {
	store := testutil.NewFakeStore().
		OnRecords("SET e.is_read", testutil.Record(map[string]any{"id": "e1"}))
	echoGet(store)
	svc := newTestService(store)

	read := true
	_, err := svc.Update(context.Background(), "e1", &UpdateEmailRequest{
		IsRead: &read,
		Labels: []string{"Work", "Work", "Personal"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, store.Commits)

	flags := store.CallsMatching("SET e.is_read")
	require.Len(t, flags, 1)
	assert.Equal(t, true, flags[0].Params["is_read"])
	assert.Nil(t, flags[0].Params["is_starred"])

	require.Len(t, store.CallsMatching("DELETE r"), 1)
	set := store.CallsMatching("UNWIND $labels AS name")
	require.Len(t, set, 1)
	assert.Equal(t, []any{"Work", "Personal"}, set[0].Params["labels"])
	assert.Equal(t, mailgraph.DefaultLabelColor, set[0].Params["default_color"])
}

func TestService_UpdateFlagsOnlyKeepsLabels(t *testing.T) {
	store := testutil.NewFakeStore().
		OnRecords("SET e.is_read", testutil.Record(map[string]any{"id": "e1"}))
	echoGet(store)
	svc := newTestService(store)

	starred := true
	_, err := svc.Update(context.Background(), "e1", &UpdateEmailRequest{IsStarred: &starred})
	require.NoError(t, err)
	assert.Empty(t, store.CallsMatching("DELETE r"))
	assert.Empty(t, store.CallsMatching("UNWIND $labels"))
}

func TestService_UpdateEmptyLabelsClears(t *testing.T) {
	store := testutil.NewFakeStore().
		OnRecords("SET e.is_read", testutil.Record(map[string]any{"id": "e1"}))
	echoGet(store)
	svc := newTestService(store)

	_, err := svc.Update(context.Background(), "e1", &UpdateEmailRequest{Labels: []string{}})
	require.NoError(t, err)
	assert.Len(t, store.CallsMatching("DELETE r"), 1)
	assert.Empty(t, store.CallsMatching("UNWIND $labels"))
}

func TestService_UpdateRejectsBlankLabel(t *testing.T) {
	store := testutil.NewFakeStore()
	svc := newTestService(store)

	_, err := svc.Update(context.Background(), "e1", &UpdateEmailRequest{Labels: []string{"Work", " "}})
	assert.ErrorIs(t, err, apperror.ErrBadRequest)
	assert.Empty(t, store.Calls())
}

func TestService_UpdateNotFound(t *testing.T) {
	store := testutil.NewFakeStore()
	svc := newTestService(store)

	read := true
	_, err := svc.Update(context.Background(), "missing", &UpdateEmailRequest{IsRead: &read, Labels: []string{"Work"}})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Equal(t, 1, store.Rollbacks)
	assert.Empty(t, store.CallsMatching("UNWIND $labels"))
}

func TestService_DeleteIsIdempotent(t *testing.T) {
	store := testutil.NewFakeStore()
	svc := newTestService(store)

	require.NoError(t, svc.Delete(context.Background(), "e1"))
	require.NoError(t, svc.Delete(context.Background(), "e1"))

	calls := store.CallsMatching("DETACH DELETE e")
	require.Len(t, calls, 2)
	assert.Equal(t, "write", calls[0].Mode)
}
