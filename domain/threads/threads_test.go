package threads

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kantosaurus/test-01/domain/emails"
	"github.com/Kantosaurus/test-01/internal/mailgraph"
	"github.com/Kantosaurus/test-01/internal/testutil"
	"github.com/Kantosaurus/test-01/pkg/apperror"
)

func at(day int) time.Time {
	return time.Date(2024, 6, day, 10, 0, 0, 0, time.UTC)
}

func mail(id, subject string, date time.Time, from string, to ...string) emails.Email {
	e := emails.Email{ID: id, Subject: subject, Date: date, From: emails.Contact{Email: from}}
	for _, addr := range to {
		e.To = append(e.To, emails.Contact{Email: addr})
	}
	return e
}

func TestBuildThread(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		assert.Nil(t, BuildThread("t1", nil))
	})

	t.Run("orders and derives metadata", func(t *testing.T) {
		thread := BuildThread("t1", []emails.Email{
			mail("c", "Re: Re: Plan", at(3), "a@x.com", "b@x.com"),
			mail("a", "Plan", at(1), "a@x.com", "b@x.com"),
			mail("b", "Re: Plan", at(2), "b@x.com", "a@x.com"),
		})
		require.NotNil(t, thread)

		assert.Equal(t, "t1", thread.ID)
		assert.Equal(t, "Plan", thread.Subject)
		assert.Equal(t, at(3), thread.LastMessageDate)
		assert.Equal(t, 2, thread.ParticipantCount)
		ids := []string{thread.Emails[0].ID, thread.Emails[1].ID, thread.Emails[2].ID}
		assert.Equal(t, []string{"a", "b", "c"}, ids)
	})

	t.Run("equal dates keep input order", func(t *testing.T) {
		thread := BuildThread("t1", []emails.Email{
			mail("first", "One", at(1), "a@x.com"),
			mail("second", "Two", at(1), "b@x.com", "c@x.com"),
		})
		require.NotNil(t, thread)
		assert.Equal(t, "One", thread.Subject)
		assert.Equal(t, "second", thread.Emails[1].ID)
		assert.Equal(t, 3, thread.ParticipantCount)
	})

	t.Run("cc does not count as participant", func(t *testing.T) {
		e := mail("a", "Hi", at(1), "a@x.com", "b@x.com")
		e.CC = []emails.Contact{{Email: "c@x.com"}}
		thread := BuildThread("t1", []emails.Email{e})
		assert.Equal(t, 2, thread.ParticipantCount)
	})
}

func threadRecord(id, subject string, date time.Time, from, to string) *neo4j.Record {
	return testutil.Record(map[string]any{
		"email":      map[string]any{"id": id, "subject": subject, "date": date, "thread_id": "t9"},
		"sender":     map[string]any{"email": from},
		"recipients": []any{map[string]any{"email": to}},
		"cc":         []any{},
		"labels":     []any{"INBOX"},
	})
}

func TestService_Get(t *testing.T) {
	store := testutil.NewFakeStore().OnRecords("MATCH (e:Email {thread_id: $thread_id})",
		threadRecord("m1", "Lunch?", at(1), "a@x.com", "b@x.com"),
		threadRecord("m2", "Re: Lunch?", at(2), "b@x.com", "c@x.com"),
	)
	svc := NewService(NewRepository(store, testutil.DiscardLogger()))

	thread, err := svc.Get(context.Background(), "t9")
	require.NoError(t, err)
	assert.Equal(t, "Lunch?", thread.Subject)
	assert.Equal(t, at(2), thread.LastMessageDate)
	assert.Equal(t, 3, thread.ParticipantCount)

	calls := store.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "t9", calls[0].Params["thread_id"])
	assert.Contains(t, calls[0].Cypher, "ORDER BY e.date ASC")
}

func TestService_GetErrors(t *testing.T) {
	t.Run("unknown thread", func(t *testing.T) {
		svc := NewService(NewRepository(testutil.NewFakeStore(), testutil.DiscardLogger()))
		_, err := svc.Get(context.Background(), "nope")
		require.ErrorIs(t, err, apperror.ErrNotFound)
		assert.Equal(t, "thread 'nope' not found", err.Error())
	})

	t.Run("store failure", func(t *testing.T) {
		store := testutil.NewFakeStore().OnError("thread_id", errors.New("timeout"))
		svc := NewService(NewRepository(store, testutil.DiscardLogger()))
		_, err := svc.Get(context.Background(), "t1")
		assert.ErrorIs(t, err, apperror.ErrDatabase)
	})
}

func TestHandler_Get(t *testing.T) {
	store := testutil.NewFakeStore().On("MATCH (e:Email {thread_id: $thread_id})", func(params map[string]any) ([]*neo4j.Record, error) {
		if params["thread_id"] != "t9" {
			return nil, nil
		}
		return []*neo4j.Record{threadRecord("m1", "Lunch?", at(1), "a@x.com", "b@x.com")}, nil
	})
	e := testutil.NewEcho()
	RegisterRoutes(e, NewHandler(NewService(NewRepository(store, testutil.DiscardLogger()))))

	rec := testutil.Do(t, e, http.MethodGet, "/api/threads/t9", nil)
	require.Equal(t, http.StatusOK, rec.Code, testutil.StatusText(rec))

	var body Thread
	testutil.DecodeJSON(t, rec, &body)
	assert.Equal(t, "t9", body.ID)
	assert.Len(t, body.Emails, 1)
	assert.Equal(t, 2, body.ParticipantCount)

	missing := testutil.Do(t, e, http.MethodGet, "/api/threads/none", nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestThreadQuery_UsesGraphVocabulary(t *testing.T) {
	nodes, rels := testutil.GraphNames(threadQuery)
	assert.Equal(t, []string{mailgraph.NodeEmail, mailgraph.NodeContact, mailgraph.NodeContact, mailgraph.NodeLabel}, nodes)
	assert.Equal(t, []string{mailgraph.RelSentBy, mailgraph.RelSentTo, mailgraph.RelHasLabel}, rels)
}
