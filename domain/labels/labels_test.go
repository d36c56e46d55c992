package labels

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kantosaurus/test-01/internal/graphdb"
	"github.com/Kantosaurus/test-01/internal/mailgraph"
	"github.com/Kantosaurus/test-01/internal/testutil"
	"github.com/Kantosaurus/test-01/pkg/apperror"
)

// uniqueLabels emulates the Label.name uniqueness constraint.
func uniqueLabels(store *testutil.FakeStore) *testutil.FakeStore {
	existing := map[string]bool{}
	return store.On("CREATE (l:Label", func(params map[string]any) ([]*neo4j.Record, error) {
		name := params["name"].(string)
		if existing[name] {
			return nil, fmt.Errorf("run: %w", graphdb.ErrConstraintViolation)
		}
		existing[name] = true
		return []*neo4j.Record{testutil.Record(map[string]any{
			"name": name, "color": params["color"], "email_count": int64(0),
		})}, nil
	})
}

func newTestService(store *testutil.FakeStore) *Service {
	log := testutil.DiscardLogger()
	return NewService(NewRepository(store, log), log)
}

func TestService_List(t *testing.T) {
	store := testutil.NewFakeStore().OnRecords("count(e) AS email_count",
		testutil.Record(map[string]any{"name": "INBOX", "color": "#4285f4", "email_count": int64(3)}),
		testutil.Record(map[string]any{"name": "Work", "color": nil, "email_count": int64(0)}),
	)
	svc := newTestService(store)

	out, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, int64(3), out[0].EmailCount)
	require.NotNil(t, out[0].Color)
	assert.Equal(t, "#4285f4", *out[0].Color)
	assert.Nil(t, out[1].Color)
	assert.Contains(t, store.Calls()[0].Cypher, "ORDER BY name")
}

func TestService_Create(t *testing.T) {
	store := uniqueLabels(testutil.NewFakeStore())
	svc := newTestService(store)

	l, err := svc.Create(context.Background(), &CreateLabelRequest{Name: "  Work "})
	require.NoError(t, err)
	assert.Equal(t, "Work", l.Name)
	require.NotNil(t, l.Color)
	assert.Equal(t, mailgraph.DefaultLabelColor, *l.Color)
	assert.Equal(t, int64(0), l.EmailCount)

	_, err = svc.Create(context.Background(), &CreateLabelRequest{Name: "Work"})
	require.ErrorIs(t, err, apperror.ErrConflict)
	assert.Equal(t, "label 'Work' already exists", err.Error())

	color := "#123456"
	l, err = svc.Create(context.Background(), &CreateLabelRequest{Name: "Travel", Color: &color})
	require.NoError(t, err)
	assert.Equal(t, "#123456", *l.Color)
}

func TestService_CreateValidation(t *testing.T) {
	for _, name := range []string{"", "   ", "\t\n"} {
		store := testutil.NewFakeStore()
		_, err := newTestService(store).Create(context.Background(), &CreateLabelRequest{Name: name})
		assert.ErrorIs(t, err, apperror.ErrBadRequest)
		assert.Empty(t, store.Calls())
	}
}

func TestService_CreateStoreFailure(t *testing.T) {
	store := testutil.NewFakeStore().OnError("CREATE (l:Label", errors.New("leader switch"))
	_, err := newTestService(store).Create(context.Background(), &CreateLabelRequest{Name: "Work"})
	assert.ErrorIs(t, err, apperror.ErrDatabase)
}

func TestService_Delete(t *testing.T) {
	t.Run("system labels are protected", func(t *testing.T) {
		for _, l := range mailgraph.SystemLabels {
			store := testutil.NewFakeStore()
			err := newTestService(store).Delete(context.Background(), l.Name)
			require.ErrorIs(t, err, apperror.ErrForbidden)
			assert.Equal(t, fmt.Sprintf("cannot delete system label '%s'", l.Name), err.Error())
			assert.Empty(t, store.Calls())
		}
	})

	t.Run("user label is removed idempotently", func(t *testing.T) {
		store := testutil.NewFakeStore()
		svc := newTestService(store)
		require.NoError(t, svc.Delete(context.Background(), "Work"))
		require.NoError(t, svc.Delete(context.Background(), "Work"))

		calls := store.CallsMatching("DETACH DELETE l")
		require.Len(t, calls, 2)
		assert.Equal(t, "Work", calls[0].Params["name"])
	})

	t.Run("matching is case sensitive", func(t *testing.T) {
		store := testutil.NewFakeStore()
		require.NoError(t, newTestService(store).Delete(context.Background(), "inbox"))
		assert.Len(t, store.Calls(), 1)
	})
}

func TestHandler(t *testing.T) {
	store := uniqueLabels(testutil.NewFakeStore())
	e := testutil.NewEcho()
	RegisterRoutes(e, NewHandler(newTestService(store)))

	tests := []struct {
		name       string
		method     string
		path       string
		body       any
		wantStatus int
		wantCode   string
	}{
		{"create", http.MethodPost, "/api/labels", map[string]any{"name": "Work"}, http.StatusCreated, ""},
		{"duplicate", http.MethodPost, "/api/labels", map[string]any{"name": "Work"}, http.StatusConflict, "conflict"},
		{"empty name", http.MethodPost, "/api/labels", map[string]any{"name": ""}, http.StatusBadRequest, "bad_request"},
		{"delete system", http.MethodDelete, "/api/labels/INBOX", nil, http.StatusForbidden, "forbidden"},
		{"delete user", http.MethodDelete, "/api/labels/Work", nil, http.StatusNoContent, ""},
		{"list", http.MethodGet, "/api/labels", nil, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.Do(t, e, tt.method, tt.path, tt.body)
			require.Equal(t, tt.wantStatus, rec.Code, testutil.StatusText(rec))
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, testutil.ErrorCode(t, rec))
			}
		})
	}
}
