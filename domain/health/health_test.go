package health

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kantosaurus/test-01/domain/scheduler"
	"github.com/Kantosaurus/test-01/internal/config"
	"github.com/Kantosaurus/test-01/internal/testutil"
	"github.com/Kantosaurus/test-01/internal/version"
	"github.com/Kantosaurus/test-01/pkg/metrics"
)

func setup(store *testutil.FakeStore, env string) (*Handler, *MetricsHandler, *scheduler.Scheduler) {
	cfg := &config.Config{Environment: env}
	cfg.Neo4j.URI = "bolt://graph:7687"
	s := scheduler.NewScheduler(testutil.DiscardLogger())
	return NewHandler(store, cfg), NewMetricsHandler(s), s
}

func TestHealthEndpoints(t *testing.T) {
	tests := []struct {
		name    string
		pingErr error
		path    string
		status  int
		want    string
	}{
		{name: "healthy", path: "/health", status: http.StatusOK, want: `"status":"healthy"`},
		{name: "unhealthy", pingErr: errors.New("connection refused"), path: "/health", status: http.StatusServiceUnavailable, want: "connection refused"},
		{name: "liveness ignores graph", pingErr: errors.New("down"), path: "/healthz", status: http.StatusOK, want: "OK"},
		{name: "ready", path: "/ready", status: http.StatusOK, want: `"status":"ready"`},
		{name: "not ready", pingErr: errors.New("down"), path: "/ready", status: http.StatusServiceUnavailable, want: "not_ready"},
		{name: "api alias", path: "/api/health", status: http.StatusOK, want: `"checks"`},
		{name: "debug", path: "/debug", status: http.StatusOK, want: "bolt://graph:7687"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testutil.NewFakeStore()
			store.PingErr = tt.pingErr
			h, m, _ := setup(store, "local")
			e := testutil.NewEcho()
			RegisterRoutes(e, h, m)

			rec := testutil.Do(t, e, http.MethodGet, tt.path, nil)
			assert.Equal(t, tt.status, rec.Code, testutil.StatusText(rec))
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}

func TestHealth_ReportsVersion(t *testing.T) {
	h, m, _ := setup(testutil.NewFakeStore(), "local")
	e := testutil.NewEcho()
	RegisterRoutes(e, h, m)

	var body HealthResponse
	testutil.DecodeJSON(t, testutil.Do(t, e, http.MethodGet, "/health", nil), &body)
	assert.Equal(t, version.Current(), body.Version)
	assert.Equal(t, "healthy", body.Checks["graph"].Status)
}

func TestDebug_HiddenInProduction(t *testing.T) {
	h, m, _ := setup(testutil.NewFakeStore(), "production")
	e := testutil.NewEcho()
	RegisterRoutes(e, h, m)

	rec := testutil.Do(t, e, http.MethodGet, "/debug", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetrics_Prometheus(t *testing.T) {
	metrics.EmailsCreated.Inc()

	h, m, _ := setup(testutil.NewFakeStore(), "local")
	e := testutil.NewEcho()
	RegisterRoutes(e, h, m)

	rec := testutil.Do(t, e, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "emails_created_total")
}

func TestMetrics_Scheduler(t *testing.T) {
	h, m, s := setup(testutil.NewFakeStore(), "local")
	require.NoError(t, s.AddIntervalTask(scheduler.EmbeddingBackfillTaskName, time.Minute,
		func(ctx context.Context) error { return nil }))
	e := testutil.NewEcho()
	RegisterRoutes(e, h, m)

	var body SchedulerMetricsResponse
	testutil.DecodeJSON(t, testutil.Do(t, e, http.MethodGet, "/api/metrics/scheduler", nil), &body)
	assert.False(t, body.Running)
	require.Len(t, body.Tasks, 1)
	assert.Equal(t, scheduler.EmbeddingBackfillTaskName, body.Tasks[0].Name)
}
