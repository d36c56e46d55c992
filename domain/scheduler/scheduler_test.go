package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kantosaurus/test-01/internal/config"
)

type countingIndexer struct {
	calls atomic.Int32
	n     int
	err   error
}

func (c *countingIndexer) BatchIndex(ctx context.Context) (int, error) {
	c.calls.Add(1)
	return c.n, c.err
}

func noop(ctx context.Context) error { return nil }

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler(slog.Default())
	assert.False(t, s.IsRunning())

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())

	require.NoError(t, s.Stop(context.Background()))
	assert.False(t, s.IsRunning())
	require.NoError(t, s.Stop(context.Background()))
}

func TestScheduler_AddAndReplace(t *testing.T) {
	s := NewScheduler(slog.Default())

	require.NoError(t, s.AddIntervalTask("b", time.Minute, noop))
	require.NoError(t, s.AddCronTask("a", "0 0 2 * * *", noop))
	require.NoError(t, s.AddIntervalTask("b", 2*time.Minute, noop))

	assert.Equal(t, []string{"a", "b"}, s.ListTasks())

	info := s.GetTaskInfo()
	require.Len(t, info, 2)
	assert.Equal(t, "a", info[0].Name)

	s.RemoveTask("a")
	s.RemoveTask("unknown")
	assert.Equal(t, []string{"b"}, s.ListTasks())
}

func TestScheduler_AddCronTask_InvalidSchedule(t *testing.T) {
	s := NewScheduler(slog.Default())

	err := s.AddCronTask("bad", "not a schedule", noop)
	assert.Error(t, err)
	assert.Empty(t, s.ListTasks())
}

func TestScheduler_RunTaskRecoversFromError(t *testing.T) {
	s := NewScheduler(slog.Default())
	var ran atomic.Bool
	s.runTask("failing", func(ctx context.Context) error {
		ran.Store(true)
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return errors.New("boom")
	})
	assert.True(t, ran.Load())
}

func TestAddScheduledTask(t *testing.T) {
	t.Run("cron overrides interval", func(t *testing.T) {
		s := NewScheduler(slog.Default())
		require.NoError(t, addScheduledTask(s, slog.Default(), "job", "0 */5 * * * *", time.Hour, noop))
		assert.Equal(t, []string{"job"}, s.ListTasks())
	})

	t.Run("falls back to interval", func(t *testing.T) {
		s := NewScheduler(slog.Default())
		require.NoError(t, addScheduledTask(s, slog.Default(), "job", "", time.Minute, noop))
		assert.Equal(t, []string{"job"}, s.ListTasks())
	})
}

func TestRegisterTasks(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.SchedulerConfig
		enabled bool
		want    []string
	}{
		{
			name:    "embeddings enabled",
			cfg:     config.SchedulerConfig{Enabled: true, EmbeddingBackfillInterval: 10 * time.Minute},
			enabled: true,
			want:    []string{EmbeddingBackfillTaskName},
		},
		{
			name:    "embeddings disabled",
			cfg:     config.SchedulerConfig{Enabled: true, EmbeddingBackfillInterval: 10 * time.Minute},
			enabled: false,
			want:    []string{},
		},
		{
			name:    "zero interval without schedule",
			cfg:     config.SchedulerConfig{Enabled: true},
			enabled: true,
			want:    []string{},
		},
		{
			name:    "cron schedule only",
			cfg:     config.SchedulerConfig{Enabled: true, EmbeddingBackfillSchedule: "0 0 * * * *"},
			enabled: true,
			want:    []string{EmbeddingBackfillTaskName},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScheduler(slog.Default())
			registerTasks(s, tt.cfg, tt.enabled, &countingIndexer{}, slog.Default())
			assert.Equal(t, tt.want, s.ListTasks())
		})
	}
}

func TestEmbeddingBackfillTask_Run(t *testing.T) {
	idx := &countingIndexer{n: 3}
	task := NewEmbeddingBackfillTask(idx, slog.Default())

	require.NoError(t, task.Run(context.Background()))
	assert.Equal(t, int32(1), idx.calls.Load())

	idx.err = errors.New("store down")
	assert.Error(t, task.Run(context.Background()))
}
