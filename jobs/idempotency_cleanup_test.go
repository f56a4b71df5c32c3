package jobs

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

type fakeKeyPruner struct {
	calls     int
	olderThan time.Duration
}

func (f *fakeKeyPruner) Cleanup(_ context.Context, olderThan time.Duration) error {
	f.calls++
	f.olderThan = olderThan
	return nil
}

func cleanupTask(t *testing.T, payload IdempotencyCleanupPayload) *asynq.Task {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return asynq.NewTask(TaskIdempotencyCleanup, data)
}

func TestIdempotencyCleanupUsesDefaultRetention(t *testing.T) {
	pruner := &fakeKeyPruner{}
	job := NewIdempotencyCleanupJob(pruner, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)

	err := job.Handle(context.Background(), cleanupTask(t, IdempotencyCleanupPayload{}))
	require.NoError(t, err)
	require.Equal(t, 1, pruner.calls)
	require.Equal(t, defaultKeyRetention, pruner.olderThan)
}

func TestIdempotencyCleanupHonoursRetentionOverride(t *testing.T) {
	pruner := &fakeKeyPruner{}
	job := NewIdempotencyCleanupJob(pruner, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)

	err := job.Handle(context.Background(), cleanupTask(t, IdempotencyCleanupPayload{RetentionHours: 6}))
	require.NoError(t, err)
	require.Equal(t, 6*time.Hour, pruner.olderThan)
}

func TestIdempotencyCleanupRejectsMalformedPayload(t *testing.T) {
	job := NewIdempotencyCleanupJob(&fakeKeyPruner{}, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	err := job.Handle(context.Background(), asynq.NewTask(TaskIdempotencyCleanup, []byte("{not json")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}
