package jobs

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/relocore/relocore/internal/rates"
)

type fakeCatalog struct {
	pairs     []rates.Pair
	bands     map[rates.Pair][]rates.RateBand
	bandCalls int
}

func (f *fakeCatalog) ActivePairs(_ context.Context) ([]rates.Pair, error) {
	return f.pairs, nil
}

func (f *fakeCatalog) ActiveBands(_ context.Context, city string, moveTypeID int64) ([]rates.RateBand, error) {
	f.bandCalls++
	return f.bands[rates.Pair{DestinationCity: city, MoveTypeID: moveTypeID}], nil
}

func auditTask(t *testing.T, payload RatesAuditPayload) *asynq.Task {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return asynq.NewTask(TaskRatesAudit, data)
}

func TestRatesAuditSweepsActiveScopes(t *testing.T) {
	auckland := rates.Pair{DestinationCity: "Auckland", MoveTypeID: 2}
	dubai := rates.Pair{DestinationCity: "Dubai", MoveTypeID: 1}
	catalog := &fakeCatalog{
		pairs: []rates.Pair{auckland, dubai},
		bands: map[rates.Pair][]rates.RateBand{
			auckland: {
				{ID: 1, DestinationCity: "Auckland", MoveTypeID: 2, MinVolume: 0, MaxVolume: 10, IsActive: true},
				{ID: 2, DestinationCity: "Auckland", MoveTypeID: 2, MinVolume: 20, MaxVolume: 30, IsActive: true},
			},
			dubai: {
				{ID: 3, DestinationCity: "Dubai", MoveTypeID: 1, MinVolume: 0, MaxVolume: 50, IsActive: true},
			},
		},
	}

	job := NewRatesAuditJob(catalog, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	err := job.Handle(context.Background(), auditTask(t, RatesAuditPayload{}))
	require.NoError(t, err)
	require.Equal(t, 2, catalog.bandCalls)
}

func TestRatesAuditScopedByDestination(t *testing.T) {
	auckland := rates.Pair{DestinationCity: "Auckland", MoveTypeID: 2}
	dubai := rates.Pair{DestinationCity: "Dubai", MoveTypeID: 1}
	catalog := &fakeCatalog{pairs: []rates.Pair{auckland, dubai}, bands: map[rates.Pair][]rates.RateBand{}}

	job := NewRatesAuditJob(catalog, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	err := job.Handle(context.Background(), auditTask(t, RatesAuditPayload{DestinationCity: "Dubai"}))
	require.NoError(t, err)
	require.Equal(t, 1, catalog.bandCalls)
}

func TestRatesAuditRejectsMalformedPayload(t *testing.T) {
	job := NewRatesAuditJob(&fakeCatalog{}, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	err := job.Handle(context.Background(), asynq.NewTask(TaskRatesAudit, []byte("{not json")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestCacheWarmupTouchesEveryScope(t *testing.T) {
	catalog := &fakeCatalog{pairs: []rates.Pair{
		{DestinationCity: "Auckland", MoveTypeID: 2},
		{DestinationCity: "Dubai", MoveTypeID: 1},
		{DestinationCity: "Doha", MoveTypeID: 1},
	}, bands: map[rates.Pair][]rates.RateBand{}}

	job := NewRatesCacheWarmupJob(catalog, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	task, err := NewRatesCacheWarmupTask()
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	require.Equal(t, 3, catalog.bandCalls)
}
