package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/relocore/relocore/internal/jobs"
)

// RatesCacheWarmupJob pre-populates the versioned band cache for every
// active rate scope, so the first quotation after a deploy or a version
// bump does not pay the database round trip.
type RatesCacheWarmupJob struct {
	Catalog BandCatalog
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewRatesCacheWarmupJob wires dependencies for the warmup handler.
func NewRatesCacheWarmupJob(catalog BandCatalog, logger *slog.Logger, metrics *jobmetrics.Metrics) *RatesCacheWarmupJob {
	return &RatesCacheWarmupJob{Catalog: catalog, Logger: logger, Metrics: metrics}
}

// Handle processes TaskRatesCacheWarmup tasks.
func (j *RatesCacheWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Catalog == nil {
		return errors.New("rates cache warmup: handler not configured")
	}
	var payload RatesCacheWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.Metrics.Track(TaskRatesCacheWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	start := time.Now()
	logger := j.logger()

	pairs, err := j.Catalog.ActivePairs(ctx)
	if err != nil {
		resultErr = err
		logger.Error("load active rate scopes", slog.Any("error", err))
		return resultErr
	}

	warmed := 0
	for _, pair := range pairs {
		// ActiveBands populates the cache as a side effect of the read.
		if _, err := j.Catalog.ActiveBands(ctx, pair.DestinationCity, pair.MoveTypeID); err != nil {
			resultErr = err
			logger.Error("warm band cache",
				slog.String("destination", pair.DestinationCity),
				slog.Int64("move_type_id", pair.MoveTypeID),
				slog.Any("error", err))
			return resultErr
		}
		warmed++
	}

	logger.Info("completed rates cache warmup",
		slog.Int("scopes", warmed),
		slog.Duration("duration", time.Since(start)))
	return resultErr
}

func (j *RatesCacheWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
