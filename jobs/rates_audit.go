package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/relocore/relocore/internal/jobs"
	"github.com/relocore/relocore/internal/rates"
)

// BandCatalog is the slice of the rates service the jobs need.
type BandCatalog interface {
	ActivePairs(ctx context.Context) ([]rates.Pair, error)
	ActiveBands(ctx context.Context, destinationCity string, moveTypeID int64) ([]rates.RateBand, error)
}

// RatesAuditJob sweeps the active rate tables and reports overlapping bands
// and coverage gaps. The write path never enforces contiguity; this job is
// how defective tables surface before a customer hits the no-band state.
type RatesAuditJob struct {
	Catalog BandCatalog
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewRatesAuditJob wires dependencies for the audit handler.
func NewRatesAuditJob(catalog BandCatalog, logger *slog.Logger, metrics *jobmetrics.Metrics) *RatesAuditJob {
	return &RatesAuditJob{Catalog: catalog, Logger: logger, Metrics: metrics}
}

// Handle processes TaskRatesAudit tasks.
func (j *RatesAuditJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Catalog == nil {
		return errors.New("rates audit: handler not configured")
	}
	var payload RatesAuditPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.Metrics.Track(TaskRatesAudit)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	start := time.Now()
	logger := j.logger()
	logger.Info("starting rates coverage audit")

	pairs, err := j.Catalog.ActivePairs(ctx)
	if err != nil {
		resultErr = err
		logger.Error("load active rate scopes", slog.Any("error", err))
		return resultErr
	}

	var all []rates.RateBand
	audited := 0
	for _, pair := range pairs {
		if payload.DestinationCity != "" && pair.DestinationCity != payload.DestinationCity {
			continue
		}
		bands, err := j.Catalog.ActiveBands(ctx, pair.DestinationCity, pair.MoveTypeID)
		if err != nil {
			resultErr = err
			logger.Error("load bands",
				slog.String("destination", pair.DestinationCity),
				slog.Int64("move_type_id", pair.MoveTypeID),
				slog.Any("error", err))
			return resultErr
		}
		all = append(all, bands...)
		audited++
	}

	issues := rates.AuditCoverage(all)
	for _, issue := range issues {
		logger.Warn("rate coverage issue",
			slog.String("kind", issue.Kind),
			slog.String("destination", issue.DestinationCity),
			slog.Int64("move_type_id", issue.MoveTypeID),
			slog.Float64("from_volume", issue.FromVolume),
			slog.Float64("to_volume", issue.ToVolume))
		j.Metrics.AddCoverageIssues(issue.Kind, issue.MoveTypeID, 1)
	}

	logger.Info("completed rates coverage audit",
		slog.Int("scopes", audited),
		slog.Int("issues", len(issues)),
		slog.Duration("duration", time.Since(start)))
	return resultErr
}

func (j *RatesAuditJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
