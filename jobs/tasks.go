// Package jobs defines the background tasks and the Asynq worker that runs
// them: a nightly rate-table coverage audit, a cache warmup after rate
// changes, and the idempotency-key cleanup.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskRatesAudit checks every active rate table for overlaps and gaps.
	TaskRatesAudit = "rates:audit"
	// TaskRatesCacheWarmup pre-populates the band cache for active scopes.
	TaskRatesCacheWarmup = "rates:cache-warmup"
	// TaskIdempotencyCleanup prunes idempotency keys past their retention.
	TaskIdempotencyCleanup = "idempotency:cleanup"
)

// RatesAuditPayload scopes an audit run. An empty destination audits every
// active rate table.
type RatesAuditPayload struct {
	DestinationCity string `json:"destination_city,omitempty"`
}

// NewRatesAuditTask constructs an audit task.
func NewRatesAuditTask(payload RatesAuditPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRatesAudit, data), nil
}

// IdempotencyCleanupPayload overrides the cleanup retention. Zero hours
// means the default retention.
type IdempotencyCleanupPayload struct {
	RetentionHours int `json:"retention_hours,omitempty"`
}

// NewIdempotencyCleanupTask constructs a cleanup task.
func NewIdempotencyCleanupTask(payload IdempotencyCleanupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIdempotencyCleanup, data), nil
}

// RatesCacheWarmupPayload scopes a warmup run.
type RatesCacheWarmupPayload struct{}

// NewRatesCacheWarmupTask constructs a warmup task.
func NewRatesCacheWarmupTask() (*asynq.Task, error) {
	data, err := json.Marshal(RatesCacheWarmupPayload{})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRatesCacheWarmup, data), nil
}
