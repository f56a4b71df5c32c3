package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hibiken/asynq"
)

// QueueInsight is the slice of the jobs CLI the inspect command needs.
type QueueInsight interface {
	InspectQueue(ctx context.Context) (QueueStats, error)
	ListScheduled(ctx context.Context, size int) ([]*asynq.TaskInfo, error)
}

// JobsInspectOptions defines available flags for the jobs inspect command.
type JobsInspectOptions struct {
	JSONOutput    bool
	ScheduledSize int
	Stdout        io.Writer
	Stderr        io.Writer
}

// ScheduledTask is one scheduled entry in the inspect report.
type ScheduledTask struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	NextProcessAt time.Time `json:"next_process_at"`
}

// JobsInspectReport describes the JSON response for jobs inspect.
type JobsInspectReport struct {
	Queue     QueueStats      `json:"queue"`
	Scheduled []ScheduledTask `json:"scheduled"`
}

// RunJobsInspect prints the default queue's state and its scheduled tasks.
func RunJobsInspect(ctx context.Context, insight QueueInsight, opts JobsInspectOptions) error {
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	stats, err := insight.InspectQueue(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "inspect queue: %v\n", err)
		return err
	}
	infos, err := insight.ListScheduled(ctx, opts.ScheduledSize)
	if err != nil {
		fmt.Fprintf(stderr, "list scheduled tasks: %v\n", err)
		return err
	}

	report := JobsInspectReport{Queue: stats, Scheduled: make([]ScheduledTask, 0, len(infos))}
	for _, info := range infos {
		report.Scheduled = append(report.Scheduled, ScheduledTask{
			ID:            info.ID,
			Type:          info.Type,
			NextProcessAt: info.NextProcessAt,
		})
	}

	if opts.JSONOutput {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Fprintf(stdout, "queue %s: pending=%d active=%d scheduled=%d retry=%d\n",
		stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry)
	for _, task := range report.Scheduled {
		fmt.Fprintf(stdout, "scheduled %s %s at %s\n", task.ID, task.Type, task.NextProcessAt.Format(time.RFC3339))
	}
	return nil
}
