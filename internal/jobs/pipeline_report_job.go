package jobs

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// DefaultReportSchedule runs the report every ten seconds.
const DefaultReportSchedule = "*/10 * * * * *"

// BufferProbe reports the occupancy of a bounded channel.
type BufferProbe interface {
	Size() int
	Capacity() int
}

// WorkerProbe reports how many workers are running.
type WorkerProbe interface {
	ActiveCount() int
}

// OrderProbe reports the sizes of the repository's order indices.
type OrderProbe interface {
	Counts() (active, finalized int)
}

// PipelineReportJob periodically logs where the pipeline stands.
type PipelineReportJob struct {
	schedule  string
	queue     BufferProbe
	warehouse BufferProbe
	workers   WorkerProbe
	orders    OrderProbe
	cron      *cron.Cron
	logger    *slog.Logger
}

// NewPipelineReportJob creates a report job running on schedule.
// An empty schedule means DefaultReportSchedule.
func NewPipelineReportJob(
	schedule string,
	queue, warehouse BufferProbe,
	workers WorkerProbe,
	orders OrderProbe,
	logger *slog.Logger,
) *PipelineReportJob {
	if schedule == "" {
		schedule = DefaultReportSchedule
	}
	return &PipelineReportJob{
		schedule:  schedule,
		queue:     queue,
		warehouse: warehouse,
		workers:   workers,
		orders:    orders,
		cron:      cron.New(cron.WithSeconds()),
		logger:    logger.With("component", "pipeline_report_job"),
	}
}

// Start schedules the report.
func (j *PipelineReportJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		j.Run(context.Background())
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Pipeline report job started", "schedule", j.schedule)
	return nil
}

// Run logs one snapshot.
func (j *PipelineReportJob) Run(ctx context.Context) {
	active, finalized := j.orders.Counts()
	j.logger.InfoContext(ctx, "Pipeline report",
		slog.Group("queue", "size", j.queue.Size(), "capacity", j.queue.Capacity()),
		slog.Group("warehouse", "size", j.warehouse.Size(), "capacity", j.warehouse.Capacity()),
		"active_workers", j.workers.ActiveCount(),
		"active_orders", active,
		"finalized_orders", finalized,
	)
}

// Stop stops the report job.
func (j *PipelineReportJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Pipeline report job stopped")
}
