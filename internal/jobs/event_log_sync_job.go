package jobs

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// DefaultSyncSchedule flushes the event log every second.
const DefaultSyncSchedule = "* * * * * *"

// Syncer flushes buffered writes to stable storage.
type Syncer interface {
	Sync() error
}

// EventLogSyncJob periodically fsyncs the order event log so that a machine crash
// loses at most one interval of records.
type EventLogSyncJob struct {
	schedule string
	log      Syncer
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewEventLogSyncJob creates a sync job running on schedule.
// An empty schedule means DefaultSyncSchedule.
func NewEventLogSyncJob(schedule string, log Syncer, logger *slog.Logger) *EventLogSyncJob {
	if schedule == "" {
		schedule = DefaultSyncSchedule
	}
	return &EventLogSyncJob{
		schedule: schedule,
		log:      log,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.With("component", "event_log_sync_job"),
	}
}

// Start schedules the sync.
func (j *EventLogSyncJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		if err := j.Run(); err != nil {
			j.logger.ErrorContext(context.Background(), "Event log sync job failed", "error", err)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Event log sync job started", "schedule", j.schedule)
	return nil
}

// Run performs one sync.
func (j *EventLogSyncJob) Run() error {
	return j.log.Sync()
}

// Stop stops the sync job. A tick already running is allowed to finish.
func (j *EventLogSyncJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Event log sync job stopped")
}
