package jobs

import (
	"fmt"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	pipelineReportJob *PipelineReportJob
	eventLogSyncJob   *EventLogSyncJob
}

// NewJobManager creates a new job manager for the given jobs.
func NewJobManager(reportJob *PipelineReportJob, syncJob *EventLogSyncJob) *JobManager {
	return &JobManager{
		pipelineReportJob: reportJob,
		eventLogSyncJob:   syncJob,
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.eventLogSyncJob.Start(); err != nil {
		return fmt.Errorf("failed to start event log sync job: %w", err)
	}

	if err := jm.pipelineReportJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.eventLogSyncJob.Stop()
		return fmt.Errorf("failed to start pipeline report job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.pipelineReportJob.Stop()
	jm.eventLogSyncJob.Stop()
}
