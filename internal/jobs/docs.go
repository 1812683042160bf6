// Package jobs provides scheduled background tasks for the pizzeria.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// for periodic housekeeping that sits beside the worker pipeline.
//
// # Available Jobs
//
// 1. PipelineReportJob - logs a snapshot of queue and warehouse occupancy, running
// workers and order counts
// 2. EventLogSyncJob - flushes the order event log to stable storage
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	jobManager := jobs.NewJobManager(reportJob, syncJob)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	defer jobManager.StopAll()
//
// # Scheduling
//
// Schedules use the six-field cron syntax with seconds, e.g. "*/10 * * * * *".
//
// # Error Handling
//
// - Job failures are logged and the next tick runs as usual
// - Failed job starts will stop any already running jobs
package jobs
