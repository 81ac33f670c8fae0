package di

import (
	"fmt"

	"github.com/aristath/sentinel-stress/internal/config"
	"github.com/aristath/sentinel-stress/internal/modules/history"
	"github.com/aristath/sentinel-stress/internal/reliability"
	"github.com/aristath/sentinel-stress/internal/scheduler"
	"github.com/rs/zerolog"
)

// RegisterJobs creates the scheduler and registers the history jobs
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) error {
	container.Scheduler = scheduler.New(log)

	if container.HistoryRepo == nil {
		return nil
	}

	cleanup := history.NewCleanupJob(container.HistoryRepo, cfg.History.RetentionDays, log)
	if err := container.Scheduler.AddJob(cfg.History.CleanupSchedule, cleanup); err != nil {
		return fmt.Errorf("failed to register %s: %w", cleanup.Name(), err)
	}

	maintenance := reliability.NewMaintenanceJob(container.HistoryDB, log)
	if err := container.Scheduler.AddJob(cfg.History.MaintenanceSchedule, maintenance); err != nil {
		return fmt.Errorf("failed to register %s: %w", maintenance.Name(), err)
	}

	container.Jobs = []scheduler.Job{cleanup, maintenance}
	return nil
}
