package di

import (
	"github.com/aristath/sentinel-stress/internal/database"
	"github.com/aristath/sentinel-stress/internal/modules/history"
	"github.com/aristath/sentinel-stress/internal/modules/stress"
	stresshandlers "github.com/aristath/sentinel-stress/internal/modules/stress/handlers"
	"github.com/aristath/sentinel-stress/internal/reliability"
	"github.com/aristath/sentinel-stress/internal/scheduler"
	"github.com/aristath/sentinel-stress/internal/server"
)

// Container holds all wired dependencies. History fields are nil when run
// history is disabled; Archiver is nil when no bucket is configured.
type Container struct {
	HistoryDB   *database.DB
	HistoryRepo *history.Repository
	Archiver    reliability.ReportArchiver

	Engine        *stress.Engine
	Metrics       *server.MetricsRegistry
	StressHandler *stresshandlers.Handler

	Scheduler *scheduler.Scheduler
	Jobs      []scheduler.Job
}

// Close releases the resources held by the container
func (c *Container) Close() error {
	if c.HistoryDB != nil {
		return c.HistoryDB.Close()
	}
	return nil
}
