package reliability

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/disk"
)

// Disk space thresholds for the history database volume
const (
	CriticalFreeBytes = 500 * 1000 * 1000
	LowFreeBytes      = 5 * 1000 * 1000 * 1000
)

// MaintainedDB is what the maintenance job needs from a database
type MaintainedDB interface {
	HealthCheck(ctx context.Context) error
	WALCheckpoint(mode string) error
	IncrementalVacuum() error
	Name() string
	Path() string
}

// MaintenanceJob performs periodic history database maintenance
type MaintenanceJob struct {
	db        MaintainedDB
	freeSpace func(path string) (uint64, error)
	log       zerolog.Logger
}

// NewMaintenanceJob creates a maintenance job for the given database
func NewMaintenanceJob(db MaintainedDB, log zerolog.Logger) *MaintenanceJob {
	return &MaintenanceJob{
		db:        db,
		freeSpace: freeBytes,
		log:       log.With().Str("job", "history_maintenance").Logger(),
	}
}

// Run executes the maintenance job
func (j *MaintenanceJob) Run() error {
	j.log.Info().Str("database", j.db.Name()).Msg("Starting history maintenance")
	startTime := time.Now()

	// Step 1: Integrity check
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := j.db.HealthCheck(ctx); err != nil {
		j.log.Error().Err(err).Msg("History database failed integrity check")
		return fmt.Errorf("integrity check failed: %w", err)
	}

	// Step 2: WAL checkpoint (prevent bloat)
	if err := j.db.WALCheckpoint("TRUNCATE"); err != nil {
		j.log.Warn().Err(err).Msg("WAL checkpoint failed")
	}

	// Step 3: Reclaim pages freed by retention cleanup
	if err := j.db.IncrementalVacuum(); err != nil {
		j.log.Warn().Err(err).Msg("Incremental vacuum failed")
	}

	// Step 4: Check disk space
	if err := j.checkDiskSpace(); err != nil {
		return err
	}

	j.log.Info().
		Dur("duration_ms", time.Since(startTime)).
		Msg("History maintenance completed")

	return nil
}

// Name returns the job name for scheduler
func (j *MaintenanceJob) Name() string {
	return "history_maintenance"
}

func (j *MaintenanceJob) checkDiskSpace() error {
	free, err := j.freeSpace(filepath.Dir(j.db.Path()))
	if err != nil {
		j.log.Warn().Err(err).Msg("Failed to read disk usage")
		return nil
	}

	availableGB := float64(free) / 1e9
	j.log.Debug().Float64("available_gb", availableGB).Msg("Disk space check")

	switch {
	case free < CriticalFreeBytes:
		j.log.Error().Float64("available_gb", availableGB).Msg("Insufficient disk space for run history")
		return fmt.Errorf("only %.2f GB free for run history", availableGB)
	case free < LowFreeBytes:
		j.log.Warn().Float64("available_gb", availableGB).Msg("Disk space running low")
	}
	return nil
}

func freeBytes(path string) (uint64, error) {
	usage, err := disk.Usage(path)
	if err != nil {
		return 0, err
	}
	return usage.Free, nil
}
