package history

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// CleanupJob deletes stored runs older than the retention window
type CleanupJob struct {
	repo      RepositoryInterface
	retention time.Duration
	now       func() time.Time
	log       zerolog.Logger
}

// NewCleanupJob creates a retention cleanup job
func NewCleanupJob(repo RepositoryInterface, retentionDays int, log zerolog.Logger) *CleanupJob {
	return &CleanupJob{
		repo:      repo,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		now:       time.Now,
		log:       log.With().Str("job", "stress_history_cleanup").Logger(),
	}
}

// Run executes the cleanup job
func (j *CleanupJob) Run() error {
	cutoff := j.now().Add(-j.retention)

	deleted, err := j.repo.DeleteOlderThan(cutoff)
	if err != nil {
		return fmt.Errorf("history cleanup failed: %w", err)
	}

	j.log.Info().
		Int64("deleted", deleted).
		Time("cutoff", cutoff).
		Msg("Stress history cleanup completed")
	return nil
}

// Name returns the job name for scheduler
func (j *CleanupJob) Name() string {
	return "stress_history_cleanup"
}
