// Package scheduler runs background maintenance jobs on cron schedules.
package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job represents a scheduled job
type Job interface {
	Run() error
	Name() string
}

// Scheduler manages background jobs
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger

	mu      sync.Mutex
	entries map[string]cron.EntryID
}

// New creates a new scheduler. Schedules use a leading seconds field.
func New(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		log:     log.With().Str("component", "scheduler").Logger(),
		entries: make(map[string]cron.EntryID),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("Scheduler started")
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

// AddJob registers a job with a cron schedule
// Schedule examples:
//   - "0 30 3 * * *"  - 03:30:00 every day
//   - "@hourly"       - Every hour
//   - "@every 30s"    - Every 30 seconds
func (s *Scheduler) AddJob(schedule string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[job.Name()]; exists {
		return fmt.Errorf("job %s already registered", job.Name())
	}

	id, err := s.cron.AddFunc(schedule, func() { s.execute(job) })
	if err != nil {
		return fmt.Errorf("failed to register job %s: %w", job.Name(), err)
	}
	s.entries[job.Name()] = id

	s.log.Info().
		Str("schedule", schedule).
		Str("job", job.Name()).
		Msg("Job registered")
	return nil
}

// NextRun returns the next scheduled run of a job, zero if unknown or not started
func (s *Scheduler) NextRun(name string) time.Time {
	s.mu.Lock()
	id, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return time.Time{}
	}
	return s.cron.Entry(id).Next
}

// RunNow executes a job immediately (outside schedule)
func (s *Scheduler) RunNow(job Job) error {
	s.log.Info().Str("job", job.Name()).Msg("Running job immediately")
	return job.Run()
}

func (s *Scheduler) execute(job Job) {
	start := time.Now()
	s.log.Debug().Str("job", job.Name()).Msg("Running job")

	if err := job.Run(); err != nil {
		s.log.Error().
			Err(err).
			Str("job", job.Name()).
			Dur("duration", time.Since(start)).
			Msg("Job failed")
		return
	}
	s.log.Debug().Str("job", job.Name()).Dur("duration", time.Since(start)).Msg("Job completed")
}
