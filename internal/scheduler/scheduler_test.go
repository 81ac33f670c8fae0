package scheduler

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	name  string
	runs  atomic.Int32
	fails bool
}

func (j *countingJob) Run() error {
	j.runs.Add(1)
	if j.fails {
		return errors.New("job failed")
	}
	return nil
}

func (j *countingJob) Name() string { return j.name }

func TestAddJob_InvalidSchedule(t *testing.T) {
	s := New(zerolog.Nop())
	err := s.AddJob("not a schedule", &countingJob{name: "bad"})
	assert.Error(t, err)
}

func TestAddJob_DuplicateName(t *testing.T) {
	s := New(zerolog.Nop())
	require.NoError(t, s.AddJob("@hourly", &countingJob{name: "cleanup"}))
	assert.Error(t, s.AddJob("@daily", &countingJob{name: "cleanup"}))
}

func TestScheduler_RunsJobs(t *testing.T) {
	s := New(zerolog.Nop())
	ok := &countingJob{name: "ok"}
	failing := &countingJob{name: "failing", fails: true}

	require.NoError(t, s.AddJob("@every 1s", ok))
	require.NoError(t, s.AddJob("@every 1s", failing))

	s.Start()
	assert.False(t, s.NextRun("ok").IsZero())
	assert.Eventually(t, func() bool {
		return ok.runs.Load() > 0 && failing.runs.Load() > 0
	}, 5*time.Second, 50*time.Millisecond)
	s.Stop()

	assert.True(t, s.NextRun("unknown").IsZero())
}

func TestRunNow(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{name: "manual", fails: true}

	assert.Error(t, s.RunNow(job))
	assert.Equal(t, int32(1), job.runs.Load())
}
