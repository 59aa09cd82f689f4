package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solar-analytics/parquet-gate/pkg/logger"
)

type countingJob struct {
	name     string
	schedule string
	calls    atomic.Int32
	errs     []error // returned per call, nil once exhausted
}

func (j *countingJob) Name() string     { return j.name }
func (j *countingJob) Schedule() string { return j.schedule }

func (j *countingJob) Run(context.Context) error {
	n := int(j.calls.Add(1))
	if n <= len(j.errs) {
		return j.errs[n-1]
	}
	return nil
}

func newTestScheduler() *Scheduler {
	return New(logger.Nop(), WithRetry(2, time.Millisecond))
}

func waitForResult(t *testing.T, s *Scheduler, name string) JobResult {
	t.Helper()
	var result JobResult
	require.Eventually(t, func() bool {
		h, err := s.GetJobHistory(name)
		if err != nil || len(h.Results) == 0 {
			return false
		}
		result = h.Results[len(h.Results)-1]
		return true
	}, 2*time.Second, 5*time.Millisecond)
	return result
}

func TestScheduler_AddJob(t *testing.T) {
	s := newTestScheduler()

	require.NoError(t, s.AddJob(&countingJob{name: "b", schedule: "0 0 6 * * *"}))
	require.NoError(t, s.AddJob(&countingJob{name: "a", schedule: "@daily"}))

	assert.Error(t, s.AddJob(&countingJob{name: "a", schedule: "@daily"}), "duplicate")
	assert.Error(t, s.AddJob(&countingJob{name: "c", schedule: "not a schedule"}))
	assert.Equal(t, []string{"a", "b"}, s.GetAllJobs())

	require.NoError(t, s.RemoveJob("a"))
	assert.Error(t, s.RemoveJob("a"))
	assert.Equal(t, []string{"b"}, s.GetAllJobs())
}

func TestScheduler_RetriesTransientFailures(t *testing.T) {
	s := newTestScheduler()
	job := &countingJob{name: "flaky", schedule: "@daily", errs: []error{errors.New("io"), errors.New("io")}}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("flaky"))
	result := waitForResult(t, s, "flaky")

	assert.True(t, result.Success)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, int32(3), job.calls.Load())
}

func TestScheduler_GivesUpAfterRetries(t *testing.T) {
	s := newTestScheduler()
	boom := errors.New("io")
	job := &countingJob{name: "broken", schedule: "@daily", errs: []error{boom, boom, boom, boom}}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("broken"))
	result := waitForResult(t, s, "broken")

	assert.False(t, result.Success)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, "io", result.Error)
}

func TestScheduler_PermanentNotRetried(t *testing.T) {
	s := newTestScheduler()
	job := &countingJob{name: "gate", schedule: "@daily", errs: []error{Permanent(errors.New("critical"))}}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("gate"))
	result := waitForResult(t, s, "gate")

	assert.False(t, result.Success)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, int32(1), job.calls.Load())

	stats := s.GetJobStats()["gate"]
	assert.Equal(t, 1, stats.TotalRuns)
	assert.Equal(t, 1, stats.FailureCount)
	assert.NotNil(t, stats.LastFailure)
	assert.Nil(t, stats.LastSuccess)
}

func TestScheduler_RunJobUnknown(t *testing.T) {
	assert.Error(t, newTestScheduler().RunJob("missing"))
}

func TestScheduler_StartStop(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.AddJob(&countingJob{name: "a", schedule: "@daily"}))

	s.Start()
	s.Stop()
}

func TestPermanent(t *testing.T) {
	base := errors.New("x")

	assert.Nil(t, Permanent(nil))
	assert.True(t, IsPermanent(Permanent(base)))
	assert.ErrorIs(t, Permanent(base), base)
	assert.False(t, IsPermanent(base))
}

func TestJobHistory(t *testing.T) {
	h := &JobHistory{}
	assert.Equal(t, 0.0, h.GetSuccessRate())
	assert.Empty(t, h.GetLatestResults(5))

	for i := 0; i < maxHistory+10; i++ {
		h.AddResult(JobResult{Success: i%2 == 0})
	}

	assert.Len(t, h.Results, maxHistory)
	assert.Len(t, h.GetLatestResults(3), 3)
	assert.Len(t, h.GetFailedResults(), maxHistory/2)
	assert.InDelta(t, 0.5, h.GetSuccessRate(), 1e-9)
}
