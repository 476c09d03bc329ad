package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/cohesion/pkg/config"
	"github.com/wonny/cohesion/pkg/logger"
)

type testJob struct {
	name     string
	schedule string
	calls    atomic.Int32
	run      func(n int32) error
}

func (j *testJob) Name() string     { return j.name }
func (j *testJob) Schedule() string { return j.schedule }
func (j *testJob) Run(context.Context) error {
	n := j.calls.Add(1)
	if j.run == nil {
		return nil
	}
	return j.run(n)
}

func newTestScheduler(retries int) *Scheduler {
	return New(config.SchedulerConfig{MaxRetries: retries, RetryDelay: time.Millisecond}, logger.Nop())
}

func TestAddJob(t *testing.T) {
	s := newTestScheduler(0)

	require.NoError(t, s.AddJob(&testJob{name: "a", schedule: "0 0 6 * * *"}))
	assert.Error(t, s.AddJob(&testJob{name: "a", schedule: "0 0 6 * * *"}))
	assert.Error(t, s.AddJob(&testJob{name: "b", schedule: "not a cron"}))
	assert.Equal(t, []string{"a"}, s.GetAllJobs())
}

func TestRemoveJob(t *testing.T) {
	s := newTestScheduler(0)
	require.NoError(t, s.AddJob(&testJob{name: "a", schedule: "@hourly"}))

	require.NoError(t, s.RemoveJob("a"))
	assert.Empty(t, s.GetAllJobs())
	assert.Error(t, s.RemoveJob("a"))
}

func TestRunJob_Unknown(t *testing.T) {
	assert.Error(t, newTestScheduler(0).RunJob("missing"))
}

func TestRunJob_RetriesUntilSuccess(t *testing.T) {
	s := newTestScheduler(3)
	job := &testJob{name: "flaky", schedule: "@hourly", run: func(n int32) error {
		if n < 3 {
			return errors.New("transient")
		}
		return nil
	}}
	require.NoError(t, s.AddJob(job))

	s.runJob(job)

	assert.Equal(t, int32(3), job.calls.Load())
	results, err := s.GetJobHistory("flaky")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	assert.Equal(t, 3, results[0].Attempts)
}

func TestRunJob_FailsAfterRetries(t *testing.T) {
	s := newTestScheduler(2)
	job := &testJob{name: "broken", schedule: "@hourly", run: func(int32) error {
		return errors.New("boom")
	}}
	require.NoError(t, s.AddJob(job))

	s.runJob(job)

	assert.Equal(t, int32(3), job.calls.Load())
	stats := s.GetJobStats()
	require.Len(t, stats, 1)
	assert.Equal(t, 1, stats[0].FailureCount)
	assert.Equal(t, "boom", stats[0].LastError)
	assert.NotNil(t, stats[0].LastFailure)
	assert.Nil(t, stats[0].LastSuccess)
	assert.Equal(t, 0.0, stats[0].SuccessRate)
}

func TestRunJob_PermanentErrorNotRetried(t *testing.T) {
	s := newTestScheduler(5)
	job := &testJob{name: "locked", schedule: "@hourly", run: func(int32) error {
		return Permanent(errors.New("held"))
	}}
	require.NoError(t, s.AddJob(job))

	s.runJob(job)

	assert.Equal(t, int32(1), job.calls.Load())
}

func TestRunJob_Async(t *testing.T) {
	s := newTestScheduler(0)
	job := &testJob{name: "quick", schedule: "@hourly"}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("quick"))
	assert.Eventually(t, func() bool {
		results, _ := s.GetJobHistory("quick")
		return len(results) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestJobStats_NextRun(t *testing.T) {
	s := newTestScheduler(0)
	require.NoError(t, s.AddJob(&testJob{name: "a", schedule: "@every 1h"}))
	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool {
		stats := s.GetJobStats()
		return len(stats) == 1 && stats[0].NextRun != nil
	}, time.Second, 5*time.Millisecond)
}

func TestJobHistory_Limit(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < historyLimit+20; i++ {
		h.AddResult(JobResult{Success: i%2 == 0})
	}

	assert.Len(t, h.Results, historyLimit)
	assert.Len(t, h.GetLatestResults(10), 10)
	assert.InDelta(t, 0.5, h.GetSuccessRate(), 1e-9)
	assert.Empty(t, (&JobHistory{}).GetLatestResults(5))
}

func TestPermanent(t *testing.T) {
	base := errors.New("x")
	err := Permanent(base)

	assert.True(t, IsPermanent(err))
	assert.True(t, errors.Is(err, base))
	assert.False(t, IsPermanent(base))
	assert.NoError(t, Permanent(nil))
}
