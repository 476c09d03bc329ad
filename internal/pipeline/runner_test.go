package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/cohesion/internal/aggregate"
	"github.com/wonny/cohesion/internal/contracts"
)

type fakeResolver struct {
	report *contracts.ResolutionReport
	err    error
	calls  int
}

func (f *fakeResolver) Compute(context.Context) (*contracts.ResolutionReport, error) {
	f.calls++
	return f.report, f.err
}

type fakeAggregator struct {
	result *aggregate.Result
	err    error
	calls  int
}

func (f *fakeAggregator) Run(context.Context) (*aggregate.Result, error) {
	f.calls++
	return f.result, f.err
}

type fakeLock struct {
	held     bool
	acquired int
	released int
	err      error
}

func (f *fakeLock) Acquire(context.Context) error {
	if f.err != nil {
		return f.err
	}
	f.held = true
	f.acquired++
	return nil
}

func (f *fakeLock) Release(context.Context) error {
	f.held = false
	f.released++
	return nil
}

type fakeRecorder struct {
	plays int
	gaps  map[string]int
	rows  map[string]int
	runs  int
	fails int
}

func (f *fakeRecorder) AddPlaysResolved(n int)           { f.plays += n }
func (f *fakeRecorder) IncResolutionGap(side string)     { f.gaps[side]++ }
func (f *fakeRecorder) SetAggregateRows(t string, n int) { f.rows[t] = n }
func (f *fakeRecorder) ObservePipelineRun(_ time.Duration, err error) {
	f.runs++
	if err != nil {
		f.fails++
	}
}

type fakeRunStore struct {
	started  []*Run
	finished []Run
}

func (f *fakeRunStore) Start(_ context.Context, run *Run) error {
	f.started = append(f.started, run)
	return nil
}

func (f *fakeRunStore) Finish(_ context.Context, run *Run) error {
	f.finished = append(f.finished, *run)
	return nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []contracts.RunEvent
}

func (f *fakeNotifier) Publish(e contracts.RunEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
}

func fixtures() (*fakeResolver, *fakeAggregator) {
	report := &contracts.ResolutionReport{
		States:      []contracts.SystemState{{ID: "s1"}, {ID: "s2"}},
		Assignments: []contracts.PlayAssignment{{PlayID: "G1-1"}, {PlayID: "G1-2"}, {PlayID: "G1-3"}},
		Gaps: []contracts.ResolutionGap{
			{PlayID: "G1-4", Side: contracts.SideDefense},
			{PlayID: "G1-5", Side: contracts.SideDefense},
			{PlayID: "G1-6", Side: contracts.SideOffense},
		},
	}
	result := &aggregate.Result{
		Snaps: make([]aggregate.SnapCount, 22),
		Roles: make([]aggregate.RoleCount, 25),
		Pairs: make([]aggregate.PairCount, 110),
	}
	return &fakeResolver{report: report}, &fakeAggregator{result: result}
}

func TestRunner_Run(t *testing.T) {
	resolver, aggregator := fixtures()
	lock := &fakeLock{}
	rec := &fakeRecorder{gaps: map[string]int{}, rows: map[string]int{}}
	store := &fakeRunStore{}
	notifier := &fakeNotifier{}

	runner := NewRunner(resolver, aggregator, zerolog.Nop()).
		WithLock(lock).
		WithRecorder(rec).
		WithStore(store).
		WithNotifier(notifier)

	run, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, run.PlaysResolved)
	assert.Equal(t, 3, run.ResolutionGaps)
	assert.Equal(t, 2, run.States)
	assert.Equal(t, 22, run.SnapRows)
	assert.Equal(t, 25, run.RoleRows)
	assert.Equal(t, 110, run.PairRows)
	require.NotNil(t, run.FinishedAt)
	assert.Empty(t, run.Error)

	assert.Equal(t, 1, lock.acquired)
	assert.Equal(t, 1, lock.released)
	assert.False(t, lock.held)

	assert.Equal(t, 3, rec.plays)
	assert.Equal(t, 2, rec.gaps["defense"])
	assert.Equal(t, 1, rec.gaps["offense"])
	assert.Equal(t, 110, rec.rows["co_snaps"])
	assert.Equal(t, 1, rec.runs)
	assert.Equal(t, 0, rec.fails)

	require.Len(t, store.started, 1)
	require.Len(t, store.finished, 1)
	assert.Equal(t, run.ID, store.finished[0].ID)

	require.Len(t, notifier.events, 2)
	assert.Equal(t, StatusStarted, notifier.events[0].Status)
	assert.Equal(t, StatusSucceeded, notifier.events[1].Status)
	assert.Equal(t, run.ID.String(), notifier.events[1].RunID)
	assert.Equal(t, 110, notifier.events[1].PairRows)
}

func TestRunner_ResolverFailureSkipsAggregation(t *testing.T) {
	resolver, aggregator := fixtures()
	resolver.err = errors.New("db down")
	lock := &fakeLock{}
	rec := &fakeRecorder{gaps: map[string]int{}, rows: map[string]int{}}
	store := &fakeRunStore{}
	notifier := &fakeNotifier{}

	run, err := NewRunner(resolver, aggregator, zerolog.Nop()).
		WithLock(lock).WithRecorder(rec).WithStore(store).WithNotifier(notifier).
		Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
	require.NotNil(t, run)
	assert.Contains(t, run.Error, "db down")
	assert.Equal(t, 0, aggregator.calls)
	assert.Equal(t, 1, lock.released)
	assert.Equal(t, 1, rec.fails)
	require.Len(t, store.finished, 1)
	assert.NotEmpty(t, store.finished[0].Error)
	assert.Equal(t, StatusFailed, notifier.events[len(notifier.events)-1].Status)
}

func TestRunner_LockHeld(t *testing.T) {
	resolver, aggregator := fixtures()
	held := errors.New("lock is held by another process")
	notifier := &fakeNotifier{}

	run, err := NewRunner(resolver, aggregator, zerolog.Nop()).
		WithLock(&fakeLock{err: held}).
		WithNotifier(notifier).
		Run(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, held))
	assert.Nil(t, run)
	assert.Equal(t, 0, resolver.calls)
	assert.Empty(t, notifier.events)
}

func TestRunner_NoOptionalCollaborators(t *testing.T) {
	resolver, aggregator := fixtures()

	run, err := NewRunner(resolver, aggregator, zerolog.Nop()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, resolver.calls)
	assert.Equal(t, 1, aggregator.calls)
	assert.NotEqual(t, [16]byte{}, [16]byte(run.ID))
}
