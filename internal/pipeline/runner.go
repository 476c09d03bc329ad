package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/wonny/cohesion/internal/aggregate"
	"github.com/wonny/cohesion/internal/contracts"
)

// Run statuses published to the notifier
const (
	StatusStarted   = "started"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// LockName is the single-writer lock guarding recomputation
const LockName = "pipeline"

// Locker serializes runs across processes
type Locker interface {
	Acquire(ctx context.Context) error
	Release(ctx context.Context) error
}

// Resolver assigns plays to system states
type Resolver interface {
	Compute(ctx context.Context) (*contracts.ResolutionReport, error)
}

// Aggregator recomputes the aggregate tables
type Aggregator interface {
	Run(ctx context.Context) (*aggregate.Result, error)
}

// Recorder receives run metrics
type Recorder interface {
	AddPlaysResolved(n int)
	IncResolutionGap(side string)
	SetAggregateRows(table string, n int)
	ObservePipelineRun(d time.Duration, err error)
}

// RunStore persists run records
type RunStore interface {
	Start(ctx context.Context, run *Run) error
	Finish(ctx context.Context, run *Run) error
}

// Run is one pipeline execution
type Run struct {
	ID             uuid.UUID  `json:"run_id"`
	StartedAt      time.Time  `json:"started_at"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
	PlaysResolved  int        `json:"plays_resolved"`
	ResolutionGaps int        `json:"resolution_gaps"`
	States         int        `json:"states"`
	SnapRows       int        `json:"snap_rows"`
	RoleRows       int        `json:"role_rows"`
	PairRows       int        `json:"pair_rows"`
	Error          string     `json:"error,omitempty"`
}

// Event renders the run as a notifier event
func (r *Run) Event(status string) contracts.RunEvent {
	return contracts.RunEvent{
		RunID:          r.ID.String(),
		Status:         status,
		Timestamp:      time.Now(),
		PlaysResolved:  r.PlaysResolved,
		ResolutionGaps: r.ResolutionGaps,
		States:         r.States,
		SnapRows:       r.SnapRows,
		RoleRows:       r.RoleRows,
		PairRows:       r.PairRows,
		Error:          r.Error,
	}
}

// Runner runs the resolver then the aggregation engine
// ⭐ SSOT: 상태 해석 → 집계 재계산 순서는 여기서만 정의
type Runner struct {
	resolver   Resolver
	aggregator Aggregator
	lock       Locker
	store      RunStore
	recorder   Recorder
	notifier   contracts.RunNotifier
	log        zerolog.Logger
}

// NewRunner 새 러너 생성
func NewRunner(resolver Resolver, aggregator Aggregator, log zerolog.Logger) *Runner {
	return &Runner{
		resolver:   resolver,
		aggregator: aggregator,
		log:        log,
	}
}

// WithLock serializes runs through l
func (r *Runner) WithLock(l Locker) *Runner {
	r.lock = l
	return r
}

// WithStore records runs in s
func (r *Runner) WithStore(s RunStore) *Runner {
	r.store = s
	return r
}

// WithRecorder sends run metrics to rec
func (r *Runner) WithRecorder(rec Recorder) *Runner {
	r.recorder = rec
	return r
}

// WithNotifier publishes run events to n
func (r *Runner) WithNotifier(n contracts.RunNotifier) *Runner {
	r.notifier = n
	return r
}

// Run executes one full recompute
func (r *Runner) Run(ctx context.Context) (*Run, error) {
	if r.lock != nil {
		if err := r.lock.Acquire(ctx); err != nil {
			return nil, fmt.Errorf("acquire pipeline lock: %w", err)
		}
		defer func() {
			// release even when ctx was cancelled mid-run
			if err := r.lock.Release(context.WithoutCancel(ctx)); err != nil {
				r.log.Warn().Err(err).Msg("Failed to release pipeline lock")
			}
		}()
	}

	run := &Run{ID: uuid.New(), StartedAt: time.Now()}
	log := r.log.With().Str("run_id", run.ID.String()).Logger()

	if r.store != nil {
		if err := r.store.Start(ctx, run); err != nil {
			return nil, fmt.Errorf("record run start: %w", err)
		}
	}
	r.publish(run, StatusStarted)
	log.Info().Msg("Pipeline run started")

	err := r.execute(ctx, run, log)

	finished := time.Now()
	run.FinishedAt = &finished
	if err != nil {
		run.Error = err.Error()
	}

	if r.recorder != nil {
		r.recorder.ObservePipelineRun(finished.Sub(run.StartedAt), err)
	}
	if r.store != nil {
		if serr := r.store.Finish(context.WithoutCancel(ctx), run); serr != nil {
			log.Warn().Err(serr).Msg("Failed to record run finish")
		}
	}

	if err != nil {
		r.publish(run, StatusFailed)
		log.Error().Err(err).Dur("duration", finished.Sub(run.StartedAt)).Msg("Pipeline run failed")
		return run, err
	}

	r.publish(run, StatusSucceeded)
	log.Info().
		Int("plays_resolved", run.PlaysResolved).
		Int("resolution_gaps", run.ResolutionGaps).
		Int("states", run.States).
		Int("snap_rows", run.SnapRows).
		Int("role_rows", run.RoleRows).
		Int("pair_rows", run.PairRows).
		Dur("duration", finished.Sub(run.StartedAt)).
		Msg("Pipeline run completed")
	return run, nil
}

func (r *Runner) execute(ctx context.Context, run *Run, log zerolog.Logger) error {
	report, err := r.resolver.Compute(ctx)
	if err != nil {
		return fmt.Errorf("resolve system states: %w", err)
	}
	run.PlaysResolved = len(report.Assignments)
	run.ResolutionGaps = len(report.Gaps)
	run.States = len(report.States)

	if r.recorder != nil {
		r.recorder.AddPlaysResolved(run.PlaysResolved)
		for _, g := range report.Gaps {
			r.recorder.IncResolutionGap(string(g.Side))
		}
	}
	if len(report.Gaps) > 0 {
		log.Warn().Int("gaps", len(report.Gaps)).Msg("Plays skipped without an active coach")
	}

	result, err := r.aggregator.Run(ctx)
	if err != nil {
		return fmt.Errorf("aggregate: %w", err)
	}
	run.SnapRows = len(result.Snaps)
	run.RoleRows = len(result.Roles)
	run.PairRows = len(result.Pairs)

	if r.recorder != nil {
		r.recorder.SetAggregateRows("player_snaps_in_state", run.SnapRows)
		r.recorder.SetAggregateRows("player_role_counts_in_state", run.RoleRows)
		r.recorder.SetAggregateRows("co_snaps", run.PairRows)
	}
	return nil
}

func (r *Runner) publish(run *Run, status string) {
	if r.notifier != nil {
		r.notifier.Publish(run.Event(status))
	}
}
