package jobs

import (
	"context"
	"errors"

	"github.com/wonny/cohesion/internal/pipeline"
	"github.com/wonny/cohesion/internal/scheduler"
	"github.com/wonny/cohesion/pkg/logger"
	"github.com/wonny/cohesion/pkg/redis"
)

// PipelineRunner is the recompute entry point
type PipelineRunner interface {
	Run(ctx context.Context) (*pipeline.Run, error)
}

// PipelineJob recomputes system states and aggregates
// ⭐ SSOT: 집계 재계산 스케줄은 이 Job에서만
type PipelineJob struct {
	runner   PipelineRunner
	schedule string
	logger   *logger.Logger
}

// NewPipelineJob creates the recompute job
func NewPipelineJob(runner PipelineRunner, schedule string, log *logger.Logger) *PipelineJob {
	return &PipelineJob{
		runner:   runner,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *PipelineJob) Name() string {
	return "pipeline_recompute"
}

// Schedule returns the configured cron expression
func (j *PipelineJob) Schedule() string {
	return j.schedule
}

// Run executes one recompute. A run held by another process is not retried.
func (j *PipelineJob) Run(ctx context.Context) error {
	run, err := j.runner.Run(ctx)
	if errors.Is(err, redis.ErrLockHeld) {
		j.logger.Info("Pipeline already running elsewhere, skipping")
		return scheduler.Permanent(err)
	}
	if err != nil {
		return err
	}

	j.logger.WithFields(map[string]interface{}{
		"run_id":          run.ID.String(),
		"plays_resolved":  run.PlaysResolved,
		"resolution_gaps": run.ResolutionGaps,
	}).Info("Scheduled pipeline run completed")
	return nil
}
