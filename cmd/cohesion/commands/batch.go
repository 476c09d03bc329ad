package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/cohesion/internal/aggregate"
	"github.com/wonny/cohesion/internal/contracts"
	"github.com/wonny/cohesion/internal/pipeline"
	"github.com/wonny/cohesion/internal/systemstate"
	"github.com/wonny/cohesion/pkg/metrics"
	"github.com/wonny/cohesion/pkg/redis"
)

var (
	statesCmd = &cobra.Command{
		Use:   "states",
		Short: "System state 해석",
	}

	statesComputeCmd = &cobra.Command{
		Use:   "compute",
		Short: "모든 플레이를 offense/defense system state 에 할당",
		RunE:  runStatesCompute,
	}

	aggregateCmd = &cobra.Command{
		Use:   "aggregate",
		Short: "집계 테이블 재계산",
	}

	aggregateRunCmd = &cobra.Command{
		Use:   "run",
		Short: "snaps / role counts / co-snaps 전체 재계산",
		RunE:  runAggregate,
	}

	pipelineCmd = &cobra.Command{
		Use:   "pipeline",
		Short: "배치 파이프라인",
	}

	pipelineRunCmd = &cobra.Command{
		Use:   "run",
		Short: "states compute + aggregate run (single-writer lock)",
		Long: `System state 해석과 집계를 순서대로 실행합니다.

Redis 가 활성화되어 있으면 단일 writer 락을 획득하며,
다른 프로세스가 실행 중이면 즉시 실패합니다.

Example:
  go run ./cmd/cohesion pipeline run`,
		RunE: runPipeline,
	}
)

func init() {
	rootCmd.AddCommand(statesCmd)
	statesCmd.AddCommand(statesComputeCmd)
	rootCmd.AddCommand(aggregateCmd)
	aggregateCmd.AddCommand(aggregateRunCmd)
	rootCmd.AddCommand(pipelineCmd)
	pipelineCmd.AddCommand(pipelineRunCmd)
}

func newResolver(d *deps) *systemstate.Service {
	return systemstate.NewService(systemstate.NewRepository(d.db.Pool), d.log.Component("systemstate"))
}

func newAggregator(d *deps) *aggregate.Service {
	return aggregate.NewService(aggregate.NewRepository(d.db.Pool), d.log.Component("aggregate"))
}

// newRunner wires the pipeline with its lock, run store, metrics and notifier.
// notifier may be nil.
func newRunner(d *deps, rc *redis.Client, mgr *metrics.Manager, notifier contracts.RunNotifier) *pipeline.Runner {
	runner := pipeline.NewRunner(newResolver(d), newAggregator(d), d.log.Component("pipeline")).
		WithLock(redis.NewLock(rc, pipeline.LockName, d.cfg.Redis.LockTTL)).
		WithStore(pipeline.NewRepository(d.db.Pool)).
		WithRecorder(mgr)
	if notifier != nil {
		runner = runner.WithNotifier(notifier)
	}
	return runner
}

func runStatesCompute(cmd *cobra.Command, args []string) error {
	d, err := bootstrap()
	if err != nil {
		return err
	}
	defer d.Close()

	report, err := newResolver(d).Compute(cmd.Context())
	if err != nil {
		return err
	}

	PrintHeader("System State Resolution")
	PrintKeyValue("States", fmt.Sprint(len(report.States)), 14)
	PrintKeyValue("Plays assigned", fmt.Sprint(len(report.Assignments)), 14)
	PrintKeyValue("Gaps", fmt.Sprint(len(report.Gaps)), 14)
	PrintKeyValue("Skipped", fmt.Sprint(report.Skipped), 14)

	if len(report.Gaps) > 0 {
		PrintWarning(fmt.Sprintf("%d play(s) had no active coach window and were skipped", len(report.Gaps)))
		widths := []int{24, 5, 8, 10}
		PrintTableHeader([]string{"Play", "Team", "Side", "Date"}, widths)
		for i, g := range report.Gaps {
			if i == 20 {
				fmt.Printf("... and %d more\n", len(report.Gaps)-i)
				break
			}
			PrintTableRow([]string{g.PlayID, g.Team, g.Side.String(), g.Date.Format(contracts.DateLayout)}, widths)
		}
	}
	return nil
}

func runAggregate(cmd *cobra.Command, args []string) error {
	d, err := bootstrap()
	if err != nil {
		return err
	}
	defer d.Close()

	result, err := newAggregator(d).Run(cmd.Context())
	if err != nil {
		return err
	}

	PrintHeader("Aggregation")
	PrintKeyValue("Participation", fmt.Sprint(result.Rows), 13)
	PrintKeyValue("Snap rows", fmt.Sprint(len(result.Snaps)), 13)
	PrintKeyValue("Role rows", fmt.Sprint(len(result.Roles)), 13)
	PrintKeyValue("Pair rows", fmt.Sprint(len(result.Pairs)), 13)
	return nil
}

func runPipeline(cmd *cobra.Command, args []string) error {
	d, err := bootstrap()
	if err != nil {
		return err
	}
	defer d.Close()

	rc, err := redis.New(d.cfg)
	if err != nil {
		return err
	}
	defer rc.Close()

	run, err := newRunner(d, rc, metrics.NewManager(), nil).Run(cmd.Context())
	if run != nil {
		printRun(run)
	}
	return err
}

func printRun(run *pipeline.Run) {
	PrintHeader("Pipeline Run " + run.ID.String())
	PrintKeyValue("Plays resolved", fmt.Sprint(run.PlaysResolved), 15)
	PrintKeyValue("Gaps", fmt.Sprint(run.ResolutionGaps), 15)
	PrintKeyValue("States", fmt.Sprint(run.States), 15)
	PrintKeyValue("Snap rows", fmt.Sprint(run.SnapRows), 15)
	PrintKeyValue("Role rows", fmt.Sprint(run.RoleRows), 15)
	PrintKeyValue("Pair rows", fmt.Sprint(run.PairRows), 15)
	if run.FinishedAt != nil {
		PrintKeyValue("Duration", run.FinishedAt.Sub(run.StartedAt).String(), 15)
	}
	if run.Error != "" {
		PrintKeyValue("Error", run.Error, 15)
	}
}
